// Package wallettest provides an in-memory wallet engine for exercising the
// gateway without a network. States are scripted, subscription events are
// published by the test, and per-call latency can be injected to simulate
// slow collaborator calls.
package wallettest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/wippyai/wallet-bridge/envelope"
	"github.com/wippyai/wallet-bridge/wallet"
)

// Engine is a fake wallet.Engine.
type Engine struct {
	mu     sync.Mutex
	states map[string]*wallet.AccountState
	subs   map[string][]*Subscription

	// ConnectErr, when set, fails every Connect call.
	ConnectErr error

	// StateDelay delays every state fetch, honoring context cancellation.
	StateDelay time.Duration
}

func NewEngine() *Engine {
	return &Engine{
		states: make(map[string]*wallet.AccountState),
		subs:   make(map[string][]*Subscription),
	}
}

// AddressFor derives the deterministic fake address for a key pair.
func AddressFor(key wallet.PublicKey, contract wallet.ContractType) string {
	sum := sha256.Sum256(append(key[:], contract...))
	return "0:" + hex.EncodeToString(sum[:16])
}

// SetState scripts the account state returned for an address.
func (e *Engine) SetState(address string, st *wallet.AccountState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.states[address] = st
}

// Publish delivers an event to every live subscription on an address.
func (e *Engine) Publish(address string, ev wallet.Event) {
	e.mu.Lock()
	subs := append([]*Subscription(nil), e.subs[address]...)
	e.mu.Unlock()
	for _, s := range subs {
		s.publish(ev)
	}
}

// FailSubscriptions terminates every live subscription on an address with
// an upstream error.
func (e *Engine) FailSubscriptions(address string, err error) {
	e.mu.Lock()
	subs := append([]*Subscription(nil), e.subs[address]...)
	e.mu.Unlock()
	for _, s := range subs {
		s.fail(err)
	}
}

func (e *Engine) Connect(ctx context.Context, url string) (wallet.Transport, error) {
	if e.ConnectErr != nil {
		return nil, e.ConnectErr
	}
	if url == "" {
		return nil, fmt.Errorf("empty endpoint url")
	}
	return &transport{engine: e, url: url}, nil
}

func (e *Engine) Open(ctx context.Context, t wallet.Transport, key wallet.PublicKey, contract wallet.ContractType) (wallet.Wallet, error) {
	if !contract.Valid() {
		return nil, fmt.Errorf("unknown contract type %q", contract)
	}
	return &account{transport: t, address: AddressFor(key, contract)}, nil
}

func (e *Engine) Subscribe(ctx context.Context, t wallet.Transport, key wallet.PublicKey, contract wallet.ContractType) (wallet.Subscription, error) {
	if !contract.Valid() {
		return nil, fmt.Errorf("unknown contract type %q", contract)
	}
	addr := AddressFor(key, contract)
	s := &Subscription{
		address: addr,
		engine:  e,
		events:  make(chan wallet.Event, 64),
	}

	e.mu.Lock()
	e.subs[addr] = append(e.subs[addr], s)
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.Cancel()
	}()
	return s, nil
}

func (e *Engine) stateFor(ctx context.Context, address string) (*wallet.AccountState, error) {
	if e.StateDelay > 0 {
		select {
		case <-time.After(e.StateDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if st, ok := e.states[address]; ok {
		return st, nil
	}
	return &wallet.AccountState{Balance: envelope.NewBigInt(0)}, nil
}

type transport struct {
	engine *Engine
	url    string
	mu     sync.Mutex
	closed bool
}

func (t *transport) AccountState(ctx context.Context, address string) (*wallet.AccountState, error) {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("transport closed")
	}
	return t.engine.stateFor(ctx, address)
}

func (t *transport) SendMessage(ctx context.Context, msg wallet.SignedMessage) (*wallet.PendingTransaction, error) {
	if msg.Dest == "" {
		return nil, fmt.Errorf("message has no destination")
	}
	sum := sha256.Sum256([]byte(msg.Dest + msg.Amount.String()))
	return &wallet.PendingTransaction{
		MessageHash: hex.EncodeToString(sum[:]),
		ExpireAt:    time.Now().Add(time.Minute).Unix(),
	}, nil
}

func (t *transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

type account struct {
	transport wallet.Transport
	address   string
}

func (a *account) Address() string { return a.address }

func (a *account) State(ctx context.Context) (*wallet.AccountState, error) {
	return a.transport.AccountState(ctx, a.address)
}

func (a *account) Send(ctx context.Context, dest string, amount *envelope.BigInt) (*wallet.PendingTransaction, error) {
	return a.transport.SendMessage(ctx, wallet.SignedMessage{
		Dest:     dest,
		Amount:   amount,
		ExpireAt: time.Now().Add(time.Minute).Unix(),
	})
}

// Subscription is the fake event stream. Tests publish through the engine.
type Subscription struct {
	address string
	engine  *Engine
	events  chan wallet.Event
	mu      sync.Mutex
	closed  bool
	err     error
}

func (s *Subscription) Events() <-chan wallet.Event { return s.events }

func (s *Subscription) Cancel() {
	s.terminate(nil)
}

func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Subscription) publish(ev wallet.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	default: // feed full, drop
	}
}

func (s *Subscription) fail(err error) {
	s.terminate(err)
}

func (s *Subscription) terminate(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.err = err
	close(s.events)
	s.mu.Unlock()

	s.engine.mu.Lock()
	subs := s.engine.subs[s.address]
	for i, other := range subs {
		if other == s {
			s.engine.subs[s.address] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	s.engine.mu.Unlock()
}
