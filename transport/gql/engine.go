package gql

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/wippyai/wallet-bridge/envelope"
	"github.com/wippyai/wallet-bridge/wallet"
)

// messageExpiry is how long a posted external message stays valid.
const messageExpiry = time.Minute

// Engine is the production wallet.Engine: transports are GraphQL clients
// and subscriptions are websocket feeds.
type Engine struct {
	opts []Option
}

// NewEngine builds an engine. Options are applied to every transport it
// connects.
func NewEngine(opts ...Option) *Engine {
	return &Engine{opts: opts}
}

func (e *Engine) Connect(ctx context.Context, url string) (wallet.Transport, error) {
	return Dial(ctx, url, e.opts...)
}

func (e *Engine) Open(ctx context.Context, t wallet.Transport, key wallet.PublicKey, contract wallet.ContractType) (wallet.Wallet, error) {
	if !contract.Valid() {
		return nil, fmt.Errorf("gql: unknown contract type %q", contract)
	}
	return &account{
		transport: t,
		address:   DeriveAddress(key, contract),
	}, nil
}

func (e *Engine) Subscribe(ctx context.Context, t wallet.Transport, key wallet.PublicKey, contract wallet.ContractType) (wallet.Subscription, error) {
	if !contract.Valid() {
		return nil, fmt.Errorf("gql: unknown contract type %q", contract)
	}
	client, ok := t.(*Client)
	if !ok {
		return nil, fmt.Errorf("gql: transport is %T, not a gql client", t)
	}
	return client.Watch(ctx, DeriveAddress(key, contract))
}

// DeriveAddress computes the workchain-0 account address a key pair
// controls for a given contract variant. The derivation is deterministic:
// the same key and variant always map to the same address.
func DeriveAddress(key wallet.PublicKey, contract wallet.ContractType) string {
	h := sha256.New()
	h.Write([]byte(contract))
	h.Write(key[:])
	return "0:" + hex.EncodeToString(h.Sum(nil))
}

// messageHash derives the stable identifier for a signed external message.
func messageHash(msg wallet.SignedMessage) string {
	h := sha256.New()
	h.Write([]byte(msg.Dest))
	if msg.Amount != nil {
		h.Write(msg.Amount.Bytes())
	}
	var expire [8]byte
	binary.BigEndian.PutUint64(expire[:], uint64(msg.ExpireAt))
	h.Write(expire[:])
	h.Write(msg.Body)
	return hex.EncodeToString(h.Sum(nil))
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
		ExpireAt: time.Now().Add(messageExpiry).Unix(),
	})
}
