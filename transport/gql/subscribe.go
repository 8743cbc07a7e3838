package gql

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wippyai/wallet-bridge/envelope"
	"github.com/wippyai/wallet-bridge/wallet"
)

const (
	feedBuffer    = 64
	writeDeadline = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
)

// feedFrame is one account update pushed by the node over the websocket.
type feedFrame struct {
	Address     string           `json:"address"`
	Balance     *envelope.BigInt `json:"balance"`
	Deployed    bool             `json:"deployed"`
	LastTransLT envelope.Uint64  `json:"last_trans_lt"`
}

// subscribeMsg opens a feed for one address.
type subscribeMsg struct {
	Type    string `json:"type"`
	Address string `json:"address"`
}

// wsURL rewrites the GraphQL endpoint into its websocket counterpart.
func wsURL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("gql: parse endpoint: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("gql: unsupported scheme %q", u.Scheme)
	}
	return u.String(), nil
}

// feed is a live account stream over a websocket connection. It satisfies
// wallet.Subscription.
type feed struct {
	conn   *websocket.Conn
	events chan wallet.Event
	log    *zap.Logger

	mu     sync.Mutex
	closed bool
	err    error
}

// Watch opens a websocket feed for an address. The stream runs until ctx
// is cancelled, Cancel is called, or the connection fails.
func (c *Client) Watch(ctx context.Context, address string) (wallet.Subscription, error) {
	target, err := wsURL(c.endpoint)
	if err != nil {
		return nil, err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("gql: websocket dial %s: %s: %w", target, resp.Status, err)
		}
		return nil, fmt.Errorf("gql: websocket dial %s: %w", target, err)
	}

	conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if err := conn.WriteJSON(subscribeMsg{Type: "subscribe", Address: address}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("gql: subscribe %s: %w", address, err)
	}

	f := &feed{
		conn:   conn,
		events: make(chan wallet.Event, feedBuffer),
		log:    c.log.With(zap.String("address", address)),
	}

	go f.readLoop()
	go f.pingLoop(ctx)
	return f, nil
}

func (f *feed) Events() <-chan wallet.Event { return f.events }

func (f *feed) Cancel() {
	f.terminate(nil)
}

func (f *feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *feed) readLoop() {
	f.conn.SetReadDeadline(time.Now().Add(pongWait))
	f.conn.SetPongHandler(func(string) error {
		return f.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame feedFrame
		if err := f.conn.ReadJSON(&frame); err != nil {
			f.mu.Lock()
			wasCancelled := f.closed
			f.mu.Unlock()
			if wasCancelled {
				return
			}
			f.log.Warn("feed read failed", zap.Error(err))
			f.terminate(fmt.Errorf("gql: feed read: %w", err))
			return
		}

		balance := frame.Balance
		if balance == nil {
			balance = envelope.NewBigInt(0)
		}
		f.publish(wallet.Event{
			Kind: wallet.EventStateChanged,
			State: &wallet.AccountState{
				Balance:           balance,
				IsDeployed:        frame.Deployed,
				LastTransactionLT: frame.LastTransLT,
			},
		})
	}
}

func (f *feed) publish(ev wallet.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.events <- ev:
	default:
		f.log.Warn("feed buffer full, dropping update")
	}
}

func (f *feed) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			f.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := f.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			f.Cancel()
			return
		}
	}
}

func (f *feed) terminate(err error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.err = err
	close(f.events)
	f.mu.Unlock()

	f.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	f.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	f.conn.Close()
}
