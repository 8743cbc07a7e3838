package wallet

import (
	"context"

	"github.com/wippyai/wallet-bridge/envelope"
)

// Engine is the wallet-SDK collaborator. The gateway consumes it as an
// opaque library: only these signatures matter, never the internals.
// Implementations may block inside calls; the gateway keeps them off its
// worker pool.
type Engine interface {
	// Connect opens a transport to a blockchain node endpoint.
	Connect(ctx context.Context, url string) (Transport, error)

	// Open binds a key pair and contract variant to a wallet on an
	// existing transport.
	Open(ctx context.Context, t Transport, key PublicKey, contract ContractType) (Wallet, error)

	// Subscribe starts a live event stream for an account. The stream
	// runs until its context is cancelled or the upstream fails.
	Subscribe(ctx context.Context, t Transport, key PublicKey, contract ContractType) (Subscription, error)
}

// Transport is a connection to a blockchain node.
type Transport interface {
	// AccountState fetches the current state of an address.
	AccountState(ctx context.Context, address string) (*AccountState, error)

	// SendMessage submits a signed external message.
	SendMessage(ctx context.Context, msg SignedMessage) (*PendingTransaction, error)

	// Close releases the connection. Safe to call once.
	Close() error
}

// Wallet is an account bound to a transport.
type Wallet interface {
	// Address returns the derived account address.
	Address() string

	// State fetches the wallet's current account state.
	State(ctx context.Context) (*AccountState, error)

	// Send transfers amount to dest and returns the pending entry.
	Send(ctx context.Context, dest string, amount *envelope.BigInt) (*PendingTransaction, error)
}

// SignedMessage is a serialized external message ready for the network.
type SignedMessage struct {
	Dest     string           `json:"dest"`
	Amount   *envelope.BigInt `json:"amount"`
	Body     []byte           `json:"body,omitempty"`
	ExpireAt int64            `json:"expire_at"`
}

// Subscription is a live account event stream.
//
// Events is closed after the terminal condition: cancellation or an
// upstream failure. Err distinguishes the two once the channel is closed.
type Subscription interface {
	// Events yields records in production order.
	Events() <-chan Event

	// Cancel stops the stream. Idempotent; Events closes within bounded
	// time afterwards.
	Cancel()

	// Err returns the upstream failure, or nil if the stream ended by
	// cancellation. Valid only after Events is closed.
	Err() error
}
