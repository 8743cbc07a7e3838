package wallet

import (
	"encoding/hex"
	"fmt"

	"github.com/wippyai/wallet-bridge/envelope"
)

// ContractType selects the wallet contract variant a key pair controls.
// Values are stable wire strings.
type ContractType string

const (
	SafeMultisig    ContractType = "safe_multisig"
	SafeMultisig24h ContractType = "safe_multisig_24h"
	SetcodeMultisig ContractType = "setcode_multisig"
	Surf            ContractType = "surf"
	WalletV3        ContractType = "wallet_v3"
)

// Valid reports whether ct is a known contract variant.
func (ct ContractType) Valid() bool {
	switch ct {
	case SafeMultisig, SafeMultisig24h, SetcodeMultisig, Surf, WalletV3:
		return true
	}
	return false
}

// PublicKeySize is the ed25519 public key length in bytes.
const PublicKeySize = 32

// PublicKey is an ed25519 public key. It crosses the boundary hex-encoded.
type PublicKey [PublicKeySize]byte

// ParsePublicKey decodes a hex-encoded public key.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	raw, err := hex.DecodeString(s)
	if err != nil {
		return pk, fmt.Errorf("public key is not valid hex: %w", err)
	}
	if len(raw) != PublicKeySize {
		return pk, fmt.Errorf("public key must be %d bytes, got %d", PublicKeySize, len(raw))
	}
	copy(pk[:], raw)
	return pk, nil
}

func (pk PublicKey) String() string {
	return hex.EncodeToString(pk[:])
}

// AccountState is a point-in-time snapshot of an account. Balance and
// logical time exceed the foreign side's safe integer range and are
// declared with the decimal-string codec types.
type AccountState struct {
	Balance           *envelope.BigInt `json:"balance"`
	IsDeployed        bool             `json:"is_deployed"`
	LastTransactionLT envelope.Uint64  `json:"last_transaction_lt"`
}

// Transaction is a confirmed ledger entry.
type Transaction struct {
	ID        string           `json:"id"`
	LT        envelope.Uint64  `json:"lt"`
	Amount    *envelope.BigInt `json:"amount"`
	Fee       *envelope.BigInt `json:"fee,omitempty"`
	Timestamp int64            `json:"timestamp"`
}

// PendingTransaction tracks a sent message until it confirms or expires.
type PendingTransaction struct {
	MessageHash string `json:"message_hash"`
	ExpireAt    int64  `json:"expire_at"`
}

// EventKind tags subscription stream records.
type EventKind string

const (
	EventStateChanged      EventKind = "state_changed"
	EventMessageSent       EventKind = "message_sent"
	EventMessageExpired    EventKind = "message_expired"
	EventTransactionsFound EventKind = "transactions_found"
)

// Event is one record on a subscription stream. Exactly one of the
// payload fields is set, matching Kind.
type Event struct {
	Kind         EventKind           `json:"kind"`
	State        *AccountState       `json:"state,omitempty"`
	Pending      *PendingTransaction `json:"pending,omitempty"`
	Transactions []Transaction       `json:"transactions,omitempty"`
}
