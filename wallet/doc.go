// Package wallet defines the collaborator surface of the wallet engine the
// gateway exposes across the boundary.
//
// The gateway owns none of the blockchain logic behind these interfaces:
// transaction construction, key derivation, node transport, and signing all
// live in the engine implementation. What the gateway needs is the closed
// set of object variants it parks behind handles (Transport, Wallet,
// Subscription) and the typed operations it dispatches onto them.
//
// Argument and result shapes here are part of the wire contract: balances
// and logical times use the decimal-string codec types from envelope so no
// width is lost crossing into the foreign host.
package wallet
