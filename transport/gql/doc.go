// Package gql talks to a blockchain node's GraphQL endpoint. Account
// queries and message posting go over HTTP; live account feeds go over a
// websocket to the same host.
//
// The package exports two things the rest of the bridge consumes: Client,
// a wallet.Transport, and Engine, the production wallet.Engine that mints
// clients and feeds.
package gql
