// Package walletbridge exposes an asynchronous wallet engine to a
// single-threaded foreign host.
//
// The foreign side holds opaque handles and receives serialized envelopes
// on completion ports; it never blocks on engine work and gateway threads
// never execute foreign code.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	walletbridge/        Root package wiring the default gateway
//	├── gateway/         Boundary surface: dispatch, subscribe, lifecycle
//	├── dispatch/        Method table, panic containment, stream pumps
//	├── registry/        Opaque handle table with reference counting
//	├── supervisor/      Worker pool executor with bounded shutdown
//	├── port/            Completion and event delivery to the foreign host
//	├── envelope/        Request/response wire codec, wide-integer strings
//	├── errors/          Structured error types with stable wire kinds
//	├── wallet/          Engine, transport and subscription contracts
//	│   └── wallettest/  In-memory engine for tests
//	├── walletops/       The wallet method set bound to dispatch handlers
//	└── transport/gql/   GraphQL node transport with websocket feeds
//
// # Quick Start
//
// Bring up the process-wide gateway and dispatch a call:
//
//	g, err := walletbridge.InitFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer walletbridge.Teardown()
//
//	p := port.NewChanPort(16)
//	status := g.Dispatch("create_gql_transport",
//	    []byte(`{"url":"https://node.example/graphql"}`), 0, p)
//	if status == gateway.StatusOK {
//	    raw := <-p.C() // serialized response envelope
//	    _ = raw
//	}
//
// Every accepted dispatch delivers exactly one envelope, even when the
// handler fails or panics. Subscriptions deliver events in production
// order followed by exactly one terminal record.
package walletbridge
