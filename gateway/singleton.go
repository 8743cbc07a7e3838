package gateway

import (
	"fmt"
	"sync"

	"github.com/wippyai/wallet-bridge/dispatch"
	"github.com/wippyai/wallet-bridge/registry"
)

// The boundary exposes one process-wide gateway: foreign hosts hold raw
// handle numbers, which are only meaningful against a single registry.
// Handlers still receive everything through their request context, so
// tests construct private gateways and never touch the singleton.
var (
	defaultMu sync.Mutex
	defaultGW *Gateway
	torndown  bool
)

// InitDefault installs the process-wide gateway on first use. The registry
// and dispatch table come pre-wired from the collaborator (see
// walletops.Register). Later calls fail: the singleton is initialized once
// and torn down once.
func InitDefault(cfg Config, reg *registry.Registry, table *dispatch.Table) (*Gateway, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if torndown {
		return nil, fmt.Errorf("gateway was already torn down")
	}
	if defaultGW != nil {
		return nil, fmt.Errorf("gateway already initialized")
	}

	g := New(cfg, reg, table)
	if err := g.Start(); err != nil {
		return nil, err
	}
	defaultGW = g
	return g, nil
}

// Default returns the process-wide gateway, or nil before InitDefault.
func Default() *Gateway {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultGW
}

// TeardownDefault closes the process-wide gateway. Called at most once, at
// process exit; the gateway cannot be re-initialized afterwards.
func TeardownDefault() error {
	defaultMu.Lock()
	g := defaultGW
	defaultGW = nil
	torndown = true
	defaultMu.Unlock()

	if g == nil {
		return nil
	}
	return g.Close()
}
