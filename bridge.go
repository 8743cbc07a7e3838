package walletbridge

import (
	"github.com/wippyai/wallet-bridge/dispatch"
	"github.com/wippyai/wallet-bridge/gateway"
	"github.com/wippyai/wallet-bridge/registry"
	"github.com/wippyai/wallet-bridge/transport/gql"
	"github.com/wippyai/wallet-bridge/wallet"
	"github.com/wippyai/wallet-bridge/walletops"
)

// New assembles a started gateway around an engine, without touching the
// process-wide default. Tests and embedders that manage their own
// lifecycle use this.
func New(cfg gateway.Config, eng wallet.Engine) (*gateway.Gateway, error) {
	reg, table, err := assemble(cfg, eng)
	if err != nil {
		return nil, err
	}
	g := gateway.New(cfg, reg, table)
	if err := g.Start(); err != nil {
		return nil, err
	}
	return g, nil
}

// Init installs the process-wide gateway backed by the production GraphQL
// engine. The foreign-side binding calls this once at startup.
func Init(cfg gateway.Config) (*gateway.Gateway, error) {
	reg, table, err := assemble(cfg, gql.NewEngine())
	if err != nil {
		return nil, err
	}
	return gateway.InitDefault(cfg, reg, table)
}

// InitFromEnv is Init with configuration read from the environment
// (BRIDGE_WORKERS, BRIDGE_QUEUE_DEPTH, BRIDGE_SHUTDOWN_GRACE_MS,
// BRIDGE_LOG_LEVEL).
func InitFromEnv() (*gateway.Gateway, error) {
	cfg, err := gateway.LoadConfig()
	if err != nil {
		return nil, err
	}
	return Init(cfg)
}

// Teardown closes the process-wide gateway. Called at most once, at
// process exit.
func Teardown() error {
	return gateway.TeardownDefault()
}

func assemble(cfg gateway.Config, eng wallet.Engine) (*registry.Registry, *dispatch.Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if _, err := gateway.ConfigureLogging(cfg.LogLevel); err != nil {
		return nil, nil, err
	}

	reg := registry.New()
	table := dispatch.NewTable()
	if err := walletops.Register(table, eng, reg); err != nil {
		return nil, nil, err
	}
	return reg, table, nil
}
