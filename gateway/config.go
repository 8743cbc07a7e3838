package gateway

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wippyai/wallet-bridge/dispatch"
	"github.com/wippyai/wallet-bridge/port"
	"github.com/wippyai/wallet-bridge/supervisor"
)

// Config holds gateway tuning. Zero values mean defaults.
type Config struct {
	// Workers sizes the executor pool; zero means one per available core.
	Workers int

	// QueueDepth is the executor's pending-task buffer.
	QueueDepth int

	// ShutdownGrace bounds how long Close waits for in-flight work.
	ShutdownGrace time.Duration

	// LogLevel is one of debug, info, warn, error. Empty disables logging.
	LogLevel string
}

const (
	DefaultLogLevel = ""
)

// LoadConfig reads configuration from environment variables, loading a
// .env file first if one is present (local development only).
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Workers:       getEnvInt("BRIDGE_WORKERS", 0),
		QueueDepth:    getEnvInt("BRIDGE_QUEUE_DEPTH", 0),
		ShutdownGrace: time.Duration(getEnvInt("BRIDGE_SHUTDOWN_GRACE_MS", 0)) * time.Millisecond,
		LogLevel:      os.Getenv("BRIDGE_LOG_LEVEL"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the supervisor cannot honor.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("BRIDGE_WORKERS must be >= 0, got %d", c.Workers)
	}
	if c.QueueDepth < 0 {
		return fmt.Errorf("BRIDGE_QUEUE_DEPTH must be >= 0, got %d", c.QueueDepth)
	}
	if c.ShutdownGrace < 0 {
		return fmt.Errorf("BRIDGE_SHUTDOWN_GRACE_MS must be >= 0")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("BRIDGE_LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}

// ConfigureLogging builds a zap logger for the configured level and
// installs it in every gateway package. An empty level keeps the no-op
// default everywhere and returns nil.
func ConfigureLogging(level string) (*zap.Logger, error) {
	if level == "" {
		return nil, nil
	}

	zcfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zcfg.Level = lvl

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}

	SetLogger(logger.Named("gateway"))
	supervisor.SetLogger(logger.Named("supervisor"))
	dispatch.SetLogger(logger.Named("dispatch"))
	port.SetLogger(logger.Named("port"))
	return logger, nil
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
