package gateway

import (
	"testing"
	"time"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("BRIDGE_WORKERS", "8")
	t.Setenv("BRIDGE_QUEUE_DEPTH", "128")
	t.Setenv("BRIDGE_SHUTDOWN_GRACE_MS", "1500")
	t.Setenv("BRIDGE_LOG_LEVEL", "warn")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Workers != 8 || cfg.QueueDepth != 128 {
		t.Fatalf("pool config = %+v", cfg)
	}
	if cfg.ShutdownGrace != 1500*time.Millisecond {
		t.Fatalf("grace = %v", cfg.ShutdownGrace)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"zero values", Config{}, true},
		{"negative workers", Config{Workers: -1}, false},
		{"negative queue", Config{QueueDepth: -2}, false},
		{"bad level", Config{LogLevel: "loud"}, false},
		{"known level", Config{LogLevel: "debug"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok && err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatal("invalid config accepted")
			}
		})
	}
}
