package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Validate checks configuration correctness.
// It performs declarative validation only and does not mutate cfg.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	if cfg.Log.Level != "" {
		if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
			return fmt.Errorf("log: invalid level %q", cfg.Log.Level)
		}
	}

	seen := make(map[string]struct{}, len(cfg.HAL.Devices))
	for i, d := range cfg.HAL.Devices {
		if d.ID == "" {
			return fmt.Errorf("hal: device %d has no id", i)
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("hal: duplicate device id %q", d.ID)
		}
		seen[d.ID] = struct{}{}
		if d.Type == "" {
			return fmt.Errorf("hal: device %q has no type", d.ID)
		}
		if d.BusRef.Type != "" && d.BusRef.Type != "i2c" {
			return fmt.Errorf("hal: device %q: unsupported bus type %q", d.ID, d.BusRef.Type)
		}
	}

	if b := cfg.Bridge; b != nil {
		if b.Transport != "" && b.Transport != "modbus_tcp" {
			return fmt.Errorf("bridge: unsupported transport %q", b.Transport)
		}
		if b.Endpoint == "" {
			return fmt.Errorf("bridge: endpoint is required")
		}
		if b.Stride != 0 && b.Stride < 6 {
			return fmt.Errorf("bridge: stride %d is smaller than one record (6 registers)", b.Stride)
		}
		if b.TimeoutMs < 0 || b.BackoffMs < 0 || b.MaxBackoffMs < 0 {
			return fmt.Errorf("bridge: negative duration")
		}
		if b.MaxBackoffMs != 0 && b.MaxBackoffMs < b.BackoffMs {
			return fmt.Errorf("bridge: max_backoff_ms below backoff_ms")
		}
	}

	if h := cfg.Heartbeat; h != nil && h.IntervalMs < 0 {
		return fmt.Errorf("heartbeat: negative interval")
	}
	return nil
}
