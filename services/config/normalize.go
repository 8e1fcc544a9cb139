package config

// Defaults applied by Normalize.
const (
	DefaultLogLevel         = "info"
	DefaultBridgeTransport  = "modbus_tcp"
	DefaultBridgeStride     = 6
	DefaultBridgeTimeoutMs  = 1000
	DefaultBridgeBackoffMs  = 500
	DefaultBridgeMaxBackoff = 30000
	DefaultHeartbeatMs      = 1000
)

// Normalize fills defaults. It must be called only after Validate.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}

	for i := range cfg.HAL.Devices {
		d := &cfg.HAL.Devices[i]
		// Devices on a named bus default to I²C.
		if d.BusRef.ID != "" && d.BusRef.Type == "" {
			d.BusRef.Type = "i2c"
		}
	}

	if b := cfg.Bridge; b != nil {
		if b.Transport == "" {
			b.Transport = DefaultBridgeTransport
		}
		if b.Stride == 0 {
			b.Stride = DefaultBridgeStride
		}
		if b.TimeoutMs == 0 {
			b.TimeoutMs = DefaultBridgeTimeoutMs
		}
		if b.BackoffMs == 0 {
			b.BackoffMs = DefaultBridgeBackoffMs
		}
		if b.MaxBackoffMs == 0 {
			b.MaxBackoffMs = DefaultBridgeMaxBackoff
		}
		if b.MaxBackoffMs < b.BackoffMs {
			b.MaxBackoffMs = b.BackoffMs
		}
	}

	if cfg.Heartbeat != nil && cfg.Heartbeat.IntervalMs == 0 {
		cfg.Heartbeat.IntervalMs = DefaultHeartbeatMs
	}
}
