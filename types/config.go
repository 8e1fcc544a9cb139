package types

// HAL configuration supplied on topic "config/hal".

type HALConfig struct {
	Devices []Device `json:"devices" yaml:"devices"`
}

type Device struct {
	ID     string `json:"id" yaml:"id"`
	Type   string `json:"type" yaml:"type"`
	Params any    `json:"params,omitempty" yaml:"params,omitempty"`
	BusRef BusRef `json:"bus_ref,omitempty" yaml:"bus_ref,omitempty"` // for shared-bus devices (I²C)
}

// BusRef names a bus instance configured by the platform layer.
type BusRef struct {
	Type string `json:"type" yaml:"type"` // "i2c"
	ID   string `json:"id" yaml:"id"`     // "i2c0"
}

// BridgeConfig is supplied on "config/bridge".
type BridgeConfig struct {
	Transport    string `json:"transport" yaml:"transport"` // "modbus_tcp"
	Endpoint     string `json:"endpoint" yaml:"endpoint"`   // "host:502"
	UnitID       uint8  `json:"unit_id" yaml:"unit_id"`
	BaseAddress  uint16 `json:"base_address" yaml:"base_address"` // first holding register
	Stride       uint16 `json:"stride,omitempty" yaml:"stride,omitempty"`
	TimeoutMs    int    `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	BackoffMs    int    `json:"backoff_ms,omitempty" yaml:"backoff_ms,omitempty"`
	MaxBackoffMs int    `json:"max_backoff_ms,omitempty" yaml:"max_backoff_ms,omitempty"`
}

// HeartbeatConfig is supplied on "config/heartbeat".
type HeartbeatConfig struct {
	IntervalMs int `json:"interval_ms" yaml:"interval_ms"`
}

// LogConfig is supplied on "config/log". Only host binaries use it.
type LogConfig struct {
	Level string `json:"level" yaml:"level"` // zerolog level name
}
