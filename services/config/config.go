package config

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"mcp3421-go/bus"
	"mcp3421-go/types"
)

const configPrefix = "config"

type ctxKey struct{}

// WithDevice returns ctx carrying the device id that selects an embedded
// config.
func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, ctxKey{}, device)
}

// DeviceFrom returns the device id set by WithDevice.
func DeviceFrom(ctx context.Context) (string, bool) {
	d, ok := ctx.Value(ctxKey{}).(string)
	return d, ok && d != ""
}

// Config is the whole configuration document. Each section is published on
// its own retained "config/<section>" topic.
type Config struct {
	Log       types.LogConfig        `yaml:"log"`
	HAL       types.HALConfig        `yaml:"hal"`
	Bridge    *types.BridgeConfig    `yaml:"bridge,omitempty"`
	Heartbeat *types.HeartbeatConfig `yaml:"heartbeat,omitempty"`
}

// Load reads a YAML configuration file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Parse decodes YAML bytes.
func Parse(b []byte) (*Config, error) {
	return Decode(bytes.NewReader(b))
}

// Decode reads one YAML document. Unknown keys are errors.
func Decode(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("config: empty document")
		}
		return nil, err
	}
	return &cfg, nil
}

// Publish sends every present section as a retained message.
func Publish(conn *bus.Connection, cfg *Config) {
	pub := func(section string, v any) {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, section), v, true))
	}
	pub("log", cfg.Log)
	pub("hal", cfg.HAL)
	if cfg.Bridge != nil {
		pub("bridge", *cfg.Bridge)
	}
	if cfg.Heartbeat != nil {
		pub("heartbeat", *cfg.Heartbeat)
	}
}

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// Embedded resolves, validates and normalises the embedded config for the
// device named in ctx.
func Embedded(ctx context.Context) (*Config, error) {
	device, ok := DeviceFrom(ctx)
	if !ok {
		return nil, errors.New("missing device ID in context")
	}
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return nil, errors.New("no embedded config for device: " + device)
	}
	cfg, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	Normalize(cfg)
	return cfg, nil
}
