package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"mcp3421-go/bus"
	"mcp3421-go/services/config"
	"mcp3421-go/services/hal"
	"mcp3421-go/types"
)

const twoBuses = `
hal:
  devices:
    - id: a
      type: mcp3421
      bus_ref: { id: i2c0 }
      params: { addr_code: 3 }
    - id: b
      type: mcp3421
      bus_ref: { id: i2c1 }
    - id: c
      type: mcp3421
      bus_ref: { id: i2c1 }
      params: { addr_code: 3, bits: 18 }
`

func TestHALOptions(t *testing.T) {
	cfg, err := config.Parse([]byte(twoBuses))
	if err != nil {
		t.Fatal(err)
	}
	got, err := halOptions(cfg, []string{"i2c1=/dev/i2c-7"}, true, 0.25)
	if err != nil {
		t.Fatal(err)
	}
	want := hal.Options{
		I2C:      map[string]string{"i2c0": "", "i2c1": "/dev/i2c-7"},
		Sim:      true,
		SimCodes: []uint8{0, 3},
		SimVolts: 0.25,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("options (-want +got):\n%s", diff)
	}
}

func TestHALOptionsErrors(t *testing.T) {
	cfg := &config.Config{}
	if _, err := halOptions(cfg, []string{"nobus"}, false, 0); err == nil {
		t.Fatal("mapping without '=' accepted")
	}
	cfg.HAL.Devices = []types.Device{{ID: "x", Type: "mcp3421", Params: map[string]any{"addr_code": 9}}}
	if _, err := halOptions(cfg, nil, true, 0); err == nil {
		t.Fatal("addr_code 9 accepted")
	}
}

func TestFormatValue(t *testing.T) {
	got := formatValue(bus.T("hal", "capability", "voltage", 0, "value"), types.ADCValue{Raw: 16000, Volts: 1, Bits: 16, Gain: 2})
	want := "hal/capability/voltage/0/value raw=16000 volts=1.000000 bits=16 gain=2"
	if got != want {
		t.Fatalf("got %q", got)
	}
}

func TestEmbeddedConfigs(t *testing.T) {
	for _, sim := range []bool{false, true} {
		cfg, err := loadConfig(t.Context(), "", sim)
		if err != nil {
			t.Fatalf("sim=%v: %v", sim, err)
		}
		if len(cfg.HAL.Devices) == 0 {
			t.Fatalf("sim=%v: no devices", sim)
		}
	}
}
