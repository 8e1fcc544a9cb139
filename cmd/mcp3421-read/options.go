package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"mcp3421-go/services/config"
	"mcp3421-go/services/hal"
	"mcp3421-go/types"
)

// halOptions maps every bus the config references to a platform bus name.
// Unmapped buses get "", the first bus periph finds.
func halOptions(cfg *config.Config, mappings []string, sim bool, volts float64) (hal.Options, error) {
	opts := hal.Options{I2C: map[string]string{}, Sim: sim, SimVolts: volts}
	for _, d := range cfg.HAL.Devices {
		if d.BusRef.ID != "" {
			opts.I2C[d.BusRef.ID] = ""
		}
	}
	for _, m := range mappings {
		id, name, ok := strings.Cut(m, "=")
		if !ok || id == "" {
			return opts, fmt.Errorf("bad i2c mapping %q, want id=name", m)
		}
		opts.I2C[id] = name
	}
	if sim {
		codes, err := simCodes(cfg.HAL.Devices)
		if err != nil {
			return opts, err
		}
		opts.SimCodes = codes
	}
	return opts, nil
}

// simCodes lists the distinct address codes the devices use.
func simCodes(devs []types.Device) ([]uint8, error) {
	seen := map[uint8]bool{}
	var out []uint8
	for _, d := range devs {
		var p struct {
			AddrCode int `json:"addr_code"`
		}
		if d.Params != nil {
			b, err := json.Marshal(d.Params)
			if err != nil {
				return nil, fmt.Errorf("%s: params: %w", d.ID, err)
			}
			if err := json.Unmarshal(b, &p); err != nil {
				return nil, fmt.Errorf("%s: params: %w", d.ID, err)
			}
		}
		if p.AddrCode < 0 || p.AddrCode > 7 {
			return nil, fmt.Errorf("%s: addr_code %d out of range", d.ID, p.AddrCode)
		}
		if c := uint8(p.AddrCode); !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func formatValue(topic fmt.Stringer, v types.ADCValue) string {
	return topic.String() + " raw=" + strconv.Itoa(int(v.Raw)) +
		" volts=" + strconv.FormatFloat(v.Volts, 'f', 6, 64) +
		" bits=" + strconv.Itoa(v.Bits) + " gain=" + strconv.Itoa(v.Gain)
}
