// services/hal/internal/platform/factories_linux.go
//go:build linux && !(rp2040 || rp2350)

package platform

import (
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"mcp3421-go/services/hal/internal/util"
)

// DefaultI2CFactory opens Linux I²C buses through periph. names maps bus ids
// to periph bus names ("1", "/dev/i2c-1"); an empty name opens the first
// bus found.
func DefaultI2CFactory(names map[string]string) (*Buses, error) {
	if _, err := host.Init(); err != nil {
		return nil, util.Errf("periph init: %w", err)
	}
	if len(names) == 0 {
		names = map[string]string{"i2c0": ""}
	}
	f := NewBuses(DefaultTxTimeout)
	for id, name := range names {
		bc, err := i2creg.Open(name)
		if err != nil {
			f.Close()
			return nil, util.Errf("open i2c %q (%s): %w", name, id, err)
		}
		// Not every adapter can change speed; keep its default then.
		_ = bc.SetSpeed(400 * physic.KiloHertz)
		f.Add(id, bc)
	}
	return f, nil
}
