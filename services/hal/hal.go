// services/hal/hal.go
package hal

import (
	"context"

	"mcp3421-go/bus"
	"mcp3421-go/services/hal/internal/halcore"
	"mcp3421-go/services/hal/internal/platform"
	"mcp3421-go/services/hal/internal/service"

	// Register device builders.
	_ "mcp3421-go/services/hal/internal/devices/mcp3421"
)

// Options selects the buses the HAL serves.
type Options struct {
	// I2C maps bus ids ("i2c0") to platform bus names. Ignored on RP2.
	I2C map[string]string
	// Sim replaces hardware with simulated converters at SimCodes on every
	// bus id in I2C (or "i2c0"), each reading SimVolts.
	Sim      bool
	SimCodes []uint8
	SimVolts float64
}

// Run serves the HAL on conn until ctx is done. It fails only when the
// buses cannot be opened.
func Run(ctx context.Context, conn *bus.Connection, opts Options) error {
	buses, err := openBuses(opts)
	if err != nil {
		return err
	}
	defer buses.Close()
	run(ctx, conn, buses)
	return nil
}

func run(ctx context.Context, conn *bus.Connection, buses halcore.I2CBusFactory) {
	service.New(conn, buses).Run(ctx)
}

func openBuses(opts Options) (*platform.Buses, error) {
	if !opts.Sim {
		return platform.DefaultI2CFactory(opts.I2C)
	}
	ids := make([]string, 0, len(opts.I2C))
	for id := range opts.I2C {
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		ids = []string{"i2c0"}
	}
	codes := opts.SimCodes
	if len(codes) == 0 {
		codes = []uint8{0}
	}
	f, _ := platform.SimI2CFactory(ids, codes, opts.SimVolts)
	return f, nil
}
