// services/hal/internal/platform/factories_rp2xxx.go
//go:build rp2040 || rp2350

package platform

import (
	"machine"
)

// DefaultI2CFactory configures i2c0 and i2c1 with board-default pins at
// 400 kHz. Bus names are ignored on RP2.
func DefaultI2CFactory(map[string]string) (*Buses, error) {
	f := NewBuses(DefaultTxTimeout)

	b0 := machine.I2C0
	if err := b0.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	}); err != nil {
		return nil, err
	}
	f.Add("i2c0", b0)

	b1 := machine.I2C1
	if err := b1.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C1_SDA_PIN,
		SCL:       machine.I2C1_SCL_PIN,
	}); err != nil {
		return nil, err
	}
	f.Add("i2c1", b1)

	return f, nil
}
