package mcp3421

import "tinygo.org/x/drivers"

// Transport is the byte-level bus access the driver needs. Implementations
// must serialise access if the bus is shared.
type Transport interface {
	// Write sends a single byte to the device at addr.
	Write(addr uint16, b byte) error
	// ReadBytes reads up to len(p) bytes and reports how many arrived.
	ReadBytes(addr uint16, p []byte) (int, error)
}

// I2C adapts a drivers.I2C bus (machine.I2C on TinyGo, a periph bus on
// Linux) to Transport.
type I2C struct {
	Bus drivers.I2C
	w   [1]byte
}

// NewI2C wraps bus.
func NewI2C(bus drivers.I2C) *I2C { return &I2C{Bus: bus} }

func (t *I2C) Write(addr uint16, b byte) error {
	t.w[0] = b
	return t.Bus.Tx(addr, t.w[:], nil)
}

// ReadBytes performs a read-only transaction. Tx is all-or-nothing, so a
// failed transaction reports zero bytes.
func (t *I2C) ReadBytes(addr uint16, p []byte) (int, error) {
	if err := t.Bus.Tx(addr, nil, p); err != nil {
		return 0, err
	}
	return len(p), nil
}
