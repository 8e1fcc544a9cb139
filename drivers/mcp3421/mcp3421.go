// Package mcp3421 provides a driver for the MCP3421 single-channel
// delta-sigma ADC (12 to 18 bit, programmable gain).
//
// The device is driven by cooperative polling:
//
//	d := mcp3421.New(mcp3421.NewI2C(bus), 0)
//	d.SetSampleRate(mcp3421.SPS3_75)
//	for !d.PollOnce() {
//		time.Sleep(d.ConversionTime())
//	}
//	v := d.Voltage()
//
// The caller must poll at least as often as the conversion time of the
// active rate or samples are skipped. Trigger and Collect expose the two
// halves of a poll for callers that schedule the wait themselves; Read
// performs a full bounded cycle.
//
// A Device is not safe for concurrent use. The transport must serialise
// access to a shared bus.
package mcp3421

import (
	"errors"
	"time"
)

// Errors returned by the driver.
var (
	ErrNotReady  = errors.New("mcp3421: not ready")
	ErrShortRead = errors.New("mcp3421: short read")
	ErrTimeout   = errors.New("mcp3421: timeout")
)

// Options controls Read. All fields are optional.
type Options struct {
	// PollInterval is the wait between Collect attempts in Read. Defaults to
	// a quarter of the active conversion time.
	PollInterval time.Duration
	// ReadTimeout bounds the total wait in Read. Defaults to four conversion
	// times of the active rate.
	ReadTimeout time.Duration
}

// Device is one MCP3421 at a fixed address.
type Device struct {
	bus     Transport
	Address uint16

	opts  Options
	want  Config // requested settings, written on the next poll when dirty
	cur   Config // settings in effect, from the last write or echo
	dirty bool
	ready bool // last echo had the ready flag set

	value     int32
	valueRate SampleRate // rate value was decoded at
	buf       [4]byte
}

// New creates a Device for the part selected by code (0..7). No bus traffic
// happens until the first poll, which writes the default configuration.
func New(bus Transport, code uint8) *Device {
	return &Device{
		bus:     bus,
		Address: Address(code),
		want:    DefaultConfig(),
		cur:     DefaultConfig(),
		dirty:   true,

		valueRate: DefaultConfig().Rate,
	}
}

// Configure applies Options. It does not touch the device.
func (d *Device) Configure(opts Options) {
	d.opts = opts
}

// SetConversionMode selects one-shot or continuous conversion.
func (d *Device) SetConversionMode(m Mode) {
	d.want.Mode = m
	d.dirty = true
}

// SetSampleRate selects the conversion rate and so the resolution.
func (d *Device) SetSampleRate(r SampleRate) {
	d.want.Rate = r
	d.dirty = true
}

// SetGain selects the amplifier gain.
func (d *Device) SetGain(g Gain) {
	d.want.Gain = g
	d.dirty = true
}

// Apply replaces all three settings at once.
func (d *Device) Apply(c Config) {
	d.want = c
	d.dirty = true
}

// Requested returns the settings most recently asked for.
func (d *Device) Requested() Config { return d.want }

// Config returns the settings in effect as last reported by the device.
func (d *Device) Config() Config { return d.cur }

// Pending reports whether requested settings are still to be written.
func (d *Device) Pending() bool { return d.dirty }

// ConversionTime is the nominal conversion period of the active rate.
func (d *Device) ConversionTime() time.Duration { return d.cur.Rate.ConversionTime() }

// Trigger writes the configuration register when settings are pending or
// the device is in one-shot mode (which starts a new conversion).
// On a write error the settings stay pending.
func (d *Device) Trigger() error {
	if !d.dirty && d.want.Mode != OneShot {
		return nil
	}
	if err := d.bus.Write(d.Address, d.want.Encode()); err != nil {
		return err
	}
	d.cur = d.want
	d.dirty = false
	return nil
}

// Collect reads one response. The trailing register echo always updates the
// settings reported by Config. The cached value changes only when the echo
// carries the ready flag; otherwise ErrNotReady is returned. A response of
// the wrong length yields ErrShortRead and leaves all state untouched.
func (d *Device) Collect() error {
	n := d.cur.Rate.ResponseLen()
	buf := d.buf[:n]
	got, err := d.bus.ReadBytes(d.Address, buf)
	if got != n {
		if err != nil {
			return err
		}
		return ErrShortRead
	}

	ready, echo := DecodeConfig(buf[n-1])
	d.cur = echo
	d.ready = ready
	if !ready {
		return ErrNotReady
	}
	d.value = DecodeSample(buf[:n-1], echo.Rate)
	d.valueRate = echo.Rate
	return nil
}

// Poll runs one protocol step: Trigger then Collect.
func (d *Device) Poll() error {
	if err := d.Trigger(); err != nil {
		return err
	}
	return d.Collect()
}

// PollOnce runs one protocol step and reports whether a new value was
// cached. It never blocks beyond the two bus transactions.
func (d *Device) PollOnce() bool {
	return d.Poll() == nil
}

// Read triggers a conversion and polls until a value arrives or the timeout
// elapses.
func (d *Device) Read() error {
	if err := d.Trigger(); err != nil {
		return err
	}
	interval, timeout := d.opts.PollInterval, d.opts.ReadTimeout
	if interval <= 0 {
		interval = d.ConversionTime() / 4
	}
	if timeout <= 0 {
		timeout = 4 * d.ConversionTime()
	}
	deadline := time.Now().Add(timeout)
	for {
		err := d.Collect()
		switch err {
		case nil:
			return nil
		case ErrNotReady:
			if time.Now().After(deadline) {
				return ErrTimeout
			}
			time.Sleep(interval)
		default:
			return err
		}
	}
}

// Value returns the last decoded reading.
func (d *Device) Value() int32 { return d.value }

// ValueRate is the rate the cached reading was decoded at. It can differ
// from Config().Rate after a reconfigure until the next ready conversion.
func (d *Device) ValueRate() SampleRate { return d.valueRate }

// Voltage returns the last reading in volts, scaled at the resolution it was
// decoded with.
func (d *Device) Voltage() float64 { return ToVoltage(d.value, d.valueRate) }

// Ready reports the ready flag of the last echo.
func (d *Device) Ready() bool { return d.ready }
