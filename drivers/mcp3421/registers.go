package mcp3421

import "time"

// Base I2C address. The low three bits come from the part's address option
// (A0..A7 variants).
const BaseAddress = 0x68

// Address returns the 7-bit bus address for a device-selection code.
// Only the low three bits of code are used.
func Address(code uint8) uint16 {
	return BaseAddress | uint16(code&0x07)
}

// Configuration register layout.
const (
	bitReady  = 7
	bitMode   = 4
	shiftRate = 2
	shiftGain = 0

	maskReady = 1 << bitReady
	maskMode  = 1 << bitMode
	maskRate  = 0x03 << shiftRate
	maskGain  = 0x03 << shiftGain
)

// FullScale is the converter's reference span in volts.
const FullScale = 4.096

// Mode selects one-shot or continuous conversion.
type Mode uint8

const (
	OneShot Mode = iota
	Continuous
)

// ParseMode converts a register code to a Mode.
func ParseMode(code uint8) (Mode, bool) {
	if code > uint8(Continuous) {
		return 0, false
	}
	return Mode(code), true
}

func (m Mode) String() string {
	switch m {
	case OneShot:
		return "one_shot"
	case Continuous:
		return "continuous"
	default:
		return "unknown"
	}
}

// SampleRate selects the conversion rate, which fixes the resolution.
type SampleRate uint8

const (
	SPS240  SampleRate = iota // 12-bit
	SPS60                     // 14-bit
	SPS15                     // 16-bit
	SPS3_75                   // 18-bit
)

// ParseSampleRate converts a register code to a SampleRate.
func ParseSampleRate(code uint8) (SampleRate, bool) {
	if code > uint8(SPS3_75) {
		return 0, false
	}
	return SampleRate(code), true
}

// RateForBits returns the SampleRate producing the given resolution.
func RateForBits(bits int) (SampleRate, bool) {
	switch bits {
	case 12:
		return SPS240, true
	case 14:
		return SPS60, true
	case 16:
		return SPS15, true
	case 18:
		return SPS3_75, true
	default:
		return 0, false
	}
}

// Bits returns the resolution in bits. Unknown rates report 18.
func (r SampleRate) Bits() int {
	switch r {
	case SPS240:
		return 12
	case SPS60:
		return 14
	case SPS15:
		return 16
	default:
		return 18
	}
}

// DataLen is the number of data bytes the device returns at this rate.
func (r SampleRate) DataLen() int {
	if r.Bits() == 18 {
		return 3
	}
	return 2
}

// ResponseLen is DataLen plus the trailing configuration echo.
func (r SampleRate) ResponseLen() int { return r.DataLen() + 1 }

// ConversionTime is the nominal period of one conversion (1/SPS).
func (r SampleRate) ConversionTime() time.Duration {
	switch r {
	case SPS240:
		return 4167 * time.Microsecond
	case SPS60:
		return 16667 * time.Microsecond
	case SPS15:
		return 66667 * time.Microsecond
	default:
		return 266667 * time.Microsecond
	}
}

func (r SampleRate) String() string {
	switch r {
	case SPS240:
		return "240sps"
	case SPS60:
		return "60sps"
	case SPS15:
		return "15sps"
	case SPS3_75:
		return "3.75sps"
	default:
		return "unknown"
	}
}

// Gain is the programmable gain amplifier setting.
type Gain uint8

const (
	GainX1 Gain = iota
	GainX2
	GainX4
	GainX8
)

// ParseGain converts a register code to a Gain.
func ParseGain(code uint8) (Gain, bool) {
	if code > uint8(GainX8) {
		return 0, false
	}
	return Gain(code), true
}

// GainForFactor returns the Gain for a multiplier of 1, 2, 4 or 8.
func GainForFactor(f int) (Gain, bool) {
	switch f {
	case 1:
		return GainX1, true
	case 2:
		return GainX2, true
	case 4:
		return GainX4, true
	case 8:
		return GainX8, true
	default:
		return 0, false
	}
}

// Factor returns the amplifier multiplier.
func (g Gain) Factor() int {
	if g > GainX8 {
		return 1
	}
	return 1 << g
}

func (g Gain) String() string {
	switch g {
	case GainX1:
		return "x1"
	case GainX2:
		return "x2"
	case GainX4:
		return "x4"
	case GainX8:
		return "x8"
	default:
		return "unknown"
	}
}

// Config is the value held in the device's configuration register.
type Config struct {
	Mode Mode
	Rate SampleRate
	Gain Gain
}

// DefaultConfig is the power-on setting used by New.
func DefaultConfig() Config {
	return Config{Mode: Continuous, Rate: SPS240, Gain: GainX1}
}

// Encode packs c into a register byte. The ready bit is set only in
// one-shot mode, where writing it starts a new conversion.
func (c Config) Encode() byte {
	var b byte
	if c.Mode == OneShot {
		b |= maskReady
	}
	b |= (byte(c.Mode) << bitMode) & maskMode
	b |= (byte(c.Rate) << shiftRate) & maskRate
	b |= (byte(c.Gain) << shiftGain) & maskGain
	return b
}

// DecodeConfig extracts the ready flag and settings from a register byte
// echoed by the device.
func DecodeConfig(b byte) (ready bool, c Config) {
	ready = b&maskReady != 0
	c.Mode = Mode((b & maskMode) >> bitMode)
	c.Rate = SampleRate((b & maskRate) >> shiftRate)
	c.Gain = Gain((b & maskGain) >> shiftGain)
	return ready, c
}
