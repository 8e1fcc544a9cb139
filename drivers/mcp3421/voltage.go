package mcp3421

// ToVoltage scales a decoded reading to volts at the resolution of r.
// Gain is not divided out; the result is the voltage seen by the converter.
func ToVoltage(v int32, r SampleRate) float64 {
	return float64(v) * FullScale / float64(uint32(1)<<r.Bits())
}

// LSB returns the voltage of one code step at the resolution of r.
func LSB(r SampleRate) float64 {
	return ToVoltage(1, r)
}
