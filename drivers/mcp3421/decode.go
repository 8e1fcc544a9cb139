package mcp3421

// DecodeSample converts the data bytes of a response (without the trailing
// configuration echo) into a signed reading at the resolution of r.
// data must hold at least r.DataLen() bytes; missing bytes read as zero.
func DecodeSample(data []byte, r SampleRate) int32 {
	var b [3]byte
	copy(b[:], data)

	var mag uint32
	switch r.Bits() {
	case 12:
		mag = uint32(b[0]&0x0F)<<8 | uint32(b[1])
	case 14:
		mag = uint32(b[0]&0x3F)<<8 | uint32(b[1])
	case 16:
		mag = uint32(b[0])<<8 | uint32(b[1])
	default:
		mag = uint32(b[0]&0x03)<<16 | uint32(b[1])<<8 | uint32(b[2])
	}
	return signCorrect(mag, r.Bits())
}

// signCorrect folds codes above half-scale into negatives. The subtrahend is
// 2^bits - 1, so the all-ones code maps to zero.
func signCorrect(mag uint32, bits int) int32 {
	half := uint32(1)<<(bits-1) - 1
	if mag <= half {
		return int32(mag)
	}
	return int32(mag) - int32(uint32(1)<<bits-1)
}
