// Package conv formats integers without fmt or strconv.
package conv

// AppendInt appends the base-10 form of n to dst.
func AppendInt(dst []byte, n int64) []byte {
	if n < 0 {
		dst = append(dst, '-')
		// -n overflows for MinInt64; uint64 negation does not.
		return AppendUint(dst, uint64(-(n + 1))+1)
	}
	return AppendUint(dst, uint64(n))
}
