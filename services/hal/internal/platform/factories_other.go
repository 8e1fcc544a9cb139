// services/hal/internal/platform/factories_other.go
//go:build !linux && !rp2040 && !rp2350

package platform

import "mcp3421-go/errcode"

// DefaultI2CFactory has no hardware buses to offer on this platform; use
// SimI2CFactory instead.
func DefaultI2CFactory(map[string]string) (*Buses, error) {
	return nil, &errcode.E{C: errcode.Unsupported, Op: "i2c", Msg: "no i2c buses on this platform"}
}
