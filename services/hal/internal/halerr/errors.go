// services/hal/internal/halerr/errors.go
package halerr

import "mcp3421-go/errcode"

var (
	// Service/control plane
	ErrBusy           error = errcode.Busy
	ErrInvalidPeriod  error = errcode.InvalidPeriod
	ErrInvalidCapAddr error = errcode.InvalidCapAddr
	ErrUnknownCap     error = errcode.UnknownCapability
	ErrNoAdaptor      error = errcode.NoAdaptor
	ErrInvalidPayload error = errcode.InvalidPayload

	// Build/config
	ErrMissingBusRef error = errcode.MissingBusRef
	ErrUnknownBus    error = errcode.UnknownBus
	ErrUnknownType   error = errcode.UnknownType
	ErrInvalidParams error = errcode.InvalidParams

	// Generic / pass-through
	ErrUnsupported error = errcode.Unsupported
)
