package errcode

import (
	"errors"

	"mcp3421-go/drivers/mcp3421"
)

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK                Code = "ok"
	Busy              Code = "busy"
	Unsupported       Code = "unsupported"
	InvalidParams     Code = "invalid_params"
	InvalidPayload    Code = "invalid_payload"
	InvalidPeriod     Code = "invalid_period"
	InvalidTopic      Code = "invalid_topic"
	InvalidCapAddr    Code = "invalid_capability_address"
	UnknownCapability Code = "unknown_capability"
	NoAdaptor         Code = "no_adaptor"
	HALNotReady       Code = "hal_not_ready"

	MissingBusRef Code = "missing_bus_ref"
	UnknownBus    Code = "unknown_bus"
	UnknownType   Code = "unknown_type"
	Timeout       Code = "timeout"

	NotReady  Code = "not_ready"
	ShortRead Code = "short_read"
	NoDevice  Code = "no_device"

	Error Code = "error" // generic fallback
)

// E wraps a Code with context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Wrap returns an *E, or nil when err is nil. The code is derived from err.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: MapDriverErr(err), Op: op, Msg: err.Error(), Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	return Error
}

// MapDriverErr maps low-level driver errors to a Code.
func MapDriverErr(err error) Code {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, mcp3421.ErrNotReady):
		return NotReady
	case errors.Is(err, mcp3421.ErrShortRead):
		return ShortRead
	case errors.Is(err, mcp3421.ErrTimeout):
		return Timeout
	case errors.Is(err, mcp3421.ErrNoDevice):
		return NoDevice
	}
	return Of(err)
}
