// services/hal/internal/consts/consts.go
package consts

// Top-level topics
const (
	TokConfig     = "config"
	TokHAL        = "hal"
	TokCapability = "capability"
	TokInfo       = "info"
	TokState      = "state"
	TokValue      = "value"
	TokControl    = "control"
)

// Control verbs handled by the service itself.
const (
	CtrlReadNow = "read_now"
	CtrlSetRate = "set_rate"
)

// Control verbs passed through to ADC adaptors.
const (
	CtrlSetGain   = "set_gain"
	CtrlSetBits   = "set_bits"
	CtrlSetMode   = "set_mode"
	CtrlGetConfig = "get_config"
)

// Capability kinds used in service wiring
const (
	KindVoltage = "voltage"
)

const (
	LinkUp       = "up"
	LinkDown     = "down"
	LinkDegraded = "degraded"
)

// Bus reference types.
const BusI2C = "i2c"
