package types

import "time"

// ------------------------
// Common HAL state (retained)
// ------------------------

type HALState struct {
	Level  string    `json:"level"`  // "idle", "ready", "error", "stopped"
	Status string    `json:"status"` // short machine code
	Error  string    `json:"error,omitempty"`
	TS     time.Time `json:"ts"`
}

// Link is the link/state reported for a capability.
type Link string

const (
	LinkUp       Link = "up"
	LinkDown     Link = "down"
	LinkDegraded Link = "degraded"
)

type CapabilityState struct {
	Link  Link      `json:"link"`
	TS    time.Time `json:"ts"`
	Error string    `json:"error,omitempty"` // errcode string
}

// Kind names a capability class on the bus.
type Kind string

const (
	KindVoltage Kind = "voltage"
)

// ------------------------
// Generic control payloads
// ------------------------

type ErrorReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type ReadNowAck struct {
	OK bool `json:"ok"`
}

// SetRate requests a new sampling period for a capability. PeriodMs is
// used when Period is zero (JSON callers).
type SetRate struct {
	Period   time.Duration `json:"period,omitempty"`
	PeriodMs int           `json:"period_ms,omitempty"`
}

// Duration returns the requested period.
func (r SetRate) Duration() time.Duration {
	if r.Period > 0 {
		return r.Period
	}
	return time.Duration(r.PeriodMs) * time.Millisecond
}

type SetRateAck struct {
	OK     bool          `json:"ok"`
	Period time.Duration `json:"period"`
}
