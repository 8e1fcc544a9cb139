package types

import "time"

// BridgeState is retained on "bridge/state".
type BridgeState struct {
	Link     Link      `json:"link"`
	Status   string    `json:"status"` // short machine code
	Endpoint string    `json:"endpoint,omitempty"`
	Writes   uint64    `json:"writes"`
	Error    string    `json:"error,omitempty"`
	TS       time.Time `json:"ts"`
}

// HeartbeatState is retained on "heartbeat/state".
type HeartbeatState struct {
	Seq      uint64    `json:"seq"`
	UptimeMs int64     `json:"uptime_ms"`
	TS       time.Time `json:"ts"`
}
