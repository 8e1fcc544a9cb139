package types

// ------------------------
// ADC capability ("voltage")
// ------------------------

// ADCInfo is the retained info document of a voltage capability.
type ADCInfo struct {
	SchemaVersion int     `json:"schema_version"`
	Driver        string  `json:"driver"`
	Bus           string  `json:"bus"`
	Addr          uint16  `json:"addr"`
	Mode          string  `json:"mode"`
	Bits          int     `json:"bits"`
	Gain          int     `json:"gain"`
	FullScale     float64 `json:"full_scale_v"`
}

// ADCValue is one conversion result.
type ADCValue struct {
	Raw   int32   `json:"raw"`
	Volts float64 `json:"volts"`
	Bits  int     `json:"bits"`
	Gain  int     `json:"gain"`
	TsMs  int64   `json:"ts_ms"`
}

// Microvolts returns Volts rounded to the nearest microvolt.
func (v ADCValue) Microvolts() int32 {
	uv := v.Volts * 1e6
	if uv < 0 {
		return int32(uv - 0.5)
	}
	return int32(uv + 0.5)
}

// ADCSettings carries converter settings. Zero fields are left unchanged
// when used as a control payload.
type ADCSettings struct {
	Mode string `json:"mode,omitempty"` // "one_shot" | "continuous"
	Bits int    `json:"bits,omitempty"` // 12, 14, 16, 18
	Gain int    `json:"gain,omitempty"` // 1, 2, 4, 8
}

// ADCConfigReply answers set_* and get_config controls.
type ADCConfigReply struct {
	OK        bool        `json:"ok"`
	Requested ADCSettings `json:"requested"`
	Active    ADCSettings `json:"active"`
	Pending   bool        `json:"pending"`
}
