// services/hal/internal/devices/mcp3421/builder.go
package mcp3421

import (
	"time"

	"mcp3421-go/drivers/mcp3421"
	"mcp3421-go/errcode"
	"mcp3421-go/services/hal/internal/consts"
	"mcp3421-go/services/hal/internal/halerr"
	"mcp3421-go/services/hal/internal/registry"
	"mcp3421-go/services/hal/internal/util"
	"mcp3421-go/types"
)

const defaultSampleEvery = time.Second

func init() {
	registry.RegisterBuilder("mcp3421", builder{})
}

// params is the device "params" object, e.g.
//
//	{ "addr_code": 0, "mode": "one_shot", "bits": 16, "gain": 1, "sample_every_ms": 1000 }
type params struct {
	AddrCode      int    `json:"addr_code"`
	Mode          string `json:"mode"`
	Bits          int    `json:"bits"`
	Gain          int    `json:"gain"`
	SampleEveryMs int    `json:"sample_every_ms"`
}

type builder struct{}

func (builder) Build(in registry.BuildInput) (registry.BuildOutput, error) {
	if in.BusRefType != consts.BusI2C || in.BusRefID == "" {
		return registry.BuildOutput{}, util.Errf("mcp3421: %w", halerr.ErrMissingBusRef)
	}
	i2c, ok := in.Buses.ByID(in.BusRefID)
	if !ok {
		return registry.BuildOutput{}, util.Errf("mcp3421: %w %q", halerr.ErrUnknownBus, in.BusRefID)
	}

	var p params
	if err := util.DecodeJSON(in.ParamsJSON, &p); err != nil {
		return registry.BuildOutput{}, &errcode.E{C: errcode.InvalidParams, Op: "mcp3421", Msg: err.Error(), Err: err}
	}
	if p.AddrCode < 0 || p.AddrCode > 7 {
		return registry.BuildOutput{}, &errcode.E{C: errcode.InvalidParams, Op: "mcp3421", Msg: "addr_code out of range"}
	}
	cfg, err := toConfig(mcp3421.DefaultConfig(), types.ADCSettings{Mode: p.Mode, Bits: p.Bits, Gain: p.Gain})
	if err != nil {
		return registry.BuildOutput{}, &errcode.E{C: errcode.InvalidParams, Op: "mcp3421", Msg: err.Error(), Err: err}
	}
	every := defaultSampleEvery
	if p.SampleEveryMs > 0 {
		every = time.Duration(p.SampleEveryMs) * time.Millisecond
	}
	// A period shorter than one conversion only yields not-ready retries.
	every = util.ClampDuration(every, cfg.Rate.ConversionTime(), time.Hour)

	dev := mcp3421.New(mcp3421.NewI2C(i2c), uint8(p.AddrCode))
	dev.Apply(cfg)
	return registry.BuildOutput{
		Adaptor:     newAdaptor(in.DeviceID, in.BusRefID, dev),
		BusID:       in.BusRefID,
		SampleEvery: every,
	}, nil
}
