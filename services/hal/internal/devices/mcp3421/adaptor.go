// services/hal/internal/devices/mcp3421/adaptor.go
package mcp3421

import (
	"context"
	"errors"
	"sync"
	"time"

	"mcp3421-go/drivers/mcp3421"
	"mcp3421-go/errcode"
	"mcp3421-go/services/hal/internal/consts"
	"mcp3421-go/services/hal/internal/halcore"
	"mcp3421-go/services/hal/internal/util"
	"mcp3421-go/types"
	"mcp3421-go/x/timex"
)

const schemaVersion = 1

type adaptor struct {
	id    string
	busID string

	mu  sync.Mutex // worker goroutine runs Trigger/Collect, service runs Control
	dev *mcp3421.Device
}

func newAdaptor(id, busID string, dev *mcp3421.Device) *adaptor {
	return &adaptor{id: id, busID: busID, dev: dev}
}

func (a *adaptor) ID() string { return a.id }

func (a *adaptor) Capabilities() []halcore.CapInfo {
	a.mu.Lock()
	c := a.dev.Requested()
	addr := a.dev.Address
	a.mu.Unlock()
	return []halcore.CapInfo{{
		Kind: consts.KindVoltage,
		Info: types.ADCInfo{
			SchemaVersion: schemaVersion,
			Driver:        "mcp3421",
			Bus:           a.busID,
			Addr:          addr,
			Mode:          c.Mode.String(),
			Bits:          c.Rate.Bits(),
			Gain:          c.Gain.Factor(),
			FullScale:     mcp3421.FullScale,
		},
	}}
}

// Trigger writes pending settings (and arms one-shot conversions). The hint
// is one conversion period at the requested rate.
func (a *adaptor) Trigger(ctx context.Context) (time.Duration, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.dev.Trigger(); err != nil {
		return 0, err
	}
	return a.dev.ConversionTime(), nil
}

func (a *adaptor) Collect(ctx context.Context) (halcore.Sample, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.dev.Collect(); err != nil {
		if errors.Is(err, mcp3421.ErrNotReady) {
			return nil, halcore.ErrNotReady
		}
		return nil, err
	}
	c := a.dev.Config()
	ts := timex.NowMs()
	return halcore.Sample{{
		Kind: consts.KindVoltage,
		Payload: types.ADCValue{
			Raw:   a.dev.Value(),
			Volts: a.dev.Voltage(),
			Bits:  a.dev.ValueRate().Bits(),
			Gain:  c.Gain.Factor(),
			TsMs:  ts,
		},
		TsMs: ts,
	}}, nil
}

func (a *adaptor) Control(kind, method string, payload any) (any, error) {
	if kind != consts.KindVoltage {
		return nil, halcore.ErrUnsupported
	}
	var req types.ADCSettings
	if method != consts.CtrlGetConfig {
		if err := util.DecodeJSON(payload, &req); err != nil {
			return nil, errcode.InvalidPayload
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	switch method {
	case consts.CtrlGetConfig:
	case consts.CtrlSetGain:
		g, ok := mcp3421.GainForFactor(req.Gain)
		if !ok {
			return nil, errcode.InvalidParams
		}
		a.dev.SetGain(g)
	case consts.CtrlSetBits:
		r, ok := mcp3421.RateForBits(req.Bits)
		if !ok {
			return nil, errcode.InvalidParams
		}
		a.dev.SetSampleRate(r)
	case consts.CtrlSetMode:
		m, ok := parseMode(req.Mode)
		if !ok {
			return nil, errcode.InvalidParams
		}
		a.dev.SetConversionMode(m)
	default:
		return nil, halcore.ErrUnsupported
	}
	return types.ADCConfigReply{
		OK:        true,
		Requested: settingsOf(a.dev.Requested()),
		Active:    settingsOf(a.dev.Config()),
		Pending:   a.dev.Pending(),
	}, nil
}

func settingsOf(c mcp3421.Config) types.ADCSettings {
	return types.ADCSettings{Mode: c.Mode.String(), Bits: c.Rate.Bits(), Gain: c.Gain.Factor()}
}

func parseMode(s string) (mcp3421.Mode, bool) {
	switch s {
	case "one_shot", "oneshot":
		return mcp3421.OneShot, true
	case "continuous":
		return mcp3421.Continuous, true
	default:
		return 0, false
	}
}

// toConfig overlays non-zero fields of s on base.
func toConfig(base mcp3421.Config, s types.ADCSettings) (mcp3421.Config, error) {
	if s.Mode != "" {
		m, ok := parseMode(s.Mode)
		if !ok {
			return base, util.Errf("mcp3421: invalid mode %q", s.Mode)
		}
		base.Mode = m
	}
	if s.Bits != 0 {
		r, ok := mcp3421.RateForBits(s.Bits)
		if !ok {
			return base, util.Errf("mcp3421: invalid bits %d", s.Bits)
		}
		base.Rate = r
	}
	if s.Gain != 0 {
		g, ok := mcp3421.GainForFactor(s.Gain)
		if !ok {
			return base, util.Errf("mcp3421: invalid gain %d", s.Gain)
		}
		base.Gain = g
	}
	return base, nil
}
