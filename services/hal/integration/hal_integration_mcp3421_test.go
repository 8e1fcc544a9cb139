// services/hal/integration/hal_integration_mcp3421_test.go
//go:build !rp2040 && !rp2350

package integration

import (
	"context"
	"testing"
	"time"

	"mcp3421-go/bus"
	"mcp3421-go/services/hal/internal/consts"
	"mcp3421-go/services/hal/internal/platform"
	"mcp3421-go/services/hal/internal/service"

	// Ensure device builders register with the registry.
	_ "mcp3421-go/services/hal/internal/devices/mcp3421"

	"mcp3421-go/types"
)

func TestHAL_EndToEnd_MCP3421(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.NewBus(64)
	conn := b.NewConnection("test")
	defer conn.Disconnect()

	stateSub := conn.Subscribe(bus.T(consts.TokHAL, consts.TokState))
	defer conn.Unsubscribe(stateSub)

	buses, sims := platform.SimI2CFactory([]string{"i2c0"}, []uint8{0, 1}, 0.125)
	defer buses.Close()

	svc := service.New(conn, buses)
	go svc.Run(ctx)

	if _, err := waitMatch(stateSub.Channel(), 3*time.Second, func(m *bus.Message) bool {
		st, ok := m.Payload.(types.HALState)
		return ok && st.Level == "idle"
	}); err != nil {
		t.Fatalf("no initial hal/state: %v", err)
	}

	valSub := conn.Subscribe(bus.T(consts.TokHAL, consts.TokCapability, consts.KindVoltage, bus.SingleWild, consts.TokValue))
	defer conn.Unsubscribe(valSub)

	cfg := types.HALConfig{
		Devices: []types.Device{
			{
				ID:     "adc0",
				Type:   "mcp3421",
				Params: map[string]any{"addr_code": 0, "mode": "one_shot", "bits": 16, "sample_every_ms": 100},
				BusRef: types.BusRef{Type: consts.BusI2C, ID: "i2c0"},
			},
			{
				ID:     "adc1",
				Type:   "mcp3421",
				Params: map[string]any{"addr_code": 1, "bits": 14, "gain": 4, "sample_every_ms": 100},
				BusRef: types.BusRef{Type: consts.BusI2C, ID: "i2c0"},
			},
		},
	}
	conn.Publish(conn.NewMessage(bus.T(consts.TokConfig, consts.TokHAL), cfg, false))

	if _, err := waitMatch(stateSub.Channel(), 3*time.Second, func(m *bus.Message) bool {
		st, ok := m.Payload.(types.HALState)
		return ok && st.Level == "ready"
	}); err != nil {
		t.Fatalf("hal/state never ready: %v", err)
	}

	// Both converters report; the second sees the input amplified by four.
	got := map[int]types.ADCValue{}
	deadline := time.Now().Add(3 * time.Second)
	for len(got) < 2 && time.Now().Before(deadline) {
		m, err := recvOrTimeout(valSub.Channel(), 500*time.Millisecond)
		if err != nil {
			continue
		}
		id, _ := m.Topic[3].(int)
		if v, ok := m.Payload.(types.ADCValue); ok {
			got[id] = v
		}
	}
	if len(got) != 2 {
		t.Fatalf("values from %d converters, want 2", len(got))
	}
	for id, v := range got {
		want := 0.125 * float64(v.Gain)
		if v.Volts < want-0.001 || v.Volts > want+0.001 {
			t.Errorf("voltage/%d = %v, want %v", id, v.Volts, want)
		}
	}

	// Change gain on whichever capability is adc0 (gain 1).
	var id0 int
	for id, v := range got {
		if v.Gain == 1 {
			id0 = id
		}
	}
	rctx, rcancel := context.WithTimeout(ctx, time.Second)
	defer rcancel()
	reply, err := conn.RequestWait(rctx, conn.NewMessage(
		bus.T(consts.TokHAL, consts.TokCapability, consts.KindVoltage, id0, consts.TokControl, consts.CtrlSetGain),
		map[string]any{"gain": 2}, false))
	if err != nil {
		t.Fatalf("set_gain: %v", err)
	}
	if r, ok := reply.Payload.(types.ADCConfigReply); !ok || r.Requested.Gain != 2 {
		t.Fatalf("set_gain reply: %#v", reply.Payload)
	}

	if _, err := waitMatch(valSub.Channel(), 3*time.Second, func(m *bus.Message) bool {
		v, ok := m.Payload.(types.ADCValue)
		return ok && m.Topic[3] == id0 && v.Gain == 2
	}); err != nil {
		t.Fatalf("no value at the new gain: %v", err)
	}

	// Pulling the converter off the bus degrades the capability.
	stSub := conn.Subscribe(bus.T(consts.TokHAL, consts.TokCapability, consts.KindVoltage, id0, consts.TokState))
	defer conn.Unsubscribe(stSub)
	sims["i2c0"].Detach(0)
	m, err := waitMatch(stSub.Channel(), 3*time.Second, func(m *bus.Message) bool {
		st, ok := m.Payload.(types.CapabilityState)
		return ok && st.Link == types.LinkDegraded
	})
	if err != nil {
		t.Fatalf("no degraded state: %v", err)
	}
	if st := m.Payload.(types.CapabilityState); st.Error != "no_device" {
		t.Fatalf("state error = %q", st.Error)
	}
}
