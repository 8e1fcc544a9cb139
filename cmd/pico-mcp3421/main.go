//go:build rp2040 || rp2350

// Firmware for a Pico with an MCP3421 on i2c0. Readings and state changes are
// written to UART0 as text lines.
package main

import (
	"context"
	"machine"
	"runtime"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"mcp3421-go/bus"
	"mcp3421-go/services/hal"
	"mcp3421-go/services/heartbeat"
	"mcp3421-go/types"
	"mcp3421-go/x/conv"
)

const consoleBaud = 115200

var console *uartx.UART

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)

	console = uartx.UART0
	if err := console.Configure(uartx.UARTConfig{
		BaudRate: consoleBaud,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	}); err != nil {
		println("[main] uart0 configure:", err.Error())
	}
	_ = console.SetFormat(8, 1, uartx.ParityNone)
	writeLine("[main] boot")

	ctx := context.Background()
	b := bus.NewBus(4)
	ui := b.NewConnection("ui")

	values := ui.Subscribe(bus.T("hal", "capability", string(types.KindVoltage), bus.SingleWild, "value"))
	states := ui.Subscribe(bus.T("hal", "capability", bus.SingleWild, bus.SingleWild, "state"))
	halState := ui.Subscribe(bus.T("hal", "state"))
	beats := ui.Subscribe(bus.T("heartbeat", "state"))

	go func() {
		if err := hal.Run(ctx, b.NewConnection("hal"), hal.Options{}); err != nil {
			writeLine("[main] hal: " + err.Error())
		}
	}()
	hb := &heartbeat.Service{}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	ui.Publish(ui.NewMessage(bus.T("config", "heartbeat"), types.HeartbeatConfig{IntervalMs: 10000}, true))
	ui.Publish(ui.NewMessage(bus.T("config", "hal"), types.HALConfig{
		Devices: []types.Device{{
			ID:     "adc0",
			Type:   "mcp3421",
			BusRef: types.BusRef{Type: "i2c", ID: "i2c0"},
			Params: map[string]any{
				"addr_code":       0,
				"mode":            "one_shot",
				"bits":            16,
				"gain":            1,
				"sample_every_ms": 500,
			},
		}},
	}, true))

	for {
		select {
		case m := <-values.Channel():
			if v, ok := m.Payload.(types.ADCValue); ok {
				writeLine(formatValue(m.Topic, v))
			}
		case m := <-states.Channel():
			if st, ok := m.Payload.(types.CapabilityState); ok {
				writeLine(m.Topic.String() + " link=" + string(st.Link) + " " + st.Error)
			}
		case m := <-halState.Channel():
			if st, ok := m.Payload.(types.HALState); ok {
				writeLine("hal/state " + st.Level + " " + st.Status + " " + st.Error)
			}
		case <-beats.Channel():
			printMem()
		}
	}
}

func writeLine(s string) {
	_, _ = console.Write([]byte(s + "\r\n"))
}

func formatValue(t bus.Topic, v types.ADCValue) string {
	buf := make([]byte, 0, 64)
	buf = append(buf, t.String()...)
	buf = append(buf, " raw="...)
	buf = conv.AppendInt(buf, int64(v.Raw))
	buf = append(buf, " uV="...)
	buf = conv.AppendInt(buf, int64(v.Microvolts()))
	buf = append(buf, " bits="...)
	buf = conv.AppendInt(buf, int64(v.Bits))
	buf = append(buf, " gain="...)
	buf = conv.AppendInt(buf, int64(v.Gain))
	return string(buf)
}

// printMem prints a compact snapshot of TinyGo runtime memory stats.
func printMem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	buf := make([]byte, 0, 64)
	buf = append(buf, "[mem] alloc="...)
	buf = conv.AppendUint(buf, ms.Alloc)
	buf = append(buf, " heapInuse="...)
	buf = conv.AppendUint(buf, ms.HeapInuse)
	buf = append(buf, " mallocs="...)
	buf = conv.AppendUint(buf, ms.Mallocs)
	writeLine(string(buf))
}
