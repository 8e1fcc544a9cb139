// bridge/bridge_test.go
package bridge

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"mcp3421-go/bus"
	"mcp3421-go/types"
)

// ---- fake transport ----

type write struct {
	Unit uint8
	Addr uint16
	Regs []uint16
}

type fakeTransport struct {
	mu       sync.Mutex
	opens    int
	failOpen int
	failNext bool
	writes   chan write
}

func newFake(name string) *fakeTransport {
	f := &fakeTransport{writes: make(chan write, 16)}
	RegisterTransport(name, func(types.BridgeConfig) (Transport, error) { return f, nil })
	return f
}

func (f *fakeTransport) String() string { return "fake" }

func (f *fakeTransport) Open(ctx context.Context) (RegisterWriter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOpen > 0 {
		f.failOpen--
		return nil, errors.New("connection refused")
	}
	f.opens++
	return fakeWriter{f}, nil
}

type fakeWriter struct{ f *fakeTransport }

func (w fakeWriter) WriteRegisters(unit uint8, addr uint16, regs []uint16) error {
	w.f.mu.Lock()
	fail := w.f.failNext
	w.f.failNext = false
	w.f.mu.Unlock()
	if fail {
		return errors.New("broken pipe")
	}
	w.f.writes <- write{unit, addr, append([]uint16(nil), regs...)}
	return nil
}

func (fakeWriter) Close() error { return nil }

// ---- tests ----

func TestBridge_ForwardsValuesAndRecovers(t *testing.T) {
	fake := newFake("fake-forward")

	b := bus.NewBus(16)
	conn := b.NewConnection("bridge_test")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Start(ctx, conn)

	stateSub := conn.Subscribe(topicState)
	defer conn.Unsubscribe(stateSub)
	waitState(t, stateSub, "awaiting_config")

	conn.Publish(conn.NewMessage(topicConfig, types.BridgeConfig{
		Transport:   "fake-forward",
		UnitID:      3,
		BaseAddress: 100,
		Stride:      8,
		BackoffMs:   5,
	}, false))
	if st := waitState(t, stateSub, "link_established"); st.Link != types.LinkUp {
		t.Fatalf("link = %q", st.Link)
	}

	publishValue(conn, 2, types.ADCValue{Raw: -2, Volts: -0.000125, Bits: 16, Gain: 2})
	got := nextWrite(t, fake)
	want := write{Unit: 3, Addr: 116, Regs: []uint16{0xFFFF, 0xFFFE, 0xFFFF, 0xFF83, 16, 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("write (-want +got):\n%s", diff)
	}

	fake.mu.Lock()
	fake.failNext = true
	fake.mu.Unlock()
	publishValue(conn, 0, types.ADCValue{Raw: 1, Bits: 12, Gain: 1})

	if st := waitState(t, stateSub, "link_lost_retrying"); st.Link != types.LinkDegraded || st.Error == "" {
		t.Fatalf("degraded state = %+v", st)
	}
	st := waitState(t, stateSub, "link_established")
	if st.Writes != 1 {
		t.Fatalf("writes = %d, want 1", st.Writes)
	}
	fake.mu.Lock()
	opens := fake.opens
	fake.mu.Unlock()
	if opens != 2 {
		t.Fatalf("opens = %d, want 2", opens)
	}
}

func TestBridge_DialRetries(t *testing.T) {
	fake := newFake("fake-dial")
	fake.failOpen = 2

	b := bus.NewBus(16)
	conn := b.NewConnection("bridge_dial")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Start(ctx, conn)

	stateSub := conn.Subscribe(topicState)
	defer conn.Unsubscribe(stateSub)
	waitState(t, stateSub, "awaiting_config")

	conn.Publish(conn.NewMessage(topicConfig, `{"transport":"fake-dial","backoff_ms":1,"max_backoff_ms":4}`, false))
	waitState(t, stateSub, "dial_failed_retrying")
	waitState(t, stateSub, "link_established")
}

func TestBridge_UnknownTransportYieldsErrorState(t *testing.T) {
	b := bus.NewBus(8)
	conn := b.NewConnection("bridge_test_bad")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Start(ctx, conn)

	stateSub := conn.Subscribe(topicState)
	defer conn.Unsubscribe(stateSub)
	waitState(t, stateSub, "awaiting_config")

	conn.Publish(conn.NewMessage(topicConfig, map[string]any{"transport": "bogus"}, false))
	if st := waitState(t, stateSub, "transport_init_failed"); st.Link != types.LinkDown {
		t.Fatalf("state = %+v", st)
	}

	conn.Publish(conn.NewMessage(topicConfig, 42, false))
	waitState(t, stateSub, "config_decode_failed")
}

func TestBridge_ModbusTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("no loopback listener: %v", err)
	}
	defer ln.Close()
	reqs := make(chan []byte, 4)
	go serveWriteMultiple(ln, reqs)

	tr, err := newTransport(types.BridgeConfig{Endpoint: ln.Addr().String(), TimeoutMs: 1000})
	if err != nil {
		t.Fatal(err)
	}
	w, err := tr.Open(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	regs := EncodeRecord(types.ADCValue{Raw: 70000, Volts: 0.5, Bits: 18, Gain: 4})
	if err := w.WriteRegisters(9, 40, regs); err != nil {
		t.Fatal(err)
	}

	var pdu []byte
	select {
	case pdu = <-reqs:
	case <-time.After(time.Second):
		t.Fatal("server saw no request")
	}
	// unit, fc 16, addr, qty, byte count, data
	want := []byte{9, 0x10, 0, 40, 0, 6, 12,
		0x00, 0x01, 0x11, 0x70, // 70000
		0x00, 0x07, 0xA1, 0x20, // 500000 uV
		0x00, 18, 0x00, 4}
	if diff := cmp.Diff(want, pdu); diff != "" {
		t.Fatalf("request (-want +got):\n%s", diff)
	}
}

func TestRecordAddress(t *testing.T) {
	cfg := types.BridgeConfig{BaseAddress: 10}
	if a, ok := RecordAddress(cfg, 3); !ok || a != 10+3*RecordLen {
		t.Fatalf("default stride: %d %v", a, ok)
	}
	cfg.Stride = 10
	if a, ok := RecordAddress(cfg, 3); !ok || a != 40 {
		t.Fatalf("stride 10: %d %v", a, ok)
	}
	cfg.BaseAddress = 0xFFF0
	if a, ok := RecordAddress(cfg, 1); !ok || a != 0xFFFA {
		t.Fatalf("last record: %#x %v", a, ok)
	}
	if _, ok := RecordAddress(cfg, 2); ok {
		t.Fatal("record past 0xFFFF accepted")
	}
}

func TestBackoffSeq(t *testing.T) {
	next := backoffSeq(10*time.Millisecond, 35*time.Millisecond)
	var got []time.Duration
	for i := 0; i < 4; i++ {
		got = append(got, next())
	}
	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 35 * time.Millisecond, 35 * time.Millisecond}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("backoff (-want +got):\n%s", diff)
	}
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func publishValue(conn *bus.Connection, id int, v types.ADCValue) {
	conn.Publish(conn.NewMessage(bus.T("hal", "capability", "voltage", id, "value"), v, false))
}

func nextWrite(t *testing.T, f *fakeTransport) write {
	t.Helper()
	select {
	case w := <-f.writes:
		return w
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for register write")
		return write{}
	}
}

func waitState(t *testing.T, sub *bus.Subscription, status string) types.BridgeState {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case m := <-sub.Channel():
			st, ok := m.Payload.(types.BridgeState)
			if !ok {
				t.Fatalf("state payload type: got %T", m.Payload)
			}
			if st.Status == status {
				return st
			}
		case <-deadline:
			t.Fatalf("timeout waiting for bridge/state %q", status)
			return types.BridgeState{}
		}
	}
}

// serveWriteMultiple answers Modbus TCP write-multiple-registers requests and
// reports each request PDU (unit id first).
func serveWriteMultiple(ln net.Listener, reqs chan<- []byte) {
	c, err := ln.Accept()
	if err != nil {
		return
	}
	defer c.Close()
	for {
		var hdr [7]byte
		if _, err := io.ReadFull(c, hdr[:]); err != nil {
			return
		}
		n := int(binary.BigEndian.Uint16(hdr[4:6])) - 1
		pdu := make([]byte, n)
		if _, err := io.ReadFull(c, pdu); err != nil {
			return
		}
		reqs <- append([]byte{hdr[6]}, pdu...)

		resp := make([]byte, 12)
		copy(resp[0:4], hdr[0:4]) // transaction and protocol ids
		binary.BigEndian.PutUint16(resp[4:6], 6)
		resp[6] = hdr[6]
		copy(resp[7:12], pdu[0:5]) // fc, addr, qty
		if _, err := c.Write(resp); err != nil {
			return
		}
	}
}
