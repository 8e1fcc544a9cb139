// bridge/bridge.go
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"mcp3421-go/bus"
	"mcp3421-go/types"
	"mcp3421-go/x/mathx"
	"mcp3421-go/x/timex"
)

// RecordLen is the number of holding registers written per capability:
// raw (2), microvolts (2), bits, gain.
const RecordLen = 6

var (
	topicConfig = bus.T("config", "bridge")
	topicState  = bus.T("bridge", "state")
	topicValues = bus.T("hal", "capability", string(types.KindVoltage), bus.SingleWild, "value")
)

// -----------------------------------------------------------------------------
// Public entry point
// -----------------------------------------------------------------------------

// Start starts the bridge service. It blocks until ctx is cancelled.
// It listens for config on topic {"config","bridge"} and (re)configures the link.
func Start(ctx context.Context, conn *bus.Connection) {
	s := &Service{conn: conn}
	s.run(ctx)
}

// -----------------------------------------------------------------------------
// Service
// -----------------------------------------------------------------------------

type Service struct {
	conn *bus.Connection

	mu     sync.Mutex
	curRun context.CancelFunc
	wg     sync.WaitGroup
	writes uint64
}

// run waits for config and supervises a single link instance.
func (s *Service) run(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfig)
	defer s.conn.Unsubscribe(cfgSub)

	s.publishState(types.LinkDown, "awaiting_config", "", nil)

	for {
		select {
		case <-ctx.Done():
			s.stopCurrent()
			return
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				s.publishState(types.LinkDown, "config_subscription_closed", "", nil)
				return
			}
			cfg, err := decodeConfig(msg.Payload)
			if err != nil {
				s.publishState(types.LinkDown, "config_decode_failed", "", err)
				continue
			}
			s.reconfigure(ctx, cfg)
		}
	}
}

func (s *Service) stopCurrent() {
	s.mu.Lock()
	if s.curRun != nil {
		s.curRun()
		s.curRun = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Service) reconfigure(parent context.Context, cfg types.BridgeConfig) {
	s.stopCurrent()

	ctx, cancel := context.WithCancel(parent)
	s.mu.Lock()
	s.curRun = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runLink(ctx, cfg)
	}()
}

// -----------------------------------------------------------------------------
// Link supervision and I/O
// -----------------------------------------------------------------------------

func (s *Service) runLink(ctx context.Context, cfg types.BridgeConfig) {
	tr, err := newTransport(cfg)
	if err != nil {
		s.publishState(types.LinkDown, "transport_init_failed", cfg.Endpoint, err)
		return
	}

	// Values arriving while the link is down are dropped.
	sub := s.conn.Subscribe(topicValues)
	defer s.conn.Unsubscribe(sub)

	minB, maxB := timex.Ms(cfg.BackoffMs), timex.Ms(cfg.MaxBackoffMs)
	backoff := backoffSeq(minB, maxB)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		w, err := tr.Open(ctx)
		if err != nil {
			delay := backoff()
			s.publishState(types.LinkDegraded, "dial_failed_retrying", tr.String(), fmt.Errorf("%v (retry in %s)", err, delay))
			if !sleep(ctx, delay) {
				return
			}
			continue
		}

		backoff = backoffSeq(minB, maxB)
		s.publishState(types.LinkUp, "link_established", tr.String(), nil)
		err = s.handleLink(ctx, cfg, w, sub)
		_ = w.Close()
		if err == nil {
			return
		}
		delay := backoff()
		s.publishState(types.LinkDegraded, "link_lost_retrying", tr.String(), fmt.Errorf("%v (retry in %s)", err, delay))
		if !sleep(ctx, delay) {
			return
		}
	}
}

// handleLink forwards voltage values until ctx ends (nil) or a write fails.
func (s *Service) handleLink(ctx context.Context, cfg types.BridgeConfig, w RegisterWriter, sub *bus.Subscription) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-sub.Channel():
			if !ok {
				return nil
			}
			id, ok := msg.Topic[3].(int)
			if !ok || id < 0 {
				continue
			}
			v, ok := msg.Payload.(types.ADCValue)
			if !ok {
				continue
			}
			addr, ok := RecordAddress(cfg, id)
			if !ok {
				continue
			}
			if err := w.WriteRegisters(cfg.UnitID, addr, EncodeRecord(v)); err != nil {
				return err
			}
			s.mu.Lock()
			s.writes++
			s.mu.Unlock()
		}
	}
}

// RecordAddress is the first register of capability id's record. ok is
// false when the record would run past the register space.
func RecordAddress(cfg types.BridgeConfig, id int) (uint16, bool) {
	stride := int(cfg.Stride)
	if stride < RecordLen {
		stride = RecordLen
	}
	a := int(cfg.BaseAddress) + id*stride
	if !mathx.Between(a, 0, 0x10000-RecordLen) {
		return 0, false
	}
	return uint16(a), true
}

// EncodeRecord lays out a value as holding registers, big-endian words.
func EncodeRecord(v types.ADCValue) []uint16 {
	rawHi, rawLo := mathx.SplitInt32(v.Raw)
	uvHi, uvLo := mathx.SplitInt32(v.Microvolts())
	return []uint16{rawHi, rawLo, uvHi, uvLo, uint16(v.Bits), uint16(v.Gain)}
}

// -----------------------------------------------------------------------------
// Transport registry
// -----------------------------------------------------------------------------

// RegisterWriter writes a block of holding registers.
type RegisterWriter interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
	Close() error
}

// Transport is a pluggable link dialler.
type Transport interface {
	Open(ctx context.Context) (RegisterWriter, error)
	String() string
}

type transportFactory func(types.BridgeConfig) (Transport, error)

var (
	regMu    sync.RWMutex
	registry = map[string]transportFactory{}
)

// RegisterTransport allows external packages (and tests) to add transports.
func RegisterTransport(name string, f transportFactory) {
	regMu.Lock()
	defer regMu.Unlock()
	registry[name] = f
}

func newTransport(cfg types.BridgeConfig) (Transport, error) {
	regMu.RLock()
	f, ok := registry[cfg.Transport]
	regMu.RUnlock()
	if ok {
		return f(cfg)
	}
	switch cfg.Transport {
	case "", "modbus_tcp":
		return newModbusTransport(cfg)
	default:
		return nil, fmt.Errorf("unknown transport type: %q", cfg.Transport)
	}
}

// -----------------------------------------------------------------------------
// Utilities
// -----------------------------------------------------------------------------

func decodeConfig(p any) (types.BridgeConfig, error) {
	var cfg types.BridgeConfig
	switch v := p.(type) {
	case types.BridgeConfig:
		return v, nil
	case *types.BridgeConfig:
		if v == nil {
			return cfg, fmt.Errorf("nil config")
		}
		return *v, nil
	case []byte:
		return cfg, json.Unmarshal(v, &cfg)
	case string:
		return cfg, json.Unmarshal([]byte(v), &cfg)
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return cfg, err
		}
		return cfg, json.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config payload type: %T", p)
	}
}

func (s *Service) publishState(link types.Link, status, endpoint string, err error) {
	s.mu.Lock()
	st := types.BridgeState{
		Link:     link,
		Status:   status,
		Endpoint: endpoint,
		Writes:   s.writes,
		TS:       time.Now(),
	}
	s.mu.Unlock()
	if err != nil {
		st.Error = err.Error()
	}
	s.conn.Publish(s.conn.NewMessage(topicState, st, true))
}

func backoffSeq(min, max time.Duration) func() time.Duration {
	if min <= 0 {
		min = 100 * time.Millisecond
	}
	if max < min {
		max = min
	}
	var cur = min
	return func() time.Duration {
		d := cur
		cur *= 2
		if cur > max {
			cur = max
		}
		return d
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
