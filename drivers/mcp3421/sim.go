package mcp3421

import (
	"errors"
	"math"
	"sync"
	"time"
)

// ErrNoDevice is returned by Sim for transactions to another address.
var ErrNoDevice = errors.New("mcp3421: no device at address")

// Sim is an in-memory MCP3421 implementing drivers.I2C. It is used on hosts
// without hardware and in tests.
type Sim struct {
	Addr uint16
	// Delay overrides the conversion time. Zero makes every conversion
	// complete immediately.
	Delay time.Duration

	mu      sync.Mutex
	cfg     Config
	input   float64
	readyAt time.Time
	fresh   bool
	writes  int
}

// NewSim returns a simulator at the address for code, in the power-on state.
func NewSim(code uint8) *Sim {
	return &Sim{Addr: Address(code), cfg: DefaultConfig(), fresh: true}
}

// SetInput sets the differential input voltage.
func (s *Sim) SetInput(v float64) {
	s.mu.Lock()
	s.input = v
	s.mu.Unlock()
}

// Writes reports how many configuration writes the simulator has accepted.
func (s *Sim) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *Sim) Tx(addr uint16, w, r []byte) error {
	if addr != s.Addr {
		return ErrNoDevice
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if len(w) > 0 {
		start, c := DecodeConfig(w[len(w)-1])
		s.cfg = c
		s.writes++
		if start || c.Mode == Continuous {
			s.readyAt = now.Add(s.delay())
			s.fresh = true
		}
	}
	if len(r) == 0 {
		return nil
	}

	ready := s.fresh && !now.Before(s.readyAt)
	n := s.cfg.Rate.DataLen()
	code := s.code()
	for i := 0; i < n && i < len(r); i++ {
		r[i] = byte(code >> (8 * (n - 1 - i)))
	}
	if len(r) > n {
		echo := s.cfg.Encode() &^ maskReady
		if ready {
			echo |= maskReady
		}
		r[n] = echo
		for i := n + 1; i < len(r); i++ {
			r[i] = echo
		}
	}
	if ready {
		s.fresh = false
		if s.cfg.Mode == Continuous {
			s.readyAt = now.Add(s.delay())
			s.fresh = true
		}
	}
	return nil
}

func (s *Sim) delay() time.Duration {
	if s.Delay < 0 {
		return 0
	}
	return s.Delay
}

// code converts the input to a raw output code, inverting DecodeSample.
func (s *Sim) code() uint32 {
	bits := s.cfg.Rate.Bits()
	x := math.Round(s.input * float64(s.cfg.Gain.Factor()) / LSB(s.cfg.Rate))
	hi := float64(int32(1)<<(bits-1) - 1)
	x = math.Max(-hi, math.Min(hi, x))
	v := int32(x)
	if v < 0 {
		v += int32(1)<<bits - 1
	}
	return uint32(v)
}
