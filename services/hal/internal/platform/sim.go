// services/hal/internal/platform/sim.go
package platform

import (
	"sync"

	"mcp3421-go/drivers/mcp3421"
)

// SimBus routes transactions to simulated converters by address.
type SimBus struct {
	mu   sync.Mutex
	devs map[uint16]*mcp3421.Sim
}

func NewSimBus() *SimBus { return &SimBus{devs: map[uint16]*mcp3421.Sim{}} }

// Attach places sim on the bus at its address, replacing any previous one.
func (b *SimBus) Attach(sim *mcp3421.Sim) {
	b.mu.Lock()
	b.devs[sim.Addr] = sim
	b.mu.Unlock()
}

// Detach removes the converter at an address code.
func (b *SimBus) Detach(code uint8) {
	b.mu.Lock()
	delete(b.devs, mcp3421.Address(code))
	b.mu.Unlock()
}

// Device returns the simulator for an address code.
func (b *SimBus) Device(code uint8) (*mcp3421.Sim, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.devs[mcp3421.Address(code)]
	return s, ok
}

func (b *SimBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	s, ok := b.devs[addr]
	b.mu.Unlock()
	if !ok {
		return mcp3421.ErrNoDevice
	}
	return s.Tx(addr, w, r)
}

// SimI2CFactory returns one simulated bus per id, each carrying a converter
// at every address code in codes with its input set to volts.
func SimI2CFactory(ids []string, codes []uint8, volts float64) (*Buses, map[string]*SimBus) {
	f := NewBuses(DefaultTxTimeout)
	sims := make(map[string]*SimBus, len(ids))
	for _, id := range ids {
		sb := NewSimBus()
		for _, c := range codes {
			s := mcp3421.NewSim(c)
			s.SetInput(volts)
			sb.Attach(s)
		}
		f.Add(id, sb)
		sims[id] = sb
	}
	return f, sims
}
