// services/hal/internal/platform/buses.go
package platform

import (
	"io"
	"sort"
	"sync"
	"time"

	"tinygo.org/x/drivers"
)

// DefaultTxTimeout bounds a single transaction, queueing included.
const DefaultTxTimeout = 250 * time.Millisecond

// Buses is an I²C bus factory. Every bus added is served by its own owner
// goroutine, so devices sharing a bus never interleave transactions.
type Buses struct {
	mu      sync.Mutex
	buses   map[string]drivers.I2C
	owners  []*i2cOwner
	closers []io.Closer
	timeout time.Duration
}

func NewBuses(timeout time.Duration) *Buses {
	return &Buses{buses: map[string]drivers.I2C{}, timeout: timeout}
}

// Add registers hw under id. A hw that is also an io.Closer is closed by
// Close.
func (b *Buses) Add(id string, hw drivers.I2C) {
	o := newI2COwner(id, hw)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buses[id] = &ownedI2C{o: o, timeout: b.timeout}
	b.owners = append(b.owners, o)
	if c, ok := hw.(io.Closer); ok {
		b.closers = append(b.closers, c)
	}
}

func (b *Buses) ByID(id string) (drivers.I2C, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.buses[id]
	return i, ok
}

// IDs lists the configured bus ids in sorted order.
func (b *Buses) IDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.buses))
	for id := range b.buses {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Close stops all owners and closes the underlying buses.
func (b *Buses) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, o := range b.owners {
		o.stop()
	}
	b.owners = nil
	b.buses = map[string]drivers.I2C{}
	var first error
	for _, c := range b.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	b.closers = nil
	return first
}
