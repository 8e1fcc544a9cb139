// services/hal/internal/platform/owner.go
package platform

import (
	"sync"
	"time"

	"tinygo.org/x/drivers"

	"mcp3421-go/errcode"
)

// -----------------------------------------------------------------------------
// I²C owner (one worker per bus)
// -----------------------------------------------------------------------------

// request posted to the per-bus worker. The worker never touches the
// caller's slices after the caller has given up on the request.
type i2cReq struct {
	addr uint16
	w    []byte     // private copy
	r    []byte     // caller's buffer, filled only while claimed
	done chan error // buffered(1); worker replies best-effort

	mu        sync.Mutex
	abandoned bool
}

// abandon detaches the caller's read buffer from the request.
func (q *i2cReq) abandon() {
	q.mu.Lock()
	q.abandoned = true
	q.mu.Unlock()
}

// per-bus owner that hosts a single worker goroutine
type i2cOwner struct {
	id   string
	hw   drivers.I2C
	reqs chan *i2cReq
	quit chan struct{}

	scratch []byte // read buffer owned by the worker
}

func newI2COwner(id string, hw drivers.I2C) *i2cOwner {
	o := &i2cOwner{
		id:   id,
		hw:   hw,
		reqs: make(chan *i2cReq, 16),
		quit: make(chan struct{}),
	}
	go o.loop()
	return o
}

func (o *i2cOwner) loop() {
	for {
		select {
		case req := <-o.reqs:
			err := o.tx(req)
			// best-effort reply; do not block the worker
			select {
			case req.done <- err:
			default:
			}
		case <-o.quit:
			return
		}
	}
}

// tx runs the transaction into the worker's scratch buffer and copies the
// result out unless the caller has abandoned the request.
func (o *i2cOwner) tx(req *i2cReq) error {
	var rd []byte
	if len(req.r) > 0 {
		if cap(o.scratch) < len(req.r) {
			o.scratch = make([]byte, len(req.r))
		}
		rd = o.scratch[:len(req.r)]
	}
	err := o.hw.Tx(req.addr, req.w, rd)

	req.mu.Lock()
	defer req.mu.Unlock()
	if req.abandoned {
		return err
	}
	copy(req.r, rd)
	return err
}

func (o *i2cOwner) stop() { close(o.quit) }

// ownedI2C adapts the owner to tinygo.org/x/drivers.I2C.
// It posts a request and optionally enforces a per-call timeout.
type ownedI2C struct {
	o       *i2cOwner
	timeout time.Duration // 0 => no deadline
}

var _ drivers.I2C = (*ownedI2C)(nil)

func (d *ownedI2C) Tx(addr uint16, w, r []byte) error {
	req := &i2cReq{addr: addr, r: r, done: make(chan error, 1)}
	if len(w) > 0 {
		req.w = append([]byte(nil), w...)
	}

	if d.timeout <= 0 {
		d.o.reqs <- req
		return <-req.done
	}

	t := time.NewTimer(d.timeout)
	defer t.Stop()
	select {
	case d.o.reqs <- req:
	case <-t.C:
		return errcode.Busy
	}
	select {
	case err := <-req.done:
		return err
	case <-t.C:
		req.abandon()
		return errcode.Timeout
	}
}
