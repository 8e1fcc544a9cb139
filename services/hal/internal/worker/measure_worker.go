// services/hal/internal/worker/measure_worker.go
package worker

import (
	"context"
	"errors"
	"time"

	"mcp3421-go/errcode"
	"mcp3421-go/services/hal/internal/halcore"
	"mcp3421-go/services/hal/internal/util"
)

// MeasureWorker owns one shared bus. It runs split-phase measurements for
// every adaptor on that bus, one transaction at a time, and fans results
// into the service's sink.
type MeasureWorker struct {
	cfg  halcore.WorkerConfig
	reqQ chan halcore.MeasureReq
	sink chan<- halcore.Result

	pending  map[string]*collectItem
	want     map[string]bool // prio request arrived while pending
	collects []*collectItem
	timer    *time.Timer
}

type collectItem struct {
	id      string
	adaptor halcore.Adaptor
	due     time.Time
	retries int
}

func New(cfg halcore.WorkerConfig, sink chan<- halcore.Result) *MeasureWorker {
	if cfg.TriggerTimeout <= 0 {
		cfg.TriggerTimeout = 100 * time.Millisecond
	}
	if cfg.CollectTimeout <= 0 {
		cfg.CollectTimeout = 250 * time.Millisecond
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 15 * time.Millisecond
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 20
	}
	if cfg.InputQueueSize <= 0 {
		cfg.InputQueueSize = 16
	}
	return &MeasureWorker{
		cfg:     cfg,
		reqQ:    make(chan halcore.MeasureReq, cfg.InputQueueSize),
		sink:    sink,
		pending: map[string]*collectItem{},
		want:    map[string]bool{},
		timer:   time.NewTimer(time.Hour),
	}
}

// Submit queues a request without blocking. Prio requests wait briefly for
// queue space.
func (w *MeasureWorker) Submit(req halcore.MeasureReq) bool {
	select {
	case w.reqQ <- req:
		return true
	default:
	}
	if !req.Prio {
		return false
	}
	select {
	case w.reqQ <- req:
		return true
	case <-time.After(5 * time.Millisecond):
		return false
	}
}

func (w *MeasureWorker) Start(ctx context.Context) {
	if !w.timer.Stop() {
		util.DrainTimer(w.timer)
	}
	go w.loop(ctx)
}

func (w *MeasureWorker) loop(ctx context.Context) {
	for {
		if next := w.minDue(); next.IsZero() {
			util.ResetTimer(w.timer, time.Hour)
		} else {
			util.ResetTimer(w.timer, time.Until(next))
		}
		select {
		case <-ctx.Done():
			return
		case req := <-w.reqQ:
			if _, ok := w.pending[req.ID]; ok {
				if req.Prio {
					w.want[req.ID] = true
				}
				continue
			}
			w.trigger(ctx, &collectItem{id: req.ID, adaptor: req.Adaptor})
		case <-w.timer.C:
			w.collectDue(ctx, time.Now())
		}
	}
}

// trigger starts a measurement and schedules its collection.
func (w *MeasureWorker) trigger(ctx context.Context, it *collectItem) {
	tctx, cancel := context.WithTimeout(ctx, w.cfg.TriggerTimeout)
	after, err := it.adaptor.Trigger(tctx)
	cancel()
	if err != nil {
		w.emit(ctx, halcore.Result{ID: it.id, Err: errcode.Wrap("trigger", err)})
		return
	}
	it.retries = 0
	it.due = time.Now().Add(after)
	w.pending[it.id] = it
	w.collects = append(w.collects, it)
}

func (w *MeasureWorker) collectDue(ctx context.Context, now time.Time) {
	var keep, again []*collectItem
	for _, it := range w.collects {
		if now.Before(it.due) {
			keep = append(keep, it)
			continue
		}
		cctx, cancel := context.WithTimeout(ctx, w.cfg.CollectTimeout)
		s, err := it.adaptor.Collect(cctx)
		cancel()
		switch {
		case err == nil:
			w.emit(ctx, halcore.Result{ID: it.id, Sample: s})
		case errors.Is(err, halcore.ErrNotReady) && it.retries < w.cfg.MaxRetries:
			it.retries++
			it.due = now.Add(w.cfg.RetryBackoff)
			keep = append(keep, it)
			continue
		case errors.Is(err, halcore.ErrNotReady):
			w.emit(ctx, halcore.Result{ID: it.id, Err: &errcode.E{C: errcode.Timeout, Op: "collect", Err: err}})
		default:
			w.emit(ctx, halcore.Result{ID: it.id, Err: errcode.Wrap("collect", err)})
		}
		delete(w.pending, it.id)
		if w.want[it.id] {
			delete(w.want, it.id)
			again = append(again, it)
		}
	}
	w.collects = keep
	for _, it := range again {
		w.trigger(ctx, it)
	}
}

func (w *MeasureWorker) emit(ctx context.Context, r halcore.Result) {
	select {
	case w.sink <- r:
	case <-ctx.Done():
	}
}

func (w *MeasureWorker) minDue() time.Time {
	var min time.Time
	for _, it := range w.collects {
		if min.IsZero() || it.due.Before(min) {
			min = it.due
		}
	}
	return min
}
