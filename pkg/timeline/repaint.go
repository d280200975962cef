package timeline

import "sync/atomic"

// Repainter receives repaint requests.
type Repainter interface {
	Repaint()
}

// RepaintCoalescer collapses repaint requests into at most one paint call
// per pulse. Repaint is safe to call from any goroutine; paint always runs
// on the scheduler goroutine at the end of a pulse.
type RepaintCoalescer struct {
	sched   *Scheduler
	paint   func()
	pending atomic.Bool
	paints  atomic.Uint64
}

// NewRepaintCoalescer registers a coalescer that calls paint.
func (s *Scheduler) NewRepaintCoalescer(paint func()) *RepaintCoalescer {
	c := &RepaintCoalescer{sched: s, paint: paint}
	s.mu.Lock()
	s.repainters = append(s.repainters, c)
	s.mu.Unlock()
	return c
}

// Repaint requests a paint at the end of the current or next pulse.
func (c *RepaintCoalescer) Repaint() {
	if c.pending.CompareAndSwap(false, true) {
		c.sched.signal()
	}
}

// Pending reports whether a paint is requested.
func (c *RepaintCoalescer) Pending() bool {
	return c.pending.Load()
}

// Paints returns the number of paint calls made so far.
func (c *RepaintCoalescer) Paints() uint64 {
	return c.paints.Load()
}

// Close unregisters the coalescer. Pending requests are dropped.
func (c *RepaintCoalescer) Close() {
	s := c.sched
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.repainters {
		if r == c {
			s.repainters = append(s.repainters[:i:i], s.repainters[i+1:]...)
			break
		}
	}
	c.pending.Store(false)
}

func (c *RepaintCoalescer) flush() {
	if !c.pending.Swap(false) {
		return
	}
	c.paints.Add(1)
	if c.paint != nil {
		c.sched.runGuarded("timeline.Repaint", c.paint)
	}
}

func (s *Scheduler) flushRepaints() {
	s.mu.Lock()
	repainters := append([]*RepaintCoalescer(nil), s.repainters...)
	s.mu.Unlock()
	for _, r := range repainters {
		r.flush()
	}
}
