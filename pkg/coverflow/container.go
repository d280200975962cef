// Package coverflow is a headless model of an animated album browser.
//
// A [Container] holds the shared state and the scheduler; behaviors such as
// [FadeIn], [LoadingIndicator], [Scroller] and [Details] attach to it and
// drive their own timelines. [Browser] wires them together with an artwork source.
//
// Everything in this package runs on the scheduler goroutine: call it from
// timeline callbacks, scenario actors or Scheduler.Invoke.
package coverflow

import (
	"errors"
	"log/slog"

	"github.com/go-drift/granite/pkg/timeline"
)

var (
	// ErrDisposed is returned when using a disposed container.
	ErrDisposed = errors.New("coverflow: container disposed")

	// ErrNotAttached is returned when using a behavior before Attach.
	ErrNotAttached = errors.New("coverflow: behavior not attached")

	// ErrOutOfRange is returned when scrolling past the first or last album.
	ErrOutOfRange = errors.New("coverflow: no album in that direction")
)

// Behavior adds animated state to a container.
type Behavior interface {
	Attach(c *Container) error
}

// Fader is anything with an 8-bit alpha.
type Fader interface {
	Alpha() int
	SetAlpha(alpha int)
}

// Container is the root of the browser model.
type Container struct {
	sched     *timeline.Scheduler
	repainter timeline.Repainter
	logger    *slog.Logger

	alpha     int
	disposed  bool
	behaviors []Behavior
}

// NewContainer returns a fully opaque container. Repaint requests go to
// repainter, which may be nil.
func NewContainer(sched *timeline.Scheduler, repainter timeline.Repainter, logger *slog.Logger) *Container {
	if logger == nil {
		logger = slog.Default()
	}
	return &Container{
		sched:     sched,
		repainter: repainter,
		logger:    logger,
		alpha:     255,
	}
}

// Attach attaches b and keeps it for the container's lifetime.
func (c *Container) Attach(b Behavior) error {
	if c.disposed {
		return ErrDisposed
	}
	if err := b.Attach(c); err != nil {
		return err
	}
	c.behaviors = append(c.behaviors, b)
	return nil
}

// Behaviors returns the attached behaviors in attach order.
func (c *Container) Behaviors() []Behavior { return c.behaviors }

// Scheduler returns the scheduler driving the container.
func (c *Container) Scheduler() *timeline.Scheduler { return c.sched }

// Logger returns the container logger.
func (c *Container) Logger() *slog.Logger { return c.logger }

// Alpha returns the container opacity in [0, 255].
func (c *Container) Alpha() int { return c.alpha }

// SetAlpha sets the container opacity and requests a repaint.
func (c *Container) SetAlpha(alpha int) {
	c.alpha = clampAlpha(alpha)
	c.Repaint()
}

// Repaint forwards a repaint request.
func (c *Container) Repaint() {
	if c.repainter != nil {
		c.repainter.Repaint()
	}
}

// Dispose marks the container as gone. Timelines targeting it cancel on
// their next pulse.
func (c *Container) Dispose() { c.disposed = true }

// IsDisposed reports whether Dispose was called.
func (c *Container) IsDisposed() bool { return c.disposed }

func clampAlpha(a int) int {
	return min(max(a, 0), 255)
}
