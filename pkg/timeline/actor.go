package timeline

import (
	graniteerrors "github.com/go-drift/granite/pkg/errors"
)

// Actor is a unit of work a scenario can run: a timeline, a runnable, a
// background job or a nested scenario.
type Actor interface {
	// Play starts the actor. An error means it did not start.
	Play() error
	// IsDone reports whether the actor finished, successfully or not.
	IsDone() bool
	// SupportsReplay reports whether ResetDoneFlag can rearm the actor.
	SupportsReplay() bool
	// ResetDoneFlag rearms a finished actor for another Play.
	ResetDoneFlag() error
}

// Canceler is implemented by actors that can be stopped early.
type Canceler interface {
	Cancel()
}

// Suspender is implemented by actors that can be paused.
type Suspender interface {
	Suspend()
	Resume()
}

// RunnableActor runs a function synchronously on the scheduler goroutine.
type RunnableActor struct {
	name    string
	fn      func()
	handler graniteerrors.Handler
	done    bool
}

// Runnable returns a one-shot actor that calls fn when played. A panic in fn
// is reported and the actor still counts as done. Adding the runnable to a
// scenario routes the report to that scenario's scheduler handler;
// otherwise it goes to the global handler.
func Runnable(name string, fn func()) *RunnableActor {
	return &RunnableActor{name: name, fn: fn}
}

// NewRunnable returns a runnable whose panics go to the scheduler's error
// handler.
func (s *Scheduler) NewRunnable(name string, fn func()) *RunnableActor {
	return &RunnableActor{name: name, fn: fn, handler: s.handler}
}

// Name returns the runnable's name.
func (r *RunnableActor) Name() string { return r.name }

// Play calls the function.
func (r *RunnableActor) Play() error {
	defer func() {
		r.done = true
		if rec := recover(); rec != nil {
			graniteerrors.ReportPanicTo(r.handler, graniteerrors.NewPanicError("timeline.Runnable "+r.name, rec))
		}
	}()
	if r.fn != nil {
		r.fn()
	}
	return nil
}

// IsDone reports whether the function has run.
func (r *RunnableActor) IsDone() bool { return r.done }

// SupportsReplay reports true.
func (r *RunnableActor) SupportsReplay() bool { return true }

// ResetDoneFlag rearms the runnable.
func (r *RunnableActor) ResetDoneFlag() error {
	r.done = false
	return nil
}
