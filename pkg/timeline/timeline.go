package timeline

import (
	"fmt"
	"time"

	"github.com/go-drift/granite/pkg/animation"
	graniteerrors "github.com/go-drift/granite/pkg/errors"
)

// DefaultDuration is the duration of a new timeline.
const DefaultDuration = 500 * time.Millisecond

// maxCyclesPerPulse bounds the cycles a single pulse may complete, so a very
// long pulse on a short looping timeline cannot stall the scheduler.
const maxCyclesPerPulse = 1000

// Disposable is implemented by targets that can go away while animated.
// A disposed target cancels the timeline before its next apply step.
type Disposable interface {
	IsDisposed() bool
}

// Timeline interpolates a set of properties over a duration.
//
// A Timeline belongs to the Scheduler that created it. Its methods must be
// called from the scheduler goroutine (inside a callback, an actor or a
// Dispatch function) or before the scheduler is started.
type Timeline struct {
	sched  *Scheduler
	target any
	name   string

	duration     time.Duration
	initialDelay time.Duration
	cycleDelay   time.Duration
	ease         func(float64) float64
	props        []binding

	state      State
	forward    bool
	wasReady   bool // Ready when suspended
	repeat     RepeatBehavior
	loopsLeft  int // negative loops forever
	position   time.Duration
	fraction   float64
	eased      float64
	delayLeft  time.Duration
	cycleWait  time.Duration
	cycleDue   bool
	lastPulse  time.Time
	registered bool // guarded by sched.mu
	done       bool
	silent     bool
	err        error

	callbacks listenerList[Callback]
	failures  listenerList[func(error)]
}

func newTimeline(s *Scheduler, id uint64, target any) *Timeline {
	return &Timeline{
		sched:    s,
		target:   target,
		name:     fmt.Sprintf("timeline-%d", id),
		duration: DefaultDuration,
		ease:     animation.LinearCurve,
		forward:  true,
	}
}

// Name returns the timeline name used in logs and errors.
func (tl *Timeline) Name() string { return tl.name }

// Target returns the object the timeline animates.
func (tl *Timeline) Target() any { return tl.target }

// Duration returns the length of one cycle.
func (tl *Timeline) Duration() time.Duration { return tl.duration }

// State returns the current lifecycle state.
func (tl *Timeline) State() State { return tl.state }

// DurationFraction returns the linear position within the cycle, in [0, 1].
func (tl *Timeline) DurationFraction() float64 { return tl.fraction }

// EasedFraction returns the eased position within the cycle.
func (tl *Timeline) EasedFraction() float64 { return tl.eased }

// Err returns the failure that cancelled the timeline, if any. It is cleared
// when the timeline is played again.
func (tl *Timeline) Err() error { return tl.err }

// SetName sets the name used in logs and errors.
func (tl *Timeline) SetName(name string) error {
	if tl.state.IsActive() {
		return ErrTimelineActive
	}
	tl.name = name
	return nil
}

// SetDuration sets the length of one cycle.
func (tl *Timeline) SetDuration(d time.Duration) error {
	if tl.state.IsActive() {
		return ErrTimelineActive
	}
	if d < 0 {
		d = 0
	}
	tl.duration = d
	tl.setPosition(time.Duration(tl.fraction * float64(d)))
	return nil
}

// SetEase sets the easing curve. A nil curve means linear.
func (tl *Timeline) SetEase(ease func(float64) float64) error {
	if tl.state.IsActive() {
		return ErrTimelineActive
	}
	if ease == nil {
		ease = animation.LinearCurve
	}
	tl.ease = ease
	tl.eased = ease(tl.fraction)
	return nil
}

// SetInitialDelay sets how long the timeline stays Ready after Play.
func (tl *Timeline) SetInitialDelay(d time.Duration) error {
	if tl.state.IsActive() {
		return ErrTimelineActive
	}
	tl.initialDelay = max(d, 0)
	return nil
}

// SetCycleDelay sets the pause between consecutive cycles of a loop.
func (tl *Timeline) SetCycleDelay(d time.Duration) error {
	if tl.state.IsActive() {
		return ErrTimelineActive
	}
	tl.cycleDelay = max(d, 0)
	return nil
}

// Play runs the timeline forward once, from the current position or from
// the start when it already sits at the end.
func (tl *Timeline) Play() error {
	return tl.play(true, RepeatNone, 0)
}

// PlayReverse runs the timeline backward once, from the current position or
// from the end when it sits at the start.
func (tl *Timeline) PlayReverse() error {
	return tl.play(false, RepeatNone, 0)
}

// PlayLoop runs the timeline forward and repeats it until cancelled.
func (tl *Timeline) PlayLoop(repeat RepeatBehavior) error {
	return tl.PlayLoopCount(-1, repeat)
}

// PlayLoopCount runs the timeline for loops cycles. A negative count loops
// until cancelled.
func (tl *Timeline) PlayLoopCount(loops int, repeat RepeatBehavior) error {
	if loops == 0 {
		return tl.configError("timeline.PlayLoop", ErrLoopCount)
	}
	if repeat == RepeatNone {
		loops = 0
	} else if tl.duration <= 0 {
		return tl.configError("timeline.PlayLoop", ErrZeroDuration)
	}
	return tl.play(true, repeat, loops)
}

func (tl *Timeline) play(forward bool, repeat RepeatBehavior, loops int) error {
	if tl.sched == nil {
		return ErrNoScheduler
	}
	if tl.duration <= 0 && len(tl.props) > 0 {
		return tl.configError("timeline.Play", ErrZeroDuration)
	}

	switch tl.state {
	case StateReady, StateSuspended:
		tl.forward = forward
		tl.setRepeat(repeat, loops)
		return nil
	case StatePlayingForward, StatePlayingReverse:
		if tl.forward == forward && repeat == RepeatNone && tl.repeat == RepeatNone {
			return nil
		}
		tl.setRepeat(repeat, loops)
		tl.cycleDue = false
		tl.cycleWait = 0
		if tl.forward != forward {
			tl.forward = forward
			tl.setState(tl.playingState())
		}
		return nil
	}

	if err := tl.sched.schedule(tl); err != nil {
		return err
	}
	tl.forward = forward
	tl.setRepeat(repeat, loops)
	if forward && tl.fraction >= 1 {
		tl.jumpTo(false)
	} else if !forward && tl.fraction <= 0 {
		tl.jumpTo(true)
	}
	tl.done = false
	tl.err = nil
	tl.delayLeft = tl.initialDelay
	tl.cycleDue = false
	tl.cycleWait = 0
	tl.lastPulse = tl.sched.clock.Now()
	tl.setState(StateReady)
	return nil
}

func (tl *Timeline) setRepeat(repeat RepeatBehavior, loops int) {
	tl.repeat = repeat
	if repeat == RepeatNone {
		tl.loopsLeft = 0
		return
	}
	tl.loopsLeft = loops
}

// Suspend pauses a ready or playing timeline. The position is kept and the
// suspended wall time is not counted.
func (tl *Timeline) Suspend() {
	switch tl.state {
	case StateReady, StatePlayingForward, StatePlayingReverse:
		tl.wasReady = tl.state == StateReady
		tl.setState(StateSuspended)
	}
}

// Resume continues a suspended timeline.
func (tl *Timeline) Resume() {
	if tl.state != StateSuspended {
		return
	}
	tl.lastPulse = tl.sched.clock.Now()
	if tl.wasReady {
		tl.setState(StateReady)
	} else {
		tl.setState(tl.playingState())
	}
	tl.sched.signal()
}

// Cancel stops the timeline where it is. Properties keep their last value.
func (tl *Timeline) Cancel() {
	if tl.state.IsActive() {
		tl.setState(StateCancelled)
	}
}

// Abort stops the timeline like Cancel without notifying state observers.
func (tl *Timeline) Abort() {
	if !tl.state.IsActive() {
		return
	}
	tl.silent = true
	tl.setState(StateCancelled)
	tl.silent = false
}

// End jumps to the final position of the current direction, applies it and
// finishes the timeline.
func (tl *Timeline) End() {
	if !tl.state.IsActive() {
		return
	}
	tl.jumpTo(tl.forward)
	if !tl.apply() {
		return
	}
	tl.setState(StateDone)
}

// IsDone reports whether the last run ended, by finishing or by cancellation.
func (tl *Timeline) IsDone() bool { return tl.done }

// SupportsReplay reports true: a finished timeline can be played again.
func (tl *Timeline) SupportsReplay() bool { return true }

// ResetDoneFlag clears the done flag so a scenario can replay the timeline.
func (tl *Timeline) ResetDoneFlag() error {
	tl.done = false
	return nil
}

// AddCallback registers a callback and returns a function that removes it.
func (tl *Timeline) AddCallback(cb Callback) func() {
	return tl.callbacks.add(cb)
}

// OnStateChange registers fn for state transitions.
func (tl *Timeline) OnStateChange(fn func(StateChange)) func() {
	return tl.callbacks.add(CallbackAdapter{
		StateChanged: func(_ *Timeline, change StateChange) { fn(change) },
	})
}

// OnPulse registers fn for every apply step.
func (tl *Timeline) OnPulse(fn func(durationFraction, easedFraction float64)) func() {
	return tl.callbacks.add(CallbackAdapter{
		Pulse: func(_ *Timeline, d, e float64) { fn(d, e) },
	})
}

// OnFailure registers fn for failures that cancel the timeline.
func (tl *Timeline) OnFailure(fn func(error)) func() {
	return tl.failures.add(fn)
}

func (tl *Timeline) playingState() State {
	if tl.forward {
		return StatePlayingForward
	}
	return StatePlayingReverse
}

func (tl *Timeline) setPosition(p time.Duration) {
	tl.position = p
	if tl.duration > 0 {
		tl.fraction = float64(p) / float64(tl.duration)
	}
	tl.eased = tl.ease(tl.fraction)
}

func (tl *Timeline) jumpTo(end bool) {
	if end {
		tl.position, tl.fraction = tl.duration, 1
	} else {
		tl.position, tl.fraction = 0, 0
	}
	tl.eased = tl.ease(tl.fraction)
}

func (tl *Timeline) setState(s State) {
	old := tl.state
	if old == s {
		return
	}
	tl.state = s
	if s.IsTerminal() {
		tl.done = true
	}
	if tl.silent {
		return
	}
	change := StateChange{Old: old, New: s, DurationFraction: tl.fraction, EasedFraction: tl.eased}
	for _, cb := range tl.callbacks.snapshot() {
		tl.guard("timeline.OnStateChanged", graniteerrors.KindCallback, func() error {
			cb.OnStateChanged(tl, change)
			return nil
		})
	}
}

// pulse advances the timeline to now. Called by the scheduler.
func (tl *Timeline) pulse(now time.Time) {
	delta := max(now.Sub(tl.lastPulse), 0)
	tl.lastPulse = now

	switch tl.state {
	case StateReady:
		if delta < tl.delayLeft {
			tl.delayLeft -= delta
			return
		}
		delta -= tl.delayLeft
		tl.delayLeft = 0
		next := tl.playingState()
		tl.setState(next)
		if tl.state != next {
			return
		}
	case StatePlayingForward, StatePlayingReverse:
	default:
		return
	}
	tl.advance(delta)
}

func (tl *Timeline) advance(delta time.Duration) {
	for range maxCyclesPerPulse {
		if tl.cycleDue {
			if delta < tl.cycleWait {
				tl.cycleWait -= delta
				return
			}
			delta -= tl.cycleWait
			tl.cycleWait = 0
			tl.cycleDue = false
			if !tl.beginCycle() {
				return
			}
		}

		crossed := false
		var leftover time.Duration
		switch {
		case tl.duration <= 0:
			tl.jumpTo(tl.forward)
			crossed = true
		case tl.forward:
			p := tl.position + delta
			if p >= tl.duration {
				leftover, p, crossed = p-tl.duration, tl.duration, true
			}
			tl.setPosition(p)
		default:
			p := tl.position - delta
			if p <= 0 {
				leftover, p, crossed = -p, 0, true
			}
			tl.setPosition(p)
		}

		if !tl.apply() || !crossed {
			return
		}
		if !tl.endCycle() {
			return
		}
		delta = leftover
	}
}

// endCycle reports whether another cycle follows.
func (tl *Timeline) endCycle() bool {
	if tl.loopsLeft > 0 {
		tl.loopsLeft--
	}
	if tl.repeat == RepeatNone || tl.loopsLeft == 0 {
		tl.setState(StateDone)
		return false
	}
	tl.cycleDue = true
	tl.cycleWait = tl.cycleDelay
	return true
}

// beginCycle reports whether the timeline is still playing afterwards.
func (tl *Timeline) beginCycle() bool {
	switch tl.repeat {
	case RepeatLoop:
		tl.jumpTo(!tl.forward)
	case RepeatReverse:
		tl.forward = !tl.forward
		next := tl.playingState()
		tl.setState(next)
		return tl.state == next
	}
	return true
}

// apply writes every property at the current eased fraction and notifies
// pulse observers. It reports false when the timeline stopped meanwhile.
func (tl *Timeline) apply() bool {
	state := tl.state
	if d, ok := tl.target.(Disposable); ok && d.IsDisposed() {
		tl.fail("timeline.apply", graniteerrors.KindTarget, ErrTargetDisposed)
		return false
	}
	for _, p := range tl.props {
		if !tl.guard("timeline.apply", graniteerrors.KindTarget, func() error {
			if err := p.apply(tl.eased); err != nil {
				return fmt.Errorf("property %q: %w", p.propertyName(), err)
			}
			return nil
		}) {
			return false
		}
	}
	for _, cb := range tl.callbacks.snapshot() {
		tl.guard("timeline.OnPulse", graniteerrors.KindCallback, func() error {
			cb.OnPulse(tl, tl.fraction, tl.eased)
			return nil
		})
		if tl.state != state {
			return false
		}
	}
	return true
}

// guard runs fn, turning a returned error or a panic into a failure of the
// timeline. It reports whether fn succeeded.
func (tl *Timeline) guard(op string, kind graniteerrors.ErrorKind, fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			tl.failPanic(op, r)
			ok = false
		}
	}()
	if err := fn(); err != nil {
		tl.fail(op, kind, err)
		return false
	}
	return true
}

func (tl *Timeline) failPanic(op string, r any) {
	tl.fail(op, graniteerrors.KindPanic, graniteerrors.NewPanicError(op, r))
}

// fail cancels the timeline and reports err to failure observers and the
// scheduler's error handler.
func (tl *Timeline) fail(op string, kind graniteerrors.ErrorKind, err error) {
	engineErr := &graniteerrors.EngineError{Op: op, Kind: kind, Subject: tl.name, Err: err}
	if tl.err == nil || tl.state.IsActive() {
		tl.err = engineErr
	}
	if tl.state.IsActive() {
		tl.setState(StateCancelled)
	}
	for _, fn := range tl.failures.snapshot() {
		tl.sched.runGuarded("timeline.OnFailure", func() { fn(engineErr) })
	}
	tl.sched.reportError(engineErr)
}

func (tl *Timeline) configError(op string, err error) error {
	return &graniteerrors.EngineError{Op: op, Kind: graniteerrors.KindConfig, Subject: tl.name, Err: err}
}
