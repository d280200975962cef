package timeline

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-drift/granite/pkg/animation"
	graniteerrors "github.com/go-drift/granite/pkg/errors"
)

const (
	// DefaultPulseInterval is the pulse period used when Config.PulseInterval is zero.
	DefaultPulseInterval = time.Second / 60

	// DefaultMaxJobs bounds the default background job pool.
	DefaultMaxJobs = 4
)

// Config configures a Scheduler.
type Config struct {
	// PulseInterval is the period between pulses while animations run.
	PulseInterval time.Duration
	// Clock supplies time. Defaults to the system clock.
	Clock animation.Clock
	// Executor runs background jobs created with NewJob. Defaults to a Pool
	// of MaxJobs workers.
	Executor Executor
	// MaxJobs bounds the default Pool. Ignored when Executor is set.
	MaxJobs int
	// Logger receives scheduler diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
	// ErrorHandler receives failures from the pulse loop. Nil uses the
	// global handler of the errors package.
	ErrorHandler graniteerrors.Handler
}

// Scheduler owns the pulse loop that drives timelines and scenarios.
//
// Every timeline and scenario created by a Scheduler is owned by the
// goroutine that calls Pulse: the loop goroutine after Start, or the test
// goroutine when pulsing manually. Property setters and callbacks always run
// on that goroutine. Code running elsewhere must hand work over with
// Dispatch or Invoke.
type Scheduler struct {
	interval time.Duration
	clock    animation.Clock
	exec     Executor
	logger   *slog.Logger
	handler  graniteerrors.Handler

	mu            sync.Mutex
	timelines     []*Timeline
	scenarios     []*Scenario
	repainters    []*RepaintCoalescer
	dispatchQueue []func()
	running       bool
	stopped       bool
	exited        bool
	cancel        context.CancelFunc
	done          chan struct{}

	wake   chan struct{}
	pulses atomic.Uint64
	nextID atomic.Uint64
}

// New creates a scheduler. The scheduler can be pulsed manually right away;
// call Start to drive it from its own goroutine.
func New(cfg Config) *Scheduler {
	if cfg.PulseInterval <= 0 {
		cfg.PulseInterval = DefaultPulseInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = animation.SystemClock{}
	}
	if cfg.Executor == nil {
		if cfg.MaxJobs <= 0 {
			cfg.MaxJobs = DefaultMaxJobs
		}
		cfg.Executor = NewPool(cfg.MaxJobs)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Scheduler{
		interval: cfg.PulseInterval,
		clock:    cfg.Clock,
		exec:     cfg.Executor,
		logger:   cfg.Logger,
		handler:  cfg.ErrorHandler,
		wake:     make(chan struct{}, 1),
	}
}

// Clock returns the scheduler's time source.
func (s *Scheduler) Clock() animation.Clock {
	return s.clock
}

// Executor returns the executor used for background jobs.
func (s *Scheduler) Executor() Executor {
	return s.exec
}

// Start runs the pulse loop on a new goroutine until ctx is cancelled or
// Stop is called. Once the loop has exited the scheduler accepts no more
// dispatches and cannot be started again.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped || s.exited {
		s.mu.Unlock()
		return ErrSchedulerStopped
	}
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	s.logger.Debug("scheduler started", "interval", s.interval)
	go s.loop(ctx, done)
	return nil
}

// Stop ends the pulse loop and cancels every timeline and scenario that is
// still active. Stop is idempotent; a stopped scheduler cannot be restarted.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	// The loop has exited, so this goroutine owns the remaining state.
	for _, sc := range s.activeScenarios() {
		sc.Cancel()
	}
	for _, tl := range s.activeTimelines() {
		tl.Cancel()
	}
	s.prune()
	s.logger.Debug("scheduler stopped", "pulses", s.pulses.Load())
	return nil
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.exited = true
		dropped := len(s.dispatchQueue)
		s.dispatchQueue = nil
		s.mu.Unlock()
		if dropped > 0 {
			s.logger.Debug("scheduler exited with queued dispatches", "dropped", dropped)
		}
		close(done)
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if s.idle() {
			select {
			case <-ctx.Done():
				return
			case <-s.wake:
			}
			ticker.Reset(s.interval)
			s.safePulse()
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.safePulse()
		case <-s.wake:
		}
	}
}

func (s *Scheduler) safePulse() {
	defer func() {
		if r := recover(); r != nil {
			graniteerrors.ReportPanicTo(s.handler, graniteerrors.NewPanicError("timeline.Scheduler.Pulse", r))
		}
	}()
	s.Pulse()
}

// Pulse advances the scheduler by one tick: queued dispatches run first,
// then every active timeline in registration order, then every active
// scenario, and finally coalesced repaints are flushed.
func (s *Scheduler) Pulse() {
	s.runDispatches()

	now := s.clock.Now()
	for _, tl := range s.activeTimelines() {
		s.pulseTimeline(tl, now)
	}
	for _, sc := range s.activeScenarios() {
		s.advanceScenario(sc)
	}
	s.prune()
	s.flushRepaints()
	s.pulses.Add(1)
}

func (s *Scheduler) pulseTimeline(tl *Timeline, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			tl.failPanic("timeline.Pulse", r)
		}
	}()
	tl.pulse(now)
}

func (s *Scheduler) advanceScenario(sc *Scenario) {
	defer func() {
		if r := recover(); r != nil {
			sc.fail(graniteerrors.KindPanic, graniteerrors.NewPanicError("timeline.Scenario.advance", r))
		}
	}()
	sc.advance()
}

// Idle reports whether the scheduler has no work: no queued dispatches, no
// running timelines, no playing scenarios and no pending repaints.
// Suspended timelines do not keep the scheduler busy.
//
// Idle reads timeline and scenario state, so it must be called from the
// goroutine that owns the scheduler, like any other timeline method. Other
// goroutines can ask through Invoke.
func (s *Scheduler) Idle() bool {
	return s.idle()
}

func (s *Scheduler) idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.dispatchQueue) > 0 {
		return false
	}
	for _, tl := range s.timelines {
		if tl.state.IsActive() && tl.state != StateSuspended {
			return false
		}
	}
	for _, sc := range s.scenarios {
		if sc.state == ScenarioPlaying {
			return false
		}
	}
	for _, r := range s.repainters {
		if r.pending.Load() {
			return false
		}
	}
	return true
}

// Active returns the number of timelines registered with the scheduler.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timelines)
}

// ActiveScenarios returns the number of scenarios registered with the scheduler.
func (s *Scheduler) ActiveScenarios() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scenarios)
}

// Pulses returns the number of completed pulses.
func (s *Scheduler) Pulses() uint64 {
	return s.pulses.Load()
}

// Dispatch schedules fn to run on the scheduler goroutine at the start of
// the next pulse and is safe to call from any goroutine. It returns false
// if fn is nil, the scheduler is stopped or its loop has exited.
func (s *Scheduler) Dispatch(fn func()) bool {
	if fn == nil {
		return false
	}
	s.mu.Lock()
	if s.stopped || s.exited {
		s.mu.Unlock()
		return false
	}
	s.dispatchQueue = append(s.dispatchQueue, fn)
	s.mu.Unlock()
	s.signal()
	return true
}

// Invoke runs fn on the scheduler goroutine and waits for it to return.
// It must not be called from the scheduler goroutine itself. If the loop
// exits before fn runs, Invoke returns ErrNotRunning.
func (s *Scheduler) Invoke(ctx context.Context, fn func()) error {
	s.mu.Lock()
	running, done := s.running, s.done
	s.mu.Unlock()
	if !running {
		return ErrNotRunning
	}

	finished := make(chan struct{})
	if !s.Dispatch(func() {
		defer close(finished)
		fn()
	}) {
		s.mu.Lock()
		stopped := s.stopped
		s.mu.Unlock()
		if stopped {
			return ErrSchedulerStopped
		}
		return ErrNotRunning
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		select {
		case <-finished:
			return nil
		default:
			return ErrNotRunning
		}
	}
}

func (s *Scheduler) runDispatches() {
	s.mu.Lock()
	queue := s.dispatchQueue
	s.dispatchQueue = nil
	s.mu.Unlock()

	for _, fn := range queue {
		s.runGuarded("timeline.Scheduler.Dispatch", fn)
	}
}

// runGuarded runs fn and reports a panic instead of propagating it.
func (s *Scheduler) runGuarded(op string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			graniteerrors.ReportPanicTo(s.handler, graniteerrors.NewPanicError(op, r))
		}
	}()
	fn()
}

// NewTimeline creates an idle timeline that animates properties of target.
// The target is referenced, never owned.
func (s *Scheduler) NewTimeline(target any) *Timeline {
	id := s.nextID.Add(1)
	return newTimeline(s, id, target)
}

func (s *Scheduler) schedule(tl *Timeline) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrSchedulerStopped
	}
	if !tl.registered {
		tl.registered = true
		s.timelines = append(s.timelines, tl)
	}
	s.mu.Unlock()
	s.logger.Debug("timeline scheduled", "timeline", tl.name)
	s.signal()
	return nil
}

func (s *Scheduler) scheduleScenario(sc *Scenario) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrSchedulerStopped
	}
	if !sc.registered {
		sc.registered = true
		s.scenarios = append(s.scenarios, sc)
	}
	s.mu.Unlock()
	s.signal()
	return nil
}

func (s *Scheduler) activeTimelines() []*Timeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Timeline(nil), s.timelines...)
}

func (s *Scheduler) activeScenarios() []*Scenario {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Scenario(nil), s.scenarios...)
}

// prune drops timelines and scenarios that reached a terminal state.
func (s *Scheduler) prune() {
	s.mu.Lock()
	defer s.mu.Unlock()

	timelines := s.timelines[:0]
	for _, tl := range s.timelines {
		if tl.state.IsActive() {
			timelines = append(timelines, tl)
		} else {
			tl.registered = false
		}
	}
	clear(s.timelines[len(timelines):])
	s.timelines = timelines

	scenarios := s.scenarios[:0]
	for _, sc := range s.scenarios {
		if sc.state == ScenarioPlaying || sc.state == ScenarioSuspended {
			scenarios = append(scenarios, sc)
		} else {
			sc.registered = false
		}
	}
	clear(s.scenarios[len(scenarios):])
	s.scenarios = scenarios
}

// signal wakes an idle loop without blocking.
func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) reportError(err *graniteerrors.EngineError) {
	graniteerrors.ReportTo(s.handler, err)
}
