package timeline

import (
	"context"
	"sync"
	"sync/atomic"

	graniteerrors "github.com/go-drift/granite/pkg/errors"
)

// Job is background work run off the scheduler goroutine. It should return
// promptly once ctx is cancelled.
type Job func(ctx context.Context) error

// JobActor adapts a Job to the Actor interface. The job runs on an Executor;
// its completion is published through an atomic flag that the scheduler
// polls, so the job never touches timeline state.
//
// A JobActor runs once. It cannot be replayed.
type JobActor struct {
	name    string
	exec    Executor
	job     Job
	handler graniteerrors.Handler

	started atomic.Bool
	done    atomic.Bool
	doneCh  chan struct{}
	err     error // written before done is set

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewJobActor returns an actor that runs job on exec when played.
func NewJobActor(exec Executor, name string, job Job) *JobActor {
	if exec == nil {
		exec = GoExecutor{}
	}
	return &JobActor{
		name:   name,
		exec:   exec,
		job:    job,
		doneCh: make(chan struct{}),
	}
}

// NewJob returns a job actor running on the scheduler's executor. Panics in
// the job are reported to the scheduler's error handler.
func (s *Scheduler) NewJob(name string, job Job) *JobActor {
	a := NewJobActor(s.exec, name, job)
	a.handler = s.handler
	return a
}

// Name returns the job name.
func (a *JobActor) Name() string { return a.name }

// Play submits the job to the executor. A second call fails with
// ErrReplayUnsupported.
func (a *JobActor) Play() error {
	if !a.started.CompareAndSwap(false, true) {
		return a.unsupported("timeline.JobActor.Play")
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()
	a.exec.Go(func() { a.run(ctx, cancel) })
	return nil
}

func (a *JobActor) run(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	if err := a.invoke(ctx); err != nil {
		a.err = &graniteerrors.EngineError{Op: "timeline.JobActor", Kind: graniteerrors.KindJob, Subject: a.name, Err: err}
	}
	a.done.Store(true)
	close(a.doneCh)
}

func (a *JobActor) invoke(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p := graniteerrors.NewPanicError("timeline.JobActor "+a.name, r)
			graniteerrors.ReportPanicTo(a.handler, p)
			err = p
		}
	}()
	if a.job == nil {
		return nil
	}
	return a.job(ctx)
}

// IsDone reports whether the job returned. It is safe to call from any
// goroutine.
func (a *JobActor) IsDone() bool { return a.done.Load() }

// Done returns a channel closed when the job returns.
func (a *JobActor) Done() <-chan struct{} { return a.doneCh }

// Wait blocks until the job returns or ctx is done.
func (a *JobActor) Wait(ctx context.Context) error {
	select {
	case <-a.doneCh:
		return a.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the job's error once IsDone reports true, nil before.
func (a *JobActor) Err() error {
	if !a.done.Load() {
		return nil
	}
	return a.err
}

// Cancel cancels the job's context. The actor becomes done when the job
// returns.
func (a *JobActor) Cancel() {
	a.mu.Lock()
	cancel := a.cancel
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// SupportsReplay reports false.
func (a *JobActor) SupportsReplay() bool { return false }

// ResetDoneFlag always fails: background jobs run once.
func (a *JobActor) ResetDoneFlag() error {
	return a.unsupported("timeline.JobActor.ResetDoneFlag")
}

func (a *JobActor) unsupported(op string) error {
	return &graniteerrors.EngineError{Op: op, Kind: graniteerrors.KindUnsupported, Subject: a.name, Err: ErrReplayUnsupported}
}
