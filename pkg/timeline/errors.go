package timeline

import "errors"

// Sentinel errors for timeline, scenario and scheduler operations.
var (
	// ErrZeroDuration is returned when playing a timeline that has properties
	// but no duration.
	ErrZeroDuration = errors.New("timeline: zero duration with properties to interpolate")

	// ErrLoopCount is returned by PlayLoopCount with a loop count of zero.
	ErrLoopCount = errors.New("timeline: loop count must be positive or negative for forever")

	// ErrInvalidProperty is returned when a property binding lacks a setter
	// or an interpolator.
	ErrInvalidProperty = errors.New("timeline: property needs Set and Lerp")

	// ErrTimelineActive is returned when configuring a timeline while it plays.
	ErrTimelineActive = errors.New("timeline: cannot configure an active timeline")

	// ErrNoScheduler is returned when playing a timeline or scenario that was
	// not created by a Scheduler.
	ErrNoScheduler = errors.New("timeline: no scheduler")

	// ErrSchedulerStopped is returned when using a scheduler after Stop.
	ErrSchedulerStopped = errors.New("timeline: scheduler stopped")

	// ErrAlreadyStarted is returned by a second call to Scheduler.Start.
	ErrAlreadyStarted = errors.New("timeline: scheduler already started")

	// ErrNotRunning is returned by Invoke when the scheduler loop is not running.
	ErrNotRunning = errors.New("timeline: scheduler loop not running")

	// ErrTargetDisposed is reported when the animated target was disposed.
	ErrTargetDisposed = errors.New("timeline: target disposed")

	// ErrReplayUnsupported is returned when replaying an actor that cannot run twice.
	ErrReplayUnsupported = errors.New("timeline: actor does not support replay")

	// ErrScenarioStarted is returned when modifying a scenario after Play.
	ErrScenarioStarted = errors.New("timeline: scenario already started")

	// ErrNotRendezvous is returned by Rendezvous on other scenario kinds.
	ErrNotRendezvous = errors.New("timeline: rendezvous on a non-rendezvous scenario")

	// ErrDuplicateActor is returned when adding an actor twice.
	ErrDuplicateActor = errors.New("timeline: actor already in scenario")

	// ErrUnknownActor is returned when a dependency names an actor that was
	// not added to the scenario.
	ErrUnknownActor = errors.New("timeline: actor not in scenario")

	// ErrDependencyCycle is returned when scenario dependencies form a cycle.
	ErrDependencyCycle = errors.New("timeline: dependency cycle")
)
