package timeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	graniteerrors "github.com/go-drift/granite/pkg/errors"
)

// logTimeline returns a timeline that appends name to log when it finishes.
func logTimeline(h *harness, name string, d time.Duration, log *[]string) *Timeline {
	tl := h.sched.NewTimeline(nil)
	tl.SetName(name)
	tl.SetDuration(d)
	tl.OnStateChange(func(c StateChange) {
		if c.New == StateDone {
			*log = append(*log, name)
		}
	})
	return tl
}

func logRunnable(name string, log *[]string) *RunnableActor {
	return Runnable(name, func() { *log = append(*log, name) })
}

func TestSequence_RunsInOrder(t *testing.T) {
	h := newHarness(t)
	var log []string
	seq := h.sched.NewSequence()
	seq.AddActor(logRunnable("a", &log))
	seq.AddActor(logTimeline(h, "fade", 200*ms, &log))
	seq.AddActor(logRunnable("b", &log))

	var states []ScenarioState
	seq.OnStateChange(func(c ScenarioStateChange) { states = append(states, c.New) })

	if err := seq.Play(); err != nil {
		t.Fatalf("Play() = %v", err)
	}
	if diff := cmp.Diff([]string{"a"}, log); diff != "" {
		t.Fatalf("after Play (-want +got):\n%s", diff)
	}

	h.pump(0, 100*ms)
	if len(log) != 1 {
		t.Fatalf("b ran before the timeline finished: %v", log)
	}
	h.pump(100 * ms)
	if diff := cmp.Diff([]string{"a", "fade", "b"}, log); diff != "" {
		t.Errorf("log (-want +got):\n%s", diff)
	}
	if seq.State() != ScenarioDone || !seq.IsDone() {
		t.Errorf("state = %v", seq.State())
	}
	if diff := cmp.Diff([]ScenarioState{ScenarioPlaying, ScenarioDone}, states); diff != "" {
		t.Errorf("states (-want +got):\n%s", diff)
	}
	if h.sched.ActiveScenarios() != 0 {
		t.Errorf("ActiveScenarios() = %d, want 0", h.sched.ActiveScenarios())
	}
}

func TestRendezvous_PhasesGate(t *testing.T) {
	h := newHarness(t)
	var log []string
	rs := h.sched.NewRendezvousSequence()
	short := logTimeline(h, "short", 100*ms, &log)
	long := logTimeline(h, "long", 300*ms, &log)
	rs.AddActor(short)
	rs.AddActor(long)
	rs.Rendezvous()
	rs.AddActor(logRunnable("next", &log))

	rs.Play()
	if short.State() != StateReady || long.State() != StateReady {
		t.Fatalf("phase one did not start together: %v %v", short.State(), long.State())
	}

	h.pump(0, 100*ms)
	if diff := cmp.Diff([]string{"short"}, log); diff != "" {
		t.Fatalf("after 100ms (-want +got):\n%s", diff)
	}
	h.pump(200 * ms)
	if diff := cmp.Diff([]string{"short", "long", "next"}, log); diff != "" {
		t.Errorf("after 300ms (-want +got):\n%s", diff)
	}
	if rs.State() != ScenarioDone {
		t.Errorf("state = %v, want done", rs.State())
	}
}

func TestRendezvous_FinishOrderDoesNotMatter(t *testing.T) {
	tests := []struct {
		name    string
		a, b    time.Duration
		wantLog []string
	}{
		{"a first", 100 * ms, 300 * ms, []string{"a", "b", "next"}},
		{"b first", 300 * ms, 100 * ms, []string{"b", "a", "next"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			var log []string
			rs := h.sched.NewRendezvousSequence()
			rs.AddActor(logTimeline(h, "a", tt.a, &log))
			rs.AddActor(logTimeline(h, "b", tt.b, &log))
			rs.Rendezvous()
			rs.AddActor(logRunnable("next", &log))

			if err := rs.Play(); err != nil {
				t.Fatalf("Play() = %v", err)
			}
			h.pump(0, 100*ms)
			if len(log) != 1 {
				t.Fatalf("after the first finish: log = %v", log)
			}
			h.pump(200 * ms)
			if diff := cmp.Diff(tt.wantLog, log); diff != "" {
				t.Errorf("log (-want +got):\n%s", diff)
			}
			if rs.State() != ScenarioDone || rs.Err() != nil {
				t.Errorf("state = %v, err = %v", rs.State(), rs.Err())
			}
		})
	}
}

func TestRendezvous_EmptyPhasesAreFree(t *testing.T) {
	h := newHarness(t)
	var log []string
	rs := h.sched.NewRendezvousSequence()
	rs.Rendezvous()
	rs.AddActor(logRunnable("one", &log))
	rs.Rendezvous()
	rs.Rendezvous()
	rs.AddActor(logRunnable("two", &log))
	rs.Rendezvous()

	rs.Play()
	if diff := cmp.Diff([]string{"one", "two"}, log); diff != "" {
		t.Errorf("log (-want +got):\n%s", diff)
	}
	if rs.State() != ScenarioDone {
		t.Errorf("state = %v, want done without a pulse", rs.State())
	}
}

func TestParallel_StartsEverything(t *testing.T) {
	h := newHarness(t)
	var log []string
	par := h.sched.NewParallel()
	a := logTimeline(h, "a", 300*ms, &log)
	b := logTimeline(h, "b", 100*ms, &log)
	par.AddActor(a)
	par.AddActor(b)

	par.Play()
	if a.State() != StateReady || b.State() != StateReady {
		t.Fatalf("states %v %v, want both ready", a.State(), b.State())
	}
	h.settle(t)
	if diff := cmp.Diff([]string{"b", "a"}, log); diff != "" {
		t.Errorf("log (-want +got):\n%s", diff)
	}
	if par.State() != ScenarioDone {
		t.Errorf("state = %v, want done", par.State())
	}
}

func TestScenario_ConfigurationErrors(t *testing.T) {
	h := newHarness(t)
	seq := h.sched.NewSequence()
	r := Runnable("r", func() {})

	if err := seq.Rendezvous(); !errors.Is(err, ErrNotRendezvous) {
		t.Errorf("Rendezvous() on a sequence = %v", err)
	}
	if err := seq.AddActor(r); err != nil {
		t.Fatal(err)
	}
	if err := seq.AddActor(r); !errors.Is(err, ErrDuplicateActor) {
		t.Errorf("duplicate AddActor() = %v", err)
	}
	if err := seq.AddDependency(r, Runnable("stranger", func() {})); !errors.Is(err, ErrUnknownActor) {
		t.Errorf("AddDependency() with an unknown actor = %v", err)
	}
	seq.Play()
	if err := seq.AddActor(Runnable("late", func() {})); !errors.Is(err, ErrScenarioStarted) {
		t.Errorf("AddActor() after Play = %v", err)
	}
	if err := seq.Play(); !errors.Is(err, ErrScenarioStarted) {
		t.Errorf("second Play() = %v", err)
	}
}

func TestScenario_DependencyCycle(t *testing.T) {
	h := newHarness(t)
	par := h.sched.NewParallel()
	a := Runnable("a", func() {})
	b := Runnable("b", func() {})
	par.AddActor(a)
	par.AddActor(b)
	par.AddDependency(a, b)
	par.AddDependency(b, a)

	if err := par.Play(); !errors.Is(err, ErrDependencyCycle) {
		t.Errorf("Play() = %v, want ErrDependencyCycle", err)
	}
	if a.IsDone() || b.IsDone() {
		t.Error("actors ran despite the cycle")
	}
}

func TestScenario_ExplicitDependency(t *testing.T) {
	h := newHarness(t)
	var log []string
	par := h.sched.NewParallel()
	slow := logTimeline(h, "slow", 200*ms, &log)
	after := logRunnable("after", &log)
	par.AddActor(after)
	par.AddActor(slow)
	if err := par.AddDependency(after, slow); err != nil {
		t.Fatal(err)
	}

	par.Play()
	if len(log) != 0 {
		t.Fatalf("dependent ran early: %v", log)
	}
	h.settle(t)
	if diff := cmp.Diff([]string{"slow", "after"}, log); diff != "" {
		t.Errorf("log (-want +got):\n%s", diff)
	}
}

func TestScenario_CancelOnlyTouchesRunningActors(t *testing.T) {
	h := newHarness(t)
	var log []string
	seq := h.sched.NewSequence()
	first := logTimeline(h, "first", time.Second, &log)
	second := logTimeline(h, "second", time.Second, &log)
	seq.AddActor(first)
	seq.AddActor(second)

	seq.Play()
	h.pump(0, 100*ms)
	seq.Cancel()

	if seq.State() != ScenarioCancelled || !seq.IsDone() {
		t.Errorf("scenario state = %v", seq.State())
	}
	if first.State() != StateCancelled {
		t.Errorf("first = %v, want cancelled", first.State())
	}
	if second.State() != StateIdle {
		t.Errorf("second = %v, want idle", second.State())
	}
	h.pump(2 * time.Second)
	if len(log) != 0 {
		t.Errorf("actors finished after cancel: %v", log)
	}
}

func TestScenario_CancelledActorCountsAsDone(t *testing.T) {
	h := newHarness(t)
	var log []string
	seq := h.sched.NewSequence()
	tl := logTimeline(h, "tl", time.Second, &log)
	seq.AddActor(tl)
	seq.AddActor(logRunnable("after", &log))

	seq.Play()
	h.pump(0)
	tl.Cancel()
	h.pump(0)
	if diff := cmp.Diff([]string{"after"}, log); diff != "" {
		t.Errorf("log (-want +got):\n%s", diff)
	}
}

func TestScenario_SuspendResume(t *testing.T) {
	h := newHarness(t)
	seq := h.sched.NewSequence()
	tl, x := newFloatTimeline(t, h, time.Second)
	seq.AddActor(tl)
	seq.Play()
	h.pump(0, 200*ms)

	seq.Suspend()
	if seq.State() != ScenarioSuspended || tl.State() != StateSuspended {
		t.Fatalf("states %v %v", seq.State(), tl.State())
	}
	h.pump(5 * time.Second)
	seq.Resume()
	h.pump(100 * ms)
	if !approx(*x, 30) {
		t.Errorf("x = %v, want 30", *x)
	}
}

func TestScenario_ActorPlayFailure(t *testing.T) {
	h := newHarness(t)
	seq := h.sched.NewSequence()
	broken, _ := newFloatTimeline(t, h, 0)
	seq.AddActor(broken)
	var failures []error
	seq.OnFailure(func(err error) { failures = append(failures, err) })

	if err := seq.Play(); err != nil {
		t.Fatalf("Play() = %v", err)
	}
	if seq.State() != ScenarioCancelled {
		t.Errorf("state = %v, want cancelled", seq.State())
	}
	if !errors.Is(seq.Err(), ErrZeroDuration) || len(failures) != 1 {
		t.Errorf("Err() = %v, failures = %d", seq.Err(), len(failures))
	}
	if n, _ := h.handler.counts(); n != 1 {
		t.Errorf("handler saw %d errors, want 1", n)
	}
}

func TestScenario_RunnablePanicStillDone(t *testing.T) {
	h := newHarness(t)
	global := &recordingHandler{}
	defer graniteerrors.SetHandler(graniteerrors.SetHandler(global))

	var log []string
	seq := h.sched.NewSequence()
	seq.AddActor(Runnable("explode", func() { panic("runnable exploded") }))
	seq.AddActor(logRunnable("after", &log))
	seq.Play()

	if seq.State() != ScenarioDone || len(log) != 1 {
		t.Errorf("state = %v, log = %v", seq.State(), log)
	}
	if _, panics := h.handler.counts(); panics != 1 {
		t.Errorf("scheduler handler saw %d panics, want 1", panics)
	}
	if _, panics := global.counts(); panics != 0 {
		t.Errorf("global handler saw %d panics, want 0", panics)
	}
}

func TestScenario_Replay(t *testing.T) {
	h := newHarness(t)
	runs := 0
	seq := h.sched.NewSequence()
	tl, x := newFloatTimeline(t, h, 100*ms)
	seq.AddActor(Runnable("count", func() { runs++ }))
	seq.AddActor(tl)

	seq.Play()
	h.settle(t)
	if seq.State() != ScenarioDone || *x != 100 {
		t.Fatalf("first run: state %v, x %v", seq.State(), *x)
	}

	if !seq.SupportsReplay() {
		t.Fatal("SupportsReplay() = false")
	}
	if err := seq.ResetDoneFlag(); err != nil {
		t.Fatalf("ResetDoneFlag() = %v", err)
	}
	if seq.State() != ScenarioIdle || tl.IsDone() {
		t.Fatalf("after reset: state %v, timeline done %v", seq.State(), tl.IsDone())
	}
	seq.Play()
	h.pump(0, 50*ms)
	if runs != 2 || !approx(*x, 50) {
		t.Errorf("replay: runs %d, x %v", runs, *x)
	}
}

func TestScenario_JobsDoNotReplay(t *testing.T) {
	h := newHarness(t)
	seq := h.sched.NewSequence()
	seq.AddActor(h.sched.NewJob("fetch", func(context.Context) error { return nil }))
	seq.Play()

	if seq.SupportsReplay() {
		t.Error("SupportsReplay() = true with a job actor")
	}
	if err := seq.ResetDoneFlag(); !errors.Is(err, ErrReplayUnsupported) {
		t.Errorf("ResetDoneFlag() = %v, want ErrReplayUnsupported", err)
	}
}

func TestScenario_WaitsForBackgroundJob(t *testing.T) {
	h := newHarness(t)
	release := make(chan struct{})
	var result string
	job := NewJobActor(GoExecutor{}, "search", func(context.Context) error {
		<-release
		result = "found"
		return nil
	})
	var seen string
	seq := h.sched.NewSequence()
	seq.AddActor(job)
	seq.AddActor(Runnable("use", func() { seen = result }))

	seq.Play()
	h.pump(0, 16*ms)
	if seq.State() != ScenarioPlaying || seen != "" {
		t.Fatalf("scenario moved on before the job: %v %q", seq.State(), seen)
	}

	close(release)
	<-job.Done()
	h.pump(16 * ms)
	if seq.State() != ScenarioDone || seen != "found" {
		t.Errorf("state = %v, seen = %q", seq.State(), seen)
	}
}

func TestScenario_Nested(t *testing.T) {
	h := newHarness(t)
	var log []string
	inner := h.sched.NewParallel()
	inner.AddActor(logTimeline(h, "left", 100*ms, &log))
	inner.AddActor(logTimeline(h, "right", 150*ms, &log))
	outer := h.sched.NewSequence()
	outer.AddActor(inner)
	outer.AddActor(logRunnable("after", &log))

	outer.Play()
	h.settle(t)

	if diff := cmp.Diff([]string{"left", "right", "after"}, log); diff != "" {
		t.Errorf("log (-want +got):\n%s", diff)
	}
	if outer.State() != ScenarioDone || inner.State() != ScenarioDone {
		t.Errorf("states %v %v", outer.State(), inner.State())
	}
}

func TestScenarioStateString(t *testing.T) {
	for state, want := range map[ScenarioState]string{
		ScenarioIdle:      "idle",
		ScenarioPlaying:   "playing",
		ScenarioSuspended: "suspended",
		ScenarioDone:      "done",
		ScenarioCancelled: "cancelled",
	} {
		if got := state.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", state, got, want)
		}
	}
}
