package timeline

import (
	"errors"
	"fmt"
	"slices"

	graniteerrors "github.com/go-drift/granite/pkg/errors"
)

// ScenarioState is the lifecycle state of a Scenario.
type ScenarioState int

const (
	ScenarioIdle ScenarioState = iota
	ScenarioPlaying
	ScenarioSuspended
	ScenarioDone
	ScenarioCancelled
)

// String returns a human-readable representation of the state.
func (s ScenarioState) String() string {
	switch s {
	case ScenarioIdle:
		return "idle"
	case ScenarioPlaying:
		return "playing"
	case ScenarioSuspended:
		return "suspended"
	case ScenarioDone:
		return "done"
	case ScenarioCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("ScenarioState(%d)", int(s))
	}
}

// ScenarioStateChange describes one scenario state transition.
type ScenarioStateChange struct {
	Old ScenarioState
	New ScenarioState
}

type scenarioKind int

const (
	kindParallel scenarioKind = iota
	kindSequence
	kindRendezvous
)

// Scenario runs a group of actors, starting each one once the actors it
// depends on are done. A sequence chains every actor to the previous one, a
// rendezvous sequence gates whole phases, and a parallel scenario starts
// everything at once.
//
// Scenarios share the threading rules of timelines: use them on the
// scheduler goroutine or before the scheduler starts.
type Scenario struct {
	sched *Scheduler
	name  string
	kind  scenarioKind

	nodes   []*actorNode
	byActor map[Actor]*actorNode
	barrier []*actorNode // previous phase, rendezvous only
	phase   []*actorNode // open phase, rendezvous only

	state      ScenarioState
	err        error
	registered bool // guarded by sched.mu

	listeners listenerList[func(ScenarioStateChange)]
	failures  listenerList[func(error)]
}

type actorNode struct {
	actor   Actor
	deps    []*actorNode
	started bool
}

func (n *actorNode) finished() bool {
	return n.started && n.actor.IsDone()
}

func (n *actorNode) ready() bool {
	for _, d := range n.deps {
		if !d.finished() {
			return false
		}
	}
	return true
}

// NewSequence returns a scenario that runs its actors one after another in
// insertion order.
func (s *Scheduler) NewSequence() *Scenario {
	return s.newScenario(kindSequence, "sequence")
}

// NewRendezvousSequence returns a scenario whose actors run in phases closed
// by Rendezvous. Actors within a phase run in parallel.
func (s *Scheduler) NewRendezvousSequence() *Scenario {
	return s.newScenario(kindRendezvous, "rendezvous")
}

// NewParallel returns a scenario that starts every actor at once.
func (s *Scheduler) NewParallel() *Scenario {
	return s.newScenario(kindParallel, "parallel")
}

func (s *Scheduler) newScenario(kind scenarioKind, prefix string) *Scenario {
	return &Scenario{
		sched:   s,
		name:    fmt.Sprintf("%s-%d", prefix, s.nextID.Add(1)),
		kind:    kind,
		byActor: make(map[Actor]*actorNode),
	}
}

// Name returns the scenario name.
func (sc *Scenario) Name() string { return sc.name }

// SetName sets the name used in logs and errors.
func (sc *Scenario) SetName(name string) { sc.name = name }

// State returns the current state.
func (sc *Scenario) State() ScenarioState { return sc.state }

// Err returns the failure that cancelled the scenario, if any.
func (sc *Scenario) Err() error { return sc.err }

// Len returns the number of actors.
func (sc *Scenario) Len() int { return len(sc.nodes) }

// AddActor appends an actor.
func (sc *Scenario) AddActor(a Actor) error {
	if sc.state != ScenarioIdle {
		return ErrScenarioStarted
	}
	if a == nil {
		return ErrUnknownActor
	}
	if _, ok := sc.byActor[a]; ok {
		return ErrDuplicateActor
	}
	if r, ok := a.(*RunnableActor); ok && r.handler == nil {
		r.handler = sc.sched.handler
	}
	n := &actorNode{actor: a}
	switch sc.kind {
	case kindSequence:
		if len(sc.nodes) > 0 {
			n.deps = []*actorNode{sc.nodes[len(sc.nodes)-1]}
		}
	case kindRendezvous:
		n.deps = slices.Clone(sc.barrier)
		sc.phase = append(sc.phase, n)
	}
	sc.nodes = append(sc.nodes, n)
	sc.byActor[a] = n
	return nil
}

// Rendezvous closes the current phase: actors added afterwards start only
// when every actor of the closed phase is done. Closing an empty phase has
// no effect.
func (sc *Scenario) Rendezvous() error {
	if sc.kind != kindRendezvous {
		return ErrNotRendezvous
	}
	if sc.state != ScenarioIdle {
		return ErrScenarioStarted
	}
	if len(sc.phase) > 0 {
		sc.barrier = sc.phase
		sc.phase = nil
	}
	return nil
}

// AddDependency makes actor wait for every actor in waitFor. All actors must
// already be part of the scenario.
func (sc *Scenario) AddDependency(actor Actor, waitFor ...Actor) error {
	if sc.state != ScenarioIdle {
		return ErrScenarioStarted
	}
	n, ok := sc.byActor[actor]
	if !ok {
		return ErrUnknownActor
	}
	for _, w := range waitFor {
		dep, ok := sc.byActor[w]
		if !ok {
			return ErrUnknownActor
		}
		if !slices.Contains(n.deps, dep) {
			n.deps = append(n.deps, dep)
		}
	}
	return nil
}

// OnStateChange registers fn for state transitions.
func (sc *Scenario) OnStateChange(fn func(ScenarioStateChange)) func() {
	return sc.listeners.add(fn)
}

// OnFailure registers fn for failures that cancel the scenario.
func (sc *Scenario) OnFailure(fn func(error)) func() {
	return sc.failures.add(fn)
}

// Play starts every actor without dependencies before returning. The rest
// start on later pulses as their dependencies finish.
func (sc *Scenario) Play() error {
	if sc.sched == nil {
		return ErrNoScheduler
	}
	if sc.state != ScenarioIdle {
		return ErrScenarioStarted
	}
	if sc.hasCycle() {
		return &graniteerrors.EngineError{Op: "timeline.Scenario.Play", Kind: graniteerrors.KindConfig, Subject: sc.name, Err: ErrDependencyCycle}
	}
	if err := sc.sched.scheduleScenario(sc); err != nil {
		return err
	}
	sc.setState(ScenarioPlaying)
	sc.advance()
	return nil
}

// Cancel stops the scenario. Running actors that implement Canceler are
// cancelled; actors that never started stay untouched.
func (sc *Scenario) Cancel() {
	if sc.state != ScenarioPlaying && sc.state != ScenarioSuspended {
		return
	}
	sc.setState(ScenarioCancelled)
	for _, n := range sc.nodes {
		if n.started && !n.actor.IsDone() {
			if c, ok := n.actor.(Canceler); ok {
				c.Cancel()
			}
		}
	}
}

// Suspend pauses the scenario and every running actor that implements
// Suspender.
func (sc *Scenario) Suspend() {
	if sc.state != ScenarioPlaying {
		return
	}
	sc.setState(ScenarioSuspended)
	for _, n := range sc.running() {
		if s, ok := n.actor.(Suspender); ok {
			s.Suspend()
		}
	}
}

// Resume continues a suspended scenario.
func (sc *Scenario) Resume() {
	if sc.state != ScenarioSuspended {
		return
	}
	for _, n := range sc.running() {
		if s, ok := n.actor.(Suspender); ok {
			s.Resume()
		}
	}
	sc.setState(ScenarioPlaying)
	sc.sched.signal()
}

// IsDone reports whether the scenario finished or was cancelled.
func (sc *Scenario) IsDone() bool {
	return sc.state == ScenarioDone || sc.state == ScenarioCancelled
}

// SupportsReplay reports whether every actor supports replay.
func (sc *Scenario) SupportsReplay() bool {
	for _, n := range sc.nodes {
		if !n.actor.SupportsReplay() {
			return false
		}
	}
	return true
}

// ResetDoneFlag rearms a finished scenario and all of its actors.
func (sc *Scenario) ResetDoneFlag() error {
	if sc.state == ScenarioPlaying || sc.state == ScenarioSuspended {
		return ErrScenarioStarted
	}
	if !sc.SupportsReplay() {
		return &graniteerrors.EngineError{Op: "timeline.Scenario.ResetDoneFlag", Kind: graniteerrors.KindUnsupported, Subject: sc.name, Err: ErrReplayUnsupported}
	}
	for _, n := range sc.nodes {
		if err := n.actor.ResetDoneFlag(); err != nil {
			return err
		}
		n.started = false
	}
	sc.err = nil
	sc.setState(ScenarioIdle)
	return nil
}

func (sc *Scenario) running() []*actorNode {
	var nodes []*actorNode
	for _, n := range sc.nodes {
		if n.started && !n.actor.IsDone() {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// advance starts every actor whose dependencies are done, repeating until
// nothing new can start, and finishes the scenario once all actors are done.
func (sc *Scenario) advance() {
	if sc.state != ScenarioPlaying {
		return
	}
	for progressed := true; progressed; {
		progressed = false
		for _, n := range sc.nodes {
			if n.started || !n.ready() {
				continue
			}
			n.started = true
			progressed = true
			if err := sc.start(n); err != nil {
				kind := graniteerrors.KindConfig
				var panicErr *graniteerrors.PanicError
				if errors.As(err, &panicErr) {
					kind = graniteerrors.KindPanic
				}
				sc.fail(kind, err)
				return
			}
			if sc.state != ScenarioPlaying {
				return
			}
		}
	}
	for _, n := range sc.nodes {
		if !n.finished() {
			return
		}
	}
	sc.setState(ScenarioDone)
}

func (sc *Scenario) start(n *actorNode) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = graniteerrors.NewPanicError("timeline.Scenario.start", r)
		}
	}()
	return n.actor.Play()
}

func (sc *Scenario) hasCycle() bool {
	const (
		unvisited = iota
		visiting
		visited
	)
	marks := make(map[*actorNode]int, len(sc.nodes))
	var visit func(n *actorNode) bool
	visit = func(n *actorNode) bool {
		switch marks[n] {
		case visiting:
			return true
		case visited:
			return false
		}
		marks[n] = visiting
		for _, d := range n.deps {
			if visit(d) {
				return true
			}
		}
		marks[n] = visited
		return false
	}
	for _, n := range sc.nodes {
		if visit(n) {
			return true
		}
	}
	return false
}

func (sc *Scenario) setState(s ScenarioState) {
	old := sc.state
	if old == s {
		return
	}
	sc.state = s
	change := ScenarioStateChange{Old: old, New: s}
	for _, fn := range sc.listeners.snapshot() {
		sc.sched.runGuarded("timeline.Scenario.OnStateChange", func() { fn(change) })
	}
}

// fail records err, cancels the scenario and reports the failure.
func (sc *Scenario) fail(kind graniteerrors.ErrorKind, err error) {
	var engineErr *graniteerrors.EngineError
	if !errors.As(err, &engineErr) {
		engineErr = &graniteerrors.EngineError{Op: "timeline.Scenario", Kind: kind, Subject: sc.name, Err: err}
	}
	sc.err = engineErr
	sc.Cancel()
	for _, fn := range sc.failures.snapshot() {
		sc.sched.runGuarded("timeline.Scenario.OnFailure", func() { fn(engineErr) })
	}
	sc.sched.reportError(engineErr)
}
