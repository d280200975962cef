package timeline

import "fmt"

// State is the lifecycle state of a Timeline.
//
//	         Play()            first pulse
//	Idle ───────────► Ready ──────────────► PlayingForward ──► Done
//	  │                 ▲                     ▲        │
//	  │ PlayReverse()   │                     │ REVERSE│ repeat
//	  └─────────────────┘                     │        ▼
//	                                        PlayingReverse ──► Done
//
// Any active state moves to Cancelled on Cancel, and Suspend/Resume park a
// playing timeline in Suspended without losing its position.
type State int

const (
	// StateIdle is a timeline that has not been played.
	StateIdle State = iota
	// StateReady is a played timeline waiting for its first pulse or for its
	// initial delay to elapse.
	StateReady
	// StatePlayingForward is a timeline moving toward fraction 1.
	StatePlayingForward
	// StatePlayingReverse is a timeline moving toward fraction 0.
	StatePlayingReverse
	// StateSuspended is a playing timeline paused by Suspend.
	StateSuspended
	// StateCancelled is a timeline stopped by Cancel, Abort or a failure.
	StateCancelled
	// StateDone is a timeline that reached the end of its last cycle.
	StateDone
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StatePlayingForward:
		return "playing_forward"
	case StatePlayingReverse:
		return "playing_reverse"
	case StateSuspended:
		return "suspended"
	case StateCancelled:
		return "cancelled"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// IsActive reports whether the state is registered with a scheduler.
func (s State) IsActive() bool {
	switch s {
	case StateReady, StatePlayingForward, StatePlayingReverse, StateSuspended:
		return true
	}
	return false
}

// IsTerminal reports whether the state ends a run.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateCancelled
}

// RepeatBehavior controls what happens when a cycle ends.
type RepeatBehavior int

const (
	// RepeatNone ends the timeline after one cycle.
	RepeatNone RepeatBehavior = iota
	// RepeatLoop restarts every cycle from fraction 0.
	RepeatLoop
	// RepeatReverse alternates direction every cycle.
	RepeatReverse
)

// String returns a human-readable representation of the repeat behavior.
func (r RepeatBehavior) String() string {
	switch r {
	case RepeatNone:
		return "none"
	case RepeatLoop:
		return "loop"
	case RepeatReverse:
		return "reverse"
	default:
		return fmt.Sprintf("RepeatBehavior(%d)", int(r))
	}
}

// StateChange describes one timeline state transition.
type StateChange struct {
	Old              State
	New              State
	DurationFraction float64
	EasedFraction    float64
}
