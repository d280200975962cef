package timeline

// Callback observes a timeline. Both methods run on the scheduler goroutine.
type Callback interface {
	// OnStateChanged is called after every state transition.
	OnStateChanged(tl *Timeline, change StateChange)
	// OnPulse is called after the properties were applied.
	OnPulse(tl *Timeline, durationFraction, easedFraction float64)
}

// CallbackAdapter implements Callback with optional functions.
type CallbackAdapter struct {
	StateChanged func(tl *Timeline, change StateChange)
	Pulse        func(tl *Timeline, durationFraction, easedFraction float64)
}

// OnStateChanged calls StateChanged if set.
func (a CallbackAdapter) OnStateChanged(tl *Timeline, change StateChange) {
	if a.StateChanged != nil {
		a.StateChanged(tl, change)
	}
}

// OnPulse calls Pulse if set.
func (a CallbackAdapter) OnPulse(tl *Timeline, durationFraction, easedFraction float64) {
	if a.Pulse != nil {
		a.Pulse(tl, durationFraction, easedFraction)
	}
}

// RepaintCallback returns a callback that requests a repaint from r after
// every pulse and state change.
func RepaintCallback(r Repainter) Callback {
	return CallbackAdapter{
		StateChanged: func(*Timeline, StateChange) { r.Repaint() },
		Pulse:        func(*Timeline, float64, float64) { r.Repaint() },
	}
}
