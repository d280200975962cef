package testing

import (
	"errors"
	"time"
)

// FrameDuration is the fake time that passes between two pumped pulses.
const FrameDuration = 16 * time.Millisecond

// ErrSettleTimeout is returned when PumpAndSettle exceeds its timeout.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: scheduler did not settle")

// Pumper is a scheduler that can be pulsed by hand. *timeline.Scheduler
// satisfies it.
type Pumper interface {
	Pulse()
	Idle() bool
}

// Pump advances the clock by d and runs one pulse.
func Pump(p Pumper, clk *FakeClock, d time.Duration) {
	clk.Advance(d)
	p.Pulse()
}

// PumpFor runs pulses every FrameDuration until total fake time has passed.
// The last step is shortened so that exactly total elapses.
func PumpFor(p Pumper, clk *FakeClock, total time.Duration) {
	for total > 0 {
		step := min(FrameDuration, total)
		Pump(p, clk, step)
		total -= step
	}
}

// PumpAndSettle runs pulses until the scheduler is idle or the timeout is
// reached. Each pulse advances the fake clock by FrameDuration.
// Returns ErrSettleTimeout if the scheduler does not settle within timeout.
func PumpAndSettle(p Pumper, clk *FakeClock, timeout time.Duration) error {
	p.Pulse()
	var elapsed time.Duration
	for elapsed < timeout {
		if p.Idle() {
			return nil
		}
		Pump(p, clk, FrameDuration)
		elapsed += FrameDuration
	}
	if p.Idle() {
		return nil
	}
	return ErrSettleTimeout
}
