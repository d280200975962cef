package animation

import "time"

// Clock provides time for animations. Schedulers take a Clock so tests can
// inject a fake one and control timing deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock uses system time.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }
