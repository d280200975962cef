package coverflow

import (
	"time"

	"github.com/go-drift/granite/pkg/timeline"
)

// DefaultFadeIn is the fade-in duration used when FadeIn.Duration is zero.
const DefaultFadeIn = time.Second

// FadeIn fades the container from transparent to opaque when attached.
type FadeIn struct {
	Duration time.Duration

	tl *timeline.Timeline
}

// Attach starts the fade.
func (f *FadeIn) Attach(c *Container) error {
	d := f.Duration
	if d <= 0 {
		d = DefaultFadeIn
	}
	f.tl = c.sched.NewTimeline(c)
	f.tl.SetName("container-fade-in")
	f.tl.SetDuration(d)
	if err := f.tl.AddInt("alpha", 0, 255, c.SetAlpha); err != nil {
		return err
	}
	c.SetAlpha(0)
	return f.tl.Play()
}

// Timeline returns the fade timeline, nil before Attach.
func (f *FadeIn) Timeline() *timeline.Timeline { return f.tl }

// FadeOutAndDispose fades target to transparent over d and calls dispose
// once the fade ends, whether it finished or was cancelled.
func FadeOutAndDispose(sched *timeline.Scheduler, target Fader, d time.Duration, dispose func()) (*timeline.Timeline, error) {
	tl := sched.NewTimeline(target)
	tl.SetName("fade-out")
	if err := tl.SetDuration(d); err != nil {
		return nil, err
	}
	if err := tl.AddInt("alpha", target.Alpha(), 0, target.SetAlpha); err != nil {
		return nil, err
	}
	tl.OnStateChange(func(change timeline.StateChange) {
		if change.New.IsTerminal() && dispose != nil {
			dispose()
		}
	})
	return tl, tl.Play()
}
