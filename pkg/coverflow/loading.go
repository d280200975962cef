package coverflow

import (
	"time"

	"github.com/go-drift/granite/pkg/timeline"
)

// Loading indicator defaults.
const (
	DefaultLoadingFade = 500 * time.Millisecond
	DefaultLoadingLoop = 750 * time.Millisecond
)

// LoadingIndicator is a looping progress marker that fades in while the
// browser loads and fades out afterwards.
type LoadingIndicator struct {
	FadeDuration time.Duration
	LoopDuration time.Duration

	container *Container
	fade      *timeline.Timeline
	loop      *timeline.Timeline

	loading  bool
	visible  bool
	alpha    int
	position float64
}

// Attach creates the fade and loop timelines.
func (l *LoadingIndicator) Attach(c *Container) error {
	fadeDuration := l.FadeDuration
	if fadeDuration <= 0 {
		fadeDuration = DefaultLoadingFade
	}
	loopDuration := l.LoopDuration
	if loopDuration <= 0 {
		loopDuration = DefaultLoadingLoop
	}
	l.container = c

	l.fade = c.sched.NewTimeline(c)
	l.fade.SetName("loading-fade")
	l.fade.SetDuration(fadeDuration)
	if err := l.fade.AddInt("alpha", 0, 255, func(a int) { l.alpha = a }); err != nil {
		return err
	}
	l.fade.AddCallback(timeline.RepaintCallback(c))
	l.fade.OnStateChange(func(change timeline.StateChange) {
		if change.New == timeline.StateDone && !l.loading {
			l.loop.Cancel()
			l.visible = false
			c.Repaint()
		}
	})

	l.loop = c.sched.NewTimeline(c)
	l.loop.SetName("loading-loop")
	l.loop.SetDuration(loopDuration)
	if err := l.loop.AddFloat("position", 0, 1, func(p float64) { l.position = p }); err != nil {
		return err
	}
	l.loop.AddCallback(timeline.RepaintCallback(c))
	return nil
}

// SetLoading shows or hides the indicator.
func (l *LoadingIndicator) SetLoading(loading bool) error {
	if l.container == nil {
		return ErrNotAttached
	}
	l.loading = loading
	if !loading {
		if !l.visible {
			return nil
		}
		return l.fade.PlayReverse()
	}

	l.visible = true
	if l.fade.State().IsActive() || l.fade.DurationFraction() < 1 {
		if err := l.fade.Play(); err != nil {
			return err
		}
	}
	if l.loop.State().IsActive() {
		return nil
	}
	return l.loop.PlayLoop(timeline.RepeatLoop)
}

func (l *LoadingIndicator) stop() {
	l.loading = false
	l.visible = false
	l.fade.Cancel()
	l.loop.Cancel()
}

// Loading reports the last value passed to SetLoading.
func (l *LoadingIndicator) Loading() bool { return l.loading }

// Visible reports whether the indicator is drawn.
func (l *LoadingIndicator) Visible() bool { return l.visible }

// Alpha returns the indicator opacity in [0, 255].
func (l *LoadingIndicator) Alpha() int { return l.alpha }

// Position returns the progress marker position in [0, 1].
func (l *LoadingIndicator) Position() float64 { return l.position }

// LoopTimeline returns the looping position timeline.
func (l *LoadingIndicator) LoopTimeline() *timeline.Timeline { return l.loop }
