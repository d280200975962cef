package coverflow

import (
	"errors"
	"testing"

	"github.com/go-drift/granite/pkg/timeline"
)

func TestContainer_SetAlphaClamps(t *testing.T) {
	h := newHarness(t, nil)
	c := h.container

	tests := []struct {
		in, want int
	}{
		{-10, 0},
		{0, 0},
		{128, 128},
		{255, 255},
		{300, 255},
	}
	for _, tt := range tests {
		c.SetAlpha(tt.in)
		if got := c.Alpha(); got != tt.want {
			t.Errorf("SetAlpha(%d): Alpha() = %d, want %d", tt.in, got, tt.want)
		}
	}
	if h.repainter.n != len(tests) {
		t.Errorf("repaints = %d, want %d", h.repainter.n, len(tests))
	}
}

func TestContainer_AttachAfterDispose(t *testing.T) {
	h := newHarness(t, nil)
	h.container.Dispose()
	if err := h.container.Attach(&FadeIn{}); !errors.Is(err, ErrDisposed) {
		t.Errorf("Attach() = %v, want ErrDisposed", err)
	}
	if len(h.container.Behaviors()) != 0 {
		t.Error("a rejected behavior was kept")
	}
}

func TestFadeIn(t *testing.T) {
	h := newHarness(t, nil)
	fade := &FadeIn{}
	if err := h.container.Attach(fade); err != nil {
		t.Fatal(err)
	}
	if got := h.container.Alpha(); got != 0 {
		t.Fatalf("Alpha() after Attach = %d, want 0", got)
	}

	h.pump(0, 500*ms)
	if got := h.container.Alpha(); got != 128 {
		t.Errorf("Alpha() halfway = %d, want 128", got)
	}
	h.pump(500 * ms)
	if got := h.container.Alpha(); got != 255 {
		t.Errorf("Alpha() at the end = %d, want 255", got)
	}
	if fade.Timeline().State() != timeline.StateDone {
		t.Errorf("fade state = %v, want done", fade.Timeline().State())
	}
	if h.repainter.n == 0 {
		t.Error("fade never asked for a repaint")
	}
}

func TestFadeIn_DisposedContainerCancels(t *testing.T) {
	h := newHarness(t, nil)
	fade := &FadeIn{}
	h.container.Attach(fade)
	h.pump(0, 100*ms)

	h.container.Dispose()
	h.pump(16 * ms)

	tl := fade.Timeline()
	if tl.State() != timeline.StateCancelled {
		t.Errorf("fade state = %v, want cancelled", tl.State())
	}
	if !errors.Is(tl.Err(), timeline.ErrTargetDisposed) {
		t.Errorf("fade Err() = %v, want ErrTargetDisposed", tl.Err())
	}
	if got := h.handler.errorCount(); got != 1 {
		t.Errorf("handler saw %d errors, want 1", got)
	}
}

type fader struct{ alpha int }

func (f *fader) Alpha() int         { return f.alpha }
func (f *fader) SetAlpha(alpha int) { f.alpha = alpha }

func TestFadeOutAndDispose(t *testing.T) {
	h := newHarness(t, nil)
	f := &fader{alpha: 200}
	disposed := 0
	tl, err := FadeOutAndDispose(h.sched, f, 200*ms, func() { disposed++ })
	if err != nil {
		t.Fatal(err)
	}

	h.pump(100 * ms)
	if f.alpha != 100 || disposed != 0 {
		t.Errorf("halfway: alpha = %d, disposed = %d", f.alpha, disposed)
	}
	h.pump(100 * ms)
	if f.alpha != 0 || disposed != 1 {
		t.Errorf("end: alpha = %d, disposed = %d", f.alpha, disposed)
	}
	if tl.State() != timeline.StateDone {
		t.Errorf("state = %v, want done", tl.State())
	}
}

func TestFadeOutAndDispose_Cancelled(t *testing.T) {
	h := newHarness(t, nil)
	f := &fader{alpha: 255}
	disposed := 0
	tl, _ := FadeOutAndDispose(h.sched, f, 200*ms, func() { disposed++ })
	h.pump(50 * ms)
	tl.Cancel()
	if disposed != 1 {
		t.Errorf("disposed = %d after Cancel, want 1", disposed)
	}
}

func TestFadeOutAndDispose_ZeroDuration(t *testing.T) {
	h := newHarness(t, nil)
	if _, err := FadeOutAndDispose(h.sched, &fader{}, 0, nil); !errors.Is(err, timeline.ErrZeroDuration) {
		t.Errorf("FadeOutAndDispose(0) = %v, want ErrZeroDuration", err)
	}
}
