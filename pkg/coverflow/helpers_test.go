package coverflow

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-drift/granite/pkg/artwork"
	graniteerrors "github.com/go-drift/granite/pkg/errors"
	granitetest "github.com/go-drift/granite/pkg/testing"
	"github.com/go-drift/granite/pkg/timeline"
)

const ms = time.Millisecond

type syncExecutor struct{}

func (syncExecutor) Go(fn func()) { fn() }

type recordingHandler struct {
	mu     sync.Mutex
	errors []*graniteerrors.EngineError
	panics []*graniteerrors.PanicError
}

func (h *recordingHandler) HandleError(err *graniteerrors.EngineError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, err)
}

func (h *recordingHandler) HandlePanic(err *graniteerrors.PanicError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panics = append(h.panics, err)
}

func (h *recordingHandler) errorCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.errors)
}

type countingRepainter struct{ n int }

func (r *countingRepainter) Repaint() { r.n++ }

type harness struct {
	sched     *timeline.Scheduler
	clock     *granitetest.FakeClock
	handler   *recordingHandler
	repainter *countingRepainter
	container *Container
}

func newHarness(t *testing.T, exec timeline.Executor) *harness {
	t.Helper()
	if exec == nil {
		exec = syncExecutor{}
	}
	clk := granitetest.NewFakeClock()
	handler := &recordingHandler{}
	logger := slog.New(slog.DiscardHandler)
	s := timeline.New(timeline.Config{
		Clock:        clk,
		Executor:     exec,
		Logger:       logger,
		ErrorHandler: handler,
	})
	t.Cleanup(func() { s.Stop() })
	r := &countingRepainter{}
	return &harness{
		sched:     s,
		clock:     clk,
		handler:   handler,
		repainter: r,
		container: NewContainer(s, r, logger),
	}
}

func (h *harness) pump(steps ...time.Duration) {
	for _, d := range steps {
		granitetest.Pump(h.sched, h.clock, d)
	}
}

func (h *harness) settle(t *testing.T) {
	t.Helper()
	if err := granitetest.PumpAndSettle(h.sched, h.clock, 10*time.Second); err != nil {
		t.Fatal(err)
	}
}

// newLibrary writes three sample covers and one undecodable file.
func newLibrary(t *testing.T) *artwork.DirSource {
	t.Helper()
	dir := t.TempDir()
	if _, err := artwork.WriteSamples(dir, 3); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Broken.png"), []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	return artwork.NewDirSource(dir)
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}
