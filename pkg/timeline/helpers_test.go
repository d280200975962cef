package timeline

import (
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	graniteerrors "github.com/go-drift/granite/pkg/errors"
	granitetest "github.com/go-drift/granite/pkg/testing"
)

// syncExecutor runs jobs inline so job actors finish inside Play.
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

func (h *recordingHandler) counts() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.errors), len(h.panics)
}

type harness struct {
	sched   *Scheduler
	clock   *granitetest.FakeClock
	handler *recordingHandler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clk := granitetest.NewFakeClock()
	h := &recordingHandler{}
	s := New(Config{
		Clock:        clk,
		Executor:     syncExecutor{},
		Logger:       slog.New(slog.DiscardHandler),
		ErrorHandler: h,
	})
	t.Cleanup(func() { s.Stop() })
	return &harness{sched: s, clock: clk, handler: h}
}

// pump advances the fake clock by each step in turn, pulsing after each.
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

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// recordStates returns a pointer to the list of states tl enters.
func recordStates(tl *Timeline) *[]State {
	var states []State
	tl.OnStateChange(func(c StateChange) {
		states = append(states, c.New)
	})
	return &states
}

const ms = time.Millisecond
