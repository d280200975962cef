package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
)

// handlerBox lets a Handler interface live in an atomic.Pointer.
type handlerBox struct{ h Handler }

var current atomic.Pointer[handlerBox]

func init() {
	current.Store(&handlerBox{h: &LogHandler{}})
}

// SetHandler installs h as the global handler and returns the previous one.
// Nil restores a LogHandler on slog.Default.
func SetHandler(h Handler) Handler {
	if h == nil {
		h = &LogHandler{}
	}
	return current.Swap(&handlerBox{h: h}).h
}

// CurrentHandler returns the global handler.
func CurrentHandler() Handler {
	return current.Load().h
}

// Report sends err to the global handler.
func Report(err *EngineError) {
	ReportTo(nil, err)
}

// ReportTo sends err to h, or to the global handler when h is nil. A zero
// Timestamp is set to now.
func ReportTo(h Handler, err *EngineError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if h == nil {
		h = CurrentHandler()
	}
	h.HandleError(err)
}

// ReportPanic sends err to the global handler.
func ReportPanic(err *PanicError) {
	ReportPanicTo(nil, err)
}

// ReportPanicTo sends err to h, or to the global handler when h is nil.
func ReportPanicTo(h Handler, err *PanicError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if h == nil {
		h = CurrentHandler()
	}
	h.HandlePanic(err)
}

// Recover reports a panic of the surrounding function to the global handler.
// It must be deferred directly:
//
//	defer errors.Recover("timeline.Runnable")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(NewPanicError(op, r))
	}
}

// NewPanicError wraps a recovered value with the current stack.
func NewPanicError(op string, r any) *PanicError {
	return &PanicError{
		Op:         op,
		Value:      r,
		StackTrace: captureStack(4),
		Timestamp:  time.Now(),
	}
}

// CaptureStack returns the stack of its caller, one function and position
// per frame.
func CaptureStack() string {
	return captureStack(3)
}

func captureStack(skip int) string {
	pcs := make([]uintptr, 32)
	pcs = pcs[:runtime.Callers(skip, pcs)]
	if len(pcs) == 0 {
		return ""
	}
	var sb strings.Builder
	frames := runtime.CallersFrames(pcs)
	for {
		f, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		if !more {
			return sb.String()
		}
	}
}
