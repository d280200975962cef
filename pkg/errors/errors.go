// Package errors provides structured error reporting for the granite
// animation engine.
//
// Errors raised inside the scheduler's pulse loop are never returned to the
// caller that started the animation; they are wrapped in an [EngineError] or
// [PanicError] and sent to a [Handler] instead.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindConfig indicates a programmer error, such as playing a timeline
	// with zero duration.
	KindConfig
	// KindUnsupported indicates an operation the receiver does not support,
	// such as replaying a background job actor.
	KindUnsupported
	// KindTarget indicates the animated target became invalid mid-flight.
	KindTarget
	// KindCallback indicates a failing timeline or scenario callback.
	KindCallback
	// KindJob indicates a failed background job.
	KindJob
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindUnsupported:
		return "unsupported"
	case KindTarget:
		return "target"
	case KindCallback:
		return "callback"
	case KindJob:
		return "job"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// EngineError represents a structured error in the animation engine.
type EngineError struct {
	// Op is the operation that failed (e.g., "timeline.Pulse").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Subject names the timeline, scenario or actor involved, if any.
	Subject string
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *EngineError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s [%s] subject=%s: %v", e.Op, e.Kind, e.Subject, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "timeline.Pulse").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Handler receives errors reported by the engine.
type Handler interface {
	// HandleError is called when an error occurs.
	HandleError(err *EngineError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
