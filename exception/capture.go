package exception

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/samber/lo"
)

const (
	maxDepth = 64

	// PanicKind is the kind used for recovered panic values that are not errors
	PanicKind = "panic"
)

// Capture snapshots err together with the stack of the caller of Capture.
func Capture(err error) *CapturedError {
	return CaptureSkip(err, 1)
}

// CaptureSkip is like Capture but skips the given number of additional
// frames above its caller.
func CaptureSkip(err error, skip int) *CapturedError {
	if err == nil {
		return nil
	}
	return newCaptured(KindOf(err), err.Error(), callers(skip+1))
}

// FromPanic snapshots a value returned by recover(). skip counts frames
// above the caller of FromPanic.
func FromPanic(recovered any, skip int) *CapturedError {
	if recovered == nil {
		return nil
	}
	if err, ok := recovered.(error); ok {
		return newCaptured(KindOf(err), err.Error(), callers(skip+1))
	}
	return newCaptured(PanicKind, fmt.Sprint(recovered), callers(skip+1))
}

// KindOf returns the kind identifier of err: the value of Kind() when some
// error in the chain implements Kinder, otherwise the dynamic type name of the
// first error in the chain that is not a plain fmt wrapper.
func KindOf(err error) string {
	var k Kinder
	if errors.As(err, &k) && k.Kind() != "" {
		return k.Kind()
	}
	for err != nil {
		name := typeName(err)
		if name != "fmt.wrapError" && name != "fmt.wrapErrors" {
			return name
		}
		next := errors.Unwrap(err)
		if next == nil {
			// wrapErrors has no single cause
			return name
		}
		err = next
	}
	return ""
}

func typeName(v any) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", v), "*")
}

func newCaptured(kind, message string, frames []StackFrame) *CapturedError {
	captured := &CapturedError{
		Kind:    kind,
		Message: message,
		File:    "unknown",
		Frames:  frames,
	}
	if len(frames) > 0 {
		captured.File = frames[0].File
		captured.Line = frames[0].Line
	}
	return captured
}

// callers returns the stack starting at the caller of callers' caller when
// skip is 0. Frames inside the Go runtime are dropped.
func callers(skip int) []StackFrame {
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	var frames []StackFrame
	iter := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := iter.Next()
		frames = append(frames, StackFrame{
			File:     frame.File,
			Line:     frame.Line,
			Function: frame.Function,
		})
		if !more {
			break
		}
	}

	return lo.Filter(frames, func(frame StackFrame, _ int) bool {
		return !strings.HasPrefix(frame.Function, "runtime.")
	})
}
