package watchpoint

import (
	"fmt"
	"runtime"
)

// AssertionError is the panic value for a broken usage contract: mutating
// from a compilation thread, firing a set that is not watched, registering
// into an invalidated set and the like. These are caller bugs and are never
// returned as errors.
type AssertionError struct {
	Message string
	Stack   []byte
}

func (e *AssertionError) Error() string {
	return "watchpoint: assertion failed: " + e.Message
}

func assertf(format string, args ...any) *AssertionError {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return &AssertionError{
		Message: fmt.Sprintf(format, args...),
		Stack:   buf[:n],
	}
}

func assertNotCompilationThread(op string) {
	if IsCompilationThread() {
		panic(assertf("%s called on a compilation thread", op))
	}
}
