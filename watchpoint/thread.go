package watchpoint

import "github.com/jtolds/gls"

type threadKind struct{}

var (
	threads              = gls.NewContextManager()
	compilationThreadKey = threadKind{}
)

// IsCompilationThread reports whether the calling goroutine runs inside
// RunOnCompilationThread or was started by GoCompilationThread.
func IsCompilationThread() bool {
	v, ok := threads.GetValue(compilationThreadKey)
	if !ok {
		return false
	}
	is, _ := v.(bool)
	return is
}

// RunOnCompilationThread runs fn on the calling goroutine tagged as a
// compilation thread.
func RunOnCompilationThread(fn func()) {
	threads.SetValues(gls.Values{compilationThreadKey: true}, fn)
}

// GoCompilationThread starts fn on a new goroutine tagged as a compilation
// thread. Goroutines it spawns through gls.Go inherit the tag.
func GoCompilationThread(fn func()) {
	gls.Go(func() {
		RunOnCompilationThread(fn)
	})
}
