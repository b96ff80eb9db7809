package watchpoint_test

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/delaneyj/watchparty/watchpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// should never report valid again once invalidated
func TestSetInvalidationIsMonotonic(t *testing.T) {
	rec := &recorder{}
	s := watchpoint.NewSet(watchpoint.InitializedBlind)
	assert.Equal(t, watchpoint.Unwatched, s.State())

	s.Add(rec.watchpoint("a"))
	assert.Equal(t, watchpoint.Watched, s.State())
	s.NotifyWrite(watchpoint.Reason("first write"))
	require.True(t, s.IsInvalidated())

	s.Touch()
	s.Invalidate(watchpoint.Reason("again"))
	s.Add(nil)
	for i := 0; i < 3; i++ {
		assert.True(t, s.IsInvalidated())
		assert.False(t, s.IsWatched())
		assert.False(t, s.IsStillValid())
		assert.Equal(t, watchpoint.Invalidated, s.State())
	}
}

// should fire every registered watchpoint exactly once and drain the set
func TestSetFiresEachWatchpointOnce(t *testing.T) {
	rec := &recorder{}
	s := watchpoint.NewSet(watchpoint.InitializedBlind)

	const n = 16
	wps := make([]*watchpoint.Watchpoint, n)
	for i := range wps {
		wps[i] = rec.watchpoint(fmt.Sprintf("w%d", i))
		s.Add(wps[i])
	}
	assert.Equal(t, n, s.Len())
	assert.True(t, s.IsWatched())

	s.NotifyWrite(watchpoint.Reason("property replaced"))

	assert.Len(t, rec.fired, n)
	for i, wp := range wps {
		assert.Equal(t, 1, rec.count(fmt.Sprintf("w%d", i)))
		assert.False(t, wp.IsRegistered())
	}
	for _, d := range rec.details {
		assert.Equal(t, "property replaced", d)
	}
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.IsWatched())
	assert.True(t, s.IsInvalidated())
}

// should fire in registration order even after the arena was compacted
func TestSetFiresInRegistrationOrderAfterCompaction(t *testing.T) {
	rec := &recorder{}
	s := watchpoint.NewSet(watchpoint.InitializedBlind)

	var want []string
	wps := make([]*watchpoint.Watchpoint, 40)
	for i := range wps {
		name := fmt.Sprintf("w%02d", i)
		wps[i] = rec.watchpoint(name)
		s.Add(wps[i])
		if i%4 == 0 {
			want = append(want, name)
		}
	}
	for i, wp := range wps {
		if i%4 != 0 {
			wp.Remove()
			assert.False(t, wp.IsRegistered())
		}
	}
	assert.Equal(t, len(want), s.Len())

	late := rec.watchpoint("late")
	s.Add(late)
	want = append(want, "late")

	s.NotifyWrite(nil)
	assert.Equal(t, want, rec.fired)
	assert.Equal(t, "unspecified", rec.details[0])
}

// should unlink but never fire watchpoints when the set is destroyed
func TestSetDestroyDoesNotFire(t *testing.T) {
	rec := &recorder{}
	s := watchpoint.NewSet(watchpoint.InitializedBlind)
	wps := []*watchpoint.Watchpoint{rec.watchpoint("a"), rec.watchpoint("b"), rec.watchpoint("c")}
	for _, wp := range wps {
		s.Add(wp)
	}

	s.Destroy()
	s.Destroy()

	assert.Empty(t, rec.fired)
	assert.Equal(t, 0, s.Len())
	for _, wp := range wps {
		assert.False(t, wp.IsRegistered())
		wp.Remove()
	}
	assert.False(t, s.IsInvalidated())
	requireAssertion(t, func() { s.Add(rec.watchpoint("d")) })
}

// should treat a nil watchpoint as a no-op
func TestSetNilAddIsNoop(t *testing.T) {
	for _, mode := range []watchpoint.Mode{watchpoint.InitializedBlind, watchpoint.InitializedWatching} {
		s := watchpoint.NewSet(mode)
		before := s.State()
		s.Add(nil)
		assert.Equal(t, before, s.State())
		assert.Equal(t, 0, s.Len())
	}
}

// should refuse to notify a set that is not watched
func TestSetNotifyWriteRequiresWatched(t *testing.T) {
	s := watchpoint.NewSet(watchpoint.InitializedBlind)
	requireAssertion(t, func() { s.NotifyWrite(watchpoint.Reason("unwatched")) })
	assert.Equal(t, watchpoint.Unwatched, s.State())

	s = watchpoint.NewSet(watchpoint.InitializedWatching)
	s.NotifyWrite(watchpoint.Reason("first"))
	ae := requireAssertion(t, func() { s.NotifyWrite(watchpoint.Reason("second")) })
	assert.Contains(t, ae.Error(), "not watched")
	assert.NotEmpty(t, ae.Stack)
}

// should not accept registrations once invalidated
func TestSetAddAfterInvalidationPanics(t *testing.T) {
	rec := &recorder{}
	s := watchpoint.NewSet(watchpoint.InitializedBlind)
	s.Invalidate(watchpoint.Reason("gone"))
	wp := rec.watchpoint("a")
	requireAssertion(t, func() { s.Add(wp) })
	assert.False(t, wp.IsRegistered())
}

// should keep a watchpoint in at most one set
func TestWatchpointBelongsToOneSet(t *testing.T) {
	rec := &recorder{}
	a := watchpoint.NewSet(watchpoint.InitializedBlind)
	b := watchpoint.NewSet(watchpoint.InitializedBlind)
	wp := rec.watchpoint("wp")

	a.Add(wp)
	requireAssertion(t, func() { b.Add(wp) })
	assert.Equal(t, 0, b.Len())

	wp.Remove()
	assert.Equal(t, 0, a.Len())
	b.Add(wp)
	a.Touch()
	a.NotifyWrite(watchpoint.Reason("a"))
	assert.Empty(t, rec.fired)

	b.NotifyWrite(watchpoint.Reason("b"))
	assert.Equal(t, []string{"wp"}, rec.fired)
}

// should tolerate firers removing other registrations mid-broadcast
func TestSetRemoveDuringFire(t *testing.T) {
	rec := &recorder{}
	s := watchpoint.NewSet(watchpoint.InitializedBlind)
	b := rec.watchpoint("b")
	a := watchpoint.NewWatchpoint(watchpoint.FirerFunc(func(watchpoint.FireDetail) {
		rec.fired = append(rec.fired, "a")
		b.Remove()
	}))
	s.Add(a)
	s.Add(b)
	s.Add(rec.watchpoint("c"))

	s.NotifyWrite(watchpoint.Reason("write"))
	assert.Equal(t, []string{"a", "c"}, rec.fired)
	assert.False(t, b.IsRegistered())
	assert.True(t, s.IsInvalidated())
}

// should fire registrations added by a firer during the same broadcast
func TestSetAddDuringFire(t *testing.T) {
	rec := &recorder{}
	s := watchpoint.NewSet(watchpoint.InitializedBlind)
	c := rec.watchpoint("c")
	a := watchpoint.NewWatchpoint(watchpoint.FirerFunc(func(watchpoint.FireDetail) {
		rec.fired = append(rec.fired, "a")
		s.Add(c)
		s.NotifyWrite(watchpoint.Reason("nested"))
	}))
	s.Add(a)

	s.NotifyWrite(watchpoint.Reason("write"))
	assert.Equal(t, []string{"a", "c"}, rec.fired)
	assert.Equal(t, 0, s.Len())
	assert.True(t, s.IsInvalidated())
}

// should invalidate quietly when unwatched and fire when watched
func TestSetInvalidate(t *testing.T) {
	s := watchpoint.NewSet(watchpoint.InitializedBlind)
	s.Invalidate(watchpoint.Reason("quiet"))
	assert.True(t, s.IsInvalidated())
	assert.False(t, s.IsWatched())

	rec := &recorder{}
	s = watchpoint.NewSet(watchpoint.InitializedBlind)
	s.Add(rec.watchpoint("a"))
	s.Invalidate(watchpoint.Reason("loud"))
	assert.Equal(t, []string{"a"}, rec.fired)
	assert.Equal(t, []string{"loud"}, rec.details)
	assert.True(t, s.IsInvalidated())
}

// should start watching on touch without registering
func TestSetTouch(t *testing.T) {
	s := watchpoint.NewSet(watchpoint.InitializedBlind)
	s.Touch()
	assert.True(t, s.IsWatched())
	assert.Equal(t, 0, s.Len())
	s.NotifyWrite(watchpoint.Reason("write"))
	assert.True(t, s.IsInvalidated())
	s.Touch()
	assert.False(t, s.IsWatched())
}

// should destroy the set when the last reference is dropped
func TestSetReferenceCounting(t *testing.T) {
	rec := &recorder{}
	s := watchpoint.NewSet(watchpoint.InitializedBlind)
	wp := rec.watchpoint("a")
	s.Add(wp)

	assert.Same(t, s, s.Ref())
	s.Deref()
	assert.True(t, wp.IsRegistered())

	s.Deref()
	assert.False(t, wp.IsRegistered())
	assert.Empty(t, rec.fired)

	requireAssertion(t, func() { s.Deref() })
	requireAssertion(t, func() { s.Ref() })
}

// should only let compilation threads read
func TestSetCompilationThreadMayOnlyRead(t *testing.T) {
	rec := &recorder{}
	s := watchpoint.NewSet(watchpoint.InitializedWatching)
	wp := rec.watchpoint("a")

	for name, op := range map[string]func(){
		"Add":         func() { s.Add(wp) },
		"Touch":       func() { s.Touch() },
		"NotifyWrite": func() { s.NotifyWrite(watchpoint.Reason("bg")) },
		"Invalidate":  func() { s.Invalidate(watchpoint.Reason("bg")) },
		"Destroy":     func() { s.Destroy() },
	} {
		got := onCompilationThread(op)
		_, ok := got.(*watchpoint.AssertionError)
		assert.True(t, ok, "%s: got %v", name, got)
	}

	var watched, invalid bool
	assert.Nil(t, onCompilationThread(func() {
		assert.True(t, watchpoint.IsCompilationThread())
		watched = s.IsWatched()
		invalid = s.IsInvalidated()
	}))
	assert.True(t, watched)
	assert.False(t, invalid)
	assert.False(t, wp.IsRegistered())
	assert.False(t, watchpoint.IsCompilationThread())
}

// should publish every firer's effects before the invalidated flag
func TestSetInvalidationPublishesFireEffects(t *testing.T) {
	s := watchpoint.NewSet(watchpoint.InitializedBlind)
	var effects []int
	for i := 0; i < 8; i++ {
		i := i
		s.Add(watchpoint.NewWatchpoint(watchpoint.FirerFunc(func(watchpoint.FireDetail) {
			effects = append(effects, i)
		})))
	}

	seen := make(chan []int)
	started := make(chan struct{})
	watchpoint.GoCompilationThread(func() {
		close(started)
		for !s.IsInvalidated() {
			runtime.Gosched()
		}
		seen <- append([]int(nil), effects...)
	})
	<-started
	s.NotifyWrite(watchpoint.Reason("write"))

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, <-seen)
}

// should trace firings through the diagnostic logger
func TestSetFiringIsTraced(t *testing.T) {
	rec := &recorder{}
	s := watchpoint.NewSet(watchpoint.InitializedBlind)
	s.Add(rec.watchpoint("a"))
	s.Add(rec.watchpoint("b"))

	before := traced.FilterMessage("firing watchpoint set").Len()
	s.NotifyWrite(watchpoint.Reason("traced write"))

	entries := traced.FilterMessage("firing watchpoint set").All()
	require.Len(t, entries, before+1)
	fields := entries[len(entries)-1].ContextMap()
	assert.EqualValues(t, 2, fields["watchpoints"])
	assert.Equal(t, "traced write", fields["detail"])
}
