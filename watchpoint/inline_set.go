package watchpoint

import "sync/atomic"

// InlineSet is a Set that costs no allocation until a watchpoint is
// registered. While thin it keeps the state flags in a word of its own; the
// first real registration inflates it into a heap Set that carries the same
// flags, and from then on the fat Set is authoritative. An InlineSet never
// goes back to thin.
//
// The zero value is thin and Unwatched. InlineSets hold atomics and must not
// be copied; embed them in the entity they describe.
type InlineSet struct {
	thin atomic.Uint32
	fat  atomic.Pointer[Set]
}

// Init sets the starting mode. It must run before the set is shared.
func (s *InlineSet) Init(mode Mode) {
	if s.fat.Load() != nil {
		panic(assertf("Init on an inflated InlineSet"))
	}
	s.thin.Store(uint32(mode.flags()))
}

func (s *InlineSet) IsFat() bool {
	return s.fat.Load() != nil
}

func (s *InlineSet) flags() stateFlags {
	if fat := s.fat.Load(); fat != nil {
		return fat.flags()
	}
	return stateFlags(s.thin.Load())
}

func (s *InlineSet) IsWatched() bool {
	return s.flags()&isWatchedFlag != 0
}

func (s *InlineSet) IsInvalidated() bool {
	return s.flags()&isInvalidatedFlag != 0
}

func (s *InlineSet) IsStillValid() bool {
	return !s.IsInvalidated()
}

func (s *InlineSet) State() State {
	return s.flags().state()
}

// Len is the number of registered watchpoints. Owner goroutine only.
func (s *InlineSet) Len() int {
	if fat := s.fat.Load(); fat != nil {
		return fat.Len()
	}
	return 0
}

// Add registers w, inflating the set first if it is still thin. A nil w is
// ignored and does not inflate.
func (s *InlineSet) Add(w *Watchpoint) {
	assertNotCompilationThread("InlineSet.Add")
	if w == nil {
		return
	}
	if fat := s.fat.Load(); fat != nil {
		fat.Add(w)
		return
	}
	if stateFlags(s.thin.Load())&isInvalidatedFlag != 0 {
		panic(assertf("Add on an invalidated set"))
	}
	s.inflate().Add(w)
}

// Inflated returns the heap Set behind s, inflating once if needed. The set
// stays owned by s; callers that keep it past s must Ref it.
func (s *InlineSet) Inflated() *Set {
	if fat := s.fat.Load(); fat != nil {
		return fat
	}
	return s.inflate()
}

func (s *InlineSet) inflate() *Set {
	assertNotCompilationThread("InlineSet.inflate")
	if s.fat.Load() != nil {
		panic(assertf("InlineSet inflated twice"))
	}
	thin := stateFlags(s.thin.Load())
	if thin&isDestroyedFlag != 0 {
		panic(assertf("inflating a destroyed InlineSet"))
	}
	fat := NewSet(InitializedBlind)
	fat.state.Store(uint32(thin & (isWatchedFlag | isInvalidatedFlag)))
	// The flags are stored before the pointer is published, so a reader that
	// finds the fat set finds it fully initialised.
	s.fat.Store(fat)
	return fat
}

func (s *InlineSet) Touch() {
	assertNotCompilationThread("InlineSet.Touch")
	if fat := s.fat.Load(); fat != nil {
		fat.Touch()
		return
	}
	f := stateFlags(s.thin.Load())
	if f&(isWatchedFlag|isInvalidatedFlag) != 0 {
		return
	}
	s.thin.Store(uint32(f | isWatchedFlag))
}

// NotifyWrite has the contract of Set.NotifyWrite. A thin set has no
// watchpoints to fire and just becomes Invalidated.
func (s *InlineSet) NotifyWrite(detail FireDetail) {
	assertNotCompilationThread("InlineSet.NotifyWrite")
	if fat := s.fat.Load(); fat != nil {
		fat.NotifyWrite(detail)
		return
	}
	f := stateFlags(s.thin.Load())
	if f&isWatchedFlag == 0 {
		panic(assertf("NotifyWrite on a set that is not watched (%s)", f.state()))
	}
	s.thin.Store(uint32(f&isDestroyedFlag | isInvalidatedFlag))
}

func (s *InlineSet) Invalidate(detail FireDetail) {
	assertNotCompilationThread("InlineSet.Invalidate")
	if fat := s.fat.Load(); fat != nil {
		fat.Invalidate(detail)
		return
	}
	f := stateFlags(s.thin.Load())
	if f&isInvalidatedFlag != 0 {
		return
	}
	s.thin.Store(uint32(f&isDestroyedFlag | isInvalidatedFlag))
}

// Destroy drops the reference to the fat set, if any. Watchpoints still
// registered are unlinked without firing once the last reference goes.
func (s *InlineSet) Destroy() {
	assertNotCompilationThread("InlineSet.Destroy")
	f := stateFlags(s.thin.Load())
	if f&isDestroyedFlag != 0 {
		return
	}
	s.thin.Store(uint32(f | isDestroyedFlag))
	if fat := s.fat.Load(); fat != nil {
		fat.Deref()
	}
}
