package watchpoint

import (
	"sync/atomic"

	"github.com/delaneyj/watchparty/datalog"
	"go.uber.org/zap"
)

type stateFlags uint32

const (
	isWatchedFlag stateFlags = 1 << iota
	isInvalidatedFlag
	isDestroyedFlag
)

// Mode picks the state a new set starts in.
type Mode uint8

const (
	// InitializedBlind starts Unwatched; the first Add or Touch starts watching.
	InitializedBlind Mode = iota
	// InitializedWatching starts Watched with no registrations.
	InitializedWatching
)

func (m Mode) flags() stateFlags {
	if m == InitializedWatching {
		return isWatchedFlag
	}
	return 0
}

type State uint8

const (
	Unwatched State = iota
	Watched
	Invalidated
)

func (s State) String() string {
	switch s {
	case Unwatched:
		return "Unwatched"
	case Watched:
		return "Watched"
	case Invalidated:
		return "Invalidated"
	default:
		return "State(?)"
	}
}

func (f stateFlags) state() State {
	switch {
	case f&isInvalidatedFlag != 0:
		return Invalidated
	case f&isWatchedFlag != 0:
		return Watched
	default:
		return Unwatched
	}
}

// compactAfter is the number of dead slots tolerated before the arena is
// squeezed back down.
const compactAfter = 8

type slot struct {
	wp *Watchpoint
	id uint64
}

// Set is the shared validity state of one assumption plus the watchpoints
// observing it. Unwatched -> Watched -> Invalidated; Invalidated is terminal.
//
// Sets are reference counted: NewSet hands out one reference, Ref adds more
// and the last Deref destroys the set.
type Set struct {
	state atomic.Uint32
	refs  atomic.Int32

	slots  []slot
	live   int
	nextID uint64
	firing bool
}

func NewSet(mode Mode) *Set {
	s := &Set{}
	s.state.Store(uint32(mode.flags()))
	s.refs.Store(1)
	return s
}

func (s *Set) flags() stateFlags {
	return stateFlags(s.state.Load())
}

func (s *Set) IsWatched() bool {
	return s.flags()&isWatchedFlag != 0
}

// IsInvalidated never goes back to false once it has returned true.
func (s *Set) IsInvalidated() bool {
	return s.flags()&isInvalidatedFlag != 0
}

func (s *Set) IsStillValid() bool {
	return !s.IsInvalidated()
}

func (s *Set) State() State {
	return s.flags().state()
}

// Len is the number of registered watchpoints. Owner goroutine only.
func (s *Set) Len() int {
	return s.live
}

// Add registers w and starts watching. A nil w is ignored.
func (s *Set) Add(w *Watchpoint) {
	assertNotCompilationThread("Set.Add")
	if w == nil {
		return
	}
	f := s.flags()
	switch {
	case f&isDestroyedFlag != 0:
		panic(assertf("Add on a destroyed set"))
	case f&isInvalidatedFlag != 0:
		panic(assertf("Add on an invalidated set"))
	case w.set != nil:
		panic(assertf("watchpoint is already registered in a set"))
	}

	s.nextID++
	w.set = s
	w.index = len(s.slots)
	w.id = s.nextID
	s.slots = append(s.slots, slot{wp: w, id: w.id})
	s.live++
	s.state.Store(uint32(f | isWatchedFlag))
	checkArena(s)
}

// Touch starts watching without registering anything.
func (s *Set) Touch() {
	assertNotCompilationThread("Set.Touch")
	f := s.flags()
	if f&(isWatchedFlag|isInvalidatedFlag) != 0 {
		return
	}
	s.state.Store(uint32(f | isWatchedFlag))
}

// NotifyWrite reports that the assumption just broke. The set must be
// watched: callers check IsWatched on their fast path and only come here when
// it holds. Every registered watchpoint fires once, in registration order,
// and the set ends Invalidated.
func (s *Set) NotifyWrite(detail FireDetail) {
	assertNotCompilationThread("Set.NotifyWrite")
	if !s.IsWatched() {
		panic(assertf("NotifyWrite on a set that is not watched (%s)", s.State()))
	}
	s.fireAll(detail)
}

// Invalidate moves the set to Invalidated from any state, firing its
// watchpoints if it was watched.
func (s *Set) Invalidate(detail FireDetail) {
	assertNotCompilationThread("Set.Invalidate")
	f := s.flags()
	switch {
	case f&isInvalidatedFlag != 0:
		return
	case f&isWatchedFlag != 0:
		s.fireAll(detail)
	default:
		s.state.Store(uint32(f | isInvalidatedFlag))
	}
}

func (s *Set) fireAll(detail FireDetail) {
	// A write seen while firing joins the broadcast already in progress.
	if s.firing {
		return
	}
	if detail == nil {
		detail = unspecified
	}
	if ce := datalog.Logger().Check(zap.DebugLevel, "firing watchpoint set"); ce != nil {
		ce.Write(zap.Int("watchpoints", s.live), zap.Stringer("detail", detail))
	}

	s.firing = true
	// Fire callbacks may remove later registrations or add new ones; the
	// bound is re-read each time round.
	for i := 0; i < len(s.slots); i++ {
		w := s.slots[i].wp
		if w == nil {
			continue
		}
		s.slots[i].wp = nil
		s.live--
		w.detach()
		w.firer.Fire(detail)
	}
	s.firing = false
	clear(s.slots)
	s.slots = s.slots[:0]

	// Everything the firers wrote happens before this store; readers that
	// load the invalidated flag observe it.
	s.state.Store(uint32(s.flags()&isDestroyedFlag | isInvalidatedFlag))
	checkArena(s)
}

func (s *Set) unlink(w *Watchpoint) {
	assertNotCompilationThread("Watchpoint.Remove")
	if w.index < 0 || w.index >= len(s.slots) {
		panic(assertf("watchpoint index %d outside arena of %d", w.index, len(s.slots)))
	}
	sl := &s.slots[w.index]
	if sl.wp != w || sl.id != w.id {
		panic(assertf("watchpoint handle %d does not match slot %d", w.id, w.index))
	}
	sl.wp = nil
	s.live--
	w.detach()
	if !s.firing {
		s.compact()
	}
	checkArena(s)
}

// compact drops dead slots once they outnumber the live ones, keeping the
// registration order.
func (s *Set) compact() {
	dead := len(s.slots) - s.live
	if s.live != 0 && (dead < compactAfter || dead < s.live) {
		return
	}
	j := 0
	for _, sl := range s.slots {
		if sl.wp == nil {
			continue
		}
		sl.wp.index = j
		s.slots[j] = sl
		j++
	}
	clear(s.slots[j:])
	s.slots = s.slots[:j]
}

// Destroy unlinks every remaining watchpoint without firing it. Whoever cares
// about a watched entity firing has to keep that entity alive; tearing it
// down is not an invalidation.
func (s *Set) Destroy() {
	assertNotCompilationThread("Set.Destroy")
	f := s.flags()
	if f&isDestroyedFlag != 0 {
		return
	}
	if s.firing {
		panic(assertf("Destroy while firing"))
	}
	for i := range s.slots {
		if w := s.slots[i].wp; w != nil {
			w.detach()
		}
	}
	s.slots = nil
	s.live = 0
	s.state.Store(uint32(f | isDestroyedFlag))
}

// Ref takes another reference and returns s. Safe from any goroutine.
func (s *Set) Ref() *Set {
	if s.refs.Add(1) <= 1 {
		panic(assertf("Ref on a released set"))
	}
	return s
}

// Deref drops a reference; the last one destroys the set, so it has to be
// dropped on the owner goroutine.
func (s *Set) Deref() {
	switch n := s.refs.Add(-1); {
	case n == 0:
		s.Destroy()
	case n < 0:
		panic(assertf("Deref on a released set"))
	}
}
