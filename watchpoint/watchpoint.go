// Package watchpoint is a change-notification substrate for invalidating
// speculative code. A Set holds the "is this assumption still valid" state for
// some runtime entity together with the Watchpoints that want to hear when the
// assumption breaks. InlineSet is the allocation-free form of a Set that only
// grows into a real Set once somebody registers.
//
// Mutation (Add, NotifyWrite, Invalidate, Touch, Destroy, Remove) belongs to
// the owning goroutine. Goroutines tagged as compilation threads may only
// read state through IsWatched, IsInvalidated and IsStillValid; those reads
// are atomic loads that pair with the release store publishing an
// invalidation, so a reader that sees IsInvalidated also sees every side
// effect of the Fire calls that preceded it.
package watchpoint

import "fmt"

// FireDetail says why a set is being fired.
type FireDetail interface {
	fmt.Stringer
}

// Reason is the plain-text FireDetail.
type Reason string

func (r Reason) String() string {
	return string(r)
}

const unspecified = Reason("unspecified")

// Firer is what a Watchpoint does when its set fires.
type Firer interface {
	Fire(detail FireDetail)
}

type FirerFunc func(detail FireDetail)

func (f FirerFunc) Fire(detail FireDetail) {
	f(detail)
}

// Watchpoint is one registered interest in a Set. It is registered in at most
// one set at a time and is found there through an arena slot, never through
// list pointers.
type Watchpoint struct {
	firer Firer

	set   *Set
	index int
	id    uint64
}

func NewWatchpoint(firer Firer) *Watchpoint {
	if firer == nil {
		panic(assertf("watchpoint created without a firer"))
	}
	return &Watchpoint{firer: firer, index: -1}
}

// IsRegistered reports whether w currently sits in a set. Owner goroutine only.
func (w *Watchpoint) IsRegistered() bool {
	return w.set != nil
}

// Remove unlinks w from its set without firing it. Removing an unregistered
// watchpoint does nothing.
func (w *Watchpoint) Remove() {
	if w.set == nil {
		return
	}
	w.set.unlink(w)
}

func (w *Watchpoint) detach() {
	w.set = nil
	w.index = -1
	w.id = 0
}
