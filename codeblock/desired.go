package codeblock

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/watchparty/watchpoint"
)

// DesiredWatchpoints collects, on a compilation thread, the sets a
// compilation speculates on. Nothing is registered until the plan is
// finalized on the owner goroutine.
type DesiredWatchpoints struct {
	inline     []*watchpoint.InlineSet
	sets       []*watchpoint.Set
	seenInline mapset.Set[*watchpoint.InlineSet]
	seenSets   mapset.Set[*watchpoint.Set]
}

func newDesiredWatchpoints() *DesiredWatchpoints {
	return &DesiredWatchpoints{
		seenInline: mapset.NewThreadUnsafeSet[*watchpoint.InlineSet](),
		seenSets:   mapset.NewThreadUnsafeSet[*watchpoint.Set](),
	}
}

func (d *DesiredWatchpoints) AddInline(s *watchpoint.InlineSet) {
	if s == nil || !d.seenInline.Add(s) {
		return
	}
	d.inline = append(d.inline, s)
}

// AddSet takes a reference on s until the plan is finalized.
func (d *DesiredWatchpoints) AddSet(s *watchpoint.Set) {
	if s == nil || !d.seenSets.Add(s) {
		return
	}
	d.sets = append(d.sets, s.Ref())
}

func (d *DesiredWatchpoints) Len() int {
	return len(d.inline) + len(d.sets)
}

// AreStillValid reports whether none of the desired sets has been
// invalidated. Safe from any goroutine.
func (d *DesiredWatchpoints) AreStillValid() bool {
	for _, s := range d.inline {
		if s.IsInvalidated() {
			return false
		}
	}
	for _, s := range d.sets {
		if s.IsInvalidated() {
			return false
		}
	}
	return true
}

func (d *DesiredWatchpoints) install(cb *CodeBlock) {
	for _, s := range d.inline {
		w := watchpoint.NewWatchpoint(jettisonOnFire{cb: cb})
		s.Add(w)
		cb.watchpoints = append(cb.watchpoints, w)
	}
	for _, s := range d.sets {
		w := watchpoint.NewWatchpoint(jettisonOnFire{cb: cb})
		s.Add(w)
		cb.watchpoints = append(cb.watchpoints, w)
	}
}

func (d *DesiredWatchpoints) release() {
	for _, s := range d.sets {
		s.Deref()
	}
	d.sets = nil
	d.inline = nil
	d.seenInline.Clear()
	d.seenSets.Clear()
}
