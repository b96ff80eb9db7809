package exitkind

import "sync/atomic"

// Stats counts exits per kind. The zero value is ready to use and safe for
// concurrent use.
type Stats struct {
	counts [numKinds]atomic.Uint64
}

func (s *Stats) Record(kind Kind) {
	if !kind.Valid() {
		return
	}
	s.counts[kind].Add(1)
}

func (s *Stats) Count(kind Kind) uint64 {
	if !kind.Valid() {
		return 0
	}
	return s.counts[kind].Load()
}

func (s *Stats) Total() uint64 {
	var total uint64
	for i := range s.counts {
		total += s.counts[i].Load()
	}
	return total
}

// Countable sums the kinds that count toward reoptimization.
func (s *Stats) Countable() uint64 {
	var total uint64
	for i := Kind(1); i < numKinds; i++ {
		if i.IsCountable() {
			total += s.counts[i].Load()
		}
	}
	return total
}

// Snapshot returns the non-zero counters.
func (s *Stats) Snapshot() map[Kind]uint64 {
	snap := map[Kind]uint64{}
	for i := range s.counts {
		if n := s.counts[i].Load(); n != 0 {
			snap[Kind(i)] = n
		}
	}
	return snap
}
