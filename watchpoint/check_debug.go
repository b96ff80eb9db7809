//go:build debug

package watchpoint

// checkArena verifies the registration arena after every mutation.
// Enable with: go test -tags debug ./...
func checkArena(s *Set) {
	live := 0
	var lastID uint64
	for i, sl := range s.slots {
		if sl.wp == nil {
			continue
		}
		live++
		if sl.wp.set != s || sl.wp.index != i || sl.wp.id != sl.id {
			panic(assertf("slot %d does not match its watchpoint back-link", i))
		}
		if sl.id <= lastID {
			panic(assertf("slot %d breaks registration order (%d after %d)", i, sl.id, lastID))
		}
		lastID = sl.id
	}
	if live != s.live {
		panic(assertf("arena has %d live slots, set counts %d", live, s.live))
	}
	if live > 0 && s.flags()&isWatchedFlag == 0 {
		panic(assertf("set has %d watchpoints but is not watched", live))
	}
}
