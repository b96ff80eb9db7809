package exitkind_test

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/delaneyj/watchparty/exitkind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// should exclude the uncountable kinds from statistics
func TestKindCountability(t *testing.T) {
	assert.False(t, exitkind.Uncountable.IsCountable())
	assert.False(t, exitkind.UncountableInvalidation.IsCountable())
	assert.True(t, exitkind.BadType.IsCountable())
	assert.True(t, exitkind.Overflow.IsCountable())
	assert.False(t, exitkind.OutOfBounds.IsCountable())

	assert.Panics(t, func() { exitkind.Unset.IsCountable() })
	assert.Panics(t, func() { exitkind.Kind(200).IsCountable() })
}

// should give every kind a distinct non-empty name that parses back
func TestKindNames(t *testing.T) {
	all := exitkind.All()
	require.Len(t, all, int(exitkind.DebuggerEvent)+1)
	assert.Equal(t, exitkind.Unset, all[0])

	seen := map[string]exitkind.Kind{}
	for _, k := range all {
		name := k.String()
		assert.NotEmpty(t, name)
		prev, dup := seen[name]
		assert.False(t, dup, "%s shared by %d and %d", name, prev, k)
		seen[name] = k

		parsed, err := exitkind.Parse(name)
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	assert.Equal(t, "BadType", exitkind.BadType.String())
	assert.Equal(t, "UncountableInvalidation", exitkind.UncountableInvalidation.String())
	assert.Equal(t, "Kind(99)", exitkind.Kind(99).String())

	_, err := exitkind.Parse("Bogus")
	assert.ErrorIs(t, err, exitkind.ErrUnknownKind)
}

// should round-trip through text encodings
func TestKindText(t *testing.T) {
	b, err := json.Marshal(map[string]exitkind.Kind{"kind": exitkind.NegativeZero})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"NegativeZero"}`, string(b))

	var k exitkind.Kind
	require.NoError(t, k.UnmarshalText([]byte("StoreToHole")))
	assert.Equal(t, exitkind.StoreToHole, k)
	assert.ErrorIs(t, k.UnmarshalText([]byte("nope")), exitkind.ErrUnknownKind)

	_, err = exitkind.Kind(77).MarshalText()
	assert.ErrorIs(t, err, exitkind.ErrUnknownKind)
}

// should deduplicate exit sites
func TestProfile(t *testing.T) {
	p := exitkind.NewProfile()
	assert.True(t, p.Add(exitkind.Site{BytecodeIndex: 12, Kind: exitkind.BadType}))
	assert.False(t, p.Add(exitkind.Site{BytecodeIndex: 12, Kind: exitkind.BadType}))
	assert.True(t, p.Add(exitkind.Site{BytecodeIndex: 3, Kind: exitkind.Overflow}))
	assert.True(t, p.Add(exitkind.Site{BytecodeIndex: 12, Kind: exitkind.BadCache}))

	assert.Equal(t, 3, p.Len())
	assert.True(t, p.Has(exitkind.Site{BytecodeIndex: 3, Kind: exitkind.Overflow}))
	assert.False(t, p.Has(exitkind.Site{BytecodeIndex: 3, Kind: exitkind.BadType}))
	assert.True(t, p.HasKind(exitkind.BadCache))
	assert.False(t, p.HasKind(exitkind.OutOfBounds))

	assert.Equal(t, []exitkind.Site{
		{BytecodeIndex: 3, Kind: exitkind.Overflow},
		{BytecodeIndex: 12, Kind: exitkind.BadType},
		{BytecodeIndex: 12, Kind: exitkind.BadCache},
	}, p.Sites())
	assert.Equal(t, "bc#12:BadCache", exitkind.Site{BytecodeIndex: 12, Kind: exitkind.BadCache}.String())

	assert.Panics(t, func() { p.Add(exitkind.Site{Kind: exitkind.Unset}) })
}

// should count exits from many goroutines
func TestStats(t *testing.T) {
	var s exitkind.Stats
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Record(exitkind.BadType)
				s.Record(exitkind.UncountableInvalidation)
			}
		}()
	}
	wg.Wait()
	s.Record(exitkind.Kind(250))

	assert.EqualValues(t, 800, s.Count(exitkind.BadType))
	assert.EqualValues(t, 800, s.Count(exitkind.UncountableInvalidation))
	assert.EqualValues(t, 1600, s.Total())
	assert.EqualValues(t, 800, s.Countable())
	assert.Equal(t, map[exitkind.Kind]uint64{
		exitkind.BadType:                 800,
		exitkind.UncountableInvalidation: 800,
	}, s.Snapshot())
}
