package object

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/delaneyj/watchparty/watchpoint"
)

// Structure is an object shape: a class name and an ordered property list.
// Structures are immutable once built; adding a property transitions to a
// new (cached) structure and fires the transition watchpoints of the old one,
// since code that assumed "objects of this shape never grow" is now wrong.
type Structure struct {
	id         uint64
	class      string
	properties []string
	offsets    map[string]int

	transitions   map[string]*Structure
	transitionSet *watchpoint.Set
}

func NewStructure(class string) *Structure {
	return newStructure(xxhash.Sum64String(class), class, nil)
}

func newStructure(id uint64, class string, properties []string) *Structure {
	s := &Structure{
		id:            id,
		class:         class,
		properties:    properties,
		offsets:       make(map[string]int, len(properties)),
		transitions:   map[string]*Structure{},
		transitionSet: watchpoint.NewSet(watchpoint.InitializedWatching),
	}
	for i, p := range properties {
		s.offsets[p] = i
	}
	return s
}

// ID hashes the class and the property path that built the structure.
func (s *Structure) ID() uint64 {
	return s.id
}

func (s *Structure) Class() string {
	return s.class
}

// Offset is safe from compilation threads.
func (s *Structure) Offset(property string) (int, bool) {
	offset, ok := s.offsets[property]
	return offset, ok
}

func (s *Structure) Properties() []string {
	return append([]string(nil), s.properties...)
}

func (s *Structure) TransitionWatchpoints() *watchpoint.Set {
	return s.transitionSet
}

// AddProperty returns the structure with property appended. Owner goroutine
// only.
func (s *Structure) AddProperty(property string) *Structure {
	if _, ok := s.offsets[property]; ok {
		return s
	}
	s.transitionSet.Invalidate(watchpoint.Reason(fmt.Sprintf("%s transitioned adding %q", s, property)))

	if next, ok := s.transitions[property]; ok {
		return next
	}
	d := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], s.id)
	d.Write(buf[:])
	d.WriteString(property)

	properties := make([]string, len(s.properties), len(s.properties)+1)
	copy(properties, s.properties)
	next := newStructure(d.Sum64(), s.class, append(properties, property))
	s.transitions[property] = next
	return next
}

// Destroy drops the structure's reference to its transition set.
func (s *Structure) Destroy() {
	s.transitionSet.Deref()
}

func (s *Structure) String() string {
	return s.class + "{" + strings.Join(s.properties, ",") + "}"
}
