// Package object has the runtime entities that speculation watches: variables
// whose value has been constant so far and structures that have not yet
// transitioned.
package object

import (
	"sync/atomic"

	"github.com/delaneyj/watchparty/watchpoint"
)

// Variable infers its value from the first write and stays watchable until a
// different value is written. The zero value is ready to use.
type Variable[T comparable] struct {
	set      watchpoint.InlineSet
	value    T
	inferred atomic.Pointer[T]
}

// Value returns the current value. Owner goroutine only.
func (v *Variable[T]) Value() T {
	return v.value
}

// Write stores value. The first write infers it and starts watching; an equal
// write changes nothing; a different write breaks the inference and fires
// whatever was watching.
func (v *Variable[T]) Write(value T) {
	v.value = value
	if v.set.IsInvalidated() {
		return
	}

	inferred := v.inferred.Load()
	if inferred == nil {
		v.inferred.Store(&value)
		v.set.Touch()
		return
	}
	if *inferred == value {
		return
	}
	v.set.Invalidate(watchpoint.Reason("variable written with a different value"))
}

// InferredValue returns the value every write so far agreed on. Safe from
// compilation threads; a false ok means there is nothing to speculate on.
func (v *Variable[T]) InferredValue() (value T, ok bool) {
	inferred := v.inferred.Load()
	if inferred == nil || v.set.IsInvalidated() {
		return value, false
	}
	return *inferred, true
}

func (v *Variable[T]) Watchpoints() *watchpoint.InlineSet {
	return &v.set
}

func (v *Variable[T]) Destroy() {
	v.set.Destroy()
}
