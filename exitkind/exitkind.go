// Package exitkind classifies why speculatively compiled code was exited or
// invalidated. It only says why; watchpoint decides whether and when.
package exitkind

//go:generate go run ../cmd/codegen --out kinds_gen.go

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrUnknownKind = errors.New("exitkind: unknown kind")

// Kind is a closed set of exit reasons. The constants live in kinds_gen.go.
type Kind uint8

func (k Kind) Valid() bool {
	return k < numKinds
}

func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsCountable reports whether exits of this kind count toward
// reoptimization. Uncountable kinds exist so that one cause is not counted
// twice, e.g. an exit from code that was already invalidated, or hole and
// bounds exits that the baseline tier counts on its own. Unset is never a
// real exit and asking about it panics.
func (k Kind) IsCountable() bool {
	if !k.Valid() || k == Unset {
		panic(fmt.Sprintf("exitkind: IsCountable(%s)", k))
	}
	return kindCountable[k]
}

// All lists every kind in declaration order, Unset included.
func All() []Kind {
	kinds := make([]Kind, numKinds)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

func Parse(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return Unset, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, k)
	}
	return []byte(kindNames[k]), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
