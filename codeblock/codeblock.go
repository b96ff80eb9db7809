package codeblock

import (
	"fmt"
	"sync/atomic"

	"github.com/delaneyj/watchparty/exitkind"
	"github.com/delaneyj/watchparty/watchpoint"
	"go.uber.org/zap"
)

type JettisonReason uint8

const (
	NotJettisoned JettisonReason = iota
	JettisonDueToWatchpoint
	JettisonDueToOSRExit
	JettisonDueToUserRequest
)

func (r JettisonReason) String() string {
	switch r {
	case NotJettisoned:
		return "NotJettisoned"
	case JettisonDueToWatchpoint:
		return "JettisonDueToWatchpoint"
	case JettisonDueToOSRExit:
		return "JettisonDueToOSRExit"
	case JettisonDueToUserRequest:
		return "JettisonDueToUserRequest"
	default:
		return fmt.Sprintf("JettisonReason(%d)", r)
	}
}

// CodeBlock is one installed compilation.
type CodeBlock struct {
	vm     *VM
	id     uint64
	name   string
	hash   Hash
	valid  atomic.Bool
	reason JettisonReason
	detail string

	watchpoints []*watchpoint.Watchpoint
	profile     *exitkind.Profile
	exitCount   uint32
}

func (vm *VM) newCodeBlock(name, source string) *CodeBlock {
	vm.nextID++
	cb := &CodeBlock{
		vm:      vm,
		id:      vm.nextID,
		name:    name,
		hash:    HashOf(source),
		profile: exitkind.NewProfile(),
	}
	cb.valid.Store(true)
	return cb
}

func (cb *CodeBlock) Name() string {
	return cb.name
}

func (cb *CodeBlock) Hash() Hash {
	return cb.hash
}

// IsValid is safe from any goroutine.
func (cb *CodeBlock) IsValid() bool {
	return cb.valid.Load()
}

func (cb *CodeBlock) JettisonReason() JettisonReason {
	return cb.reason
}

// JettisonDetail is the FireDetail or exit summary that caused the jettison.
func (cb *CodeBlock) JettisonDetail() string {
	return cb.detail
}

func (cb *CodeBlock) Profile() *exitkind.Profile {
	return cb.profile
}

func (cb *CodeBlock) ExitCount() uint32 {
	return cb.exitCount
}

// Watchpoints is the number of watchpoints the block still has registered.
func (cb *CodeBlock) Watchpoints() int {
	n := 0
	for _, w := range cb.watchpoints {
		if w.IsRegistered() {
			n++
		}
	}
	return n
}

func (cb *CodeBlock) String() string {
	return cb.name + "#" + cb.hash.String()
}

// Jettison throws the code away. The first call wins and reports true.
func (cb *CodeBlock) Jettison(reason JettisonReason, detail watchpoint.FireDetail) bool {
	if !cb.valid.Load() {
		return false
	}
	cb.reason = reason
	if detail != nil {
		cb.detail = detail.String()
	}
	for _, w := range cb.watchpoints {
		w.Remove()
	}
	cb.watchpoints = nil
	cb.valid.Store(false)
	cb.vm.codeBlocks.Remove(cb)

	cb.vm.logger.Info("jettisoned code block",
		zap.Stringer("codeBlock", cb),
		zap.Stringer("reason", reason),
		zap.String("detail", cb.detail),
	)
	return true
}

// OSRExit records that execution left the block at bytecodeIndex for kind.
// Countable exits push the block toward reoptimization; exits taken after the
// block was jettisoned are recorded as UncountableInvalidation.
func (cb *CodeBlock) OSRExit(bytecodeIndex uint32, kind exitkind.Kind) {
	if !cb.valid.Load() {
		kind = exitkind.UncountableInvalidation
	}
	cb.vm.stats.Record(kind)
	if kind != exitkind.Uncountable && kind != exitkind.UncountableInvalidation {
		cb.profile.Add(exitkind.Site{BytecodeIndex: bytecodeIndex, Kind: kind})
	}
	if !kind.IsCountable() {
		return
	}

	cb.exitCount++
	if cb.exitCount >= cb.vm.exitThreshold {
		cb.Jettison(JettisonDueToOSRExit, watchpoint.Reason(fmt.Sprintf(
			"%d countable exits, last %s at bc#%d", cb.exitCount, kind, bytecodeIndex,
		)))
	}
}

type jettisonOnFire struct {
	cb *CodeBlock
}

func (j jettisonOnFire) Fire(detail watchpoint.FireDetail) {
	j.cb.Jettison(JettisonDueToWatchpoint, detail)
}
