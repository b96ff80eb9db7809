// Package codeblock is the consumer side of watchpoint: compiled code that
// speculates on runtime state, registers watchpoints for it, and throws
// itself away (jettisons) when a watchpoint fires or it exits too often.
package codeblock

import (
	"errors"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/watchparty/exitkind"
	"go.uber.org/zap"
)

var (
	ErrPlanInvalidated = errors.New("codeblock: speculation invalidated before install")
	ErrPlanFailed      = errors.New("codeblock: compilation failed")
	ErrPlanFinalized   = errors.New("codeblock: plan already finalized")
)

// DefaultExitCountThreshold is how many countable exits a code block takes
// before it is jettisoned for reoptimization.
const DefaultExitCountThreshold = 100

type Options struct {
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// ExitCountThreshold defaults to DefaultExitCountThreshold.
	ExitCountThreshold uint32
	// Stats collects every exit; a fresh one is used if nil.
	Stats *exitkind.Stats
}

// VM owns code blocks. Everything but Compile's speculation runs on the
// goroutine that owns the VM.
type VM struct {
	logger        *zap.Logger
	exitThreshold uint32
	stats         *exitkind.Stats
	codeBlocks    mapset.Set[*CodeBlock]
	nextID        uint64
}

func NewVM(opts Options) *VM {
	vm := &VM{
		logger:        opts.Logger,
		exitThreshold: opts.ExitCountThreshold,
		stats:         opts.Stats,
		codeBlocks:    mapset.NewThreadUnsafeSet[*CodeBlock](),
	}
	if vm.logger == nil {
		vm.logger = zap.NewNop()
	}
	if vm.exitThreshold == 0 {
		vm.exitThreshold = DefaultExitCountThreshold
	}
	if vm.stats == nil {
		vm.stats = &exitkind.Stats{}
	}
	return vm
}

func (vm *VM) Stats() *exitkind.Stats {
	return vm.stats
}

// CodeBlocks returns the installed, still valid code blocks by name.
func (vm *VM) CodeBlocks() []*CodeBlock {
	blocks := vm.codeBlocks.ToSlice()
	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].name != blocks[j].name {
			return blocks[i].name < blocks[j].name
		}
		return blocks[i].id < blocks[j].id
	})
	return blocks
}
