package codeblock

import (
	"context"
	"fmt"

	"github.com/delaneyj/watchparty/watchpoint"
	"go.uber.org/zap"
)

// SpeculateFunc runs on a compilation thread. It reads runtime state, decides
// what to assume and records the sets those assumptions depend on.
type SpeculateFunc func(desired *DesiredWatchpoints) error

// Plan is a compilation running in the background.
type Plan struct {
	name      string
	source    string
	desired   *DesiredWatchpoints
	done      chan struct{}
	err       error
	panicked  any
	finalized bool
}

func (p *Plan) Name() string {
	return p.name
}

// Compile starts speculate on a new compilation thread.
func (vm *VM) Compile(name, source string, speculate SpeculateFunc) *Plan {
	p := &Plan{
		name:    name,
		source:  source,
		desired: newDesiredWatchpoints(),
		done:    make(chan struct{}),
	}
	watchpoint.GoCompilationThread(func() {
		defer close(p.done)
		defer func() {
			// Handed to Finalize, which re-panics on the owner goroutine.
			p.panicked = recover()
		}()
		if err := speculate(p.desired); err != nil {
			p.err = fmt.Errorf("%w: %s: %w", ErrPlanFailed, name, err)
		}
	})
	return p
}

// Wait blocks until the speculation has finished or ctx is done.
func (p *Plan) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Finalize installs a finished plan on the owner goroutine. If any set the
// plan speculated on was invalidated while it compiled, nothing is installed
// and the error wraps ErrPlanInvalidated. A plan that ctx abandoned can be
// finalized again later.
func (vm *VM) Finalize(ctx context.Context, p *Plan) (*CodeBlock, error) {
	select {
	case <-p.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if p.finalized {
		return nil, fmt.Errorf("%w: %s", ErrPlanFinalized, p.name)
	}
	p.finalized = true
	defer p.desired.release()

	if p.panicked != nil {
		panic(p.panicked)
	}
	if p.err != nil {
		return nil, p.err
	}
	if !p.desired.AreStillValid() {
		vm.logger.Debug("dropping invalidated plan", zap.String("plan", p.name))
		return nil, fmt.Errorf("%w: %s", ErrPlanInvalidated, p.name)
	}

	cb := vm.newCodeBlock(p.name, p.source)
	p.desired.install(cb)
	vm.codeBlocks.Add(cb)
	vm.logger.Info("installed code block",
		zap.Stringer("codeBlock", cb),
		zap.Int("watchpoints", len(cb.watchpoints)),
	)
	return cb, nil
}
