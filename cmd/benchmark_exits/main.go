package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/delaneyj/watchparty/codeblock"
	"github.com/delaneyj/watchparty/exitkind"
	"github.com/delaneyj/watchparty/object"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

const (
	repeatsKey   = "repeats"
	thresholdKey = "threshold"
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark_exits",
		Usage: "Simulate speculation, invalidation and OSR exits",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  repeatsKey,
				Usage: "Runs per config, the fastest is reported",
				Value: 3,
			},
			&cli.UintFlag{
				Name:  thresholdKey,
				Usage: "Countable exits before a code block is jettisoned",
				Value: 10,
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	log.Print("Starting speculation benchmark, please wait...")
	defer log.Print("Finished speculation benchmark")

	threshold := uint32(cmd.Uint(thresholdKey))
	cfgs := []simConfig{
		{
			name:          "stable globals",
			functions:     10,
			variables:     20,
			structures:    5,
			usesPerFunc:   4,
			writeFraction: 0.001,
			shapeFraction: 0,
			exitFraction:  0.001,
			iterations:    20_000,
		},
		{
			name:          "churning globals",
			functions:     10,
			variables:     20,
			structures:    5,
			usesPerFunc:   4,
			writeFraction: 0.2,
			shapeFraction: 0.01,
			exitFraction:  0.01,
			iterations:    5_000,
		},
		{
			name:          "shape heavy",
			functions:     50,
			variables:     10,
			structures:    50,
			usesPerFunc:   8,
			writeFraction: 0.01,
			shapeFraction: 0.3,
			exitFraction:  0.01,
			iterations:    2_000,
		},
		{
			name:          "exit storm",
			functions:     100,
			variables:     100,
			structures:    10,
			usesPerFunc:   2,
			writeFraction: 0.01,
			shapeFraction: 0.01,
			exitFraction:  0.5,
			iterations:    2_000,
		},
		{
			name:          "wide",
			functions:     1_000,
			variables:     1_000,
			structures:    100,
			usesPerFunc:   16,
			writeFraction: 0.05,
			shapeFraction: 0.05,
			exitFraction:  0.01,
			iterations:    200,
		},
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"test", "funcs", "vars", "shapes", "uses",
		"nTimes", "time", "compiles", "stale", "wp jettisons", "exit jettisons",
		"countable exits", "installRate",
	})

	testRepeats := max(int(cmd.Uint(repeatsKey)), 1)
	for _, cfg := range cfgs {
		cfg.threshold = threshold
		log.Printf("Running '%s' config", cfg.name)
		runSim(ctx, &cfg) // warm up

		var best *simResult
		for i := 0; i < testRepeats; i++ {
			log.Printf("Running '%s' config, iteration %d/%d %d%%", cfg.name, i+1, testRepeats, (i+1)*100/testRepeats)
			res := runSim(ctx, &cfg)
			if best == nil || res.duration < best.duration {
				best = res
			}
		}

		installRate := float64(best.installs) / (float64(best.duration) / float64(time.Millisecond))
		table.Append([]string{
			cfg.title(),
			fmt.Sprint(cfg.functions),
			fmt.Sprint(cfg.variables),
			fmt.Sprint(cfg.structures),
			fmt.Sprint(cfg.usesPerFunc),
			humanize.Comma(int64(cfg.iterations)),
			fmt.Sprint(best.duration),
			humanize.Comma(best.compiles),
			humanize.Comma(best.stale),
			humanize.Comma(best.watchpointJettisons),
			humanize.Comma(best.exitJettisons),
			humanize.Comma(int64(best.countableExits)),
			humanize.Comma(int64(installRate)),
		})
	}
	table.Render()
	return nil
}

type simConfig struct {
	name          string  // friendly name for the test, should be unique
	functions     int     // functions that get compiled and recompiled
	variables     int     // global variables functions speculate on
	structures    int     // object shapes functions speculate on
	usesPerFunc   int     // variables and shapes each function reads
	writeFraction float64 // chance per iteration that a variable changes value
	shapeFraction float64 // chance per iteration that a shape gains a property
	exitFraction  float64 // chance per call that the function exits
	iterations    int
	threshold     uint32
}

func (cfg *simConfig) title() string {
	sb := strings.Builder{}
	sb.WriteString(cfg.name)
	if cfg.writeFraction > 0 {
		sb.WriteString(fmt.Sprintf(" writes %0.1f%%", 100*cfg.writeFraction))
	}
	if cfg.shapeFraction > 0 {
		sb.WriteString(fmt.Sprintf(" shapes %0.1f%%", 100*cfg.shapeFraction))
	}
	return sb.String()
}

type simResult struct {
	duration            time.Duration
	compiles            int64
	installs            int64
	stale               int64
	watchpointJettisons int64
	exitJettisons       int64
	countableExits      uint64
}

type function struct {
	name   string
	vars   []int
	shapes []int
	code   *codeblock.CodeBlock
	plan   *codeblock.Plan
}

type world struct {
	vars   []*object.Variable[int]
	shapes []*object.Structure

	// Retired entities may still be read by running plans, so they are
	// destroyed once those plans are finalized.
	retiredVars   []*object.Variable[int]
	retiredShapes []*object.Structure
}

// replaceVariable swaps out a variable whose inference broke, the way a
// program rebinds a global.
func (w *world) replaceVariable(i, value int) {
	w.retiredVars = append(w.retiredVars, w.vars[i])
	w.vars[i] = &object.Variable[int]{}
	w.vars[i].Write(value)
}

func (w *world) transition(i int, property string) {
	next := w.shapes[i].AddProperty(property)
	w.retiredShapes = append(w.retiredShapes, w.shapes[i])
	w.shapes[i] = next
}

func (w *world) destroyRetired() {
	for _, v := range w.retiredVars {
		v.Destroy()
	}
	for _, s := range w.retiredShapes {
		s.Destroy()
	}
	w.retiredVars = w.retiredVars[:0]
	w.retiredShapes = w.retiredShapes[:0]
}

func (res *simResult) retire(cb *codeblock.CodeBlock) {
	switch cb.JettisonReason() {
	case codeblock.JettisonDueToWatchpoint:
		res.watchpointJettisons++
	case codeblock.JettisonDueToOSRExit:
		res.exitJettisons++
	}
}

func runSim(ctx context.Context, cfg *simConfig) *simResult {
	random := rand.New(rand.NewSource(0))
	stats := &exitkind.Stats{}
	vm := codeblock.NewVM(codeblock.Options{ExitCountThreshold: cfg.threshold, Stats: stats})
	kinds := exitkind.All()[1:]

	w := &world{
		vars:   make([]*object.Variable[int], cfg.variables),
		shapes: make([]*object.Structure, cfg.structures),
	}
	for i := range w.vars {
		w.vars[i] = &object.Variable[int]{}
		w.vars[i].Write(i)
	}
	for i := range w.shapes {
		w.shapes[i] = object.NewStructure(fmt.Sprintf("Shape%d", i))
	}

	funcs := make([]*function, cfg.functions)
	for i := range funcs {
		f := &function{name: fmt.Sprintf("f%d", i)}
		for u := 0; u < cfg.usesPerFunc; u++ {
			if random.Intn(2) == 0 {
				f.vars = append(f.vars, random.Intn(cfg.variables))
			} else {
				f.shapes = append(f.shapes, random.Intn(cfg.structures))
			}
		}
		funcs[i] = f
	}

	res := &simResult{}
	start := time.Now()
	for i := 0; i < cfg.iterations; i++ {
		for _, f := range funcs {
			if f.code != nil && !f.code.IsValid() {
				res.retire(f.code)
				f.code = nil
			}
			if f.code == nil && f.plan == nil {
				f.plan = vm.Compile(f.name, f.name, speculate(w, f))
				res.compiles++
			}
		}

		// Writes race the compilations started above.
		if random.Float64() < cfg.writeFraction {
			v := random.Intn(cfg.variables)
			w.vars[v].Write(i + cfg.variables)
			w.replaceVariable(v, i)
		}
		if random.Float64() < cfg.shapeFraction {
			w.transition(random.Intn(cfg.structures), fmt.Sprintf("p%d", i))
		}

		for _, f := range funcs {
			if f.plan == nil {
				continue
			}
			cb, err := vm.Finalize(ctx, f.plan)
			f.plan = nil
			switch {
			case errors.Is(err, codeblock.ErrPlanInvalidated):
				res.stale++
				continue
			case err != nil:
				log.Panic(err)
			}
			f.code = cb
			res.installs++
		}
		w.destroyRetired()

		for _, f := range funcs {
			if f.code == nil || !f.code.IsValid() {
				continue
			}
			if random.Float64() < cfg.exitFraction {
				f.code.OSRExit(uint32(random.Intn(64)), kinds[random.Intn(len(kinds))])
			}
		}
	}
	res.duration = time.Since(start)

	for _, f := range funcs {
		if f.code != nil {
			res.retire(f.code)
		}
	}
	if n := len(vm.CodeBlocks()); n > cfg.functions {
		log.Panicf("%d live code blocks for %d functions", n, cfg.functions)
	}
	res.countableExits = stats.Countable()
	return res
}

func speculate(w *world, f *function) codeblock.SpeculateFunc {
	vars := make([]*object.Variable[int], len(f.vars))
	for i, v := range f.vars {
		vars[i] = w.vars[v]
	}
	shapes := make([]*object.Structure, len(f.shapes))
	for i, s := range f.shapes {
		shapes[i] = w.shapes[s]
	}

	return func(desired *codeblock.DesiredWatchpoints) error {
		for _, v := range vars {
			if _, ok := v.InferredValue(); ok {
				desired.AddInline(v.Watchpoints())
			}
		}
		for _, s := range shapes {
			if set := s.TransitionWatchpoints(); set.IsStillValid() {
				desired.AddSet(set)
			}
		}
		return nil
	}
}
