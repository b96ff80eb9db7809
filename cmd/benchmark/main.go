package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/watchparty/watchpoint"
	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

const (
	itersKey   = "iters"
	profileKey = "pgo"
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Benchmark watchpoint sets",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  itersKey,
				Usage: "Samples per benchmark",
				Value: 100,
			},
			&cli.StringFlag{
				Name:  profileKey,
				Usage: "Write a CPU profile here, empty to skip",
				Value: "default.pgo",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

var (
	ww = []int{1, 10, 100, 1_000}
	hh = []int{1, 10, 100, 1_000}
)

func run(ctx context.Context, cmd *cli.Command) error {
	if path := cmd.String(profileKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	iters := int(cmd.Uint(itersKey))
	log.Printf("warming up")
	benchmarkFire(iters, false)

	benchmarkFire(iters, true)
	benchmarkInline(iters)
	return nil
}

func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max", "alloc"})
	return tbl
}

func appendCalc(tbl table.Writer, name string, tach *tachymeter.Tachymeter, alloc uint64) {
	calc := tach.Calc()
	tbl.AppendRow(table.Row{
		name,
		calc.Time.Avg,
		calc.Time.Min,
		calc.Time.P75,
		calc.Time.P99,
		calc.Time.Max,
		humanize.Bytes(alloc),
	})
}

func totalAlloc() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.TotalAlloc
}

// benchmarkFire times invalidating w sets that each carry h watchpoints.
func benchmarkFire(iters int, shouldRender bool) {
	tbl := newTable("Watchpoint Sets")

	fired := 0
	firer := watchpoint.FirerFunc(func(watchpoint.FireDetail) {
		fired++
	})
	detail := watchpoint.Reason("benchmark")

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})
			var alloc uint64

			for i := 0; i < iters; i++ {
				sets := make([]*watchpoint.Set, w)
				for j := range sets {
					sets[j] = watchpoint.NewSet(watchpoint.InitializedWatching)
					for k := 0; k < h; k++ {
						sets[j].Add(watchpoint.NewWatchpoint(firer))
					}
				}

				before := totalAlloc()
				start := time.Now()
				for _, s := range sets {
					s.NotifyWrite(detail)
				}
				tach.AddTime(time.Since(start))
				alloc += totalAlloc() - before

				for _, s := range sets {
					s.Deref()
				}
			}

			if fired != w*h*iters {
				log.Panicf("fired %d watchpoints, want %d", fired, w*h*iters)
			}
			fired = 0
			appendCalc(tbl, fmt.Sprintf("fire: %d * %d", w, h), tach, alloc/uint64(iters))
		}
	}

	if shouldRender {
		tbl.Render()
	}
}

// benchmarkInline compares the thin fast path with promotion to a fat set.
func benchmarkInline(iters int) {
	tbl := newTable("Inline Watchpoint Sets")
	const batch = 1_000

	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	var (
		alloc uint64
		sink  int
	)
	for i := 0; i < iters; i++ {
		sets := make([]watchpoint.InlineSet, batch)
		before := totalAlloc()
		start := time.Now()
		for j := range sets {
			sets[j].Touch()
			if sets[j].IsStillValid() {
				sink++
			}
			sets[j].Invalidate(nil)
		}
		tach.AddTime(time.Since(start))
		alloc += totalAlloc() - before
	}
	appendCalc(tbl, fmt.Sprintf("thin: touch+query+invalidate * %d", batch), tach, alloc/uint64(iters))

	tach = tachymeter.New(&tachymeter.Config{Size: iters})
	alloc = 0
	firer := watchpoint.FirerFunc(func(watchpoint.FireDetail) {
		sink++
	})
	for i := 0; i < iters; i++ {
		sets := make([]watchpoint.InlineSet, batch)
		before := totalAlloc()
		start := time.Now()
		for j := range sets {
			sets[j].Touch()
			sets[j].Add(watchpoint.NewWatchpoint(firer))
			sets[j].Invalidate(nil)
		}
		tach.AddTime(time.Since(start))
		alloc += totalAlloc() - before
		for j := range sets {
			sets[j].Destroy()
		}
	}
	appendCalc(tbl, fmt.Sprintf("fat: touch+add+invalidate * %d", batch), tach, alloc/uint64(iters))

	if sink != 2*batch*iters {
		log.Panicf("sink %d, want %d", sink, 2*batch*iters)
	}
	tbl.Render()
}
