// Package bench drives latency experiments over the barx barriers:
// threads × workloads × trials, with per-trial cache wiping, CPU
// pinning and confidence-interval statistics, reproducing the original
// measurement discipline of the suite.
package bench

import (
	"fmt"
	"io"
	"math/rand/v2"
	"runtime"
	"sort"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/llxisdsh/pb"
	"golang.org/x/sync/errgroup"

	"github.com/llxisdsh/barx"
	"github.com/llxisdsh/barx/internal/opt"
)

// An Awaiter is one participant's bound arrival call: it blocks until
// the episode completes. A Maker returns one per participant, all
// backed by a freshly constructed barrier.
type Awaiter func()

// A Maker constructs a fresh barrier session for one trial.
type Maker func(fanout int, loc barx.Locality) ([]Awaiter, error)

// algorithms maps tag -> Maker. Registration normally happens in init
// but the map is safe for concurrent Register/Lookup at any point.
var algorithms pb.MapOf[string, Maker]

// Register makes a barrier algorithm selectable by tag.
func Register(tag string, mk Maker) {
	algorithms.Store(tag, mk)
}

// Lookup returns the Maker registered under tag.
func Lookup(tag string) (Maker, bool) {
	return algorithms.Load(tag)
}

// Tags returns the registered algorithm tags, sorted.
func Tags() []string {
	var tags []string
	algorithms.Range(func(tag string, _ Maker) bool {
		tags = append(tags, tag)
		return true
	})
	sort.Strings(tags)
	return tags
}

// paddedSense gives each centralized-barrier worker a private sense
// slot on its own cache line, so neighboring workers' episode flips do
// not share a line.
type paddedSense struct {
	v bool
	_ [(opt.CacheLineSize_ - unsafe.Sizeof(false)%opt.CacheLineSize_) % opt.CacheLineSize_]byte
}

func init() {
	Register("centralized", func(fanout int, _ barx.Locality) ([]Awaiter, error) {
		b := barx.NewCentralized(fanout)
		senses := make([]paddedSense, fanout)
		aws := make([]Awaiter, fanout)
		for i := range aws {
			s := &senses[i].v
			aws[i] = func() { b.Await(s) }
		}
		return aws, nil
	})
	Register("tree_local", func(fanout int, loc barx.Locality) ([]Awaiter, error) {
		nodes, err := barx.Layout(fanout, loc)
		if err != nil {
			return nil, err
		}
		aws := make([]Awaiter, fanout)
		for i := range aws {
			aws[i] = nodes[i].Await
		}
		return aws, nil
	})
	Register("tree_global", func(fanout int, loc barx.Locality) ([]Awaiter, error) {
		b := barx.NewTreeGlobal()
		nodes, err := barx.LayoutGlobal(fanout, loc)
		if err != nil {
			return nil, err
		}
		aws := make([]Awaiter, fanout)
		for i := range aws {
			n := nodes[i]
			aws[i] = func() { b.Await(n) }
		}
		return aws, nil
	})
	Register("parking", func(fanout int, _ barx.Locality) ([]Awaiter, error) {
		b := barx.NewParking(fanout)
		senses := make([]paddedSense, fanout)
		aws := make([]Awaiter, fanout)
		for i := range aws {
			s := &senses[i].v
			aws[i] = func() { b.Await(s) }
		}
		return aws, nil
	})
}

// DefaultWorkloads is the workload set the runtime exercises. The
// canonical table header enumerates values up to 1000000; the gap is
// configuration, not measurement.
var DefaultWorkloads = []uint64{1, 10, 100}

// Config parameterizes one experiment run.
type Config struct {
	// Algorithm is a registered tag: centralized, tree_local,
	// tree_global or parking.
	Algorithm string
	// Locality selects the tree layout variant. Ignored by the
	// non-tree algorithms.
	Locality barx.Locality
	// MaxThreads caps the swept participant counts 1..MaxThreads.
	// Defaults to 8.
	MaxThreads int
	// Workloads to sweep. Defaults to DefaultWorkloads.
	Workloads []uint64
	// Trials per (threads, workload) cell. Defaults to 30.
	Trials int
	// Episodes per trial and worker. Defaults to 10000.
	Episodes int
	// Seed roots the per-worker workload seeds. Every trial of a cell
	// replays the same seeds. Defaults to 1337.
	Seed uint64
	// Progress, when non-nil, receives experiment progress lines.
	Progress io.Writer
	// DisablePinning skips CPU affinity, for hosts where the sweep's
	// core ids do not exist.
	DisablePinning bool
}

func (c Config) withDefaults() Config {
	if c.MaxThreads == 0 {
		c.MaxThreads = 8
	}
	if c.Workloads == nil {
		c.Workloads = DefaultWorkloads
	}
	if c.Trials == 0 {
		c.Trials = 30
	}
	if c.Episodes == 0 {
		c.Episodes = 10000
	}
	if c.Seed == 0 {
		c.Seed = 1337
	}
	if c.Progress == nil {
		c.Progress = io.Discard
	}
	return c
}

// Cell is the measured latency of one (threads, workload) cell:
// the mean over the trials with its confidence bounds, in nanoseconds.
type Cell struct {
	Lower float64 `json:"lower"`
	Mean  float64 `json:"mean"`
	Upper float64 `json:"upper"`
}

// Results is a full experiment table. Cells is indexed by
// [threads-1][workload index].
type Results struct {
	Algorithm string   `json:"algorithm"`
	Locality  string   `json:"locality"`
	Workloads []uint64 `json:"workloads"`
	Cells     [][]Cell `json:"cells"`
}

// Run executes the experiment described by cfg and returns the latency
// table. The run is fatal on the first configuration, affinity or
// worker error; partial tables are not returned.
func Run(cfg Config) (*Results, error) {
	cfg = cfg.withDefaults()

	maker, ok := Lookup(cfg.Algorithm)
	if !ok {
		return nil, fmt.Errorf("bench: unknown algorithm %q, have %v", cfg.Algorithm, Tags())
	}

	res := &Results{
		Algorithm: cfg.Algorithm,
		Locality:  cfg.Locality.String(),
		Workloads: append([]uint64(nil), cfg.Workloads...),
		Cells:     make([][]Cell, cfg.MaxThreads),
	}
	for i := range res.Cells {
		res.Cells[i] = make([]Cell, len(cfg.Workloads))
	}

	wiper := NewWiper()

	fmt.Fprintln(cfg.Progress, "Starting the experiment")

	for threads := 1; threads <= cfg.MaxThreads; threads++ {
		for wi, workload := range cfg.Workloads {
			fmt.Fprintf(cfg.Progress, "Executing experiment with %d threads and %d workload parameter.\n", threads, workload)

			// Each trial of this cell hands every worker the same
			// seed again; reproducibility requires it.
			rnd := rand.New(rand.NewPCG(cfg.Seed, 0))
			seeds := make([]uint64, threads)
			for i := range seeds {
				seeds[i] = rnd.Uint64()
			}

			iv := NewInterval(cfg.Trials)
			for trial := 0; trial < cfg.Trials; trial++ {
				elapsed, err := runTrial(cfg, maker, threads, workload, seeds, wiper)
				if err != nil {
					return nil, err
				}
				iv.Add(elapsed)
			}

			lower, mean, upper := iv.Bounds()
			res.Cells[threads-1][wi] = Cell{Lower: lower, Mean: mean, Upper: upper}
		}
	}

	return res, nil
}

// runTrial measures one trial: fresh barrier, cold caches, threads
// pinned worker id -> core id, wall time from start-flag release until
// every worker has finished its episodes.
func runTrial(cfg Config, maker Maker, threads int, workload uint64, seeds []uint64, wiper *Wiper) (float64, error) {
	awaiters, err := maker(threads, cfg.Locality)
	if err != nil {
		return 0, err
	}
	if len(awaiters) != threads {
		return 0, fmt.Errorf("bench: maker for %q returned %d awaiters, want %d", cfg.Algorithm, len(awaiters), threads)
	}

	wiper.ClearCaches()

	var start atomic.Bool
	var ready atomic.Int32

	var g errgroup.Group
	for id := 0; id < threads; id++ {
		await := awaiters[id]
		work := NewWorkload(workload, seeds[id])
		core := id
		g.Go(func() error {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()

			// A failed pin must not abandon the rendezvous: the trial
			// runs to completion unpinned and the error aborts the run
			// afterwards.
			var pinErr error
			if !cfg.DisablePinning {
				pinErr = Pin(core)
			}

			ready.Add(1)
			for !start.Load() {
			}

			for e := 0; e < cfg.Episodes; e++ {
				work.Run()
				await()
			}
			return pinErr
		})
	}

	// Pinning stays outside the measured window.
	for ready.Load() != int32(threads) {
		runtime.Gosched()
	}

	begin := time.Now()
	start.Store(true)
	err = g.Wait()
	elapsed := float64(time.Since(begin).Nanoseconds())
	if err != nil {
		return 0, err
	}
	return elapsed, nil
}
