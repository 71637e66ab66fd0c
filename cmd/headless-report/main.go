package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Garsondee/zone-crowd/internal/crowd"
	"github.com/Garsondee/zone-crowd/internal/scene"
	"github.com/atotto/clipboard"
)

type runStats struct {
	runIndex int
	seed     int64

	finalAgents  int
	finalTarget  int
	reachedTick  int // first tick at target, -1 if never
	maxOvershoot int

	spawned    int
	trimmed    int
	fallbacks  int
	repaths    int
	deferred   int
	bestEffort int
	bumps      int
	maxRepaths int // most repaths in a single tick

	maxOverlapPct float64
	msPerTick     float64

	windowSummary *crowd.WindowReport
}

type runParams struct {
	ticks    int
	waiting  int     // < 0: pressure-driven
	pressure float64 // fixed pressure when waiting < 0
	orbit    float64 // player circuit radius, 0 = stationary
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var agents int
	var pressure float64
	var orbit float64
	var copyOut bool
	var opts scene.Options

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 3600, "ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.IntVar(&agents, "agents", -1, "waiting count to match; negative uses -pressure")
	flag.Float64Var(&pressure, "pressure", 0.5, "fixed pressure in [0,1] when -agents is negative")
	flag.Float64Var(&orbit, "orbit", 0, "walk the player in a circle of this radius around the spawn point")
	flag.StringVar(&opts.MaskPath, "mask", "", "mask image; empty uses the generated demo")
	flag.StringVar(&opts.ConfigPath, "config", "", "YAML tunables file")
	flag.BoolVar(&copyOut, "copy", false, "copy the report to the clipboard")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}

	sc, err := scene.Load(opts)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}

	var buf strings.Builder
	out := io.MultiWriter(os.Stdout, &buf)

	params := runParams{ticks: ticks, waiting: agents, pressure: pressure, orbit: orbit}
	fmt.Fprintf(out, "=== Headless Crowd Report ===\n")
	fmt.Fprintf(out, "world=%.0fx%.0f grid=%dx%d walkable=%d runs=%d ticks=%d seed_base=%d seed_step=%d %s\n\n",
		sc.World.W, sc.World.H, sc.Grid().Cols(), sc.Grid().Rows(), sc.Grid().WalkableCount(),
		runs, ticks, seedBase, seedStep, params.mode())

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats := runOnce(sc, params, i+1, seed)
		all = append(all, stats)
		printRun(out, stats)
	}
	printAggregate(out, summarize(all))

	if copyOut {
		if err := clipboard.WriteAll(buf.String()); err != nil {
			fmt.Printf("warning: clipboard: %v\n", err)
		} else {
			fmt.Println("(report copied to clipboard)")
		}
	}
}

func (p runParams) mode() string {
	if p.waiting >= 0 {
		return fmt.Sprintf("mode=waiting(%d)", p.waiting)
	}
	return fmt.Sprintf("mode=pressure(%.2f)", p.pressure)
}

func runOnce(sc *scene.Scene, p runParams, runIndex int, seed int64) runStats {
	simOpts := []crowd.SimOption{
		crowd.WithConfig(sc.Config),
		crowd.WithGrid(sc.Grid(), sc.World),
		crowd.WithSeed(seed),
		crowd.WithReporter(0),
	}
	if p.waiting >= 0 {
		simOpts = append(simOpts, crowd.WithWaiting(p.waiting))
	} else {
		simOpts = append(simOpts, crowd.WithPressure(p.pressure))
	}
	if p.orbit > 0 {
		simOpts = append(simOpts, crowd.WithPlayerCircuit(sc.Spawn.X, sc.Spawn.Y, p.orbit, 12))
	} else {
		simOpts = append(simOpts, crowd.WithPlayer(sc.Spawn.X, sc.Spawn.Y))
	}
	ts := crowd.NewTestSim(simOpts...)

	rs := runStats{runIndex: runIndex, seed: seed, reachedTick: -1}
	start := time.Now()
	for i := 0; i < p.ticks; i++ {
		ts.RunTicks(1)
		observeTick(&rs, ts.Ctx.Stats)
		if ov := ts.Ctx.OverlapFraction() * 100; ov > rs.maxOverlapPct {
			rs.maxOverlapPct = ov
		}
	}
	rs.msPerTick = float64(time.Since(start).Microseconds()) / 1000 / float64(p.ticks)
	rs.finalAgents = len(ts.Agents())
	rs.finalTarget = ts.Ctx.Stats.Target
	rs.windowSummary = ts.Reporter.WindowSummary()
	return rs
}

// observeTick folds one tick's counters into rs.
func observeTick(rs *runStats, s crowd.TickStats) {
	rs.spawned += s.Spawned
	rs.trimmed += s.Trimmed
	rs.fallbacks += s.SpawnFallbacks
	rs.repaths += s.Repaths
	rs.deferred += s.Deferred
	rs.bestEffort += s.BestEffort
	rs.bumps += s.Bumps
	rs.maxRepaths = max(rs.maxRepaths, s.Repaths)
	if over := s.Agents - s.Target; over > rs.maxOvershoot && s.Trimmed == 0 {
		rs.maxOvershoot = over
	}
	if rs.reachedTick < 0 && s.Agents == s.Target {
		rs.reachedTick = s.Tick
	}
}

func printRun(w io.Writer, rs runStats) {
	fmt.Fprintf(w, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Fprintf(w, "population: final=%d target=%d reached_at=%s max_overshoot=%d\n",
		rs.finalAgents, rs.finalTarget, tickString(rs.reachedTick), rs.maxOvershoot)
	fmt.Fprintf(w, "event_totals: spawned=%d trimmed=%d spawn_fallback=%d bumps=%d\n",
		rs.spawned, rs.trimmed, rs.fallbacks, rs.bumps)
	fmt.Fprintf(w, "pathing: repaths=%d deferred=%d best_effort=%d max_per_tick=%d\n",
		rs.repaths, rs.deferred, rs.bestEffort, rs.maxRepaths)
	fmt.Fprintf(w, "spacing: max_overlap=%.2f%% cost=%.3fms/tick\n", rs.maxOverlapPct, rs.msPerTick)
	if rs.windowSummary != nil {
		fmt.Fprint(w, rs.windowSummary.Format())
	}
	fmt.Fprintln(w)
}

type aggregate struct {
	runs          int
	avgSpawned    float64
	avgTrimmed    float64
	avgFallbacks  float64
	avgRepaths    float64
	avgDeferred   float64
	avgBestEffort float64
	avgBumps      float64
	avgMsPerTick  float64
	maxOverlapPct float64
	maxOvershoot  int
	maxRepaths    int
	reachedRuns   int
	reachedTicks  []int
}

func summarize(all []runStats) aggregate {
	ag := aggregate{runs: len(all)}
	var spawned, trimmed, fallbacks, repaths, deferred, bestEffort, bumps int
	var ms float64
	for _, rs := range all {
		spawned += rs.spawned
		trimmed += rs.trimmed
		fallbacks += rs.fallbacks
		repaths += rs.repaths
		deferred += rs.deferred
		bestEffort += rs.bestEffort
		bumps += rs.bumps
		ms += rs.msPerTick
		ag.maxOverlapPct = max(ag.maxOverlapPct, rs.maxOverlapPct)
		ag.maxOvershoot = max(ag.maxOvershoot, rs.maxOvershoot)
		ag.maxRepaths = max(ag.maxRepaths, rs.maxRepaths)
		if rs.reachedTick >= 0 {
			ag.reachedRuns++
			ag.reachedTicks = append(ag.reachedTicks, rs.reachedTick)
		}
	}
	n := len(all)
	ag.avgSpawned = avg(spawned, n)
	ag.avgTrimmed = avg(trimmed, n)
	ag.avgFallbacks = avg(fallbacks, n)
	ag.avgRepaths = avg(repaths, n)
	ag.avgDeferred = avg(deferred, n)
	ag.avgBestEffort = avg(bestEffort, n)
	ag.avgBumps = avg(bumps, n)
	if n > 0 {
		ag.avgMsPerTick = ms / float64(n)
	}
	return ag
}

func printAggregate(w io.Writer, ag aggregate) {
	fmt.Fprintln(w, "=== Aggregate ===")
	fmt.Fprintf(w, "runs=%d reached_target=%d/%d avg_reached_at=%s\n",
		ag.runs, ag.reachedRuns, ag.runs, avgTickString(ag.reachedTicks))
	fmt.Fprintf(w, "avg_events_per_run: spawned=%.1f trimmed=%.1f spawn_fallback=%.1f bumps=%.1f\n",
		ag.avgSpawned, ag.avgTrimmed, ag.avgFallbacks, ag.avgBumps)
	fmt.Fprintf(w, "avg_pathing_per_run: repaths=%.1f deferred=%.1f best_effort=%.1f max_per_tick=%d\n",
		ag.avgRepaths, ag.avgDeferred, ag.avgBestEffort, ag.maxRepaths)
	fmt.Fprintf(w, "worst: overlap=%.2f%% overshoot=%d  avg_cost=%.3fms/tick\n",
		ag.maxOverlapPct, ag.maxOvershoot, ag.avgMsPerTick)
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func tickString(t int) string {
	if t < 0 {
		return "never"
	}
	return fmt.Sprintf("T=%d", t)
}

