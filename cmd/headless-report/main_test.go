package main

import (
	"strings"
	"testing"

	"github.com/Garsondee/zone-crowd/internal/crowd"
	"github.com/Garsondee/zone-crowd/internal/scene"
)

func TestAvg(t *testing.T) {
	if got := avg(10, 4); got != 2.5 {
		t.Fatalf("avg(10,4)=%v, want 2.5", got)
	}
	if got := avg(10, 0); got != 0 {
		t.Fatalf("avg with n=0 should be 0, got %v", got)
	}
}

func TestAvgTickString(t *testing.T) {
	if got := avgTickString(nil); got != "n/a" {
		t.Fatalf("expected n/a for empty, got %q", got)
	}
	if got := avgTickString([]int{10, 20, 31}); got != "20.3" {
		t.Fatalf("expected 20.3, got %q", got)
	}
}

func TestObserveTick_TracksReachAndOvershoot(t *testing.T) {
	rs := runStats{reachedTick: -1}
	observeTick(&rs, crowd.TickStats{Tick: 1, Agents: 4, Target: 20, Spawned: 4, Repaths: 4})
	observeTick(&rs, crowd.TickStats{Tick: 2, Agents: 8, Target: 20, Spawned: 4, Repaths: 8, Deferred: 2})
	if rs.reachedTick != -1 {
		t.Fatalf("target not reached yet, reachedTick=%d", rs.reachedTick)
	}
	observeTick(&rs, crowd.TickStats{Tick: 3, Agents: 20, Target: 20})
	observeTick(&rs, crowd.TickStats{Tick: 4, Agents: 20, Target: 10, Trimmed: 10})
	if rs.reachedTick != 3 {
		t.Fatalf("reachedTick=%d, want 3", rs.reachedTick)
	}
	if rs.spawned != 8 || rs.repaths != 12 || rs.deferred != 2 || rs.maxRepaths != 8 {
		t.Fatalf("counters = %+v", rs)
	}
	if rs.maxOvershoot != 0 {
		t.Fatalf("a trimming tick is not overshoot, got %d", rs.maxOvershoot)
	}
	observeTick(&rs, crowd.TickStats{Tick: 5, Agents: 12, Target: 10})
	if rs.maxOvershoot != 2 {
		t.Fatalf("maxOvershoot=%d, want 2", rs.maxOvershoot)
	}
}

func TestSummarize(t *testing.T) {
	all := []runStats{
		{spawned: 40, repaths: 100, maxOverlapPct: 1.5, maxRepaths: 8, reachedTick: 30},
		{spawned: 20, repaths: 50, maxOverlapPct: 3, maxRepaths: 6, reachedTick: -1, maxOvershoot: 1},
	}
	ag := summarize(all)
	if ag.runs != 2 || ag.avgSpawned != 30 || ag.avgRepaths != 75 {
		t.Fatalf("unexpected averages: %+v", ag)
	}
	if ag.maxOverlapPct != 3 || ag.maxRepaths != 8 || ag.maxOvershoot != 1 {
		t.Fatalf("unexpected worst-case values: %+v", ag)
	}
	if ag.reachedRuns != 1 || len(ag.reachedTicks) != 1 || ag.reachedTicks[0] != 30 {
		t.Fatalf("reached = %d %v", ag.reachedRuns, ag.reachedTicks)
	}
}

func TestRunOnce_DemoSceneIsDeterministic(t *testing.T) {
	sc, err := scene.Load(scene.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p := runParams{ticks: 240, waiting: 30}
	a := runOnce(sc, p, 1, 7)
	b := runOnce(sc, p, 1, 7)
	if a.finalAgents != b.finalAgents || a.spawned != b.spawned || a.repaths != b.repaths || a.bumps != b.bumps {
		t.Fatalf("same seed diverged: %+v vs %+v", a, b)
	}
	if a.finalTarget != 30 || a.finalAgents != 30 {
		t.Fatalf("final agents=%d target=%d, want 30/30", a.finalAgents, a.finalTarget)
	}
	if a.reachedTick < 0 {
		t.Fatal("run never reached its target")
	}
	if a.windowSummary == nil {
		t.Fatal("expected a window summary")
	}

	var sb strings.Builder
	printRun(&sb, a)
	printAggregate(&sb, summarize([]runStats{a, b}))
	out := sb.String()
	for _, want := range []string{"--- Run 1 (seed=7) ---", "population: final=30 target=30", "=== Aggregate ===", "reached_target=2/2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}
