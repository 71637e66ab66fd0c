package crowd

import (
	"math"
	"strings"
	"testing"

	"github.com/Garsondee/zone-crowd/internal/config"
	"github.com/Garsondee/zone-crowd/internal/mask"
	"github.com/Garsondee/zone-crowd/internal/nav"
)

func TestTick_ClampsLargeDt(t *testing.T) {
	ts := NewTestSim()
	Tick(ts.Ctx, 5, ts.Input)
	if got, want := ts.Ctx.Now, ts.Config.Crowd.MaxDtMs; math.Abs(got-want) > 1e-9 {
		t.Fatalf("clock advanced %.2f ms, want %.2f", got, want)
	}
	Tick(ts.Ctx, -1, ts.Input)
	if got, want := ts.Ctx.Now, ts.Config.Crowd.MaxDtMs; math.Abs(got-want) > 1e-9 {
		t.Fatalf("negative dt moved the clock to %.2f", got)
	}
	if ts.Ctx.Frame != 2 {
		t.Fatalf("Frame = %d, want 2", ts.Ctx.Frame)
	}
}

func TestTick_FadeIn(t *testing.T) {
	ts := NewTestSim(WithWaiting(1))
	ts.RunTicks(1)
	a := ts.Agents()[0]
	if a.State != AgentSpawning || a.Alpha <= 0 || a.Alpha >= 1 {
		t.Fatalf("after one tick: state %s alpha %.3f", a.State, a.Alpha)
	}

	ts.RunTicks(30) // > 400 ms
	if a.State != AgentActive || a.Alpha != 1 {
		t.Fatalf("after fade: state %s alpha %.3f", a.State, a.Alpha)
	}
}

func TestTick_Deterministic(t *testing.T) {
	run := func() []AgentView {
		ts := NewTestSim(WithSeed(99), WithPressure(0.6), WithPlayerCircuit(240, 180, 40, 6))
		ts.RunTicks(300)
		return ts.Ctx.Snapshot()
	}
	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("agent counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("agent %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSnapshot_MatchesAgents(t *testing.T) {
	ts := NewTestSim(WithAgents(3))
	ts.Agents()[1].X = 123
	views := ts.Ctx.Snapshot()
	if len(views) != 3 {
		t.Fatalf("got %d views, want 3", len(views))
	}
	for i, v := range views {
		a := ts.Agents()[i]
		if v.ID != a.ID || v.X != a.X || v.Y != a.Y || v.Alpha != a.Alpha {
			t.Fatalf("view %d = %+v, agent %+v", i, v, a)
		}
	}
	views[0].X = -1
	if ts.Agents()[0].X == -1 {
		t.Fatal("snapshot aliases agent state")
	}
}

func TestFrameClock_Delta(t *testing.T) {
	c := NewFrameClock(33)
	if got := c.Delta(1000); got != 0 {
		t.Fatalf("first Delta = %.3f, want 0", got)
	}
	if got := c.Delta(1016); math.Abs(got-0.016) > 1e-9 {
		t.Fatalf("Delta = %.4f, want 0.016", got)
	}
	if got := c.Delta(3000); got != 0.033 {
		t.Fatalf("Delta after a stall = %.4f, want clamp 0.033", got)
	}
	if got := c.Delta(2000); got != 0 {
		t.Fatalf("Delta going backwards = %.4f, want 0", got)
	}
}

func TestStepPlayer(t *testing.T) {
	grid := nav.FromBitmap(3, 1, 10, []bool{true, true, false})
	m := DefaultPlayerMotion()

	x, y, moving := StepPlayer(grid, 5, 5, 1, 0, false, 0.01, m)
	if !moving || math.Abs(x-7.2) > 1e-9 || y != 5 {
		t.Fatalf("walk: (%.2f,%.2f) moving=%v", x, y, moving)
	}

	x, _, _ = StepPlayer(grid, 5, 5, 1, 0, true, 0.01, m)
	if math.Abs(x-(5+2.2*m.SprintMul)) > 1e-9 {
		t.Fatalf("sprint: x=%.3f", x)
	}

	x, y, _ = StepPlayer(grid, 5, 5, 1, 1, false, 0.01, m)
	if d := math.Hypot(x-5, y-5); math.Abs(d-2.2) > 1e-9 {
		t.Fatalf("diagonal moved %.3f, want normalised 2.2", d)
	}

	x, y, moving = StepPlayer(grid, 19, 5, 1, 0, false, 0.1, m)
	if moving || x != 19 || y != 5 {
		t.Fatalf("into wall: (%.2f,%.2f) moving=%v", x, y, moving)
	}

	if _, _, moving = StepPlayer(grid, 5, 5, 0, 0, false, 0.1, m); moving {
		t.Fatal("no input reported moving")
	}
	if x, _, moving = StepPlayer(nil, 5, 5, 1, 0, false, 0.1, m); !moving || x <= 5 {
		t.Fatal("nil grid should not block movement")
	}
}

func TestStepPlayer_SlidesAlongWall(t *testing.T) {
	// Right-hand column blocked: pressing down-right keeps the y component.
	grid := nav.FromBitmap(2, 2, 10, []bool{true, false, true, false})
	m := DefaultPlayerMotion()

	x, y, moving := StepPlayer(grid, 9, 5, 1, 1, false, 0.01, m)
	want := 5 + 2.2/math.Sqrt2
	if !moving || x != 9 || math.Abs(y-want) > 1e-9 {
		t.Fatalf("slide: (%.3f,%.3f) moving=%v, want (9,%.3f)", x, y, moving, want)
	}

	// Blocked below as well: the x component alone is also refused.
	grid = nav.FromBitmap(2, 2, 10, []bool{true, false, false, false})
	if x, y, moving = StepPlayer(grid, 9, 9, 1, 1, false, 0.01, m); moving || x != 9 || y != 9 {
		t.Fatalf("corner: (%.3f,%.3f) moving=%v, want held", x, y, moving)
	}
}

func TestNewContext_RandSeedIsDeterministic(t *testing.T) {
	cfg := config.Default()
	grid := nav.Open(40, 30, 12)
	run := func() []AgentView {
		sc := NewContext(cfg, grid, WithRandSeed(21), WithPressureSource(FixedPressure(0.5)))
		for i := 0; i < 120; i++ {
			Tick(sc, 1.0/60, TickInput{PlayerX: 240, PlayerY: 180})
		}
		return sc.Snapshot()
	}
	a, b := run(), run()
	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("agent counts %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("agent %d diverged: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestTestSim_FromMask(t *testing.T) {
	img := mask.Demo(480, 360, 4)
	ts := NewTestSim(WithMaskImage(img), WithSeed(4), WithPressure(0.4))
	if ts.World.W != 480 || ts.World.H != 360 {
		t.Fatalf("world %.0fx%.0f, want mask size", ts.World.W, ts.World.H)
	}
	if ts.Grid.WalkableCount() == 0 {
		t.Fatal("demo mask produced no walkable cells")
	}
	ts.RunTicks(600)
	if len(ts.Agents()) == 0 {
		t.Fatal("no agents spawned on demo mask")
	}
	for _, a := range ts.Agents() {
		if !ts.Ctx.IsWalkable(a.X, a.Y) && ts.Log.Count(CatPopulation, "spawn_fallback") == 0 {
			t.Fatalf("%s off the grid at (%.1f,%.1f)", a.Label(), a.X, a.Y)
		}
	}
}

func TestReporter_WindowSummary(t *testing.T) {
	ts := NewTestSim(WithSeed(12), WithPressure(0.5), WithReporter(600))
	ts.RunTicks(600)

	wr := ts.Reporter.WindowSummary()
	if wr == nil {
		t.Fatal("no window summary")
	}
	if wr.SampleCount != 10 || wr.ToTick != 600 {
		t.Fatalf("samples=%d to=%d, want 10 samples ending at 600", wr.SampleCount, wr.ToTick)
	}
	if wr.TotalSpawned == 0 || wr.TotalRepaths == 0 {
		t.Fatalf("counters not accumulated: %+v", wr)
	}
	out := wr.Format()
	for _, s := range []string{"Crowd Report", "Population", "Pathing", "Spacing"} {
		if !strings.Contains(out, s) {
			t.Fatalf("Format() missing %q:\n%s", s, out)
		}
	}
	if !strings.Contains(ts.Reporter.FormatLatest(), "T=600") {
		t.Fatalf("FormatLatest() = %q", ts.Reporter.FormatLatest())
	}
}

func TestReporter_Empty(t *testing.T) {
	r := NewReporter(0)
	if r.WindowSummary() != nil || r.Latest() != nil {
		t.Fatal("empty reporter returned data")
	}
	var wr *WindowReport
	if wr.Format() == "" {
		t.Fatal("nil report should still format")
	}
}

func TestEventLog_VerboseAndFilter(t *testing.T) {
	l := NewEventLog(false, 0)
	l.Add(1, "A1", CatPopulation, "spawn", "at (0,0)", 0)
	l.AddVerbose(1, "A1", CatPath, "repath", "3 waypoints", 3)
	l.Add(2, "--", CatPopulation, "trim", "removed 1 (A1..A1)", 1)

	if got := len(l.Entries()); got != 2 {
		t.Fatalf("%d entries, want 2 (verbose dropped)", got)
	}
	if got := l.Count(CatPopulation, ""); got != 2 {
		t.Fatalf("population count %d, want 2", got)
	}
	e, ok := l.LastOf(CatPopulation, "trim")
	if !ok || e.Tick != 2 {
		t.Fatalf("LastOf = %+v, %v", e, ok)
	}
	if !strings.Contains(l.Format(), "[T=002] --") {
		t.Fatalf("Format():\n%s", l.Format())
	}

	v := NewEventLog(true, 0)
	v.AddVerbose(1, "A1", CatPath, "repath", "", 0)
	if v.Count(CatPath, "repath") != 1 {
		t.Fatal("verbose log dropped a verbose entry")
	}
}

func TestEventLog_LimitAndNil(t *testing.T) {
	l := NewEventLog(false, 5)
	for i := 0; i < 23; i++ {
		l.Add(i, "--", CatGrid, "rebuild", "", float64(i))
	}
	entries := l.Entries()
	if len(entries) != 5 || entries[4].Tick != 22 || entries[0].Tick != 18 {
		t.Fatalf("limited entries = %+v", entries)
	}

	var nilLog *EventLog
	nilLog.Add(1, "A1", CatPath, "repath", "", 0)
	if nilLog.Count("", "") != 0 || nilLog.Verbose() {
		t.Fatal("nil log should be inert")
	}
}
