package crowd

import (
	"math"
	"testing"
)

func place(sc *SimulationContext, pts ...[2]float64) []*Agent {
	agents := sc.SpawnAgents(len(pts))
	for i, a := range agents {
		a.X, a.Y = pts[i][0], pts[i][1]
	}
	return agents
}

func dist(a, b *Agent) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

func TestSeparate_TwoAgentsResolvedInOnePass(t *testing.T) {
	sc := NewTestSim().Ctx
	ag := place(sc, [2]float64{100, 100}, [2]float64{105, 100})

	sc.Separate(1)

	if o, _ := sc.OverlappingPairs(); o != 0 {
		t.Fatalf("%d overlapping pairs after one pass, want 0 (d=%.2f)", o, dist(ag[0], ag[1]))
	}
	want := ag[0].Radius + ag[1].Radius + sc.Config.SeparationPad
	if d := dist(ag[0], ag[1]); math.Abs(d-want) > 1e-9 {
		t.Fatalf("distance %.4f, want %.4f", d, want)
	}
	if ag[0].Y != 100 || ag[1].Y != 100 {
		t.Fatal("push left the line between the agents")
	}
}

func TestSeparate_CoincidentAgentsNudged(t *testing.T) {
	sc := NewTestSim(WithSeed(8)).Ctx
	ag := place(sc, [2]float64{200, 150}, [2]float64{200, 150})

	sc.Separate(1)

	if d := dist(ag[0], ag[1]); d < ag[0].Radius+ag[1].Radius {
		t.Fatalf("coincident agents still overlap: d=%.4f", d)
	}
}

func TestSeparate_MorePassesReduceOverlap(t *testing.T) {
	layout := func() *SimulationContext {
		sc := NewTestSim(WithSeed(1)).Ctx
		var pts [][2]float64
		for i := 0; i < 30; i++ {
			pts = append(pts, [2]float64{200 + float64(i%6)*4, 150 + float64(i/6)*4})
		}
		place(sc, pts...)
		return sc
	}

	before := layout().OverlapFraction()
	sc := layout()
	sc.Separate(4)
	after := sc.OverlapFraction()

	if before == 0 {
		t.Fatal("setup: layout has no overlap")
	}
	if after >= before {
		t.Fatalf("overlap %.3f after 4 passes, was %.3f", after, before)
	}
}

func TestSeparate_RollsBackPushIntoWall(t *testing.T) {
	// Column 10 (x in [120,132)) is a wall.
	sc := NewTestSim(WithBlockedRect(10, 0, 10, 29)).Ctx
	ag := place(sc, [2]float64{118, 100}, [2]float64{110, 100})

	sc.Separate(1)

	if ag[0].X != 118 {
		t.Fatalf("agent next to wall moved to x=%.2f", ag[0].X)
	}
	if ag[1].X != 106 {
		t.Fatalf("free agent x=%.2f, want 106", ag[1].X)
	}
}

func TestSeparationPasses_StepTable(t *testing.T) {
	sc := NewTestSim().Ctx
	steps := []struct {
		agents, passes int
	}{
		{10, 3},
		{40, 3},
		{100, 2},
		{150, 1},
	}
	for _, s := range steps {
		if n := s.agents - len(sc.Agents); n > 0 {
			sc.SpawnAgents(n)
		}
		if got := sc.SeparationPasses(); got != s.passes {
			t.Fatalf("%d agents: %d passes, want %d", s.agents, got, s.passes)
		}
	}
}

func TestPlayer_HardCollisionBumpsWithCooldown(t *testing.T) {
	sc := NewTestSim(WithPlayer(200, 180)).Ctx
	a := place(sc, [2]float64{205, 180})[0]
	hard := sc.Config.PlayerRadius + a.Radius

	sc.collidePlayer()
	if d := math.Hypot(a.X-200, a.Y-180); math.Abs(d-hard) > 1e-9 {
		t.Fatalf("after hard collision d=%.4f, want %.4f", d, hard)
	}
	if sc.Stats.Bumps != 1 {
		t.Fatalf("Bumps = %d, want 1", sc.Stats.Bumps)
	}
	if math.Abs(a.Heading) > 1e-9 {
		t.Fatalf("heading %.3f, want pointing away from player (0)", a.Heading)
	}

	// Same instant: pushed out again but no second bump.
	a.X, a.Y = 205, 180
	sc.collidePlayer()
	if sc.Stats.Bumps != 1 {
		t.Fatalf("Bumps = %d during cooldown, want 1", sc.Stats.Bumps)
	}

	sc.Now += sc.Config.BumpCooldownMs
	a.X, a.Y = 205, 180
	sc.collidePlayer()
	if sc.Stats.Bumps != 2 {
		t.Fatalf("Bumps = %d after cooldown, want 2", sc.Stats.Bumps)
	}
	if got := sc.Log.Count(CatCollision, "bump"); got != 2 {
		t.Fatalf("bump events = %d, want 2", got)
	}
}

func TestPlayer_SoftRingPushesGently(t *testing.T) {
	sc := NewTestSim(WithPlayer(200, 180)).Ctx
	a := place(sc, [2]float64{230, 180})[0]
	soft := sc.Config.PlayerSoftRadius + a.Radius

	sc.collidePlayer()

	want := 30 + (soft-30)*sc.Config.SoftStrength
	if d := a.X - 200; math.Abs(d-want) > 1e-9 {
		t.Fatalf("d=%.4f after soft push, want %.4f", d, want)
	}
	if sc.Stats.Bumps != 0 {
		t.Fatalf("soft ring bumped: %d", sc.Stats.Bumps)
	}
}

func TestPlayer_OutsideRingUntouched(t *testing.T) {
	sc := NewTestSim(WithPlayer(200, 180)).Ctx
	a := place(sc, [2]float64{300, 180})[0]
	sc.collidePlayer()
	if a.X != 300 || a.Y != 180 {
		t.Fatalf("agent moved to (%.2f,%.2f)", a.X, a.Y)
	}
}
