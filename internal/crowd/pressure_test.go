package crowd

import (
	"math"
	"testing"

	"github.com/Garsondee/zone-crowd/internal/config"
	"github.com/Garsondee/zone-crowd/internal/nav"
)

func TestPressureModel_Raw(t *testing.T) {
	m := NewPressureModel(config.Default().Pressure)

	cases := []struct {
		name string
		sig  PressureSignals
		want float64
	}{
		{"calm", PressureSignals{Quality: 1}, 0},
		{"backlog full", PressureSignals{Backlog: 50, Quality: 1}, 0.5},
		{"backlog over cap", PressureSignals{Backlog: 500, Quality: 1}, 0.5},
		{"poor quality", PressureSignals{Quality: 0}, 0.2},
		{"events saturated", PressureSignals{ActiveEvents: 3, Quality: 1}, 0.2},
		{"event imminent", PressureSignals{Quality: 1, TimeToNextEvent: 15}, 0.05},
		{"no event scheduled", PressureSignals{Quality: 1, TimeToNextEvent: 0}, 0},
		{"everything", PressureSignals{Backlog: 80, ActiveEvents: 9, Quality: 0, TimeToNextEvent: 1e-9}, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := m.Raw(c.sig); math.Abs(got-c.want) > 1e-6 {
				t.Fatalf("Raw = %.6f, want %.6f", got, c.want)
			}
		})
	}
}

func TestPressureModel_Smoothing(t *testing.T) {
	cfg := config.Default().Pressure
	m := NewPressureModel(cfg)

	first := m.Pressure(PressureSignals{Backlog: 50, Quality: 1})
	if math.Abs(first-0.5) > 1e-9 {
		t.Fatalf("first sample = %.3f, want raw 0.5", first)
	}
	second := m.Pressure(PressureSignals{Quality: 1})
	want := first + (0-first)*(1-cfg.Smoothing)
	if math.Abs(second-want) > 1e-9 {
		t.Fatalf("second sample = %.4f, want %.4f", second, want)
	}
}

func TestPressureModel_ZeroWeights(t *testing.T) {
	m := NewPressureModel(config.Pressure{})
	if got := m.Raw(PressureSignals{Backlog: 10}); got != 0 {
		t.Fatalf("Raw with zero weights = %.3f, want 0", got)
	}
}

func TestFixedPressure_Clamped(t *testing.T) {
	if got := FixedPressure(1.7).Pressure(PressureSignals{}); got != 1 {
		t.Fatalf("got %.2f, want 1", got)
	}
	if got := FixedPressure(-3).Pressure(PressureSignals{}); got != 0 {
		t.Fatalf("got %.2f, want 0", got)
	}
}

func TestTick_PressureDrivesTarget(t *testing.T) {
	ts := NewTestSim()
	ts.Input.Signals = PressureSignals{Backlog: 50, ActiveEvents: 3, Quality: 0, TimeToNextEvent: 1e-9}
	ts.RunTicks(1)
	if ts.Ctx.Stats.Target != 72 {
		t.Fatalf("target %d at full pressure, want 72", ts.Ctx.Stats.Target)
	}
	if math.Abs(ts.Ctx.Pressure-1) > 1e-6 {
		t.Fatalf("pressure %.3f, want 1", ts.Ctx.Pressure)
	}
}

func TestApplyConfig_ReweightsPressure(t *testing.T) {
	cfg := config.Default()
	sc := NewContext(cfg, nav.Open(40, 30, 12))
	sig := PressureSignals{Backlog: cfg.Pressure.BacklogCap / 2, Quality: 1}
	Tick(sc, 1.0/60, TickInput{PlayerX: 240, PlayerY: 180, Signals: sig})

	cfg.Pressure = config.Pressure{BacklogWeight: 1, BacklogCap: cfg.Pressure.BacklogCap}
	cfg.Crowd.PopulationCap = 7
	sc.ApplyConfig(cfg)
	Tick(sc, 1.0/60, TickInput{PlayerX: 240, PlayerY: 180, Signals: sig})
	if math.Abs(sc.Pressure-0.5) > 1e-9 {
		t.Fatalf("pressure after reweight = %.4f, want backlog ratio 0.5", sc.Pressure)
	}
	if sc.Config.PopulationCap != 7 || sc.Stats.Target > 7 {
		t.Fatalf("crowd config not applied: cap=%d target=%d", sc.Config.PopulationCap, sc.Stats.Target)
	}

	fixed := NewContext(config.Default(), nav.Open(40, 30, 12), WithPressureSource(FixedPressure(0.3)))
	fixed.ApplyConfig(cfg)
	Tick(fixed, 1.0/60, TickInput{Signals: sig})
	if math.Abs(fixed.Pressure-0.3) > 1e-9 {
		t.Fatalf("fixed source replaced: pressure=%.4f", fixed.Pressure)
	}
}
