package crowd

import (
	"fmt"
	"math"
	"strings"
)

// reportWindowTicks is the default report window, ten seconds at 60 TPS.
const reportWindowTicks = 600

// CrowdReport is a snapshot of the crowd at one tick plus the counters
// accumulated since the previous snapshot.
type CrowdReport struct {
	Tick     int
	Agents   int
	Target   int
	Pressure float64

	// Since the previous report.
	Spawned        int
	Trimmed        int
	SpawnFallbacks int
	Repaths        int
	Deferred       int
	BestEffort     int
	Bumps          int

	OverlapPct     float64 // overlapping agent pairs, 0-100
	AvgPlayerDist  float64
	MinPlayerDist  float64
	Fading         int // agents still in AgentSpawning
	WithoutPath    int
	SeparationPass int
}

// Reporter samples a SimulationContext at a fixed cadence and can produce
// summaries over sliding time windows.
type Reporter struct {
	history     []CrowdReport
	windowTicks int
	sampleEvery int
	pending     CrowdReport
}

// NewReporter creates a reporter with the given window size. It samples ten
// times per window.
func NewReporter(windowTicks int) *Reporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &Reporter{
		windowTicks: windowTicks,
		sampleEvery: max(1, windowTicks/10),
	}
}

// Observe folds the last tick's counters in and collects a report when one
// is due. Call it once per tick.
func (r *Reporter) Observe(sc *SimulationContext) {
	s := sc.Stats
	r.pending.Spawned += s.Spawned
	r.pending.Trimmed += s.Trimmed
	r.pending.SpawnFallbacks += s.SpawnFallbacks
	r.pending.Repaths += s.Repaths
	r.pending.Deferred += s.Deferred
	r.pending.BestEffort += s.BestEffort
	r.pending.Bumps += s.Bumps
	if sc.Frame%r.sampleEvery == 0 {
		r.Collect(sc)
	}
}

// Collect takes a snapshot now, attaching the counters observed since the
// last one.
func (r *Reporter) Collect(sc *SimulationContext) {
	rpt := r.pending
	r.pending = CrowdReport{}

	rpt.Tick = sc.Frame
	rpt.Agents = len(sc.Agents)
	rpt.Target = sc.Stats.Target
	rpt.Pressure = sc.Pressure
	rpt.OverlapPct = sc.OverlapFraction() * 100
	rpt.SeparationPass = sc.Stats.Passes
	rpt.MinPlayerDist = math.Inf(1)
	for _, a := range sc.Agents {
		d := math.Hypot(a.X-sc.Player.X, a.Y-sc.Player.Y)
		rpt.AvgPlayerDist += d
		rpt.MinPlayerDist = math.Min(rpt.MinPlayerDist, d)
		if a.State == AgentSpawning {
			rpt.Fading++
		}
		if !a.HasPath() {
			rpt.WithoutPath++
		}
	}
	if rpt.Agents > 0 {
		rpt.AvgPlayerDist /= float64(rpt.Agents)
	} else {
		rpt.MinPlayerDist = 0
	}

	r.history = append(r.history, rpt)

	// Prune old history beyond 2x window to prevent unbounded growth.
	maxKeep := max(100, 2*r.windowTicks/r.sampleEvery)
	if len(r.history) > maxKeep {
		r.history = r.history[len(r.history)-maxKeep:]
	}
}

// Latest returns the most recent report, or nil if none collected yet.
func (r *Reporter) Latest() *CrowdReport {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// History returns all collected reports.
func (r *Reporter) History() []CrowdReport {
	return r.history
}

// WindowReport is an aggregated summary over a time window.
type WindowReport struct {
	FromTick, ToTick int
	SampleCount      int

	AvgAgents, AvgTarget  float64
	AvgPressure           float64
	AvgOverlapPct         float64
	MaxOverlapPct         float64
	AvgPlayerDist         float64
	MinPlayerDist         float64
	AvgFading, AvgNoPath  float64
	MaxAbsTargetDeviation int

	TotalSpawned, TotalTrimmed  int
	TotalFallbacks              int
	TotalRepaths, TotalDeferred int
	TotalBestEffort             int
	TotalBumps                  int
}

// WindowSummary aggregates the reports within the last windowTicks.
func (r *Reporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}

	latestTick := r.history[len(r.history)-1].Tick
	cutoff := latestTick - r.windowTicks
	var window []CrowdReport
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].Tick < cutoff {
			break
		}
		window = append(window, r.history[i])
	}
	if len(window) == 0 {
		return nil
	}

	n := float64(len(window))
	wr := &WindowReport{
		FromTick:      window[len(window)-1].Tick,
		ToTick:        window[0].Tick,
		SampleCount:   len(window),
		MinPlayerDist: math.Inf(1),
	}
	for _, rpt := range window {
		wr.AvgAgents += float64(rpt.Agents)
		wr.AvgTarget += float64(rpt.Target)
		wr.AvgPressure += rpt.Pressure
		wr.AvgOverlapPct += rpt.OverlapPct
		wr.MaxOverlapPct = math.Max(wr.MaxOverlapPct, rpt.OverlapPct)
		wr.AvgPlayerDist += rpt.AvgPlayerDist
		if rpt.Agents > 0 {
			wr.MinPlayerDist = math.Min(wr.MinPlayerDist, rpt.MinPlayerDist)
		}
		wr.AvgFading += float64(rpt.Fading)
		wr.AvgNoPath += float64(rpt.WithoutPath)
		if dev := absInt(rpt.Agents - rpt.Target); dev > wr.MaxAbsTargetDeviation {
			wr.MaxAbsTargetDeviation = dev
		}

		wr.TotalSpawned += rpt.Spawned
		wr.TotalTrimmed += rpt.Trimmed
		wr.TotalFallbacks += rpt.SpawnFallbacks
		wr.TotalRepaths += rpt.Repaths
		wr.TotalDeferred += rpt.Deferred
		wr.TotalBestEffort += rpt.BestEffort
		wr.TotalBumps += rpt.Bumps
	}
	if math.IsInf(wr.MinPlayerDist, 1) {
		wr.MinPlayerDist = 0
	}

	wr.AvgAgents /= n
	wr.AvgTarget /= n
	wr.AvgPressure /= n
	wr.AvgOverlapPct /= n
	wr.AvgPlayerDist /= n
	wr.AvgFading /= n
	wr.AvgNoPath /= n
	return wr
}

// Format returns a human-readable multi-line string of the window summary.
func (wr *WindowReport) Format() string {
	if wr == nil {
		return "No data collected yet.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Crowd Report (T=%d..%d, %d samples) ===\n",
		wr.FromTick, wr.ToTick, wr.SampleCount)

	sb.WriteString("\n--- Population ---\n")
	fmt.Fprintf(&sb, "  agents=%.1f  target=%.1f  max_deviation=%d  pressure=%.2f (%s)\n",
		wr.AvgAgents, wr.AvgTarget, wr.MaxAbsTargetDeviation, wr.AvgPressure, pressureLabel(wr.AvgPressure))
	fmt.Fprintf(&sb, "  spawned=%d  trimmed=%d  fallbacks=%d  fading=%.1f\n",
		wr.TotalSpawned, wr.TotalTrimmed, wr.TotalFallbacks, wr.AvgFading)

	sb.WriteString("\n--- Pathing ---\n")
	fmt.Fprintf(&sb, "  repaths=%d  deferred=%d  best_effort=%d  without_path=%.1f\n",
		wr.TotalRepaths, wr.TotalDeferred, wr.TotalBestEffort, wr.AvgNoPath)

	sb.WriteString("\n--- Spacing ---\n")
	fmt.Fprintf(&sb, "  overlap=%.2f%% (max %.2f%%)  player_dist avg=%.1f min=%.1f  bumps=%d\n",
		wr.AvgOverlapPct, wr.MaxOverlapPct, wr.AvgPlayerDist, wr.MinPlayerDist, wr.TotalBumps)

	return sb.String()
}

// FormatLatest returns a concise snapshot of the most recent collected report.
func (r *Reporter) FormatLatest() string {
	rpt := r.Latest()
	if rpt == nil {
		return "No data.\n"
	}
	return fmt.Sprintf("--- Snapshot T=%d ---\nagents=%d/%d pressure=%.2f overlap=%.2f%% passes=%d repaths=%d deferred=%d bumps=%d\n",
		rpt.Tick, rpt.Agents, rpt.Target, rpt.Pressure, rpt.OverlapPct, rpt.SeparationPass,
		rpt.Repaths, rpt.Deferred, rpt.Bumps)
}

func pressureLabel(p float64) string {
	switch {
	case p > 0.75:
		return "swamped"
	case p > 0.5:
		return "busy"
	case p > 0.25:
		return "steady"
	default:
		return "quiet"
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
