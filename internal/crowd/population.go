package crowd

import (
	"fmt"
	"math"
)

// TargetPopulation is how many agents should exist this tick.
func (sc *SimulationContext) TargetPopulation() int {
	c := sc.Config
	var t int
	if c.MatchWaiting {
		t = sc.Waiting
	} else {
		t = int(math.Round(float64(c.PopulationBase) + sc.Pressure*float64(c.PopulationRange)))
	}
	return min(max(t, 0), c.PopulationCap)
}

func (sc *SimulationContext) adjustPopulation() {
	target := sc.TargetPopulation()
	sc.Stats.Target = target
	n := len(sc.Agents)

	if n >= target {
		if n > target {
			sc.trimOldest(n - target)
		}
		sc.settled = true
		sc.settledAt = sc.Now
		return
	}

	deficit := target - n
	if !sc.spawnDue(deficit, target) {
		return
	}
	for i := 0; i < min(sc.Config.SpawnBurst, deficit); i++ {
		sc.spawnOne()
	}
	sc.lastSpawnAt = sc.Now
	sc.settled = false
}

// spawnDue gates spawning. The interval shrinks as the deficit grows; once
// the crowd has been at target, small deficits refill at the slow interval
// counted from the last tick spent at target.
func (sc *SimulationContext) spawnDue(deficit, target int) bool {
	c := sc.Config
	ratio := float64(deficit) / float64(max(target, 1))
	interval := math.Max(c.SpawnIntervalMinMs, c.SpawnIntervalMs*(1-ratio))
	since := sc.Now - sc.lastSpawnAt
	if sc.settled && ratio < 0.5 {
		interval = c.SpawnIntervalSlowMs
		since = sc.Now - sc.settledAt
	}
	return since >= interval
}

// trimOldest removes the n longest-lived agents at once.
func (sc *SimulationContext) trimOldest(n int) {
	if n <= 0 {
		return
	}
	n = min(n, len(sc.Agents))
	first, last := sc.Agents[0].ID, sc.Agents[n-1].ID
	for _, a := range sc.Agents[:n] {
		sc.Log.AddVerbose(sc.Frame, a.Label(), CatPopulation, "trim_agent", "", 0)
	}
	copy(sc.Agents, sc.Agents[n:])
	for i := len(sc.Agents) - n; i < len(sc.Agents); i++ {
		sc.Agents[i] = nil
	}
	sc.Agents = sc.Agents[:len(sc.Agents)-n]
	sc.Stats.Trimmed += n

	sc.Log.Add(sc.Frame, "--", CatPopulation, "trim",
		fmt.Sprintf("removed %d (A%d..A%d)", n, first, last), float64(n))
}

// SpawnAgents places n agents immediately, bypassing the spawn cadence.
func (sc *SimulationContext) SpawnAgents(n int) []*Agent {
	out := make([]*Agent, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, sc.spawnOne())
	}
	return out
}

func (sc *SimulationContext) spawnOne() *Agent {
	c := sc.Config
	x, y, ok := sc.spawnPoint()
	if !ok {
		sc.Stats.SpawnFallbacks++
	}

	a := &Agent{
		ID:           sc.nextID,
		X:            x,
		Y:            y,
		Radius:       c.AgentRadius,
		Speed:        c.AgentSpeedMin + sc.rng.Float64()*(c.AgentSpeedMax-c.AgentSpeedMin),
		Heading:      math.Atan2(sc.Player.Y-y, sc.Player.X-x),
		State:        AgentSpawning,
		NextRepathAt: sc.Now,
		LastBumpAt:   math.Inf(-1),
		SpawnedAt:    sc.Now,
		OrbitAngle:   sc.rng.Float64() * 2 * math.Pi,
		OrbitRadius:  c.OrbitMin + sc.rng.Float64()*(c.OrbitMax-c.OrbitMin),
		OrbitDrift:   (sc.rng.Float64()*2 - 1) * c.OrbitDrift,
	}
	if c.FadeInMs <= 0 {
		a.Alpha = 1
		a.State = AgentActive
	}
	sc.nextID++
	sc.Agents = append(sc.Agents, a)
	sc.Stats.Spawned++

	if ok {
		sc.Log.Add(sc.Frame, a.Label(), CatPopulation, "spawn", fmt.Sprintf("at (%.0f,%.0f)", x, y), 0)
	} else {
		sc.Log.Add(sc.Frame, a.Label(), CatPopulation, "spawn_fallback",
			fmt.Sprintf("no walkable point in band, placed at (%.0f,%.0f)", x, y), 0)
	}
	return a
}

// spawnPoint samples the spawn band until it hits a walkable point. When
// retries run out the last sample is returned with ok=false.
func (sc *SimulationContext) spawnPoint() (x, y float64, ok bool) {
	b := sc.Config.SpawnBand
	x0, x1 := b.X0*sc.World.W, b.X1*sc.World.W
	y0, y1 := b.Y0*sc.World.H, b.Y1*sc.World.H
	for i := 0; i < max(1, sc.Config.SpawnRetries); i++ {
		x = x0 + sc.rng.Float64()*(x1-x0)
		y = y0 + sc.rng.Float64()*(y1-y0)
		if sc.Grid.IsWalkable(x, y) {
			return x, y, true
		}
	}
	return x, y, false
}
