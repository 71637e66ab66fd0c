package crowd

// Tick advances the crowd by dt seconds. dt is clamped to Crowd.MaxDtMs so a
// stalled host cannot destabilise the simulation. Within a tick every agent
// gets its goal, path and move before any collision pass runs, so separation
// always sees this tick's post-move positions.
func Tick(sc *SimulationContext, dt float64, in TickInput) {
	dt = sc.clampDt(dt)
	sc.Frame++
	sc.Now += dt * 1000
	sc.Player = PlayerState{X: in.PlayerX, Y: in.PlayerY, Moving: in.PlayerMoving}
	sc.Waiting = in.WaitingCount
	sc.Stats = TickStats{Tick: sc.Frame}

	// 1. Pressure.
	sc.Pressure = sc.pressure.Pressure(in.Signals)
	sc.Stats.Pressure = sc.Pressure

	// 2. Population: trim or spawn.
	sc.adjustPopulation()

	// 3. Per-agent goal, repath and movement.
	sc.updateGoals(dt)
	sc.moveAgents(dt)

	// 4. Agent-agent separation.
	passes := sc.SeparationPasses()
	sc.Separate(passes)
	sc.Stats.Passes = passes

	// 5. Player collision.
	sc.collidePlayer()

	sc.fadeIn(dt)
	sc.Stats.Agents = len(sc.Agents)
}

func (sc *SimulationContext) clampDt(dt float64) float64 {
	maxDt := sc.Config.MaxDtMs / 1000
	if dt < 0 {
		return 0
	}
	if maxDt > 0 && dt > maxDt {
		return maxDt
	}
	return dt
}

func (sc *SimulationContext) fadeIn(dt float64) {
	fade := sc.Config.FadeInMs
	for _, a := range sc.Agents {
		if a.State != AgentSpawning {
			continue
		}
		if fade <= 0 {
			a.Alpha = 1
		} else {
			a.Alpha += dt * 1000 / fade
		}
		if a.Alpha >= 1 {
			a.Alpha = 1
			a.State = AgentActive
		}
	}
}

// FrameClock turns host wall-clock timestamps into clamped tick deltas.
type FrameClock struct {
	MaxDt   float64 // seconds
	last    float64
	started bool
}

// NewFrameClock returns a clock clamping deltas to maxDtMs.
func NewFrameClock(maxDtMs float64) *FrameClock {
	return &FrameClock{MaxDt: maxDtMs / 1000}
}

// Delta returns the seconds elapsed since the previous call, clamped to
// [0, MaxDt]. The first call returns 0.
func (c *FrameClock) Delta(nowMs float64) float64 {
	if !c.started {
		c.started = true
		c.last = nowMs
		return 0
	}
	dt := (nowMs - c.last) / 1000
	c.last = nowMs
	if dt < 0 {
		return 0
	}
	if c.MaxDt > 0 && dt > c.MaxDt {
		return c.MaxDt
	}
	return dt
}
