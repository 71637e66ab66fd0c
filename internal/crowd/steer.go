package crowd

import (
	"fmt"
	"math"

	"github.com/Garsondee/zone-crowd/internal/nav"
)

// goalProbeSteps is how many times an unwalkable orbit goal is pulled in
// towards the player before the raw goal is used anyway.
const goalProbeSteps = 4

// updateGoals drifts every agent's orbit and repaths the ones that are due,
// at most RepathBudget per tick. The scan starts after the last agent served
// so that deferred agents go first next tick.
func (sc *SimulationContext) updateGoals(dt float64) {
	n := len(sc.Agents)
	if n == 0 {
		return
	}
	budget := sc.Config.RepathBudget
	start := sc.repathCursor % n
	next := start
	for i := 0; i < n; i++ {
		k := (start + i) % n
		a := sc.Agents[k]
		sc.driftOrbit(a, dt)
		if sc.Now < a.NextRepathAt {
			continue
		}
		if sc.Stats.Repaths >= budget {
			sc.Stats.Deferred++
			continue
		}
		sc.repath(a)
		next = (k + 1) % n
	}
	sc.repathCursor = next
}

func (sc *SimulationContext) driftOrbit(a *Agent, dt float64) {
	c := sc.Config
	a.OrbitDrift += (sc.rng.Float64()*2 - 1) * c.OrbitDrift * 0.2 * dt
	a.OrbitDrift = math.Max(-c.OrbitDrift, math.Min(c.OrbitDrift, a.OrbitDrift))
	a.OrbitAngle = math.Mod(a.OrbitAngle+a.OrbitDrift*dt, 2*math.Pi)

	a.OrbitRadius += (sc.rng.Float64()*2 - 1) * c.OrbitRadiusDrift * dt
	a.OrbitRadius = math.Max(c.OrbitMin, math.Min(c.OrbitMax, a.OrbitRadius))
}

// Goal returns the agent's current orbit-band goal around the player. If
// the orbit point is unwalkable it is pulled towards the player.
func (sc *SimulationContext) Goal(a *Agent) nav.Point {
	cos, sin := math.Cos(a.OrbitAngle), math.Sin(a.OrbitAngle)
	r := a.OrbitRadius
	var gx, gy float64
	for i := 0; i <= goalProbeSteps; i++ {
		gx = sc.Player.X + cos*r
		gy = sc.Player.Y + sin*r
		if sc.Grid.IsWalkable(gx, gy) {
			break
		}
		r *= 0.75
	}
	gx = math.Max(0, math.Min(sc.World.W, gx))
	gy = math.Max(0, math.Min(sc.World.H, gy))
	return nav.Point{X: gx, Y: gy}
}

func (sc *SimulationContext) repath(a *Agent) {
	path := sc.FindPath(nav.Point{X: a.X, Y: a.Y}, sc.Goal(a))
	a.Path = path
	a.PathIndex = 0
	sc.Stats.Repaths++

	if len(path) == 1 {
		sc.Stats.BestEffort++
		a.NextRepathAt = sc.Now + sc.Config.RepathRetryMs
		sc.Log.AddVerbose(sc.Frame, a.Label(), CatPath, "best_effort",
			fmt.Sprintf("towards (%.0f,%.0f)", path[0].X, path[0].Y), 0)
		return
	}
	// path[0] is the centre of the cell the agent already stands in.
	a.PathIndex = 1
	a.NextRepathAt = sc.Now + sc.RepathInterval()
	sc.Log.AddVerbose(sc.Frame, a.Label(), CatPath, "repath",
		fmt.Sprintf("%d waypoints", len(path)), float64(len(path)))
}

// RepathInterval draws the next repath delay in ms. It grows with population
// and while the player is moving.
func (sc *SimulationContext) RepathInterval() float64 {
	c := sc.Config
	ms := c.RepathBaseMs + sc.rng.Float64()*c.RepathJitterMs
	ms *= sc.populationScale()
	if sc.Player.Moving {
		ms *= c.MovingRepathMul
	}
	return ms
}

func (sc *SimulationContext) populationScale() float64 {
	n := len(sc.Agents)
	scale, best := 1.0, -1
	for _, s := range sc.Config.RepathThresholds {
		if n >= s.MinAgents && s.MinAgents > best {
			scale, best = s.Scale, s.MinAgents
		}
	}
	return scale
}

func (sc *SimulationContext) moveAgents(dt float64) {
	for _, a := range sc.Agents {
		sc.moveAgent(a, dt)
	}
}

// moveAgent advances a towards its current waypoint. When the direct step is
// blocked it tries the x-only and then the y-only component, so agents slide
// along walls instead of sticking on diagonal contact.
func (sc *SimulationContext) moveAgent(a *Agent, dt float64) {
	c := sc.Config
	if !a.HasPath() {
		// Out of waypoints: ask for a fresh goal soon.
		a.NextRepathAt = math.Min(a.NextRepathAt, sc.Now+c.RepathRetryMs)
		return
	}

	wp := a.Path[a.PathIndex]
	dx, dy := wp.X-a.X, wp.Y-a.Y
	dist := math.Hypot(dx, dy)
	if dist <= c.WaypointRadius {
		a.PathIndex++
		if !a.HasPath() {
			return
		}
		wp = a.Path[a.PathIndex]
		dx, dy = wp.X-a.X, wp.Y-a.Y
		dist = math.Hypot(dx, dy)
	}
	if dist < 1e-9 {
		return
	}

	step := math.Min(c.MaxSpeed, a.Speed) * dt
	if step > dist {
		step = dist
	}
	mx, my := dx/dist*step, dy/dist*step

	switch {
	case sc.shift(a, mx, my):
	case mx != 0 && sc.shift(a, mx, 0):
		my = 0
	case my != 0 && sc.shift(a, 0, my):
		mx = 0
	default:
		return
	}
	if mx != 0 || my != 0 {
		a.Heading = math.Atan2(my, mx)
	}
}
