package crowd

import (
	"fmt"
	"math"
)

// Agents closer than sqrt(coincidentD2) count as coincident and are nudged
// apart by coincidentEps along a random axis.
const (
	coincidentD2  = 1e-12
	coincidentEps = 1e-3
)

// SeparationPasses returns the pass count for the current population from
// the configured step table. Bigger crowds get fewer passes.
func (sc *SimulationContext) SeparationPasses() int {
	n := len(sc.Agents)
	steps := sc.Config.SeparationPasses
	for _, s := range steps {
		if s.MaxAgents == 0 || n <= s.MaxAgents {
			return s.Passes
		}
	}
	if len(steps) > 0 {
		return steps[len(steps)-1].Passes
	}
	return 1
}

// Separate runs the given number of pairwise separation passes.
func (sc *SimulationContext) Separate(passes int) {
	for p := 0; p < passes; p++ {
		sc.separationPass()
	}
}

// separationPass pushes every overlapping pair apart by half the overlap
// each. A push that would land an agent on an unwalkable cell is dropped for
// that agent only.
func (sc *SimulationContext) separationPass() int {
	pad := sc.Config.SeparationPad
	agents := sc.Agents
	resolved := 0
	for i := 0; i < len(agents); i++ {
		a := agents[i]
		for j := i + 1; j < len(agents); j++ {
			b := agents[j]
			minD := a.Radius + b.Radius + pad
			dx := b.X - a.X
			if dx >= minD || dx <= -minD {
				continue
			}
			dy := b.Y - a.Y
			if dy >= minD || dy <= -minD {
				continue
			}
			d2 := dx*dx + dy*dy
			if d2 >= minD*minD {
				continue
			}

			var d float64
			if d2 < coincidentD2 {
				ang := sc.rng.Float64() * 2 * math.Pi
				nx, ny := math.Cos(ang)*coincidentEps, math.Sin(ang)*coincidentEps
				if !sc.shift(b, nx, ny) {
					sc.shift(a, -nx, -ny)
				}
				dx, dy, d = nx, ny, coincidentEps
			} else {
				d = math.Sqrt(d2)
			}

			push := (minD - d) / 2
			ux, uy := dx/d, dy/d
			sc.shift(a, -ux*push, -uy*push)
			sc.shift(b, ux*push, uy*push)
			resolved++
		}
	}
	return resolved
}

// collidePlayer keeps agents out of the player's body and gently out of the
// breathing-room ring around it.
func (sc *SimulationContext) collidePlayer() {
	c := sc.Config
	px, py := sc.Player.X, sc.Player.Y
	for _, a := range sc.Agents {
		hard := c.PlayerRadius + a.Radius
		soft := c.PlayerSoftRadius + a.Radius
		dx, dy := a.X-px, a.Y-py
		if dx >= soft || dx <= -soft || dy >= soft || dy <= -soft {
			continue
		}
		d := math.Hypot(dx, dy)
		if d >= soft {
			continue
		}

		var ux, uy float64
		if d < 1e-9 {
			ang := sc.rng.Float64() * 2 * math.Pi
			ux, uy = math.Cos(ang), math.Sin(ang)
		} else {
			ux, uy = dx/d, dy/d
		}

		if d < hard {
			sc.shift(a, ux*(hard-d), uy*(hard-d))
			if sc.Now-a.LastBumpAt >= c.BumpCooldownMs {
				a.LastBumpAt = sc.Now
				a.Heading = math.Atan2(uy, ux)
				sc.Stats.Bumps++
				sc.Log.Add(sc.Frame, a.Label(), CatCollision, "bump",
					fmt.Sprintf("overlap %.1f", hard-d), hard-d)
			}
			continue
		}
		push := (soft - d) * c.SoftStrength
		sc.shift(a, ux*push, uy*push)
	}
}

// OverlappingPairs counts agent pairs closer than the sum of their radii.
func (sc *SimulationContext) OverlappingPairs() (overlapping, total int) {
	agents := sc.Agents
	for i := 0; i < len(agents); i++ {
		for j := i + 1; j < len(agents); j++ {
			total++
			a, b := agents[i], agents[j]
			r := a.Radius + b.Radius
			dx, dy := b.X-a.X, b.Y-a.Y
			if dx*dx+dy*dy < r*r {
				overlapping++
			}
		}
	}
	return overlapping, total
}

// OverlapFraction is OverlappingPairs as a ratio; 0 with fewer than two agents.
func (sc *SimulationContext) OverlapFraction() float64 {
	o, t := sc.OverlappingPairs()
	if t == 0 {
		return 0
	}
	return float64(o) / float64(t)
}
