package crowd

import (
	"math"

	"github.com/Garsondee/zone-crowd/internal/nav"
)

// PlayerMotion tunes keyboard-driven player movement.
type PlayerMotion struct {
	Speed     float64 // world units per second
	SprintMul float64
}

// DefaultPlayerMotion matches the zone's walking feel.
func DefaultPlayerMotion() PlayerMotion {
	return PlayerMotion{Speed: 220, SprintMul: 1.6}
}

// StepPlayer moves the player by input direction (vx, vy), normalised, and
// clamps the move with the grid the crowd paths over. A blocked move falls
// back to its x-only, then y-only component so the player slides along
// walls. When the grid has no walkable cells at all the move is allowed
// unconditionally.
func StepPlayer(grid *nav.NavGrid, x, y, vx, vy float64, sprint bool, dt float64, m PlayerMotion) (nx, ny float64, moving bool) {
	if vx == 0 && vy == 0 {
		return x, y, false
	}
	mag := math.Hypot(vx, vy)
	vx, vy = vx/mag, vy/mag
	speed := m.Speed
	if sprint {
		speed *= m.SprintMul
	}
	mx, my := vx*speed*dt, vy*speed*dt
	if grid == nil || grid.WalkableCount() == 0 {
		return x + mx, y + my, true
	}
	switch {
	case grid.IsWalkable(x+mx, y+my):
		return x + mx, y + my, true
	case mx != 0 && grid.IsWalkable(x+mx, y):
		return x + mx, y, true
	case my != 0 && grid.IsWalkable(x, y+my):
		return x, y + my, true
	}
	return x, y, false
}
