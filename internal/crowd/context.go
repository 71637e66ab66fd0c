package crowd

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/Garsondee/zone-crowd/internal/config"
	"github.com/Garsondee/zone-crowd/internal/nav"
)

// PlayerState is the player as seen by the crowd this tick.
type PlayerState struct {
	X, Y   float64
	Moving bool
}

// TickInput carries everything external collaborators supply per tick.
type TickInput struct {
	PlayerX, PlayerY float64
	PlayerMoving     bool
	Signals          PressureSignals
	WaitingCount     int
}

// TickStats counts what happened during the last tick.
type TickStats struct {
	Tick           int
	Agents         int
	Target         int
	Pressure       float64
	Spawned        int
	Trimmed        int
	SpawnFallbacks int
	Repaths        int
	Deferred       int // agents due for a repath but over budget
	BestEffort     int // repaths that came back as a single point
	Passes         int
	Bumps          int
}

// SimulationContext is the whole mutable state of one scene's crowd: grid,
// agents, pressure and clocks. It is passed explicitly to Tick.
type SimulationContext struct {
	Config   config.Crowd
	Grid     *nav.NavGrid
	World    nav.Bounds
	Agents   []*Agent // oldest first
	Player   PlayerState
	Pressure float64
	Waiting  int
	Now      float64 // simulation clock, ms
	Frame    int
	Stats    TickStats
	Log      *EventLog

	finder       *nav.PathFinder
	pressure     PressureSource
	rng          *rand.Rand
	nextID       int
	lastSpawnAt  float64
	settled      bool // population has reached target since the last spawn
	settledAt    float64
	repathCursor int
}

// Option configures a SimulationContext.
type Option func(*SimulationContext)

// WithRandSeed makes spawning and orbit drift deterministic.
func WithRandSeed(seed int64) Option {
	return func(sc *SimulationContext) {
		sc.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- simulation jitter
	}
}

// WithLog attaches an event log.
func WithLog(l *EventLog) Option {
	return func(sc *SimulationContext) { sc.Log = l }
}

// WithPressureSource replaces the default PressureModel.
func WithPressureSource(src PressureSource) Option {
	return func(sc *SimulationContext) { sc.pressure = src }
}

// WithWorld sets the primary world region when it differs from the grid's
// rounded-up extent.
func WithWorld(b nav.Bounds) Option {
	return func(sc *SimulationContext) { sc.World = b }
}

// NewContext creates an empty crowd over grid.
func NewContext(cfg config.Config, grid *nav.NavGrid, opts ...Option) *SimulationContext {
	sc := &SimulationContext{
		Config:      cfg.Crowd,
		Grid:        grid,
		World:       grid.WorldBounds(),
		finder:      nav.NewPathFinder(grid),
		pressure:    NewPressureModel(cfg.Pressure),
		rng:         rand.New(rand.NewSource(1)), // #nosec G404 -- simulation jitter
		nextID:      1,
		lastSpawnAt: math.Inf(-1),
	}
	for _, fn := range opts {
		fn(sc)
	}
	sc.Player = PlayerState{X: sc.World.W / 2, Y: sc.World.H / 2}
	return sc
}

// SetGrid swaps in a rebuilt grid between ticks. Every agent's path is
// dropped and a repath is scheduled immediately.
func (sc *SimulationContext) SetGrid(grid *nav.NavGrid) {
	sc.Grid = grid
	sc.finder = nav.NewPathFinder(grid)
	for _, a := range sc.Agents {
		a.Path = nil
		a.PathIndex = 0
		a.NextRepathAt = sc.Now
	}
	sc.Log.Add(sc.Frame, "--", CatGrid, "rebuild",
		fmt.Sprintf("%dx%d walkable=%d overlay=%v", grid.Cols(), grid.Rows(), grid.WalkableCount(), grid.HasOverlay()),
		float64(grid.WalkableCount()))
}

// ApplyConfig swaps in reloaded tunables between ticks. A PressureModel
// source takes the new weights and keeps its smoothed value; other sources
// are left alone.
func (sc *SimulationContext) ApplyConfig(cfg config.Config) {
	sc.Config = cfg.Crowd
	if m, ok := sc.pressure.(*PressureModel); ok {
		m.cfg = cfg.Pressure
	}
}

// FindPath exposes the context's path finder.
func (sc *SimulationContext) FindPath(start, goal nav.Point) []nav.Point {
	return sc.finder.FindPath(start.X, start.Y, goal.X, goal.Y)
}

// IsWalkable queries the same grid agents path over.
func (sc *SimulationContext) IsWalkable(x, y float64) bool {
	return sc.Grid.IsWalkable(x, y)
}

// Snapshot copies the render-relevant state of every agent.
func (sc *SimulationContext) Snapshot() []AgentView {
	out := make([]AgentView, len(sc.Agents))
	for i, a := range sc.Agents {
		out[i] = AgentView{ID: a.ID, X: a.X, Y: a.Y, Heading: a.Heading, Alpha: a.Alpha}
	}
	return out
}

// passable decides whether an agent may move from (fx,fy) to (tx,ty). With
// no walkable cells anywhere movement is unconstrained, and an agent already
// standing on an unwalkable spot may move so it can get back.
func (sc *SimulationContext) passable(fx, fy, tx, ty float64) bool {
	g := sc.Grid
	if g == nil || g.WalkableCount() == 0 {
		return true
	}
	return g.IsWalkable(tx, ty) || !g.IsWalkable(fx, fy)
}

// shift moves a by (mx,my) unless that lands it somewhere unwalkable, in
// which case the agent stays where it is.
func (sc *SimulationContext) shift(a *Agent, mx, my float64) bool {
	tx, ty := a.X+mx, a.Y+my
	if !sc.passable(a.X, a.Y, tx, ty) {
		return false
	}
	a.X, a.Y = tx, ty
	return true
}
