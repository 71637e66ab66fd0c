package crowd

import (
	"image"
	"math"

	"github.com/Garsondee/zone-crowd/internal/config"
	"github.com/Garsondee/zone-crowd/internal/mask"
	"github.com/Garsondee/zone-crowd/internal/nav"
)

// TestSim is a headless harness around a SimulationContext. It is used by
// tests and by the headless report command; it has no Ebiten dependency and
// is deterministic for a given seed.
type TestSim struct {
	Config   config.Config
	World    nav.Bounds
	Grid     *nav.NavGrid
	Ctx      *SimulationContext
	Log      *EventLog
	Reporter *Reporter
	Input    TickInput
	Dt       float64 // seconds per tick

	// PlayerPath, when set, drives the player each tick.
	PlayerPath func(tick int, dt float64) (x, y float64, moving bool)

	cellSize  float64
	blocked   [][2]int
	maskImg   image.Image
	seed      int64
	verbose   bool
	pressure  PressureSource
	playerSet bool
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra  simOptionKind = iota // world, grid, seed, config; applied first
	simOptAgents                      // spawn agents once the context exists
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithMapSize sets the world size and nav cell size.
func WithMapSize(w, h, cellSize float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.World = nav.Bounds{W: w, H: h}
		ts.cellSize = cellSize
	}}
}

// WithBlockedCell marks one grid cell unwalkable on the generated open grid.
func WithBlockedCell(cx, cy int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.blocked = append(ts.blocked, [2]int{cx, cy})
	}}
}

// WithBlockedRect marks the inclusive cell rectangle unwalkable.
func WithBlockedRect(cx0, cy0, cx1, cy1 int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		for cy := cy0; cy <= cy1; cy++ {
			for cx := cx0; cx <= cx1; cx++ {
				ts.blocked = append(ts.blocked, [2]int{cx, cy})
			}
		}
	}}
}

// WithMaskImage builds the grid from a colour mask instead of an open grid.
// Without WithMapSize the world is the mask's pixel size.
func WithMaskImage(img image.Image) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.maskImg = img
	}}
}

// WithGrid runs over a prebuilt grid covering world.
func WithGrid(grid *nav.NavGrid, world nav.Bounds) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Grid = grid
		ts.World = world
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.seed = seed }}
}

// WithVerbose records per-agent path events too.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.verbose = v }}
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg config.Config) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.Config = cfg }}
}

// WithCrowd edits the crowd tunables in place.
func WithCrowd(edit func(*config.Crowd)) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { edit(&ts.Config.Crowd) }}
}

// WithPressure pins pressure to p.
func WithPressure(p float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.pressure = FixedPressure(p) }}
}

// WithWaiting switches to match-waiting mode with an external count of n.
func WithWaiting(n int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Config.Crowd.MatchWaiting = true
		ts.Input.WaitingCount = n
	}}
}

// WithPlayer places a stationary player.
func WithPlayer(x, y float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Input.PlayerX, ts.Input.PlayerY = x, y
		ts.playerSet = true
	}}
}

// WithPlayerCircuit walks the player around a circle of radius r centred on
// (cx, cy), one lap every period seconds.
func WithPlayerCircuit(cx, cy, r, period float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.playerSet = true
		ts.PlayerPath = func(tick int, dt float64) (float64, float64, bool) {
			ang := 2 * math.Pi * float64(tick) * dt / period
			return cx + math.Cos(ang)*r, cy + math.Sin(ang)*r, true
		}
	}}
}

// WithReporter collects a CrowdReport every windowTicks/10 ticks.
func WithReporter(windowTicks int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.Reporter = NewReporter(windowTicks) }}
}

// WithAgents spawns n agents immediately after construction.
func WithAgents(n int) SimOption {
	return SimOption{simOptAgents, func(ts *TestSim) {
		ts.Ctx.SpawnAgents(n)
	}}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (world, mask, blocked cells, seed, config)
//  2. Build NavGrid and SimulationContext
//  3. Agents
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		Config:   config.Default(),
		Dt:       1.0 / 60,
		cellSize: nav.DefaultCellSize,
		seed:     1,
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	if ts.Grid == nil {
		if ts.maskImg == nil && (ts.World.W <= 0 || ts.World.H <= 0) {
			ts.World = nav.Bounds{W: 480, H: 360}
		}
		ts.buildNavGrid()
	} else if ts.World.W <= 0 || ts.World.H <= 0 {
		ts.World = ts.Grid.WorldBounds()
	}
	if !ts.playerSet {
		ts.Input.PlayerX, ts.Input.PlayerY = ts.World.W/2, ts.World.H/2
	}

	ts.Log = NewEventLog(ts.verbose, 0)
	ctxOpts := []Option{WithRandSeed(ts.seed), WithLog(ts.Log), WithWorld(ts.World)}
	if ts.pressure != nil {
		ctxOpts = append(ctxOpts, WithPressureSource(ts.pressure))
	}
	ts.Ctx = NewContext(ts.Config, ts.Grid, ctxOpts...)
	ts.Ctx.Player = PlayerState{X: ts.Input.PlayerX, Y: ts.Input.PlayerY}

	for _, o := range opts {
		if o.kind == simOptAgents {
			o.fn(ts)
		}
	}
	return ts
}

func (ts *TestSim) buildNavGrid() {
	if ts.maskImg != nil {
		c, _, _ := mask.SelectClassifier(ts.maskImg, mask.NewStrict(), mask.NewTolerant())
		b := ts.maskImg.Bounds()
		if ts.World.W <= 0 || ts.World.H <= 0 {
			ts.World = nav.Bounds{W: float64(b.Dx()), H: float64(b.Dy())}
		}
		s := mask.NewImageSampler(ts.maskImg, c, ts.World.W, ts.World.H)
		ts.Grid = nav.Build(s, ts.World, ts.cellSize)
		return
	}

	cols := max(1, int(math.Ceil(ts.World.W/ts.cellSize)))
	rows := max(1, int(math.Ceil(ts.World.H/ts.cellSize)))
	bm := make([]bool, cols*rows)
	for i := range bm {
		bm[i] = true
	}
	for _, c := range ts.blocked {
		if c[0] >= 0 && c[1] >= 0 && c[0] < cols && c[1] < rows {
			bm[c[1]*cols+c[0]] = false
		}
	}
	ts.Grid = nav.FromBitmap(cols, rows, ts.cellSize, bm)
}

// CurrentTick returns the number of ticks run so far.
func (ts *TestSim) CurrentTick() int { return ts.Ctx.Frame }

// Agents returns the live agents, oldest first.
func (ts *TestSim) Agents() []*Agent { return ts.Ctx.Agents }

// RunTicks advances the simulation n ticks.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.runOneTick()
	}
}

// RunUntil advances up to maxTicks, stopping early once predicate holds.
// Returns the tick at which it held, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.runOneTick()
		if predicate(ts) {
			return ts.CurrentTick()
		}
	}
	return -1
}

func (ts *TestSim) runOneTick() {
	if ts.PlayerPath != nil {
		x, y, moving := ts.PlayerPath(ts.Ctx.Frame+1, ts.Dt)
		ts.Input.PlayerX, ts.Input.PlayerY, ts.Input.PlayerMoving = x, y, moving
	}
	Tick(ts.Ctx, ts.Dt, ts.Input)
	if ts.Reporter != nil {
		ts.Reporter.Observe(ts.Ctx)
	}
}
