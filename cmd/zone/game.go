package main

import (
	"fmt"
	"image/color"
	"log"
	"math"

	"github.com/Garsondee/zone-crowd/internal/crowd"
	"github.com/Garsondee/zone-crowd/internal/scene"
	"github.com/Garsondee/zone-crowd/internal/watch"
	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// eventLogLimit bounds the in-memory event log of an interactive session.
const eventLogLimit = 4000

var (
	colBackground = color.RGBA{R: 18, G: 20, B: 24, A: 255}
	colBlocked    = color.RGBA{R: 160, G: 40, B: 40, A: 70}
	colAgent      = color.RGBA{R: 210, G: 200, B: 170, A: 255}
	colHeading    = color.RGBA{R: 90, G: 80, B: 60, A: 255}
	colPlayer     = color.RGBA{R: 80, G: 200, B: 255, A: 255}
	colSoftRing   = color.RGBA{R: 80, G: 200, B: 255, A: 60}
)

// Game is the ebiten host: it owns the scene and the crowd and schedules
// one crowd tick per ebiten update.
type Game struct {
	scene    *scene.Scene
	crowd    *crowd.SimulationContext
	log      *crowd.EventLog
	reporter *crowd.Reporter
	watcher  *watch.Watcher
	motion   crowd.PlayerMotion

	px, py  float64
	moving  bool
	signals crowd.PressureSignals
	waiting int

	paused   bool
	showGrid bool
	showHUD  bool
	prevKeys map[ebiten.Key]bool

	maskImg *ebiten.Image
}

// NewGame builds the crowd over the scene's grid. waiting >= 0 switches the
// crowd to match-waiting mode.
func NewGame(sc *scene.Scene, w *watch.Watcher, seed int64, verbose bool, waiting int) *Game {
	cfg := sc.Config
	if waiting >= 0 {
		cfg.Crowd.MatchWaiting = true
	}
	l := crowd.NewEventLog(verbose, eventLogLimit)
	g := &Game{
		scene:    sc,
		log:      l,
		reporter: crowd.NewReporter(0),
		watcher:  w,
		motion:   crowd.DefaultPlayerMotion(),
		px:       sc.Spawn.X,
		py:       sc.Spawn.Y,
		signals:  crowd.PressureSignals{Quality: 1},
		waiting:  max(waiting, 0),
		showHUD:  true,
		prevKeys: make(map[ebiten.Key]bool),
	}
	g.crowd = crowd.NewContext(cfg, sc.Grid(),
		crowd.WithRandSeed(seed),
		crowd.WithLog(l),
		crowd.WithWorld(sc.World),
	)
	return g
}

func (g *Game) Update() error {
	g.applyWatchEvents()
	g.handleInput()
	if g.paused {
		return nil
	}

	dt := 1 / float64(ebiten.TPS())
	vx, vy := movementAxis()
	sprint := ebiten.IsKeyPressed(ebiten.KeyShift)
	g.px, g.py, g.moving = crowd.StepPlayer(g.scene.Grid(), g.px, g.py, vx, vy, sprint, dt, g.motion)
	g.px = math.Max(0, math.Min(g.scene.World.W, g.px))
	g.py = math.Max(0, math.Min(g.scene.World.H, g.py))

	crowd.Tick(g.crowd, dt, crowd.TickInput{
		PlayerX:      g.px,
		PlayerY:      g.py,
		PlayerMoving: g.moving,
		Signals:      g.signals,
		WaitingCount: g.waiting,
	})
	g.reporter.Observe(g.crowd)
	return nil
}

// applyWatchEvents drains pending file changes between ticks.
func (g *Game) applyWatchEvents() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case ev, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			changed, err := g.scene.Apply(ev)
			if err != nil {
				log.Printf("zone: %v", err)
				continue
			}
			if ev.Kind == watch.ConfigChanged {
				match := g.crowd.Config.MatchWaiting
				g.crowd.ApplyConfig(g.scene.Config)
				if match {
					g.crowd.Config.MatchWaiting = true
				}
				g.crowd.World = g.scene.World
			}
			if ev.Kind == watch.MaskChanged {
				g.maskImg = nil
			}
			if changed {
				g.crowd.SetGrid(g.scene.Grid())
			}
			log.Printf("zone: %s reloaded (grid changed: %v)", ev.Kind, changed)
		case err, ok := <-g.watcher.Errors:
			if ok {
				log.Printf("zone: watch: %v", err)
			}
		default:
			return
		}
	}
}

func movementAxis() (vx, vy float64) {
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		vy--
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		vy++
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		vx--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		vx++
	}
	return vx, vy
}

// pressed reports a key going down this frame.
func (g *Game) pressed(cur map[ebiten.Key]bool, k ebiten.Key) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !g.prevKeys[k]
}

// handleInput processes toggle keypresses (edge-triggered).
func (g *Game) handleInput() {
	cur := map[ebiten.Key]bool{}

	if g.pressed(cur, ebiten.KeyO) {
		g.crowd.SetGrid(g.scene.ToggleOverlay())
	}
	if g.pressed(cur, ebiten.KeyG) {
		g.showGrid = !g.showGrid
	}
	if g.pressed(cur, ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if g.pressed(cur, ebiten.KeyP) {
		g.paused = !g.paused
	}
	if g.pressed(cur, ebiten.KeyB) {
		g.signals.Backlog += 5
	}
	if g.pressed(cur, ebiten.KeyN) {
		g.signals.Backlog = max(0, g.signals.Backlog-5)
	}
	if g.pressed(cur, ebiten.KeyE) {
		g.signals.ActiveEvents = (g.signals.ActiveEvents + 1) % 4
	}
	if g.pressed(cur, ebiten.KeyEqual) {
		g.waiting += 10
	}
	if g.pressed(cur, ebiten.KeyMinus) {
		g.waiting = max(0, g.waiting-10)
	}
	if g.pressed(cur, ebiten.KeyC) {
		text := g.reporter.WindowSummary().Format() + "\n" + g.log.Format()
		if err := clipboard.WriteAll(text); err != nil {
			log.Printf("zone: clipboard: %v", err)
		} else {
			log.Printf("zone: copied report and %d events", len(g.log.Entries()))
		}
	}

	g.prevKeys = cur
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colBackground)
	g.drawMask(screen)
	if g.showGrid {
		g.drawGrid(screen)
	}

	pr := float32(g.crowd.Config.PlayerRadius)
	vector.StrokeCircle(screen, float32(g.px), float32(g.py), float32(g.crowd.Config.PlayerSoftRadius), 1, colSoftRing, true)

	for _, a := range g.crowd.Snapshot() {
		c := colAgent
		c.A = uint8(255 * a.Alpha)
		r := float32(g.crowd.Config.AgentRadius)
		x, y := float32(a.X), float32(a.Y)
		vector.FillCircle(screen, x, y, r, c, true)
		hx := x + float32(math.Cos(a.Heading))*r
		hy := y + float32(math.Sin(a.Heading))*r
		vector.StrokeLine(screen, x, y, hx, hy, 1.5, colHeading, true)
	}

	vector.FillCircle(screen, float32(g.px), float32(g.py), pr, colPlayer, true)

	if g.showHUD {
		g.drawHUD(screen)
	}
}

func (g *Game) drawMask(screen *ebiten.Image) {
	if g.scene.Image == nil {
		return
	}
	if g.maskImg == nil {
		g.maskImg = ebiten.NewImageFromImage(g.scene.Image)
	}
	b := g.maskImg.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(g.scene.World.W/float64(b.Dx()), g.scene.World.H/float64(b.Dy()))
	op.ColorScale.ScaleAlpha(0.25)
	screen.DrawImage(g.maskImg, op)
}

func (g *Game) drawGrid(screen *ebiten.Image) {
	grid := g.scene.Grid()
	cs := float32(grid.CellSize())
	for cy := 0; cy < grid.Rows(); cy++ {
		for cx := 0; cx < grid.Cols(); cx++ {
			if grid.IsBlocked(cx, cy) {
				vector.FillRect(screen, float32(cx)*cs, float32(cy)*cs, cs, cs, colBlocked, false)
			}
		}
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	s := g.crowd.Stats
	mode := "pressure"
	if g.crowd.Config.MatchWaiting {
		mode = fmt.Sprintf("waiting=%d", g.waiting)
	}
	lines := []string{
		fmt.Sprintf("T=%d agents=%d/%d %s pressure=%.2f", s.Tick, s.Agents, s.Target, mode, s.Pressure),
		fmt.Sprintf("repaths=%d deferred=%d best_effort=%d passes=%d bumps=%d", s.Repaths, s.Deferred, s.BestEffort, s.Passes, s.Bumps),
		fmt.Sprintf("backlog=%d events=%d overlay=%v grid_gen=%d", g.signals.Backlog, g.signals.ActiveEvents, g.scene.Builder.OverlayActive(), g.scene.Builder.Generation()),
		"WASD move  shift sprint  O overlay  G grid  B/N backlog  E events  +/- waiting  P pause  C copy  H hud",
	}
	if g.paused {
		lines = append(lines, "PAUSED")
	}
	for i, l := range lines {
		ebitenutil.DebugPrintAt(screen, l, 6, 6+i*14)
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return int(g.scene.World.W), int(g.scene.World.H)
}
