package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/Garsondee/zone-crowd/internal/nav"
	"github.com/Garsondee/zone-crowd/internal/scene"
	"github.com/Garsondee/zone-crowd/internal/watch"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	var opts scene.Options
	var worldFlag string
	var seed int64
	var watchFiles, verbose bool
	var waiting int

	flag.StringVar(&opts.MaskPath, "mask", "", "walkability mask image (png, jpeg, bmp, tiff, webp); empty uses a generated demo")
	flag.StringVar(&opts.OverlayPath, "overlay", "", "optional event overlay mask, toggled with O")
	flag.StringVar(&opts.ConfigPath, "config", "", "YAML tunables file")
	flag.StringVar(&worldFlag, "world", "", "world size WxH (default: config, then mask size)")
	flag.Int64Var(&seed, "seed", 1, "RNG seed")
	flag.BoolVar(&watchFiles, "watch", false, "rebuild when the mask, overlay or config file changes")
	flag.BoolVar(&verbose, "verbose", false, "record per-agent path events")
	flag.IntVar(&waiting, "waiting", -1, "match population to this waiting count instead of pressure")
	flag.Parse()

	if worldFlag != "" {
		w, err := parseWorld(worldFlag)
		if err != nil {
			log.Fatal(err)
		}
		opts.World = w
	}
	opts.Seed = seed

	sc, err := scene.Load(opts)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("zone: world %.0fx%.0f, grid %dx%d, walkable %d, %s",
		sc.World.W, sc.World.H, sc.Grid().Cols(), sc.Grid().Rows(), sc.Grid().WalkableCount(), sc.Census)

	var w *watch.Watcher
	if watchFiles {
		if w, err = watch.New(watch.DefaultDebounce, sc.WatchTargets()...); err != nil {
			log.Fatal(err)
		}
		defer w.Close()
	}

	g := NewGame(sc, w, seed, verbose, waiting)
	ebiten.SetWindowTitle("Zone")
	ebiten.SetWindowSize(int(sc.World.W), int(sc.World.H))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}

func parseWorld(s string) (nav.Bounds, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	w, errW := strconv.ParseFloat(ws, 64)
	h, errH := strconv.ParseFloat(hs, 64)
	if !ok || errW != nil || errH != nil || w <= 0 || h <= 0 {
		return nav.Bounds{}, fmt.Errorf("invalid -world %q, want WxH", s)
	}
	return nav.Bounds{W: w, H: h}, nil
}
