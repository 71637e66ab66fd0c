// Package scene loads a zone's mask, overlay and config into a nav.Builder
// and keeps them current when the files change. It is shared by the
// real-time and headless hosts.
package scene

import (
	"errors"
	"fmt"
	"image"
	"log"

	"github.com/Garsondee/zone-crowd/internal/config"
	"github.com/Garsondee/zone-crowd/internal/mask"
	"github.com/Garsondee/zone-crowd/internal/nav"
	"github.com/Garsondee/zone-crowd/internal/watch"
)

// Demo mask size used when no mask file is given.
const (
	DemoWidth  = 960
	DemoHeight = 540
)

// Options names the scene inputs. Empty paths mean "none"; a zero World
// falls back to the config, then to the mask size.
type Options struct {
	MaskPath    string
	OverlayPath string
	ConfigPath  string
	World       nav.Bounds
	Seed        int64 // demo mask layout
}

// Scene is the loaded navigation state of one zone.
type Scene struct {
	Config  config.Config
	World   nav.Bounds
	Builder *nav.Builder
	Primary *mask.ImageSampler
	Overlay *mask.ImageSampler
	Census  mask.Census
	Image   image.Image // primary mask as loaded
	Spawn   nav.Point   // spawn marker in world units
	Islands []mask.Island

	opts   Options
	format string // primary mask encoding, e.g. "png"
}

// Load reads the config, mask and overlay named by opts and builds the
// initial grid. A mask with no navigable area is logged, not rejected: the
// grid is simply all blocked.
func Load(opts Options) (*Scene, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	img, format, err := loadImage(opts.MaskPath, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("load mask: %w", err)
	}

	s := &Scene{Config: cfg, Image: img, opts: opts, format: format}
	s.World = resolveWorld(opts.World, cfg.World, img)

	primary, census, err := classify(img, format, cfg.Mask, s.World)
	if err != nil {
		return nil, fmt.Errorf("classify mask: %w", err)
	}
	s.Primary, s.Census = primary, census
	s.Builder = nav.NewBuilder(primary, s.World, cfg.Nav.CellSize)

	if opts.OverlayPath != "" {
		if err := s.ReloadOverlay(); err != nil {
			return nil, fmt.Errorf("load overlay: %w", err)
		}
	}

	s.locate()
	return s, nil
}

// Grid returns the current navigation grid.
func (s *Scene) Grid() *nav.NavGrid { return s.Builder.Grid() }

// ToggleOverlay flips overlay union mode and returns the rebuilt grid.
// Without an overlay it returns the current grid unchanged.
func (s *Scene) ToggleOverlay() *nav.NavGrid {
	if s.Overlay == nil {
		return s.Builder.Grid()
	}
	return s.Builder.SetOverlayActive(!s.Builder.OverlayActive())
}

// ReloadMask re-reads the primary mask from disk.
func (s *Scene) ReloadMask() error {
	if s.opts.MaskPath == "" {
		return nil
	}
	img, format, err := mask.Load(s.opts.MaskPath)
	if err != nil {
		return err
	}
	primary, census, err := classify(img, format, s.Config.Mask, s.World)
	if err != nil {
		return err
	}
	s.Image, s.Primary, s.Census, s.format = img, primary, census, format
	s.Builder.SetPrimary(primary)
	s.locate()
	return nil
}

// ReloadOverlay re-reads the overlay mask from disk.
func (s *Scene) ReloadOverlay() error {
	overlay, err := s.loadOverlay(s.Config.Mask, s.World)
	if err != nil || overlay == nil {
		return err
	}
	s.Overlay = overlay
	s.Builder.SetOverlay(overlay)
	return nil
}

// ReloadConfig re-reads the config file. Classifier or world size changes
// reclassify both masks and rebuild the grid for the new bounds; a cell size
// change alone just rebuilds. On error the scene keeps its old config.
func (s *Scene) ReloadConfig() error {
	if s.opts.ConfigPath == "" {
		return nil
	}
	cfg, err := config.Load(s.opts.ConfigPath)
	if err != nil {
		return err
	}
	world := resolveWorld(s.opts.World, cfg.World, s.Image)
	if cfg.Mask == s.Config.Mask && world == s.World {
		s.Config = cfg
		s.Builder.SetCellSize(cfg.Nav.CellSize)
		return nil
	}

	primary, census, err := classify(s.Image, s.format, cfg.Mask, world)
	if err != nil {
		return err
	}
	overlay, err := s.loadOverlay(cfg.Mask, world)
	if err != nil {
		return err
	}
	s.Config, s.World = cfg, world
	s.Primary, s.Census, s.Overlay = primary, census, overlay
	var ov mask.Sampler // a nil *ImageSampler must stay a nil interface
	if overlay != nil {
		ov = overlay
	}
	s.Builder.Reset(primary, ov, world, cfg.Nav.CellSize)
	s.locate()
	return nil
}

// Apply handles one watcher event. It reports whether the grid changed so
// the host can hand the new grid to the crowd.
func (s *Scene) Apply(ev watch.Event) (bool, error) {
	gen := s.Builder.Generation()
	var err error
	switch ev.Kind {
	case watch.MaskChanged:
		err = s.ReloadMask()
	case watch.OverlayChanged:
		err = s.ReloadOverlay()
	case watch.ConfigChanged:
		err = s.ReloadConfig()
	default:
		return false, fmt.Errorf("unknown watch event %s", ev.Kind)
	}
	if err != nil {
		return false, fmt.Errorf("reload %s: %w", ev.Kind, err)
	}
	return s.Builder.Generation() != gen, nil
}

// WatchTargets lists the files a watcher should follow for this scene.
func (s *Scene) WatchTargets() []watch.Target {
	return []watch.Target{
		{Kind: watch.MaskChanged, Path: s.opts.MaskPath},
		{Kind: watch.OverlayChanged, Path: s.opts.OverlayPath},
		{Kind: watch.ConfigChanged, Path: s.opts.ConfigPath},
	}
}

// loadOverlay reads and classifies the overlay for world. It returns nil
// without an overlay path. An overlay authored at a different resolution is
// resampled to the primary mask's size first.
func (s *Scene) loadOverlay(cfg config.Mask, world nav.Bounds) (*mask.ImageSampler, error) {
	if s.opts.OverlayPath == "" {
		return nil, nil
	}
	img, format, err := mask.Load(s.opts.OverlayPath)
	if err != nil {
		return nil, err
	}
	if pb := s.Image.Bounds(); img.Bounds().Size() != pb.Size() {
		img = mask.ScaleTo(img, pb.Dx(), pb.Dy())
	}
	overlay, _, err := classify(img, format, cfg, world)
	return overlay, err
}

// locate finds the spawn marker and labels islands on the primary mask.
func (s *Scene) locate() {
	cm := s.Primary.Map()
	px, py := mask.FindSpawnMarker(cm)
	s.Spawn = nav.Point{
		X: px * s.World.W / float64(max(cm.W, 1)),
		Y: py * s.World.H / float64(max(cm.H, 1)),
	}
	s.Islands = mask.Label(cm, mask.DefaultLabelOptions())
}

// Classifiers builds the strict and tolerant classifiers from cfg.
func Classifiers(cfg config.Mask) (mask.StrictClassifier, mask.TolerantClassifier) {
	strict := mask.StrictClassifier{Tol: cfg.StrictTol, WhiteTol: cfg.WhiteTol}
	tolerant := mask.TolerantClassifier{
		Tol:       cfg.TolerantTol,
		WhiteTol:  cfg.WhiteTol,
		MinBlue:   cfg.MinBlue,
		Dominance: cfg.Dominance,
	}
	return strict, tolerant
}

func classify(img image.Image, format string, cfg config.Mask, world nav.Bounds) (*mask.ImageSampler, mask.Census, error) {
	strict, tolerant := Classifiers(cfg)
	c, census, err := mask.SelectForFormat(img, format, strict, tolerant)
	switch {
	case errors.Is(err, mask.ErrNoNavigableArea):
		log.Printf("scene: %v (%s)", err, census)
	case err != nil:
		return nil, census, err
	}
	return mask.NewImageSampler(img, c, world.W, world.H), census, nil
}

func loadImage(path string, seed int64) (image.Image, string, error) {
	if path == "" {
		return mask.Demo(DemoWidth, DemoHeight, seed), "png", nil
	}
	return mask.Load(path)
}

func resolveWorld(flag nav.Bounds, cfg config.World, img image.Image) nav.Bounds {
	switch {
	case flag.W > 0 && flag.H > 0:
		return flag
	case cfg.Width > 0 && cfg.Height > 0:
		return nav.Bounds{W: cfg.Width, H: cfg.Height}
	default:
		b := img.Bounds()
		return nav.Bounds{W: float64(b.Dx()), H: float64(b.Dy())}
	}
}
