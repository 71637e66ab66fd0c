package nav

import "github.com/Garsondee/zone-crowd/internal/mask"

// Builder owns the inputs of the current grid and rebuilds it wholesale when
// any of them change. Call it between ticks only.
type Builder struct {
	primary       mask.Sampler
	overlay       mask.Sampler
	overlayActive bool
	bounds        Bounds
	cellSize      float64

	grid       *NavGrid
	generation int
}

// NewBuilder builds the initial grid.
func NewBuilder(primary mask.Sampler, bounds Bounds, cellSize float64) *Builder {
	b := &Builder{primary: primary, bounds: bounds, cellSize: cellSize}
	b.rebuild()
	return b
}

// Grid returns the current grid.
func (b *Builder) Grid() *NavGrid { return b.grid }

// Generation increments on every rebuild.
func (b *Builder) Generation() int { return b.generation }

// Bounds returns the world bounds the grid covers.
func (b *Builder) Bounds() Bounds { return b.bounds }

// OverlayActive reports whether the overlay is unioned into the grid.
func (b *Builder) OverlayActive() bool { return b.overlayActive && b.overlay != nil }

// SetPrimary swaps the primary mask (e.g. after an asset reload).
func (b *Builder) SetPrimary(s mask.Sampler) *NavGrid {
	b.primary = s
	return b.rebuild()
}

// SetOverlay replaces the overlay sampler. It only affects the grid while
// the overlay is active.
func (b *Builder) SetOverlay(s mask.Sampler) *NavGrid {
	b.overlay = s
	if b.overlayActive {
		return b.rebuild()
	}
	return b.grid
}

// SetOverlayActive toggles union mode.
func (b *Builder) SetOverlayActive(active bool) *NavGrid {
	if active == b.overlayActive {
		return b.grid
	}
	b.overlayActive = active
	return b.rebuild()
}

// Resize changes the world bounds.
func (b *Builder) Resize(bounds Bounds) *NavGrid {
	if bounds == b.bounds {
		return b.grid
	}
	b.bounds = bounds
	return b.rebuild()
}

// SetCellSize changes the grid resolution.
func (b *Builder) SetCellSize(cellSize float64) *NavGrid {
	if cellSize == b.cellSize {
		return b.grid
	}
	b.cellSize = cellSize
	return b.rebuild()
}

// Reset replaces every input at once and rebuilds a single time. The
// overlay's active state is kept.
func (b *Builder) Reset(primary, overlay mask.Sampler, bounds Bounds, cellSize float64) *NavGrid {
	b.primary, b.overlay = primary, overlay
	b.bounds, b.cellSize = bounds, cellSize
	return b.rebuild()
}

func (b *Builder) rebuild() *NavGrid {
	var opts []BuildOption
	if b.OverlayActive() {
		opts = append(opts, WithOverlay(b.overlay))
	}
	b.grid = Build(b.primary, b.bounds, b.cellSize, opts...)
	b.generation++
	return b.grid
}
