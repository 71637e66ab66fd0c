package nav

import (
	"math"

	"github.com/Garsondee/zone-crowd/internal/mask"
)

// DefaultCellSize is the world-units-per-cell used for zone maps.
const DefaultCellSize = 12

// Point is a world-space position.
type Point struct {
	X, Y float64
}

// Bounds is the size of the primary world region.
type Bounds struct {
	W, H float64
}

// NavGrid is a coarse walkability bitmap. It is never mutated after
// construction; changes produce a new grid.
type NavGrid struct {
	cellSize      float64
	cols          int
	rows          int
	walkable      []bool
	walkableCount int
	overlay       bool
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	overlay mask.Sampler
}

// WithOverlay unions a secondary mask into the grid. A point the overlay
// reports walkable is walkable even when the primary mask says obstacle.
func WithOverlay(s mask.Sampler) BuildOption {
	return func(o *buildOptions) { o.overlay = s }
}

// Build samples primary at the centre of every cell covering bounds. A cell
// is walkable iff the sample classifies as mask.Walkable.
func Build(primary mask.Sampler, bounds Bounds, cellSize float64, opts ...BuildOption) *NavGrid {
	var o buildOptions
	for _, fn := range opts {
		fn(&o)
	}
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}

	cols := max(1, int(math.Ceil(bounds.W/cellSize)))
	rows := max(1, int(math.Ceil(bounds.H/cellSize)))
	ng := &NavGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		walkable: make([]bool, cols*rows),
		overlay:  o.overlay != nil,
	}

	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			wx, wy := ng.CellToWorld(cx, cy)
			ok := primary.Category(wx, wy) == mask.Walkable
			if !ok && o.overlay != nil {
				ok = o.overlay.Category(wx, wy) == mask.Walkable
			}
			if ok {
				ng.walkable[cy*cols+cx] = true
				ng.walkableCount++
			}
		}
	}
	return ng
}

// FromBitmap builds a grid from an explicit row-major walkability bitmap.
// The slice is copied.
func FromBitmap(cols, rows int, cellSize float64, walkable []bool) *NavGrid {
	ng := &NavGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		walkable: make([]bool, cols*rows),
	}
	copy(ng.walkable, walkable)
	for _, w := range ng.walkable {
		if w {
			ng.walkableCount++
		}
	}
	return ng
}

// Open returns a grid with every cell walkable.
func Open(cols, rows int, cellSize float64) *NavGrid {
	bm := make([]bool, cols*rows)
	for i := range bm {
		bm[i] = true
	}
	return FromBitmap(cols, rows, cellSize, bm)
}

// Cols returns the grid width in cells.
func (ng *NavGrid) Cols() int { return ng.cols }

// Rows returns the grid height in cells.
func (ng *NavGrid) Rows() int { return ng.rows }

// CellSize returns world units per cell.
func (ng *NavGrid) CellSize() float64 { return ng.cellSize }

// WalkableCount returns the number of passable cells.
func (ng *NavGrid) WalkableCount() int { return ng.walkableCount }

// HasOverlay reports whether the grid was built in union mode.
func (ng *NavGrid) HasOverlay() bool { return ng.overlay }

// Walkable reports whether cell (cx, cy) is passable. Out of range is not.
func (ng *NavGrid) Walkable(cx, cy int) bool {
	if cx < 0 || cy < 0 || cx >= ng.cols || cy >= ng.rows {
		return false
	}
	return ng.walkable[cy*ng.cols+cx]
}

// IsBlocked is the negation of Walkable.
func (ng *NavGrid) IsBlocked(cx, cy int) bool {
	return !ng.Walkable(cx, cy)
}

// IsWalkable answers a world-space point query against the grid.
func (ng *NavGrid) IsWalkable(wx, wy float64) bool {
	if wx < 0 || wy < 0 {
		return false
	}
	cx, cy := ng.WorldToCell(wx, wy)
	return ng.Walkable(cx, cy)
}

// WorldToCell converts world coordinates to (unclamped) cell coordinates.
func (ng *NavGrid) WorldToCell(wx, wy float64) (int, int) {
	return int(math.Floor(wx / ng.cellSize)), int(math.Floor(wy / ng.cellSize))
}

// ClampCell clamps cell coordinates into the grid.
func (ng *NavGrid) ClampCell(cx, cy int) (int, int) {
	return min(max(cx, 0), ng.cols-1), min(max(cy, 0), ng.rows-1)
}

// CellToWorld returns the world-space centre of cell (cx, cy).
func (ng *NavGrid) CellToWorld(cx, cy int) (float64, float64) {
	return (float64(cx) + 0.5) * ng.cellSize, (float64(cy) + 0.5) * ng.cellSize
}

// WorldBounds returns the world extent covered by the grid.
func (ng *NavGrid) WorldBounds() Bounds {
	return Bounds{W: float64(ng.cols) * ng.cellSize, H: float64(ng.rows) * ng.cellSize}
}
