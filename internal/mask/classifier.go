package mask

// Category is the terrain meaning encoded by a mask pixel's colour.
type Category uint8

const (
	Unclassified Category = iota
	Walkable              // pure blue
	Obstacle              // pure red, interactive hotspot
	Logistics             // pure yellow
	SpawnMarker           // near-white dot
	categoryCount
)

func (c Category) String() string {
	switch c {
	case Walkable:
		return "walkable"
	case Obstacle:
		return "obstacle"
	case Logistics:
		return "logistics"
	case SpawnMarker:
		return "spawn"
	default:
		return "unclassified"
	}
}

// ColorClassifier maps an RGB triple to a Category. Implementations must be
// pure: the same input always yields the same category.
type ColorClassifier interface {
	Classify(r, g, b uint8) Category
}

// Default tolerances. Tolerant values match what lossy JPEG masks need in
// practice; strict values only absorb rounding from lossless encoders.
const (
	DefaultStrictTol   = 2
	DefaultWhiteTol    = 30
	DefaultTolerantTol = 48
	DefaultMinBlue     = 120
	DefaultDominance   = 40
)

// StrictClassifier matches pure primaries within a small tolerance.
// Use it for lossless masks (PNG, BMP, TIFF).
type StrictClassifier struct {
	Tol      int // per-channel tolerance for blue/red/yellow
	WhiteTol int // per-channel tolerance for the spawn marker
}

// NewStrict returns a StrictClassifier with default tolerances.
func NewStrict() StrictClassifier {
	return StrictClassifier{Tol: DefaultStrictTol, WhiteTol: DefaultWhiteTol}
}

func (c StrictClassifier) Classify(r, g, b uint8) Category {
	return matchPrimaries(r, g, b, c.Tol, c.WhiteTol)
}

// TolerantClassifier widens the per-channel tolerance and adds a blue
// dominance rule, so compression-shifted blues still read as walkable.
type TolerantClassifier struct {
	Tol       int // per-channel tolerance for exact matches
	WhiteTol  int
	MinBlue   int // blue channel must be at least this
	Dominance int // blue must exceed both red and green by this margin
}

// NewTolerant returns a TolerantClassifier with default tolerances.
func NewTolerant() TolerantClassifier {
	return TolerantClassifier{
		Tol:       DefaultTolerantTol,
		WhiteTol:  DefaultWhiteTol,
		MinBlue:   DefaultMinBlue,
		Dominance: DefaultDominance,
	}
}

func (c TolerantClassifier) Classify(r, g, b uint8) Category {
	bi, ri, gi := int(b), int(r), int(g)
	if bi >= c.MinBlue && bi-ri >= c.Dominance && bi-gi >= c.Dominance {
		return Walkable
	}
	return matchPrimaries(r, g, b, c.Tol, c.WhiteTol)
}

func matchPrimaries(r, g, b uint8, tol, whiteTol int) Category {
	switch {
	case near(r, g, b, 0, 0, 255, tol):
		return Walkable
	case near(r, g, b, 255, 0, 0, tol):
		return Obstacle
	case near(r, g, b, 255, 255, 0, tol):
		return Logistics
	case near(r, g, b, 255, 255, 255, whiteTol):
		return SpawnMarker
	}
	return Unclassified
}

func near(r, g, b uint8, tr, tg, tb, tol int) bool {
	return absDiff(int(r), tr) <= tol &&
		absDiff(int(g), tg) <= tol &&
		absDiff(int(b), tb) <= tol
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
