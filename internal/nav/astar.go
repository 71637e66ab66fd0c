package nav

import "math"

var dirs = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// octile is the exact obstacle-free distance under unit/√2 step costs.
func octile(ax, ay, bx, by int) float64 {
	dx := math.Abs(float64(ax - bx))
	dy := math.Abs(float64(ay - by))
	return dx + dy + (math.Sqrt2-2)*math.Min(dx, dy)
}

// openItem is a heap entry; seq breaks f ties in insertion order.
type openItem struct {
	idx int32
	f   float64
	seq uint32
}

type openHeap []openItem

func (h openHeap) less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}

func (h *openHeap) push(it openItem) {
	*h = append(*h, it)
	s := *h
	i := len(s) - 1
	for i > 0 {
		p := (i - 1) / 2
		if !s.less(i, p) {
			break
		}
		s[i], s[p] = s[p], s[i]
		i = p
	}
}

func (h *openHeap) pop() openItem {
	s := *h
	top := s[0]
	n := len(s) - 1
	s[0] = s[n]
	s = s[:n]
	i := 0
	for {
		l := 2*i + 1
		if l >= n {
			break
		}
		m := l
		if r := l + 1; r < n && s.less(r, l) {
			m = r
		}
		if !s.less(m, i) {
			break
		}
		s[i], s[m] = s[m], s[i]
		i = m
	}
	*h = s
	return top
}

// PathFinder runs A* over one grid. Its scratch buffers are dense arrays
// sized to the grid and reused between searches; a PathFinder is not safe
// for concurrent use.
type PathFinder struct {
	grid     *NavGrid
	g        []float64
	cameFrom []int32
	seen     []uint32 // == stamp when g/cameFrom are valid for this search
	closed   []uint32 // == stamp once expanded
	stamp    uint32
	open     openHeap
	seq      uint32

	// Expanded counts nodes popped by the last search.
	Expanded int
}

// NewPathFinder allocates scratch space for grid.
func NewPathFinder(grid *NavGrid) *PathFinder {
	n := grid.cols * grid.rows
	return &PathFinder{
		grid:     grid,
		g:        make([]float64, n),
		cameFrom: make([]int32, n),
		seen:     make([]uint32, n),
		closed:   make([]uint32, n),
	}
}

// Grid returns the grid this finder searches.
func (pf *PathFinder) Grid() *NavGrid { return pf.grid }

// FindPath is a convenience wrapper that allocates a fresh PathFinder.
func (ng *NavGrid) FindPath(sx, sy, gx, gy float64) []Point {
	return NewPathFinder(ng).FindPath(sx, sy, gx, gy)
}

// FindPath returns world-space cell centres from the start cell to the goal
// cell in travel order. Endpoints are clamped into the grid. When either
// endpoint is unwalkable, or no route exists, the result is a single point at
// the goal cell centre: a best-effort answer the caller should re-evaluate.
func (pf *PathFinder) FindPath(sx, sy, gx, gy float64) []Point {
	ng := pf.grid
	scx, scy := ng.ClampCell(ng.WorldToCell(sx, sy))
	gcx, gcy := ng.ClampCell(ng.WorldToCell(gx, gy))
	gwx, gwy := ng.CellToWorld(gcx, gcy)
	bestEffort := []Point{{X: gwx, Y: gwy}}

	pf.Expanded = 0
	if ng.IsBlocked(scx, scy) || ng.IsBlocked(gcx, gcy) {
		return bestEffort
	}
	if scx == gcx && scy == gcy {
		return bestEffort
	}

	pf.nextStamp()
	cols := ng.cols
	start := int32(scy*cols + scx)
	goal := int32(gcy*cols + gcx)

	pf.open = pf.open[:0]
	pf.seq = 0
	pf.g[start] = 0
	pf.cameFrom[start] = -1
	pf.seen[start] = pf.stamp
	pf.pushOpen(start, octile(scx, scy, gcx, gcy))

	for len(pf.open) > 0 {
		cur := pf.open.pop()
		if pf.closed[cur.idx] == pf.stamp {
			continue
		}
		pf.closed[cur.idx] = pf.stamp
		pf.Expanded++
		if cur.idx == goal {
			return pf.reconstruct(goal)
		}

		cx, cy := int(cur.idx)%cols, int(cur.idx)/cols
		for _, d := range dirs {
			nx, ny := cx+d[0], cy+d[1]
			if ng.IsBlocked(nx, ny) {
				continue
			}
			diagonal := d[0] != 0 && d[1] != 0
			// No corner-cutting through blocked orthogonal neighbours.
			if diagonal && (ng.IsBlocked(cx+d[0], cy) || ng.IsBlocked(cx, cy+d[1])) {
				continue
			}
			ni := int32(ny*cols + nx)
			if pf.closed[ni] == pf.stamp {
				continue
			}
			cost := 1.0
			if diagonal {
				cost = math.Sqrt2
			}
			tentative := pf.g[cur.idx] + cost
			if pf.seen[ni] == pf.stamp && tentative >= pf.g[ni] {
				continue
			}
			pf.seen[ni] = pf.stamp
			pf.g[ni] = tentative
			pf.cameFrom[ni] = cur.idx
			pf.pushOpen(ni, tentative+octile(nx, ny, gcx, gcy))
		}
	}
	return bestEffort
}

func (pf *PathFinder) pushOpen(idx int32, f float64) {
	pf.open.push(openItem{idx: idx, f: f, seq: pf.seq})
	pf.seq++
}

func (pf *PathFinder) nextStamp() {
	pf.stamp++
	if pf.stamp == 0 {
		for i := range pf.seen {
			pf.seen[i] = 0
			pf.closed[i] = 0
		}
		pf.stamp = 1
	}
}

func (pf *PathFinder) reconstruct(goal int32) []Point {
	n := 0
	for i := goal; i >= 0; i = pf.cameFrom[i] {
		n++
	}
	path := make([]Point, n)
	cols := pf.grid.cols
	for i, k := goal, n-1; i >= 0; i, k = pf.cameFrom[i], k-1 {
		wx, wy := pf.grid.CellToWorld(int(i)%cols, int(i)/cols)
		path[k] = Point{X: wx, Y: wy}
	}
	return path
}

// PathLength sums the Euclidean lengths of consecutive waypoint segments.
func PathLength(path []Point) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += math.Hypot(path[i].X-path[i-1].X, path[i].Y-path[i-1].Y)
	}
	return total
}
