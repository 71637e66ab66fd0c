package mask

import "image"

// Island is a 4-connected region of same-category pixels.
type Island struct {
	Category Category
	Area     int     // pixel count
	CX, CY   float64 // centroid in pixel coordinates
	Bounds   image.Rectangle
}

// IslandRule says which category to collect and how to filter it.
type IslandRule struct {
	Category Category
	MinArea  int
	MaxCount int // 0 = unlimited
}

// LabelOptions configures Label.
type LabelOptions struct {
	Stride int // seed scan stride; fills still visit every pixel
	Rules  []IslandRule
}

// DefaultLabelOptions collects obstacle hotspots and logistics zones the way
// the zone maps are authored.
func DefaultLabelOptions() LabelOptions {
	return LabelOptions{
		Stride: 2,
		Rules: []IslandRule{
			{Category: Obstacle, MinArea: 120, MaxCount: 18},
			{Category: Logistics, MinArea: 60},
		},
	}
}

// Label finds connected regions over a classified raster. It works on the
// classifier output only and knows nothing about walkability.
func Label(cm *CategoryMap, opts LabelOptions) []Island {
	stride := opts.Stride
	if stride < 1 {
		stride = 1
	}
	rules := make(map[Category]IslandRule, len(opts.Rules))
	for _, r := range opts.Rules {
		rules[r.Category] = r
	}
	counts := make(map[Category]int, len(rules))

	seen := make([]bool, len(cm.Cells))
	var stack []int
	var out []Island

	for y := 0; y < cm.H; y += stride {
		for x := 0; x < cm.W; x += stride {
			idx := y*cm.W + x
			if seen[idx] {
				continue
			}
			cat := cm.Cells[idx]
			rule, ok := rules[cat]
			if !ok {
				seen[idx] = true
				continue
			}

			isl := Island{Category: cat, Bounds: image.Rect(x, y, x+1, y+1)}
			var sumX, sumY int
			seen[idx] = true
			stack = append(stack[:0], idx)
			for len(stack) > 0 {
				cur := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				cx, cy := cur%cm.W, cur/cm.W
				isl.Area++
				sumX += cx
				sumY += cy
				isl.Bounds = isl.Bounds.Union(image.Rect(cx, cy, cx+1, cy+1))

				for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
					nx, ny := cx+d[0], cy+d[1]
					if nx < 0 || ny < 0 || nx >= cm.W || ny >= cm.H {
						continue
					}
					n := ny*cm.W + nx
					if seen[n] || cm.Cells[n] != cat {
						continue
					}
					seen[n] = true
					stack = append(stack, n)
				}
			}

			if isl.Area < rule.MinArea {
				continue
			}
			if rule.MaxCount > 0 && counts[cat] >= rule.MaxCount {
				continue
			}
			counts[cat]++
			isl.CX = float64(sumX) / float64(isl.Area)
			isl.CY = float64(sumY) / float64(isl.Area)
			out = append(out, isl)
		}
	}
	return out
}

// FindSpawnMarker returns the first spawn-marker pixel on a stride-2 scan,
// falling back to the first walkable pixel and finally the raster centre.
func FindSpawnMarker(cm *CategoryMap) (float64, float64) {
	for _, want := range []Category{SpawnMarker, Walkable} {
		for y := 0; y < cm.H; y += 2 {
			for x := 0; x < cm.W; x += 2 {
				if cm.Cells[y*cm.W+x] == want {
					return float64(x), float64(y)
				}
			}
		}
	}
	return float64(cm.W) * 0.5, float64(cm.H) * 0.5
}
