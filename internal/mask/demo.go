package mask

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand"
)

// Palette colours used when authoring masks.
var (
	ColorWalkable  = color.NRGBA{R: 0, G: 0, B: 255, A: 255}
	ColorObstacle  = color.NRGBA{R: 255, G: 0, B: 0, A: 255}
	ColorLogistics = color.NRGBA{R: 255, G: 255, B: 0, A: 255}
	ColorSpawn     = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	ColorVoid      = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
)

// Demo generates a w×h walkable floor with scattered obstacle blocks, a
// logistics strip along the bottom edge and a spawn marker near the left edge.
// Used by the hosts when no mask file is given.
func Demo(w, h int, seed int64) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- layout only
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	fill(img, img.Bounds(), ColorWalkable)

	margin := w / 10
	blocks := 6 + rng.Intn(6)
	for i := 0; i < blocks; i++ {
		bw := w/24 + rng.Intn(w/12+1)
		bh := h/24 + rng.Intn(h/8+1)
		x := margin + rng.Intn(max(1, w-2*margin-bw))
		y := h/10 + rng.Intn(max(1, h*7/10-bh))
		fill(img, image.Rect(x, y, x+bw, y+bh), ColorObstacle)
	}

	strip := max(2, h/20)
	fill(img, image.Rect(0, h-strip, w, h), ColorLogistics)

	sx, sy := max(1, w/40), h/2
	fill(img, image.Rect(sx, sy, sx+3, sy+3), ColorSpawn)
	return img
}

func fill(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
}
