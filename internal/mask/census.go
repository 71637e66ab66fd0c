package mask

import (
	"errors"
	"fmt"
	"image"
)

// ErrNoNavigableArea is returned when neither classifier finds a single
// walkable or obstacle pixel in a mask.
var ErrNoNavigableArea = errors.New("mask: no navigable area")

// CategoryMap is a per-pixel classification of a whole raster.
type CategoryMap struct {
	W, H  int
	Cells []Category
}

// Classify runs c over every pixel of img.
func Classify(img image.Image, c ColorClassifier) *CategoryMap {
	b := img.Bounds()
	cm := &CategoryMap{W: b.Dx(), H: b.Dy(), Cells: make([]Category, b.Dx()*b.Dy())}
	for y := 0; y < cm.H; y++ {
		for x := 0; x < cm.W; x++ {
			r, g, bl := rgbAt(img, x, y)
			cm.Cells[y*cm.W+x] = c.Classify(r, g, bl)
		}
	}
	return cm
}

// At returns the category at pixel (x, y); out of range is Unclassified.
func (cm *CategoryMap) At(x, y int) Category {
	if x < 0 || y < 0 || x >= cm.W || y >= cm.H {
		return Unclassified
	}
	return cm.Cells[y*cm.W+x]
}

// Census counts pixels per category.
type Census struct {
	Counts [categoryCount]int
	Total  int
}

// Count returns the number of pixels in category c.
func (cs Census) Count(c Category) int {
	if int(c) >= len(cs.Counts) {
		return 0
	}
	return cs.Counts[c]
}

// Navigable reports whether the mask has any walkable or obstacle pixels.
func (cs Census) Navigable() bool {
	return cs.Counts[Walkable] > 0 || cs.Counts[Obstacle] > 0
}

func (cs Census) String() string {
	return fmt.Sprintf("walkable=%d obstacle=%d logistics=%d spawn=%d other=%d",
		cs.Counts[Walkable], cs.Counts[Obstacle], cs.Counts[Logistics],
		cs.Counts[SpawnMarker], cs.Counts[Unclassified])
}

// TakeCensus classifies every pixel of img with c and tallies the result.
func TakeCensus(img image.Image, c ColorClassifier) Census {
	var cs Census
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl := rgbAt(img, x, y)
			cs.Counts[c.Classify(r, g, bl)]++
			cs.Total++
		}
	}
	return cs
}

// SelectClassifier picks the classifier for a freshly loaded mask. The strict
// classifier is tried first; if it sees no walkable and no obstacle pixels the
// same image is retried once with the tolerant classifier. When that also
// fails the tolerant classifier is returned together with ErrNoNavigableArea,
// so callers can still build an all-blocked grid.
func SelectClassifier(img image.Image, strict, tolerant ColorClassifier) (ColorClassifier, Census, error) {
	cs := TakeCensus(img, strict)
	if cs.Navigable() {
		return strict, cs, nil
	}
	cs = TakeCensus(img, tolerant)
	if cs.Navigable() {
		return tolerant, cs, nil
	}
	return tolerant, cs, ErrNoNavigableArea
}

// SelectForFormat is SelectClassifier with a shortcut for lossy formats,
// which go straight to the tolerant classifier.
func SelectForFormat(img image.Image, format string, strict, tolerant ColorClassifier) (ColorClassifier, Census, error) {
	if !Lossy(format) {
		return SelectClassifier(img, strict, tolerant)
	}
	cs := TakeCensus(img, tolerant)
	if !cs.Navigable() {
		return tolerant, cs, ErrNoNavigableArea
	}
	return tolerant, cs, nil
}
