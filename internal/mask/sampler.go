package mask

import (
	"image"
	"math"
)

// Sampler answers "what terrain is at this world point".
type Sampler interface {
	Category(x, y float64) Category
}

// SamplerFunc adapts a plain function to Sampler.
type SamplerFunc func(x, y float64) Category

func (f SamplerFunc) Category(x, y float64) Category { return f(x, y) }

// ImageSampler classifies pixels of a mask raster, stretching the raster over
// a world of possibly different size. The classification is computed once at
// construction; the strategy is never re-decided per pixel.
type ImageSampler struct {
	cm     *CategoryMap
	scaleX float64 // pixels per world unit
	scaleY float64
}

// NewImageSampler classifies img with c and maps it onto a worldW×worldH world.
// A zero world dimension means "same as the image".
func NewImageSampler(img image.Image, c ColorClassifier, worldW, worldH float64) *ImageSampler {
	return NewMapSampler(Classify(img, c), worldW, worldH)
}

// NewMapSampler wraps an existing CategoryMap.
func NewMapSampler(cm *CategoryMap, worldW, worldH float64) *ImageSampler {
	s := &ImageSampler{cm: cm, scaleX: 1, scaleY: 1}
	if worldW > 0 {
		s.scaleX = float64(cm.W) / worldW
	}
	if worldH > 0 {
		s.scaleY = float64(cm.H) / worldH
	}
	return s
}

// Category returns the category of the pixel under world point (x, y).
// Points outside the raster are Unclassified.
func (s *ImageSampler) Category(x, y float64) Category {
	px := int(math.Floor(x * s.scaleX))
	py := int(math.Floor(y * s.scaleY))
	return s.cm.At(px, py)
}

// Map exposes the underlying classification, e.g. for island labelling.
func (s *ImageSampler) Map() *CategoryMap { return s.cm }
