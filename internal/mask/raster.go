package mask

import (
	"fmt"
	"image"
	"io"
	"os"

	// Std decoders for lossless PNG and lossy JPEG masks.
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode reads a mask raster in any registered format and reports the
// format name ("png", "jpeg", "bmp", "tiff", "webp").
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode mask: %w", err)
	}
	return img, format, nil
}

// Load opens and decodes a mask file.
func Load(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	img, format, err := Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return img, format, nil
}

// Lossy reports whether a decoded format shifts colours during compression,
// in which case the tolerant classifier should be used directly.
func Lossy(format string) bool {
	return format == "jpeg" || format == "webp"
}

// ScaleTo resamples img to w×h with nearest-neighbour filtering. Blending
// filters would invent in-between colours that classify as nothing.
func ScaleTo(img image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// rgbAt returns the non-premultiplied RGB of the pixel at (x, y) relative to
// the image origin.
func rgbAt(img image.Image, x, y int) (uint8, uint8, uint8) {
	b := img.Bounds()
	x += b.Min.X
	y += b.Min.Y
	switch m := img.(type) {
	case *image.NRGBA:
		i := m.PixOffset(x, y)
		return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
	case *image.RGBA:
		i := m.PixOffset(x, y)
		a := m.Pix[i+3]
		if a == 0xff || a == 0 {
			return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
		}
		return unpremul(m.Pix[i], a), unpremul(m.Pix[i+1], a), unpremul(m.Pix[i+2], a)
	}
	r, g, bl, a := img.At(x, y).RGBA()
	if a == 0 {
		return uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8)
	}
	return uint8(r * 0xffff / a >> 8), uint8(g * 0xffff / a >> 8), uint8(bl * 0xffff / a >> 8)
}

func unpremul(c, a uint8) uint8 {
	return uint8(uint16(c) * 0xff / uint16(a))
}
