package raster

import (
	"image"
	"image/color"

	"github.com/deathdisco/softclip/pkg/gui/ui"
)

// ImageMap holds images referenced by ui.PrimImage primitives. It lives as
// long as the surface it is drawn to.
type ImageMap struct {
	next   ui.ImageID
	images map[ui.ImageID]image.Image
}

// NewImageMap creates an empty map.
func NewImageMap() *ImageMap {
	return &ImageMap{images: make(map[ui.ImageID]image.Image)}
}

// Insert stores img and returns its id.
func (m *ImageMap) Insert(img image.Image) ui.ImageID {
	m.next++
	m.images[m.next] = img
	return m.next
}

// Get looks up an image.
func (m *ImageMap) Get(id ui.ImageID) (image.Image, bool) {
	if m == nil {
		return nil, false
	}
	img, ok := m.images[id]
	return img, ok
}

// Len returns the number of stored images.
func (m *ImageMap) Len() int {
	return len(m.images)
}

// Clear drops every image.
func (m *ImageMap) Clear() {
	clear(m.images)
}

// TransferCurve draws the hard-clip transfer function (input on x, output
// on y, both -2..2 with the knee at ±1) as a size×size icon.
func TransferCurve(size int, line color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	if size < 2 {
		return img
	}
	half := float64(size-1) / 2
	for px := 0; px < size; px++ {
		in := (float64(px) - half) / half * 2
		out := in
		if out > 1 {
			out = 1
		} else if out < -1 {
			out = -1
		}
		py := int(half - out/2*half + 0.5)
		img.SetRGBA(px, py, line)
	}
	return img
}
