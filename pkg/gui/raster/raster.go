// Package raster paints ui primitives into an RGBA frame.
package raster

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/deathdisco/softclip/pkg/gui/ui"
)

// Renderer owns the frame buffer a surface presents.
type Renderer struct {
	frame *image.RGBA
	face  font.Face
}

// NewRenderer allocates a frame of the given size.
func NewRenderer(width, height int) *Renderer {
	return &Renderer{
		frame: image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1))),
		face:  basicfont.Face7x13,
	}
}

// Resize reallocates the frame when the size changed.
func (r *Renderer) Resize(width, height int) {
	b := r.frame.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return
	}
	r.frame = image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
}

// Frame returns the last painted frame.
func (r *Renderer) Frame() *image.RGBA {
	return r.frame
}

// Fill paints prims in order. Image primitives whose id is missing from
// images are skipped.
func (r *Renderer) Fill(prims []ui.Primitive, images *ImageMap) {
	for i := range prims {
		p := &prims[i]
		switch p.Kind {
		case ui.PrimRect:
			xdraw.Draw(r.frame, pixelRect(p.Rect), image.NewUniform(p.Color), image.Point{}, xdraw.Over)
		case ui.PrimText:
			r.text(p)
		case ui.PrimImage:
			if img, ok := images.Get(p.Image); ok {
				xdraw.ApproxBiLinear.Scale(r.frame, pixelRect(p.Rect), img, img.Bounds(), xdraw.Over, nil)
			}
		}
	}
}

// Release drops the frame buffer.
func (r *Renderer) Release() {
	r.frame = image.NewRGBA(image.Rectangle{})
}

func (r *Renderer) text(p *ui.Primitive) {
	d := font.Drawer{
		Dst:  r.frame,
		Src:  image.NewUniform(p.Color),
		Face: r.face,
		Dot: fixed.Point26_6{
			X: fixed.I(int(math.Round(p.Rect.X))),
			Y: fixed.I(int(math.Round(p.Rect.Y))) + r.face.Metrics().Ascent,
		},
	}
	d.DrawString(p.Text)
}

// TextWidth returns the advance of s in pixels.
func (r *Renderer) TextWidth(s string) int {
	return font.MeasureString(r.face, s).Ceil()
}

func pixelRect(r ui.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)),
		int(math.Round(r.Y)),
		int(math.Round(r.X+r.W)),
		int(math.Round(r.Y+r.H)),
	)
}

// Pixel is a convenience for tests and diagnostics.
func (r *Renderer) Pixel(x, y int) color.RGBA {
	return r.frame.RGBAAt(x, y)
}
