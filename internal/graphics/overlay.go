package graphics

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	overlayBackground = image.NewUniform(color.RGBA{A: 0xC0})
	overlayText       = image.NewUniform(color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
)

// drawStatus writes msg on a dark strip along the top of img. Text past the
// right edge is clipped.
func drawStatus(img *image.RGBA, msg string) {
	if msg == "" {
		return
	}
	face := basicfont.Face7x13
	height := face.Height + 4

	strip := image.Rect(0, 0, img.Bounds().Dx(), height)
	draw.Draw(img, strip, overlayBackground, image.Point{}, draw.Over)

	d := font.Drawer{
		Dst:  img,
		Src:  overlayText,
		Face: face,
		Dot:  fixed.P(4, face.Ascent+2),
	}
	d.DrawString(msg)
}
