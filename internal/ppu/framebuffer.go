package ppu

import (
	"image"
	"image/color"
)

// FrameBuffer is one picture in RGB24, row-major.
type FrameBuffer [Width * Height * 3]byte

// At returns the colour of the pixel at x, y.
func (fb *FrameBuffer) At(x, y int) (r, g, b uint8) {
	i := (y*Width + x) * 3
	return fb[i], fb[i+1], fb[i+2]
}

// RGBA copies the frame into an opaque RGBA image.
func (fb *FrameBuffer) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	fb.CopyRGBA(img.Pix)
	return img
}

// CopyRGBA writes the frame into pix as RGBA bytes. pix must hold at least
// Width*Height*4 bytes.
func (fb *FrameBuffer) CopyRGBA(pix []byte) {
	for i, j := 0, 0; i < len(fb); i, j = i+3, j+4 {
		pix[j] = fb[i]
		pix[j+1] = fb[i+1]
		pix[j+2] = fb[i+2]
		pix[j+3] = 0xFF
	}
}

// Colors counts how many pixels use each colour.
func (fb *FrameBuffer) Colors() map[color.RGBA]int {
	counts := make(map[color.RGBA]int)
	for i := 0; i < len(fb); i += 3 {
		counts[color.RGBA{R: fb[i], G: fb[i+1], B: fb[i+2], A: 0xFF}]++
	}
	return counts
}
