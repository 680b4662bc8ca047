package debug

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"nescore/internal/ppu"
)

// FrameDumper writes frames to PNG files, optionally scaled up.
type FrameDumper struct {
	outputDir string
	scale     int

	// dump every interval-th frame; 0 disables MaybeDump
	interval uint64
	maxDumps int
	dumped   int
}

// NewFrameDumper creates a dumper writing into outputDir. A scale below 1 is
// treated as 1.
func NewFrameDumper(outputDir string, scale int) *FrameDumper {
	if scale < 1 {
		scale = 1
	}
	return &FrameDumper{
		outputDir: outputDir,
		scale:     scale,
	}
}

// SetInterval makes MaybeDump write every n-th frame. Zero turns it off.
func (fd *FrameDumper) SetInterval(n uint64) {
	fd.interval = n
}

// SetMaxDumps caps the number of files MaybeDump writes. Zero means no cap.
func (fd *FrameDumper) SetMaxDumps(n int) {
	fd.maxDumps = n
}

// Dumped returns the number of files written so far.
func (fd *FrameDumper) Dumped() int {
	return fd.dumped
}

// MaybeDump writes the frame if frameNum falls on the interval and the cap
// has not been reached. It returns the path written, or "".
func (fd *FrameDumper) MaybeDump(frame *ppu.FrameBuffer, frameNum uint64) (string, error) {
	if fd.interval == 0 || frameNum%fd.interval != 0 {
		return "", nil
	}
	if fd.maxDumps > 0 && fd.dumped >= fd.maxDumps {
		return "", nil
	}
	return fd.Dump(frame, frameNum)
}

// Dump writes frame_NNNNNN.png into the output directory.
func (fd *FrameDumper) Dump(frame *ppu.FrameBuffer, frameNum uint64) (string, error) {
	if err := os.MkdirAll(fd.outputDir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating frame dump directory")
	}

	path := filepath.Join(fd.outputDir, fmt.Sprintf("frame_%06d.png", frameNum))
	if err := fd.DumpFile(frame, path); err != nil {
		return "", err
	}
	fd.dumped++
	glog.V(2).Infof("debug: frame %d written to %s", frameNum, path)
	return path, nil
}

// DumpFile writes frame to path as a PNG.
func (fd *FrameDumper) DumpFile(frame *ppu.FrameBuffer, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating frame dump")
	}
	if err := WritePNG(f, frame, fd.scale); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "closing frame dump")
}

// WritePNG encodes frame as a PNG, each pixel scaled to a scale×scale block.
func WritePNG(w io.Writer, frame *ppu.FrameBuffer, scale int) error {
	var img image.Image = frame.RGBA()
	if scale > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, ppu.Width*scale, ppu.Height*scale))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = dst
	}
	return errors.Wrap(png.Encode(w, img), "encoding frame")
}
