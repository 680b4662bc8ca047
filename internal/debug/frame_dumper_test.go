package debug

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"nescore/internal/ppu"
)

func TestWritePNG_Scale(t *testing.T) {
	var frame ppu.FrameBuffer
	frame[0], frame[1], frame[2] = 0xFF, 0x80, 0x00

	var buf bytes.Buffer
	if err := WritePNG(&buf, &frame, 2); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}

	if b := img.Bounds(); b.Dx() != ppu.Width*2 || b.Dy() != ppu.Height*2 {
		t.Fatalf("Expected %dx%d, got %v", ppu.Width*2, ppu.Height*2, b)
	}
	for _, p := range [][2]int{{0, 0}, {1, 1}} {
		r, g, b, _ := img.At(p[0], p[1]).RGBA()
		if r>>8 != 0xFF || g>>8 != 0x80 || b>>8 != 0x00 {
			t.Errorf("Pixel %v: got %02X%02X%02X", p, r>>8, g>>8, b>>8)
		}
	}
	if r, _, _, _ := img.At(2, 0).RGBA(); r != 0 {
		t.Error("Pixel (2,0) should come from the black source pixel")
	}
}

func TestFrameDumper_Interval(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	fd := NewFrameDumper(dir, 0)
	fd.SetInterval(10)
	fd.SetMaxDumps(2)

	var frame ppu.FrameBuffer
	var written []string
	for n := uint64(1); n <= 40; n++ {
		path, err := fd.MaybeDump(&frame, n)
		if err != nil {
			t.Fatalf("MaybeDump(%d): %v", n, err)
		}
		if path != "" {
			written = append(written, filepath.Base(path))
		}
	}

	if len(written) != 2 || written[0] != "frame_000010.png" || written[1] != "frame_000020.png" {
		t.Errorf("Unexpected dumps %v", written)
	}
	if fd.Dumped() != 2 {
		t.Errorf("Expected 2 dumps, got %d", fd.Dumped())
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 2 {
		t.Errorf("Expected 2 files in %s, got %d (%v)", dir, len(entries), err)
	}
}

func TestFrameDumper_Disabled(t *testing.T) {
	fd := NewFrameDumper(t.TempDir(), 1)
	var frame ppu.FrameBuffer
	if path, err := fd.MaybeDump(&frame, 60); path != "" || err != nil {
		t.Errorf("Expected no dump with a zero interval, got %q, %v", path, err)
	}
}

func TestWriteColorUsage(t *testing.T) {
	var frame ppu.FrameBuffer
	for i := 0; i < ppu.Width; i++ {
		frame[i*3] = 0xFF
	}

	var buf bytes.Buffer
	WriteColorUsage(&buf, &frame)
	want := "#000000  61184  99.58%\n#FF0000    256   0.42%\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
