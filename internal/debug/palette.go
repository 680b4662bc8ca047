package debug

import (
	"fmt"
	"io"
	"sort"

	"nescore/internal/ppu"
)

// WritePalette prints the 32 palette RAM entries with the colour each one
// produces, four entries to a row.
func WritePalette(w io.Writer, p *ppu.PPU) {
	for group := 0; group < 8; group++ {
		kind := "bg "
		if group >= 4 {
			kind = "spr"
		}
		fmt.Fprintf(w, "%s%d $%04X:", kind, group%4, 0x3F00+group*4)
		for i := 0; i < 4; i++ {
			index := p.PeekMemory(uint16(0x3F00 + group*4 + i))
			r, g, b := ppu.RGB(index)
			fmt.Fprintf(w, "  %02X #%02X%02X%02X", index, r, g, b)
		}
		fmt.Fprintln(w)
	}
}

// WriteColorUsage prints the colours in frame, most used first.
func WriteColorUsage(w io.Writer, frame *ppu.FrameBuffer) {
	type usage struct {
		rgb   uint32
		count int
	}

	counts := frame.Colors()
	list := make([]usage, 0, len(counts))
	for c, n := range counts {
		list = append(list, usage{uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B), n})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		return list[i].rgb < list[j].rgb
	})

	total := float64(ppu.Width * ppu.Height)
	for _, u := range list {
		fmt.Fprintf(w, "#%06X %6d %6.2f%%\n", u.rgb, u.count, float64(u.count)/total*100)
	}
}
