package ppu

// renderScanline draws one visible line of background into the frame buffer.
// Tiles are fetched from a copy of v, so v itself only moves by the
// end-of-line incrementY/copyX in Step. Sprites are not drawn.
func (p *PPU) renderScanline(y int) {
	row := p.frame[y*Width*3 : (y+1)*Width*3]

	backdrop := p.read(0x3F00)
	if !p.renderingEnabled() || p.mask&0x08 == 0 {
		for x := 0; x < Width; x++ {
			p.putPixel(row, x, backdrop)
		}
		return
	}

	v := p.v
	fineY := v >> 12 & 0x07
	patternBase := uint16(p.ctrl&0x10) << 8
	showLeft := p.mask&0x02 != 0

	// 33 tiles cover 256 pixels at any fine X
	for tile := 0; tile < 33; tile++ {
		index := uint16(p.read(0x2000 | v&0x0FFF))
		attr := p.read(0x23C0 | v&0x0C00 | v>>4&0x38 | v>>2&0x07)
		palette := attr >> (v>>4&0x04 | v&0x02) & 0x03

		lo := p.read(patternBase + index*16 + fineY)
		hi := p.read(patternBase + index*16 + fineY + 8)

		for bit := 0; bit < 8; bit++ {
			sx := tile*8 + bit - int(p.x)
			if sx < 0 {
				continue
			}
			if sx >= Width {
				break
			}

			shift := 7 - bit
			pixel := hi>>shift&1<<1 | lo>>shift&1
			color := backdrop
			if pixel != 0 && (showLeft || sx >= 8) {
				color = p.read(0x3F00 + uint16(palette)<<2 + uint16(pixel))
			}
			p.putPixel(row, sx, color)
		}

		v = nextTile(v)
	}
}

func (p *PPU) putPixel(row []byte, x int, color uint8) {
	if p.mask&0x01 != 0 {
		color &= 0x30 // greyscale
	}
	r, g, b := RGB(color)
	row[x*3] = r
	row[x*3+1] = g
	row[x*3+2] = b
}

// nextTile advances coarse X, switching horizontal nametable on wrap.
func nextTile(v uint16) uint16 {
	if v&0x001F == 31 {
		v &^= 0x001F
		return v ^ 0x0400
	}
	return v + 1
}

// incrementY increments fine Y, and if it overflows, increments coarse Y
func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}

	p.v &^= 0x7000
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800 // switch vertical nametable
	case 31:
		y = 0 // attribute rows wrap without switching
	default:
		y++
	}
	p.v = p.v&^0x03E0 | y<<5
}

// copyX copies all X-related bits from t to v (bits 10, 4-0)
func (p *PPU) copyX() {
	p.v = p.v&0xFBE0 | p.t&0x041F
}

// copyY copies all Y-related bits from t to v (bits 11, 14-5)
func (p *PPU) copyY() {
	p.v = p.v&0x841F | p.t&0x7BE0
}
