package ppu

// ReadRegister reads from a PPU register (CPU $2000-$2007)
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address {
	case 0x2002: // PPUSTATUS
		value := p.status&0xE0 | p.openBus&0x1F
		p.status &^= statusVBlank
		p.w = false
		p.openBus = value
		return value
	case 0x2004: // OAMDATA
		p.openBus = p.oam[p.oamAddr]
		return p.openBus
	case 0x2007: // PPUDATA
		p.openBus = p.readPPUData()
		return p.openBus
	default:
		// write-only registers return whatever is left on the bus
		return p.openBus
	}
}

// PeekRegister returns what ReadRegister would, without clearing VBlank,
// resetting the toggle, filling the read buffer or moving v.
func (p *PPU) PeekRegister(address uint16) uint8 {
	switch address {
	case 0x2002:
		return p.status&0xE0 | p.openBus&0x1F
	case 0x2004:
		return p.oam[p.oamAddr]
	case 0x2007:
		addr := p.v & 0x3FFF
		if addr < 0x3F00 || p.memory == nil {
			return p.readBuffer
		}
		value, err := p.memory.Read(addr)
		if err != nil {
			return 0
		}
		return value
	default:
		return p.openBus
	}
}

// WriteRegister writes to a PPU register (CPU $2000-$2007)
func (p *PPU) WriteRegister(address uint16, value uint8) {
	p.openBus = value

	switch address {
	case 0x2000: // PPUCTRL
		if p.ctrl&0x80 == 0 && value&0x80 != 0 && p.status&statusVBlank != 0 {
			p.nmiLatched = true
		}
		p.ctrl = value
		p.t = p.t&0xF3FF | uint16(value&0x03)<<10
	case 0x2001: // PPUMASK
		p.mask = value
	case 0x2003: // OAMADDR
		p.oamAddr = value
	case 0x2004: // OAMDATA
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 0x2005: // PPUSCROLL
		p.writeScroll(value)
	case 0x2006: // PPUADDR
		p.writeAddress(value)
	case 0x2007: // PPUDATA
		p.write(p.v&0x3FFF, value)
		p.incrementAddress()
	}
}

// WriteOAMPage copies a 256-byte page into OAM starting at OAMADDR, the way
// a $4014 DMA does.
func (p *PPU) WriteOAMPage(page *[256]uint8) {
	for _, value := range page {
		p.oam[p.oamAddr] = value
		p.oamAddr++
	}
}

// OAM returns a copy of sprite memory.
func (p *PPU) OAM() [256]uint8 {
	return p.oam
}

func (p *PPU) writeScroll(value uint8) {
	if !p.w {
		// coarse X and fine X
		p.t = p.t&0xFFE0 | uint16(value)>>3
		p.x = value & 0x07
	} else {
		// fine Y and coarse Y
		p.t = p.t&0x8FFF | uint16(value&0x07)<<12
		p.t = p.t&0xFC1F | uint16(value&0xF8)<<2
	}
	p.w = !p.w
}

func (p *PPU) writeAddress(value uint8) {
	if !p.w {
		// bit 14 of t is cleared along with the high byte
		p.t = p.t&0x00FF | uint16(value&0x3F)<<8
	} else {
		p.t = p.t&0xFF00 | uint16(value)
		p.v = p.t
	}
	p.w = !p.w
}

// readPPUData returns the buffered byte for pattern and nametable space.
// Palette reads are immediate; the buffer is refilled from the nametable
// underneath them.
func (p *PPU) readPPUData() uint8 {
	addr := p.v & 0x3FFF

	var value uint8
	if addr >= 0x3F00 {
		value = p.read(addr)
		p.readBuffer = p.read(addr - 0x1000)
	} else {
		value = p.readBuffer
		p.readBuffer = p.read(addr)
	}

	p.incrementAddress()
	return value
}

func (p *PPU) incrementAddress() {
	if p.ctrl&0x04 != 0 {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x7FFF
}
