package memory

import (
	"nescore/internal/cartridge"
	"nescore/internal/fault"
)

// PPUMemory is the PPU's 14-bit address space: pattern tables on the
// cartridge, 2KB of nametable VRAM on the console, and 32 bytes of palette.
type PPUMemory struct {
	vram       [0x800]uint8 // 2KB VRAM (two physical nametables)
	paletteRAM [32]uint8
	cartridge  CartridgeInterface
	mirroring  cartridge.Mirroring
}

// NewPPUMemory creates a new PPU memory instance
func NewPPUMemory(cart CartridgeInterface, mirroring cartridge.Mirroring) *PPUMemory {
	return &PPUMemory{
		cartridge: cart,
		mirroring: mirroring,
	}
}

// Mirroring returns the nametable arrangement in use.
func (pm *PPUMemory) Mirroring() cartridge.Mirroring {
	return pm.mirroring
}

// Read reads from PPU memory space ($0000-$3FFF)
func (pm *PPUMemory) Read(address uint16) (uint8, error) {
	switch {
	case address < 0x2000:
		// Pattern Tables ($0000-$1FFF) - CHR ROM/RAM
		if pm.cartridge == nil {
			return 0, fault.New(fault.KindPPUAddress, address, "no cartridge inserted")
		}
		return pm.cartridge.ReadCHR(address)

	case address < 0x3F00:
		// Nametables ($2000-$2FFF) and their mirror at $3000-$3EFF
		offset, err := cartridge.NametableOffset(address, pm.mirroring)
		if err != nil {
			return 0, err
		}
		return pm.vram[offset], nil

	case address < 0x4000:
		return pm.paletteRAM[paletteIndex(address)], nil

	default:
		return 0, fault.New(fault.KindPPUAddress, address, "outside the 14-bit PPU address space")
	}
}

// Write writes to PPU memory space ($0000-$3FFF)
func (pm *PPUMemory) Write(address uint16, value uint8) error {
	switch {
	case address < 0x2000:
		if pm.cartridge == nil {
			return fault.New(fault.KindPPUAddress, address, "no cartridge inserted")
		}
		return pm.cartridge.WriteCHR(address, value)

	case address < 0x3F00:
		offset, err := cartridge.NametableOffset(address, pm.mirroring)
		if err != nil {
			return err
		}
		pm.vram[offset] = value
		return nil

	case address < 0x4000:
		pm.paletteRAM[paletteIndex(address)] = value & 0x3F
		return nil

	default:
		return fault.New(fault.KindPPUAddress, address, "outside the 14-bit PPU address space")
	}
}

// paletteIndex folds $3F00-$3FFF onto the 32 palette bytes. Entry 0 of each
// sprite palette is the same cell as the matching background entry.
func paletteIndex(address uint16) uint16 {
	index := address & 0x1F
	if index&0x13 == 0x10 {
		index &= 0x0F
	}
	return index
}
