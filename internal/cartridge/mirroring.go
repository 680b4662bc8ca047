package cartridge

import "nescore/internal/fault"

// Mirroring represents nametable mirroring mode
type Mirroring uint8

const (
	MirrorHorizontal Mirroring = iota
	MirrorVertical
	MirrorFourScreen
)

func (m Mirroring) String() string {
	switch m {
	case MirrorHorizontal:
		return "horizontal"
	case MirrorVertical:
		return "vertical"
	case MirrorFourScreen:
		return "four-screen"
	}
	return "unknown"
}

// NametableOffset translates a PPU nametable address ($2000-$3EFF) into an
// offset within the console's 2KB of VRAM.
//
//	horizontal: $2000=$2400 -> bank 0, $2800=$2C00 -> bank 1
//	vertical:   $2000=$2800 -> bank 0, $2400=$2C00 -> bank 1
//
// Four-screen boards carry their own extra VRAM and are not supported.
func NametableOffset(address uint16, m Mirroring) (uint16, error) {
	if address < 0x2000 || address >= 0x3F00 {
		return 0, fault.New(fault.KindPPUAddress, address, "not a nametable address")
	}

	rel := (address - 0x2000) & 0x0FFF
	table := rel / 0x0400
	offset := rel & 0x03FF

	var bank uint16
	switch m {
	case MirrorHorizontal:
		bank = table >> 1
	case MirrorVertical:
		bank = table & 1
	case MirrorFourScreen:
		return 0, fault.New(fault.KindUnsupportedMirroring, address, "four-screen VRAM is board specific")
	default:
		return 0, fault.New(fault.KindUnsupportedMirroring, address, "mirroring mode %d", uint8(m))
	}

	return bank*0x0400 + offset, nil
}
