package cartridge

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"nescore/internal/fault"
)

// Mapper000 implements NROM (mapper 0)
// NROM is the simplest mapper with no bank switching capabilities.
// It supports:
// - 16KB or 32KB PRG ROM (16KB is mirrored to fill 32KB address space)
// - 8KB CHR ROM or CHR RAM
// - 8KB PRG RAM at 0x6000-0x7FFF
type Mapper000 struct {
	cart    *Cartridge
	prgMask uint16
}

// NewMapper000 creates a new NROM mapper
func NewMapper000(cart *Cartridge) (*Mapper000, error) {
	m := &Mapper000{cart: cart}
	switch len(cart.prgROM) {
	case prgBankSize:
		m.prgMask = 0x3FFF
	case 2 * prgBankSize:
		m.prgMask = 0x7FFF
	default:
		return nil, errors.Errorf("cartridge: NROM needs 16KB or 32KB of PRG-ROM, got %d bytes", len(cart.prgROM))
	}
	return m, nil
}

// ReadPRG reads from PRG ROM/RAM
// Memory map:
// 0x4020-0x5FFF: not connected on NROM
// 0x6000-0x7FFF: 8KB PRG RAM
// 0x8000-0xFFFF: PRG ROM, 16KB images appear twice
func (m *Mapper000) ReadPRG(address uint16) (uint8, error) {
	switch {
	case address >= 0x8000:
		return m.cart.prgROM[(address-0x8000)&m.prgMask], nil
	case address >= 0x6000:
		return m.cart.prgRAM[address-0x6000], nil
	default:
		return 0, fault.New(fault.KindUnmappedAddress, address, "NROM has nothing mapped below $6000")
	}
}

// WritePRG writes to PRG RAM
func (m *Mapper000) WritePRG(address uint16, value uint8) error {
	switch {
	case address >= 0x8000:
		return fault.New(fault.KindROMWrite, address, "PRG-ROM is read-only (value $%02X)", value)
	case address >= 0x6000:
		m.cart.prgRAM[address-0x6000] = value
		return nil
	default:
		return fault.New(fault.KindUnmappedAddress, address, "NROM has nothing mapped below $6000")
	}
}

// ReadCHR reads from CHR ROM/RAM
func (m *Mapper000) ReadCHR(address uint16) (uint8, error) {
	if address >= chrBankSize {
		return 0, fault.New(fault.KindPPUAddress, address, "pattern tables end at $1FFF")
	}
	return m.cart.chr[address], nil
}

// WriteCHR writes to CHR RAM. Writes to CHR-ROM are dropped, as on the
// board where the ROM simply ignores the write strobe.
func (m *Mapper000) WriteCHR(address uint16, value uint8) error {
	if address >= chrBankSize {
		return fault.New(fault.KindPPUAddress, address, "pattern tables end at $1FFF")
	}
	if !m.cart.chrRAM {
		glog.V(2).Infof("cartridge: ignoring write of $%02X to CHR-ROM $%04X", value, address)
		return nil
	}
	m.cart.chr[address] = value
	return nil
}
