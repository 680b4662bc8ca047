// Package cartridge implements the cartridge board for the NES: PRG and CHR
// memory, the mapper that decodes addresses into them, and the nametable
// mirroring wired on the board.
package cartridge

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const (
	prgBankSize = 0x4000 // 16KB
	chrBankSize = 0x2000 // 8KB
	prgRAMSize  = 0x2000 // 8KB at $6000-$7FFF
)

// Header holds the fields the core needs from an iNES header. The loader
// fills it in; New trusts it has already been validated.
type Header struct {
	PRGBanks  uint8 // in 16KB units
	CHRBanks  uint8 // in 8KB units, 0 means CHR-RAM
	Mapper    uint8
	Mirroring Mirroring
	Trainer   bool
	Battery   bool
}

// Mapper decodes CPU and PPU addresses into cartridge memory.
type Mapper interface {
	ReadPRG(address uint16) (uint8, error)
	WritePRG(address uint16, value uint8) error
	ReadCHR(address uint16) (uint8, error)
	WriteCHR(address uint16, value uint8) error
}

// Cartridge represents a NES cartridge
type Cartridge struct {
	header Header

	prgROM []uint8
	prgRAM [prgRAMSize]uint8

	chr    []uint8
	chrRAM bool

	mapper Mapper
}

// New builds a cartridge from loader output. prg must already have any
// trainer stripped.
func New(header Header, prg, chr []uint8) (*Cartridge, error) {
	if header.PRGBanks == 0 {
		return nil, errors.New("cartridge: PRG-ROM size cannot be zero")
	}
	if len(prg) != int(header.PRGBanks)*prgBankSize {
		return nil, errors.Errorf("cartridge: header declares %d bytes of PRG-ROM, got %d",
			int(header.PRGBanks)*prgBankSize, len(prg))
	}
	if len(chr) != int(header.CHRBanks)*chrBankSize {
		return nil, errors.Errorf("cartridge: header declares %d bytes of CHR-ROM, got %d",
			int(header.CHRBanks)*chrBankSize, len(chr))
	}

	cart := &Cartridge{
		header: header,
		prgROM: prg,
		chr:    chr,
	}

	if header.CHRBanks == 0 {
		cart.chr = make([]uint8, chrBankSize)
		cart.chrRAM = true
	}

	mapper, err := createMapper(header.Mapper, cart)
	if err != nil {
		return nil, err
	}
	cart.mapper = mapper

	glog.V(2).Infof("cartridge: mapper %d, %dKB PRG, %dKB CHR (ram=%v), %s mirroring",
		header.Mapper, len(prg)/1024, len(cart.chr)/1024, cart.chrRAM, header.Mirroring)

	return cart, nil
}

// createMapper creates the appropriate mapper for the given ID
func createMapper(id uint8, cart *Cartridge) (Mapper, error) {
	switch id {
	case 0:
		return NewMapper000(cart)
	default:
		return nil, errors.Errorf("cartridge: unsupported mapper %d", id)
	}
}

// ReadPRG reads from PRG ROM/RAM
func (c *Cartridge) ReadPRG(address uint16) (uint8, error) {
	return c.mapper.ReadPRG(address)
}

// WritePRG writes to PRG RAM
func (c *Cartridge) WritePRG(address uint16, value uint8) error {
	return c.mapper.WritePRG(address, value)
}

// ReadCHR reads from CHR ROM/RAM
func (c *Cartridge) ReadCHR(address uint16) (uint8, error) {
	return c.mapper.ReadCHR(address)
}

// WriteCHR writes to CHR RAM
func (c *Cartridge) WriteCHR(address uint16, value uint8) error {
	return c.mapper.WriteCHR(address, value)
}

// Mirroring returns the nametable arrangement wired on the board.
func (c *Cartridge) Mirroring() Mirroring {
	return c.header.Mirroring
}

// Header returns the header the cartridge was built from.
func (c *Cartridge) Header() Header {
	return c.header
}

// HasCHRRAM reports whether pattern memory is writable.
func (c *Cartridge) HasCHRRAM() bool {
	return c.chrRAM
}
