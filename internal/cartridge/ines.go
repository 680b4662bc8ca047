package cartridge

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

const trainerSize = 512

// iNES header structure
type iNESHeader struct {
	Magic      [4]uint8
	PRGROMSize uint8 // in 16KB units
	CHRROMSize uint8 // in 8KB units
	Flags6     uint8
	Flags7     uint8
	PRGRAMSize uint8
	TVSystem1  uint8
	TVSystem2  uint8
	Padding    [5]uint8
}

// ErrBadMagic is returned for files that do not start with "NES\x1A".
var ErrBadMagic = errors.New("cartridge: invalid iNES file")

// ParseHeader decodes the 16-byte iNES header.
func ParseHeader(raw []byte) (Header, error) {
	var h iNESHeader
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &h); err != nil {
		return Header{}, errors.Wrap(err, "cartridge: reading iNES header")
	}
	return h.decode()
}

func (h iNESHeader) decode() (Header, error) {
	if string(h.Magic[:]) != "NES\x1A" {
		return Header{}, ErrBadMagic
	}
	if h.PRGROMSize == 0 {
		return Header{}, errors.New("cartridge: invalid ROM: PRG ROM size cannot be zero")
	}

	header := Header{
		PRGBanks: h.PRGROMSize,
		CHRBanks: h.CHRROMSize,
		Mapper:   (h.Flags6 >> 4) | (h.Flags7 & 0xF0),
		Trainer:  h.Flags6&0x04 != 0,
		Battery:  h.Flags6&0x02 != 0,
	}

	switch {
	case h.Flags6&0x08 != 0:
		header.Mirroring = MirrorFourScreen
	case h.Flags6&0x01 != 0:
		header.Mirroring = MirrorVertical
	default:
		header.Mirroring = MirrorHorizontal
	}

	return header, nil
}

// LoadFromFile loads a cartridge from an iNES file
func LoadFromFile(filename string) (*Cartridge, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "cartridge")
	}
	defer file.Close()

	cart, err := LoadFromReader(file)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", filename)
	}
	return cart, nil
}

// LoadFromReader loads a cartridge from an io.Reader
func LoadFromReader(r io.Reader) (*Cartridge, error) {
	var raw iNESHeader
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return nil, errors.Wrap(err, "cartridge: reading iNES header")
	}
	header, err := raw.decode()
	if err != nil {
		return nil, err
	}

	// the trainer is loaded at $7000 by some copiers; nothing in the core
	// uses it
	if header.Trainer {
		if _, err := io.CopyN(io.Discard, r, trainerSize); err != nil {
			return nil, errors.Wrap(err, "cartridge: reading trainer")
		}
	}

	prg := make([]uint8, int(header.PRGBanks)*prgBankSize)
	if _, err := io.ReadFull(r, prg); err != nil {
		return nil, errors.Wrap(err, "cartridge: reading PRG-ROM")
	}

	chr := make([]uint8, int(header.CHRBanks)*chrBankSize)
	if _, err := io.ReadFull(r, chr); err != nil {
		return nil, errors.Wrap(err, "cartridge: reading CHR-ROM")
	}

	return New(header, prg, chr)
}
