// Package memory implements the CPU and PPU address maps of the NES.
package memory

import (
	"github.com/golang/glog"

	"nescore/internal/fault"
)

// Memory represents the NES memory map
type Memory struct {
	// Internal RAM (2KB, mirrored to 8KB)
	ram [0x800]uint8

	// PPU registers (mirrored)
	ppuRegisters PPUInterface

	// APU and I/O registers
	apuRegisters APUInterface

	// Input system
	inputSystem InputInterface

	// Cartridge
	cartridge CartridgeInterface

	// DMA callback
	dmaCallback func(uint8)

	// Open bus - last value read from bus (for write-only registers)
	openBusValue uint8

	// First fault seen since the last Reset
	err error
}

// PPUInterface defines the interface for PPU register access
type PPUInterface interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
	// PeekRegister returns what a read would return without its side effects.
	PeekRegister(address uint16) uint8
}

// APUInterface defines the interface for APU register access
type APUInterface interface {
	WriteRegister(address uint16, value uint8)
	ReadStatus() uint8
}

// InputInterface defines the interface for input system access
type InputInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CartridgeInterface defines the interface for cartridge access
type CartridgeInterface interface {
	ReadPRG(address uint16) (uint8, error)
	WritePRG(address uint16, value uint8) error
	ReadCHR(address uint16) (uint8, error)
	WriteCHR(address uint16, value uint8) error
}

// New creates a new Memory instance
func New(ppu PPUInterface, apu APUInterface, cart CartridgeInterface) *Memory {
	return &Memory{
		ppuRegisters: ppu,
		apuRegisters: apu,
		cartridge:    cart,
	}
}

// SetInputSystem sets the input system for controller access
func (m *Memory) SetInputSystem(input InputInterface) {
	m.inputSystem = input
}

// SetDMACallback sets the function called on a write to $4014
func (m *Memory) SetDMACallback(callback func(uint8)) {
	m.dmaCallback = callback
}

// Err returns the first fault recorded since the last Reset.
func (m *Memory) Err() error {
	return m.err
}

// Reset clears the recorded fault. RAM keeps its contents, as on the console.
func (m *Memory) Reset() {
	m.err = nil
	m.openBusValue = 0
}

func (m *Memory) fail(err error) {
	if m.err == nil {
		glog.V(2).Infof("memory: %v", err)
		m.err = err
	}
}

// Read reads a byte from the given address
func (m *Memory) Read(address uint16) uint8 {
	var value uint8

	switch {
	case address < 0x2000:
		// Internal RAM (mirrored)
		value = m.ram[address&0x07FF]

	case address < 0x4000:
		// PPU registers (mirrored every 8 bytes)
		value = m.ppuRegisters.ReadRegister(0x2000 + (address & 0x0007))

	case address < 0x4018:
		switch address {
		case 0x4015:
			value = m.apuRegisters.ReadStatus()
		case 0x4016, 0x4017:
			if m.inputSystem != nil {
				value = m.inputSystem.Read(address)
			}
		default:
			// write-only APU registers
			value = m.openBusValue
		}

	case address < 0x4020:
		m.fail(fault.New(fault.KindUnmappedAddress, address, "APU test registers are disabled"))
		return 0

	default:
		if m.cartridge == nil {
			m.fail(fault.New(fault.KindUnmappedAddress, address, "no cartridge inserted"))
			return 0
		}
		v, err := m.cartridge.ReadPRG(address)
		if err != nil {
			m.fail(err)
			return 0
		}
		value = v
	}

	m.openBusValue = value
	return value
}

// Write writes a byte to the given address
func (m *Memory) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		// Internal RAM (mirrored)
		m.ram[address&0x07FF] = value

	case address < 0x4000:
		// PPU registers (mirrored every 8 bytes)
		m.ppuRegisters.WriteRegister(0x2000+(address&0x0007), value)

	case address < 0x4018:
		switch {
		case address == 0x4014:
			if m.dmaCallback != nil {
				m.dmaCallback(value)
			} else {
				m.performOAMDMA(value)
			}
		case address == 0x4016:
			if m.inputSystem != nil {
				m.inputSystem.Write(address, value)
			}
		default:
			// $4000-$4013, $4015 and the frame counter at $4017
			m.apuRegisters.WriteRegister(address, value)
		}

	case address < 0x4020:
		m.fail(fault.New(fault.KindUnmappedAddress, address, "APU test registers are disabled"))

	default:
		if m.cartridge == nil {
			m.fail(fault.New(fault.KindUnmappedAddress, address, "no cartridge inserted"))
			return
		}
		if err := m.cartridge.WritePRG(address, value); err != nil {
			m.fail(err)
		}
	}
}

// ReadWord reads a little-endian word. The high byte comes from address+1
// with a full 16-bit carry; the 6502's page-wrap quirk belongs to the
// addressing modes that have it, not to the bus.
func (m *Memory) ReadWord(address uint16) uint16 {
	lo := uint16(m.Read(address))
	hi := uint16(m.Read(address + 1))
	return hi<<8 | lo
}

// Peek reads a byte without side effects and without recording faults.
// Unmapped addresses and read-sensitive I/O ports read as zero.
func (m *Memory) Peek(address uint16) uint8 {
	switch {
	case address < 0x2000:
		return m.ram[address&0x07FF]
	case address < 0x4000:
		return m.ppuRegisters.PeekRegister(0x2000 + (address & 0x0007))
	case address < 0x4020:
		return 0
	default:
		if m.cartridge == nil {
			return 0
		}
		v, err := m.cartridge.ReadPRG(address)
		if err != nil {
			return 0
		}
		return v
	}
}

// performOAMDMA copies a CPU page into OAM through $2004. Used only when no
// DMA callback is installed; the interconnect installs one that also stalls
// the CPU.
func (m *Memory) performOAMDMA(page uint8) {
	baseAddress := uint16(page) << 8
	for i := uint16(0); i < 256; i++ {
		m.ppuRegisters.WriteRegister(0x2004, m.Read(baseAddress+i))
	}
}
