// Package apu holds the APU and frame-counter registers of the NES.
//
// No sound is produced. Register writes are stored so that the CPU sees a
// consistent $4015 status, and nothing is clocked.
package apu

import "fmt"

// Channel indexes, in $4015 bit order.
const (
	Pulse1 = iota
	Pulse2
	Triangle
	Noise
	DMC
	channelCount
)

// APU stores the $4000-$4017 register file.
type APU struct {
	registers [0x18]uint8

	enabled [channelCount]bool

	// length counters as loaded by the last write; never clocked
	length [channelCount - 1]uint8

	dmcBytesRemaining uint16
	frameIRQInhibit   bool
	fiveStep          bool
}

// Length counter lookup table
var lengthTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6,
	160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 8, 48, 6, 96, 4,
	192, 2, 72, 16, 28, 32, 52, 2,
}

// New creates a new APU instance
func New() *APU {
	return &APU{}
}

// Reset silences every channel, as a write of zero to $4015 does.
func (a *APU) Reset() {
	a.enabled = [channelCount]bool{}
	a.length = [channelCount - 1]uint8{}
	a.dmcBytesRemaining = 0
}

// WriteRegister stores a write to $4000-$4013, $4015 or $4017.
func (a *APU) WriteRegister(address uint16, value uint8) {
	if address < 0x4000 || address >= 0x4018 {
		return
	}
	a.registers[address-0x4000] = value

	switch address {
	case 0x4003, 0x4007, 0x400B, 0x400F:
		// length counter load, only while the channel is enabled
		ch := int(address-0x4003) / 4
		if a.enabled[ch] {
			a.length[ch] = lengthTable[value>>3]
		}
	case 0x4015:
		a.writeChannelEnable(value)
	case 0x4017:
		a.fiveStep = value&0x80 != 0
		a.frameIRQInhibit = value&0x40 != 0
	}
}

func (a *APU) writeChannelEnable(value uint8) {
	for ch := 0; ch < channelCount; ch++ {
		a.enabled[ch] = value&(1<<ch) != 0
	}
	for ch := range a.length {
		if !a.enabled[ch] {
			a.length[ch] = 0
		}
	}

	switch {
	case !a.enabled[DMC]:
		a.dmcBytesRemaining = 0
	case a.dmcBytesRemaining == 0:
		// $4013 counts 16-byte units, plus one
		a.dmcBytesRemaining = uint16(a.registers[0x13])<<4 + 1
	}
}

// ReadStatus reads the APU status register ($4015)
func (a *APU) ReadStatus() uint8 {
	var status uint8
	for ch, n := range a.length {
		if n > 0 {
			status |= 1 << ch
		}
	}
	if a.dmcBytesRemaining > 0 {
		status |= 0x10
	}
	return status
}

// Register returns the last value written to a register.
func (a *APU) Register(address uint16) uint8 {
	if address < 0x4000 || address >= 0x4018 {
		return 0
	}
	return a.registers[address-0x4000]
}

// Enabled reports whether $4015 has the channel switched on.
func (a *APU) Enabled(channel int) bool {
	if channel < 0 || channel >= channelCount {
		return false
	}
	return a.enabled[channel]
}

func (a *APU) String() string {
	return fmt.Sprintf("APU status=%02X frame=%s irq-inhibit=%v", a.ReadStatus(), a.frameMode(), a.frameIRQInhibit)
}

func (a *APU) frameMode() string {
	if a.fiveStep {
		return "5-step"
	}
	return "4-step"
}
