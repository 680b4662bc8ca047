// Package fault describes the conditions that stop emulation.
//
// Every fault is fatal. Hardware-equivalent faults mirror states that need a
// physical reset on a real console (a KIL opcode, a write into ROM); defect
// faults mean the emulator itself is wrong. Neither is ever retried.
package fault

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a fault.
type Kind int

const (
	// KindLockup is one of the twelve KIL opcodes.
	KindLockup Kind = iota + 1
	// KindUnpredictableOpcode is $8B (XAA), whose result depends on the chip.
	KindUnpredictableOpcode
	// KindROMWrite is a CPU write into PRG-ROM.
	KindROMWrite
	// KindUnmappedAddress is an access to a CPU address nothing answers.
	KindUnmappedAddress
	// KindUnsupportedMirroring is a nametable access on a four-screen board.
	KindUnsupportedMirroring
	// KindPPUAddress is an access outside the 14-bit PPU address space.
	KindPPUAddress

	// KindDecodeGap is an opcode missing from the decode table.
	KindDecodeGap
	// KindInvalidMode is an instruction paired with a mode it cannot use.
	KindInvalidMode
)

var kindNames = map[Kind]string{
	KindLockup:               "cpu lock-up",
	KindUnpredictableOpcode:  "unpredictable opcode",
	KindROMWrite:             "write to ROM",
	KindUnmappedAddress:      "unmapped address",
	KindUnsupportedMirroring: "unsupported mirroring",
	KindPPUAddress:           "ppu address out of range",
	KindDecodeGap:            "decode table gap",
	KindInvalidMode:          "invalid addressing mode",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("fault(%d)", int(k))
}

// Defect reports whether the fault points at the emulator rather than the ROM.
func (k Kind) Defect() bool {
	return k == KindDecodeGap || k == KindInvalidMode
}

// Fault is the error value carried out of the core when emulation halts.
type Fault struct {
	Kind    Kind
	Address uint16

	// Opcode is only meaningful when HasOpcode is set.
	Opcode    uint8
	HasOpcode bool

	// Snapshot is the register dump attached by the interconnect.
	Snapshot string

	detail string
}

func (f *Fault) Error() string {
	s := fmt.Sprintf("%s at $%04X", f.Kind, f.Address)
	if f.HasOpcode {
		s += fmt.Sprintf(" (opcode $%02X)", f.Opcode)
	}
	if f.detail != "" {
		s += ": " + f.detail
	}
	if f.Snapshot != "" {
		s += " [" + f.Snapshot + "]"
	}
	return s
}

// New returns a fault for an address-level condition.
func New(kind Kind, addr uint16, format string, args ...interface{}) error {
	return errors.WithStack(&Fault{
		Kind:    kind,
		Address: addr,
		detail:  fmt.Sprintf(format, args...),
	})
}

// Opcode returns a fault raised while decoding or executing op at addr.
func Opcode(kind Kind, addr uint16, op uint8, format string, args ...interface{}) error {
	return errors.WithStack(&Fault{
		Kind:      kind,
		Address:   addr,
		Opcode:    op,
		HasOpcode: true,
		detail:    fmt.Sprintf(format, args...),
	})
}

// As extracts the Fault from err, if there is one.
func As(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// Is reports whether err carries a fault of the given kind.
func Is(err error, kind Kind) bool {
	f, ok := As(err)
	return ok && f.Kind == kind
}

// WithSnapshot attaches a register dump to the fault inside err. Errors that
// are not faults are wrapped with the snapshot as context instead.
func WithSnapshot(err error, snapshot string) error {
	if err == nil {
		return nil
	}
	if f, ok := As(err); ok {
		if f.Snapshot == "" {
			f.Snapshot = snapshot
		}
		return err
	}
	return errors.Wrap(err, snapshot)
}
