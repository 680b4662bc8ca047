package cpu

import "fmt"

// Instruction is a 6502 mnemonic. Documented instructions come first; the
// undocumented ones use the names from the NESdev undocumented opcode list.
type Instruction uint8

const (
	invalidInstruction Instruction = iota

	ADC
	AND
	ASL
	BCC
	BCS
	BEQ
	BIT
	BMI
	BNE
	BPL
	BRK
	BVC
	BVS
	CLC
	CLD
	CLI
	CLV
	CMP
	CPX
	CPY
	DEC
	DEX
	DEY
	EOR
	INC
	INX
	INY
	JMP
	JSR
	LDA
	LDX
	LDY
	LSR
	NOP
	ORA
	PHA
	PHP
	PLA
	PLP
	ROL
	ROR
	RTI
	RTS
	SBC
	SEC
	SED
	SEI
	STA
	STX
	STY
	TAX
	TAY
	TSX
	TXA
	TXS
	TYA

	// undocumented
	ALR
	ANC
	ARR
	ATX
	AXA
	AXS
	DCP
	ISC
	KIL
	LAR
	LAX
	RLA
	RRA
	SAX
	SLO
	SRE
	SXA
	SYA
	XAA
	XAS

	instructionCount
)

var instructionNames = [instructionCount]string{
	invalidInstruction: "???",
	ADC: "ADC", AND: "AND", ASL: "ASL", BCC: "BCC", BCS: "BCS", BEQ: "BEQ",
	BIT: "BIT", BMI: "BMI", BNE: "BNE", BPL: "BPL", BRK: "BRK", BVC: "BVC",
	BVS: "BVS", CLC: "CLC", CLD: "CLD", CLI: "CLI", CLV: "CLV", CMP: "CMP",
	CPX: "CPX", CPY: "CPY", DEC: "DEC", DEX: "DEX", DEY: "DEY", EOR: "EOR",
	INC: "INC", INX: "INX", INY: "INY", JMP: "JMP", JSR: "JSR", LDA: "LDA",
	LDX: "LDX", LDY: "LDY", LSR: "LSR", NOP: "NOP", ORA: "ORA", PHA: "PHA",
	PHP: "PHP", PLA: "PLA", PLP: "PLP", ROL: "ROL", ROR: "ROR", RTI: "RTI",
	RTS: "RTS", SBC: "SBC", SEC: "SEC", SED: "SED", SEI: "SEI", STA: "STA",
	STX: "STX", STY: "STY", TAX: "TAX", TAY: "TAY", TSX: "TSX", TXA: "TXA",
	TXS: "TXS", TYA: "TYA",
	ALR: "ALR", ANC: "ANC", ARR: "ARR", ATX: "ATX", AXA: "AXA", AXS: "AXS",
	DCP: "DCP", ISC: "ISC", KIL: "KIL", LAR: "LAR", LAX: "LAX", RLA: "RLA",
	RRA: "RRA", SAX: "SAX", SLO: "SLO", SRE: "SRE", SXA: "SXA", SYA: "SYA",
	XAA: "XAA", XAS: "XAS",
}

func (i Instruction) String() string {
	if i < instructionCount {
		return instructionNames[i]
	}
	return fmt.Sprintf("Instruction(%d)", uint8(i))
}

// Documented reports whether the instruction is part of the official set.
func (i Instruction) Documented() bool {
	return i > invalidInstruction && i < ALR
}

// Addressing modes
type AddressingMode uint8

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

var modeNames = [...]string{
	Implied:         "implied",
	Accumulator:     "accumulator",
	Immediate:       "immediate",
	ZeroPage:        "zeropage",
	ZeroPageX:       "zeropage,X",
	ZeroPageY:       "zeropage,Y",
	Relative:        "relative",
	Absolute:        "absolute",
	AbsoluteX:       "absolute,X",
	AbsoluteY:       "absolute,Y",
	Indirect:        "indirect",
	IndexedIndirect: "(indirect,X)",
	IndirectIndexed: "(indirect),Y",
}

func (m AddressingMode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("AddressingMode(%d)", uint8(m))
}

// Size is the instruction length in bytes, opcode included.
func (m AddressingMode) Size() uint16 {
	switch m {
	case Implied, Accumulator:
		return 1
	case Absolute, AbsoluteX, AbsoluteY, Indirect:
		return 3
	default:
		return 2
	}
}

// memory reports whether the mode resolves to a data address.
func (m AddressingMode) memory() bool {
	switch m {
	case ZeroPage, ZeroPageX, ZeroPageY, Absolute, AbsoluteX, AbsoluteY,
		IndexedIndirect, IndirectIndexed:
		return true
	}
	return false
}

// Opcode is one entry of the decode table.
type Opcode struct {
	Instruction Instruction
	Mode        AddressingMode
	// Cycles is the base cost of the instruction.
	Cycles uint8
	// PageCycle adds one cycle when indexing crosses a page.
	PageCycle bool
}

// Decode looks up the instruction and addressing mode for an opcode byte.
func Decode(opcode uint8) Opcode {
	return opcodeTable[opcode]
}

const (
	imp = Implied
	acc = Accumulator
	imm = Immediate
	zp  = ZeroPage
	zpx = ZeroPageX
	zpy = ZeroPageY
	rel = Relative
	abs = Absolute
	abx = AbsoluteX
	aby = AbsoluteY
	ind = Indirect
	izx = IndexedIndirect
	izy = IndirectIndexed
)

// opcodeTable is the full 256-entry decode table. Cycle counts follow the
// NESdev 6502 reference; read-type indexed modes carry the page penalty,
// stores and read-modify-write forms have it folded into the base cost.
var opcodeTable = [256]Opcode{
	0x00: {BRK, imp, 7, false}, 0x01: {ORA, izx, 6, false}, 0x02: {KIL, imp, 2, false}, 0x03: {SLO, izx, 8, false},
	0x04: {NOP, zp, 3, false}, 0x05: {ORA, zp, 3, false}, 0x06: {ASL, zp, 5, false}, 0x07: {SLO, zp, 5, false},
	0x08: {PHP, imp, 3, false}, 0x09: {ORA, imm, 2, false}, 0x0A: {ASL, acc, 2, false}, 0x0B: {ANC, imm, 2, false},
	0x0C: {NOP, abs, 4, false}, 0x0D: {ORA, abs, 4, false}, 0x0E: {ASL, abs, 6, false}, 0x0F: {SLO, abs, 6, false},

	0x10: {BPL, rel, 2, false}, 0x11: {ORA, izy, 5, true}, 0x12: {KIL, imp, 2, false}, 0x13: {SLO, izy, 8, false},
	0x14: {NOP, zpx, 4, false}, 0x15: {ORA, zpx, 4, false}, 0x16: {ASL, zpx, 6, false}, 0x17: {SLO, zpx, 6, false},
	0x18: {CLC, imp, 2, false}, 0x19: {ORA, aby, 4, true}, 0x1A: {NOP, imp, 2, false}, 0x1B: {SLO, aby, 7, false},
	0x1C: {NOP, abx, 4, true}, 0x1D: {ORA, abx, 4, true}, 0x1E: {ASL, abx, 7, false}, 0x1F: {SLO, abx, 7, false},

	0x20: {JSR, abs, 6, false}, 0x21: {AND, izx, 6, false}, 0x22: {KIL, imp, 2, false}, 0x23: {RLA, izx, 8, false},
	0x24: {BIT, zp, 3, false}, 0x25: {AND, zp, 3, false}, 0x26: {ROL, zp, 5, false}, 0x27: {RLA, zp, 5, false},
	0x28: {PLP, imp, 4, false}, 0x29: {AND, imm, 2, false}, 0x2A: {ROL, acc, 2, false}, 0x2B: {ANC, imm, 2, false},
	0x2C: {BIT, abs, 4, false}, 0x2D: {AND, abs, 4, false}, 0x2E: {ROL, abs, 6, false}, 0x2F: {RLA, abs, 6, false},

	0x30: {BMI, rel, 2, false}, 0x31: {AND, izy, 5, true}, 0x32: {KIL, imp, 2, false}, 0x33: {RLA, izy, 8, false},
	0x34: {NOP, zpx, 4, false}, 0x35: {AND, zpx, 4, false}, 0x36: {ROL, zpx, 6, false}, 0x37: {RLA, zpx, 6, false},
	0x38: {SEC, imp, 2, false}, 0x39: {AND, aby, 4, true}, 0x3A: {NOP, imp, 2, false}, 0x3B: {RLA, aby, 7, false},
	0x3C: {NOP, abx, 4, true}, 0x3D: {AND, abx, 4, true}, 0x3E: {ROL, abx, 7, false}, 0x3F: {RLA, abx, 7, false},

	0x40: {RTI, imp, 6, false}, 0x41: {EOR, izx, 6, false}, 0x42: {KIL, imp, 2, false}, 0x43: {SRE, izx, 8, false},
	0x44: {NOP, zp, 3, false}, 0x45: {EOR, zp, 3, false}, 0x46: {LSR, zp, 5, false}, 0x47: {SRE, zp, 5, false},
	0x48: {PHA, imp, 3, false}, 0x49: {EOR, imm, 2, false}, 0x4A: {LSR, acc, 2, false}, 0x4B: {ALR, imm, 2, false},
	0x4C: {JMP, abs, 3, false}, 0x4D: {EOR, abs, 4, false}, 0x4E: {LSR, abs, 6, false}, 0x4F: {SRE, abs, 6, false},

	0x50: {BVC, rel, 2, false}, 0x51: {EOR, izy, 5, true}, 0x52: {KIL, imp, 2, false}, 0x53: {SRE, izy, 8, false},
	0x54: {NOP, zpx, 4, false}, 0x55: {EOR, zpx, 4, false}, 0x56: {LSR, zpx, 6, false}, 0x57: {SRE, zpx, 6, false},
	0x58: {CLI, imp, 2, false}, 0x59: {EOR, aby, 4, true}, 0x5A: {NOP, imp, 2, false}, 0x5B: {SRE, aby, 7, false},
	0x5C: {NOP, abx, 4, true}, 0x5D: {EOR, abx, 4, true}, 0x5E: {LSR, abx, 7, false}, 0x5F: {SRE, abx, 7, false},

	0x60: {RTS, imp, 6, false}, 0x61: {ADC, izx, 6, false}, 0x62: {KIL, imp, 2, false}, 0x63: {RRA, izx, 8, false},
	0x64: {NOP, zp, 3, false}, 0x65: {ADC, zp, 3, false}, 0x66: {ROR, zp, 5, false}, 0x67: {RRA, zp, 5, false},
	0x68: {PLA, imp, 4, false}, 0x69: {ADC, imm, 2, false}, 0x6A: {ROR, acc, 2, false}, 0x6B: {ARR, imm, 2, false},
	0x6C: {JMP, ind, 5, false}, 0x6D: {ADC, abs, 4, false}, 0x6E: {ROR, abs, 6, false}, 0x6F: {RRA, abs, 6, false},

	0x70: {BVS, rel, 2, false}, 0x71: {ADC, izy, 5, true}, 0x72: {KIL, imp, 2, false}, 0x73: {RRA, izy, 8, false},
	0x74: {NOP, zpx, 4, false}, 0x75: {ADC, zpx, 4, false}, 0x76: {ROR, zpx, 6, false}, 0x77: {RRA, zpx, 6, false},
	0x78: {SEI, imp, 2, false}, 0x79: {ADC, aby, 4, true}, 0x7A: {NOP, imp, 2, false}, 0x7B: {RRA, aby, 7, false},
	0x7C: {NOP, abx, 4, true}, 0x7D: {ADC, abx, 4, true}, 0x7E: {ROR, abx, 7, false}, 0x7F: {RRA, abx, 7, false},

	0x80: {NOP, imm, 2, false}, 0x81: {STA, izx, 6, false}, 0x82: {NOP, imm, 2, false}, 0x83: {SAX, izx, 6, false},
	0x84: {STY, zp, 3, false}, 0x85: {STA, zp, 3, false}, 0x86: {STX, zp, 3, false}, 0x87: {SAX, zp, 3, false},
	0x88: {DEY, imp, 2, false}, 0x89: {NOP, imm, 2, false}, 0x8A: {TXA, imp, 2, false}, 0x8B: {XAA, imm, 2, false},
	0x8C: {STY, abs, 4, false}, 0x8D: {STA, abs, 4, false}, 0x8E: {STX, abs, 4, false}, 0x8F: {SAX, abs, 4, false},

	0x90: {BCC, rel, 2, false}, 0x91: {STA, izy, 6, false}, 0x92: {KIL, imp, 2, false}, 0x93: {AXA, izy, 6, false},
	0x94: {STY, zpx, 4, false}, 0x95: {STA, zpx, 4, false}, 0x96: {STX, zpy, 4, false}, 0x97: {SAX, zpy, 4, false},
	0x98: {TYA, imp, 2, false}, 0x99: {STA, aby, 5, false}, 0x9A: {TXS, imp, 2, false}, 0x9B: {XAS, aby, 5, false},
	0x9C: {SYA, abx, 5, false}, 0x9D: {STA, abx, 5, false}, 0x9E: {SXA, aby, 5, false}, 0x9F: {AXA, aby, 5, false},

	0xA0: {LDY, imm, 2, false}, 0xA1: {LDA, izx, 6, false}, 0xA2: {LDX, imm, 2, false}, 0xA3: {LAX, izx, 6, false},
	0xA4: {LDY, zp, 3, false}, 0xA5: {LDA, zp, 3, false}, 0xA6: {LDX, zp, 3, false}, 0xA7: {LAX, zp, 3, false},
	0xA8: {TAY, imp, 2, false}, 0xA9: {LDA, imm, 2, false}, 0xAA: {TAX, imp, 2, false}, 0xAB: {ATX, imm, 2, false},
	0xAC: {LDY, abs, 4, false}, 0xAD: {LDA, abs, 4, false}, 0xAE: {LDX, abs, 4, false}, 0xAF: {LAX, abs, 4, false},

	0xB0: {BCS, rel, 2, false}, 0xB1: {LDA, izy, 5, true}, 0xB2: {KIL, imp, 2, false}, 0xB3: {LAX, izy, 5, true},
	0xB4: {LDY, zpx, 4, false}, 0xB5: {LDA, zpx, 4, false}, 0xB6: {LDX, zpy, 4, false}, 0xB7: {LAX, zpy, 4, false},
	0xB8: {CLV, imp, 2, false}, 0xB9: {LDA, aby, 4, true}, 0xBA: {TSX, imp, 2, false}, 0xBB: {LAR, aby, 4, true},
	0xBC: {LDY, abx, 4, true}, 0xBD: {LDA, abx, 4, true}, 0xBE: {LDX, aby, 4, true}, 0xBF: {LAX, aby, 4, true},

	0xC0: {CPY, imm, 2, false}, 0xC1: {CMP, izx, 6, false}, 0xC2: {NOP, imm, 2, false}, 0xC3: {DCP, izx, 8, false},
	0xC4: {CPY, zp, 3, false}, 0xC5: {CMP, zp, 3, false}, 0xC6: {DEC, zp, 5, false}, 0xC7: {DCP, zp, 5, false},
	0xC8: {INY, imp, 2, false}, 0xC9: {CMP, imm, 2, false}, 0xCA: {DEX, imp, 2, false}, 0xCB: {AXS, imm, 2, false},
	0xCC: {CPY, abs, 4, false}, 0xCD: {CMP, abs, 4, false}, 0xCE: {DEC, abs, 6, false}, 0xCF: {DCP, abs, 6, false},

	0xD0: {BNE, rel, 2, false}, 0xD1: {CMP, izy, 5, true}, 0xD2: {KIL, imp, 2, false}, 0xD3: {DCP, izy, 8, false},
	0xD4: {NOP, zpx, 4, false}, 0xD5: {CMP, zpx, 4, false}, 0xD6: {DEC, zpx, 6, false}, 0xD7: {DCP, zpx, 6, false},
	0xD8: {CLD, imp, 2, false}, 0xD9: {CMP, aby, 4, true}, 0xDA: {NOP, imp, 2, false}, 0xDB: {DCP, aby, 7, false},
	0xDC: {NOP, abx, 4, true}, 0xDD: {CMP, abx, 4, true}, 0xDE: {DEC, abx, 7, false}, 0xDF: {DCP, abx, 7, false},

	0xE0: {CPX, imm, 2, false}, 0xE1: {SBC, izx, 6, false}, 0xE2: {NOP, imm, 2, false}, 0xE3: {ISC, izx, 8, false},
	0xE4: {CPX, zp, 3, false}, 0xE5: {SBC, zp, 3, false}, 0xE6: {INC, zp, 5, false}, 0xE7: {ISC, zp, 5, false},
	0xE8: {INX, imp, 2, false}, 0xE9: {SBC, imm, 2, false}, 0xEA: {NOP, imp, 2, false}, 0xEB: {SBC, imm, 2, false},
	0xEC: {CPX, abs, 4, false}, 0xED: {SBC, abs, 4, false}, 0xEE: {INC, abs, 6, false}, 0xEF: {ISC, abs, 6, false},

	0xF0: {BEQ, rel, 2, false}, 0xF1: {SBC, izy, 5, true}, 0xF2: {KIL, imp, 2, false}, 0xF3: {ISC, izy, 8, false},
	0xF4: {NOP, zpx, 4, false}, 0xF5: {SBC, zpx, 4, false}, 0xF6: {INC, zpx, 6, false}, 0xF7: {ISC, zpx, 6, false},
	0xF8: {SED, imp, 2, false}, 0xF9: {SBC, aby, 4, true}, 0xFA: {NOP, imp, 2, false}, 0xFB: {ISC, aby, 7, false},
	0xFC: {NOP, abx, 4, true}, 0xFD: {SBC, abx, 4, true}, 0xFE: {INC, abx, 7, false}, 0xFF: {ISC, abx, 7, false},
}

// validMode reports whether an instruction can be paired with a mode.
func validMode(in Instruction, mode AddressingMode) bool {
	switch in {
	case BCC, BCS, BEQ, BMI, BNE, BPL, BVC, BVS:
		return mode == Relative
	case JMP:
		return mode == Absolute || mode == Indirect
	case JSR:
		return mode == Absolute
	case BRK, CLC, CLD, CLI, CLV, DEX, DEY, INX, INY, PHA, PHP, PLA, PLP,
		RTI, RTS, SEC, SED, SEI, TAX, TAY, TSX, TXA, TXS, TYA, KIL:
		return mode == Implied
	case NOP:
		return mode == Implied || mode == Immediate || mode.memory()
	case ASL, LSR, ROL, ROR:
		return mode == Accumulator || mode.memory()
	case ALR, ANC, ARR, ATX, AXS, XAA:
		return mode == Immediate
	case ADC, AND, CMP, CPX, CPY, EOR, LDA, LDX, LDY, ORA, SBC:
		return mode == Immediate || mode.memory()
	case BIT, LAX, LAR,
		STA, STX, STY, SAX, AXA, XAS, SYA, SXA,
		INC, DEC, SLO, RLA, SRE, RRA, DCP, ISC:
		return mode.memory()
	}
	return false
}
