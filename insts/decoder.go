package insts

import (
	"errors"
	"fmt"
)

// ErrInvalidEncoding reports a machine-code word with no decode table
// entry, or one whose entry requires a disabled ISA variant.
var ErrInvalidEncoding = errors.New("invalid encoding")

// anyFunct marks an unused funct field in a decode table entry.
const anyFunct = 0xFF

// baseEntry is one row of the 32-bit decode table. The dispatch key is
// (opcode, funct3, funct7); funct7 is matched under a mask so that the
// RV64 shift-immediate encodings, whose funct7 bit 0 carries shamt[5],
// share a row with their RV32 counterparts.
type baseEntry struct {
	funct3     uint8
	funct7Mask uint8
	funct7     uint8
	op         Op
	format     Format
	rv64Only   bool
}

// baseTable maps a 7-bit opcode to its candidate entries. It is built
// once at package load and never mutated afterwards.
var baseTable = map[uint8][]baseEntry{
	0x37: {{funct3: anyFunct, op: OpLUI, format: FormatU}},
	0x17: {{funct3: anyFunct, op: OpAUIPC, format: FormatU}},
	0x6F: {{funct3: anyFunct, op: OpJAL, format: FormatJ}},
	0x67: {{funct3: 0, op: OpJALR, format: FormatI}},
	0x63: {
		{funct3: 0, op: OpBEQ, format: FormatB},
		{funct3: 1, op: OpBNE, format: FormatB},
		{funct3: 4, op: OpBLT, format: FormatB},
		{funct3: 5, op: OpBGE, format: FormatB},
		{funct3: 6, op: OpBLTU, format: FormatB},
		{funct3: 7, op: OpBGEU, format: FormatB},
	},
	0x03: {
		{funct3: 0, op: OpLB, format: FormatI},
		{funct3: 1, op: OpLH, format: FormatI},
		{funct3: 2, op: OpLW, format: FormatI},
		{funct3: 3, op: OpLD, format: FormatI, rv64Only: true},
		{funct3: 4, op: OpLBU, format: FormatI},
		{funct3: 5, op: OpLHU, format: FormatI},
		{funct3: 6, op: OpLWU, format: FormatI, rv64Only: true},
	},
	0x23: {
		{funct3: 0, op: OpSB, format: FormatS},
		{funct3: 1, op: OpSH, format: FormatS},
		{funct3: 2, op: OpSW, format: FormatS},
		{funct3: 3, op: OpSD, format: FormatS, rv64Only: true},
	},
	0x13: {
		{funct3: 0, op: OpADDI, format: FormatI},
		{funct3: 2, op: OpSLTI, format: FormatI},
		{funct3: 3, op: OpSLTIU, format: FormatI},
		{funct3: 4, op: OpXORI, format: FormatI},
		{funct3: 6, op: OpORI, format: FormatI},
		{funct3: 7, op: OpANDI, format: FormatI},
		{funct3: 1, funct7Mask: 0x7E, funct7: 0x00, op: OpSLLI, format: FormatI},
		{funct3: 5, funct7Mask: 0x7E, funct7: 0x00, op: OpSRLI, format: FormatI},
		{funct3: 5, funct7Mask: 0x7E, funct7: 0x20, op: OpSRAI, format: FormatI},
	},
	0x1B: {
		{funct3: 0, op: OpADDIW, format: FormatI, rv64Only: true},
	},
	0x33: {
		{funct3: 0, funct7Mask: 0x7F, funct7: 0x00, op: OpADD, format: FormatR},
		{funct3: 0, funct7Mask: 0x7F, funct7: 0x20, op: OpSUB, format: FormatR},
		{funct3: 1, funct7Mask: 0x7F, funct7: 0x00, op: OpSLL, format: FormatR},
		{funct3: 2, funct7Mask: 0x7F, funct7: 0x00, op: OpSLT, format: FormatR},
		{funct3: 3, funct7Mask: 0x7F, funct7: 0x00, op: OpSLTU, format: FormatR},
		{funct3: 4, funct7Mask: 0x7F, funct7: 0x00, op: OpXOR, format: FormatR},
		{funct3: 5, funct7Mask: 0x7F, funct7: 0x00, op: OpSRL, format: FormatR},
		{funct3: 5, funct7Mask: 0x7F, funct7: 0x20, op: OpSRA, format: FormatR},
		{funct3: 6, funct7Mask: 0x7F, funct7: 0x00, op: OpOR, format: FormatR},
		{funct3: 7, funct7Mask: 0x7F, funct7: 0x00, op: OpAND, format: FormatR},
	},
	0x3B: {
		{funct3: 0, funct7Mask: 0x7F, funct7: 0x00, op: OpADDW, format: FormatR, rv64Only: true},
		{funct3: 0, funct7Mask: 0x7F, funct7: 0x20, op: OpSUBW, format: FormatR, rv64Only: true},
	},
	0x0F: {
		{funct3: 0, op: OpFENCE, format: FormatI},
		{funct3: 1, op: OpFENCEI, format: FormatI},
	},
	0x73: {
		{funct3: 0, op: OpECALL, format: FormatI},
		{funct3: 1, op: OpCSRRW, format: FormatI},
		{funct3: 2, op: OpCSRRS, format: FormatI},
		{funct3: 3, op: OpCSRRC, format: FormatI},
		{funct3: 5, op: OpCSRRWI, format: FormatI},
		{funct3: 6, op: OpCSRRSI, format: FormatI},
		{funct3: 7, op: OpCSRRCI, format: FormatI},
	},
}

// Decoder decodes RISC-V machine code into instructions for a fixed
// ISA variant.
type Decoder struct {
	variant Variant
}

// NewDecoder creates a decoder for the given ISA variant.
func NewDecoder(variant Variant) *Decoder {
	return &Decoder{variant: variant}
}

// Variant returns the decoder's ISA variant.
func (d *Decoder) Variant() Variant { return d.variant }

// Decode decodes one machine-code word. Words whose low two bits are
// not 0b11 are 16-bit compressed encodings; only the low half of the
// word is consumed for those.
func (d *Decoder) Decode(word uint32) (*Instruction, error) {
	if word&0x3 != 0x3 {
		return d.DecodeCompressed(uint16(word))
	}

	opcode := uint8(word & 0x7F)
	funct3 := uint8(word >> 12 & 0x7)
	funct7 := uint8(word >> 25 & 0x7F)

	entry, err := d.lookup(word, opcode, funct3, funct7)
	if err != nil {
		return nil, err
	}

	inst := &Instruction{Op: entry.op, Format: entry.format, Raw: word}
	if err := d.decodeOperands(word, inst); err != nil {
		return nil, err
	}

	// ecall and ebreak share (0x73, funct3=0); the I-immediate
	// distinguishes them.
	if opcode == 0x73 && funct3 == 0 {
		switch word >> 20 {
		case 0:
			inst.Op = OpECALL
		case 1:
			inst.Op = OpEBREAK
		default:
			return nil, fmt.Errorf("%w: system word 0x%08X", ErrInvalidEncoding, word)
		}
	}

	return inst, nil
}

func (d *Decoder) lookup(word uint32, opcode, funct3, funct7 uint8) (baseEntry, error) {
	for _, entry := range baseTable[opcode] {
		if entry.funct3 != anyFunct && entry.funct3 != funct3 {
			continue
		}
		if entry.funct7&entry.funct7Mask != funct7&entry.funct7Mask {
			continue
		}
		if entry.rv64Only && d.variant.XLen != 64 {
			return baseEntry{}, fmt.Errorf("%w: 0x%08X requires RV64I",
				ErrInvalidEncoding, word)
		}
		return entry, nil
	}
	return baseEntry{}, fmt.Errorf("%w: no dispatch entry for 0x%08X",
		ErrInvalidEncoding, word)
}

// decodeOperands populates the operand fields from the format-specific
// bit layout.
func (d *Decoder) decodeOperands(word uint32, inst *Instruction) error {
	rd := uint8(word >> 7 & 0x1F)
	rs1 := uint8(word >> 15 & 0x1F)
	rs2 := uint8(word >> 20 & 0x1F)

	switch inst.Format {
	case FormatR:
		inst.Rd, inst.Rs1, inst.Rs2 = rd, rs1, rs2
		return nil

	case FormatI:
		inst.Rd, inst.Rs1 = rd, rs1
		if isShiftImmediate(inst.Op) {
			return d.decodeShamt(word, inst)
		}
		imm := NewImmediate(12, true, false)
		if err := imm.SetFromBits(uint64(word >> 20)); err != nil {
			return err
		}
		inst.Imm = imm
		return nil

	case FormatS:
		inst.Rs1, inst.Rs2 = rs1, rs2
		raw := uint64(word>>25&0x7F)<<5 | uint64(word>>7&0x1F)
		imm := NewImmediate(12, true, false)
		if err := imm.SetFromBits(raw); err != nil {
			return err
		}
		inst.Imm = imm
		return nil

	case FormatB:
		inst.Rs1, inst.Rs2 = rs1, rs2
		raw := uint64(word>>31&0x1)<<12 |
			uint64(word>>7&0x1)<<11 |
			uint64(word>>25&0x3F)<<5 |
			uint64(word>>8&0xF)<<1
		imm := NewImmediate(13, true, true)
		if err := imm.SetFromBits(raw); err != nil {
			return err
		}
		inst.Imm = imm
		return nil

	case FormatU:
		inst.Rd = rd
		imm := NewImmediate(20, false, false)
		if err := imm.SetFromBits(uint64(word >> 12)); err != nil {
			return err
		}
		inst.Imm = imm
		return nil

	case FormatJ:
		inst.Rd = rd
		raw := uint64(word>>31&0x1)<<20 |
			uint64(word>>12&0xFF)<<12 |
			uint64(word>>20&0x1)<<11 |
			uint64(word>>21&0x3FF)<<1
		imm := NewImmediate(21, true, true)
		if err := imm.SetFromBits(raw); err != nil {
			return err
		}
		inst.Imm = imm
		return nil

	default:
		return fmt.Errorf("%w: format %d", ErrInvalidEncoding, inst.Format)
	}
}

// decodeShamt extracts the shift amount for slli/srli/srai. RV64 widens
// the field to six bits.
func (d *Decoder) decodeShamt(word uint32, inst *Instruction) error {
	bits := uint8(5)
	mask := uint32(0x1F)
	if d.variant.XLen == 64 {
		bits = 6
		mask = 0x3F
	} else if word>>25&0x1 != 0 {
		// shamt[5] is reserved on RV32.
		return fmt.Errorf("%w: shamt[5] set in 0x%08X on RV32", ErrInvalidEncoding, word)
	}
	shamt := NewImmediate(bits, false, false)
	if err := shamt.SetFromBits(uint64(word >> 20 & mask)); err != nil {
		return err
	}
	inst.Shamt = shamt
	return nil
}

func isShiftImmediate(op Op) bool {
	return op == OpSLLI || op == OpSRLI || op == OpSRAI
}
