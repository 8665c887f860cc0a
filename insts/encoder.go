package insts

import (
	"errors"
	"fmt"
)

// ErrNotEncodable reports an instruction the encoder cannot express,
// such as a compressed variant or an unknown op.
var ErrNotEncodable = errors.New("not encodable")

// encodeEntry is the reverse of a decode table row.
type encodeEntry struct {
	opcode uint8
	funct3 uint8
	funct7 uint8
	format Format
}

// encodeTable is derived from baseTable once at package load.
var encodeTable = buildEncodeTable()

func buildEncodeTable() map[Op]encodeEntry {
	table := make(map[Op]encodeEntry)
	for opcode, entries := range baseTable {
		for _, entry := range entries {
			funct3 := entry.funct3
			if funct3 == anyFunct {
				funct3 = 0
			}
			table[entry.op] = encodeEntry{
				opcode: opcode,
				funct3: funct3,
				funct7: entry.funct7,
				format: entry.format,
			}
		}
	}
	// ebreak shares (0x73, funct3=0) with ecall in the decode table and
	// is selected by imm=1, so it needs its own entry here.
	table[OpEBREAK] = encodeEntry{opcode: 0x73, format: FormatI}
	return table
}

// Encode produces the 32-bit machine-code word for a base-format
// instruction. Compressed variants have no encoder in this model.
func Encode(inst *Instruction) (uint32, error) {
	if inst.Compressed {
		return 0, fmt.Errorf("%w: compressed instruction", ErrNotEncodable)
	}
	entry, ok := encodeTable[inst.Op]
	if !ok {
		return 0, fmt.Errorf("%w: op %d", ErrNotEncodable, inst.Op)
	}

	word := uint32(entry.opcode) | uint32(entry.funct3)<<12

	switch entry.format {
	case FormatR:
		word |= uint32(inst.Rd&0x1F)<<7 |
			uint32(inst.Rs1&0x1F)<<15 |
			uint32(inst.Rs2&0x1F)<<20 |
			uint32(entry.funct7)<<25

	case FormatI:
		word |= uint32(inst.Rd&0x1F)<<7 | uint32(inst.Rs1&0x1F)<<15
		switch {
		case isShiftImmediate(inst.Op):
			word |= uint32(inst.Shamt.Unsigned()&0x3F)<<20 | uint32(entry.funct7)<<25
		case inst.Op == OpEBREAK:
			word |= 1 << 20
		case inst.Imm != nil:
			word |= uint32(inst.Imm.Unsigned()&0xFFF) << 20
		}

	case FormatS:
		raw := uint32(inst.Imm.Unsigned() & 0xFFF)
		word |= uint32(inst.Rs1&0x1F)<<15 |
			uint32(inst.Rs2&0x1F)<<20 |
			(raw&0x1F)<<7 |
			(raw>>5)<<25

	case FormatB:
		raw := uint32(inst.Imm.Unsigned() & 0x1FFF)
		word |= uint32(inst.Rs1&0x1F)<<15 |
			uint32(inst.Rs2&0x1F)<<20 |
			(raw>>12&0x1)<<31 |
			(raw>>5&0x3F)<<25 |
			(raw>>1&0xF)<<8 |
			(raw>>11&0x1)<<7

	case FormatU:
		word |= uint32(inst.Rd&0x1F)<<7 | uint32(inst.Imm.Unsigned()&0xFFFFF)<<12

	case FormatJ:
		raw := uint32(inst.Imm.Unsigned() & 0x1FFFFF)
		word |= uint32(inst.Rd&0x1F)<<7 |
			(raw>>20&0x1)<<31 |
			(raw>>1&0x3FF)<<21 |
			(raw>>11&0x1)<<20 |
			(raw>>12&0xFF)<<12

	default:
		return 0, fmt.Errorf("%w: format %d", ErrNotEncodable, entry.format)
	}

	return word, nil
}
