package insts

import "fmt"

// DecodeCompressed decodes a 16-bit C-extension encoding. The dispatch
// key is (quadrant, funct3); a few rows subdivide further on funct4,
// funct6, or register fields. Compressed instructions decode to the Op
// of their base expansion, with compact register fields (rd', rs1',
// rs2' meaning GPR 8+field) already widened.
func (d *Decoder) DecodeCompressed(half uint16) (*Instruction, error) {
	if !d.variant.Compressed {
		return nil, fmt.Errorf("%w: 0x%04X requires the C extension",
			ErrInvalidEncoding, half)
	}
	if half == 0 {
		// The all-zero halfword is defined illegal.
		return nil, fmt.Errorf("%w: 0x0000", ErrInvalidEncoding)
	}

	quadrant := half & 0x3
	funct3 := uint8(half >> 13 & 0x7)

	var (
		inst *Instruction
		err  error
	)
	switch quadrant {
	case 0:
		inst, err = d.decodeQuadrant0(half, funct3)
	case 1:
		inst, err = d.decodeQuadrant1(half, funct3)
	case 2:
		inst, err = d.decodeQuadrant2(half, funct3)
	default:
		// Quadrant 3 marks a 32-bit encoding; this halfword is only its
		// low half.
		return nil, fmt.Errorf("%w: 0x%04X is not a 16-bit encoding",
			ErrInvalidEncoding, half)
	}
	if err != nil {
		return nil, err
	}

	inst.Raw = uint32(half)
	inst.Compressed = true
	return inst, nil
}

// Compact register fields select x8-x15.
func compactReg(field uint16) uint8 { return 8 + uint8(field&0x7) }

func (d *Decoder) decodeQuadrant0(half uint16, funct3 uint8) (*Instruction, error) {
	rdc := compactReg(half >> 2)
	rs1c := compactReg(half >> 7)

	switch funct3 {
	case 0: // c.addi4spn: addi rd', x2, nzuimm
		raw := uint64(half>>7&0xF)<<6 |
			uint64(half>>11&0x3)<<4 |
			uint64(half>>5&0x1)<<3 |
			uint64(half>>6&0x1)<<2
		if raw == 0 {
			return nil, fmt.Errorf("%w: c.addi4spn with nzuimm=0", ErrInvalidEncoding)
		}
		imm := NewImmediate(10, false, false)
		if err := imm.SetFromBits(raw); err != nil {
			return nil, err
		}
		return &Instruction{Op: OpADDI, Format: FormatCIW, Rd: rdc, Rs1: 2, Imm: imm}, nil

	case 2: // c.lw: lw rd', offset(rs1')
		imm, err := wordOffsetCLCS(half)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpLW, Format: FormatCL, Rd: rdc, Rs1: rs1c, Imm: imm}, nil

	case 3: // c.ld (RV64): ld rd', offset(rs1')
		if d.variant.XLen != 64 {
			return nil, fmt.Errorf("%w: c.ld requires RV64I", ErrInvalidEncoding)
		}
		imm, err := doubleOffsetCLCS(half)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpLD, Format: FormatCL, Rd: rdc, Rs1: rs1c, Imm: imm}, nil

	case 6: // c.sw: sw rs2', offset(rs1')
		imm, err := wordOffsetCLCS(half)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpSW, Format: FormatCS, Rs1: rs1c, Rs2: rdc, Imm: imm}, nil

	case 7: // c.sd (RV64): sd rs2', offset(rs1')
		if d.variant.XLen != 64 {
			return nil, fmt.Errorf("%w: c.sd requires RV64I", ErrInvalidEncoding)
		}
		imm, err := doubleOffsetCLCS(half)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpSD, Format: FormatCS, Rs1: rs1c, Rs2: rdc, Imm: imm}, nil
	}

	return nil, fmt.Errorf("%w: quadrant 0 funct3=%d (0x%04X)",
		ErrInvalidEncoding, funct3, half)
}

func (d *Decoder) decodeQuadrant1(half uint16, funct3 uint8) (*Instruction, error) {
	rd := uint8(half >> 7 & 0x1F)

	switch funct3 {
	case 0: // c.addi (c.nop when rd=0, imm=0): addi rd, rd, nzimm
		imm, err := immCI(half)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpADDI, Format: FormatCI, Rd: rd, Rs1: rd, Imm: imm}, nil

	case 1:
		if d.variant.XLen == 64 {
			// c.addiw: addiw rd, rd, imm
			if rd == 0 {
				return nil, fmt.Errorf("%w: c.addiw with rd=0", ErrInvalidEncoding)
			}
			imm, err := immCI(half)
			if err != nil {
				return nil, err
			}
			return &Instruction{Op: OpADDIW, Format: FormatCI, Rd: rd, Rs1: rd, Imm: imm}, nil
		}
		// c.jal (RV32): jal x1, offset
		imm, err := offsetCJ(half)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpJAL, Format: FormatCJ, Rd: 1, Imm: imm}, nil

	case 2: // c.li: addi rd, x0, imm
		imm, err := immCI(half)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpADDI, Format: FormatCI, Rd: rd, Rs1: 0, Imm: imm}, nil

	case 3:
		if rd == 2 {
			// c.addi16sp: addi x2, x2, nzimm
			raw := uint64(half>>12&0x1)<<9 |
				uint64(half>>3&0x3)<<7 |
				uint64(half>>5&0x1)<<6 |
				uint64(half>>2&0x1)<<5 |
				uint64(half>>6&0x1)<<4
			if raw == 0 {
				return nil, fmt.Errorf("%w: c.addi16sp with nzimm=0", ErrInvalidEncoding)
			}
			imm := NewImmediate(10, true, false)
			if err := imm.SetFromBits(raw); err != nil {
				return nil, err
			}
			return &Instruction{Op: OpADDI, Format: FormatCI, Rd: 2, Rs1: 2, Imm: imm}, nil
		}
		// c.lui: lui rd, nzimm (sign-extended, scaled by 4096 at execute)
		raw := uint64(half>>12&0x1)<<5 | uint64(half>>2&0x1F)
		if raw == 0 {
			return nil, fmt.Errorf("%w: c.lui with nzimm=0", ErrInvalidEncoding)
		}
		imm := NewImmediate(6, true, false)
		if err := imm.SetFromBits(raw); err != nil {
			return nil, err
		}
		return &Instruction{Op: OpLUI, Format: FormatCI, Rd: rd, Imm: imm}, nil

	case 4:
		return d.decodeQuadrant1ALU(half)

	case 5: // c.j: jal x0, offset
		imm, err := offsetCJ(half)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpJAL, Format: FormatCJ, Rd: 0, Imm: imm}, nil

	case 6: // c.beqz: beq rs1', x0, offset
		imm, err := offsetCB(half)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpBEQ, Format: FormatCB, Rs1: compactReg(half >> 7), Rs2: 0, Imm: imm}, nil

	case 7: // c.bnez: bne rs1', x0, offset
		imm, err := offsetCB(half)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpBNE, Format: FormatCB, Rs1: compactReg(half >> 7), Rs2: 0, Imm: imm}, nil
	}

	return nil, fmt.Errorf("%w: quadrant 1 funct3=%d (0x%04X)",
		ErrInvalidEncoding, funct3, half)
}

// decodeQuadrant1ALU handles the quadrant 1, funct3=100 row: shifts,
// andi, and the CA-format register ops, selected by bits [11:10].
func (d *Decoder) decodeQuadrant1ALU(half uint16) (*Instruction, error) {
	rdc := compactReg(half >> 7)

	switch half >> 10 & 0x3 {
	case 0: // c.srli: srli rd', rd', shamt
		shamt, err := d.shamtCB(half)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpSRLI, Format: FormatCB, Rd: rdc, Rs1: rdc, Shamt: shamt}, nil

	case 1: // c.srai: srai rd', rd', shamt
		shamt, err := d.shamtCB(half)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpSRAI, Format: FormatCB, Rd: rdc, Rs1: rdc, Shamt: shamt}, nil

	case 2: // c.andi: andi rd', rd', imm
		imm, err := immCI(half)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpANDI, Format: FormatCB, Rd: rdc, Rs1: rdc, Imm: imm}, nil
	}

	// CA format: funct6 bits [15:10] plus bits [6:5] select the op.
	rs2c := compactReg(half >> 2)
	inst := &Instruction{Format: FormatCA, Rd: rdc, Rs1: rdc, Rs2: rs2c}

	wide := half>>12&0x1 != 0 // c.subw/c.addw row
	switch half >> 5 & 0x3 {
	case 0:
		if wide {
			if d.variant.XLen != 64 {
				return nil, fmt.Errorf("%w: c.subw requires RV64I", ErrInvalidEncoding)
			}
			inst.Op = OpSUBW
		} else {
			inst.Op = OpSUB
		}
	case 1:
		if wide {
			if d.variant.XLen != 64 {
				return nil, fmt.Errorf("%w: c.addw requires RV64I", ErrInvalidEncoding)
			}
			inst.Op = OpADDW
		} else {
			inst.Op = OpXOR
		}
	case 2:
		if wide {
			return nil, fmt.Errorf("%w: reserved CA encoding 0x%04X", ErrInvalidEncoding, half)
		}
		inst.Op = OpOR
	case 3:
		if wide {
			return nil, fmt.Errorf("%w: reserved CA encoding 0x%04X", ErrInvalidEncoding, half)
		}
		inst.Op = OpAND
	}

	return inst, nil
}

func (d *Decoder) decodeQuadrant2(half uint16, funct3 uint8) (*Instruction, error) {
	rd := uint8(half >> 7 & 0x1F)
	rs2 := uint8(half >> 2 & 0x1F)

	switch funct3 {
	case 0: // c.slli: slli rd, rd, shamt
		shamt, err := d.shamtCI(half)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpSLLI, Format: FormatCI, Rd: rd, Rs1: rd, Shamt: shamt}, nil

	case 2: // c.lwsp: lw rd, offset(x2)
		if rd == 0 {
			return nil, fmt.Errorf("%w: c.lwsp with rd=0", ErrInvalidEncoding)
		}
		raw := uint64(half>>2&0x3)<<6 |
			uint64(half>>12&0x1)<<5 |
			uint64(half>>4&0x7)<<2
		imm := NewImmediate(8, false, false)
		if err := imm.SetFromBits(raw); err != nil {
			return nil, err
		}
		return &Instruction{Op: OpLW, Format: FormatCI, Rd: rd, Rs1: 2, Imm: imm}, nil

	case 3: // c.ldsp (RV64): ld rd, offset(x2)
		if d.variant.XLen != 64 {
			return nil, fmt.Errorf("%w: c.ldsp requires RV64I", ErrInvalidEncoding)
		}
		if rd == 0 {
			return nil, fmt.Errorf("%w: c.ldsp with rd=0", ErrInvalidEncoding)
		}
		raw := uint64(half>>2&0x7)<<6 |
			uint64(half>>12&0x1)<<5 |
			uint64(half>>5&0x3)<<3
		imm := NewImmediate(9, false, false)
		if err := imm.SetFromBits(raw); err != nil {
			return nil, err
		}
		return &Instruction{Op: OpLD, Format: FormatCI, Rd: rd, Rs1: 2, Imm: imm}, nil

	case 4:
		return d.decodeQuadrant2CR(half, rd, rs2)

	case 6: // c.swsp: sw rs2, offset(x2)
		raw := uint64(half>>7&0x3)<<6 | uint64(half>>9&0xF)<<2
		imm := NewImmediate(8, false, false)
		if err := imm.SetFromBits(raw); err != nil {
			return nil, err
		}
		return &Instruction{Op: OpSW, Format: FormatCSS, Rs1: 2, Rs2: rs2, Imm: imm}, nil

	case 7: // c.sdsp (RV64): sd rs2, offset(x2)
		if d.variant.XLen != 64 {
			return nil, fmt.Errorf("%w: c.sdsp requires RV64I", ErrInvalidEncoding)
		}
		raw := uint64(half>>7&0x7)<<6 | uint64(half>>10&0x7)<<3
		imm := NewImmediate(9, false, false)
		if err := imm.SetFromBits(raw); err != nil {
			return nil, err
		}
		return &Instruction{Op: OpSD, Format: FormatCSS, Rs1: 2, Rs2: rs2, Imm: imm}, nil
	}

	return nil, fmt.Errorf("%w: quadrant 2 funct3=%d (0x%04X)",
		ErrInvalidEncoding, funct3, half)
}

// decodeQuadrant2CR handles the quadrant 2, funct4 row: c.jr, c.mv,
// c.ebreak, c.jalr, c.add.
func (d *Decoder) decodeQuadrant2CR(half uint16, rd, rs2 uint8) (*Instruction, error) {
	link := half>>12&0x1 != 0

	if rs2 == 0 {
		if !link {
			// c.jr: jalr x0, rs1, 0
			if rd == 0 {
				return nil, fmt.Errorf("%w: c.jr with rs1=0", ErrInvalidEncoding)
			}
			return &Instruction{Op: OpJALR, Format: FormatCR, Rd: 0, Rs1: rd,
				Imm: NewImmediate(12, true, false)}, nil
		}
		if rd == 0 {
			// c.ebreak
			return &Instruction{Op: OpEBREAK, Format: FormatCR}, nil
		}
		// c.jalr: jalr x1, rs1, 0
		return &Instruction{Op: OpJALR, Format: FormatCR, Rd: 1, Rs1: rd,
			Imm: NewImmediate(12, true, false)}, nil
	}

	if !link {
		// c.mv: add rd, x0, rs2
		return &Instruction{Op: OpADD, Format: FormatCR, Rd: rd, Rs1: 0, Rs2: rs2}, nil
	}
	// c.add: add rd, rd, rs2
	return &Instruction{Op: OpADD, Format: FormatCR, Rd: rd, Rs1: rd, Rs2: rs2}, nil
}

// immCI extracts the 6-bit signed CI immediate (imm[5] at bit 12,
// imm[4:0] at bits [6:2]).
func immCI(half uint16) (*Immediate, error) {
	raw := uint64(half>>12&0x1)<<5 | uint64(half>>2&0x1F)
	imm := NewImmediate(6, true, false)
	if err := imm.SetFromBits(raw); err != nil {
		return nil, err
	}
	return imm, nil
}

// wordOffsetCLCS extracts the word-scaled CL/CS offset
// (offset[5:3] at bits [12:10], offset[2] at bit 6, offset[6] at bit 5).
func wordOffsetCLCS(half uint16) (*Immediate, error) {
	raw := uint64(half>>5&0x1)<<6 |
		uint64(half>>10&0x7)<<3 |
		uint64(half>>6&0x1)<<2
	imm := NewImmediate(7, false, false)
	if err := imm.SetFromBits(raw); err != nil {
		return nil, err
	}
	return imm, nil
}

// doubleOffsetCLCS extracts the doubleword-scaled CL/CS offset
// (offset[5:3] at bits [12:10], offset[7:6] at bits [6:5]).
func doubleOffsetCLCS(half uint16) (*Immediate, error) {
	raw := uint64(half>>5&0x3)<<6 | uint64(half>>10&0x7)<<3
	imm := NewImmediate(8, false, false)
	if err := imm.SetFromBits(raw); err != nil {
		return nil, err
	}
	return imm, nil
}

// offsetCJ extracts the CJ jump offset:
// offset[11|4|9:8|10|6|7|3:1|5] at bits [12:2].
func offsetCJ(half uint16) (*Immediate, error) {
	raw := uint64(half>>12&0x1)<<11 |
		uint64(half>>8&0x1)<<10 |
		uint64(half>>9&0x3)<<8 |
		uint64(half>>6&0x1)<<7 |
		uint64(half>>7&0x1)<<6 |
		uint64(half>>2&0x1)<<5 |
		uint64(half>>11&0x1)<<4 |
		uint64(half>>3&0x7)<<1
	imm := NewImmediate(12, true, true)
	if err := imm.SetFromBits(raw); err != nil {
		return nil, err
	}
	return imm, nil
}

// offsetCB extracts the CB branch offset:
// offset[8|4:3] at bits [12:10], offset[7:6|2:1|5] at bits [6:2].
func offsetCB(half uint16) (*Immediate, error) {
	raw := uint64(half>>12&0x1)<<8 |
		uint64(half>>5&0x3)<<6 |
		uint64(half>>2&0x1)<<5 |
		uint64(half>>10&0x3)<<3 |
		uint64(half>>3&0x3)<<1
	imm := NewImmediate(9, true, true)
	if err := imm.SetFromBits(raw); err != nil {
		return nil, err
	}
	return imm, nil
}

// shamtCI extracts the CI shift amount (shamt[5] at bit 12,
// shamt[4:0] at bits [6:2]).
func (d *Decoder) shamtCI(half uint16) (*Immediate, error) {
	if d.variant.XLen != 64 && half>>12&0x1 != 0 {
		return nil, fmt.Errorf("%w: compressed shamt[5] set on RV32", ErrInvalidEncoding)
	}
	raw := uint64(half>>12&0x1)<<5 | uint64(half>>2&0x1F)
	bits := uint8(5)
	if d.variant.XLen == 64 {
		bits = 6
	}
	shamt := NewImmediate(bits, false, false)
	if err := shamt.SetFromBits(raw); err != nil {
		return nil, err
	}
	return shamt, nil
}

// shamtCB is the CB-format variant of shamtCI (same bit positions).
func (d *Decoder) shamtCB(half uint16) (*Immediate, error) {
	return d.shamtCI(half)
}
