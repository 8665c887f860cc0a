// Package insts provides RISC-V instruction definitions and decoding.
package insts

// Op identifies a RISC-V operation after decode. Compressed encodings
// decode to the Op of their base-instruction expansion.
type Op uint16

// RISC-V opcodes.
const (
	OpUnknown Op = iota

	// Upper-immediate group
	OpLUI
	OpAUIPC

	// Control transfer
	OpJAL
	OpJALR

	// Branches
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU

	// Loads
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU
	OpLWU // RV64I
	OpLD  // RV64I

	// Stores
	OpSB
	OpSH
	OpSW
	OpSD // RV64I

	// Arithmetic/logic immediate
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI
	OpADDIW // RV64I

	// Arithmetic/logic register
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpADDW // RV64I, reached through c.addw
	OpSUBW // RV64I, reached through c.subw

	// System group (decode-only in this model)
	OpFENCE
	OpFENCEI
	OpECALL
	OpEBREAK
	OpCSRRW
	OpCSRRS
	OpCSRRC
	OpCSRRWI
	OpCSRRSI
	OpCSRRCI
)

// Format represents an instruction encoding format.
type Format uint8

// Base (32-bit) and compressed (16-bit) instruction formats.
const (
	FormatUnknown Format = iota
	FormatR
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
	FormatCR
	FormatCI
	FormatCSS
	FormatCIW
	FormatCL
	FormatCS
	FormatCA
	FormatCB
	FormatCJ
)

// Instruction represents a decoded RISC-V instruction. Only the operand
// fields the format defines are populated; the opcode/funct selector
// bits are consumed by decode and not retained.
type Instruction struct {
	Op     Op
	Format Format

	// Operand fields. Compact register fields (rd', rs1', rs2') are
	// already expanded to full GPR indices at decode time.
	Rd  uint8
	Rs1 uint8
	Rs2 uint8

	// Imm is the decoded immediate, nil for formats without one.
	Imm *Immediate

	// Shamt is the shift amount for shift-immediate instructions.
	Shamt *Immediate

	// Raw is the machine-code word this instruction was decoded from.
	// Zero for directly constructed pseudo-instructions.
	Raw uint32

	// Compressed marks 16-bit encodings.
	Compressed bool
}

// Size returns the encoding size in bytes.
func (i *Instruction) Size() uint64 {
	if i.Compressed {
		return 2
	}
	return 4
}

// NewNOP constructs the nop pseudo-instruction, equivalent to
// addi x0, x0, 0. It bypasses decode.
func NewNOP() *Instruction {
	imm := NewImmediate(12, true, false)
	return &Instruction{
		Op:     OpADDI,
		Format: FormatI,
		Rd:     0,
		Rs1:    0,
		Imm:    imm,
		Raw:    0x00000013,
	}
}
