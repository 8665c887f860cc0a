package emu

import "github.com/sarchlab/rvmodel/insts"

// BranchUnit executes the control-transfer group. Branch targets write
// the pc directly; register effects still go through the deferred
// register-file log.
type BranchUnit struct {
	state *State
}

// NewBranchUnit creates a branch unit operating on the given state.
func NewBranchUnit(state *State) *BranchUnit {
	return &BranchUnit{state: state}
}

// JAL writes the return address (pc plus the encoding size) to rd and
// jumps pc-relative by the J-immediate.
func (b *BranchUnit) JAL(inst *insts.Instruction) {
	s := b.state
	s.Regs.Set(inst.Rd, s.PC.Add(Int(inst.Size())))
	s.SetPC(s.PC.Add(inst.Imm))
}

// JALR writes the return address to rd and jumps to rs1 + imm with the
// target's least significant bit cleared, as the base ISA requires.
func (b *BranchUnit) JALR(inst *insts.Instruction) {
	s := b.state
	target := s.Regs.Get(inst.Rs1).Add(inst.Imm).And(Int(-2))
	s.Regs.Set(inst.Rd, s.PC.Add(Int(inst.Size())))
	s.SetPC(target)
}

// Branch executes the conditional branch group: pc += imm when the
// comparison holds, otherwise the step loop's default advance applies.
func (b *BranchUnit) Branch(inst *insts.Instruction) {
	s := b.state
	rs1 := s.Regs.Get(inst.Rs1)
	rs2 := s.Regs.Get(inst.Rs2)

	var taken bool
	switch inst.Op {
	case insts.OpBEQ:
		taken = rs1.Equal(rs2)
	case insts.OpBNE:
		taken = !rs1.Equal(rs2)
	case insts.OpBLT:
		taken = rs1.Lt(rs2)
	case insts.OpBGE:
		taken = !rs1.Lt(rs2)
	case insts.OpBLTU:
		taken = rs1.LtU(rs2)
	case insts.OpBGEU:
		taken = !rs1.LtU(rs2)
	}

	if taken {
		s.SetPC(s.PC.Add(inst.Imm))
	}
}
