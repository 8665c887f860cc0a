package emu

import "github.com/sarchlab/rvmodel/insts"

// ALU executes the arithmetic, logic, shift, and upper-immediate
// groups. All semantics are expressed through Register operations so
// width and sign rules are enforced uniformly; no ALU operation can
// fail.
type ALU struct {
	state *State
}

// NewALU creates an ALU operating on the given state.
func NewALU(state *State) *ALU {
	return &ALU{state: state}
}

// shamtMask is the shift-amount mask for register-sourced shifts.
func (a *ALU) shamtMask() Int {
	if a.state.Regs.Bits() == 64 {
		return Int(0x3F)
	}
	return Int(0x1F)
}

// Upper executes lui and auipc.
func (a *ALU) Upper(inst *insts.Instruction) {
	scaled := inst.Imm.LeftShift(12)
	switch inst.Op {
	case insts.OpLUI:
		a.state.Regs.Set(inst.Rd, scaled)
	case insts.OpAUIPC:
		a.state.Regs.Set(inst.Rd, a.state.PC.Add(scaled))
	}
}

// OpImm executes the immediate arithmetic/logic group.
func (a *ALU) OpImm(inst *insts.Instruction) {
	regs := a.state.Regs
	rs1 := regs.Get(inst.Rs1)

	switch inst.Op {
	case insts.OpADDI:
		regs.Set(inst.Rd, rs1.Add(inst.Imm))
	case insts.OpSLTI:
		regs.Set(inst.Rd, boolReg(rs1.Lt(inst.Imm)))
	case insts.OpSLTIU:
		regs.Set(inst.Rd, boolReg(rs1.LtU(inst.Imm)))
	case insts.OpXORI:
		regs.Set(inst.Rd, rs1.Xor(inst.Imm))
	case insts.OpORI:
		regs.Set(inst.Rd, rs1.Or(inst.Imm))
	case insts.OpANDI:
		regs.Set(inst.Rd, rs1.And(inst.Imm))
	case insts.OpSLLI:
		regs.Set(inst.Rd, rs1.Lsl(inst.Shamt))
	case insts.OpSRLI:
		regs.Set(inst.Rd, rs1.Lsr(inst.Shamt))
	case insts.OpSRAI:
		regs.Set(inst.Rd, rs1.Asr(inst.Shamt))
	case insts.OpADDIW:
		regs.Set(inst.Rd, wrap32(rs1.Add(inst.Imm)))
	}
}

// OpReg executes the register arithmetic/logic group.
func (a *ALU) OpReg(inst *insts.Instruction) {
	regs := a.state.Regs
	rs1 := regs.Get(inst.Rs1)
	rs2 := regs.Get(inst.Rs2)

	switch inst.Op {
	case insts.OpADD:
		regs.Set(inst.Rd, rs1.Add(rs2))
	case insts.OpSUB:
		regs.Set(inst.Rd, rs1.Sub(rs2))
	case insts.OpSLL:
		regs.Set(inst.Rd, rs1.Lsl(rs2.And(a.shamtMask())))
	case insts.OpSLT:
		regs.Set(inst.Rd, boolReg(rs1.Lt(rs2)))
	case insts.OpSLTU:
		regs.Set(inst.Rd, boolReg(rs1.LtU(rs2)))
	case insts.OpXOR:
		regs.Set(inst.Rd, rs1.Xor(rs2))
	case insts.OpSRL:
		regs.Set(inst.Rd, rs1.Lsr(rs2.And(a.shamtMask())))
	case insts.OpSRA:
		regs.Set(inst.Rd, rs1.Asr(rs2.And(a.shamtMask())))
	case insts.OpOR:
		regs.Set(inst.Rd, rs1.Or(rs2))
	case insts.OpAND:
		regs.Set(inst.Rd, rs1.And(rs2))
	case insts.OpADDW:
		regs.Set(inst.Rd, wrap32(rs1.Add(rs2)))
	case insts.OpSUBW:
		regs.Set(inst.Rd, wrap32(rs1.Sub(rs2)))
	}
}

// boolReg is the 0/1 result of slt-family comparisons.
func boolReg(cond bool) Int {
	if cond {
		return Int(1)
	}
	return Int(0)
}

// wrap32 truncates a result to 32 bits and sign-extends, the W-suffix
// semantics of RV64.
func wrap32(r Register) Int {
	return Int(RegisterFromInt(32, r.Int()).Int())
}
