package emu

import (
	"github.com/sarchlab/rvmodel/insts"
	"github.com/sarchlab/rvmodel/trace"
)

// LoadStoreUnit executes the load and store groups against the memory
// interface. The effective address is rs1 + imm treated as an unsigned
// address of the active width.
type LoadStoreUnit struct {
	state *State
}

// NewLoadStoreUnit creates a load-store unit operating on the given
// state.
func NewLoadStoreUnit(state *State) *LoadStoreUnit {
	return &LoadStoreUnit{state: state}
}

func (lsu *LoadStoreUnit) effectiveAddr(inst *insts.Instruction) uint64 {
	return lsu.state.Regs.Get(inst.Rs1).Add(inst.Imm).Unsigned()
}

// Load reads from memory, sign-extends for the signed forms and
// zero-extends for the unsigned forms, and stages the write to rd.
func (lsu *LoadStoreUnit) Load(inst *insts.Instruction) {
	s := lsu.state
	addr := lsu.effectiveAddr(inst)

	var value int64
	switch inst.Op {
	case insts.OpLB:
		value = int64(int8(s.Mem.LoadByte(addr)))
	case insts.OpLBU:
		value = int64(s.Mem.LoadByte(addr))
	case insts.OpLH:
		value = int64(int16(s.Mem.LoadHalf(addr)))
	case insts.OpLHU:
		value = int64(s.Mem.LoadHalf(addr))
	case insts.OpLW:
		value = int64(int32(s.Mem.LoadWord(addr)))
	case insts.OpLWU:
		value = int64(s.Mem.LoadWord(addr))
	case insts.OpLD:
		value = int64(s.Mem.LoadDouble(addr))
	}

	s.Regs.Set(inst.Rd, Int(value))
}

// Store writes rs2's low bits to memory and returns the memory event
// for the step's trace record.
func (lsu *LoadStoreUnit) Store(inst *insts.Instruction) *trace.MemoryAccess {
	s := lsu.state
	addr := lsu.effectiveAddr(inst)
	data := s.Regs.Get(inst.Rs2)

	switch inst.Op {
	case insts.OpSB:
		s.Mem.StoreByte(addr, uint8(data.Unsigned()))
		return &trace.MemoryAccess{Gran: trace.GranByte, Addr: addr, Data: data.Unsigned() & 0xFF}
	case insts.OpSH:
		s.Mem.StoreHalf(addr, uint16(data.Unsigned()))
		return &trace.MemoryAccess{Gran: trace.GranHalf, Addr: addr, Data: data.Unsigned() & 0xFFFF}
	case insts.OpSW:
		s.Mem.StoreWord(addr, uint32(data.Unsigned()))
		return &trace.MemoryAccess{Gran: trace.GranWord, Addr: addr, Data: data.Unsigned() & 0xFFFFFFFF}
	case insts.OpSD:
		s.Mem.StoreDouble(addr, data.Unsigned())
		return &trace.MemoryAccess{Gran: trace.GranDouble, Addr: addr, Data: data.Unsigned()}
	}

	return nil
}
