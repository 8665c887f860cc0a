package emu

import (
	"fmt"

	"github.com/sarchlab/rvmodel/insts"
	"github.com/sarchlab/rvmodel/trace"
)

// StepResult is the outcome of executing a single instruction.
type StepResult struct {
	// Record is the trace of this step, nil if the step failed.
	Record *trace.Record

	// RVFI is the formal-interface view of this step, nil if the step
	// failed.
	RVFI *trace.RVFISignals

	// Err is set if decode or execution failed. The architectural state
	// is unchanged for this step when Err is set.
	Err error
}

// Emulator drives the decode/execute/trace/commit loop over one hart's
// architectural state. Each step is atomic: the pending register writes
// are captured by the trace emitter and then committed, so a record
// always reflects exactly one instruction's effect.
type Emulator struct {
	state   *State
	decoder *insts.Decoder
	variant insts.Variant
	emitter *trace.Emitter

	alu        *ALU
	branchUnit *BranchUnit
	lsu        *LoadStoreUnit

	strictSystem     bool
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithVariant selects the ISA variant. The default is RV32IC.
func WithVariant(variant insts.Variant) EmulatorOption {
	return func(e *Emulator) {
		e.variant = variant
	}
}

// WithMemory supplies the memory backing store. The default is an empty
// SparseMemory.
func WithMemory(mem Memory) EmulatorOption {
	return func(e *Emulator) {
		e.state.Mem = mem
	}
}

// WithStrictSystem makes system-group instructions fail with
// ErrUnsupportedOperation instead of executing as no-ops.
func WithStrictSystem() EmulatorOption {
	return func(e *Emulator) {
		e.strictSystem = true
	}
}

// WithMaxInstructions sets the maximum number of instructions Run
// executes. A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates an emulator with a reset architectural state:
// all registers zero, x0 hardwired, pc at 0.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		variant: insts.RV32IC,
		emitter: trace.NewEmitter(),
	}
	e.state = NewState(32, nil)

	for _, opt := range opts {
		opt(e)
	}

	// The register file width follows the variant, which options may
	// have changed.
	if e.variant.XLen != e.state.Regs.Bits() {
		mem := e.state.Mem
		e.state = NewState(e.variant.XLen, mem)
	}
	if e.state.Mem == nil {
		e.state.Mem = NewSparseMemory()
	}

	e.decoder = insts.NewDecoder(e.variant)
	e.alu = NewALU(e.state)
	e.branchUnit = NewBranchUnit(e.state)
	e.lsu = NewLoadStoreUnit(e.state)

	return e
}

// State returns the emulator's architectural state.
func (e *Emulator) State() *State { return e.state }

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegisterFile { return e.state.Regs }

// Memory returns the emulator's memory.
func (e *Emulator) Memory() Memory { return e.state.Mem }

// Decoder returns the emulator's decoder.
func (e *Emulator) Decoder() *insts.Decoder { return e.decoder }

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 { return e.instructionCount }

// SetPC positions the program counter, typically at a loaded program's
// entry point.
func (e *Emulator) SetPC(pc uint64) {
	e.state.PC = RegisterFromInt(e.state.Regs.Bits(), int64(pc))
	e.state.pcWritten = false
}

// Step fetches, decodes, and executes a single instruction, emits its
// trace record, and commits the register file.
func (e *Emulator) Step() StepResult {
	pc := e.state.PC.Unsigned()

	// Fetch. The low two bits of the first halfword select between a
	// 16-bit and a 32-bit encoding.
	half := e.state.Mem.LoadHalf(pc)
	word := uint32(half)
	if half&0x3 == 0x3 {
		word = e.state.Mem.LoadWord(pc)
	}

	inst, err := e.decoder.Decode(word)
	if err != nil {
		return StepResult{
			Err: fmt.Errorf("decode at pc=0x%X (word 0x%08X): %w", pc, word, err),
		}
	}

	return e.Execute(inst)
}

// Execute runs an already decoded (or directly constructed) instruction
// through the execute/trace/commit step. Pseudo-instructions built with
// insts.NewNOP take this path without decode.
func (e *Emulator) Execute(inst *insts.Instruction) StepResult {
	s := e.state
	pcBefore := s.PC

	// rs1/rs2 values as read during execute, captured before any
	// same-instruction write can land.
	rs1Data := s.Regs.Get(inst.Rs1).Unsigned()
	rs2Data := s.Regs.Get(inst.Rs2).Unsigned()

	memAccess, err := e.execute(inst)
	if err != nil {
		s.Regs.Discard()
		s.pcWritten = false
		return StepResult{Err: err}
	}

	if !s.pcDirty() {
		s.PC = s.PC.Add(Int(inst.Size()))
	}

	changes := s.Regs.Changes()
	writes := make([]trace.RegisterWrite, len(changes))
	for i, c := range changes {
		writes[i] = trace.RegisterWrite{Index: c.Index, Value: c.Value.Unsigned()}
	}

	record, rvfi := e.emitter.Emit(trace.StepInfo{
		Insn:      inst.Raw,
		PCBefore:  pcBefore.Unsigned(),
		PCAfter:   s.PC.Unsigned(),
		RegWrites: writes,
		Mem:       memAccess,
		Rs1Addr:   inst.Rs1,
		Rs1Rdata:  rs1Data,
		Rs2Addr:   inst.Rs2,
		Rs2Rdata:  rs2Data,
	})

	s.Regs.Commit()
	e.instructionCount++

	return StepResult{Record: record, RVFI: rvfi}
}

// execute dispatches one instruction to its execution unit.
func (e *Emulator) execute(inst *insts.Instruction) (*trace.MemoryAccess, error) {
	switch inst.Op {
	case insts.OpLUI, insts.OpAUIPC:
		e.alu.Upper(inst)

	case insts.OpJAL:
		e.branchUnit.JAL(inst)
	case insts.OpJALR:
		e.branchUnit.JALR(inst)

	case insts.OpBEQ, insts.OpBNE, insts.OpBLT, insts.OpBGE,
		insts.OpBLTU, insts.OpBGEU:
		e.branchUnit.Branch(inst)

	case insts.OpLB, insts.OpLH, insts.OpLW, insts.OpLBU, insts.OpLHU,
		insts.OpLWU, insts.OpLD:
		e.lsu.Load(inst)

	case insts.OpSB, insts.OpSH, insts.OpSW, insts.OpSD:
		return e.lsu.Store(inst), nil

	case insts.OpADDI, insts.OpSLTI, insts.OpSLTIU, insts.OpXORI,
		insts.OpORI, insts.OpANDI, insts.OpSLLI, insts.OpSRLI,
		insts.OpSRAI, insts.OpADDIW:
		e.alu.OpImm(inst)

	case insts.OpADD, insts.OpSUB, insts.OpSLL, insts.OpSLT,
		insts.OpSLTU, insts.OpXOR, insts.OpSRL, insts.OpSRA,
		insts.OpOR, insts.OpAND, insts.OpADDW, insts.OpSUBW:
		e.alu.OpReg(inst)

	case insts.OpFENCE, insts.OpFENCEI, insts.OpECALL, insts.OpEBREAK,
		insts.OpCSRRW, insts.OpCSRRS, insts.OpCSRRC, insts.OpCSRRWI,
		insts.OpCSRRSI, insts.OpCSRRCI:
		return nil, e.executeSystem(inst)

	default:
		return nil, fmt.Errorf("%w: op %d at pc=0x%X",
			insts.ErrInvalidEncoding, inst.Op, e.state.PC.Unsigned())
	}

	return nil, nil
}

// Run executes instructions until a step fails or the instruction limit
// is reached. It returns the number of instructions executed in this
// call and the error that stopped execution, nil if the limit stopped
// it.
func (e *Emulator) Run() (uint64, error) {
	var steps uint64
	for {
		if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
			return steps, nil
		}
		result := e.Step()
		if result.Err != nil {
			return steps, result.Err
		}
		steps++
	}
}

// RunTraced is Run with a callback per executed instruction, used by
// drivers that stream trace or RVFI records to a comparator.
func (e *Emulator) RunTraced(fn func(StepResult)) (uint64, error) {
	var steps uint64
	for {
		if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
			return steps, nil
		}
		result := e.Step()
		if result.Err != nil {
			return steps, result.Err
		}
		fn(result)
		steps++
	}
}
