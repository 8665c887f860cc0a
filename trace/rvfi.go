package trace

// RVFISignals is the per-instruction RISC-V Formal Interface record.
// Unset numeric fields default to zero; Valid is false until the
// executor has completed the instruction.
type RVFISignals struct {
	Valid bool
	Order uint64
	Insn  uint32

	Rs1Addr  uint8
	Rs1Rdata uint64
	Rs2Addr  uint8
	Rs2Rdata uint64

	RdAddr  uint8
	RdWdata uint64

	PCRdata uint64
	PCWdata uint64
}

// StepInfo carries the raw effects of one executed instruction from the
// executor to the emitter. Register writes come from the pending log,
// read after execute and before commit, so the record reflects exactly
// this instruction's effect regardless of commit timing. Rs1Rdata and
// Rs2Rdata are the values the executor read, captured before any
// same-instruction write.
type StepInfo struct {
	Insn     uint32
	PCBefore uint64
	PCAfter  uint64

	RegWrites []RegisterWrite
	Mem       *MemoryAccess

	Rs1Addr  uint8
	Rs1Rdata uint64
	Rs2Addr  uint8
	Rs2Rdata uint64
}

// Emitter produces trace records and RVFI signals. Order increases by
// one per emitted instruction.
type Emitter struct {
	order uint64
}

// NewEmitter creates an emitter with order starting at zero.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Emit builds the trace record and RVFI signals for one step.
func (e *Emitter) Emit(info StepInfo) (*Record, *RVFISignals) {
	record := &Record{
		Insn:      info.Insn,
		PCBefore:  info.PCBefore,
		PCAfter:   info.PCAfter,
		RegWrites: info.RegWrites,
		Mem:       info.Mem,
	}

	signals := &RVFISignals{
		Valid:    true,
		Order:    e.order,
		Insn:     info.Insn,
		Rs1Addr:  info.Rs1Addr,
		Rs1Rdata: info.Rs1Rdata,
		Rs2Addr:  info.Rs2Addr,
		Rs2Rdata: info.Rs2Rdata,
		PCRdata:  info.PCBefore,
		PCWdata:  info.PCAfter,
	}
	// The last pending write wins architecturally, so it is the one
	// surfaced as rd.
	if n := len(info.RegWrites); n > 0 {
		signals.RdAddr = info.RegWrites[n-1].Index
		signals.RdWdata = info.RegWrites[n-1].Value
	}
	e.order++

	return record, signals
}
