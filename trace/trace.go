// Package trace converts the effects of one executed instruction into
// verification-grade records, including the RVFI signal set used to
// cross-check external implementations.
package trace

import (
	"fmt"
	"strings"
)

// Granularity is the width of a traced memory access.
type Granularity uint8

// Memory access widths.
const (
	GranByte Granularity = iota
	GranHalf
	GranWord
	GranDouble
)

// RegisterWrite is one register update captured from the pending write
// log before commit.
type RegisterWrite struct {
	Index uint8
	Value uint64
}

func (w RegisterWrite) String() string {
	return fmt.Sprintf("x%d = %08x", w.Index, w.Value)
}

// MemoryAccess is one traced store.
type MemoryAccess struct {
	Gran Granularity
	Addr uint64
	Data uint64
}

func (m MemoryAccess) String() string {
	switch m.Gran {
	case GranByte:
		return fmt.Sprintf("mem[%d] = %02x", m.Addr, m.Data&0xFF)
	case GranHalf:
		return fmt.Sprintf("mem[%d] = %04x", m.Addr, m.Data&0xFFFF)
	case GranDouble:
		return fmt.Sprintf("mem[%d] = %016x", m.Addr, m.Data)
	default:
		return fmt.Sprintf("mem[%d] = %08x", m.Addr, m.Data&0xFFFFFFFF)
	}
}

// Record is the trace of one executed instruction: the ordered register
// writes of the step, at most one memory event, and the pc transition.
type Record struct {
	Insn     uint32
	PCBefore uint64
	PCAfter  uint64

	RegWrites []RegisterWrite
	Mem       *MemoryAccess
}

func (r *Record) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pc %08x -> %08x", r.PCBefore, r.PCAfter)
	for _, w := range r.RegWrites {
		fmt.Fprintf(&b, " | %s", w)
	}
	if r.Mem != nil {
		fmt.Fprintf(&b, " | %s", r.Mem)
	}
	return b.String()
}
