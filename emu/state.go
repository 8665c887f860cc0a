package emu

// State is the architectural state one hart owns: the integer register
// file, the program counter, and a memory handle. Parallel harts must
// each own an independent State.
type State struct {
	Regs *RegisterFile
	PC   Register
	Mem  Memory

	pcWritten bool
}

// NewState creates a reset state for the given register width: 32
// registers with x0 hardwired to zero, pc at 0.
func NewState(bits uint8, mem Memory) *State {
	return &State{
		Regs: NewRegisterFile(32, bits, map[uint8]int64{0: 0}),
		PC:   NewRegister(bits),
		Mem:  mem,
	}
}

// SetPC updates the program counter directly (not deferred) and marks
// the step as having branched, which suppresses the default pc
// increment applied by the step loop.
func (s *State) SetPC(pc Register) {
	s.PC = pc
	s.pcWritten = true
}

// pcDirty reports and clears the branched flag for the current step.
func (s *State) pcDirty() bool {
	dirty := s.pcWritten
	s.pcWritten = false
	return dirty
}
