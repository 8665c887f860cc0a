package emu

import "math/rand"

// RegisterWrite is one pending register-file update.
type RegisterWrite struct {
	Index uint8
	Value Register
}

// RegisterFile models a synchronously updated register file. Writes are
// staged in a pending log rather than applied immediately: reads always
// return the last-committed value, so within one instruction every read
// observes pre-write state. Commit applies the log in append order,
// which makes a later write to the same index win.
type RegisterFile struct {
	bits      uint8
	regs      []Register
	immutable []bool
	pending   []RegisterWrite
}

// NewRegisterFile creates num registers of the given width. Entries in
// hardwired are fixed to their value and silently discard all writes;
// the base ISA hardwires x0 to zero.
func NewRegisterFile(num int, bits uint8, hardwired map[uint8]int64) *RegisterFile {
	rf := &RegisterFile{
		bits:      bits,
		regs:      make([]Register, num),
		immutable: make([]bool, num),
	}
	for i := range rf.regs {
		rf.regs[i] = NewRegister(bits)
	}
	for index, value := range hardwired {
		rf.regs[index] = RegisterFromInt(bits, value)
		rf.immutable[index] = true
	}
	return rf
}

// Bits returns the register width.
func (rf *RegisterFile) Bits() uint8 { return rf.bits }

// Num returns the number of registers.
func (rf *RegisterFile) Num() int { return len(rf.regs) }

// Get returns the last-committed value of register i. Pending writes
// are never visible through Get.
func (rf *RegisterFile) Get(i uint8) Register {
	return rf.regs[i]
}

// Set stages a write to register i. Writes to immutable registers are
// discarded. The value is wrapped to the file's register width before
// it enters the pending log.
func (rf *RegisterFile) Set(i uint8, value Operand) {
	if rf.immutable[i] {
		return
	}
	rf.pending = append(rf.pending, RegisterWrite{
		Index: i,
		Value: RegisterFromInt(rf.bits, value.Int()),
	})
}

// Commit applies all pending writes in append order and clears the log.
func (rf *RegisterFile) Commit() {
	for _, w := range rf.pending {
		rf.regs[w.Index] = w.Value
	}
	rf.pending = rf.pending[:0]
}

// Changes returns a copy of the pending write log without clearing it.
// The trace emitter reads it between execute and Commit.
func (rf *RegisterFile) Changes() []RegisterWrite {
	changes := make([]RegisterWrite, len(rf.pending))
	copy(changes, rf.pending)
	return changes
}

// Discard drops all pending writes without applying them.
func (rf *RegisterFile) Discard() {
	rf.pending = rf.pending[:0]
}

// Randomize assigns a random value to every mutable register. Used by
// test-generation front ends.
func (rf *RegisterFile) Randomize() {
	for i := range rf.regs {
		if rf.immutable[i] {
			continue
		}
		rf.regs[i] = RegisterFromInt(rf.bits, int64(rand.Uint64()))
	}
}
