package insts

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrInvalidImmediate reports a value that violates an immediate's
// width, signedness, or alignment constraints. It indicates a decode or
// programming bug, never a condition of well-formed machine code.
var ErrInvalidImmediate = errors.New("invalid immediate")

// Immediate is a width- and signedness-constrained integer container.
// RISC-V branch and jump offsets are aligned to 16-bit instruction
// address granularity; lsb0 marks immediates whose lowest bit is
// hardwired to zero.
type Immediate struct {
	bits   uint8
	signed bool
	lsb0   bool
	value  int64
}

// NewImmediate creates an immediate of the given width. The value is
// zero until Set or SetFromBits assigns one.
func NewImmediate(bits uint8, signed, lsb0 bool) *Immediate {
	return &Immediate{bits: bits, signed: signed, lsb0: lsb0}
}

// Bits returns the width of the immediate.
func (imm *Immediate) Bits() uint8 { return imm.bits }

// Signed reports whether the immediate is signed.
func (imm *Immediate) Signed() bool { return imm.signed }

// Lsb0 reports whether the immediate is aligned to even values.
func (imm *Immediate) Lsb0() bool { return imm.lsb0 }

// Max returns the largest value this immediate can hold.
func (imm *Immediate) Max() int64 {
	var v int64
	if imm.signed {
		v = (1 << (imm.bits - 1)) - 1
	} else {
		v = (1 << imm.bits) - 1
	}
	if imm.lsb0 {
		v -= v % 2
	}
	return v
}

// Min returns the smallest value this immediate can hold.
func (imm *Immediate) Min() int64 {
	if imm.signed {
		return -(1 << (imm.bits - 1))
	}
	return 0
}

// Set assigns a value, validating it against the immediate's
// constraints. A failed Set leaves the previous value in place.
func (imm *Immediate) Set(value int64) error {
	if imm.lsb0 && value%2 != 0 {
		return fmt.Errorf("%w: %d is not even (bits=%d, lsb0)",
			ErrInvalidImmediate, value, imm.bits)
	}
	if !imm.signed && value < 0 {
		return fmt.Errorf("%w: %d cannot be negative (bits=%d, unsigned)",
			ErrInvalidImmediate, value, imm.bits)
	}
	if value < imm.Min() || value > imm.Max() {
		return fmt.Errorf("%w: %d not in allowed range %d..%d (bits=%d)",
			ErrInvalidImmediate, value, imm.Min(), imm.Max(), imm.bits)
	}
	imm.value = value
	return nil
}

// SetFromBits assigns a value from raw machine-code bits. The raw field
// carries no sign extension; for signed immediates the low bits are
// reinterpreted as two's complement before validation.
func (imm *Immediate) SetFromBits(raw uint64) error {
	mask := uint64(1)<<imm.bits - 1
	raw &= mask
	value := int64(raw)
	if imm.signed {
		tcmask := uint64(1) << (imm.bits - 1)
		value = -int64(raw&tcmask) + int64(raw&^tcmask)
	}
	return imm.Set(value)
}

// Int returns the immediate's value.
func (imm *Immediate) Int() int64 { return imm.value }

// Unsigned returns the value's raw bit pattern, masked to the
// immediate's width.
func (imm *Immediate) Unsigned() uint64 {
	return uint64(imm.value) & (uint64(1)<<imm.bits - 1)
}

// LeftShift returns a new, wider immediate holding value << n. It is
// used to reconstruct scaled immediates such as the U-type's << 12.
func (imm *Immediate) LeftShift(n uint8) *Immediate {
	shifted := NewImmediate(imm.bits+n, imm.signed, imm.lsb0)
	shifted.value = imm.value << n
	return shifted
}

// Randomize draws a uniform legal value, respecting the lsb0
// constraint. Used by test-generation front ends, not by decode.
func (imm *Immediate) Randomize() {
	span := imm.Max() - imm.Min() + 1
	imm.value = imm.Min() + rand.Int63n(span)
	if imm.lsb0 {
		imm.value -= imm.value % 2
	}
}

// Equal reports whether two immediates hold the same value.
func (imm *Immediate) Equal(other *Immediate) bool {
	return imm.value == other.value
}

func (imm *Immediate) String() string {
	return fmt.Sprintf("%d", imm.value)
}
