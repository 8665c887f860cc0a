// Package emu provides the behavioral RISC-V execution model.
package emu

import "fmt"

// Operand is anything usable as the right-hand side of a register
// operation: another Register, an insts.Immediate, or a raw Int.
type Operand interface {
	Int() int64
}

// Int adapts a raw integer to the Operand interface.
type Int int64

// Int returns the raw value.
func (i Int) Int() int64 { return int64(i) }

// Register is a fixed-width two's-complement register value. The stored
// value is the sign-extended representation, so truncating it to the
// register width reproduces the hardware bit pattern. Operations return
// a new Register at the left operand's width with the result re-wrapped
// into that width's two's-complement range; they never fail.
type Register struct {
	bits  uint8
	value int64
}

// NewRegister creates a zero-valued register of the given width.
func NewRegister(bits uint8) Register {
	return Register{bits: bits}
}

// RegisterFromInt creates a register holding the given value, wrapped
// to the width.
func RegisterFromInt(bits uint8, value int64) Register {
	r := Register{bits: bits}
	return r.wrap(value)
}

// Bits returns the register width.
func (r Register) Bits() uint8 { return r.bits }

// Int returns the signed (sign-extended) value.
func (r Register) Int() int64 { return r.value }

// Unsigned returns the value masked to the register width with no sign
// extension.
func (r Register) Unsigned() uint64 {
	return uint64(r.value) & r.mask()
}

func (r Register) mask() uint64 {
	if r.bits >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<r.bits - 1
}

// wrap truncates v to the register width and sign-extends the result.
func (r Register) wrap(v int64) Register {
	if r.bits >= 64 {
		return Register{bits: r.bits, value: v}
	}
	u := uint64(v) & r.mask()
	if u>>(r.bits-1)&0x1 != 0 {
		return Register{bits: r.bits, value: int64(u | ^r.mask())}
	}
	return Register{bits: r.bits, value: int64(u)}
}

// Add returns r + o at r's width.
func (r Register) Add(o Operand) Register { return r.wrap(r.value + o.Int()) }

// Sub returns r - o at r's width.
func (r Register) Sub(o Operand) Register { return r.wrap(r.value - o.Int()) }

// And returns r & o at r's width.
func (r Register) And(o Operand) Register { return r.wrap(r.value & o.Int()) }

// Or returns r | o at r's width.
func (r Register) Or(o Operand) Register { return r.wrap(r.value | o.Int()) }

// Xor returns r ^ o at r's width.
func (r Register) Xor(o Operand) Register { return r.wrap(r.value ^ o.Int()) }

// Lsl returns r logically shifted left by o bits.
func (r Register) Lsl(o Operand) Register {
	n := uint64(o.Int())
	if n >= 64 {
		return r.wrap(0)
	}
	return r.wrap(r.value << n)
}

// Lsr returns r logically shifted right by o bits. Vacated high bits
// are zero regardless of sign.
func (r Register) Lsr(o Operand) Register {
	n := uint64(o.Int())
	if n >= 64 {
		return r.wrap(0)
	}
	return r.wrap(int64(r.Unsigned() >> n))
}

// Asr returns r arithmetically shifted right by o bits. The sign bit is
// replicated into the vacated positions.
func (r Register) Asr(o Operand) Register {
	n := uint64(o.Int())
	if n >= 63 {
		n = 63
	}
	return r.wrap(r.value >> n)
}

// Lt reports whether r < o as signed values.
func (r Register) Lt(o Operand) bool { return r.value < o.Int() }

// LtU reports whether r < o comparing width-masked bit patterns.
func (r Register) LtU(o Operand) bool {
	return r.Unsigned() < uint64(o.Int())&r.mask()
}

// Equal reports whether two registers have the same width and value.
// Registers of different widths are never equal.
func (r Register) Equal(other Register) bool {
	return r.bits == other.bits && r.value == other.value
}

func (r Register) String() string {
	return fmt.Sprintf("%0*x", int(r.bits)/4, r.Unsigned())
}
