package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvmodel/emu"
)

var _ = Describe("Register", func() {
	It("should wrap overflow into the two's-complement range", func() {
		r := emu.RegisterFromInt(32, 0x7FFFFFFF)
		sum := r.Add(emu.Int(1))

		Expect(sum.Int()).To(Equal(int64(-0x80000000)))
		Expect(sum.Unsigned()).To(Equal(uint64(0x80000000)))
	})

	It("should wrap underflow symmetrically", func() {
		r := emu.RegisterFromInt(32, -0x80000000)
		diff := r.Sub(emu.Int(1))

		Expect(diff.Int()).To(Equal(int64(0x7FFFFFFF)))
	})

	It("should sign-extend on construction", func() {
		r := emu.RegisterFromInt(32, int64(0xFFFFFFFF))

		Expect(r.Int()).To(Equal(int64(-1)))
		Expect(r.Unsigned()).To(Equal(uint64(0xFFFFFFFF)))
	})

	It("should hold full-width values at 64 bits", func() {
		r := emu.RegisterFromInt(64, -1)

		Expect(r.Int()).To(Equal(int64(-1)))
		Expect(r.Unsigned()).To(Equal(^uint64(0)))
	})

	Describe("shifts", func() {
		It("should shift in zeros on logical right shift", func() {
			r := emu.RegisterFromInt(32, -1)
			Expect(r.Lsr(emu.Int(4)).Unsigned()).To(Equal(uint64(0x0FFFFFFF)))
		})

		It("should replicate the sign bit on arithmetic right shift", func() {
			r := emu.RegisterFromInt(32, -8)
			Expect(r.Asr(emu.Int(1)).Int()).To(Equal(int64(-4)))

			Expect(r.Asr(emu.Int(63)).Int()).To(Equal(int64(-1)))
		})

		It("should wrap bits shifted past the width", func() {
			r := emu.RegisterFromInt(32, 1)
			Expect(r.Lsl(emu.Int(32)).Int()).To(Equal(int64(0)))
		})
	})

	Describe("comparisons", func() {
		It("should compare signed with Lt", func() {
			r := emu.RegisterFromInt(32, -1)
			Expect(r.Lt(emu.Int(1))).To(BeTrue())
		})

		It("should compare bit patterns with LtU", func() {
			minusOne := emu.RegisterFromInt(32, -1)
			one := emu.RegisterFromInt(32, 1)

			Expect(minusOne.LtU(emu.Int(1))).To(BeFalse())
			Expect(one.LtU(minusOne)).To(BeTrue())
		})
	})

	Describe("Equal", func() {
		It("should never equate registers of different widths", func() {
			a := emu.RegisterFromInt(32, 5)
			b := emu.RegisterFromInt(64, 5)

			Expect(a.Equal(b)).To(BeFalse())
			Expect(a.Equal(emu.RegisterFromInt(32, 5))).To(BeTrue())
		})
	})

	It("should format as a width-padded hex pattern", func() {
		r := emu.RegisterFromInt(32, -1)
		Expect(r.String()).To(Equal("ffffffff"))

		Expect(emu.RegisterFromInt(32, 0x1000).String()).To(Equal("00001000"))
	})
})
