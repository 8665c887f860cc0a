package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvmodel/insts"
)

var _ = Describe("DecodeCompressed", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder(insts.RV32IC)
	})

	Describe("quadrant 0", func() {
		// c.addi4spn a0, sp, 8 -> 0x0028
		It("should expand C.ADDI4SPN to ADDI rd', x2", func() {
			inst, err := decoder.DecodeCompressed(0x0028)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Format).To(Equal(insts.FormatCIW))
			Expect(inst.Rd).To(Equal(uint8(10)))
			Expect(inst.Rs1).To(Equal(uint8(2)))
			Expect(inst.Imm.Int()).To(Equal(int64(8)))
			Expect(inst.Compressed).To(BeTrue())
		})

		It("should reject C.ADDI4SPN with nzuimm=0", func() {
			_, err := decoder.DecodeCompressed(0x0008)
			Expect(err).To(MatchError(insts.ErrInvalidEncoding))
		})

		// c.lw a2, 4(a0) -> 0x4150
		It("should expand C.LW with a word-scaled offset", func() {
			inst, err := decoder.DecodeCompressed(0x4150)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpLW))
			Expect(inst.Format).To(Equal(insts.FormatCL))
			Expect(inst.Rd).To(Equal(uint8(12)))
			Expect(inst.Rs1).To(Equal(uint8(10)))
			Expect(inst.Imm.Int()).To(Equal(int64(4)))
		})

		// c.ld a0, 8(a1) -> 0x6588
		It("should expand C.LD on RV64 only", func() {
			_, err := decoder.DecodeCompressed(0x6588)
			Expect(err).To(MatchError(insts.ErrInvalidEncoding))

			decoder64 := insts.NewDecoder(insts.RV64IC)
			inst, err := decoder64.DecodeCompressed(0x6588)
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpLD))
			Expect(inst.Rd).To(Equal(uint8(10)))
			Expect(inst.Rs1).To(Equal(uint8(11)))
			Expect(inst.Imm.Int()).To(Equal(int64(8)))
		})

		// c.sd a0, 8(a1) -> 0xE588
		It("should expand C.SD on RV64", func() {
			decoder64 := insts.NewDecoder(insts.RV64IC)
			inst, err := decoder64.DecodeCompressed(0xE588)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpSD))
			Expect(inst.Rs1).To(Equal(uint8(11)))
			Expect(inst.Rs2).To(Equal(uint8(10)))
			Expect(inst.Imm.Int()).To(Equal(int64(8)))
		})
	})

	Describe("quadrant 1", func() {
		// c.addi a0, 1 -> 0x0505
		It("should expand C.ADDI to ADDI rd, rd", func() {
			inst, err := decoder.DecodeCompressed(0x0505)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Format).To(Equal(insts.FormatCI))
			Expect(inst.Rd).To(Equal(uint8(10)))
			Expect(inst.Rs1).To(Equal(uint8(10)))
			Expect(inst.Imm.Int()).To(Equal(int64(1)))
		})

		// c.li t0, -1 -> 0x52FD
		It("should expand C.LI to ADDI rd, x0 with a sign-extended immediate", func() {
			inst, err := decoder.DecodeCompressed(0x52FD)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Rd).To(Equal(uint8(5)))
			Expect(inst.Rs1).To(Equal(uint8(0)))
			Expect(inst.Imm.Int()).To(Equal(int64(-1)))
		})

		// c.lui a1, 1 -> 0x6585
		It("should expand C.LUI", func() {
			inst, err := decoder.DecodeCompressed(0x6585)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpLUI))
			Expect(inst.Rd).To(Equal(uint8(11)))
			Expect(inst.Imm.Int()).To(Equal(int64(1)))
		})

		// c.addi16sp 16 -> 0x6141
		It("should expand C.ADDI16SP when rd is the stack pointer", func() {
			inst, err := decoder.DecodeCompressed(0x6141)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Rd).To(Equal(uint8(2)))
			Expect(inst.Rs1).To(Equal(uint8(2)))
			Expect(inst.Imm.Int()).To(Equal(int64(16)))
		})

		// c.addiw a0, 1 -> 0x2505 (RV64); the same halfword is c.jal on RV32
		It("should decode funct3=001 by XLEN", func() {
			inst, err := decoder.DecodeCompressed(0x2505)
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpJAL))
			Expect(inst.Rd).To(Equal(uint8(1)))

			decoder64 := insts.NewDecoder(insts.RV64IC)
			inst, err = decoder64.DecodeCompressed(0x2505)
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpADDIW))
			Expect(inst.Rd).To(Equal(uint8(10)))
			Expect(inst.Imm.Int()).To(Equal(int64(1)))
		})

		// c.srli a0, 2 -> 0x8109; c.srai a0, 2 -> 0x8509; c.andi a0, 2 -> 0x8909
		It("should decode the shift and andi row", func() {
			srli, err := decoder.DecodeCompressed(0x8109)
			Expect(err).NotTo(HaveOccurred())
			Expect(srli.Op).To(Equal(insts.OpSRLI))
			Expect(srli.Rd).To(Equal(uint8(10)))
			Expect(srli.Shamt.Int()).To(Equal(int64(2)))

			srai, err := decoder.DecodeCompressed(0x8509)
			Expect(err).NotTo(HaveOccurred())
			Expect(srai.Op).To(Equal(insts.OpSRAI))

			andi, err := decoder.DecodeCompressed(0x8909)
			Expect(err).NotTo(HaveOccurred())
			Expect(andi.Op).To(Equal(insts.OpANDI))
			Expect(andi.Imm.Int()).To(Equal(int64(2)))
		})

		// c.sub/c.xor/c.or/c.and a0, a1 -> 0x8D0D/0x8D2D/0x8D4D/0x8D6D
		It("should decode the CA register ops", func() {
			for _, tc := range []struct {
				half uint16
				op   insts.Op
			}{
				{0x8D0D, insts.OpSUB},
				{0x8D2D, insts.OpXOR},
				{0x8D4D, insts.OpOR},
				{0x8D6D, insts.OpAND},
			} {
				inst, err := decoder.DecodeCompressed(tc.half)
				Expect(err).NotTo(HaveOccurred())
				Expect(inst.Op).To(Equal(tc.op))
				Expect(inst.Format).To(Equal(insts.FormatCA))
				Expect(inst.Rd).To(Equal(uint8(10)))
				Expect(inst.Rs1).To(Equal(uint8(10)))
				Expect(inst.Rs2).To(Equal(uint8(11)))
			}
		})

		// c.subw a0, a1 -> 0x9D0D; c.addw a0, a1 -> 0x9D2D
		It("should gate C.SUBW and C.ADDW on RV64", func() {
			_, err := decoder.DecodeCompressed(0x9D0D)
			Expect(err).To(MatchError(insts.ErrInvalidEncoding))

			decoder64 := insts.NewDecoder(insts.RV64IC)
			subw, err := decoder64.DecodeCompressed(0x9D0D)
			Expect(err).NotTo(HaveOccurred())
			Expect(subw.Op).To(Equal(insts.OpSUBW))

			addw, err := decoder64.DecodeCompressed(0x9D2D)
			Expect(err).NotTo(HaveOccurred())
			Expect(addw.Op).To(Equal(insts.OpADDW))
		})

		It("should reject the reserved wide CA encodings", func() {
			decoder64 := insts.NewDecoder(insts.RV64IC)
			_, err := decoder64.DecodeCompressed(0x9D4D)
			Expect(err).To(MatchError(insts.ErrInvalidEncoding))
		})

		// c.j .+4 -> 0xA011
		It("should expand C.J to JAL x0", func() {
			inst, err := decoder.DecodeCompressed(0xA011)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpJAL))
			Expect(inst.Format).To(Equal(insts.FormatCJ))
			Expect(inst.Rd).To(Equal(uint8(0)))
			Expect(inst.Imm.Int()).To(Equal(int64(4)))
		})

		// c.beqz a0, .+8 -> 0xC501; c.bnez a0, .+8 -> 0xE501
		It("should expand C.BEQZ and C.BNEZ against x0", func() {
			beqz, err := decoder.DecodeCompressed(0xC501)
			Expect(err).NotTo(HaveOccurred())
			Expect(beqz.Op).To(Equal(insts.OpBEQ))
			Expect(beqz.Rs1).To(Equal(uint8(10)))
			Expect(beqz.Rs2).To(Equal(uint8(0)))
			Expect(beqz.Imm.Int()).To(Equal(int64(8)))

			bnez, err := decoder.DecodeCompressed(0xE501)
			Expect(err).NotTo(HaveOccurred())
			Expect(bnez.Op).To(Equal(insts.OpBNE))
			Expect(bnez.Imm.Int()).To(Equal(int64(8)))
		})
	})

	Describe("quadrant 2", func() {
		// c.slli a0, 2 -> 0x050A
		It("should expand C.SLLI", func() {
			inst, err := decoder.DecodeCompressed(0x050A)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpSLLI))
			Expect(inst.Rd).To(Equal(uint8(10)))
			Expect(inst.Shamt.Int()).To(Equal(int64(2)))
		})

		// c.lwsp a0, 8 -> 0x4522
		It("should expand C.LWSP against x2", func() {
			inst, err := decoder.DecodeCompressed(0x4522)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpLW))
			Expect(inst.Rd).To(Equal(uint8(10)))
			Expect(inst.Rs1).To(Equal(uint8(2)))
			Expect(inst.Imm.Int()).To(Equal(int64(8)))
		})

		// c.swsp a0, 8 -> 0xC42A
		It("should expand C.SWSP against x2", func() {
			inst, err := decoder.DecodeCompressed(0xC42A)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpSW))
			Expect(inst.Rs1).To(Equal(uint8(2)))
			Expect(inst.Rs2).To(Equal(uint8(10)))
			Expect(inst.Imm.Int()).To(Equal(int64(8)))
		})

		// c.ldsp a0, 16 -> 0x6542; c.sdsp a0, 16 -> 0xE82A
		It("should expand C.LDSP and C.SDSP on RV64", func() {
			decoder64 := insts.NewDecoder(insts.RV64IC)

			ldsp, err := decoder64.DecodeCompressed(0x6542)
			Expect(err).NotTo(HaveOccurred())
			Expect(ldsp.Op).To(Equal(insts.OpLD))
			Expect(ldsp.Rd).To(Equal(uint8(10)))
			Expect(ldsp.Imm.Int()).To(Equal(int64(16)))

			sdsp, err := decoder64.DecodeCompressed(0xE82A)
			Expect(err).NotTo(HaveOccurred())
			Expect(sdsp.Op).To(Equal(insts.OpSD))
			Expect(sdsp.Rs2).To(Equal(uint8(10)))
			Expect(sdsp.Imm.Int()).To(Equal(int64(16)))
		})

		// c.jr ra -> 0x8082
		It("should expand C.JR to JALR x0", func() {
			inst, err := decoder.DecodeCompressed(0x8082)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpJALR))
			Expect(inst.Rd).To(Equal(uint8(0)))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Imm.Int()).To(Equal(int64(0)))
		})

		// c.jalr a0 -> 0x9502
		It("should expand C.JALR to JALR x1", func() {
			inst, err := decoder.DecodeCompressed(0x9502)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpJALR))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Rs1).To(Equal(uint8(10)))
		})

		// c.mv a0, a1 -> 0x852E; c.add a0, a1 -> 0x952E
		It("should expand C.MV and C.ADD", func() {
			mv, err := decoder.DecodeCompressed(0x852E)
			Expect(err).NotTo(HaveOccurred())
			Expect(mv.Op).To(Equal(insts.OpADD))
			Expect(mv.Rd).To(Equal(uint8(10)))
			Expect(mv.Rs1).To(Equal(uint8(0)))
			Expect(mv.Rs2).To(Equal(uint8(11)))

			add, err := decoder.DecodeCompressed(0x952E)
			Expect(err).NotTo(HaveOccurred())
			Expect(add.Op).To(Equal(insts.OpADD))
			Expect(add.Rs1).To(Equal(uint8(10)))
			Expect(add.Rs2).To(Equal(uint8(11)))
		})

		// c.ebreak -> 0x9002
		It("should decode C.EBREAK", func() {
			inst, err := decoder.DecodeCompressed(0x9002)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpEBREAK))
		})
	})

	Describe("guards", func() {
		It("should reject the defined-illegal all-zero halfword", func() {
			_, err := decoder.DecodeCompressed(0x0000)
			Expect(err).To(MatchError(insts.ErrInvalidEncoding))
		})

		It("should reject quadrant 3 halfwords, which start 32-bit encodings", func() {
			// Low half of addi x5, x0, 10 (0x00A00293).
			inst, err := decoder.DecodeCompressed(0x0293)
			Expect(err).To(MatchError(insts.ErrInvalidEncoding))
			Expect(inst).To(BeNil())

			_, err = decoder.DecodeCompressed(0x0003)
			Expect(err).To(MatchError(insts.ErrInvalidEncoding))
		})

		It("should reject compressed encodings when the C extension is off", func() {
			plain := insts.NewDecoder(insts.RV32I)
			_, err := plain.DecodeCompressed(0x0505)
			Expect(err).To(MatchError(insts.ErrInvalidEncoding))
		})

		It("should report a halfword size for compressed instructions", func() {
			inst, err := decoder.DecodeCompressed(0x0505)
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Size()).To(Equal(uint64(2)))
		})
	})

	Describe("Decode dispatch", func() {
		It("should route non-11 low bits to the compressed decoder", func() {
			inst, err := decoder.Decode(0x0505)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Compressed).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpADDI))
		})
	})
})
