package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvmodel/insts"
)

var _ = Describe("Encode", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder(insts.RV32I)
	})

	It("should round-trip base encodings through decode", func() {
		words := []uint32{
			0x00A00293, // addi x5, x0, 10
			0x000010B7, // lui x1, 0x1
			0xFFFFF397, // auipc x7, 0xFFFFF
			0x403100B3, // sub x1, x2, x3
			0x40315093, // srai x1, x2, 3
			0x00028463, // beq x5, x0, 8
			0xFE209EE3, // bne x1, x2, -4
			0x008000EF, // jal x1, 8
			0x00008067, // jalr x0, x1, 0
			0x00112023, // sw x1, 0(x2)
			0x00012183, // lw x3, 0(x2)
			0x00000073, // ecall
			0x00100073, // ebreak
		}

		for _, word := range words {
			inst, err := decoder.Decode(word)
			Expect(err).NotTo(HaveOccurred(), "word %#08x", word)

			encoded, err := insts.Encode(inst)
			Expect(err).NotTo(HaveOccurred(), "word %#08x", word)
			Expect(encoded).To(Equal(word))
		}
	})

	It("should encode the canonical NOP", func() {
		word, err := insts.Encode(insts.NewNOP())

		Expect(err).NotTo(HaveOccurred())
		Expect(word).To(Equal(uint32(0x00000013)))
	})

	It("should refuse compressed instructions", func() {
		inst, err := decoder.Decode(0x0505)
		Expect(err).To(HaveOccurred()) // RV32I has no C extension

		decoderC := insts.NewDecoder(insts.RV32IC)
		inst, err = decoderC.Decode(0x0505)
		Expect(err).NotTo(HaveOccurred())

		_, err = insts.Encode(inst)
		Expect(err).To(MatchError(insts.ErrNotEncodable))
	})
})
