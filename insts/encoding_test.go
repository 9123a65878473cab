package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"rv32emu/insts"
)

var _ = Describe("Encoding field accessors", func() {
	It("extracts opcode, rd, funct3, rs1, rs2, funct7 from an R-type word", func() {
		// funct7=0b0100000 rs2=6 rs1=5 funct3=0b000 rd=7 opcode=0b01100
		word := uint32(0b0100000_00110_00101_000_00111_0110011)
		e := insts.Encoding(word)

		Expect(e.Opcode()).To(Equal(uint32(0b01100)))
		Expect(e.Rd()).To(Equal(uint8(7)))
		Expect(e.Funct3()).To(Equal(uint32(0)))
		Expect(e.Rs1()).To(Equal(uint8(5)))
		Expect(e.Rs2()).To(Equal(uint8(6)))
		Expect(e.Funct7()).To(Equal(uint32(0b0100000)))
	})

	It("flags a compressed word via the low two bits", func() {
		Expect(insts.Encoding(0x00000003).IsCompressed()).To(BeFalse())
		Expect(insts.Encoding(0x00000000).IsCompressed()).To(BeTrue())
		Expect(insts.Encoding(0x00000001).IsCompressed()).To(BeTrue())
	})
})

var _ = Describe("Immediate reconstruction", func() {
	It("sign-extends a negative ImmI", func() {
		// addi x1, x0, -1: imm field = 0xFFF
		word := uint32(0xFFF00093)
		Expect(insts.Encoding(word).ImmI()).To(Equal(int32(-1)))
	})

	It("reconstructs a positive ImmI", func() {
		word := uint32(0x00A00093) // addi x1, x0, 10
		Expect(insts.Encoding(word).ImmI()).To(Equal(int32(10)))
	})

	It("reconstructs ImmS from split hi/lo fields", func() {
		// sw x10, 16(x2): imm=16 -> hi=0, lo=16
		word := uint32(0x00A12823)
		Expect(insts.Encoding(word).ImmS()).To(Equal(int32(16)))
	})

	It("sign-extends a negative ImmS", func() {
		// sb x0, -1(x1): imm=-1 -> hi=0x7F, lo=0x1F
		word := uint32(0x1F<<7) | uint32(0x7F<<25) | 1<<15
		Expect(insts.Encoding(word).ImmS()).To(Equal(int32(-1)))
	})

	It("reconstructs ImmB with bit0 always zero", func() {
		// beq x0, x0, +8
		word := uint32(4<<8) | 0x63
		Expect(insts.Encoding(word).ImmB()).To(Equal(int32(8)))
	})

	It("reconstructs ImmU with the low 12 bits cleared", func() {
		word := uint32(0x12345000) | 0x37
		Expect(insts.Encoding(word).ImmU()).To(Equal(uint32(0x12345000)))
	})

	It("reconstructs ImmJ with bit0 always zero", func() {
		// jal x1, +12: imm[10:1] = 6
		word := uint32(6<<21) | 1<<7 | 0x6F
		Expect(insts.Encoding(word).ImmJ()).To(Equal(int32(12)))
	})

	It("sign-extends a negative ImmJ", func() {
		// jal x0, -2: all immediate bits set within the 21-bit field
		word := uint32(1<<31) | uint32(0x3FF<<21) | uint32(1<<20) | uint32(0xFF<<12) | 0x6F
		Expect(insts.Encoding(word).ImmJ()).To(Equal(int32(-2)))
	})
})
