package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"rv32emu/emu"
)

// The helpers below build RV32I instruction words directly, independent of
// the insts decoder, so these tests exercise decode end-to-end.
func encodeR(opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeI(opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	return uint32(imm)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeS(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	imm11_5 := (u >> 5) & 0x7F
	imm4_0 := u & 0x1F
	return imm11_5<<25 | rs2<<20 | rs1<<15 | funct3<<12 | imm4_0<<7 | opcode
}

func encodeB(funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	b12 := (u >> 12) & 0x1
	b11 := (u >> 11) & 0x1
	b10_5 := (u >> 5) & 0x3F
	b4_1 := (u >> 1) & 0xF
	return b12<<31 | b10_5<<25 | rs2<<20 | rs1<<15 | funct3<<12 | b4_1<<8 | b11<<7 | 0x63
}

func encodeU(opcode, rd uint32, uimm uint32) uint32 {
	return (uimm & 0xFFFFF000) | rd<<7 | opcode
}

func encodeJ(rd uint32, imm int32) uint32 {
	u := uint32(imm)
	b20 := (u >> 20) & 0x1
	b19_12 := (u >> 12) & 0xFF
	b11 := (u >> 11) & 0x1
	b10_1 := (u >> 1) & 0x3FF
	return b20<<31 | b10_1<<21 | b11<<20 | b19_12<<12 | rd<<7 | 0x6F
}

func addi(rd, rs1 uint32, imm int32) uint32 { return encodeI(0x13, rd, 0, rs1, imm) }
func add(rd, rs1, rs2 uint32) uint32        { return encodeR(0x33, rd, 0, rs1, rs2, 0) }
func lui(rd uint32, uimm uint32) uint32     { return encodeU(0x37, rd, uimm) }
func sw(rs1, rs2 uint32, imm int32) uint32  { return encodeS(0x23, 2, rs1, rs2, imm) }
func lw(rd, rs1 uint32, imm int32) uint32   { return encodeI(0x03, rd, 2, rs1, imm) }
func srai(rd, rs1 uint32, shamt uint32) uint32 {
	return 0x20<<25 | shamt<<20 | rs1<<15 | 5<<12 | rd<<7 | 0x13
}
func srli(rd, rs1 uint32, shamt uint32) uint32 { return encodeI(0x13, rd, 5, rs1, int32(shamt)) }
func slli(rd, rs1 uint32, shamt uint32) uint32 { return encodeI(0x13, rd, 1, rs1, int32(shamt)) }
func bltu(rs1, rs2 uint32, imm int32) uint32   { return encodeB(6, rs1, rs2, imm) }
func blt(rs1, rs2 uint32, imm int32) uint32    { return encodeB(4, rs1, rs2, imm) }
func jal(rd uint32, imm int32) uint32          { return encodeJ(rd, imm) }
func jalr(rd, rs1 uint32, imm int32) uint32    { return encodeI(0x67, rd, 0, rs1, imm) }

var _ = Describe("Interpreter", func() {
	var interp *emu.Interpreter

	BeforeEach(func() {
		interp = emu.NewInterpreter(1 << 20)
	})

	seed := func(base uint32, words []uint32) {
		for i, w := range words {
			Expect(interp.Memory().Store32(base+uint32(i*4), w)).To(Succeed())
		}
	}

	Describe("S1 arithmetic chain", func() {
		It("halts via the sentinel with the expected register state", func() {
			seed(0, []uint32{
				lui(5, 0x12345000),
				addi(5, 5, 0x678),
				addi(6, 0, 0),
				add(6, 6, 5),
				jalr(0, 1, 0),
			})

			Expect(interp.Run()).To(Succeed())
			Expect(interp.RegFile().Read(5)).To(Equal(uint32(0x12345678)))
			Expect(interp.RegFile().Read(6)).To(Equal(uint32(0x12345678)))
		})
	})

	Describe("S2 memory round-trip", func() {
		It("reads back what it wrote at x2+16", func() {
			seed(0, []uint32{
				addi(10, 0, 0x7B),
				sw(2, 10, 16),
				lw(11, 2, 16),
				jalr(0, 1, 0),
			})

			Expect(interp.Run()).To(Succeed())
			Expect(interp.RegFile().Read(11)).To(Equal(uint32(0x0000007B)))

			addr := interp.RegFile().Read(2) + 16
			v, err := interp.Memory().Load32(addr)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(uint32(0x0000007B)))
		})
	})

	Describe("S3 signed vs unsigned branch", func() {
		It("does not take bltu but does take blt for -1 vs 1", func() {
			seed(0, []uint32{
				addi(5, 0, -1),
				addi(6, 0, 1),
				bltu(5, 6, 8), // not taken: falls through to pc+4
				addi(7, 0, 0xAA),
				blt(5, 6, 8), // taken: skips the next instruction
				addi(8, 0, 0xBB),
				addi(9, 0, 0xCC),
			})

			Expect(interp.RunN(3)).To(Succeed()) // addi x5, addi x6, bltu (not taken)
			Expect(interp.PC()).To(Equal(uint32(12)))

			Expect(interp.RunN(1)).To(Succeed()) // addi x7
			Expect(interp.RegFile().Read(7)).To(Equal(uint32(0xAA)))
			Expect(interp.PC()).To(Equal(uint32(16)))

			Expect(interp.RunN(1)).To(Succeed()) // blt, taken: jumps from pc=16 to pc=24
			Expect(interp.PC()).To(Equal(uint32(24)))
		})
	})

	Describe("S4 shift-immediate family", func() {
		It("computes the arithmetic and logical shift results", func() {
			seed(0, []uint32{
				addi(5, 0, -8),
				srai(6, 5, 2),
				srli(7, 5, 2),
				slli(8, 6, 1),
				jalr(0, 1, 0),
			})

			Expect(interp.Run()).To(Succeed())
			Expect(interp.RegFile().Read(5)).To(Equal(uint32(0xFFFF_FFF8)))
			Expect(interp.RegFile().Read(6)).To(Equal(uint32(0xFFFF_FFFE)))
			Expect(interp.RegFile().Read(7)).To(Equal(uint32(0x3FFF_FFFE)))
			Expect(interp.RegFile().Read(8)).To(Equal(uint32(0xFFFF_FFFC)))
		})
	})

	Describe("S5 jump-and-link", func() {
		It("links the return address and reaches the sentinel", func() {
			seed(0x100, []uint32{jal(1, 12)})    // at 0x100, jumps to 0x10C
			seed(0x104, []uint32{addi(9, 1, 0)}) // "main", copies x1 to x9
			// restores the sentinel link so the returner halts the run
			seed(0x108, []uint32{lui(1, emu.LinkSentinel)})
			seed(0x10C, []uint32{jalr(0, 1, 0)}) // returner

			interp.SetPC(0x100)
			Expect(interp.RunN(1)).To(Succeed())
			Expect(interp.PC()).To(Equal(uint32(0x10C)))
			Expect(interp.RegFile().Read(1)).To(Equal(uint32(0x104)))

			interp.SetPC(0x104)
			Expect(interp.Run()).To(Succeed())
			Expect(interp.RegFile().Read(9)).To(Equal(uint32(0x104)))
		})
	})

	Describe("S6 x0 discipline", func() {
		It("keeps x0 pinned to zero across writes and adds", func() {
			seed(0, []uint32{
				addi(0, 0, 0x7FF),
				add(5, 0, 0),
				jalr(0, 1, 0),
			})

			Expect(interp.Run()).To(Succeed())
			Expect(interp.RegFile().Read(5)).To(Equal(uint32(0)))
			Expect(interp.RegFile().Read(0)).To(Equal(uint32(0)))
		})
	})

	Describe("decode determinism", func() {
		It("decodes the same word to the same outcome on repeated execution", func() {
			seed(0, []uint32{addi(5, 0, 7)})

			r1, err := interp.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(interp.RegFile().Read(5)).To(Equal(uint32(7)))

			interp.SetPC(0)
			r2, err := interp.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(r1).To(Equal(r2))
			Expect(interp.RegFile().Read(5)).To(Equal(uint32(7)))
		})
	})

	Describe("fatal decode errors", func() {
		It("surfaces an error for an unknown opcode without panicking", func() {
			seed(0, []uint32{0x0000007F}) // opcode bits 1111111, not in the accepted set
			_, err := interp.Step()
			Expect(err).To(HaveOccurred())
		})

		It("surfaces an error for a compressed instruction", func() {
			seed(0, []uint32{0x00000001}) // low two bits != 11
			_, err := interp.Step()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("LoadImage", func() {
		It("writes every segment and sets pc to the entry point", func() {
			img := fakeImage{
				entry: 0x1000,
				segments: []fakeSegment{
					{base: 0x1000, bytes: []byte{0x13, 0x02, 0x00, 0x00}}, // addi x4,x0,0 (nop-ish)
				},
			}

			Expect(interp.LoadImage(img)).To(Succeed())
			Expect(interp.PC()).To(Equal(uint32(0x1000)))

			word, err := interp.Memory().Load32(0x1000)
			Expect(err).NotTo(HaveOccurred())
			Expect(word).To(Equal(uint32(0x00000213)))
		})

		It("fails when a segment exceeds memory capacity", func() {
			img := fakeImage{
				entry: 0,
				segments: []fakeSegment{
					{base: 1 << 20, bytes: make([]byte, 16)},
				},
			}
			Expect(interp.LoadImage(img)).To(HaveOccurred())
		})
	})
})

type fakeSegment struct {
	base  uint32
	bytes []byte
}

type fakeImage struct {
	entry    uint32
	segments []fakeSegment
}

func (f fakeImage) EntryPoint() uint32 { return f.entry }

func (f fakeImage) ForEachSegment(fn func(base uint32, bytes []byte)) {
	for _, s := range f.segments {
		fn(s.base, s.bytes)
	}
}
