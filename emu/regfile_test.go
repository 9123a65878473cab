package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"rv32emu/emu"
)

var _ = Describe("RegFile", func() {
	var rf *emu.RegFile

	BeforeEach(func() {
		rf = emu.NewRegFile()
	})

	Describe("construction seeds", func() {
		It("seeds x1 with the link sentinel", func() {
			Expect(rf.Read(1)).To(Equal(emu.LinkSentinel))
		})

		It("seeds x2 with the initial stack pointer", func() {
			Expect(rf.Read(2)).To(Equal(emu.InitialStackPointer))
		})
	})

	Describe("x0 discipline", func() {
		It("always reads zero", func() {
			Expect(rf.Read(0)).To(Equal(uint32(0)))
		})

		It("silently discards writes", func() {
			rf.Write(0, 0x7FF)
			Expect(rf.Read(0)).To(Equal(uint32(0)))
		})
	})

	Describe("general registers", func() {
		It("reads back a written value", func() {
			rf.Write(5, 0x12345678)
			Expect(rf.Read(5)).To(Equal(uint32(0x12345678)))
		})

		It("keeps registers independent", func() {
			rf.Write(5, 1)
			rf.Write(6, 2)
			Expect(rf.Read(5)).To(Equal(uint32(1)))
			Expect(rf.Read(6)).To(Equal(uint32(2)))
		})
	})
})
