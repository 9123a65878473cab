package emu

// RegFile is the 32-entry RV32I general-purpose register file. Register 0
// is the hard-wired zero register: reads always yield 0 and writes are
// silently discarded.
//
// Two registers are seeded at construction rather than left zero, as a
// bring-up convenience the rest of the package depends on: x1 carries the
// sentinel return address that the interpreter treats as a clean-halt
// signal, and x2 is given an initial stack pointer near the top of a 1 MiB
// memory.
type RegFile struct {
	data [32]uint32
}

// Sentinel register seeds, part of the construction contract.
const (
	// LinkSentinel is the value seeded into x1. Control returning here (the
	// program counter reaching this address) is the interpreter's halt
	// signal.
	LinkSentinel uint32 = 0xDEAD_0000
	// InitialStackPointer is the value seeded into x2.
	InitialStackPointer uint32 = 0x000F_0000
)

// NewRegFile constructs a zero-filled register file with the x1/x2 seeds
// applied.
func NewRegFile() *RegFile {
	r := &RegFile{}
	r.data[1] = LinkSentinel
	r.data[2] = InitialStackPointer
	return r
}

// Read returns the value held in register i, or 0 if i is the zero
// register.
func (r *RegFile) Read(i uint8) uint32 {
	if i == 0 {
		return 0
	}
	return r.data[i]
}

// Write stores v into register i. Writes to register 0 are silently
// discarded.
func (r *RegFile) Write(i uint8, v uint32) {
	if i != 0 {
		r.data[i] = v
	}
}
