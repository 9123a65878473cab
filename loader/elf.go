// Package loader provides ELF binary loading for RV32I executables.
package loader

import (
	"debug/elf"
	"fmt"
	"io"
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// DefaultStackTop is the default initial stack pointer value, near the top
// of a 1 MiB flat memory. Load always sets Program.InitialSP to it; it is
// not read from the ELF file. It is independent of the x2 seed RegFile
// applies on construction, which has the same value.
const DefaultStackTop = 0x000F_0000

// Segment represents a loadable segment from an ELF binary.
type Segment struct {
	// VirtAddr is the virtual address where this segment should be loaded.
	VirtAddr uint32
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS,
	// which is zero-filled).
	MemSize uint32
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program represents a loaded ELF program ready for execution.
type Program struct {
	// Entry is the virtual address where execution should begin.
	Entry uint32
	// Segments contains all loadable segments from the ELF file.
	Segments []Segment
	// InitialSP is a suggested initial stack pointer value.
	InitialSP uint32
}

// EntryPoint implements emu.Image.
func (p *Program) EntryPoint() uint32 {
	return p.Entry
}

// ForEachSegment invokes fn once per loadable segment with its base
// address and a byte slice already zero-padded out to MemSize. It
// implements emu.Image, keeping the emu package free of any dependency on
// ELF parsing details.
func (p *Program) ForEachSegment(fn func(base uint32, bytes []byte)) {
	for _, seg := range p.Segments {
		if seg.MemSize <= uint32(len(seg.Data)) {
			fn(seg.VirtAddr, seg.Data)
			continue
		}
		padded := make([]byte, seg.MemSize)
		copy(padded, seg.Data)
		fn(seg.VirtAddr, padded)
	}
}

// Load parses an RV32 ELF binary and returns a Program struct ready for
// loading into the interpreter's memory.
func Load(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("not a 32-bit ELF file")
	}

	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("not a RISC-V ELF file (machine type: %v)", f.Machine)
	}

	prog := &Program{
		Entry:     uint32(f.Entry),
		InitialSP: DefaultStackTop,
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: uint32(phdr.Vaddr),
			Data:     data,
			MemSize:  uint32(phdr.Memsz),
			Flags:    flags,
		})
	}

	return prog, nil
}
