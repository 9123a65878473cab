// Package emu provides functional RV32I emulation.
package emu

import (
	"encoding/binary"
	"fmt"
)

// Memory is a flat, byte-addressable store with a fixed capacity fixed at
// construction. It performs no caching and has no notion of MMIO; every
// access is checked against the backing array's bounds and accesses wholly
// outside [0, capacity) are reported as a fatal out-of-bounds error.
//
// All multi-byte accesses use little-endian byte order. Alignment is not
// required.
type Memory struct {
	data []byte
}

// NewMemory allocates capacity zero-filled bytes.
func NewMemory(capacity uint32) *Memory {
	return &Memory{data: make([]byte, capacity)}
}

// Capacity returns the size of the backing array in bytes.
func (m *Memory) Capacity() uint32 {
	return uint32(len(m.data))
}

func (m *Memory) checkRange(addr uint32, size uint32) error {
	if uint64(addr)+uint64(size) > uint64(len(m.data)) {
		return fmt.Errorf("memory access out of bounds: addr=0x%08X size=%d capacity=%d",
			addr, size, len(m.data))
	}
	return nil
}

// WriteSlice copies bytes into the memory starting at offset. It is fatal if
// the destination range exceeds the memory's capacity.
func (m *Memory) WriteSlice(offset uint32, bytes []byte) error {
	if err := m.checkRange(offset, uint32(len(bytes))); err != nil {
		return err
	}
	copy(m.data[offset:], bytes)
	return nil
}

// Load8 reads a single byte.
func (m *Memory) Load8(addr uint32) (uint8, error) {
	if err := m.checkRange(addr, 1); err != nil {
		return 0, err
	}
	return m.data[addr], nil
}

// Load16 reads a little-endian halfword.
func (m *Memory) Load16(addr uint32) (uint16, error) {
	if err := m.checkRange(addr, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(m.data[addr : addr+2]), nil
}

// Load32 reads a little-endian word. Instruction fetch always uses Load32.
func (m *Memory) Load32(addr uint32) (uint32, error) {
	if err := m.checkRange(addr, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.data[addr : addr+4]), nil
}

// Store8 writes a single byte.
func (m *Memory) Store8(addr uint32, val uint8) error {
	if err := m.checkRange(addr, 1); err != nil {
		return err
	}
	m.data[addr] = val
	return nil
}

// Store16 writes a little-endian halfword.
func (m *Memory) Store16(addr uint32, val uint16) error {
	if err := m.checkRange(addr, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(m.data[addr:addr+2], val)
	return nil
}

// Store32 writes a little-endian word.
func (m *Memory) Store32(addr uint32, val uint32) error {
	if err := m.checkRange(addr, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.data[addr:addr+4], val)
	return nil
}
