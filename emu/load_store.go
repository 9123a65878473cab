package emu

import "rv32emu/insts"

// LoadStoreUnit implements RV32I memory load and store operations, applying
// the sign/zero extension rule pinned by the specification: LB/LH
// sign-extend, LBU/LHU zero-extend. The Width tag alone does not carry that
// distinction — it is threaded through separately by the Interpreter via
// the Signed flag on a Load instruction.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and memory.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{regFile: regFile, memory: memory}
}

// Load computes addr = reg[rs1] + imm and reads width bytes from memory,
// sign- or zero-extending per signed, then writes the result to rd.
func (l *LoadStoreUnit) Load(rd, rs1 uint8, imm int32, width insts.Width, signed bool) error {
	addr := l.regFile.Read(rs1) + uint32(imm)

	var res uint32
	switch width {
	case insts.WidthByte:
		v, err := l.memory.Load8(addr)
		if err != nil {
			return err
		}
		if signed {
			res = uint32(int32(int8(v)))
		} else {
			res = uint32(v)
		}
	case insts.WidthHalf:
		v, err := l.memory.Load16(addr)
		if err != nil {
			return err
		}
		if signed {
			res = uint32(int32(int16(v)))
		} else {
			res = uint32(v)
		}
	case insts.WidthWord:
		v, err := l.memory.Load32(addr)
		if err != nil {
			return err
		}
		res = v
	}

	l.regFile.Write(rd, res)
	return nil
}

// Store computes addr = reg[rs1] + imm and writes the low width bytes of
// reg[rs2] to memory.
func (l *LoadStoreUnit) Store(rs1, rs2 uint8, imm int32, width insts.Width) error {
	addr := l.regFile.Read(rs1) + uint32(imm)
	val := l.regFile.Read(rs2)

	switch width {
	case insts.WidthByte:
		return l.memory.Store8(addr, uint8(val))
	case insts.WidthHalf:
		return l.memory.Store16(addr, uint16(val))
	case insts.WidthWord:
		return l.memory.Store32(addr, val)
	}
	return nil
}
