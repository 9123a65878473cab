package emu

import "rv32emu/insts"

// EvalALU is the pure semantic function for RV32I arithmetic/logical
// operations: wrapping arithmetic, bitwise ops, logical shifts using the
// low 5 bits of y as the shift amount, arithmetic right shift in
// two's-complement, and signed/unsigned less-than returning 0 or 1.
func EvalALU(x, y uint32, op insts.ALUOp) uint32 {
	switch op {
	case insts.ALUAdd:
		return x + y
	case insts.ALUSub:
		return x - y
	case insts.ALUAnd:
		return x & y
	case insts.ALUOr:
		return x | y
	case insts.ALUXor:
		return x ^ y
	case insts.ALUSll:
		return x << (y & 0x1F)
	case insts.ALUSrl:
		return x >> (y & 0x1F)
	case insts.ALUSra:
		return uint32(int32(x) >> (y & 0x1F))
	case insts.ALUSlt:
		if int32(x) < int32(y) {
			return 1
		}
		return 0
	case insts.ALUSltu:
		if x < y {
			return 1
		}
		return 0
	default:
		panic("unreachable ALU op")
	}
}

// ALU executes arithmetic/logical instructions against a register file.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// Exec computes rd <- EvalALU(reg[rs1], reg[rs2], op), the Op instruction
// effect.
func (a *ALU) Exec(rd, rs1, rs2 uint8, op insts.ALUOp) {
	res := EvalALU(a.regFile.Read(rs1), a.regFile.Read(rs2), op)
	a.regFile.Write(rd, res)
}

// ExecImm computes rd <- EvalALU(reg[rs1], imm, op), the OpImm instruction
// effect.
func (a *ALU) ExecImm(rd, rs1 uint8, imm int32, op insts.ALUOp) {
	res := EvalALU(a.regFile.Read(rs1), uint32(imm), op)
	a.regFile.Write(rd, res)
}
