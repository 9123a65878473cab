package emu

import "rv32emu/insts"

// EvalBranch is the pure semantic function for the six RV32I branch
// conditions, using signed comparison for Lt/Ge and unsigned comparison for
// Ltu/Geu.
func EvalBranch(x, y uint32, op insts.BranchOp) bool {
	switch op {
	case insts.BranchEq:
		return x == y
	case insts.BranchNe:
		return x != y
	case insts.BranchLt:
		return int32(x) < int32(y)
	case insts.BranchGe:
		return int32(x) >= int32(y)
	case insts.BranchLtu:
		return x < y
	case insts.BranchGeu:
		return x >= y
	default:
		panic("unreachable branch op")
	}
}

// BranchUnit evaluates branch conditions against a register file.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register
// file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// Taken reports whether the branch comparing rs1 and rs2 under op is taken.
func (b *BranchUnit) Taken(rs1, rs2 uint8, op insts.BranchOp) bool {
	return EvalBranch(b.regFile.Read(rs1), b.regFile.Read(rs2), op)
}
