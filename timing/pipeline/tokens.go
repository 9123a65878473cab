// Package pipeline provides a structural 5-stage (IF/ID/EX/ME/WB) model of
// the RV32I evaluator, composed by value rather than by cycle-accurate
// pipeline registers. It is a teaching artifact: no forwarding, no hazard
// stalls, no branch resolution. Each Tick carries exactly one instruction
// through all five stages and advances the program counter by 4
// unconditionally.
package pipeline

import "rv32emu/insts"

// OpKind discriminates the decoded forms DecodeStage can hand to
// ExecutionStage. Only the instructions the simple pipeline supports —
// register-register and register-immediate ALU ops (with LUI folded into
// the same shape) plus loads and stores — have a variant; everything else
// is reported as an unsupported-instruction error at decode time.
type OpKind uint8

// The supported pipeline op variants.
const (
	OpNone OpKind = iota
	// OpAlu computes rd <- EvalALU(x, y, op) with x and y already resolved
	// to concrete values by DecodeStage — this pipeline does not track
	// register names past ID.
	OpAlu
	// OpLoad addresses base+offset and reads width bytes into rd.
	OpLoad
	// OpStore addresses base+offset and writes the low width bytes of val.
	OpStore
)

// Op is the value DecodeStage produces and ExecutionStage consumes.
type Op struct {
	Kind OpKind

	Rd     uint8
	X, Y   uint32
	ALU    insts.ALUOp
	Base   uint32
	Offset int32
	Val    uint32
	Width  insts.Width
	Signed bool
}

// EffectKind discriminates the deferred-mutation tokens ExecutionStage
// produces and MemoryStage/WritebackStage consume.
type EffectKind uint8

// The effect variants.
const (
	EffectNone EffectKind = iota
	// EffectRegWrite names a register and the value to commit in WB.
	EffectRegWrite
	// EffectMemLoad names a pending memory read MemoryStage must resolve
	// into an EffectRegWrite before WB.
	EffectMemLoad
	// EffectMemStore names a pending memory write MemoryStage applies
	// directly, producing EffectNone.
	EffectMemStore
)

// Effect is the value flowing from ExecutionStage through MemoryStage to
// WritebackStage.
type Effect struct {
	Kind   EffectKind
	Rd     uint8
	Val    uint32
	Addr   uint32
	Width  insts.Width
	Signed bool
}
