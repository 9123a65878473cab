package pipeline

import (
	"fmt"

	"rv32emu/emu"
	"rv32emu/insts"
)

// FetchStage reads the raw instruction word at a program counter.
type FetchStage struct {
	memory *emu.Memory
}

// NewFetchStage creates a fetch stage reading from the given memory.
func NewFetchStage(memory *emu.Memory) *FetchStage {
	return &FetchStage{memory: memory}
}

// Execute implements IF(pc) -> RawInstr.
func (s *FetchStage) Execute(pc uint32) (uint32, error) {
	word, err := s.memory.Load32(pc)
	if err != nil {
		return 0, fmt.Errorf("fetch at pc=0x%08X: %w", pc, err)
	}
	return word, nil
}

// DecodeStage decodes a raw word and eagerly resolves its source operands
// against the register file, per the simple pipeline's decision to defer no
// dependency tracking into later stages.
type DecodeStage struct {
	regFile *emu.RegFile
	decoder *insts.Decoder
}

// NewDecodeStage creates a decode stage reading from the given register
// file.
func NewDecodeStage(regFile *emu.RegFile) *DecodeStage {
	return &DecodeStage{regFile: regFile, decoder: insts.NewDecoder()}
}

// Execute implements ID(raw) -> Op. It returns an error for any decoded
// instruction kind the simple pipeline does not model (branches, jumps,
// AUIPC, FENCE, ECALL/EBREAK) — those require either control-flow
// resolution or termination handling this structural demonstrator
// deliberately leaves out.
func (s *DecodeStage) Execute(raw uint32) (Op, error) {
	inst, err := s.decoder.Decode(raw)
	if err != nil {
		return Op{}, err
	}

	switch inst.Kind {
	case insts.KindOp:
		return Op{
			Kind: OpAlu,
			Rd:   inst.Rd,
			X:    s.regFile.Read(inst.Rs1),
			Y:    s.regFile.Read(inst.Rs2),
			ALU:  inst.ALU,
		}, nil

	case insts.KindOpImm:
		return Op{
			Kind: OpAlu,
			Rd:   inst.Rd,
			X:    s.regFile.Read(inst.Rs1),
			Y:    uint32(inst.Imm),
			ALU:  inst.ALU,
		}, nil

	case insts.KindLui:
		return Op{
			Kind: OpAlu,
			Rd:   inst.Rd,
			X:    0,
			Y:    inst.UImm,
			ALU:  insts.ALUAdd,
		}, nil

	case insts.KindLoad:
		return Op{
			Kind:   OpLoad,
			Rd:     inst.Rd,
			Base:   s.regFile.Read(inst.Rs1),
			Offset: inst.Imm,
			Width:  inst.Width,
			Signed: inst.Signed,
		}, nil

	case insts.KindStore:
		return Op{
			Kind:   OpStore,
			Val:    s.regFile.Read(inst.Rs2),
			Base:   s.regFile.Read(inst.Rs1),
			Offset: inst.Imm,
			Width:  inst.Width,
		}, nil

	default:
		return Op{}, fmt.Errorf("pipeline: %v is not supported by the simple 5-stage model", inst.Kind)
	}
}

// ExecutionStage applies ALU computation or address arithmetic.
type ExecutionStage struct{}

// NewExecutionStage creates an execution stage. It holds no state: every
// input it needs arrives resolved in Op.
func NewExecutionStage() *ExecutionStage {
	return &ExecutionStage{}
}

// Execute implements EX(op) -> Effect.
func (s *ExecutionStage) Execute(op Op) Effect {
	switch op.Kind {
	case OpAlu:
		return Effect{Kind: EffectRegWrite, Rd: op.Rd, Val: emu.EvalALU(op.X, op.Y, op.ALU)}

	case OpLoad:
		addr := op.Base + uint32(op.Offset)
		return Effect{Kind: EffectMemLoad, Rd: op.Rd, Addr: addr, Width: op.Width, Signed: op.Signed}

	case OpStore:
		addr := op.Base + uint32(op.Offset)
		return Effect{Kind: EffectMemStore, Val: op.Val, Addr: addr, Width: op.Width}

	default:
		return Effect{Kind: EffectNone}
	}
}

// MemoryStage resolves pending loads and applies pending stores.
type MemoryStage struct {
	memory *emu.Memory
}

// NewMemoryStage creates a memory stage operating on the given memory.
func NewMemoryStage(memory *emu.Memory) *MemoryStage {
	return &MemoryStage{memory: memory}
}

// Execute implements ME(effect) -> Effect: EffectMemLoad resolves into
// EffectRegWrite, EffectMemStore is applied and collapses to EffectNone,
// everything else passes through unchanged.
func (s *MemoryStage) Execute(e Effect) (Effect, error) {
	switch e.Kind {
	case EffectMemLoad:
		val, err := s.load(e.Addr, e.Width, e.Signed)
		if err != nil {
			return Effect{}, err
		}
		return Effect{Kind: EffectRegWrite, Rd: e.Rd, Val: val}, nil

	case EffectMemStore:
		if err := s.store(e.Addr, e.Val, e.Width); err != nil {
			return Effect{}, err
		}
		return Effect{Kind: EffectNone}, nil

	default:
		return e, nil
	}
}

func (s *MemoryStage) load(addr uint32, width insts.Width, signed bool) (uint32, error) {
	switch width {
	case insts.WidthByte:
		v, err := s.memory.Load8(addr)
		if err != nil {
			return 0, err
		}
		if signed {
			return uint32(int32(int8(v))), nil
		}
		return uint32(v), nil

	case insts.WidthHalf:
		v, err := s.memory.Load16(addr)
		if err != nil {
			return 0, err
		}
		if signed {
			return uint32(int32(int16(v))), nil
		}
		return uint32(v), nil

	default:
		return s.memory.Load32(addr)
	}
}

func (s *MemoryStage) store(addr uint32, val uint32, width insts.Width) error {
	switch width {
	case insts.WidthByte:
		return s.memory.Store8(addr, uint8(val))
	case insts.WidthHalf:
		return s.memory.Store16(addr, uint16(val))
	default:
		return s.memory.Store32(addr, val)
	}
}

// WritebackStage commits register writes.
type WritebackStage struct {
	regFile *emu.RegFile
}

// NewWritebackStage creates a writeback stage operating on the given
// register file.
func NewWritebackStage(regFile *emu.RegFile) *WritebackStage {
	return &WritebackStage{regFile: regFile}
}

// Execute implements WB(effect) -> (): EffectRegWrite commits, EffectNone
// is discarded.
func (s *WritebackStage) Execute(e Effect) {
	if e.Kind == EffectRegWrite {
		s.regFile.Write(e.Rd, e.Val)
	}
}
