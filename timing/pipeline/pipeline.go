package pipeline

import (
	"fmt"
	"io"

	"rv32emu/emu"
)

// Pipeline drives one instruction per Tick through IF, ID, EX, ME, and WB in
// sequence, sharing a RegFile and Memory with any interpreter constructed
// over the same state. It does not buffer between stages and does not
// overlap instructions: a Tick is a single-cycle execution of one
// instruction, structured as five composed stages rather than one switch,
// per the repository's pipeline demonstrator.
type Pipeline struct {
	fetch     *FetchStage
	decode    *DecodeStage
	execute   *ExecutionStage
	memory    *MemoryStage
	writeback *WritebackStage

	regFile *emu.RegFile
	pc      uint32

	trace            io.Writer
	instructionCount uint64
}

// Option configures a Pipeline at construction.
type Option func(*Pipeline)

// WithTrace sets a writer that receives one line per tick naming the effect
// committed. A nil writer (the default) disables tracing.
func WithTrace(w io.Writer) Option {
	return func(p *Pipeline) { p.trace = w }
}

// NewPipeline wires up the five stages against a shared RegFile and Memory.
// Ownership of both is shared with any caller that also holds them (for
// example an emu.Interpreter constructed for equivalence testing); the
// Pipeline does not assume it is the only writer.
func NewPipeline(regFile *emu.RegFile, memory *emu.Memory, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetch:     NewFetchStage(memory),
		decode:    NewDecodeStage(regFile),
		execute:   NewExecutionStage(),
		memory:    NewMemoryStage(memory),
		writeback: NewWritebackStage(regFile),
		regFile:   regFile,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetPC sets the program counter the next Tick fetches from.
func (p *Pipeline) SetPC(pc uint32) { p.pc = pc }

// PC returns the current program counter.
func (p *Pipeline) PC() uint32 { return p.pc }

// InstructionCount returns the number of instructions successfully carried
// through all five stages so far.
func (p *Pipeline) InstructionCount() uint64 { return p.instructionCount }

// Tick carries the instruction at the current pc through IF, ID, EX, ME,
// and WB, then advances pc by 4 unconditionally. It returns an error
// without mutating pc if fetch, decode, or the memory stage fails —
// notably, decoding a branch, jump, AUIPC, FENCE, or ECALL/EBREAK returns
// an error, since this pipeline implements neither branch resolution nor
// termination handling.
func (p *Pipeline) Tick() error {
	raw, err := p.fetch.Execute(p.pc)
	if err != nil {
		return err
	}

	op, err := p.decode.Execute(raw)
	if err != nil {
		return fmt.Errorf("pc=0x%08X: %w", p.pc, err)
	}

	effect := p.execute.Execute(op)

	effect, err = p.memory.Execute(effect)
	if err != nil {
		return fmt.Errorf("pc=0x%08X: %w", p.pc, err)
	}

	p.writeback.Execute(effect)

	if p.trace != nil {
		fmt.Fprintf(p.trace, "%08x: %s\n", p.pc, describeEffect(effect))
	}

	p.instructionCount++
	p.pc += 4
	return nil
}

// RunTicks calls Tick n times, stopping early and returning the error if
// any Tick fails.
func (p *Pipeline) RunTicks(n int) error {
	for i := 0; i < n; i++ {
		if err := p.Tick(); err != nil {
			return err
		}
	}
	return nil
}

func describeEffect(e Effect) string {
	switch e.Kind {
	case EffectRegWrite:
		return fmt.Sprintf("x%d <- 0x%08X", e.Rd, e.Val)
	default:
		return "none"
	}
}
