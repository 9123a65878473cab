package emu

import (
	"fmt"
	"io"

	"rv32emu/insts"
)

// StepKind discriminates the three possible outcomes of a single
// interpreter step.
type StepKind uint8

// The step outcomes.
const (
	// StepNext advances the program counter by 4.
	StepNext StepKind = iota
	// StepGoto sets the program counter to an explicit target.
	StepGoto
	// StepTerminate ends the run loop.
	StepTerminate
)

// StepResult is the outcome of Interpreter.Step.
type StepResult struct {
	Kind   StepKind
	Target uint32
}

// Image is the parsed view of an executable image the interpreter
// consumes. Executable file parsing itself is out of scope for this
// package; a loader package elsewhere in this repository produces values
// satisfying this interface.
type Image interface {
	// ForEachSegment invokes fn once per loadable segment, in file order,
	// with the segment's base address and byte contents.
	ForEachSegment(fn func(base uint32, bytes []byte))
	// EntryPoint returns the address execution should begin at.
	EntryPoint() uint32
}

// Interpreter is the fetch-decode-execute driver over a RegFile and
// Memory. It owns both exclusively for its lifetime.
type Interpreter struct {
	pc      uint32
	reg     *RegFile
	mem     *Memory
	decoder *insts.Decoder

	alu    *ALU
	lsu    *LoadStoreUnit
	branch *BranchUnit

	trace            io.Writer
	instructionCount uint64
}

// Option configures an Interpreter at construction.
type Option func(*Interpreter)

// WithTrace sets a writer that receives one "pc: instr" line per executed
// step, plus a final "Halted at pc=..." line on the sentinel path. A nil
// writer (the default) disables tracing.
func WithTrace(w io.Writer) Option {
	return func(i *Interpreter) { i.trace = w }
}

// NewInterpreter allocates a memCapacity-byte Memory and a seeded RegFile,
// and wires up the ALU/LSU/branch execution units against them.
func NewInterpreter(memCapacity uint32, opts ...Option) *Interpreter {
	reg := NewRegFile()
	mem := NewMemory(memCapacity)

	i := &Interpreter{
		pc:      0,
		reg:     reg,
		mem:     mem,
		decoder: insts.NewDecoder(),
		alu:     NewALU(reg),
		lsu:     NewLoadStoreUnit(reg, mem),
		branch:  NewBranchUnit(reg),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// RegFile returns the interpreter's register file.
func (i *Interpreter) RegFile() *RegFile { return i.reg }

// Memory returns the interpreter's memory.
func (i *Interpreter) Memory() *Memory { return i.mem }

// PC returns the current program counter.
func (i *Interpreter) PC() uint32 { return i.pc }

// SetPC overrides the program counter. Callers resuming execution at an
// explicit address (tooling, tests) use this instead of reaching into
// LoadImage.
func (i *Interpreter) SetPC(pc uint32) { i.pc = pc }

// InstructionCount returns the number of instructions executed so far.
func (i *Interpreter) InstructionCount() uint64 { return i.instructionCount }

// LoadImage writes every segment of img into memory at its base address
// and sets the program counter to the image's entry point. A segment whose
// [base, base+len) range exceeds the memory's capacity is fatal.
func (i *Interpreter) LoadImage(img Image) error {
	var loadErr error
	img.ForEachSegment(func(base uint32, bytes []byte) {
		if loadErr != nil {
			return
		}
		if err := i.mem.WriteSlice(base, bytes); err != nil {
			loadErr = fmt.Errorf("loading segment at 0x%08X: %w", base, err)
		}
	})
	if loadErr != nil {
		return loadErr
	}
	i.pc = img.EntryPoint()
	return nil
}

// Step fetches, decodes, and executes the instruction at the current
// program counter, returning how the driver should update pc. It returns
// StepTerminate without fetching when pc has reached the sentinel link
// address seeded into x1 — the repository's halt convention.
func (i *Interpreter) Step() (StepResult, error) {
	if i.pc == LinkSentinel {
		return StepResult{Kind: StepTerminate}, nil
	}

	word, err := i.mem.Load32(i.pc)
	if err != nil {
		return StepResult{}, fmt.Errorf("instruction fetch at pc=0x%08X: %w", i.pc, err)
	}

	inst, err := i.decoder.Decode(word)
	if err != nil {
		return StepResult{}, fmt.Errorf("decode at pc=0x%08X word=0x%08X: %w", i.pc, word, err)
	}

	if i.trace != nil {
		fmt.Fprintf(i.trace, "%08x: %s\n", i.pc, inst.Kind)
	}

	result, err := i.execute(inst)
	if err != nil {
		return StepResult{}, err
	}
	i.instructionCount++
	return result, nil
}

func (i *Interpreter) execute(inst insts.Instruction) (StepResult, error) {
	switch inst.Kind {
	case insts.KindOp:
		i.alu.Exec(inst.Rd, inst.Rs1, inst.Rs2, inst.ALU)
		return StepResult{Kind: StepNext}, nil

	case insts.KindOpImm:
		i.alu.ExecImm(inst.Rd, inst.Rs1, inst.Imm, inst.ALU)
		return StepResult{Kind: StepNext}, nil

	case insts.KindLui:
		i.reg.Write(inst.Rd, inst.UImm)
		return StepResult{Kind: StepNext}, nil

	case insts.KindAuipc:
		i.reg.Write(inst.Rd, i.pc+inst.UImm)
		return StepResult{Kind: StepNext}, nil

	case insts.KindLoad:
		if err := i.lsu.Load(inst.Rd, inst.Rs1, inst.Imm, inst.Width, inst.Signed); err != nil {
			return StepResult{}, fmt.Errorf("load at pc=0x%08X: %w", i.pc, err)
		}
		return StepResult{Kind: StepNext}, nil

	case insts.KindStore:
		if err := i.lsu.Store(inst.Rs1, inst.Rs2, inst.Imm, inst.Width); err != nil {
			return StepResult{}, fmt.Errorf("store at pc=0x%08X: %w", i.pc, err)
		}
		return StepResult{Kind: StepNext}, nil

	case insts.KindBranch:
		if i.branch.Taken(inst.Rs1, inst.Rs2, inst.Branch) {
			return StepResult{Kind: StepGoto, Target: i.pc + uint32(inst.Imm)}, nil
		}
		return StepResult{Kind: StepNext}, nil

	case insts.KindJal:
		if inst.Rd != 0 {
			i.reg.Write(inst.Rd, i.pc+4)
		}
		return StepResult{Kind: StepGoto, Target: i.pc + uint32(inst.Imm)}, nil

	case insts.KindJalr:
		target := (i.reg.Read(inst.Rs1) + uint32(inst.Imm)) &^ 1
		if inst.Rd != 0 {
			i.reg.Write(inst.Rd, i.pc+4)
		}
		return StepResult{Kind: StepGoto, Target: target}, nil

	case insts.KindFence:
		return StepResult{Kind: StepNext}, nil

	case insts.KindECall, insts.KindEBreak:
		return StepResult{Kind: StepTerminate}, nil

	default:
		return StepResult{}, fmt.Errorf("unimplemented instruction kind %v at pc=0x%08X", inst.Kind, i.pc)
	}
}

// Run drives Step in a loop, applying the program-counter transition rule
// (Next advances by 4, Goto jumps, Terminate exits) until termination or a
// fatal error.
func (i *Interpreter) Run() error {
	for {
		result, err := i.Step()
		if err != nil {
			return err
		}
		if result.Kind == StepTerminate {
			if i.trace != nil {
				fmt.Fprintf(i.trace, "Halted at pc=0x%08X\n", i.pc)
			}
			return nil
		}
		i.applyStep(result)
	}
}

// RunN executes at most n steps, applying the normal pc-update rule after
// each, and returns early if termination is reached before n steps
// complete.
func (i *Interpreter) RunN(n int) error {
	for s := 0; s < n; s++ {
		result, err := i.Step()
		if err != nil {
			return err
		}
		if result.Kind == StepTerminate {
			return nil
		}
		i.applyStep(result)
	}
	return nil
}

func (i *Interpreter) applyStep(result StepResult) {
	switch result.Kind {
	case StepNext:
		i.pc += 4
	case StepGoto:
		i.pc = result.Target
	}
}
