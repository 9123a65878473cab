package insts

import "fmt"

// The 5-bit opcode values this decoder accepts. Any opcode outside this set
// is fatal.
const (
	opLoad    = 0b00000
	opMiscMem = 0b00011
	opOpImm   = 0b00100
	opAuipc   = 0b00101
	opStore   = 0b01000
	opOp      = 0b01100
	opLui     = 0b01101
	opBranch  = 0b11000
	opJalr    = 0b11001
	opJal     = 0b11011
	opSystem  = 0b11100
)

// funct7Alt is the bit that, set within funct7, selects SUB over ADD (on
// OP) and SRA over SRL (on OP and OP_IMM's shift-immediate encodings).
const funct7Alt = 0b0100000

// Decoder decodes raw 32-bit RV32I instruction words. It carries no state;
// NewDecoder exists to match the construction idiom used by callers that
// hold a *Decoder alongside other per-instance execution units.
type Decoder struct{}

// NewDecoder creates a new Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode is a pure function mapping a raw instruction word to its typed
// representation. Decoding is deterministic: the same word always decodes
// to the same Instruction. Unknown opcodes, reserved funct3/funct7
// combinations, and 16-bit compressed encodings are reported as errors
// rather than panics, since a fatal decode failure must surface the
// offending (pc, word) to the caller.
func (d *Decoder) Decode(word uint32) (Instruction, error) {
	return Decode(word)
}

// Decode is the package-level entry point used by Decoder.Decode.
func Decode(word uint32) (Instruction, error) {
	e := Encoding(word)

	if e.IsCompressed() {
		return Instruction{}, fmt.Errorf("compressed (16-bit) instruction not supported: 0x%08X", word)
	}

	switch e.Opcode() {
	case opLoad:
		return decodeLoad(e)
	case opMiscMem:
		return Instruction{Kind: KindFence}, nil
	case opOpImm:
		return decodeOpImm(e)
	case opAuipc:
		return Instruction{Kind: KindAuipc, Rd: e.Rd(), UImm: e.ImmU()}, nil
	case opStore:
		return decodeStore(e)
	case opOp:
		return decodeOp(e)
	case opLui:
		return Instruction{Kind: KindLui, Rd: e.Rd(), UImm: e.ImmU()}, nil
	case opBranch:
		return decodeBranch(e)
	case opJalr:
		return decodeJalr(e)
	case opJal:
		return Instruction{Kind: KindJal, Rd: e.Rd(), Imm: e.ImmJ()}, nil
	case opSystem:
		return decodeSystem(e)
	default:
		return Instruction{}, fmt.Errorf("unknown opcode 0b%05b in instruction 0x%08X", e.Opcode(), word)
	}
}

func decodeOp(e Encoding) (Instruction, error) {
	op, err := aluOpForOp(e.Funct3(), e.Funct7())
	if err != nil {
		return Instruction{}, err
	}
	return Instruction{Kind: KindOp, Rd: e.Rd(), Rs1: e.Rs1(), Rs2: e.Rs2(), ALU: op}, nil
}

func decodeOpImm(e Encoding) (Instruction, error) {
	funct3 := e.Funct3()

	// SLLI/SRLI/SRAI encode the shift amount in the low 5 bits of the
	// I-immediate and select SRA over SRL via bit 30 (funct7's alt bit,
	// the second-highest bit of the 7-bit field).
	if funct3 == 0b001 || funct3 == 0b101 {
		shamt := int32(e.Rs2())
		funct7 := e.Funct7()
		if funct3 == 0b001 && funct7 != 0 {
			return Instruction{}, fmt.Errorf("reserved funct7 0b%07b for SLLI", funct7)
		}
		if funct3 == 0b101 && funct7 != 0 && funct7 != funct7Alt {
			return Instruction{}, fmt.Errorf("reserved funct7 0b%07b for SRLI/SRAI", funct7)
		}
		op := ALUSll
		if funct3 == 0b101 {
			if funct7 == funct7Alt {
				op = ALUSra
			} else {
				op = ALUSrl
			}
		}
		return Instruction{Kind: KindOpImm, Rd: e.Rd(), Rs1: e.Rs1(), Imm: shamt, ALU: op}, nil
	}

	op, err := aluOpForOpImm(funct3)
	if err != nil {
		return Instruction{}, err
	}
	return Instruction{Kind: KindOpImm, Rd: e.Rd(), Rs1: e.Rs1(), Imm: e.ImmI(), ALU: op}, nil
}

// aluOpForOp maps (funct3, funct7) to an ALUOp for register-register OP
// instructions. funct7's alt bit distinguishes ADD/SUB and SRL/SRA; all
// other funct7 bits must be zero.
func aluOpForOp(funct3, funct7 uint32) (ALUOp, error) {
	base := funct7 &^ funct7Alt
	alt := funct7&funct7Alt != 0
	if base != 0 {
		return 0, fmt.Errorf("reserved funct7 0b%07b for OP funct3=0b%03b", funct7, funct3)
	}
	switch funct3 {
	case 0b000:
		if alt {
			return ALUSub, nil
		}
		return ALUAdd, nil
	case 0b001:
		if alt {
			return 0, fmt.Errorf("reserved funct7 0b%07b for SLL", funct7)
		}
		return ALUSll, nil
	case 0b010:
		if alt {
			return 0, fmt.Errorf("reserved funct7 0b%07b for SLT", funct7)
		}
		return ALUSlt, nil
	case 0b011:
		if alt {
			return 0, fmt.Errorf("reserved funct7 0b%07b for SLTU", funct7)
		}
		return ALUSltu, nil
	case 0b100:
		if alt {
			return 0, fmt.Errorf("reserved funct7 0b%07b for XOR", funct7)
		}
		return ALUXor, nil
	case 0b101:
		if alt {
			return ALUSra, nil
		}
		return ALUSrl, nil
	case 0b110:
		if alt {
			return 0, fmt.Errorf("reserved funct7 0b%07b for OR", funct7)
		}
		return ALUOr, nil
	case 0b111:
		if alt {
			return 0, fmt.Errorf("reserved funct7 0b%07b for AND", funct7)
		}
		return ALUAnd, nil
	default:
		return 0, fmt.Errorf("unreachable OP funct3 0b%03b", funct3)
	}
}

// aluOpForOpImm maps funct3 to an ALUOp for the non-shift OP_IMM
// instructions (funct7 is fixed at 0 for these by construction).
func aluOpForOpImm(funct3 uint32) (ALUOp, error) {
	switch funct3 {
	case 0b000:
		return ALUAdd, nil
	case 0b010:
		return ALUSlt, nil
	case 0b011:
		return ALUSltu, nil
	case 0b100:
		return ALUXor, nil
	case 0b110:
		return ALUOr, nil
	case 0b111:
		return ALUAnd, nil
	default:
		return 0, fmt.Errorf("unreachable OP_IMM funct3 0b%03b", funct3)
	}
}

func decodeBranch(e Encoding) (Instruction, error) {
	var op BranchOp
	switch e.Funct3() {
	case 0b000:
		op = BranchEq
	case 0b001:
		op = BranchNe
	case 0b100:
		op = BranchLt
	case 0b101:
		op = BranchGe
	case 0b110:
		op = BranchLtu
	case 0b111:
		op = BranchGeu
	default:
		return Instruction{}, fmt.Errorf("illegal BRANCH funct3 0b%03b", e.Funct3())
	}
	return Instruction{Kind: KindBranch, Rs1: e.Rs1(), Rs2: e.Rs2(), Imm: e.ImmB(), Branch: op}, nil
}

func decodeLoad(e Encoding) (Instruction, error) {
	var width Width
	var signed bool
	switch e.Funct3() {
	case 0b000:
		width, signed = WidthByte, true // LB
	case 0b001:
		width, signed = WidthHalf, true // LH
	case 0b010:
		width, signed = WidthWord, false // LW
	case 0b100:
		width, signed = WidthByte, false // LBU
	case 0b101:
		width, signed = WidthHalf, false // LHU
	default:
		return Instruction{}, fmt.Errorf("illegal LOAD funct3 0b%03b", e.Funct3())
	}
	return Instruction{
		Kind: KindLoad, Rd: e.Rd(), Rs1: e.Rs1(), Imm: e.ImmI(),
		Width: width, Signed: signed,
	}, nil
}

func decodeStore(e Encoding) (Instruction, error) {
	var width Width
	switch e.Funct3() {
	case 0b000:
		width = WidthByte // SB
	case 0b001:
		width = WidthHalf // SH
	case 0b010:
		width = WidthWord // SW
	default:
		return Instruction{}, fmt.Errorf("illegal STORE funct3 0b%03b", e.Funct3())
	}
	return Instruction{Kind: KindStore, Rs1: e.Rs1(), Rs2: e.Rs2(), Imm: e.ImmS(), Width: width}, nil
}

func decodeJalr(e Encoding) (Instruction, error) {
	if e.Funct3() != 0b000 {
		return Instruction{}, fmt.Errorf("illegal JALR funct3 0b%03b", e.Funct3())
	}
	return Instruction{Kind: KindJalr, Rd: e.Rd(), Rs1: e.Rs1(), Imm: e.ImmI()}, nil
}

func decodeSystem(e Encoding) (Instruction, error) {
	// ECALL and EBREAK are distinguished by the I-immediate: 0 for ECALL,
	// 1 for EBREAK. Any other SYSTEM encoding (CSR access, etc.) is an
	// unimplemented extension and therefore fatal.
	switch e.ImmI() {
	case 0:
		return Instruction{Kind: KindECall}, nil
	case 1:
		return Instruction{Kind: KindEBreak}, nil
	default:
		return Instruction{}, fmt.Errorf("unsupported SYSTEM encoding imm=0x%X", e.ImmI())
	}
}
