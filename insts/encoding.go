package insts

// Encoding is an opaque 32-bit RV32 instruction word with bit-field
// accessors. Field positions are inclusive ranges, per the base 32-bit
// encoding (bits [1:0] are always 0b11 and are not part of the opcode
// table):
//
//	opcode = bits [6:2]
//	rd     = bits [11:7]
//	funct3 = bits [14:12]
//	rs1    = bits [19:15]
//	rs2    = bits [24:20]
//	funct7 = bits [31:25]
type Encoding uint32

// Opcode returns the 5-bit opcode field, bits [6:2].
func (e Encoding) Opcode() uint32 {
	return (uint32(e) >> 2) & 0x1F
}

// Rd returns the destination register field, bits [11:7].
func (e Encoding) Rd() uint8 {
	return uint8((uint32(e) >> 7) & 0x1F)
}

// Funct3 returns the 3-bit function field, bits [14:12].
func (e Encoding) Funct3() uint32 {
	return (uint32(e) >> 12) & 0x7
}

// Rs1 returns the first source register field, bits [19:15].
func (e Encoding) Rs1() uint8 {
	return uint8((uint32(e) >> 15) & 0x1F)
}

// Rs2 returns the second source register field, bits [24:20].
func (e Encoding) Rs2() uint8 {
	return uint8((uint32(e) >> 20) & 0x1F)
}

// Funct7 returns the 7-bit function field, bits [31:25].
func (e Encoding) Funct7() uint32 {
	return (uint32(e) >> 25) & 0x7F
}

// IsCompressed reports whether bits [1:0] are not 0b11 — the marker for a
// 16-bit compressed instruction, which this decoder does not support and
// treats as fatal.
func (e Encoding) IsCompressed() bool {
	return uint32(e)&0x3 != 0x3
}

// ImmI reconstructs the sign-extended I-format immediate: imm[11:0] =
// inst[31:20].
func (e Encoding) ImmI() int32 {
	return int32(e) >> 20
}

// ImmS reconstructs the sign-extended S-format immediate: imm[11:5] =
// inst[31:25], imm[4:0] = inst[11:7].
func (e Encoding) ImmS() int32 {
	hi := (uint32(e) >> 25) & 0x7F
	lo := (uint32(e) >> 7) & 0x1F
	raw := (hi << 5) | lo
	return signExtend(raw, 12)
}

// ImmB reconstructs the sign-extended B-format immediate: imm[12|10:5|4:1|11]
// = inst[31|30:25|11:8|7], imm[0] = 0.
func (e Encoding) ImmB() int32 {
	w := uint32(e)
	b12 := (w >> 31) & 0x1
	b11 := (w >> 7) & 0x1
	b10_5 := (w >> 25) & 0x3F
	b4_1 := (w >> 8) & 0xF
	raw := (b12 << 12) | (b11 << 11) | (b10_5 << 5) | (b4_1 << 1)
	return signExtend(raw, 13)
}

// ImmU reconstructs the U-format immediate: imm[31:12] = inst[31:12], low
// 12 bits zero. The result is returned already shifted into its final bit
// position (the "raw, unshifted form" language in the format table refers
// to the field not being multiplied by anything beyond its natural bit
// position).
func (e Encoding) ImmU() uint32 {
	return uint32(e) & 0xFFFFF000
}

// ImmJ reconstructs the sign-extended J-format immediate:
// imm[20|10:1|11|19:12] = inst[31|30:21|20|19:12], imm[0] = 0.
func (e Encoding) ImmJ() int32 {
	w := uint32(e)
	b20 := (w >> 31) & 0x1
	b19_12 := (w >> 12) & 0xFF
	b11 := (w >> 20) & 0x1
	b10_1 := (w >> 21) & 0x3FF
	raw := (b20 << 20) | (b19_12 << 12) | (b11 << 11) | (b10_1 << 1)
	return signExtend(raw, 21)
}

// signExtend sign-extends the low `bits` bits of raw to a full 32-bit
// signed value.
func signExtend(raw uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(raw<<shift) >> shift
}
