package insts

// Decode extracts fields from a 32-bit RISC-V machine word and classifies
// it by format and opcode. Unknown opcodes decode into an Instruction
// whose Format is FormatUnknown and whose predicates all report false;
// such an instruction executes as an inert NOP (ALU result 0, no write
// back, no memory access).
func Decode(word uint32) *Instruction {
	opcode := word & 0x7F
	inst := &Instruction{
		Word:   word,
		Opcode: opcode,
		Rd:     uint8((word >> 7) & 0x1F),
		Funct3: uint8((word >> 12) & 0x7),
		Rs1:    uint8((word >> 15) & 0x1F),
		Rs2:    uint8((word >> 20) & 0x1F),
		Funct7: uint8((word >> 25) & 0x7F),
	}

	switch opcode {
	case OpcodeR:
		inst.Format = FormatR
	case OpcodeIALU, OpcodeILoad, OpcodeJALR:
		inst.Format = FormatI
		inst.Imm = signExtend(word>>20, 12)
	case OpcodeStore:
		inst.Format = FormatS
		lo := (word >> 7) & 0x1F
		hi := (word >> 25) & 0x7F
		inst.Imm = signExtend((hi<<5)|lo, 12)
	case OpcodeBranch:
		inst.Format = FormatB
		bit11 := (word >> 7) & 0x1
		bits4_1 := (word >> 8) & 0xF
		bits10_5 := (word >> 25) & 0x3F
		bit12 := (word >> 31) & 0x1
		raw := (bit12 << 12) | (bit11 << 11) | (bits10_5 << 5) | (bits4_1 << 1)
		inst.Imm = signExtend(raw, 13)
	case OpcodeLUI, OpcodeAUIPC:
		inst.Format = FormatU
		inst.Imm = int32(word & 0xFFFFF000)
	case OpcodeJAL:
		inst.Format = FormatJ
		bits19_12 := (word >> 12) & 0xFF
		bit11 := (word >> 20) & 0x1
		bits10_1 := (word >> 21) & 0x3FF
		bit20 := (word >> 31) & 0x1
		raw := (bit20 << 20) | (bits19_12 << 12) | (bit11 << 11) | (bits10_1 << 1)
		inst.Imm = signExtend(raw, 21)
	default:
		inst.Format = FormatUnknown
	}

	return inst
}

// signExtend treats the low `bits` bits of v as a two's-complement value
// and sign-extends it to a full int32.
func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}
