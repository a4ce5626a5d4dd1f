package pipeline

import "github.com/archrv/rv5sim/insts"

// funct3 values for the base integer ALU table (R-type and I-type ALU
// immediate share this table).
const (
	funct3ADD  = 0x0 // ADD/SUB/ADDI
	funct3SLL  = 0x1
	funct3SLT  = 0x2
	funct3SLTU = 0x3
	funct3XOR  = 0x4
	funct3SR   = 0x5 // SRL/SRA/SRLI/SRAI
	funct3OR   = 0x6
	funct3AND  = 0x7
)

// funct3 values for the M-extension table.
const (
	funct3MUL    = 0x0
	funct3MULH   = 0x1
	funct3MULHSU = 0x2
	funct3MULHU  = 0x3
	funct3DIV    = 0x4
	funct3DIVU   = 0x5
	funct3REM    = 0x6
	funct3REMU   = 0x7
)

const funct7Alt = 0x20 // selects SUB over ADD, SRA over SRL

// ExecuteALU computes the 32-bit result of an R-type or I-type-ALU-immediate
// instruction given its two operand values (already forwarded, if
// applicable). For R-type M-extension instructions it dispatches to
// ExecuteMulDiv instead.
func ExecuteALU(inst *insts.Instruction, rs1, rs2Or_imm int32) int32 {
	if inst.IsMulDiv() {
		return ExecuteMulDiv(inst, rs1, rs2Or_imm)
	}

	switch inst.Funct3 {
	case funct3ADD:
		if inst.IsR() && inst.Funct7 == funct7Alt {
			return rs1 - rs2Or_imm
		}
		return rs1 + rs2Or_imm
	case funct3SLL:
		return rs1 << uint(rs2Or_imm&0x1F)
	case funct3SLT:
		if rs1 < rs2Or_imm {
			return 1
		}
		return 0
	case funct3SLTU:
		if uint32(rs1) < uint32(rs2Or_imm) {
			return 1
		}
		return 0
	case funct3XOR:
		return rs1 ^ rs2Or_imm
	case funct3SR:
		if inst.Funct7 == funct7Alt {
			return rs1 >> uint(rs2Or_imm&0x1F)
		}
		return int32(uint32(rs1) >> uint(rs2Or_imm&0x1F))
	case funct3OR:
		return rs1 | rs2Or_imm
	case funct3AND:
		return rs1 & rs2Or_imm
	default:
		return 0
	}
}

// ExecuteMulDiv computes the RV32M result for MUL/MULH/MULHSU/MULHU and
// DIV/DIVU/REM/REMU, including the architecturally-defined edge cases for
// division by zero and signed overflow.
func ExecuteMulDiv(inst *insts.Instruction, rs1, rs2 int32) int32 {
	switch inst.Funct3 {
	case funct3MUL:
		return rs1 * rs2
	case funct3MULH:
		return int32((int64(rs1) * int64(rs2)) >> 32)
	case funct3MULHSU:
		return int32((int64(rs1) * int64(uint32(rs2))) >> 32)
	case funct3MULHU:
		return int32((uint64(uint32(rs1)) * uint64(uint32(rs2))) >> 32)
	case funct3DIV:
		if rs2 == 0 {
			return -1
		}
		if rs1 == -0x80000000 && rs2 == -1 {
			return -0x80000000
		}
		return rs1 / rs2
	case funct3DIVU:
		if rs2 == 0 {
			return -1 // all-ones
		}
		return int32(uint32(rs1) / uint32(rs2))
	case funct3REM:
		if rs2 == 0 {
			return rs1
		}
		if rs1 == -0x80000000 && rs2 == -1 {
			return 0
		}
		return rs1 % rs2
	case funct3REMU:
		if rs2 == 0 {
			return rs1
		}
		return int32(uint32(rs1) % uint32(rs2))
	default:
		return 0
	}
}

// EffectiveAddress computes the rs1 + imm address used by loads and
// stores.
func EffectiveAddress(rs1 int32, imm int32) uint32 {
	return uint32(rs1 + imm)
}
