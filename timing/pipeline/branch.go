package pipeline

import "github.com/archrv/rv5sim/insts"

// funct3 values for the B-type condition table.
const (
	funct3BEQ  = 0x0
	funct3BNE  = 0x1
	funct3BLT  = 0x4
	funct3BGE  = 0x5
	funct3BLTU = 0x6
	funct3BGEU = 0x7
)

// EvaluateBranchCondition reports whether a B-type branch's condition
// holds, given its funct3 field and the two (already forwarded, if
// applicable) operand values.
func EvaluateBranchCondition(inst *insts.Instruction, rs1, rs2 int32) bool {
	switch inst.Funct3 {
	case funct3BEQ:
		return rs1 == rs2
	case funct3BNE:
		return rs1 != rs2
	case funct3BLT:
		return rs1 < rs2
	case funct3BGE:
		return rs1 >= rs2
	case funct3BLTU:
		return uint32(rs1) < uint32(rs2)
	case funct3BGEU:
		return uint32(rs1) >= uint32(rs2)
	default:
		return false
	}
}

// ResolveControlFlow computes whether a branch/jump instruction in pc is
// taken and, if so, its target, given the instruction's PC and its
// (already forwarded, if applicable) rs1/rs2 operand values. Branches are
// taken according to EvaluateBranchCondition; jumps are always taken.
func ResolveControlFlow(inst *insts.Instruction, pc uint32, rs1, rs2 int32) (taken bool, target uint32) {
	switch {
	case inst.IsBranch():
		if !EvaluateBranchCondition(inst, rs1, rs2) {
			return false, 0
		}
		return true, uint32(int64(pc) + int64(inst.Imm))
	case inst.Opcode == insts.OpcodeJAL:
		return true, uint32(int64(pc) + int64(inst.Imm))
	case inst.Opcode == insts.OpcodeJALR:
		return true, (uint32(rs1+inst.Imm)) &^ 1
	default:
		return false, 0
	}
}
