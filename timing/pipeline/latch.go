// Package pipeline implements the five-stage in-order RV32IM pipeline
// engine shared by both hazard-handling variants:
//
//   - Fetch (IF): read the instruction at the current PC from
//     instruction memory.
//   - Decode (ID): snapshot source-register values, set up branch
//     metadata, and (non-forwarding variant only) resolve branches/jumps.
//   - Execute (EX): run the ALU or multiply/divide unit, and
//     (forwarding variant only) resolve branches/jumps using forwarded
//     operands.
//   - Memory (MEM): perform loads and stores against data memory.
//   - Writeback (WB): commit the instruction's result to the register
//     file.
//
// A single Latch type is used at all four inter-stage boundaries
// (IF/ID, ID/EX, EX/MEM, MEM/WB); the engine mutates its four latches in
// place and in strict reverse order within one Tick, so that each stage
// observes its upstream latch exactly as the previous tick left it, while
// the hazard unit (which runs immediately after WB/MEM/EX) observes those
// same latches already updated by this tick's WB/MEM/EX. See DESIGN.md
// for why this in-place, single-buffer model is required instead of a
// double-buffered shadow-register swap.
package pipeline

import "github.com/archrv/rv5sim/insts"

// Latch is the record carried across one of the four inter-stage
// boundaries. Valid is false when the latch holds a bubble; in that case
// every other field is its zero value and Inst is nil.
type Latch struct {
	Valid bool
	Inst  *insts.Instruction
	PC    uint32

	ALUResult int32
	ReadData  int32

	RS1Value int32
	RS2Value int32

	IsBranchOrJump bool
	BranchTaken    bool
	BranchTarget   uint32
}

// Clear resets the latch to an empty bubble.
func (l *Latch) Clear() {
	*l = Latch{}
}
