package pipeline

import "github.com/archrv/rv5sim/insts"

// Variant is the capability set that distinguishes the Non-Forwarding and
// Forwarding pipeline variants. Both share the same Engine and datapath;
// only hazard detection, EX-stage operand sourcing, and which stage
// resolves branches differ between them.
type Variant interface {
	// Name identifies the variant for diagnostics.
	Name() string

	// DetectHazards runs after WB, MEM, and EX have executed for this
	// tick (so it observes those latches already mutated this tick). It
	// returns whether the tick must stall, and — for the forwarding
	// variant's load-use case — clears ID/EX itself to materialize the
	// bubble immediately.
	DetectHazards(e *Engine) bool

	// ForwardOperands returns the RS1/RS2 values EX should use this
	// tick for the instruction currently in ID/EX, applying this
	// variant's forwarding rule (or none, for non-forwarding).
	ForwardOperands(e *Engine) (rs1, rs2 int32)

	// ResolvesBranchInID reports whether this variant evaluates
	// branch/jump targets and conditions during the ID stage (true) or
	// defers resolution to EX (false).
	ResolvesBranchInID() bool
}

// producesInto reports whether the instruction held in producer writes a
// register that consumer actually reads as rs1 or rs2.
func producesInto(producer *Latch, consumer *insts.Instruction) bool {
	if !producer.Valid || producer.Inst == nil || !producer.Inst.HasRd() {
		return false
	}
	rd := producer.Inst.Rd
	if rd == 0 {
		return false
	}
	if rd == consumer.Rs1 {
		return true
	}
	return rd == consumer.Rs2 && consumer.ReadsRs2()
}

// forwardedValue extracts the write-back value a latch will contribute:
// the sized load result for loads, otherwise the ALU result.
func forwardedValue(l *Latch) int32 {
	if l.Inst.IsLoad() {
		return l.ReadData
	}
	return l.ALUResult
}

// NonForwardingVariant stalls ID until every producer that the incoming
// instruction depends on has passed through write-back. It resolves
// branches/jumps in ID with freshly-snapshotted register values.
type NonForwardingVariant struct{}

// Name identifies the variant for diagnostics.
func (NonForwardingVariant) Name() string { return "non-forwarding" }

// DetectHazards stalls when the instruction in IF/ID depends on the rd of
// any of ID/EX, EX/MEM, or MEM/WB (as those latches stand immediately
// after this tick's WB/MEM/EX ran) — the three-latch check from the
// reference simulator's non-forwarding hazard unit.
func (NonForwardingVariant) DetectHazards(e *Engine) bool {
	if !e.ifid.Valid {
		return false
	}
	consumer := e.ifid.Inst
	return producesInto(&e.idex, consumer) ||
		producesInto(&e.exmem, consumer) ||
		producesInto(&e.memwb, consumer)
}

// ForwardOperands returns the plain register-file snapshot taken in ID:
// this variant never forwards, relying instead on the stall above and on
// same-tick WB-then-ID visibility (see DESIGN.md).
func (NonForwardingVariant) ForwardOperands(e *Engine) (int32, int32) {
	return e.idex.RS1Value, e.idex.RS2Value
}

// ResolvesBranchInID reports true: this variant resolves control flow in
// ID.
func (NonForwardingVariant) ResolvesBranchInID() bool { return true }

// ForwardingVariant stalls only for the unavoidable load-use hazard and
// otherwise forwards producer results from MEM/WB into EX. It defers
// branch/jump resolution to EX, using a pending-redirect mailbox consumed
// at the next IF boundary.
type ForwardingVariant struct{}

// Name identifies the variant for diagnostics.
func (ForwardingVariant) Name() string { return "forwarding" }

// DetectHazards stalls only when ID/EX holds a load whose destination the
// incoming instruction needs; when that fires it also clears ID/EX
// immediately so the load-use bubble materializes this very tick.
func (ForwardingVariant) DetectHazards(e *Engine) bool {
	if !e.ifid.Valid || !e.idex.Valid || e.idex.Inst == nil || !e.idex.Inst.IsLoad() {
		return false
	}
	if !producesInto(&e.idex, e.ifid.Inst) {
		return false
	}
	e.idex.Clear()
	return true
}

// ForwardOperands re-reads both operands directly from the register file
// — rather than reusing ID/EX's now possibly-stale snapshot — so that a
// producer two ticks ahead of this consumer, whose write-back already
// landed in the register file earlier this very tick (WB runs before EX
// in tick order), is picked up for free. It then overrides with the
// MEM/WB latch's write-back value when MEM/WB is producing into that
// operand, covering a producer one tick ahead whose result has not yet
// reached the register file. The corresponding EX/MEM forwarding path is
// intentionally not consulted — see DESIGN.md for why the register-file
// read plus the single MEM/WB source together suffice under this
// engine's in-place, same-tick latch mutation.
func (ForwardingVariant) ForwardOperands(e *Engine) (int32, int32) {
	if e.idex.Inst == nil {
		return e.idex.RS1Value, e.idex.RS2Value
	}
	inst := e.idex.Inst
	rs1 := e.regFile.Read(inst.Rs1)
	rs2 := e.regFile.Read(inst.Rs2)

	if producesInto(&e.memwb, inst) {
		if e.memwb.Inst.Rd == inst.Rs1 {
			rs1 = forwardedValue(&e.memwb)
		}
		if inst.ReadsRs2() && e.memwb.Inst.Rd == inst.Rs2 {
			rs2 = forwardedValue(&e.memwb)
		}
	}
	return rs1, rs2
}

// ResolvesBranchInID reports false: this variant resolves control flow in
// EX.
func (ForwardingVariant) ResolvesBranchInID() bool { return false }
