package pipeline

import (
	"fmt"

	"github.com/archrv/rv5sim/emu"
	"github.com/archrv/rv5sim/insts"
)

// funct3 values for sized loads and stores.
const (
	funct3LB  = 0x0
	funct3LH  = 0x1
	funct3LW  = 0x2
	funct3LBU = 0x4
	funct3LHU = 0x5

	funct3SB = 0x0
	funct3SH = 0x1
	funct3SW = 0x2
)

// Stats reports run-level counters gathered while ticking an Engine.
type Stats struct {
	Cycles       uint64
	Instructions uint64
	Stalls       uint64
	Branches     uint64
	Flushes      uint64
}

// Engine orchestrates the five-stage pipeline for one Variant. It owns
// the four inter-stage latches, the architectural register file and data
// memory, and the occupancy diagram being built as it runs.
type Engine struct {
	variant Variant

	regFile *emu.RegisterFile
	dataMem *emu.DataMemory
	instMem *emu.InstructionMemory

	pc    uint32
	stall bool

	ifid, idex, exmem, memwb Latch

	redirectPending bool
	redirectTarget  uint32

	occupancy *Occupancy
	stats     Stats
}

// NewEngine builds an Engine for the given variant over the given decoded
// program, register file, and data memory.
func NewEngine(variant Variant, program []*insts.Instruction, regFile *emu.RegisterFile, dataMem *emu.DataMemory) *Engine {
	return &Engine{
		variant:   variant,
		regFile:   regFile,
		dataMem:   dataMem,
		instMem:   emu.NewInstructionMemory(program),
		occupancy: NewOccupancy(program),
	}
}

// PC returns the current program counter.
func (e *Engine) PC() uint32 { return e.pc }

// Stats returns a copy of the engine's run-level counters.
func (e *Engine) Stats() Stats { return e.stats }

// Occupancy returns the occupancy diagram accumulated so far.
func (e *Engine) Occupancy() *Occupancy { return e.occupancy }

// Run ticks the engine forward by the given number of cycles, stopping
// early and returning the first error encountered (an out-of-range data
// memory access).
func (e *Engine) Run(cycles int) error {
	for c := 0; c < cycles; c++ {
		if err := e.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// Tick advances the pipeline by exactly one clock cycle, running every
// stage in the order WB, MEM, EX, hazard detection, ID, IF, then updating
// the occupancy diagram. See the package doc comment and DESIGN.md for
// why the four latches are mutated in place rather than through a
// double-buffered shadow-register swap.
func (e *Engine) Tick() error {
	wbSnap, memSnap, exSnap, idSnap := e.memwb, e.exmem, e.idex, e.ifid

	e.stageWB()
	if err := e.stageMEM(); err != nil {
		return err
	}
	e.stageEX()

	e.stall = e.variant.DetectHazards(e)
	if e.stall {
		e.stats.Stalls++
	}

	e.stageID()
	fetchedPC, fetched := e.stageIF()

	e.stats.Cycles++

	tags := make(map[uint32][]string, 5)
	if wbSnap.Valid {
		tags[wbSnap.PC] = append(tags[wbSnap.PC], "WB")
		e.stats.Instructions++
	}
	if memSnap.Valid {
		tags[memSnap.PC] = append(tags[memSnap.PC], "MEM")
	}
	if exSnap.Valid {
		tags[exSnap.PC] = append(tags[exSnap.PC], "EX")
	}
	if idSnap.Valid {
		tags[idSnap.PC] = append(tags[idSnap.PC], "ID")
	}
	if fetched && e.instMem.InBounds(fetchedPC) {
		tags[fetchedPC] = append(tags[fetchedPC], "IF")
	}
	e.occupancy.RecordTick(tags)

	return nil
}

// stageWB commits MEM/WB's result to the register file, if the held
// instruction writes one.
func (e *Engine) stageWB() {
	if !e.memwb.Valid || e.memwb.Inst == nil || !e.memwb.Inst.HasRd() {
		return
	}
	value := e.memwb.ALUResult
	if e.memwb.Inst.IsLoad() {
		value = e.memwb.ReadData
	}
	e.regFile.Write(e.memwb.Inst.Rd, value)
}

// stageMEM performs the sized load or store for EX/MEM's instruction and
// propagates to MEM/WB.
func (e *Engine) stageMEM() error {
	if !e.exmem.Valid {
		e.memwb.Clear()
		return nil
	}

	inst := e.exmem.Inst
	addr := uint32(e.exmem.ALUResult)
	var readData int32

	switch {
	case inst.IsLoad():
		v, err := e.loadSized(addr, inst.Funct3)
		if err != nil {
			return fmt.Errorf("load at pc=0x%x: %w", e.exmem.PC, err)
		}
		readData = v
	case inst.IsStore():
		if err := e.storeSized(addr, inst.Funct3, e.exmem.RS2Value); err != nil {
			return fmt.Errorf("store at pc=0x%x: %w", e.exmem.PC, err)
		}
	}

	e.memwb = Latch{
		Valid:     true,
		Inst:      inst,
		PC:        e.exmem.PC,
		ALUResult: e.exmem.ALUResult,
		ReadData:  readData,
	}
	return nil
}

func (e *Engine) loadSized(addr uint32, funct3 uint8) (int32, error) {
	switch funct3 {
	case funct3LB:
		v, err := e.dataMem.Read8(addr)
		return int32(int8(v)), err
	case funct3LH:
		v, err := e.dataMem.Read16(addr)
		return int32(int16(v)), err
	case funct3LW:
		v, err := e.dataMem.Read32(addr)
		return int32(v), err
	case funct3LBU:
		v, err := e.dataMem.Read8(addr)
		return int32(v), err
	case funct3LHU:
		v, err := e.dataMem.Read16(addr)
		return int32(v), err
	default:
		return 0, nil
	}
}

func (e *Engine) storeSized(addr uint32, funct3 uint8, value int32) error {
	switch funct3 {
	case funct3SB:
		return e.dataMem.Write8(addr, uint8(value))
	case funct3SH:
		return e.dataMem.Write16(addr, uint16(value))
	case funct3SW:
		return e.dataMem.Write32(addr, uint32(value))
	default:
		return nil
	}
}

// stageEX computes ID/EX's ALU (or multiply/divide, or effective address,
// or link value) result, forwarding operands per the variant, and
// propagates to EX/MEM. The forwarding variant also resolves branches and
// jumps here, recording a pending redirect on a taken transfer.
func (e *Engine) stageEX() {
	if !e.idex.Valid {
		e.exmem.Clear()
		return
	}

	inst := e.idex.Inst
	rs1, rs2 := e.variant.ForwardOperands(e)

	var aluResult int32
	switch {
	case inst.IsLoad() || inst.IsStore():
		aluResult = int32(EffectiveAddress(rs1, inst.Imm))
	case inst.Opcode == insts.OpcodeLUI:
		aluResult = inst.Imm
	case inst.Opcode == insts.OpcodeAUIPC:
		aluResult = int32(e.idex.PC) + inst.Imm
	case inst.IsJump():
		aluResult = int32(e.idex.PC) + 4
	case inst.IsBranch():
		// no write-back value
	case inst.Format == insts.FormatUnknown:
		// unknown opcode: inert, ALU result stays 0
	case inst.IsI() && inst.Opcode == insts.OpcodeIALU:
		aluResult = ExecuteALU(inst, rs1, inst.Imm)
	default:
		aluResult = ExecuteALU(inst, rs1, rs2)
	}

	branchTaken, branchTarget := e.idex.BranchTaken, e.idex.BranchTarget
	if !e.variant.ResolvesBranchInID() && (inst.IsBranch() || inst.IsJump()) {
		taken, target := ResolveControlFlow(inst, e.idex.PC, rs1, rs2)
		branchTaken, branchTarget = taken, target
		if taken {
			e.redirectPending = true
			e.redirectTarget = target
			e.stats.Branches++
		}
	}

	e.exmem = Latch{
		Valid:          true,
		Inst:           inst,
		PC:             e.idex.PC,
		ALUResult:      aluResult,
		RS2Value:       rs2,
		IsBranchOrJump: e.idex.IsBranchOrJump,
		BranchTaken:    branchTaken,
		BranchTarget:   branchTarget,
	}
}

// stageID snapshots register operands for IF/ID's instruction into ID/EX.
// If stall is set it instead injects a bubble, leaving IF/ID untouched so
// the same instruction re-presents next tick. The non-forwarding variant
// also resolves branches/jumps here, flushing IF/ID and redirecting PC
// immediately on a taken transfer.
func (e *Engine) stageID() {
	if e.stall {
		e.idex.Clear()
		return
	}
	if !e.ifid.Valid {
		e.idex.Clear()
		return
	}

	inst := e.ifid.Inst
	rs1 := e.regFile.Read(inst.Rs1)
	rs2 := e.regFile.Read(inst.Rs2)

	next := Latch{
		Valid:          true,
		Inst:           inst,
		PC:             e.ifid.PC,
		RS1Value:       rs1,
		RS2Value:       rs2,
		IsBranchOrJump: inst.IsBranch() || inst.IsJump(),
	}

	if e.variant.ResolvesBranchInID() && (inst.IsBranch() || inst.IsJump()) {
		taken, target := ResolveControlFlow(inst, e.ifid.PC, rs1, rs2)
		next.BranchTaken = taken
		next.BranchTarget = target
		if taken {
			e.ifid.Clear()
			e.pc = target
			e.stats.Branches++
		}
	}

	e.idex = next
}

// stageIF fetches the instruction at the current PC into IF/ID and
// advances PC by 4, unless stall is set (in which case IF/ID holds and no
// fetch occurs). Before fetching, it consumes any pending redirect left
// by a forwarding-variant EX-stage branch resolution: IF/ID and ID/EX are
// cleared and PC is overwritten with the redirect target, so the
// corrected fetch happens this same tick. Returns the PC actually
// fetched and whether a fetch occurred.
func (e *Engine) stageIF() (uint32, bool) {
	if e.stall {
		return 0, false
	}

	if e.redirectPending {
		e.ifid.Clear()
		e.idex.Clear()
		e.pc = e.redirectTarget
		e.redirectPending = false
		e.stats.Flushes++
	}

	fetchPC := e.pc
	inst := e.instMem.Fetch(fetchPC)
	e.ifid = Latch{Valid: true, Inst: inst, PC: fetchPC}
	e.pc += 4

	return fetchPC, true
}
