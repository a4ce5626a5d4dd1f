package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archrv/rv5sim/insts"
	"github.com/archrv/rv5sim/timing/pipeline"
)

var _ = Describe("Occupancy", func() {
	var program []*insts.Instruction
	var occ *pipeline.Occupancy

	BeforeEach(func() {
		program = []*insts.Instruction{
			{Assembly: "addi x1, x0, 5"},
			{Assembly: "addi x2, x0, 10"},
		}
		occ = pipeline.NewOccupancy(program)
	})

	It("preallocates one entry per instruction, keyed by PC, with FirstCycle -1", func() {
		entries := occ.Entries()
		Expect(entries).To(HaveLen(2))
		Expect(entries[0].PC).To(Equal(uint32(0)))
		Expect(entries[1].PC).To(Equal(uint32(4)))
		Expect(entries[0].FirstCycle).To(Equal(-1))
	})

	It("records a dash for a slot untouched this cycle", func() {
		occ.RecordTick(map[uint32][]string{0: {"IF"}})
		entries := occ.Entries()
		Expect(entries[0].Stages).To(Equal([]string{"IF"}))
		Expect(entries[1].Stages).To(Equal([]string{"-"}))
	})

	It("sets FirstCycle on the first non-dash tag", func() {
		occ.RecordTick(map[uint32][]string{})
		occ.RecordTick(map[uint32][]string{0: {"IF"}})
		Expect(occ.Entries()[0].FirstCycle).To(Equal(1))
	})

	It("records a single tag as-is", func() {
		occ.RecordTick(map[uint32][]string{0: {"ID"}})
		Expect(occ.Entries()[0].Stages).To(Equal([]string{"ID"}))
	})

	It("joins multiple same-cycle tags into a slash composite", func() {
		occ.RecordTick(map[uint32][]string{0: {"IF"}})
		occ.RecordTick(map[uint32][]string{0: {"IF", "ID"}})
		Expect(occ.Entries()[0].Stages).To(Equal([]string{"IF", "IF/ID"}))
	})

	It("compresses a composite to a dash when it repeats the previous cycle's tag", func() {
		occ.RecordTick(map[uint32][]string{0: {"IF", "ID"}})
		occ.RecordTick(map[uint32][]string{0: {"IF", "ID"}})
		stages := occ.Entries()[0].Stages
		Expect(stages[0]).To(Equal("IF/ID"))
		Expect(stages[1]).To(Equal("-"))
	})

	It("renders a header, dashed separator, and one row per slot", func() {
		occ.RecordTick(map[uint32][]string{0: {"IF"}})
		occ.RecordTick(map[uint32][]string{0: {"ID"}, 4: {"IF"}})
		out := occ.Render()
		Expect(out).To(ContainSubstring("Instruction (PC)"))
		Expect(out).To(ContainSubstring("addi x1, x0, 5 (0)"))
		Expect(out).To(ContainSubstring("addi x2, x0, 10 (4)"))
		Expect(out).To(ContainSubstring("C0"))
		Expect(out).To(ContainSubstring("C1"))
	})
})
