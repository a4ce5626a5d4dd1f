package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archrv/rv5sim/emu"
	"github.com/archrv/rv5sim/insts"
	"github.com/archrv/rv5sim/timing/pipeline"
)

func programOf(words ...uint32) []*insts.Instruction {
	program := make([]*insts.Instruction, len(words))
	for i, w := range words {
		program[i] = insts.Decode(w)
	}
	return program
}

func runProgram(variant pipeline.Variant, cycles int, words ...uint32) (*emu.RegisterFile, *pipeline.Engine) {
	regFile := emu.NewRegisterFile()
	dataMem := emu.NewDataMemory()
	engine := pipeline.NewEngine(variant, programOf(words...), regFile, dataMem)
	Expect(engine.Run(cycles)).To(Succeed())
	return regFile, engine
}

var _ = Describe("Engine scenarios", func() {
	Describe("S1: straight-line ALU, both variants", func() {
		words := []uint32{0x00500093, 0x00A00113, 0x002081B3} // addi x1,x0,5; addi x2,x0,10; add x3,x1,x2

		It("forwarding variant needs no stall", func() {
			regFile, engine := runProgram(pipeline.ForwardingVariant{}, 8, words...)
			Expect(regFile.Read(1)).To(Equal(int32(5)))
			Expect(regFile.Read(2)).To(Equal(int32(10)))
			Expect(regFile.Read(3)).To(Equal(int32(15)))
			Expect(engine.Stats().Stalls).To(Equal(uint64(0)))
		})

		It("non-forwarding variant still reaches the correct final state", func() {
			regFile, _ := runProgram(pipeline.NonForwardingVariant{}, 12, words...)
			Expect(regFile.Read(1)).To(Equal(int32(5)))
			Expect(regFile.Read(2)).To(Equal(int32(10)))
			Expect(regFile.Read(3)).To(Equal(int32(15)))
		})
	})

	Describe("S2: load-use stall under forwarding", func() {
		// addi x1,x0,100; sw x1,0(x0); lw x2,0(x0); add x3,x2,x1
		words := []uint32{0x06400093, 0x00102023, 0x00002103, 0x001101B3}

		It("stalls exactly once for the load-use hazard and reaches x3=200", func() {
			regFile, engine := runProgram(pipeline.ForwardingVariant{}, 10, words...)
			Expect(regFile.Read(1)).To(Equal(int32(100)))
			Expect(regFile.Read(2)).To(Equal(int32(100)))
			Expect(regFile.Read(3)).To(Equal(int32(200)))
			Expect(engine.Stats().Stalls).To(Equal(uint64(1)))
		})
	})

	Describe("S3: dependent ALU chain under non-forwarding", func() {
		// addi x1,x0,1; addi x2,x1,1; addi x3,x2,1
		words := []uint32{0x00100093, 0x00108113, 0x00110193}

		It("stalls repeatedly but reaches x1=1, x2=2, x3=3", func() {
			regFile, engine := runProgram(pipeline.NonForwardingVariant{}, 16, words...)
			Expect(regFile.Read(1)).To(Equal(int32(1)))
			Expect(regFile.Read(2)).To(Equal(int32(2)))
			Expect(regFile.Read(3)).To(Equal(int32(3)))
			Expect(engine.Stats().Stalls).To(BeNumerically(">", 0))
		})
	})

	Describe("S4: taken branch flushes the fetched instruction", func() {
		// addi x1,x0,1; beq x1,x1,+8; addi x2,x0,99; addi x3,x0,7
		words := []uint32{0x00100093, 0x00108463, 0x06300113, 0x00700193}

		It("skips the flushed addi x2 under forwarding", func() {
			regFile, engine := runProgram(pipeline.ForwardingVariant{}, 12, words...)
			Expect(regFile.Read(1)).To(Equal(int32(1)))
			Expect(regFile.Read(2)).To(Equal(int32(0)))
			Expect(regFile.Read(3)).To(Equal(int32(7)))
			Expect(engine.Stats().Branches).To(Equal(uint64(1)))
			Expect(engine.Stats().Flushes).To(Equal(uint64(1)))
		})

		It("skips the flushed addi x2 under non-forwarding", func() {
			regFile, _ := runProgram(pipeline.NonForwardingVariant{}, 12, words...)
			Expect(regFile.Read(1)).To(Equal(int32(1)))
			Expect(regFile.Read(2)).To(Equal(int32(0)))
			Expect(regFile.Read(3)).To(Equal(int32(7)))
		})
	})

	Describe("S5: JAL link and flush", func() {
		// jal x1,+8; addi x2,x0,99; addi x3,x0,7
		words := []uint32{0x008000EF, 0x06300113, 0x00700193}

		It("links the return address and skips the flushed addi x2", func() {
			regFile, _ := runProgram(pipeline.ForwardingVariant{}, 10, words...)
			Expect(regFile.Read(1)).To(Equal(int32(4)))
			Expect(regFile.Read(2)).To(Equal(int32(0)))
			Expect(regFile.Read(3)).To(Equal(int32(7)))
		})
	})

	Describe("S6: division edge cases", func() {
		It("INT_MIN / -1 yields quotient INT_MIN, remainder 0", func() {
			// lui x2,0x80000; addi x3,x0,-1; then div x1,x2,x3 in one run and rem x1,x2,x3 in a second run
			divWords := []uint32{0x80000137, 0xFFF00193, 0x0231_40B3}
			regFile, _ := runProgram(pipeline.ForwardingVariant{}, 10, divWords...)
			Expect(regFile.Read(1)).To(Equal(int32(-0x80000000)))

			remWords := []uint32{0x80000137, 0xFFF00193, 0x0231_60B3}
			regFile2, _ := runProgram(pipeline.ForwardingVariant{}, 10, remWords...)
			Expect(regFile2.Read(1)).To(Equal(int32(0)))
		})

		It("division by zero yields quotient -1, remainder the dividend", func() {
			// addi x2,x0,7; addi x4,x0,0; div x1,x2,x4
			words := []uint32{0x00700113, 0x00000213, 0x02414_0B3}
			regFile, _ := runProgram(pipeline.ForwardingVariant{}, 10, words...)
			Expect(regFile.Read(1)).To(Equal(int32(-1)))

			// addi x2,x0,7; addi x4,x0,0; rem x1,x2,x4
			remWords := []uint32{0x00700113, 0x00000213, 0x024160B3}
			regFile2, _ := runProgram(pipeline.ForwardingVariant{}, 10, remWords...)
			Expect(regFile2.Read(1)).To(Equal(int32(7)))
		})
	})
})
