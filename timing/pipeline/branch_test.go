package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archrv/rv5sim/insts"
	"github.com/archrv/rv5sim/timing/pipeline"
)

func branchInst(funct3 uint8, imm int32) *insts.Instruction {
	return &insts.Instruction{Format: insts.FormatB, Opcode: insts.OpcodeBranch, Funct3: funct3, Imm: imm}
}

var _ = Describe("EvaluateBranchCondition", func() {
	It("BEQ is true when equal", func() {
		Expect(pipeline.EvaluateBranchCondition(branchInst(0, 0), 5, 5)).To(BeTrue())
	})

	It("BNE is true when different", func() {
		Expect(pipeline.EvaluateBranchCondition(branchInst(1, 0), 5, 6)).To(BeTrue())
	})

	It("BLT is signed", func() {
		Expect(pipeline.EvaluateBranchCondition(branchInst(4, 0), -1, 0)).To(BeTrue())
	})

	It("BLTU is unsigned", func() {
		Expect(pipeline.EvaluateBranchCondition(branchInst(6, 0), -1, 0)).To(BeFalse())
	})

	It("BGE is signed", func() {
		Expect(pipeline.EvaluateBranchCondition(branchInst(5, 0), 0, -1)).To(BeTrue())
	})

	It("BGEU is unsigned", func() {
		Expect(pipeline.EvaluateBranchCondition(branchInst(7, 0), 0, -1)).To(BeFalse())
	})
})

var _ = Describe("ResolveControlFlow", func() {
	It("computes the branch target as pc + imm when taken", func() {
		taken, target := pipeline.ResolveControlFlow(branchInst(0, 8), 100, 5, 5)
		Expect(taken).To(BeTrue())
		Expect(target).To(Equal(uint32(108)))
	})

	It("reports not-taken with a zero target when the condition fails", func() {
		taken, target := pipeline.ResolveControlFlow(branchInst(0, 8), 100, 5, 6)
		Expect(taken).To(BeFalse())
		Expect(target).To(Equal(uint32(0)))
	})

	It("JAL is always taken, target pc + imm", func() {
		jal := &insts.Instruction{Format: insts.FormatJ, Opcode: insts.OpcodeJAL, Imm: 16}
		taken, target := pipeline.ResolveControlFlow(jal, 4, 0, 0)
		Expect(taken).To(BeTrue())
		Expect(target).To(Equal(uint32(20)))
	})

	It("JALR is always taken, target (rs1+imm) with bit 0 cleared", func() {
		jalr := &insts.Instruction{Format: insts.FormatI, Opcode: insts.OpcodeJALR, Imm: 5}
		taken, target := pipeline.ResolveControlFlow(jalr, 0, 10, 0)
		Expect(taken).To(BeTrue())
		Expect(target).To(Equal(uint32(14)))
	})
})
