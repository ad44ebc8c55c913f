package x86_64

import "github.com/spasm/spasm/internal/asm"

// Architecture is the x86_64 package's asm.Architecture implementation,
// wired directly to the live instruction and register tables rather than
// the empty stand-ins an earlier draft of this package shipped.
type Architecture struct{}

// New returns the x86_64 Architecture.
func New() Architecture { return Architecture{} }

func (Architecture) ArchitectureName() string { return "x86_64" }

func (Architecture) Instructions() map[string]asm.Instruction { return InstructionsByMnemonic }

func (Architecture) IsInstruction(mnemonic string) bool {
	_, ok := InstructionsByMnemonic[mnemonic]
	return ok
}

func (Architecture) RegisterSet() []string {
	names := make([]string, 0, len(RegistersByName))
	for name := range RegistersByName {
		names = append(names, name)
	}
	return names
}

func (Architecture) IsRegister(name string) bool {
	_, ok := RegistersByName[name]
	return ok
}

func (Architecture) OperandTypes() []asm.OperandType {
	return []asm.OperandType{
		OperandNone,
		OperandReg8, OperandReg16, OperandReg32, OperandReg64, OperandReg128,
		OperandImm8, OperandImm16, OperandImm32, OperandImm64,
		OperandMem, OperandMem8, OperandMem16, OperandMem32, OperandMem64,
		OperandRel8, OperandRel32,
		OperandRegMem8, OperandRegMem16, OperandRegMem32, OperandRegMem64, OperandRegMem128,
	}
}

func (Architecture) OperandCounts() []int {
	return []int{0, OperandCountOne, OperandCountTwo, OperandCountThree}
}

func (Architecture) IsValidOperandCount(count int) bool {
	return count >= 0 && count <= OperandCountThree
}
