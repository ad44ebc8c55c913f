// Package aarch64 is the AArch64 encoding stub spec §1 calls for: a second
// architecture backend is named in the overview, but no encoding table,
// register set, or driver is designed in the source beyond the interface
// the x86_64 package already shows the shape of. This package exists so
// abi.MacOSAarch64 has somewhere to eventually point; it holds no encoder
// yet.
package aarch64

import "github.com/spasm/spasm/internal/asm"

// Architecture is the (currently empty) asm.Architecture implementation for
// AArch64. Every method returns the zero value — there is no instruction
// table, register set, or operand vocabulary to report.
type Architecture struct{}

// New returns the AArch64 Architecture stub.
func New() Architecture { return Architecture{} }

func (Architecture) ArchitectureName() string { return "aarch64" }

func (Architecture) Instructions() map[string]asm.Instruction { return nil }

func (Architecture) IsInstruction(mnemonic string) bool { return false }

func (Architecture) RegisterSet() []string { return nil }

func (Architecture) IsRegister(name string) bool { return false }

func (Architecture) OperandTypes() []asm.OperandType { return nil }

func (Architecture) OperandCounts() []int { return nil }

func (Architecture) IsValidOperandCount(count int) bool { return false }
