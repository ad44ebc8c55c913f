package spasm

import (
	"github.com/spasm/spasm/abi"
	"github.com/spasm/spasm/architecture/x86_64"
	"github.com/spasm/spasm/bytecode"
	"github.com/spasm/spasm/symtab"
)

// Session owns one assembly run's state: the data/symbol table, the
// instruction buffer, and the bytecode produced from it. Per spec §4.7 a
// session is a pipeline, not a state machine — there is no locking
// discipline, and it must not be shared across goroutines.
type Session struct {
	Data         *symtab.Table
	Instructions *x86_64.InstructionBuffer
	Bytecode     *bytecode.Buffer
	Diagnostics  *Diagnostics
}

// NewSession wires up a fresh data table, instruction buffer, and bytecode
// buffer, the Go equivalent of the source's data_init / instructions_new /
// bytecode_new trio — one call instead of three, since Go has no separate
// alloc-then-init step to model.
func NewSession() *Session {
	return &Session{
		Data:         symtab.New(),
		Instructions: x86_64.NewInstructionBuffer(),
		Bytecode:     bytecode.New(),
		Diagnostics:  NewDiagnostics(),
	}
}

// Push appends one (mnemonic, operands) record, mirroring
// instructions_push_back.
func (s *Session) Push(mnemonic string, operands ...x86_64.Operand) int {
	return s.Instructions.PushBack(mnemonic, operands...)
}

// DebugInstructions renders the instruction buffer as text, mirroring
// instructions_debug.
func (s *Session) DebugInstructions() string {
	return s.Instructions.Debug(func(op x86_64.Operand) string { return op.String() })
}

// StaticAssemblerFunc matches x86_64.StaticAssemble's signature: encode
// instrs into bc, recording relocations/exports/interns in st.
type StaticAssemblerFunc func(instrs *x86_64.InstructionBuffer, bc *bytecode.Buffer, st *symtab.Table, diag x86_64.DiagnosticFunc) bool

// JITAssemblerFunc matches x86_64.JITAssemble's signature: encode instrs
// into bc, resolving Symbol/Data operands to host addresses via resolve.
type JITAssemblerFunc func(instrs *x86_64.InstructionBuffer, bc *bytecode.Buffer, st *symtab.Table, resolve x86_64.DataResolver, diag x86_64.DiagnosticFunc) bool

// staticAssemblers and jitAssemblers are the per-ABI dispatch tables spec
// §5 calls for: get_assembler(abi) / get_jit_assembler(abi). Every x86-64
// ABI shares the one x86_64 driver — the encoder is ABI-agnostic, only the
// register-argument Convention in package abi varies. MacOSAarch64 has no
// driver yet; aarch64 is an unimplemented stub (spec's explicit non-goal).
var staticAssemblers = map[abi.ABI]StaticAssemblerFunc{
	abi.WindowsX64: x86_64.StaticAssemble,
	abi.LinuxX64:   x86_64.StaticAssemble,
	abi.MacOSX64:   x86_64.StaticAssemble,
}

var jitAssemblers = map[abi.ABI]JITAssemblerFunc{
	abi.WindowsX64: x86_64.JITAssemble,
	abi.LinuxX64:   x86_64.JITAssemble,
	abi.MacOSX64:   x86_64.JITAssemble,
}

// GetAssembler returns the static (object-file-targeting) driver for abi, or
// an UnsupportedAbi error if none is registered.
func GetAssembler(a abi.ABI) (StaticAssemblerFunc, error) {
	fn, ok := staticAssemblers[a]
	if !ok {
		return nil, newError(UnsupportedAbi, "no static assembler registered for "+a.String())
	}
	return fn, nil
}

// GetJITAssembler returns the JIT driver for abi, or an UnsupportedAbi
// error if none is registered.
func GetJITAssembler(a abi.ABI) (JITAssemblerFunc, error) {
	fn, ok := jitAssemblers[a]
	if !ok {
		return nil, newError(UnsupportedAbi, "no JIT assembler registered for "+a.String())
	}
	return fn, nil
}
