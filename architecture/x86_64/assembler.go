package x86_64

import (
	"errors"

	"github.com/spasm/spasm/bytecode"
	"github.com/spasm/spasm/instructions"
	"github.com/spasm/spasm/reloc"
	"github.com/spasm/spasm/symtab"
)

// InstructionBuffer is the ordered (mnemonic, operands) record list this
// architecture's driver walks. It aliases the architecture-agnostic
// instructions.Buffer generic, instantiated over this package's own
// Operand — instructions cannot import x86_64 (x86_64 imports it back for
// the driver below), so the generic alias is how the two packages share a
// concrete type without a cycle.
type InstructionBuffer = instructions.Buffer[Operand]

// NewInstructionBuffer returns an empty InstructionBuffer.
func NewInstructionBuffer() *InstructionBuffer { return instructions.New[Operand]() }

// DiagnosticFunc records a non-fatal or fatal driver diagnostic. fatal
// means the driver stops after this call; spasm.Diagnostics.Record has a
// matching signature so a *spasm.Diagnostics can be passed directly
// without x86_64 importing the spasm package.
type DiagnosticFunc func(kind, message string, fatal bool)

// DataResolver looks up the host address of a previously registered data
// blob or symbol by name, for the JIT driver. It reports ok=false when the
// name is unknown.
type DataResolver func(name string) (address uint64, ok bool)

// StaticAssemble walks instrs in order, encoding each into bc and
// recording symbol bookkeeping in st, per spec §4.6's static driver: every
// Symbol operand is rewritten to Imm32(0) before encoding, then recorded
// as a relocation once the instruction's length (and so its offset) is
// known. A Symbol naming an already-registered intern label is wired as
// an intern fixup instead of an extern/export reference; a Data operand is
// treated the same way a Symbol would be, relocated against the (not
// otherwise modeled) data section — the source leaves this path an
// explicit TODO (spec §9) and this library surfaces the same gap rather
// than inventing a data-section layout the COFF writer (§4.5, .text only)
// has no room for.
//
// Returns false on the first fatal diagnostic (an unmatched instruction or
// invalid operand), leaving bc partially written per spec §7's "stopping
// at the first fatal one".
func StaticAssemble(instrs *InstructionBuffer, bc *bytecode.Buffer, st *symtab.Table, diag DiagnosticFunc) bool {
	for _, instr := range instrs.All() {
		operands := append([]Operand(nil), instr.Operands...)
		var relocName string
		var hasReloc bool

		for i, op := range operands {
			switch op.Kind {
			case KindSymbol, KindData:
				relocName, hasReloc = op.Name, true
				operands[i] = Imm32(0)
			}
		}

		encoded, err := Encode(instr.Mnemonic, operands)
		if err != nil {
			if diag != nil {
				diag("EncodingUnknown", err.Error(), true)
			}
			return false
		}

		bc.PushBack(encoded...)

		if hasReloc {
			offset := bc.Size() - 4
			recordSymbolRef(st, relocName, offset, diag)
		}
	}

	if st.NumExports() == 0 {
		if err := st.AddExport("main", 0); err != nil && diag != nil {
			kind := "DuplicateExport"
			if errors.Is(err, symtab.ErrSymbolKindConflict) {
				kind = "InvalidOperand"
			}
			diag(kind, err.Error(), false)
		}
		if diag != nil {
			diag("SyntheticMain", "no export symbols defined; synthesizing \"main\" at offset 0", false)
		}
	}

	resolveInternFixups(st, bc, diag)
	return true
}

// JITAssemble walks instrs in order like StaticAssemble, but resolves
// Symbol and Data operands directly to host addresses via resolve rather
// than recording linker relocations, per spec §4.6's JIT driver. resolve
// is the callback spec §9 calls for: "(name) → host_address", covering
// both data blobs and the external symbols the source's JIT path leaves
// unresolved.
func JITAssemble(instrs *InstructionBuffer, bc *bytecode.Buffer, st *symtab.Table, resolve DataResolver, diag DiagnosticFunc) bool {
	for _, instr := range instrs.All() {
		operands := append([]Operand(nil), instr.Operands...)
		var internName string
		var hasInternRef bool

		for i, op := range operands {
			switch op.Kind {
			case KindSymbol:
				if _, ok := st.Intern(op.Name); ok {
					internName, hasInternRef = op.Name, true
					operands[i] = Imm32(0)
					continue
				}
				fallthrough
			case KindData:
				addr, ok := resolve(op.Name)
				if !ok {
					if diag != nil {
						diag("InvalidOperand", "unresolved symbol or data reference: "+op.Name, true)
					}
					return false
				}
				operands[i] = Imm64(int64(addr))
			}
		}

		encoded, err := Encode(instr.Mnemonic, operands)
		if err != nil {
			if diag != nil {
				diag("EncodingUnknown", err.Error(), true)
			}
			return false
		}
		bc.PushBack(encoded...)

		if hasInternRef {
			offset := bc.Size() - 4
			if err := st.AddInternRef(internName, offset, 4); err != nil && diag != nil {
				diag("UnknownIntern", err.Error(), false)
			}
		}
	}

	resolveInternFixups(st, bc, diag)
	return true
}

// recordSymbolRef wires a rewritten Symbol/Data operand's relocation into
// the symbol table, choosing intern, export, or (falling through to,
// auto-creating) extern — in that order — since Operand has a single
// Symbol tag covering all three of spec §3's symbol categories.
func recordSymbolRef(st *symtab.Table, name string, offset int, diag DiagnosticFunc) {
	if _, ok := st.Intern(name); ok {
		if err := st.AddInternRef(name, offset, 4); err != nil && diag != nil {
			diag("UnknownIntern", err.Error(), false)
		}
		return
	}
	if _, ok := st.Export(name); ok {
		if err := st.AddExportRef(name, offset, int(reloc.REL32)); err != nil && diag != nil {
			diag("UnknownExport", err.Error(), false)
		}
		return
	}
	if err := st.AddExtern(name, offset, int(reloc.REL32)); err != nil && diag != nil {
		diag("InvalidOperand", err.Error(), false)
	}
}

// resolveInternFixups patches every intern ref's displacement now that
// every label's final offset is known, per spec §4.4: `start - (ref_offset
// + rel_size)` as a signed little-endian value of rel_size bytes.
func resolveInternFixups(st *symtab.Table, bc *bytecode.Buffer, diag DiagnosticFunc) {
	for _, in := range st.Interns() {
		for _, ref := range in.Refs {
			disp := int32(in.StartOffset - (ref.Offset + ref.Kind))
			switch ref.Kind {
			case 1:
				bc.PatchAt(ref.Offset, byte(int8(disp)))
			case 4:
				v := uint32(disp)
				bc.PatchAt(ref.Offset, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
			default:
				if diag != nil {
					diag("InvalidOperand", "intern fixup with unsupported width", false)
				}
			}
		}
	}
}
