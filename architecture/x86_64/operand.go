package x86_64

import "fmt"

// OperandKind tags which case of the Operand variant is populated. The
// source represents operands as three overlapping C unions (an immediate
// field sharing storage with a register field sharing storage with the
// four memory-addressing fields) — a memory operand there cannot actually
// hold base, index, displacement and scale at once without one clobbering
// another. Operand replaces that with a proper tagged sum-type: the tag
// selects which payload fields are meaningful, per spec §9.
type OperandKind int

const (
	KindNone OperandKind = iota
	KindRegister
	KindMemory
	KindImm8
	KindImm16
	KindImm32
	KindImm64
	KindData
	KindSymbol
)

// Operand is a single instruction operand. Immediates always carry their
// value in Imm as a full 64-bit quantity; Kind selects the width emitted.
// Data names a previously registered byte blob; Symbol names an external or
// exported label — both are resolved by name, never by pointer, so the
// instruction buffer stays free of ownership cycles back into the session
// (spec §9).
type Operand struct {
	Kind OperandKind

	Reg Register // valid when Kind == KindRegister

	// Memory addressing, valid when Kind == KindMemory. Index is the zero
	// Register when absent; a memory operand with no Base and no Index
	// encodes as RIP-relative / absolute per §4.3.
	Base  Register
	Index Register
	Scale byte // one of {0, 1, 2, 4, 8}; 0 means "no index"
	Disp  int32

	Imm int64 // valid when Kind is one of KindImm8/16/32/64

	Name string // valid when Kind is KindData or KindSymbol
}

// None is the zero-value "no operand" case, used to pad an instruction's
// fixed 4-operand slots.
var None = Operand{Kind: KindNone}

// NoReg is the sentinel "absent register" value for Memory.Base/Index: an
// encoding of 0xFF can never collide with a real GP/vector register (whose
// widest class, ZMM, only reaches 31), so it safely marks "no base" /
// "no index" independent of the zero Register{} value, which would
// otherwise alias RAX.
var NoReg = Register{Name: "", Type: Register64, Encoding: 0xFF}

// Reg wraps a register as a register operand.
func Reg(r Register) Operand { return Operand{Kind: KindRegister, Reg: r} }

// Mem builds a memory operand: base register, optional index*scale, and a
// signed displacement. Pass NoReg for index when there is none; scale is
// then ignored.
func Mem(base, index Register, scale byte, disp int32) Operand {
	return Operand{Kind: KindMemory, Base: base, Index: index, Scale: scale, Disp: disp}
}

// MemBase builds a base-only (no index) memory operand, e.g. `[rbx]`.
func MemBase(base Register, disp int32) Operand {
	return Operand{Kind: KindMemory, Base: base, Index: NoReg, Disp: disp}
}

// MemAbsolute builds a base-less, index-less memory operand: absolute /
// RIP-relative addressing per §4.3 (mod=00, rm=101, 32-bit displacement).
func MemAbsolute(disp int32) Operand {
	return Operand{Kind: KindMemory, Base: NoReg, Index: NoReg, Disp: disp}
}

// hasBase reports whether a memory operand carries a base register.
func (o Operand) hasBase() bool { return o.Base.Encoding != NoReg.Encoding }

// hasIndex reports whether a memory operand carries an index register.
func (o Operand) hasIndex() bool { return o.Scale != 0 && o.Index.Encoding != NoReg.Encoding }

// Imm8/Imm16/Imm32/Imm64 build an immediate operand of the named width. The
// value is always stored in full 64-bit precision; the Kind tag selects
// how many bytes the encoder emits.
func Imm8(v int64) Operand  { return Operand{Kind: KindImm8, Imm: v} }
func Imm16(v int64) Operand { return Operand{Kind: KindImm16, Imm: v} }
func Imm32(v int64) Operand { return Operand{Kind: KindImm32, Imm: v} }
func Imm64(v int64) Operand { return Operand{Kind: KindImm64, Imm: v} }

// DataRef names a previously registered data-section blob.
func DataRef(name string) Operand { return Operand{Kind: KindData, Name: name} }

// SymbolRef names an external or exported symbol.
func SymbolRef(name string) Operand { return Operand{Kind: KindSymbol, Name: name} }

// IsMemory reports whether the operand is a memory reference.
func (o Operand) IsMemory() bool { return o.Kind == KindMemory }

// IsRegister reports whether the operand is a register reference.
func (o Operand) IsRegister() bool { return o.Kind == KindRegister }

// IsImmediate reports whether the operand is one of the four immediate
// widths.
func (o Operand) IsImmediate() bool {
	switch o.Kind {
	case KindImm8, KindImm16, KindImm32, KindImm64:
		return true
	default:
		return false
	}
}

// String renders an operand for debug output (instructions.Buffer.Debug
// and similar ad hoc dumps), not for re-parsing — this library never
// parses text back into operands.
func (o Operand) String() string {
	switch o.Kind {
	case KindRegister:
		return o.Reg.Name
	case KindMemory:
		return "[mem]"
	case KindImm8, KindImm16, KindImm32, KindImm64:
		return fmt.Sprintf("imm(%d)", o.Imm)
	case KindData:
		return "data:" + o.Name
	case KindSymbol:
		return "sym:" + o.Name
	default:
		return "none"
	}
}

// ImmWidth returns the operand's immediate width in bits, or 0 if it is not
// an immediate.
func (o Operand) ImmWidth() int {
	switch o.Kind {
	case KindImm8:
		return 8
	case KindImm16:
		return 16
	case KindImm32:
		return 32
	case KindImm64:
		return 64
	default:
		return 0
	}
}
