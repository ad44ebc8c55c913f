package asm

// InstructionEncoding selects the prefix family a form's opcode bytes are
// emitted under.
type InstructionEncoding int

const (
	// EncodingLegacy is the plain (no VEX/EVEX) encoding, optionally
	// preceded by a legacy prefix byte and/or REX.
	EncodingLegacy InstructionEncoding = iota
	// EncodingVEX selects the VEX2/VEX3 prefix used by AVX instructions.
	EncodingVEX
	// EncodingEVEX selects the 4-byte EVEX prefix used by AVX-512.
	EncodingEVEX
	// EncodingXOP selects the AMD-specific XOP prefix.
	EncodingXOP
)

// Prefix is a single legacy instruction prefix byte (lock, repeat, segment
// override, operand/address-size override, or the REX prefix base).
type Prefix byte

// InstructionForm represents a specific operand-shape variant of an
// instruction: the table entry §4.2 describes.
type InstructionForm struct {
	Operands  []OperandType       // Operand-type signature, slot by slot.
	Opcode    []byte              // Opcode bytes (up to 4).
	ModRM     bool                // Whether a ModR/M byte is required.
	Imm       bool                // Whether an immediate value follows.
	Encoding  InstructionEncoding // Prefix family.
	REXPrefix byte                // Forced REX bits (0 if none forced).

	// PlusR marks a "+r" form: the destination register's low 3 encoding
	// bits are OR'd directly into the low 3 bits of the last opcode byte,
	// rather than being carried in a ModR/M byte.
	PlusR bool

	// ModRMExt, when non-zero (1-8, biased by one so the zero value means
	// "no extension"), is the opcode-extension digit (/0.../7) placed in
	// ModR/M.reg for instructions whose single register operand is really
	// a sub-opcode selector (e.g. the imm-group forms of ADD/SUB/CMP).
	ModRMExt int

	// RegInModRMSlot and RmInModRMSlot name which operand slot (0-based)
	// supplies ModR/M.reg and ModR/M.rm respectively when a form's operand
	// order doesn't follow the default dest-then-src convention. -1 means
	// "use the encoder's default slot assignment".
	RegInModRMSlot int
	RmInModRMSlot  int

	// PP and MMMMM are the VEX/EVEX pp (mandatory-prefix selector) and
	// mmmmm (opcode map selector) fields.
	PP    byte
	MMMMM byte

	// VectorLen128/256/512 select L (VEX) / L'L (EVEX); none set means the
	// form does not carry a vector-length bit (GP instructions).
	VectorLen int

	// ForceREXW forces REX.W / VEX.W / EVEX.W to 1 regardless of operand
	// widths (e.g. 64-bit GP forms).
	ForceREXW bool

	// CPUFeature names the feature flag gating this form (e.g. "sse",
	// "avx2"); empty means no gating, the case for plain legacy forms.
	CPUFeature string
}

// NoModRMSlot marks RegInModRMSlot/RmInModRMSlot as "use default".
const NoModRMSlot = -1
