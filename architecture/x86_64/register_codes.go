package x86_64

// This file implements the operand-classification helpers of spec §4.1.
// The source computes these from a single dense register enum via
// `(code-1) mod 16` / `(code-1) div 16`; Register here already separates
// those two components into Type (width class) and Encoding (the per-class
// number: 0-15, or 0-31 for ZMM), so RegCode/RegWidthBits below are a
// direct, not a derived,
// read of the same information — no behavioral difference, just a
// different field split.

// RegCode returns the 4-bit hardware register number: low 3 bits go in
// ModR/M/SIB/opcode+r, the high bit is the REX/VEX/EVEX extension bit.
func RegCode(r Register) byte { return r.Encoding & 0x0f }

// RegLow3 returns the 3 bits of RegCode that are placed directly into
// ModR/M.reg, ModR/M.rm, SIB.base, SIB.index, or an opcode's low 3 bits.
func RegLow3(r Register) byte { return r.Encoding & 0x07 }

// RegExtended reports whether the register requires an extension bit
// (REX.R/X/B or the VEX/EVEX equivalents) to be addressed.
func RegExtended(r Register) bool { return r.Encoding&0x08 != 0 }

// RegWidthBits returns the width of r in bits: 8 << class, per §4.1, except
// opmask registers (not modeled here — this set has no K0..K7 yet) which
// would form their own class.
func RegWidthBits(r Register) int {
	switch r.Type {
	case Register8:
		return 8
	case Register16:
		return 16
	case Register32:
		return 32
	case Register64:
		return 64
	case RegisterMMX:
		return 64
	case RegisterXMM:
		return 128
	case RegisterYMM:
		return 256
	case RegisterZMM:
		return 512
	default:
		return 0
	}
}

// requiresREXForByteAccess reports whether r is one of SPL/BPL/SIL/DIL —
// the 8-bit registers that alias the same encoding as AH/BH/CH/DH but
// require a REX prefix (any REX, even an empty one) to select the new
// low-byte form instead of the legacy high-byte one. Register encoding
// alone cannot distinguish them (both groups sit at encoding 4-7), so this
// checks the register's name directly.
func requiresREXForByteAccess(r Register) bool {
	switch r.Name {
	case "spl", "bpl", "sil", "dil":
		return true
	default:
		return false
	}
}

// isHighByteRegister reports whether r is one of the legacy AH/BH/CH/DH
// high-byte registers, which cannot be addressed at all once any REX
// prefix is present.
func isHighByteRegister(r Register) bool {
	switch r.Name {
	case "ah", "bh", "ch", "dh":
		return true
	default:
		return false
	}
}
