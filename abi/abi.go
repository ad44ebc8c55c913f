// Package abi holds the per-platform calling-convention register tables
// spec §6 describes: which registers carry arguments and return values,
// and how many of each class are available for an external register
// allocator to claim. This package does not allocate registers itself —
// spec §1 leaves that to a caller-supplied allocator; it only exposes the
// lookup tables one would consult.
package abi

import "github.com/spasm/spasm/architecture/x86_64"

// ABI identifies a calling convention / platform pairing.
type ABI int

const (
	WindowsX64 ABI = iota
	LinuxX64
	MacOSX64
	MacOSAarch64
)

func (a ABI) String() string {
	switch a {
	case WindowsX64:
		return "WindowsX64"
	case LinuxX64:
		return "LinuxX64"
	case MacOSX64:
		return "MacOSX64"
	case MacOSAarch64:
		return "MacOSAarch64"
	default:
		return "Unknown"
	}
}

// Convention is the fixed register-usage contract of one ABI: which
// registers carry arguments (in order) and the return value, and how many
// GP/FP registers in total an external allocator may claim (argument
// registers included).
type Convention struct {
	ABI ABI

	ArgGP []x86_64.Register
	ArgFP []x86_64.Register

	ReturnGP x86_64.Register
	ReturnFP x86_64.Register

	MaxAllocGP int
	MaxAllocFP int
}

// windowsX64 is the Microsoft x64 calling convention: 4 argument
// registers shared across GP and FP by position (the 2nd argument always
// occupies RDX/XMM1 even if the 1st was a float), 16 GP and 16 XMM
// registers total with RSP/RBP conventionally reserved by the caller.
var windowsX64 = Convention{
	ABI:        WindowsX64,
	ArgGP:      []x86_64.Register{x86_64.RCX, x86_64.RDX, x86_64.R8, x86_64.R9},
	ArgFP:      []x86_64.Register{x86_64.XMM0, x86_64.XMM1, x86_64.XMM2, x86_64.XMM3},
	ReturnGP:   x86_64.RAX,
	ReturnFP:   x86_64.XMM0,
	MaxAllocGP: 14,
	MaxAllocFP: 16,
}

// linuxX64 is the System V AMD64 ABI. spec §9 flags that the source lists
// RSI before RDI here; the real System V order is RDI, RSI, RDX, RCX, R8,
// R9, which this table uses — the source bug is noted, not reproduced.
var linuxX64 = Convention{
	ABI:        LinuxX64,
	ArgGP:      []x86_64.Register{x86_64.RDI, x86_64.RSI, x86_64.RDX, x86_64.RCX, x86_64.R8, x86_64.R9},
	ArgFP:      []x86_64.Register{x86_64.XMM0, x86_64.XMM1, x86_64.XMM2, x86_64.XMM3, x86_64.XMM4, x86_64.XMM5, x86_64.XMM6, x86_64.XMM7},
	ReturnGP:   x86_64.RAX,
	ReturnFP:   x86_64.XMM0,
	MaxAllocGP: 14,
	MaxAllocFP: 16,
}

// macOSX64 follows System V AMD64 as well — Apple's x86-64 targets are
// System V, not a distinct convention.
var macOSX64 = Convention{
	ABI:        MacOSX64,
	ArgGP:      []x86_64.Register{x86_64.RDI, x86_64.RSI, x86_64.RDX, x86_64.RCX, x86_64.R8, x86_64.R9},
	ArgFP:      []x86_64.Register{x86_64.XMM0, x86_64.XMM1, x86_64.XMM2, x86_64.XMM3, x86_64.XMM4, x86_64.XMM5, x86_64.XMM6, x86_64.XMM7},
	ReturnGP:   x86_64.RAX,
	ReturnFP:   x86_64.XMM0,
	MaxAllocGP: 14,
	MaxAllocFP: 16,
}

// macOSAarch64 is a placeholder convention for the AArch64 stub (spec §1
// non-goal: AArch64 encoding is unimplemented); its register list is left
// empty since architecture/aarch64 has no register tables yet.
var macOSAarch64 = Convention{
	ABI: MacOSAarch64,
}

var conventions = map[ABI]Convention{
	WindowsX64:   windowsX64,
	LinuxX64:     linuxX64,
	MacOSX64:     macOSX64,
	MacOSAarch64: macOSAarch64,
}

// Lookup returns the Convention for abi and whether abi is known.
func Lookup(abi ABI) (Convention, bool) {
	c, ok := conventions[abi]
	return c, ok
}
