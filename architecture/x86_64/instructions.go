package x86_64

import "github.com/spasm/spasm/internal/asm"

// ModRMExt biases an opcode-extension digit (/0../7) by one so the
// InstructionForm zero value (ModRMExt: 0) means "no forced extension" —
// the form's second operand (or, for +r forms, the opcode byte itself)
// carries the real ModR/M.reg meaning instead of a sub-opcode selector.
const (
	modRMExt0 = 1
	modRMExt2 = 3
	modRMExt4 = 5
	modRMExt5 = 6
	modRMExt6 = 7
	modRMExt7 = 8
)

// noSlots is the zero value every ModRM:true form uses unless it needs to
// override the encoder's default reg/rm slot assignment (the RM-direction
// forms of MOVZX, MOVSX and MOVAPS do). Since asm.NoModRMSlot is -1 and Go's own zero
// value for an unset int field is 0 — itself a valid slot index — every
// form below that doesn't set these explicitly must still say so, or the
// encoder would read "0" as "pin both reg and rm to slot 0".
const noSlots = asm.NoModRMSlot

var (
	//
	// Data Movement Instructions
	//
	MOV = asm.Instruction{
		Mnemonic: "MOV",
		Forms: []asm.InstructionForm{
			// MOV r8, r8
			{Operands: []asm.OperandType{OperandReg8, OperandReg8}, Opcode: []byte{0x88}, ModRM: true, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// MOV r16, r16
			{Operands: []asm.OperandType{OperandReg16, OperandReg16}, Opcode: []byte{0x89}, ModRM: true, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// MOV r32, r32
			{Operands: []asm.OperandType{OperandReg32, OperandReg32}, Opcode: []byte{0x89}, ModRM: true, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// MOV r64, r64
			{Operands: []asm.OperandType{OperandReg64, OperandReg64}, Opcode: []byte{0x89}, ModRM: true, Encoding: EncodingLegacy, REXPrefix: 0x48, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// MOV r64, m64 (load)
			{Operands: []asm.OperandType{OperandReg64, OperandMem}, Opcode: []byte{0x8B}, ModRM: true, Encoding: EncodingLegacy, REXPrefix: 0x48, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// MOV m64, r64 (store)
			{Operands: []asm.OperandType{OperandMem, OperandReg64}, Opcode: []byte{0x89}, ModRM: true, Encoding: EncodingLegacy, REXPrefix: 0x48, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// MOV r32, m32 (load)
			{Operands: []asm.OperandType{OperandReg32, OperandMem}, Opcode: []byte{0x8B}, ModRM: true, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// MOV m32, r32 (store)
			{Operands: []asm.OperandType{OperandMem, OperandReg32}, Opcode: []byte{0x89}, ModRM: true, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// MOV r8, imm8
			{Operands: []asm.OperandType{OperandReg8, OperandImm8}, Opcode: []byte{0xB0}, Imm: true, PlusR: true, Encoding: EncodingLegacy},
			// MOV r32, imm32
			{Operands: []asm.OperandType{OperandReg32, OperandImm32}, Opcode: []byte{0xB8}, Imm: true, PlusR: true, Encoding: EncodingLegacy},
			// MOV r64, imm32 (sign-extended store form, C7 /0)
			{Operands: []asm.OperandType{OperandReg64, OperandImm32}, Opcode: []byte{0xC7}, ModRM: true, Imm: true, ModRMExt: modRMExt0, Encoding: EncodingLegacy, REXPrefix: 0x48, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// MOV r64, imm64
			{Operands: []asm.OperandType{OperandReg64, OperandImm64}, Opcode: []byte{0xB8}, Imm: true, PlusR: true, Encoding: EncodingLegacy, REXPrefix: 0x48},
		},
	}

	MOVZX = asm.Instruction{
		Mnemonic: "MOVZX",
		Forms: []asm.InstructionForm{
			// MOVZX r32, r8
			{Operands: []asm.OperandType{OperandReg32, OperandReg8}, Opcode: []byte{0x0F, 0xB6}, ModRM: true, Encoding: EncodingLegacy, RegInModRMSlot: 0, RmInModRMSlot: 1},
			// MOVZX r32, r16
			{Operands: []asm.OperandType{OperandReg32, OperandReg16}, Opcode: []byte{0x0F, 0xB7}, ModRM: true, Encoding: EncodingLegacy, RegInModRMSlot: 0, RmInModRMSlot: 1},
		},
	}

	MOVSX = asm.Instruction{
		Mnemonic: "MOVSX",
		Forms: []asm.InstructionForm{
			// MOVSX r32, r8
			{Operands: []asm.OperandType{OperandReg32, OperandReg8}, Opcode: []byte{0x0F, 0xBE}, ModRM: true, Encoding: EncodingLegacy, RegInModRMSlot: 0, RmInModRMSlot: 1},
			// MOVSX r32, r16
			{Operands: []asm.OperandType{OperandReg32, OperandReg16}, Opcode: []byte{0x0F, 0xBF}, ModRM: true, Encoding: EncodingLegacy, RegInModRMSlot: 0, RmInModRMSlot: 1},
		},
	}

	// MOVAPS is an RM-direction SSE form (reg=dest, rm=src), the opposite
	// of the legacy GP reg-reg default — the table entry pins the slots
	// explicitly rather than relying on the encoder's MR default.
	MOVAPS = asm.Instruction{
		Mnemonic: "MOVAPS",
		Forms: []asm.InstructionForm{
			// MOVAPS xmm, xmm/m128
			{Operands: []asm.OperandType{OperandReg128, OperandReg128}, Opcode: []byte{0x0F, 0x28}, ModRM: true,
				Encoding: EncodingLegacy, RegInModRMSlot: 0, RmInModRMSlot: 1},
			{Operands: []asm.OperandType{OperandReg128, OperandMem}, Opcode: []byte{0x0F, 0x28}, ModRM: true,
				Encoding: EncodingLegacy, RegInModRMSlot: 0, RmInModRMSlot: 1},
			// MOVAPS xmm/m128, xmm (store)
			{Operands: []asm.OperandType{OperandMem, OperandReg128}, Opcode: []byte{0x0F, 0x29}, ModRM: true,
				Encoding: EncodingLegacy, RegInModRMSlot: 1, RmInModRMSlot: 0},
		},
	}

	LEA = asm.Instruction{
		Mnemonic: "LEA",
		Forms: []asm.InstructionForm{
			// LEA r32, m
			{Operands: []asm.OperandType{OperandReg32, OperandMem}, Opcode: []byte{0x8D}, ModRM: true, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// LEA r64, m
			{Operands: []asm.OperandType{OperandReg64, OperandMem}, Opcode: []byte{0x8D}, ModRM: true, Encoding: EncodingLegacy, REXPrefix: 0x48, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
		},
	}

	PUSH = asm.Instruction{
		Mnemonic: "PUSH",
		Forms: []asm.InstructionForm{
			// PUSH r64
			{Operands: []asm.OperandType{OperandReg64}, Opcode: []byte{0x50}, PlusR: true, Encoding: EncodingLegacy},
			// PUSH imm8
			{Operands: []asm.OperandType{OperandImm8}, Opcode: []byte{0x6A}, Imm: true, Encoding: EncodingLegacy},
			// PUSH imm32
			{Operands: []asm.OperandType{OperandImm32}, Opcode: []byte{0x68}, Imm: true, Encoding: EncodingLegacy},
			// PUSH r/m64
			{Operands: []asm.OperandType{OperandMem}, Opcode: []byte{0xFF}, ModRM: true, ModRMExt: modRMExt6, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
		},
	}

	POP = asm.Instruction{
		Mnemonic: "POP",
		Forms: []asm.InstructionForm{
			// POP r64
			{Operands: []asm.OperandType{OperandReg64}, Opcode: []byte{0x58}, PlusR: true, Encoding: EncodingLegacy},
		},
	}

	XCHG = asm.Instruction{
		Mnemonic: "XCHG",
		Forms: []asm.InstructionForm{
			// XCHG r8, r8
			{Operands: []asm.OperandType{OperandReg8, OperandReg8}, Opcode: []byte{0x86}, ModRM: true, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// XCHG r32, r32
			{Operands: []asm.OperandType{OperandReg32, OperandReg32}, Opcode: []byte{0x87}, ModRM: true, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// XCHG r64, r64
			{Operands: []asm.OperandType{OperandReg64, OperandReg64}, Opcode: []byte{0x87}, ModRM: true, Encoding: EncodingLegacy, REXPrefix: 0x48, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
		},
	}

	//
	// Arithmetic Instructions
	//

	ADD = asm.Instruction{
		Mnemonic: "ADD",
		Forms: []asm.InstructionForm{
			// ADD r8, r8
			{Operands: []asm.OperandType{OperandReg8, OperandReg8}, Opcode: []byte{0x00}, ModRM: true, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// ADD r32, r32
			{Operands: []asm.OperandType{OperandReg32, OperandReg32}, Opcode: []byte{0x01}, ModRM: true, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// ADD r64, r64
			{Operands: []asm.OperandType{OperandReg64, OperandReg64}, Opcode: []byte{0x01}, ModRM: true, Encoding: EncodingLegacy, REXPrefix: 0x48, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// ADD r32, imm32
			{Operands: []asm.OperandType{OperandReg32, OperandImm32}, Opcode: []byte{0x81}, ModRM: true, Imm: true, ModRMExt: modRMExt0, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// ADD r64, imm32
			{Operands: []asm.OperandType{OperandReg64, OperandImm32}, Opcode: []byte{0x81}, ModRM: true, Imm: true, ModRMExt: modRMExt0, Encoding: EncodingLegacy, REXPrefix: 0x48, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
		},
	}

	SUB = asm.Instruction{
		Mnemonic: "SUB",
		Forms: []asm.InstructionForm{
			// SUB r8, r8
			{Operands: []asm.OperandType{OperandReg8, OperandReg8}, Opcode: []byte{0x28}, ModRM: true, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// SUB r32, r32
			{Operands: []asm.OperandType{OperandReg32, OperandReg32}, Opcode: []byte{0x29}, ModRM: true, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// SUB r64, r64
			{Operands: []asm.OperandType{OperandReg64, OperandReg64}, Opcode: []byte{0x29}, ModRM: true, Encoding: EncodingLegacy, REXPrefix: 0x48, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// SUB r32, imm32
			{Operands: []asm.OperandType{OperandReg32, OperandImm32}, Opcode: []byte{0x81}, ModRM: true, Imm: true, ModRMExt: modRMExt5, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// SUB r64, imm32
			{Operands: []asm.OperandType{OperandReg64, OperandImm32}, Opcode: []byte{0x81}, ModRM: true, Imm: true, ModRMExt: modRMExt5, Encoding: EncodingLegacy, REXPrefix: 0x48, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
		},
	}

	CMP = asm.Instruction{
		Mnemonic: "CMP",
		Forms: []asm.InstructionForm{
			// CMP r8, r8
			{Operands: []asm.OperandType{OperandReg8, OperandReg8}, Opcode: []byte{0x38}, ModRM: true, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// CMP r32, r32
			{Operands: []asm.OperandType{OperandReg32, OperandReg32}, Opcode: []byte{0x39}, ModRM: true, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// CMP r64, r64
			{Operands: []asm.OperandType{OperandReg64, OperandReg64}, Opcode: []byte{0x39}, ModRM: true, Encoding: EncodingLegacy, REXPrefix: 0x48, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// CMP r32, imm32
			{Operands: []asm.OperandType{OperandReg32, OperandImm32}, Opcode: []byte{0x81}, ModRM: true, Imm: true, ModRMExt: modRMExt7, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// CMP r64, imm32
			{Operands: []asm.OperandType{OperandReg64, OperandImm32}, Opcode: []byte{0x81}, ModRM: true, Imm: true, ModRMExt: modRMExt7, Encoding: EncodingLegacy, REXPrefix: 0x48, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
		},
	}

	//
	// Logical Instructions
	//

	XOR = asm.Instruction{
		Mnemonic: "XOR",
		Forms: []asm.InstructionForm{
			// XOR r8, r8
			{Operands: []asm.OperandType{OperandReg8, OperandReg8}, Opcode: []byte{0x30}, ModRM: true, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// XOR r32, r32
			{Operands: []asm.OperandType{OperandReg32, OperandReg32}, Opcode: []byte{0x31}, ModRM: true, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// XOR r64, r64
			{Operands: []asm.OperandType{OperandReg64, OperandReg64}, Opcode: []byte{0x31}, ModRM: true, Encoding: EncodingLegacy, REXPrefix: 0x48, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// XOR r32, imm32
			{Operands: []asm.OperandType{OperandReg32, OperandImm32}, Opcode: []byte{0x81}, ModRM: true, Imm: true, ModRMExt: modRMExt6, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
		},
	}

	TEST = asm.Instruction{
		Mnemonic: "TEST",
		Forms: []asm.InstructionForm{
			// TEST r8, r8
			{Operands: []asm.OperandType{OperandReg8, OperandReg8}, Opcode: []byte{0x84}, ModRM: true, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// TEST r32, r32
			{Operands: []asm.OperandType{OperandReg32, OperandReg32}, Opcode: []byte{0x85}, ModRM: true, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
			// TEST r64, r64
			{Operands: []asm.OperandType{OperandReg64, OperandReg64}, Opcode: []byte{0x85}, ModRM: true, Encoding: EncodingLegacy, REXPrefix: 0x48, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
		},
	}

	//
	// Control Flow Instructions
	//

	JMP = asm.Instruction{
		Mnemonic: "JMP",
		Forms: []asm.InstructionForm{
			// JMP rel32 (the symbol/intern-label form; rel8 is not
			// modeled since this library never chooses a short-vs-near
			// encoding automatically — the caller's Symbol/intern ref
			// always rewrites to a 32-bit placeholder, spec §4.3 step 5)
			{Operands: []asm.OperandType{OperandImm32}, Opcode: []byte{0xE9}, Imm: true, Encoding: EncodingLegacy},
			// JMP r64
			{Operands: []asm.OperandType{OperandReg64}, Opcode: []byte{0xFF}, ModRM: true, ModRMExt: modRMExt4, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
		},
	}

	CALL = asm.Instruction{
		Mnemonic: "CALL",
		Forms: []asm.InstructionForm{
			// CALL rel32
			{Operands: []asm.OperandType{OperandImm32}, Opcode: []byte{0xE8}, Imm: true, Encoding: EncodingLegacy},
			// CALL r64
			{Operands: []asm.OperandType{OperandReg64}, Opcode: []byte{0xFF}, ModRM: true, ModRMExt: modRMExt2, Encoding: EncodingLegacy, RegInModRMSlot: noSlots, RmInModRMSlot: noSlots},
		},
	}

	RET = asm.Instruction{
		Mnemonic: "RET",
		Forms: []asm.InstructionForm{
			// RET
			{Operands: []asm.OperandType{OperandNone}, Opcode: []byte{0xC3}, Encoding: EncodingLegacy},
			// RET imm16
			{Operands: []asm.OperandType{OperandImm16}, Opcode: []byte{0xC2}, Imm: true, Encoding: EncodingLegacy},
		},
	}

	//
	// Miscellaneous Instructions
	//

	NOP = asm.Instruction{
		Mnemonic: "NOP",
		Forms: []asm.InstructionForm{
			// NOP
			{Operands: []asm.OperandType{OperandNone}, Opcode: []byte{0x90}, Encoding: EncodingLegacy},
		},
	}

	SYSCALL = asm.Instruction{
		Mnemonic: "SYSCALL",
		Forms: []asm.InstructionForm{
			// SYSCALL
			{Operands: []asm.OperandType{OperandNone}, Opcode: []byte{0x0F, 0x05}, Encoding: EncodingLegacy},
		},
	}
)

// InstructionsByMnemonic is a map for looking up instructions by their
// mnemonic, upper-cased. It is the static instruction table spec §4.2
// describes: a dense set today (the spec's own six mnemonics plus the
// small extra tier the teacher's commented-out draft already enumerated,
// per SPEC_FULL.md §4), grown by adding more Instruction values here rather
// than by changing the matcher in encoder.go.
var InstructionsByMnemonic = map[string]asm.Instruction{
	"MOV":     MOV,
	"MOVZX":   MOVZX,
	"MOVSX":   MOVSX,
	"MOVAPS":  MOVAPS,
	"LEA":     LEA,
	"PUSH":    PUSH,
	"POP":     POP,
	"XCHG":    XCHG,
	"ADD":     ADD,
	"SUB":     SUB,
	"CMP":     CMP,
	"XOR":     XOR,
	"TEST":    TEST,
	"JMP":     JMP,
	"CALL":    CALL,
	"RET":     RET,
	"NOP":     NOP,
	"SYSCALL": SYSCALL,
}
