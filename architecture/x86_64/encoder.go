package x86_64

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spasm/spasm/internal/asm"
)

// Sentinel errors the caller (the spasm facade, or any direct caller of
// Encode) matches with errors.Is. Concrete failures are always wrapped in
// an *EncodingError carrying the mnemonic and operands, per spec §7's
// EncodingUnknown(mnemonic, operand_shape) / InvalidOperand kinds.
var (
	ErrEncodingUnknown = errors.New("x86_64: no matching instruction form")
	ErrInvalidOperand  = errors.New("x86_64: invalid operand")
)

// EncodingError wraps one of the sentinels above with the mnemonic and
// operand shape that failed to match or encode.
type EncodingError struct {
	Mnemonic string
	Operands []Operand
	Err      error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s: %s %v", e.Err, e.Mnemonic, e.Operands)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// Lookup performs the linear scan of spec §4.2: the first instruction-table
// entry whose mnemonic and operand shape (kind and, for registers/
// immediates, effective size) match wins. Size 0 on a table entry is a
// wildcard.
func Lookup(mnemonic string, operands []Operand) (*asm.InstructionForm, error) {
	instr, ok := InstructionsByMnemonic[strings.ToUpper(mnemonic)]
	if !ok {
		return nil, &EncodingError{Mnemonic: mnemonic, Operands: operands, Err: ErrEncodingUnknown}
	}
	for i := range instr.Forms {
		form := &instr.Forms[i]
		if formMatches(form, operands) {
			return form, nil
		}
	}
	return nil, &EncodingError{Mnemonic: mnemonic, Operands: operands, Err: ErrEncodingUnknown}
}

func formMatches(form *asm.InstructionForm, operands []Operand) bool {
	if len(form.Operands) == 1 && form.Operands[0] == OperandNone {
		return len(operands) == 0
	}
	if len(form.Operands) != len(operands) {
		return false
	}
	for i, ot := range form.Operands {
		if !operandMatchesType(ot, operands[i]) {
			return false
		}
	}
	return true
}

func operandMatchesType(ot asm.OperandType, op Operand) bool {
	switch ot.Type {
	case "register":
		if op.Kind != KindRegister {
			return false
		}
		return ot.Size == 0 || RegWidthBits(op.Reg) == ot.Size
	case "memory":
		return op.IsMemory()
	case "immediate", "relative":
		// Symbol/Data operands are rewritten to plain immediates before
		// matching (spec §4.3 step 5), so "relative" (OperandRel8/Rel32,
		// declared for vocabulary completeness in operands.go) matches
		// exactly like "immediate" here.
		if !op.IsImmediate() {
			return false
		}
		return ot.Size == 0 || op.ImmWidth() == ot.Size
	case "register/memory":
		if op.IsMemory() {
			return true
		}
		if op.Kind != KindRegister {
			return false
		}
		return ot.Size == 0 || RegWidthBits(op.Reg) == ot.Size
	case "none":
		return op.Kind == KindNone
	default:
		return false
	}
}

// Encode matches mnemonic/operands against the instruction table and emits
// its machine-code bytes. Operand rewriting for Symbol/Data operands (spec
// §4.3 step 5) is the assembler driver's responsibility, not the encoder's
// — by the time Encode sees an operand it is one of Register/Memory/Imm*.
func Encode(mnemonic string, operands []Operand) ([]byte, error) {
	form, err := Lookup(mnemonic, operands)
	if err != nil {
		return nil, err
	}
	return EncodeForm(mnemonic, form, operands)
}

// EncodeForm emits the bytes for an already-matched form, in the order
// spec §4.3 describes: prefix, opcode, ModR/M+SIB+displacement,
// immediate.
func EncodeForm(mnemonic string, form *asm.InstructionForm, operands []Operand) ([]byte, error) {
	regSlot, rmSlot := resolveModRMSlots(form, operands)

	var code []byte

	rex, needREX, err := computeREX(form, operands, regSlot, rmSlot)
	if err != nil {
		return nil, &EncodingError{Mnemonic: mnemonic, Operands: operands, Err: err}
	}
	if needREX {
		code = append(code, rex)
	}

	opcode := append([]byte(nil), form.Opcode...)
	if form.PlusR {
		reg, ok := soleRegisterOperand(operands)
		if !ok {
			return nil, &EncodingError{Mnemonic: mnemonic, Operands: operands, Err: ErrInvalidOperand}
		}
		opcode[len(opcode)-1] |= RegLow3(reg)
	}
	code = append(code, opcode...)

	if form.ModRM {
		modrmBytes, err := encodeModRM(form, operands, regSlot, rmSlot)
		if err != nil {
			return nil, &EncodingError{Mnemonic: mnemonic, Operands: operands, Err: err}
		}
		code = append(code, modrmBytes...)
	}

	if form.Imm {
		immBytes, err := encodeImmediate(operands)
		if err != nil {
			return nil, &EncodingError{Mnemonic: mnemonic, Operands: operands, Err: err}
		}
		code = append(code, immBytes...)
	}

	return code, nil
}

func soleRegisterOperand(operands []Operand) (Register, bool) {
	for _, op := range operands {
		if op.Kind == KindRegister {
			return op.Reg, true
		}
	}
	return Register{}, false
}

// resolveModRMSlots decides which operand slot supplies ModR/M.reg and
// which supplies ModR/M.rm. An explicit RegInModRMSlot/RmInModRMSlot on the
// form (e.g. MOVAPS's RM-direction forms) wins; otherwise the default is:
// a memory operand always supplies rm (the other operand supplies reg); a
// forced opcode extension (ModRMExt != 0) supplies reg itself, so the sole
// remaining operand (memory or register) supplies rm; otherwise, for a
// plain two-register form, reg is slot 1 and rm is slot 0 — the MR
// direction spec's worked examples (ADD/MOV r/m, r) use.
func resolveModRMSlots(form *asm.InstructionForm, operands []Operand) (regSlot, rmSlot int) {
	regSlot, rmSlot = asm.NoModRMSlot, asm.NoModRMSlot
	if form.RegInModRMSlot != asm.NoModRMSlot {
		regSlot = form.RegInModRMSlot
	}
	if form.RmInModRMSlot != asm.NoModRMSlot {
		rmSlot = form.RmInModRMSlot
	}
	if regSlot != asm.NoModRMSlot && rmSlot != asm.NoModRMSlot {
		return
	}

	memSlot := -1
	for i, op := range operands {
		if op.IsMemory() {
			memSlot = i
			break
		}
	}

	if form.ModRMExt != 0 {
		if rmSlot == asm.NoModRMSlot {
			if memSlot != -1 {
				rmSlot = memSlot
			} else {
				rmSlot = 0
			}
		}
		return
	}

	if memSlot != -1 {
		if rmSlot == asm.NoModRMSlot {
			rmSlot = memSlot
		}
		if regSlot == asm.NoModRMSlot {
			for i := range operands {
				if i != memSlot {
					regSlot = i
					break
				}
			}
		}
		return
	}

	if rmSlot == asm.NoModRMSlot {
		rmSlot = 0
	}
	if regSlot == asm.NoModRMSlot {
		if len(operands) > 1 {
			regSlot = 1
		} else {
			regSlot = 0
		}
	}
	return
}

// computeREX determines whether REX is required and, if so, its byte
// value, per spec §4.3 step 1: forced by the table, by an extended
// register in any slot that feeds ModR/M/SIB, or by SPL/BPL/SIL/DIL.
func computeREX(form *asm.InstructionForm, operands []Operand, regSlot, rmSlot int) (byte, bool, error) {
	var w, r, x, b byte
	forceREX := form.REXPrefix != 0
	if form.REXPrefix&0x08 != 0 {
		w = 1
	}
	if form.ForceREXW {
		w, forceREX = 1, true
	}

	if form.ModRM {
		if form.ModRMExt == 0 && regSlot >= 0 && regSlot < len(operands) {
			if op := operands[regSlot]; op.Kind == KindRegister && RegExtended(op.Reg) {
				r = 1
			}
		}
		if rmSlot >= 0 && rmSlot < len(operands) {
			op := operands[rmSlot]
			switch {
			case op.Kind == KindRegister && RegExtended(op.Reg):
				b = 1
			case op.Kind == KindMemory:
				if op.hasBase() && RegExtended(op.Base) {
					b = 1
				}
				if op.hasIndex() && RegExtended(op.Index) {
					x = 1
				}
			}
		}
	} else if form.PlusR {
		if reg, ok := soleRegisterOperand(operands); ok && RegExtended(reg) {
			b = 1
		}
	}

	needREX := forceREX || r != 0 || x != 0 || b != 0 || w != 0
	for _, op := range operands {
		if op.Kind != KindRegister {
			continue
		}
		if requiresREXForByteAccess(op.Reg) {
			needREX = true
		}
	}
	if needREX {
		for _, op := range operands {
			if op.Kind == KindRegister && isHighByteRegister(op.Reg) {
				return 0, false, ErrInvalidOperand
			}
		}
	}
	if !needREX {
		return 0, false, nil
	}
	return 0x40 | w<<3 | r<<2 | x<<1 | b, true, nil
}

// encodeModRM emits the ModR/M byte plus, for a memory rm operand, the SIB
// byte and displacement, per spec §4.3 step 3.
func encodeModRM(form *asm.InstructionForm, operands []Operand, regSlot, rmSlot int) ([]byte, error) {
	var regBits byte
	if form.ModRMExt != 0 {
		regBits = byte(form.ModRMExt - 1)
	} else {
		if regSlot < 0 || regSlot >= len(operands) || operands[regSlot].Kind != KindRegister {
			return nil, ErrInvalidOperand
		}
		regBits = RegLow3(operands[regSlot].Reg)
	}

	if rmSlot < 0 || rmSlot >= len(operands) {
		return nil, ErrInvalidOperand
	}
	rm := operands[rmSlot]

	switch rm.Kind {
	case KindRegister:
		modrm := 0b11<<6 | regBits<<3 | RegLow3(rm.Reg)
		return []byte{modrm}, nil
	case KindMemory:
		return encodeMemoryOperand(regBits, rm)
	default:
		return nil, ErrInvalidOperand
	}
}

func encodeMemoryOperand(regBits byte, mem Operand) ([]byte, error) {
	switch {
	case mem.Scale != 0 && mem.Scale != 1 && mem.Scale != 2 && mem.Scale != 4 && mem.Scale != 8:
		return nil, ErrInvalidOperand

	case !mem.hasBase() && !mem.hasIndex():
		// RIP-relative / absolute: mod=00, rm=101, 32-bit displacement.
		modrm := byte(0)<<6 | regBits<<3 | 0b101
		return append([]byte{modrm}, leI32(mem.Disp)...), nil

	case !mem.hasBase() && mem.hasIndex():
		// True absolute addressing: SIB with no base (base field = 101,
		// mod = 00 signals "disp32, no base" rather than [rbp]), spec §4.3.
		modrm := byte(0)<<6 | regBits<<3 | 0b100
		scaleBits, err := scaleBitsOf(mem.Scale)
		if err != nil {
			return nil, err
		}
		sib := scaleBits<<6 | RegLow3(mem.Index)<<3 | 0b101
		return append([]byte{modrm, sib}, leI32(mem.Disp)...), nil

	default:
		baseLow3 := RegLow3(mem.Base)
		needSIB := mem.hasIndex() || baseLow3 == 0b100

		var mod byte
		var dispBytes []byte
		switch {
		case mem.Disp == 0 && baseLow3 != 0b101:
			mod = 0b00
		case mem.Disp >= -128 && mem.Disp <= 127:
			mod = 0b01
			dispBytes = []byte{byte(int8(mem.Disp))}
		default:
			mod = 0b10
			dispBytes = leI32(mem.Disp)
		}

		rmField := baseLow3
		if needSIB {
			rmField = 0b100
		}
		modrm := mod<<6 | regBits<<3 | rmField

		out := []byte{modrm}
		if needSIB {
			scaleBits, err := scaleBitsOf(mem.Scale)
			if err != nil {
				return nil, err
			}
			indexLow3 := byte(0b100)
			if mem.hasIndex() {
				indexLow3 = RegLow3(mem.Index)
			}
			out = append(out, scaleBits<<6|indexLow3<<3|baseLow3)
		}
		return append(out, dispBytes...), nil
	}
}

func scaleBitsOf(scale byte) (byte, error) {
	switch scale {
	case 0, 1:
		return 0, nil
	case 2:
		return 1, nil
	case 4:
		return 2, nil
	case 8:
		return 3, nil
	default:
		return 0, ErrInvalidOperand
	}
}

func leI32(v int32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// encodeImmediate emits the little-endian bytes of the instruction's single
// immediate operand, at the width its Kind tag selects.
func encodeImmediate(operands []Operand) ([]byte, error) {
	for _, op := range operands {
		switch op.Kind {
		case KindImm8:
			return []byte{byte(op.Imm)}, nil
		case KindImm16:
			v := uint16(op.Imm)
			return []byte{byte(v), byte(v >> 8)}, nil
		case KindImm32:
			return leI32(int32(op.Imm)), nil
		case KindImm64:
			v := uint64(op.Imm)
			return []byte{
				byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24),
				byte(v >> 32), byte(v >> 40), byte(v >> 48), byte(v >> 56),
			}, nil
		}
	}
	return nil, ErrInvalidOperand
}
