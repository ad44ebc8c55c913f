package x86_64_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spasm/spasm/architecture/x86_64"
)

// TestEncodeByteExact exercises the literal encoding table the source's own
// tests check against.
func TestEncodeByteExact(t *testing.T) {
	tests := []struct {
		name     string
		mnemonic string
		operands []x86_64.Operand
		want     []byte
	}{
		{"mov rax, 1 (imm32 form)", "MOV",
			[]x86_64.Operand{x86_64.Reg(x86_64.RAX), x86_64.Imm32(1)},
			[]byte{0x48, 0xC7, 0xC0, 0x01, 0x00, 0x00, 0x00}},
		{"mov rbx, rcx", "MOV",
			[]x86_64.Operand{x86_64.Reg(x86_64.RBX), x86_64.Reg(x86_64.RCX)},
			[]byte{0x48, 0x89, 0xCB}},
		{"mov rax, [rbx]", "MOV",
			[]x86_64.Operand{x86_64.Reg(x86_64.RAX), x86_64.MemBase(x86_64.RBX, 0)},
			[]byte{0x48, 0x8B, 0x03}},
		{"mov [rbx], rax", "MOV",
			[]x86_64.Operand{x86_64.MemBase(x86_64.RBX, 0), x86_64.Reg(x86_64.RAX)},
			[]byte{0x48, 0x89, 0x03}},
		{"mov r8, 0x1122334455667788", "MOV",
			[]x86_64.Operand{x86_64.Reg(x86_64.R8), x86_64.Imm64(0x1122334455667788)},
			[]byte{0x49, 0xB8, 0x88, 0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11}},
		{"add rax, rbx", "ADD",
			[]x86_64.Operand{x86_64.Reg(x86_64.RAX), x86_64.Reg(x86_64.RBX)},
			[]byte{0x48, 0x01, 0xD8}},
		{"add rcx, 5 (imm32)", "ADD",
			[]x86_64.Operand{x86_64.Reg(x86_64.RCX), x86_64.Imm32(5)},
			[]byte{0x48, 0x81, 0xC1, 0x05, 0x00, 0x00, 0x00}},
		{"movaps xmm0, xmm1", "MOVAPS",
			[]x86_64.Operand{x86_64.Reg(x86_64.XMM0), x86_64.Reg(x86_64.XMM1)},
			[]byte{0x0F, 0x28, 0xC1}},
		{"syscall", "SYSCALL", nil, []byte{0x0F, 0x05}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := x86_64.Encode(tt.mnemonic, tt.operands)
			if err != nil {
				t.Fatalf("Encode(%q, %v) returned error: %v", tt.mnemonic, tt.operands, err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Encode(%q, %v) = % X, want % X", tt.mnemonic, tt.operands, got, tt.want)
			}
		})
	}
}

func TestEncodeUnmatchedMnemonicFails(t *testing.T) {
	_, err := x86_64.Encode("FROB", []x86_64.Operand{x86_64.Reg(x86_64.RAX)})
	if err == nil {
		t.Fatal("expected an error for an unknown mnemonic, got nil")
	}
	if !errors.Is(err, x86_64.ErrEncodingUnknown) {
		t.Errorf("expected ErrEncodingUnknown, got %v", err)
	}
}

func TestEncodeUnmatchedOperandShapeFails(t *testing.T) {
	_, err := x86_64.Encode("SYSCALL", []x86_64.Operand{x86_64.Reg(x86_64.RAX)})
	if err == nil {
		t.Fatal("expected an error for a mismatched operand shape, got nil")
	}
	if !errors.Is(err, x86_64.ErrEncodingUnknown) {
		t.Errorf("expected ErrEncodingUnknown, got %v", err)
	}
}

func TestEncodeHighByteRegisterUnderREXFails(t *testing.T) {
	// AH can't be addressed once REX forces SPL/BPL/SIL/DIL-style encoding
	// in the same instruction; mixing AH with a register that forces REX
	// is invalid.
	_, err := x86_64.Encode("MOV", []x86_64.Operand{x86_64.Reg(x86_64.AH), x86_64.Reg(x86_64.SPL)})
	if err == nil {
		t.Fatal("expected an error mixing a high-byte register under REX, got nil")
	}
	if !errors.Is(err, x86_64.ErrInvalidOperand) {
		t.Errorf("expected ErrInvalidOperand, got %v", err)
	}
}

func TestEncodeMemoryWithSIB(t *testing.T) {
	// [rsp] always needs a SIB byte since RSP can't be a bare ModRM.rm.
	got, err := x86_64.Encode("MOV", []x86_64.Operand{x86_64.Reg(x86_64.RAX), x86_64.MemBase(x86_64.RSP, 0)})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	want := []byte{0x48, 0x8B, 0x04, 0x24}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode(mov rax, [rsp]) = % X, want % X", got, want)
	}
}
