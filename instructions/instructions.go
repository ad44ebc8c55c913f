// Package instructions holds the ordered, mnemonic-plus-operand records an
// assembler driver walks to produce bytecode. Iteration order equals
// insertion order, which in turn defines the order bytes are encoded in
// (spec §3). Buffer is generic over its operand type so this package
// carries no dependency on any one architecture's operand model — the
// x86_64 package aliases Buffer[Operand] for its own driver to consume,
// avoiding an import cycle between "the operand model" and "the ordered
// list of operands".
package instructions

// Instruction is a single (mnemonic, operands) record. The source bounds
// operands at 4 slots backed by bump-allocated arena storage; a Go slice
// gives the same ordered, contiguous-enough shape without requiring a
// fixed-size array the caller must zero-pad by hand.
type Instruction[Op any] struct {
	Mnemonic string
	Operands []Op
}

// Buffer is an ordered, append-only sequence of instructions.
type Buffer[Op any] struct {
	items []Instruction[Op]
}

// New returns an empty Buffer.
func New[Op any]() *Buffer[Op] {
	return &Buffer[Op]{}
}

// PushBack appends one instruction record and returns its index.
func (b *Buffer[Op]) PushBack(mnemonic string, operands ...Op) int {
	idx := len(b.items)
	b.items = append(b.items, Instruction[Op]{Mnemonic: mnemonic, Operands: operands})
	return idx
}

// Len returns the number of recorded instructions.
func (b *Buffer[Op]) Len() int { return len(b.items) }

// At returns the instruction at idx. It panics on an out-of-range index,
// the same contract a direct slice index gives the caller.
func (b *Buffer[Op]) At(idx int) Instruction[Op] { return b.items[idx] }

// All returns the instructions in insertion order. The returned slice
// aliases the buffer's storage; callers must not mutate it.
func (b *Buffer[Op]) All() []Instruction[Op] { return b.items }

// Debug renders the buffer as one "MNEMONIC operand, operand" line per
// instruction, joined by newlines, using render to turn each operand into
// text — a plain-text shape analogous to bytecode.Buffer's hex dump, for
// the same kind of ad hoc inspection.
func (b *Buffer[Op]) Debug(render func(Op) string) string {
	var out []byte
	for i, instr := range b.items {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, instr.Mnemonic...)
		for j, op := range instr.Operands {
			if j == 0 {
				out = append(out, ' ')
			} else {
				out = append(out, ", "...)
			}
			out = append(out, render(op)...)
		}
	}
	return string(out)
}
