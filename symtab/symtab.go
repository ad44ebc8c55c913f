// Package symtab holds the named byte blobs and the extern/export/intern
// symbol tables an assembler session builds up alongside its bytecode. It
// implements the insertion semantics of spec §4.4: a single monotonic index
// counter shared across extern and export tables, append-only ref lists,
// and the duplicate/unknown-name diagnostics the driver is expected to
// surface without aborting assembly.
package symtab

import (
	"errors"
	"fmt"
)

// Sentinel errors the caller can match with errors.Is. spasm.ErrorKind maps
// onto these rather than duplicating the conditions.
var (
	ErrDuplicateExport    = errors.New("symtab: duplicate export")
	ErrUnknownExport      = errors.New("symtab: unknown export")
	ErrUnknownIntern      = errors.New("symtab: unknown intern")
	ErrSymbolKindConflict = errors.New("symtab: name already used as a different symbol kind")
)

// DataKind distinguishes the three byte-blob sections a named entry can
// live in.
type DataKind int

const (
	RODATA DataKind = iota
	DATA
	BSS
)

// DataEntry is a named byte blob (or, for BSS, a reserved size with no
// backing bytes). Insertion does not deduplicate: a later AddBytes with the
// same name overwrites the earlier entry, matching spec §3.
type DataEntry struct {
	Name  string
	Bytes []byte
	Kind  DataKind
}

// Ref is a single recorded relocation or fixup site: an offset into the
// bytecode buffer paired with the relocation kind (extern/export refs) or
// the fixup width (intern refs).
type Ref struct {
	Offset int
	Kind   int // reloc.Kind for extern/export refs, or rel_size in {1,4} for intern refs
}

// Extern is an undefined-at-assembly-time symbol, resolved by a linker or,
// in JIT mode, by a caller-supplied address resolver.
type Extern struct {
	Name  string
	Refs  []Ref
	Index uint
}

// Export is a symbol defined in this stream and visible to a linker.
type Export struct {
	Name        string
	StartOffset int
	Refs        []Ref
	Index       uint
}

// Intern is a local label, the target of short/near jumps within this
// stream. It carries no linker visibility and no symbol-table index.
type Intern struct {
	Name        string
	StartOffset int
	Refs        []Ref
}

// Table owns the data sections and the extern/export/intern symbol tables
// for one assembler session. It is not safe for concurrent use — sessions
// are single-threaded per spec §5.
type Table struct {
	rodata map[string]*DataEntry
	data   map[string]*DataEntry
	bss    map[string]*DataEntry

	externs map[string]*Extern
	exports map[string]*Export
	interns map[string]*Intern

	nextIndex uint
}

// New returns an empty Table.
func New() *Table {
	return &Table{
		rodata:  make(map[string]*DataEntry),
		data:    make(map[string]*DataEntry),
		bss:     make(map[string]*DataEntry),
		externs: make(map[string]*Extern),
		exports: make(map[string]*Export),
		interns: make(map[string]*Intern),
	}
}

// AddBytes inserts (or overwrites) a named byte blob in the given section.
// For BSS, bytes carries only a length — reserved, zero-initialized
// storage — and its content is ignored; BSS_handled here, unlike the
// source, which declares the BSS_ kind but never branches on it in
// add_bytes (spec §9).
func (t *Table) AddBytes(name string, data []byte, kind DataKind) {
	entry := &DataEntry{Name: name, Bytes: data, Kind: kind}
	switch kind {
	case RODATA:
		t.rodata[name] = entry
	case DATA:
		t.data[name] = entry
	case BSS:
		t.bss[name] = &DataEntry{Name: name, Bytes: make([]byte, len(data)), Kind: BSS}
	}
}

// Lookup returns the named blob's bytes across all three sections (rodata
// is checked first, then data, then bss), and whether it was found.
func (t *Table) Lookup(name string) ([]byte, bool) {
	if e, ok := t.rodata[name]; ok {
		return e.Bytes, true
	}
	if e, ok := t.data[name]; ok {
		return e.Bytes, true
	}
	if e, ok := t.bss[name]; ok {
		return e.Bytes, true
	}
	return nil, false
}

// AddExtern records a reference to an undefined symbol at bytecode offset,
// tagged with relocKind (a reloc.Kind value, stored untyped here to avoid a
// dependency cycle). If the symbol hasn't been seen before it is created
// with a freshly minted, never-reused index from the shared counter; if it
// has, the ref is appended to its existing list. A name already in use as
// an export reports ErrSymbolKindConflict, per spec §3's "unique between
// extern and export" — without this check, the same name could collect two
// distinct symbol-table entries that the COFF writer would then emit as an
// ambiguous object.
func (t *Table) AddExtern(name string, offset int, relocKind int) error {
	if _, ok := t.exports[name]; ok {
		return fmt.Errorf("%w: %q is already an export", ErrSymbolKindConflict, name)
	}
	e, ok := t.externs[name]
	if !ok {
		e = &Extern{Name: name, Index: t.allocIndex()}
		t.externs[name] = e
	}
	e.Refs = append(e.Refs, Ref{Offset: offset, Kind: relocKind})
	return nil
}

// AddExport records a newly defined, linker-visible symbol. A second
// insertion of the same name reports ErrDuplicateExport without mutating
// the table or aborting the caller's assembly loop — the caller decides
// whether to treat this as fatal. A name already in use as an extern
// reports ErrSymbolKindConflict, the same uniqueness invariant AddExtern
// enforces in the other direction.
func (t *Table) AddExport(name string, startOffset int) error {
	if _, ok := t.externs[name]; ok {
		return fmt.Errorf("%w: %q is already an extern", ErrSymbolKindConflict, name)
	}
	if _, ok := t.exports[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateExport, name)
	}
	t.exports[name] = &Export{Name: name, StartOffset: startOffset, Index: t.allocIndex()}
	return nil
}

// AddExportRef appends a reference against a previously exported symbol.
// Missing name reports ErrUnknownExport.
func (t *Table) AddExportRef(name string, offset int, relocKind int) error {
	e, ok := t.exports[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownExport, name)
	}
	e.Refs = append(e.Refs, Ref{Offset: offset, Kind: relocKind})
	return nil
}

// AddIntern records a local label's start offset. Idempotent: a second call
// for the same name is silently ignored and the first start offset is kept.
// A label must be added before AddInternRef can reference it.
func (t *Table) AddIntern(name string, startOffset int) {
	if _, ok := t.interns[name]; ok {
		return
	}
	t.interns[name] = &Intern{Name: name, StartOffset: startOffset}
}

// AddInternRef records a fixup site for a local label: relSize is the width
// in bytes (1 or 4) of the signed displacement the driver must later patch
// in. Missing symbol reports ErrUnknownIntern.
func (t *Table) AddInternRef(name string, offset int, relSize int) error {
	in, ok := t.interns[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownIntern, name)
	}
	in.Refs = append(in.Refs, Ref{Offset: offset, Kind: relSize})
	return nil
}

// Extern returns the named extern symbol, if present.
func (t *Table) Extern(name string) (*Extern, bool) { e, ok := t.externs[name]; return e, ok }

// Export returns the named export symbol, if present.
func (t *Table) Export(name string) (*Export, bool) { e, ok := t.exports[name]; return e, ok }

// Intern returns the named intern symbol, if present.
func (t *Table) Intern(name string) (*Intern, bool) { in, ok := t.interns[name]; return in, ok }

// NumExports returns the number of export symbols.
func (t *Table) NumExports() int { return len(t.exports) }

// NumExterns returns the number of extern symbols.
func (t *Table) NumExterns() int { return len(t.externs) }

// Exports returns export symbols ordered by their stable index, the order
// the COFF writer must place them in (§4.5).
func (t *Table) Exports() []*Export {
	out := make([]*Export, 0, len(t.exports))
	for _, e := range t.exports {
		out = append(out, e)
	}
	sortByIndex(out, func(e *Export) uint { return e.Index })
	return out
}

// Externs returns extern symbols ordered by their stable index.
func (t *Table) Externs() []*Extern {
	out := make([]*Extern, 0, len(t.externs))
	for _, e := range t.externs {
		out = append(out, e)
	}
	sortByIndex(out, func(e *Extern) uint { return e.Index })
	return out
}

// Interns returns intern symbols in unspecified but stable order.
func (t *Table) Interns() []*Intern {
	out := make([]*Intern, 0, len(t.interns))
	for _, in := range t.interns {
		out = append(out, in)
	}
	return out
}

func (t *Table) allocIndex() uint {
	idx := t.nextIndex
	t.nextIndex++
	return idx
}

func sortByIndex[T any](s []T, key func(T) uint) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && key(s[j-1]) > key(s[j]); j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
