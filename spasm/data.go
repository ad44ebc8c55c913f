package spasm

import "github.com/spasm/spasm/symtab"

// The methods below are thin, Go-shaped wrappers over symtab.Table —
// data_add_bytes / data_add_extern / data_add_export / data_add_export_ref /
// data_add_intern / data_add_intern_ref in spec §5's naming. There is no
// data_release counterpart: the table is garbage collected with the
// Session, the same way bytecode.Buffer and InstructionBuffer are.

// AddBytes registers a named data blob, zero-filled when kind is BSS.
func (s *Session) AddBytes(name string, value []byte, kind symtab.DataKind) {
	s.Data.AddBytes(name, value, kind)
}

// AddExtern records a reference to an undefined external symbol, creating
// it on first use. A name already registered as an export reports
// ErrSymbolKindConflict.
func (s *Session) AddExtern(name string, offset, relocKind int) error {
	return s.Data.AddExtern(name, offset, relocKind)
}

// AddExport defines name at offset in the bytecode stream. A duplicate
// name is a non-fatal ErrDuplicateExport.
func (s *Session) AddExport(name string, startOffset int) error {
	return s.Data.AddExport(name, startOffset)
}

// AddExportRef records a reference to an already-defined export.
func (s *Session) AddExportRef(name string, offset, relocKind int) error {
	return s.Data.AddExportRef(name, offset, relocKind)
}

// AddIntern defines a local label at offset, idempotently.
func (s *Session) AddIntern(name string, startOffset int) {
	s.Data.AddIntern(name, startOffset)
}

// AddInternRef records a reference to a local label; it is an error to
// reference one that has not been defined yet (no forward references).
func (s *Session) AddInternRef(name string, offset, relSize int) error {
	return s.Data.AddInternRef(name, offset, relSize)
}

// Lookup returns the named data blob's bytes, if registered.
func (s *Session) Lookup(name string) ([]byte, bool) {
	return s.Data.Lookup(name)
}
