// Package coff assembles bytecode and a symbol table into an AMD64
// PE/COFF relocatable object file, per spec §4.5. It builds its header and
// section shapes directly on the standard library's debug/pe package
// rather than hand-rolling parallel struct definitions — the convention
// _examples/other_examples/...rsrc-coff-coff.go.go follows for the same
// reason (a COFF writer on top of pe.FileHeader/pe.SectionHeader32) — and
// packs everything with encoding/binary instead of manual byte shuffling.
package coff

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/spasm/spasm/reloc"
	"github.com/spasm/spasm/symtab"
)

// ErrFileIO wraps a disk failure from WriteFile's os.WriteFile call, kept
// distinct from a Write layout failure so a caller (spasm.ObjWriteFile) can
// tell a full/unwritable disk apart from a broken in-memory object image
// and report FileIoFailure rather than CoffGenerationFailure for it.
var ErrFileIO = errors.New("coff: file I/O failure")

// sectionCharacteristics is CNT_CODE | MEM_EXECUTE | MEM_READ |
// ALIGN_16BYTES, the fixed flag set spec §4.5 assigns the single .text
// section.
const sectionCharacteristics = 0x00000020 | 0x20000000 | 0x40000000 | 0x00500000

const (
	storageClassStatic   = 3
	storageClassExternal = 2
)

// relocation is the 10-byte packed AMD64 COFF relocation entry.
type relocation struct {
	VirtualAddress   uint32
	SymbolTableIndex uint32
	Type             uint16
}

// symbolRecord is the 18-byte packed COFF symbol table entry.
type symbolRecord struct {
	Name           [8]byte
	Value          uint32
	SectionNumber  int16
	Type           uint16
	StorageClass   uint8
	AuxiliaryCount uint8
}

// sectionAux is the 18-byte packed auxiliary record that follows the
// .text section's own symbol entry; Length carries the section's raw
// data size (spec §4.5: "whose value field is the .text size").
type sectionAux struct {
	Length              uint32
	NumberOfRelocations uint16
	NumberOfLineNumbers uint16
	_                   [10]byte // checksum, number, selection, padding — unused
}

// Write assembles bc and st into a complete AMD64 COFF object file image,
// in the fixed order spec §4.5 lays out: file header, one .text section
// header, raw bytecode, relocations, symbol table, string table.
func Write(bc []byte, st *symtab.Table) ([]byte, error) {
	exports := st.Exports()
	externs := st.Externs()

	numRelocs := 0
	for _, e := range exports {
		numRelocs += len(e.Refs)
	}
	for _, e := range externs {
		numRelocs += len(e.Refs)
	}
	numSymbols := 2 + len(exports) + len(externs) // section symbol + its aux, then exports and externs in index order

	const fileHeaderSize = 20
	const sectionHeaderSize = 40
	pointerToRawData := uint32(fileHeaderSize + sectionHeaderSize)
	pointerToRelocations := uint32(0)
	if numRelocs > 0 {
		pointerToRelocations = pointerToRawData + uint32(len(bc))
	}
	pointerToSymbolTable := pointerToRawData + uint32(len(bc)) + uint32(numRelocs)*10

	var out bytes.Buffer

	fileHeader := pe.FileHeader{
		Machine:              pe.IMAGE_FILE_MACHINE_AMD64,
		NumberOfSections:     1,
		TimeDateStamp:        0,
		PointerToSymbolTable: pointerToSymbolTable,
		NumberOfSymbols:      uint32(numSymbols),
		SizeOfOptionalHeader: 0,
		Characteristics:      0,
	}
	if err := binary.Write(&out, binary.LittleEndian, fileHeader); err != nil {
		return nil, fmt.Errorf("coff: write file header: %w", err)
	}

	var sectionName [8]byte
	copy(sectionName[:], ".text")
	sectionHeader := pe.SectionHeader32{
		Name:                 sectionName,
		VirtualSize:          0,
		VirtualAddress:       0,
		SizeOfRawData:        uint32(len(bc)),
		PointerToRawData:     pointerToRawData,
		PointerToRelocations: pointerToRelocations,
		PointerToLineNumbers: 0,
		NumberOfRelocations:  uint16(numRelocs),
		NumberOfLineNumbers:  0,
		Characteristics:      sectionCharacteristics,
	}
	if err := binary.Write(&out, binary.LittleEndian, sectionHeader); err != nil {
		return nil, fmt.Errorf("coff: write section header: %w", err)
	}

	out.Write(bc)

	var strtab bytes.Buffer // long names only; offsets are relative to the 4-byte size prefix
	symbolIndexBase := uint32(2)

	writeRelocsFor := func(symbolIndex uint32, refs []symtab.Ref) error {
		for _, ref := range refs {
			r := relocation{
				VirtualAddress:   uint32(ref.Offset),
				SymbolTableIndex: symbolIndex,
				Type:             reloc.Kind(ref.Kind).COFFAMD64Type(),
			}
			if err := binary.Write(&out, binary.LittleEndian, r); err != nil {
				return fmt.Errorf("coff: write relocation: %w", err)
			}
		}
		return nil
	}
	for _, e := range exports {
		if err := writeRelocsFor(symbolIndexBase+uint32(e.Index), e.Refs); err != nil {
			return nil, err
		}
	}
	for _, e := range externs {
		if err := writeRelocsFor(symbolIndexBase+uint32(e.Index), e.Refs); err != nil {
			return nil, err
		}
	}

	sectionSym := symbolRecord{
		Value:          0,
		SectionNumber:  1,
		Type:           0,
		StorageClass:   storageClassStatic,
		AuxiliaryCount: 1,
	}
	copy(sectionSym.Name[:], ".text")
	if err := binary.Write(&out, binary.LittleEndian, sectionSym); err != nil {
		return nil, fmt.Errorf("coff: write section symbol: %w", err)
	}
	aux := sectionAux{Length: uint32(len(bc))}
	if err := binary.Write(&out, binary.LittleEndian, aux); err != nil {
		return nil, fmt.Errorf("coff: write section aux: %w", err)
	}

	writeSymbol := func(name string, value uint32, sectionNumber int16) error {
		rec := symbolRecord{
			Value:          value,
			SectionNumber:  sectionNumber,
			Type:           0,
			StorageClass:   storageClassExternal,
			AuxiliaryCount: 0,
		}
		if len(name) < 8 {
			copy(rec.Name[:], name)
		} else {
			// Short-name field encodes as { zero uint32, string-table offset
			// uint32 } rather than holding the name itself; the offset
			// counts from the start of the string table, including its own
			// 4-byte size prefix.
			offset := uint32(strtab.Len()) + 4
			binary.LittleEndian.PutUint32(rec.Name[0:4], 0)
			binary.LittleEndian.PutUint32(rec.Name[4:8], offset)
			strtab.WriteString(name)
			strtab.WriteByte(0)
		}
		return binary.Write(&out, binary.LittleEndian, rec)
	}

	// Exports and externs share one dense index counter; writing them in
	// index order puts each symbol at 2+Index, where its relocations point.
	ordered := make([]func() error, len(exports)+len(externs))
	for _, e := range exports {
		ordered[e.Index] = func() error { return writeSymbol(e.Name, uint32(e.StartOffset), 1) }
	}
	for _, e := range externs {
		ordered[e.Index] = func() error { return writeSymbol(e.Name, 0, 0) }
	}
	for _, write := range ordered {
		if err := write(); err != nil {
			return nil, fmt.Errorf("coff: write symbol: %w", err)
		}
	}

	strSize := make([]byte, 4)
	binary.LittleEndian.PutUint32(strSize, uint32(strtab.Len()+4))
	out.Write(strSize)
	out.Write(strtab.Bytes())

	return out.Bytes(), nil
}

// WriteFile renders the object via Write and writes it to path. It is the
// sole I/O point in this library (spec §5): synchronous, and terminal for
// this call on failure, while leaving bc and st untouched. A layout failure
// from Write is returned as-is; a disk failure from the write itself wraps
// ErrFileIO so callers can distinguish the two (spec §7's FileIoFailure vs.
// CoffGenerationFailure categories).
func WriteFile(path string, bc []byte, st *symtab.Table) error {
	data, err := Write(bc, st)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrFileIO, path, err)
	}
	return nil
}
