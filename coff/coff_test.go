package coff_test

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
	"testing"

	"github.com/spasm/spasm/coff"
	"github.com/spasm/spasm/reloc"
	"github.com/spasm/spasm/symtab"
)

// TestWriteWindowsExitLayout builds the symbol table the Windows
// minimal-exit scenario produces (one export, one extern with a single
// REL32 ref) and checks every offset/count the COFF image's fixed layout
// promises: file header, section header, raw code, relocations, symbol
// table, string table, in that order.
func TestWriteWindowsExitLayout(t *testing.T) {
	bc := make([]byte, 19)
	for i := range bc {
		bc[i] = byte(i + 1)
	}

	st := symtab.New()
	if err := st.AddExport("main", 0); err != nil {
		t.Fatalf("AddExport: %v", err)
	}
	if err := st.AddExtern("ExitProcess", 15, int(reloc.REL32)); err != nil {
		t.Fatalf("AddExtern: %v", err)
	}

	out, err := coff.Write(bc, st)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	const fileHeaderSize = 20
	const sectionHeaderSize = 40
	pointerToRawData := fileHeaderSize + sectionHeaderSize
	pointerToRelocations := pointerToRawData + len(bc)
	pointerToSymbolTable := pointerToRelocations + 10 // one relocation
	const symbolRecordSize = 18

	var fh pe.FileHeader
	if err := binary.Read(bytes.NewReader(out[0:fileHeaderSize]), binary.LittleEndian, &fh); err != nil {
		t.Fatalf("decode file header: %v", err)
	}
	if fh.Machine != pe.IMAGE_FILE_MACHINE_AMD64 {
		t.Errorf("Machine = %#x, want IMAGE_FILE_MACHINE_AMD64", fh.Machine)
	}
	if fh.NumberOfSections != 1 {
		t.Errorf("NumberOfSections = %d, want 1", fh.NumberOfSections)
	}
	if fh.NumberOfSymbols != 4 {
		t.Errorf("NumberOfSymbols = %d, want 4 (section + aux + export + extern)", fh.NumberOfSymbols)
	}
	if fh.PointerToSymbolTable != uint32(pointerToSymbolTable) {
		t.Errorf("PointerToSymbolTable = %d, want %d", fh.PointerToSymbolTable, pointerToSymbolTable)
	}

	var sh pe.SectionHeader32
	if err := binary.Read(bytes.NewReader(out[fileHeaderSize:pointerToRawData]), binary.LittleEndian, &sh); err != nil {
		t.Fatalf("decode section header: %v", err)
	}
	if string(bytes.TrimRight(sh.Name[:], "\x00")) != ".text" {
		t.Errorf("section name = %q, want .text", sh.Name)
	}
	if sh.SizeOfRawData != uint32(len(bc)) {
		t.Errorf("SizeOfRawData = %d, want %d", sh.SizeOfRawData, len(bc))
	}
	if sh.PointerToRawData != uint32(pointerToRawData) {
		t.Errorf("PointerToRawData = %d, want %d", sh.PointerToRawData, pointerToRawData)
	}
	if sh.PointerToRelocations != uint32(pointerToRelocations) {
		t.Errorf("PointerToRelocations = %d, want %d", sh.PointerToRelocations, pointerToRelocations)
	}
	if sh.NumberOfRelocations != 1 {
		t.Errorf("NumberOfRelocations = %d, want 1", sh.NumberOfRelocations)
	}

	gotCode := out[pointerToRawData:pointerToRelocations]
	if !bytes.Equal(gotCode, bc) {
		t.Errorf("raw code = % X, want % X", gotCode, bc)
	}

	relocBytes := out[pointerToRelocations:pointerToSymbolTable]
	if len(relocBytes) != 10 {
		t.Fatalf("relocation record length = %d, want 10", len(relocBytes))
	}
	relocVA := binary.LittleEndian.Uint32(relocBytes[0:4])
	relocSym := binary.LittleEndian.Uint32(relocBytes[4:8])
	relocType := binary.LittleEndian.Uint16(relocBytes[8:10])
	if relocVA != 15 {
		t.Errorf("relocation VirtualAddress = %d, want 15", relocVA)
	}
	if relocSym != 3 { // symbolIndexBase(2) + extern.Index(1): export took index 0
		t.Errorf("relocation SymbolTableIndex = %d, want 3", relocSym)
	}
	if relocType != reloc.REL32.COFFAMD64Type() {
		t.Errorf("relocation Type = %#x, want %#x", relocType, reloc.REL32.COFFAMD64Type())
	}

	symtabBytes := out[pointerToSymbolTable:]

	sectionSymName := string(bytes.TrimRight(symtabBytes[0:8], "\x00"))
	if sectionSymName != ".text" {
		t.Errorf("section symbol name = %q, want .text", sectionSymName)
	}
	sectionSymStorageClass := symtabBytes[8+4+2+2]
	sectionSymAuxCount := symtabBytes[8+4+2+2+1]
	if sectionSymStorageClass != 3 {
		t.Errorf("section symbol storage class = %d, want 3 (static)", sectionSymStorageClass)
	}
	if sectionSymAuxCount != 1 {
		t.Errorf("section symbol aux count = %d, want 1", sectionSymAuxCount)
	}

	auxLength := binary.LittleEndian.Uint32(symtabBytes[symbolRecordSize : symbolRecordSize+4])
	if auxLength != uint32(len(bc)) {
		t.Errorf("section aux Length = %d, want %d", auxLength, len(bc))
	}

	exportOff := 2 * symbolRecordSize
	exportName := string(bytes.TrimRight(symtabBytes[exportOff:exportOff+8], "\x00"))
	if exportName != "main" {
		t.Errorf("export symbol name = %q, want main", exportName)
	}
	exportValue := binary.LittleEndian.Uint32(symtabBytes[exportOff+8 : exportOff+12])
	exportSection := int16(binary.LittleEndian.Uint16(symtabBytes[exportOff+12 : exportOff+14]))
	exportStorageClass := symtabBytes[exportOff+16]
	if exportValue != 0 {
		t.Errorf("export Value = %d, want 0", exportValue)
	}
	if exportSection != 1 {
		t.Errorf("export SectionNumber = %d, want 1", exportSection)
	}
	if exportStorageClass != 2 {
		t.Errorf("export StorageClass = %d, want 2 (external)", exportStorageClass)
	}

	externOff := exportOff + symbolRecordSize
	externZero := binary.LittleEndian.Uint32(symtabBytes[externOff : externOff+4])
	externStrOffset := binary.LittleEndian.Uint32(symtabBytes[externOff+4 : externOff+8])
	if externZero != 0 {
		t.Errorf("extern short-name zero word = %d, want 0 (long-name marker)", externZero)
	}
	if externStrOffset != 4 {
		t.Errorf("extern string-table offset = %d, want 4", externStrOffset)
	}

	strtabRelOff := externOff + symbolRecordSize
	strtabOff := pointerToSymbolTable + strtabRelOff
	strtabSize := binary.LittleEndian.Uint32(out[strtabOff : strtabOff+4])
	wantStrtabSize := uint32(len("ExitProcess") + 1 + 4)
	if strtabSize != wantStrtabSize {
		t.Errorf("string table size = %d, want %d", strtabSize, wantStrtabSize)
	}
	gotName := string(bytes.TrimRight(out[strtabOff+4:], "\x00"))
	if gotName != "ExitProcess" {
		t.Errorf("string table content = %q, want ExitProcess", gotName)
	}

	wantTotal := strtabOff + 4 + len("ExitProcess") + 1
	if len(out) != wantTotal {
		t.Errorf("total image length = %d, want %d", len(out), wantTotal)
	}
}

// TestWriteNoRelocations checks the zero-relocation path: PointerToRelocations
// must stay 0 and the symbol table must directly follow the raw code.
func TestWriteNoRelocations(t *testing.T) {
	bc := []byte{0x90, 0x90, 0xC3} // nop; nop; ret
	st := symtab.New()
	if err := st.AddExport("entry", 0); err != nil {
		t.Fatalf("AddExport: %v", err)
	}

	out, err := coff.Write(bc, st)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	var sh pe.SectionHeader32
	if err := binary.Read(bytes.NewReader(out[20:60]), binary.LittleEndian, &sh); err != nil {
		t.Fatalf("decode section header: %v", err)
	}
	if sh.PointerToRelocations != 0 {
		t.Errorf("PointerToRelocations = %d, want 0 with no relocations", sh.PointerToRelocations)
	}
	if sh.NumberOfRelocations != 0 {
		t.Errorf("NumberOfRelocations = %d, want 0", sh.NumberOfRelocations)
	}

	var fh pe.FileHeader
	if err := binary.Read(bytes.NewReader(out[0:20]), binary.LittleEndian, &fh); err != nil {
		t.Fatalf("decode file header: %v", err)
	}
	wantSymTable := 20 + 40 + len(bc)
	if fh.PointerToSymbolTable != uint32(wantSymTable) {
		t.Errorf("PointerToSymbolTable = %d, want %d", fh.PointerToSymbolTable, wantSymTable)
	}
}

// TestWriteEightByteNameGoesToStringTable checks that an exactly-8-character
// symbol name is routed through the string table rather than stored inline:
// the inline 8-byte field leaves no room for a NUL terminator at that
// length, so only strictly-shorter names may be stored inline.
func TestWriteEightByteNameGoesToStringTable(t *testing.T) {
	const name = "ExitProc" // exactly 8 characters
	bc := []byte{0xC3}

	st := symtab.New()
	if err := st.AddExport("main", 0); err != nil {
		t.Fatalf("AddExport: %v", err)
	}
	if err := st.AddExtern(name, 0, int(reloc.REL32)); err != nil {
		t.Fatalf("AddExtern: %v", err)
	}

	out, err := coff.Write(bc, st)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	const fileHeaderSize = 20
	const sectionHeaderSize = 40
	const symbolRecordSize = 18
	pointerToRawData := fileHeaderSize + sectionHeaderSize
	pointerToRelocations := pointerToRawData + len(bc)
	pointerToSymbolTable := pointerToRelocations + 10

	symtabBytes := out[pointerToSymbolTable:]
	externOff := 3 * symbolRecordSize // section sym, aux, export, then extern

	externZero := binary.LittleEndian.Uint32(symtabBytes[externOff : externOff+4])
	externStrOffset := binary.LittleEndian.Uint32(symtabBytes[externOff+4 : externOff+8])
	if externZero != 0 {
		t.Fatalf("an 8-character name must use the long-name form: zero word = %d, want 0", externZero)
	}
	if externStrOffset != 4 {
		t.Errorf("string-table offset = %d, want 4", externStrOffset)
	}

	strtabOff := pointerToSymbolTable + externOff + symbolRecordSize
	gotName := string(bytes.TrimRight(out[strtabOff+4:], "\x00"))
	if gotName != name {
		t.Errorf("string table content = %q, want %q", gotName, name)
	}
}
