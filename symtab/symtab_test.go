package symtab_test

import (
	"errors"
	"testing"

	"github.com/spasm/spasm/symtab"
)

func TestAddExternCreatesThenAppends(t *testing.T) {
	tab := symtab.New()

	if err := tab.AddExtern("ExitProcess", 10, 0); err != nil {
		t.Fatalf("AddExtern: %v", err)
	}
	if err := tab.AddExtern("ExitProcess", 20, 0); err != nil {
		t.Fatalf("AddExtern: %v", err)
	}

	e, ok := tab.Extern("ExitProcess")
	if !ok {
		t.Fatal("extern symbol not found")
	}
	if len(e.Refs) != 2 {
		t.Fatalf("len(Refs) = %d, want 2", len(e.Refs))
	}
	if e.Refs[0].Offset != 10 || e.Refs[1].Offset != 20 {
		t.Errorf("unexpected ref offsets: %+v", e.Refs)
	}
}

func TestSharedIndexCounterAcrossExternAndExport(t *testing.T) {
	tab := symtab.New()

	if err := tab.AddExport("main", 0); err != nil {
		t.Fatalf("AddExport: %v", err)
	}
	if err := tab.AddExtern("puts", 4, 0); err != nil {
		t.Fatalf("AddExtern: %v", err)
	}
	if err := tab.AddExport("helper", 8); err != nil {
		t.Fatalf("AddExport: %v", err)
	}

	main, _ := tab.Export("main")
	puts, _ := tab.Extern("puts")
	helper, _ := tab.Export("helper")

	indices := []uint{main.Index, puts.Index, helper.Index}
	for i, idx := range indices {
		if idx != uint(i) {
			t.Errorf("index %d = %d, want %d (strictly increasing, shared counter)", i, idx, i)
		}
	}
}

func TestDuplicateExportReportsErrorWithoutAborting(t *testing.T) {
	tab := symtab.New()

	if err := tab.AddExport("f", 0); err != nil {
		t.Fatalf("first AddExport: %v", err)
	}
	err := tab.AddExport("f", 100)
	if !errors.Is(err, symtab.ErrDuplicateExport) {
		t.Fatalf("second AddExport error = %v, want ErrDuplicateExport", err)
	}

	// the original entry must be untouched
	f, _ := tab.Export("f")
	if f.StartOffset != 0 {
		t.Errorf("StartOffset = %d, want 0 (duplicate insert must not overwrite)", f.StartOffset)
	}
}

func TestExternThenExportSameNameConflicts(t *testing.T) {
	tab := symtab.New()
	if err := tab.AddExtern("foo", 4, 0); err != nil {
		t.Fatalf("AddExtern: %v", err)
	}
	err := tab.AddExport("foo", 0)
	if !errors.Is(err, symtab.ErrSymbolKindConflict) {
		t.Fatalf("AddExport(foo) after AddExtern(foo) = %v, want ErrSymbolKindConflict", err)
	}
	if _, ok := tab.Export("foo"); ok {
		t.Error("conflicting AddExport must not create an export entry")
	}
}

func TestExportThenExternSameNameConflicts(t *testing.T) {
	tab := symtab.New()
	if err := tab.AddExport("bar", 0); err != nil {
		t.Fatalf("AddExport: %v", err)
	}
	err := tab.AddExtern("bar", 4, 0)
	if !errors.Is(err, symtab.ErrSymbolKindConflict) {
		t.Fatalf("AddExtern(bar) after AddExport(bar) = %v, want ErrSymbolKindConflict", err)
	}
	if _, ok := tab.Extern("bar"); ok {
		t.Error("conflicting AddExtern must not create an extern entry")
	}
}

func TestUnknownExportRefReportsError(t *testing.T) {
	tab := symtab.New()
	err := tab.AddExportRef("nope", 4, 0)
	if !errors.Is(err, symtab.ErrUnknownExport) {
		t.Fatalf("error = %v, want ErrUnknownExport", err)
	}
}

func TestAddInternIsIdempotent(t *testing.T) {
	tab := symtab.New()
	tab.AddIntern("loop", 16)
	tab.AddIntern("loop", 999) // second call must be a no-op

	in, ok := tab.Intern("loop")
	if !ok {
		t.Fatal("intern symbol not found")
	}
	if in.StartOffset != 16 {
		t.Errorf("StartOffset = %d, want 16 (first insertion wins)", in.StartOffset)
	}
}

func TestUnknownInternRefReportsError(t *testing.T) {
	tab := symtab.New()
	err := tab.AddInternRef("nope", 4, 4)
	if !errors.Is(err, symtab.ErrUnknownIntern) {
		t.Fatalf("error = %v, want ErrUnknownIntern", err)
	}
}

func TestExportsOrderedByIndex(t *testing.T) {
	tab := symtab.New()
	tab.AddExport("c", 0)
	tab.AddExport("a", 0)
	tab.AddExport("b", 0)

	exports := tab.Exports()
	for i := 1; i < len(exports); i++ {
		if exports[i-1].Index >= exports[i].Index {
			t.Fatalf("Exports() not ordered by index: %+v", exports)
		}
	}
}

func TestAddBytesOverwritesSameName(t *testing.T) {
	tab := symtab.New()
	tab.AddBytes("message", []byte("first"), symtab.DATA)
	tab.AddBytes("message", []byte("second value"), symtab.DATA)

	got, ok := tab.Lookup("message")
	if !ok {
		t.Fatal("message not found")
	}
	if string(got) != "second value" {
		t.Errorf("Lookup(message) = %q, want %q", got, "second value")
	}
}

func TestBSSReservesZeroedSizeOnly(t *testing.T) {
	tab := symtab.New()
	tab.AddBytes("counter", make([]byte, 8), symtab.BSS)

	got, ok := tab.Lookup("counter")
	if !ok {
		t.Fatal("counter not found")
	}
	if len(got) != 8 {
		t.Fatalf("len(counter) = %d, want 8", len(got))
	}
	for _, b := range got {
		if b != 0 {
			t.Errorf("BSS storage not zero-initialized")
		}
	}
}
