// Package spasm is the public entry point: it wires an ABI to the matching
// architecture driver, owns the data/instruction/symbol state a caller
// builds up, and renders both object files and JIT-executable bytes.
package spasm

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Severity constants for diagnostic classification, carried over from
// debugcontext's vocabulary; spasm has no phases or source locations to
// attach, since this library never parses text (spec §3).
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Diagnostic is a single recorded event: a driver note, a non-fatal
// duplicate-export warning, or the message behind a fatal *Error.
type Diagnostic struct {
	Severity string
	Kind     string
	Message  string
	Fatal    bool
}

// String renders a diagnostic as "severity [kind]: message".
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [%s]: %s", d.Severity, d.Kind, d.Message)
}

// Diagnostics is a passive, append-only, thread-safe log of everything an
// assembly run reported, mirroring the shape internal/debugcontext gave the
// source's pipeline — minus phases and source locations, which have no
// meaning once parsing is out of scope.
type Diagnostics struct {
	mu      sync.Mutex
	entries []Diagnostic
}

// NewDiagnostics returns an empty log.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

// Record appends one entry. kind is normally one of the ErrorKind names
// (the x86_64 driver also passes "SyntheticMain" for its synthesized
// export note, which lands as a warning); fatal marks
// whether the driver stopped on this entry. It matches x86_64.DiagnosticFunc
// so a *Diagnostics can be handed straight to StaticAssemble/JITAssemble.
func (d *Diagnostics) Record(kind, message string, fatal bool) {
	severity := SeverityWarning
	if fatal {
		severity = SeverityError
	}
	d.mu.Lock()
	d.entries = append(d.entries, Diagnostic{Severity: severity, Kind: kind, Message: message, Fatal: fatal})
	d.mu.Unlock()
}

// Info records a Severity: info entry outside the fatal/non-fatal
// vocabulary Record covers, for caller-side notes. The x86_64 driver
// reports only through Record.
func (d *Diagnostics) Info(kind, message string) {
	d.mu.Lock()
	d.entries = append(d.entries, Diagnostic{Severity: SeverityInfo, Kind: kind, Message: message})
	d.mu.Unlock()
}

// Entries returns all recorded diagnostics in insertion order.
func (d *Diagnostics) Entries() []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Diagnostic, len(d.entries))
	copy(out, d.entries)
	return out
}

// HasFatal reports whether any recorded entry was fatal.
func (d *Diagnostics) HasFatal() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, e := range d.entries {
		if e.Fatal {
			return true
		}
	}
	return false
}

// Count returns the number of recorded entries.
func (d *Diagnostics) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// Render writes every fatal entry to w with the fixed "ERROR: spasm: %s\n"
// prefix spec §7 specifies, the literal format string error.h's
// spasm_error used. Non-fatal entries are not rendered here; callers that
// want the full log use Entries directly.
func (d *Diagnostics) Render(w io.Writer) {
	for _, e := range d.Entries() {
		if e.Fatal {
			fmt.Fprintf(w, "ERROR: spasm: %s\n", e.Message)
		}
	}
}

// RenderStderr is Render(os.Stderr), the default sink the teacher's CLI
// writes diagnostics to.
func (d *Diagnostics) RenderStderr() {
	d.Render(os.Stderr)
}
