package spasm

import (
	"errors"

	"github.com/spasm/spasm/abi"
	"github.com/spasm/spasm/coff"
)

// objWriters maps an ABI to the object-file writer that understands its
// platform container. Only COFF (§4.5) is meaningfully designed in the
// source; ELF and Mach-O are named in the overview but never built out, so
// only WindowsX64 has a writer and ObjWriteFile reports UnsupportedAbi for
// every other ABI.
var objWriters = map[abi.ABI]func(path string, bc []byte, st *Session) error{
	abi.WindowsX64: writeCOFF,
}

func writeCOFF(path string, bc []byte, s *Session) error {
	return coff.WriteFile(path, bc, s.Data)
}

// ObjWriteFile renders the session's bytecode and symbol table into a
// relocatable object file at path, per spec §5's obj_write_file(path,
// bytecode, data, abi). A failure is terminal for this call but leaves the
// session's bytecode and data table untouched. A disk failure (e.g. a full
// or unwritable filesystem) is reported as FileIoFailure; a failure
// building the object's in-memory layout is reported as
// CoffGenerationFailure — spec §7 treats these as distinct error kinds.
func ObjWriteFile(path string, s *Session, a abi.ABI) error {
	write, ok := objWriters[a]
	if !ok {
		return newError(UnsupportedAbi, "no object writer registered for "+a.String())
	}
	if err := write(path, s.Bytecode.Bytes(), s); err != nil {
		if errors.Is(err, coff.ErrFileIO) {
			return wrapError(FileIoFailure, "writing object file "+path, err)
		}
		return wrapError(CoffGenerationFailure, "writing object file "+path, err)
	}
	return nil
}
