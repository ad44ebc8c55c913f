// Package x86_64 holds the spasm CLI's x86_64 subcommands.
package x86_64

import (
	"fmt"

	"github.com/spasm/spasm/abi"
	"github.com/spasm/spasm/architecture/x86_64"
	"github.com/spasm/spasm/isa"
	"github.com/spasm/spasm/spasm"
	"github.com/spasm/spasm/symtab"
	"github.com/spf13/cobra"
)

var objPath string

// HelloCmd builds the hello-world Linux syscall sequence — write(1, message,
// len) then exit(0) — JIT-resolves the message data blob, and prints the
// resulting machine code. It is the worked example spec §8's first
// end-to-end scenario describes: 8 instructions, 49 bytes (the message
// address is a 10-byte mov r64, imm64).
var HelloCmd = &cobra.Command{
	Use:     "hello",
	GroupID: "file-operations",
	Short:   "Assemble the hello-world syscall demo",
	Long:    `Builds and JIT-assembles a minimal Linux x86_64 "hello world" syscall sequence, printing the resulting machine code.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runHello(cmd); err != nil {
			cmd.PrintErrln("Error:", err)
		}
	},
}

func init() {
	HelloCmd.Flags().StringVar(&objPath, "obj", "", "write a COFF object file to this path instead of JIT-assembling")
}

func runHello(cmd *cobra.Command) error {
	message := []byte("hello, spasm\n")

	s := spasm.NewSession()
	s.AddBytes("message", message, symtab.RODATA)

	s.Push("MOV", x86_64.Reg(x86_64.RAX), x86_64.Imm32(1))  // sys_write
	s.Push("MOV", x86_64.Reg(x86_64.RDI), x86_64.Imm32(1))  // fd = stdout
	s.Push("MOV", x86_64.Reg(x86_64.RSI), x86_64.DataRef("message"))
	s.Push("MOV", x86_64.Reg(x86_64.RDX), x86_64.Imm32(int64(len(message))))
	s.Push("SYSCALL")
	s.Push("MOV", x86_64.Reg(x86_64.RAX), x86_64.Imm32(60)) // sys_exit
	s.Push("MOV", x86_64.Reg(x86_64.RDI), x86_64.Imm32(0))
	s.Push("SYSCALL")

	target := abi.LinuxX64
	if detected, ok := isa.Detect(); ok {
		target = detected
	}

	if objPath != "" {
		static, err := spasm.GetAssembler(target)
		if err != nil {
			return err
		}
		if !static(s.Instructions, s.Bytecode, s.Data, s.Diagnostics.Record) {
			s.Diagnostics.RenderStderr()
			return fmt.Errorf("assembly failed")
		}
		if err := spasm.ObjWriteFile(objPath, s, abi.WindowsX64); err != nil {
			return err
		}
		cmd.Printf("wrote object file to %s (%d bytes of code)\n", objPath, s.Bytecode.Size())
		return nil
	}

	jit, err := spasm.GetJITAssembler(target)
	if err != nil {
		return err
	}
	// Page allocation and copying the blob into executable memory is out of
	// scope (spec §9); this stands in for a real loader's base address so
	// the demo has something concrete to JIT-resolve against.
	const fakeDataBase = 0x10000
	resolve := func(name string) (uint64, bool) {
		if _, ok := s.Lookup(name); !ok {
			return 0, false
		}
		return fakeDataBase, true
	}
	if !jit(s.Instructions, s.Bytecode, s.Data, resolve, s.Diagnostics.Record) {
		s.Diagnostics.RenderStderr()
		return fmt.Errorf("assembly failed")
	}

	cmd.Printf("%d bytes: %s\n", s.Bytecode.Size(), s.Bytecode.Debug())
	for _, d := range s.Diagnostics.Entries() {
		cmd.Println(d.String())
	}
	return nil
}
