// Package isa maps the host platform and architecture to an ABI. It is
// thin glue (spec §2 places platform/ISA/ABI detection outside the hard
// core) over runtime.GOOS/runtime.GOARCH.
package isa

import (
	"runtime"

	"github.com/spasm/spasm/abi"
)

// Detect returns the ABI matching the running process's GOOS/GOARCH, and
// whether detection succeeded. It never guesses across architectures: a
// host the table doesn't recognize reports ok=false rather than a
// best-effort default.
func Detect() (abi.ABI, bool) {
	switch runtime.GOARCH {
	case "amd64":
		switch runtime.GOOS {
		case "windows":
			return abi.WindowsX64, true
		case "linux":
			return abi.LinuxX64, true
		case "darwin":
			return abi.MacOSX64, true
		}
	case "arm64":
		if runtime.GOOS == "darwin" {
			return abi.MacOSAarch64, true
		}
	}
	return 0, false
}
