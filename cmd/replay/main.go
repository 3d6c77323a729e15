// Command replay re-issues a recorded allocation trace against the process
// allocator.
//
// Usage:
//
//	replay [flags] <replay.dat>
package main

import (
	"os"
	"runtime"

	"github.com/yairfalse/tapio-replay/internal/cli"
)

func init() {
	// Keep main on the initial OS thread so the replay allocates from the
	// allocator's main arena, like a single-threaded C program.
	runtime.LockOSThread()
}

func main() {
	os.Exit(cli.Execute())
}
