//go:build cgo

package cli

import (
	"os"
	"os/exec"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/tapio-replay/internal/trace/tracetest"
)

// Not REPLAY_-prefixed so viper never sees it.
const abortTraceEnv = "CLI_TEST_ABORT_TRACE"

func TestDoubleAllocationKillsProcessWithSIGABRT(t *testing.T) {
	if path := os.Getenv(abortTraceEnv); path != "" {
		os.Args = []string{"replay", "--log-level", "error", path}
		os.Exit(Execute())
	}

	path := tracetest.New(4).Alloc(3, 1, 64).Alloc(3, 2, 64).WriteFile(t)

	cmd := exec.Command(os.Args[0], "-test.run=^TestDoubleAllocationKillsProcessWithSIGABRT$")
	cmd.Env = append(os.Environ(), abortTraceEnv+"="+path)

	out, err := cmd.CombinedOutput()
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr, "output: %s", out)

	status, ok := exitErr.Sys().(syscall.WaitStatus)
	require.True(t, ok)
	assert.True(t, status.Signaled(), "exited with status %d: %s", status.ExitStatus(), out)
	assert.Equal(t, syscall.SIGABRT, status.Signal())
	assert.Contains(t, string(out), "allocation into a live slot")
}

func TestSlotReuseExitsCleanly(t *testing.T) {
	path := tracetest.New(4).Alloc(3, 1, 64).Free(3, 2).Alloc(3, 3, 128).WriteFile(t)

	cmd := exec.Command(os.Args[0], "-test.run=^TestDoubleAllocationKillsProcessWithSIGABRT$")
	cmd.Env = append(os.Environ(), abortTraceEnv+"="+path)

	out, err := cmd.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "free: ")
	assert.Contains(t, string(out), "fast free blocks: ")
}
