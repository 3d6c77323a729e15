package alloc

import (
	"os"
	"os/exec"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const abortChildEnv = "ALLOC_TEST_ABORT_CHILD"

func TestAbortTerminatesBySignal(t *testing.T) {
	if os.Getenv(abortChildEnv) == "1" {
		Abort()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestAbortTerminatesBySignal$")
	cmd.Env = append(os.Environ(), abortChildEnv+"=1")

	err := cmd.Run()
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)

	status, ok := exitErr.Sys().(syscall.WaitStatus)
	require.True(t, ok)
	assert.True(t, status.Signaled(), "exited with status %d", status.ExitStatus())
	assert.Equal(t, syscall.SIGABRT, status.Signal())
}
