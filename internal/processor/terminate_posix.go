//go:build !windows

package processor

import (
	"os/exec"
	"syscall"
)

// terminate asks the process to exit. The runner kills it if it is still
// alive once the grace period ends.
func terminate(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return cmd.Process.Signal(syscall.SIGTERM)
}
