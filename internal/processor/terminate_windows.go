//go:build windows

package processor

import "os/exec"

// terminate kills the process. Windows has no reliable graceful signal
// for console programs started without a console of their own.
func terminate(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
