package qemu

import (
	"context"
	"errors"
	"os/exec"
)

// pgrep/pkill exit 1 when no process matched. The monitor path appears
// verbatim in the qemu command line and is unique per VM, so it is the
// match token for forced termination and liveness checks.

// Kill sends SIGKILL to any process whose command line contains token.
// "No process matched" is success: the target is already gone.
func (q *QEMU) Kill(ctx context.Context, token string) error {
	out, err := exec.CommandContext(ctx, "pkill", "-9", "-f", token).CombinedOutput()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) && ee.ExitCode() == 1 {
			return nil
		}
		return toolError("pkill", out, err)
	}
	return nil
}

// Alive reports whether a process whose command line contains token exists.
func (q *QEMU) Alive(ctx context.Context, token string) bool {
	return exec.CommandContext(ctx, "pgrep", "-f", token).Run() == nil
}
