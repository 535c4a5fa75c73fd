// Package hypervisor defines the contract between the lifecycle
// orchestrator and the external hypervisor and disk-image tooling. The
// processes behind it are opaque collaborators: only their command-line
// contracts and exit statuses matter.
package hypervisor

import (
	"context"

	"github.com/nivram913/vmmgr/types"
)

// Hypervisor launches and terminates VM processes and creates disk images.
// Each backend (e.g. qemu) implements this interface; tests use a fake.
type Hypervisor interface {
	Type() string

	// CreateDisk creates a qcow2 disk image of the given size literal at path.
	CreateDisk(ctx context.Context, path, size string) error

	// Run launches a daemonized VM. It returns once the process has
	// backgrounded itself; the monitor socket is created by the process.
	Run(ctx context.Context, spec *types.RunSpec) error

	// Install launches a foreground VM booted from removable media. It
	// blocks until the interactive session ends.
	Install(ctx context.Context, spec *types.InstallSpec) error

	// Powerdown sends the graceful power-down command over the monitor
	// socket at path. Fire-and-forget: no response is read.
	Powerdown(ctx context.Context, monitorPath string) error

	// Kill requests forced termination of the process whose command line
	// contains token.
	Kill(ctx context.Context, token string) error

	// Alive reports whether a process whose command line contains token
	// still exists.
	Alive(ctx context.Context, token string) bool
}
