// Package qemu implements the hypervisor contract with qemu-system and
// qemu-img: qcow2 disks, a per-VM unix monitor socket in server/nowait
// mode, and a virtio NIC bound to the allocated MAC.
package qemu

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/nivram913/vmmgr/config"
	"github.com/nivram913/vmmgr/errdefs"
	"github.com/nivram913/vmmgr/hypervisor"
	"github.com/nivram913/vmmgr/types"
)

const typ = "qemu"

// compile-time interface check.
var _ hypervisor.Hypervisor = (*QEMU)(nil)

// QEMU drives qemu-system and qemu-img as external processes.
type QEMU struct {
	conf *config.Config
}

// New creates a QEMU backend.
func New(conf *config.Config) *QEMU {
	return &QEMU{conf: conf}
}

func (q *QEMU) Type() string { return typ }

// CreateDisk invokes `qemu-img create -f qcow2 <path> <size>`.
func (q *QEMU) CreateDisk(ctx context.Context, path, size string) error {
	out, err := exec.CommandContext(ctx, q.conf.QEMUImgBinary, //nolint:gosec
		"create", "-f", "qcow2", path, size,
	).CombinedOutput()
	if err != nil {
		return toolError(q.conf.QEMUImgBinary, out, err)
	}
	return nil
}

// Run launches a daemonized, headless VM. qemu forks and the call returns
// once the child is backgrounded; the monitor socket at spec.MonitorPath is
// created by qemu itself.
func (q *QEMU) Run(ctx context.Context, spec *types.RunSpec) error {
	args := runArgs(spec)
	out, err := exec.CommandContext(ctx, q.conf.QEMUBinary, args...).CombinedOutput() //nolint:gosec
	if err != nil {
		return toolError(q.conf.QEMUBinary, out, err)
	}
	return nil
}

// Install launches a foreground VM booted from the attached ISO. The call
// blocks until the interactive session ends; stdio is handed to the child.
func (q *QEMU) Install(ctx context.Context, spec *types.InstallSpec) error {
	args := installArgs(spec)
	cmd := exec.CommandContext(ctx, q.conf.QEMUBinary, args...) //nolint:gosec
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return toolError(q.conf.QEMUBinary, nil, err)
	}
	return nil
}

// runArgs builds the daemonized launch command line.
func runArgs(spec *types.RunSpec) []string {
	args := []string{
		"-name", spec.Name,
		"-m", spec.Memory,
		"-drive", fmt.Sprintf("file=%s,format=qcow2,if=virtio", spec.DiskPath),
		"-display", "none",
		"-monitor", fmt.Sprintf("unix:%s,server,nowait", spec.MonitorPath),
	}
	args = append(args, netArgs(spec.Network, spec.MAC)...)
	if spec.CDROM != "" {
		args = append(args, "-cdrom", spec.CDROM, "-boot", "d")
	}
	return append(args, "-daemonize")
}

// installArgs builds the foreground install command line: boot from the
// ISO, no daemonize, display per the requested mode.
func installArgs(spec *types.InstallSpec) []string {
	args := []string{
		"-name", spec.Name,
		"-m", spec.Memory,
		"-drive", fmt.Sprintf("file=%s,format=qcow2,if=virtio", spec.DiskPath),
		"-display", string(spec.Display),
		"-monitor", fmt.Sprintf("unix:%s,server,nowait", spec.MonitorPath),
	}
	args = append(args, netArgs(spec.Network, spec.MAC)...)
	return append(args, "-cdrom", spec.CDROM, "-boot", "d")
}

// netArgs translates the network mode to qemu netdev arguments. The MAC is
// always bound to the NIC so guests keep a stable address across modes.
func netArgs(mode types.NetworkMode, mac string) []string {
	switch mode {
	case types.NetworkNone:
		return []string{"-nic", "none"}
	case types.NetworkBridge:
		return []string{
			"-netdev", "bridge,id=net0",
			"-device", fmt.Sprintf("virtio-net-pci,netdev=net0,mac=%s", mac),
		}
	default: // NAT
		return []string{
			"-netdev", "user,id=net0",
			"-device", fmt.Sprintf("virtio-net-pci,netdev=net0,mac=%s", mac),
		}
	}
}

// toolError converts an exec failure into the structured taxonomy error,
// preserving the external exit code and captured output.
func toolError(tool string, out []byte, err error) error {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return &errdefs.ExternalToolError{
			Tool:     tool,
			ExitCode: ee.ExitCode(),
			Output:   strings.TrimSpace(string(out)),
		}
	}
	return fmt.Errorf("exec %s: %w", tool, err)
}
