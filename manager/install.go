package manager

import (
	"context"
	"fmt"
	"os"

	"github.com/projecteru2/core/log"
	"golang.org/x/term"

	"github.com/nivram913/vmmgr/errdefs"
	"github.com/nivram913/vmmgr/types"
	"github.com/nivram913/vmmgr/utils"
	"github.com/nivram913/vmmgr/validate"
)

// Install boots a stopped VM from an installer ISO in the foreground and
// blocks until the interactive session ends. The preconditions are checked
// under the home lock, but the lock is released before the blocking session
// so other VMs stay manageable for its duration.
func (m *Manager) Install(ctx context.Context, name, ram, cdrom string, display types.DisplayMode) error {
	if !validate.Name(name) {
		return fmt.Errorf("VM name %q: %w", name, errdefs.ErrInvalidArgument)
	}
	if ram != "" && !validate.Size(ram) {
		return fmt.Errorf("RAM size %q: %w", ram, errdefs.ErrInvalidArgument)
	}
	if !display.Valid() {
		return fmt.Errorf("display mode %q: %w", display, errdefs.ErrInvalidArgument)
	}
	if cdrom == "" || !utils.PathExists(cdrom) {
		return fmt.Errorf("CD-ROM image %q: %w", cdrom, errdefs.ErrInvalidArgument)
	}
	if display == types.DisplayCurses && !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("curses display needs a terminal on stdin: %w", errdefs.ErrInvalidArgument)
	}

	var spec *types.InstallSpec
	err := m.withLock(ctx, func() error {
		rec, err := m.reg.Get(name)
		if err != nil {
			return err
		}
		if m.reg.IsRunning(name) {
			return fmt.Errorf("VM %q: %w", name, errdefs.ErrAlreadyRunning)
		}
		cfg := m.loadVMConfig(ctx, rec)
		memory := ram
		if memory == "" {
			memory = cfg.RAM
		}
		spec = &types.InstallSpec{
			Name:        rec.Name,
			DiskPath:    rec.DiskPath,
			MonitorPath: rec.MonitorPath,
			Memory:      memory,
			MAC:         rec.MAC,
			Network:     cfg.Network,
			CDROM:       cdrom,
			Display:     display,
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger := log.WithFunc("manager.Install")
	logger.Infof(ctx, "starting install session for %s from %s", name, cdrom)
	if err := m.hyper.Install(ctx, spec); err != nil {
		return fmt.Errorf("install VM %q: %w", name, err)
	}
	logger.Infof(ctx, "install session for %s ended", name)
	return nil
}
