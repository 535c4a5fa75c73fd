package manager

import (
	"context"
	"fmt"
	"os"

	"github.com/projecteru2/core/log"

	"github.com/nivram913/vmmgr/errdefs"
	"github.com/nivram913/vmmgr/validate"
)

// Delete destroys a VM and all its backing files. A running VM is rejected
// unless force is set, in which case the stop protocol runs first. With
// preserveDisk the disk image is moved to `<home>/<name>.img` before the
// directory is removed.
func (m *Manager) Delete(ctx context.Context, name string, force, preserveDisk bool) error {
	if !validate.Name(name) {
		return fmt.Errorf("VM name %q: %w", name, errdefs.ErrInvalidArgument)
	}
	return m.withLock(ctx, func() error {
		rec, err := m.reg.Get(name)
		if err != nil {
			return err
		}
		if m.reg.IsRunning(name) {
			if !force {
				return fmt.Errorf("VM %q: %w", name, errdefs.ErrStillRunning)
			}
			if err := m.stopLocked(ctx, rec, true); err != nil {
				return fmt.Errorf("stop before delete: %w", err)
			}
		}

		if preserveDisk {
			dst := m.conf.PreservedDiskPath(name)
			if err := os.Rename(rec.DiskPath, dst); err != nil {
				return fmt.Errorf("preserve disk: %w", err)
			}
			log.WithFunc("manager.Delete").Infof(ctx, "disk preserved at %s", dst)
		}
		if err := os.RemoveAll(m.conf.VMDir(name)); err != nil {
			return fmt.Errorf("remove VM directory: %w", err)
		}
		m.reg.Remove(name)
		log.WithFunc("manager.Delete").Infof(ctx, "deleted VM %s", name)
		return nil
	})
}
