package manager

import (
	"context"
	"fmt"

	"github.com/projecteru2/core/log"

	"github.com/nivram913/vmmgr/errdefs"
	"github.com/nivram913/vmmgr/types"
	"github.com/nivram913/vmmgr/utils"
	"github.com/nivram913/vmmgr/validate"
)

// Modify updates the persisted metadata of an existing VM. Empty fields are
// left unchanged; the update takes effect on the next run.
func (m *Manager) Modify(ctx context.Context, name string, opts types.ModifyOptions) error {
	if !validate.Name(name) {
		return fmt.Errorf("VM name %q: %w", name, errdefs.ErrInvalidArgument)
	}
	if opts.RAM != "" && !validate.Size(opts.RAM) {
		return fmt.Errorf("RAM size %q: %w", opts.RAM, errdefs.ErrInvalidArgument)
	}
	if opts.Network != "" && !opts.Network.Valid() {
		return fmt.Errorf("network mode %q: %w", opts.Network, errdefs.ErrInvalidArgument)
	}
	if opts.RAM == "" && opts.CDROM == "" && opts.Network == "" {
		return fmt.Errorf("nothing to modify: %w", errdefs.ErrInvalidArgument)
	}

	return m.withLock(ctx, func() error {
		rec, err := m.reg.Get(name)
		if err != nil {
			return err
		}
		cfg := m.loadVMConfig(ctx, rec)
		if opts.RAM != "" {
			cfg.RAM = opts.RAM
		}
		if opts.CDROM != "" {
			cfg.CDROM = opts.CDROM
		}
		if opts.Network != "" {
			cfg.Network = opts.Network
		}
		if err := utils.AtomicWriteJSON(rec.ConfigPath, cfg); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		log.WithFunc("manager.Modify").Infof(ctx, "updated config for %s", name)
		return nil
	})
}
