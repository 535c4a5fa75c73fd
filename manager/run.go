package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/projecteru2/core/log"

	"github.com/nivram913/vmmgr/errdefs"
	"github.com/nivram913/vmmgr/types"
	"github.com/nivram913/vmmgr/validate"
)

// Run launches a stopped VM as a daemonized hypervisor process. RAM and
// network default to the values recorded in config.json at create time;
// --boot cdrom requires a configured installer ISO. Run writes no files of
// its own: the monitor socket is created by the hypervisor process.
func (m *Manager) Run(ctx context.Context, name string, opts types.RunOptions) error {
	if !validate.Name(name) {
		return fmt.Errorf("VM name %q: %w", name, errdefs.ErrInvalidArgument)
	}
	if opts.RAM != "" && !validate.Size(opts.RAM) {
		return fmt.Errorf("RAM size %q: %w", opts.RAM, errdefs.ErrInvalidArgument)
	}
	if opts.Boot != "" && !opts.Boot.Valid() {
		return fmt.Errorf("boot device %q: %w", opts.Boot, errdefs.ErrInvalidArgument)
	}

	return m.withLock(ctx, func() error {
		rec, err := m.reg.Get(name)
		if err != nil {
			return err
		}
		if m.reg.IsRunning(name) {
			return fmt.Errorf("VM %q: %w", name, errdefs.ErrAlreadyRunning)
		}

		cfg := m.loadVMConfig(ctx, rec)
		ram := opts.RAM
		if ram == "" {
			ram = cfg.RAM
		}
		if ram == "" {
			ram = defaultRAM
		}

		spec := &types.RunSpec{
			Name:        rec.Name,
			DiskPath:    rec.DiskPath,
			MonitorPath: rec.MonitorPath,
			Memory:      ram,
			MAC:         rec.MAC,
			Network:     cfg.Network,
		}
		if opts.Boot == types.BootCDROM {
			if cfg.CDROM == "" {
				return fmt.Errorf("VM %q has no CD-ROM configured: %w", name, errdefs.ErrInvalidArgument)
			}
			spec.CDROM = cfg.CDROM
		}

		if err := m.hyper.Run(ctx, spec); err != nil {
			return fmt.Errorf("launch VM %q: %w", name, err)
		}
		log.WithFunc("manager.Run").Infof(ctx, "VM %s running (ram %s, mac %s)", name, ram, rec.MAC)
		return nil
	})
}

// loadVMConfig reads the per-VM metadata, tolerating a missing or malformed
// file: config.json is opaque convenience data, never a liveness criterion.
func (m *Manager) loadVMConfig(ctx context.Context, rec *types.Record) types.VMConfig {
	cfg := types.VMConfig{RAM: defaultRAM, Network: types.NetworkNAT}
	raw, err := os.ReadFile(rec.ConfigPath) //nolint:gosec // manager-owned path
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		log.WithFunc("manager.loadVMConfig").Warnf(ctx, "malformed %s: %v", rec.ConfigPath, err)
		return types.VMConfig{RAM: defaultRAM, Network: types.NetworkNAT}
	}
	if cfg.RAM == "" || !validate.Size(cfg.RAM) {
		cfg.RAM = defaultRAM
	}
	if !cfg.Network.Valid() {
		cfg.Network = types.NetworkNAT
	}
	return cfg
}
