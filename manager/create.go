package manager

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/projecteru2/core/log"

	"github.com/nivram913/vmmgr/errdefs"
	"github.com/nivram913/vmmgr/provision"
	"github.com/nivram913/vmmgr/types"
	"github.com/nivram913/vmmgr/utils"
	"github.com/nivram913/vmmgr/validate"
)

const defaultRAM = "1G"

// Create provisions a new stopped VM: allocate a MAC, create the backing
// directory and disk image, persist the MAC file and metadata, register the
// record. The filesystem mutations happen in a fixed order so a crash after
// any prefix leaves an orphan the tolerant scan skips and prune removes.
func (m *Manager) Create(ctx context.Context, name, diskSize string, opts types.CreateOptions) (*types.Record, error) {
	if !validate.Name(name) {
		return nil, fmt.Errorf("VM name %q: %w", name, errdefs.ErrInvalidArgument)
	}
	if _, err := provision.ParseDiskSize(diskSize); err != nil {
		return nil, err
	}
	if opts.RAM == "" {
		opts.RAM = defaultRAM
	}
	if !validate.Size(opts.RAM) {
		return nil, fmt.Errorf("RAM size %q: %w", opts.RAM, errdefs.ErrInvalidArgument)
	}
	if opts.Network == "" {
		opts.Network = types.NetworkNAT
	}
	if !opts.Network.Valid() {
		return nil, fmt.Errorf("network mode %q: %w", opts.Network, errdefs.ErrInvalidArgument)
	}

	var rec *types.Record
	err := m.withLock(ctx, func() error {
		if _, err := m.reg.Get(name); err == nil {
			return fmt.Errorf("VM %q: %w", name, errdefs.ErrAlreadyExists)
		}
		dir := m.conf.VMDir(name)
		if utils.PathExists(dir) {
			// Orphaned directory from an earlier partial create.
			return fmt.Errorf("directory %s: %w", dir, errdefs.ErrAlreadyExists)
		}

		mac, err := provision.AllocateMAC(m.reg.MACSet())
		if err != nil {
			return err
		}

		if err := os.Mkdir(dir, 0o750); err != nil {
			return fmt.Errorf("create VM directory: %w", err)
		}
		if err := m.hyper.CreateDisk(ctx, m.conf.DiskPath(name), diskSize); err != nil {
			m.rollbackCreate(ctx, dir)
			return fmt.Errorf("create disk: %w", err)
		}
		cfg := types.VMConfig{
			ID:      uuid.NewString(),
			RAM:     opts.RAM,
			CDROM:   opts.CDROM,
			Network: opts.Network,
		}
		if err := utils.AtomicWriteJSON(m.conf.ConfigFile(name), cfg); err != nil {
			m.rollbackCreate(ctx, dir)
			return fmt.Errorf("write config: %w", err)
		}
		// The MAC file lands last: its presence turns the directory into a
		// registry record.
		if err := utils.AtomicWriteFile(m.conf.MACFile(name), []byte(mac+"\n"), 0o644); err != nil {
			m.rollbackCreate(ctx, dir)
			return fmt.Errorf("write MAC file: %w", err)
		}

		rec = &types.Record{
			Name:        name,
			MAC:         mac,
			DiskPath:    m.conf.DiskPath(name),
			MonitorPath: m.conf.MonitorPath(name),
			ConfigPath:  m.conf.ConfigFile(name),
		}
		m.reg.Insert(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithFunc("manager.Create").Infof(ctx, "created VM %s (mac %s)", rec.Name, rec.MAC)
	return rec, nil
}

// rollbackCreate removes a partially created VM directory. A rollback
// failure is reported in the log without masking the original error.
func (m *Manager) rollbackCreate(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		log.WithFunc("manager.rollbackCreate").Warnf(ctx, "rollback %s: %v", dir, err)
	}
}
