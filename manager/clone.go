package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/projecteru2/core/log"
	"golang.org/x/sync/errgroup"

	"github.com/nivram913/vmmgr/errdefs"
	"github.com/nivram913/vmmgr/provision"
	"github.com/nivram913/vmmgr/types"
	"github.com/nivram913/vmmgr/utils"
	"github.com/nivram913/vmmgr/validate"
)

// Clone creates an independent copy of a stopped VM: fresh MAC, fresh
// instance ID, byte-identical disk image, shared nothing. Disk and metadata
// are copied concurrently; any failure rolls the new directory back.
func (m *Manager) Clone(ctx context.Context, name, newName string) (*types.Record, error) {
	if !validate.Name(name) {
		return nil, fmt.Errorf("VM name %q: %w", name, errdefs.ErrInvalidArgument)
	}
	if !validate.Name(newName) {
		return nil, fmt.Errorf("VM name %q: %w", newName, errdefs.ErrInvalidArgument)
	}

	var rec *types.Record
	err := m.withLock(ctx, func() error {
		src, err := m.reg.Get(name)
		if err != nil {
			return err
		}
		if m.reg.IsRunning(name) {
			return fmt.Errorf("VM %q: %w", name, errdefs.ErrStillRunning)
		}
		if _, err := m.reg.Get(newName); err == nil {
			return fmt.Errorf("VM %q: %w", newName, errdefs.ErrAlreadyExists)
		}
		dir := m.conf.VMDir(newName)
		if utils.PathExists(dir) {
			return fmt.Errorf("directory %s: %w", dir, errdefs.ErrAlreadyExists)
		}

		mac, err := provision.AllocateMAC(m.reg.MACSet())
		if err != nil {
			return err
		}
		if err := os.Mkdir(dir, 0o750); err != nil {
			return fmt.Errorf("create VM directory: %w", err)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return utils.CopyFile(src.DiskPath, m.conf.DiskPath(newName), 0o640)
		})
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return m.cloneVMConfig(src, m.conf.ConfigFile(newName))
		})
		if err := g.Wait(); err != nil {
			m.rollbackCreate(ctx, dir)
			return fmt.Errorf("clone %s: %w", name, err)
		}

		// The MAC file lands last: its presence turns the directory into a
		// registry record.
		if err := utils.AtomicWriteFile(m.conf.MACFile(newName), []byte(mac+"\n"), 0o644); err != nil {
			m.rollbackCreate(ctx, dir)
			return fmt.Errorf("write MAC file: %w", err)
		}

		rec = &types.Record{
			Name:        newName,
			MAC:         mac,
			DiskPath:    m.conf.DiskPath(newName),
			MonitorPath: m.conf.MonitorPath(newName),
			ConfigPath:  m.conf.ConfigFile(newName),
		}
		m.reg.Insert(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithFunc("manager.Clone").Infof(ctx, "cloned %s to %s (mac %s)", name, newName, rec.MAC)
	return rec, nil
}

// cloneVMConfig copies the source metadata with a fresh instance ID. A
// missing or malformed source config yields a fresh default one.
func (m *Manager) cloneVMConfig(src *types.Record, dst string) error {
	cfg := types.VMConfig{RAM: defaultRAM, Network: types.NetworkNAT}
	if raw, err := os.ReadFile(src.ConfigPath); err == nil { //nolint:gosec // manager-owned path
		_ = json.Unmarshal(raw, &cfg)
	}
	cfg.ID = uuid.NewString()
	return utils.AtomicWriteJSON(dst, cfg)
}
