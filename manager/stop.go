package manager

import (
	"context"
	"fmt"
	"os"

	"github.com/projecteru2/core/log"

	"github.com/nivram913/vmmgr/errdefs"
	"github.com/nivram913/vmmgr/types"
	"github.com/nivram913/vmmgr/utils"
	"github.com/nivram913/vmmgr/validate"
)

// Stop runs the graceful-then-forced shutdown protocol:
//
//  1. The VM must be running (monitor socket present), else NotRunning.
//  2. Send the power-down command over the monitor. Fire-and-forget.
//  3. Poll for the monitor to disappear within the grace period.
//  4. Still running and no force: StillRunning. With force: kill the
//     process by its unique monitor-path token, then re-verify that the
//     kill converged before reporting success.
func (m *Manager) Stop(ctx context.Context, name string, force bool) error {
	if !validate.Name(name) {
		return fmt.Errorf("VM name %q: %w", name, errdefs.ErrInvalidArgument)
	}
	return m.withLock(ctx, func() error {
		rec, err := m.reg.Get(name)
		if err != nil {
			return err
		}
		return m.stopLocked(ctx, rec, force)
	})
}

// stopLocked is the shutdown state machine body. The caller holds the home
// lock and has verified the record exists.
func (m *Manager) stopLocked(ctx context.Context, rec *types.Record, force bool) error {
	logger := log.WithFunc("manager.stop")
	if !m.reg.IsRunning(rec.Name) {
		return fmt.Errorf("VM %q: %w", rec.Name, errdefs.ErrNotRunning)
	}

	if err := m.hyper.Powerdown(ctx, rec.MonitorPath); err != nil {
		return fmt.Errorf("VM %q: %w", rec.Name, err)
	}

	err := utils.WaitFor(ctx, m.grace, pollInterval, func() (bool, error) {
		return !m.reg.IsRunning(rec.Name), nil
	})
	if err == nil {
		logger.Infof(ctx, "VM %s powered down", rec.Name)
		return nil
	}
	if !force {
		return fmt.Errorf("VM %q did not power down within %s: %w", rec.Name, m.grace, errdefs.ErrStillRunning)
	}

	logger.Warnf(ctx, "VM %s ignored power-down, escalating to forced termination", rec.Name)
	if err := m.hyper.Kill(ctx, rec.MonitorPath); err != nil {
		return fmt.Errorf("force kill VM %q: %w", rec.Name, err)
	}
	if err := utils.WaitFor(ctx, m.grace, pollInterval, func() (bool, error) {
		return !m.hyper.Alive(ctx, rec.MonitorPath), nil
	}); err != nil {
		return fmt.Errorf("VM %q survived forced termination: %w", rec.Name, errdefs.ErrStillRunning)
	}

	// A killed hypervisor leaves its socket file behind; remove it so the
	// derived running state heals.
	if utils.PathExists(rec.MonitorPath) {
		if err := os.Remove(rec.MonitorPath); err != nil {
			logger.Warnf(ctx, "remove stale monitor %s: %v", rec.MonitorPath, err)
		}
	}
	logger.Infof(ctx, "VM %s terminated", rec.Name)
	return nil
}
