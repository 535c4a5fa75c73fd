// Package manager is the lifecycle orchestrator: the public operations
// (create, delete, run, install, stop, clone, modify, list, prune) that
// validate inputs, consult the registry, provision resources, drive the
// external hypervisor, and keep the on-disk state consistent.
package manager

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nivram913/vmmgr/config"
	"github.com/nivram913/vmmgr/hypervisor"
	"github.com/nivram913/vmmgr/lock"
	"github.com/nivram913/vmmgr/lock/flock"
	"github.com/nivram913/vmmgr/registry"
)

const pollInterval = 200 * time.Millisecond

// Manager owns the registry for one user and sequences every operation.
// Mutating operations take an exclusive advisory lock on the user's VM home
// around the whole check-allocate-commit sequence, so concurrent
// invocations by the same user cannot race on name or MAC allocation.
type Manager struct {
	conf   *config.Config
	hyper  hypervisor.Hypervisor
	locker lock.Locker
	reg    *registry.Registry

	grace time.Duration
}

// New builds a Manager for the configured user. The per-user home must
// already exist: it is provisioned by the system administrator, and its
// absence means the caller is not authorized to manage VMs on this host.
func New(conf *config.Config, hyper hypervisor.Hypervisor) (*Manager, error) {
	home := conf.UserHome()
	if info, err := os.Stat(home); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("VM home %s does not exist, contact your system administrator", home)
	}
	reg, err := registry.Load(conf)
	if err != nil {
		return nil, err
	}
	return &Manager{
		conf:   conf,
		hyper:  hyper,
		locker: flock.New(conf.HomeLock()),
		reg:    reg,
		grace:  conf.GracePeriod(),
	}, nil
}

// withLock serializes a mutating operation: acquire the home lock, rescan
// the registry so checks run against fresh ground truth, then run fn.
func (m *Manager) withLock(ctx context.Context, fn func() error) error {
	return lock.WithLock(ctx, m.locker, func() error {
		if err := m.reg.Reload(); err != nil {
			return err
		}
		return fn()
	})
}
