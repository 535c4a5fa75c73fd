package manager

import (
	"context"
	"fmt"

	"github.com/nivram913/vmmgr/errdefs"
	"github.com/nivram913/vmmgr/types"
	"github.com/nivram913/vmmgr/validate"
)

// List returns all records, or the single named one. Read-only: the
// registry is rescanned but no lock is taken.
func (m *Manager) List(ctx context.Context, name string) ([]*types.Record, error) {
	if err := m.reg.Reload(); err != nil {
		return nil, err
	}
	if name == "" {
		return m.reg.All(), nil
	}
	if !validate.Name(name) {
		return nil, fmt.Errorf("VM name %q: %w", name, errdefs.ErrInvalidArgument)
	}
	rec, err := m.reg.Get(name)
	if err != nil {
		return nil, err
	}
	return []*types.Record{rec}, nil
}

// State derives the current state of one VM. A name with no record is
// reported as absent rather than an error.
func (m *Manager) State(ctx context.Context, name string) (types.State, error) {
	if !validate.Name(name) {
		return "", fmt.Errorf("VM name %q: %w", name, errdefs.ErrInvalidArgument)
	}
	if err := m.reg.Reload(); err != nil {
		return "", err
	}
	return m.reg.State(name), nil
}

// IsRunning reports the fresh running state of name.
func (m *Manager) IsRunning(name string) bool { return m.reg.IsRunning(name) }

// Config returns the per-VM metadata document for list --config output.
func (m *Manager) Config(ctx context.Context, name string) (types.VMConfig, error) {
	if err := m.reg.Reload(); err != nil {
		return types.VMConfig{}, err
	}
	rec, err := m.reg.Get(name)
	if err != nil {
		return types.VMConfig{}, err
	}
	return m.loadVMConfig(ctx, rec), nil
}
