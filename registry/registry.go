// Package registry maintains the in-memory view of one user's VMs, loaded
// from the VM home directory and kept consistent with it through every
// mutation. The filesystem is the source of truth: a record exists iff its
// directory exists and contains a readable, valid MAC file, and a VM is
// running iff its monitor socket path exists.
package registry

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/nivram913/vmmgr/config"
	"github.com/nivram913/vmmgr/errdefs"
	"github.com/nivram913/vmmgr/types"
	"github.com/nivram913/vmmgr/validate"
)

// Registry is the in-process record set for one user. It is owned
// exclusively by the orchestrator for the duration of one invocation.
type Registry struct {
	conf *config.Config
	vms  map[string]*types.Record
}

// Load scans the user's VM home and builds the registry. The home directory
// must already exist; it is provisioned by the system administrator.
func Load(conf *config.Config) (*Registry, error) {
	r := &Registry{conf: conf}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload rescans the home directory, replacing the in-memory view. The scan
// is tolerant: entries with an invalid name or an unreadable or malformed
// MAC file are skipped silently so that partial artifacts (e.g. from an
// interrupted create) never block the whole registry.
func (r *Registry) Reload() error {
	home := r.conf.UserHome()
	entries, err := os.ReadDir(home)
	if err != nil {
		return fmt.Errorf("read VM home %s: %w", home, err)
	}

	vms := make(map[string]*types.Record, len(entries))
	for _, e := range entries {
		if !e.IsDir() || !validate.Name(e.Name()) {
			continue
		}
		rec, ok := r.readRecord(e.Name())
		if !ok {
			continue
		}
		vms[rec.Name] = rec
	}
	r.vms = vms
	return nil
}

// readRecord builds the record for one directory entry, reporting ok=false
// when the entry does not qualify as a VM.
func (r *Registry) readRecord(name string) (*types.Record, bool) {
	raw, err := os.ReadFile(r.conf.MACFile(name)) //nolint:gosec // manager-owned path
	if err != nil {
		return nil, false
	}
	// Hand-edited MAC files may use uppercase hex; normalize so set
	// membership checks against allocated addresses stay exact.
	mac := strings.ToLower(strings.TrimSpace(string(raw)))
	if !validate.MAC(mac) {
		return nil, false
	}
	return &types.Record{
		Name:        name,
		MAC:         mac,
		DiskPath:    r.conf.DiskPath(name),
		MonitorPath: r.conf.MonitorPath(name),
		ConfigPath:  r.conf.ConfigFile(name),
	}, true
}

// Get returns the record for name or errdefs.ErrNotFound.
func (r *Registry) Get(name string) (*types.Record, error) {
	rec := r.vms[name]
	if rec == nil {
		return nil, fmt.Errorf("VM %q: %w", name, errdefs.ErrNotFound)
	}
	return rec, nil
}

// Insert adds a record. The caller must have created the backing directory,
// disk, and MAC file first.
func (r *Registry) Insert(rec *types.Record) { r.vms[rec.Name] = rec }

// Remove drops a record. The caller must have deleted the backing files
// first.
func (r *Registry) Remove(name string) { delete(r.vms, name) }

// Len returns the number of records currently held.
func (r *Registry) Len() int { return len(r.vms) }

// All returns every record sorted by name.
func (r *Registry) All() []*types.Record {
	out := make([]*types.Record, 0, len(r.vms))
	for _, rec := range r.vms {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MACSet returns the set of MAC addresses held by all records.
func (r *Registry) MACSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.vms))
	for _, rec := range r.vms {
		set[rec.MAC] = struct{}{}
	}
	return set
}

// IsRunning checks the monitor socket path. Always a fresh stat; the result
// is never cached.
func (r *Registry) IsRunning(name string) bool {
	_, err := os.Stat(r.conf.MonitorPath(name))
	return err == nil
}

// State derives the lifecycle state of name from the filesystem.
func (r *Registry) State(name string) types.State {
	if _, err := os.Stat(r.conf.VMDir(name)); err != nil {
		return types.StateAbsent
	}
	if _, ok := r.vms[name]; !ok {
		return types.StateAbsent
	}
	if r.IsRunning(name) {
		return types.StateRunning
	}
	return types.StateStopped
}
