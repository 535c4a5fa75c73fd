package manager

import (
	"context"
	"os"
	"sort"
	"sync"

	"github.com/projecteru2/core/log"
	"golang.org/x/sync/errgroup"

	"github.com/nivram913/vmmgr/utils"
	"github.com/nivram913/vmmgr/validate"
)

const pruneParallelism = 4

// Prune is the reconciliation pass for the filesystem-as-database model:
// it removes directories under the user home that the tolerant scan skips —
// orphans left by interrupted creates, with no readable valid MAC file.
// Valid records are never touched. Returns the names removed.
func (m *Manager) Prune(ctx context.Context) ([]string, error) {
	var removed []string
	err := m.withLock(ctx, func() error {
		// Only directories that look like VM names are candidates; anything
		// else under the home is not ours to remove.
		var orphans []string
		for _, name := range utils.ScanSubdirs(m.conf.UserHome()) {
			if !validate.Name(name) {
				continue
			}
			if _, err := m.reg.Get(name); err != nil {
				orphans = append(orphans, name)
			}
		}

		logger := log.WithFunc("manager.Prune")
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(pruneParallelism)
		for _, name := range orphans {
			name := name
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				dir := m.conf.VMDir(name)
				if err := os.RemoveAll(dir); err != nil {
					logger.Warnf(gctx, "prune %s: %v", dir, err)
					return nil // best effort, keep going
				}
				logger.Infof(gctx, "pruned orphan %s", dir)
				mu.Lock()
				removed = append(removed, name)
				mu.Unlock()
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(removed)
	return removed, nil
}
