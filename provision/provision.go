// Package provision allocates the scarce per-user resources: MAC addresses
// from a bounded pool and disk sizes from size literals.
package provision

import (
	"fmt"
	"strings"

	units "github.com/docker/go-units"

	"github.com/nivram913/vmmgr/errdefs"
	"github.com/nivram913/vmmgr/validate"
)

const (
	// MACPrefix is the fixed prefix of the per-user MAC pool.
	MACPrefix = "52:54:00:12:34"
	// MACPoolSize is the number of usable suffixes: 0x00..0xFE.
	// 0xFF is reserved and never allocated.
	MACPoolSize = 255

	// MaxDiskBytes is the disk size ceiling: 50G in SI bytes.
	MaxDiskBytes = 50 * 1000 * 1000 * 1000
)

// AllocateMAC returns an address from the pool not present in existing.
// The probe starts at the current record count and walks forward modulo the
// pool size, so sequential creations get sequential suffixes. Uniqueness is
// case-insensitive: hex digits carry no case. The pool is a uniqueness
// token space, not a security identifier.
func AllocateMAC(existing map[string]struct{}) (string, error) {
	taken := make(map[string]struct{}, len(existing))
	for mac := range existing {
		taken[strings.ToLower(mac)] = struct{}{}
	}
	start := len(existing) % MACPoolSize
	for i := 0; i < MACPoolSize; i++ {
		mac := fmt.Sprintf("%s:%02x", MACPrefix, (start+i)%MACPoolSize)
		if _, ok := taken[mac]; !ok {
			return mac, nil
		}
	}
	return "", fmt.Errorf("MAC pool (%d addresses): %w", MACPoolSize, errdefs.ErrResourceExhausted)
}

// ParseDiskSize converts a size literal to SI bytes (M = 10^6, G = 10^9)
// and enforces the disk ceiling. The unit convention is decimal throughout;
// see the regression tests for the pinned values.
func ParseDiskSize(s string) (int64, error) {
	if !validate.Size(s) {
		return 0, fmt.Errorf("disk size %q: %w", s, errdefs.ErrInvalidArgument)
	}
	n, err := units.FromHumanSize(s)
	if err != nil {
		return 0, fmt.Errorf("disk size %q: %w", s, errdefs.ErrInvalidArgument)
	}
	if n > MaxDiskBytes {
		return 0, fmt.Errorf("disk size %s exceeds %s: %w",
			s, units.HumanSize(MaxDiskBytes), errdefs.ErrLimitExceeded)
	}
	return n, nil
}
