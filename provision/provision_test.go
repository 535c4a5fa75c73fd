package provision

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/nivram913/vmmgr/errdefs"
	"github.com/nivram913/vmmgr/validate"
)

func TestAllocateMACSequence(t *testing.T) {
	existing := make(map[string]struct{})
	seen := make(map[string]struct{})
	for i := 0; i < MACPoolSize; i++ {
		mac, err := AllocateMAC(existing)
		if err != nil {
			t.Fatalf("allocation %d failed: %v", i, err)
		}
		if !validate.MAC(mac) {
			t.Fatalf("allocation %d produced invalid MAC %q", i, mac)
		}
		if !strings.HasPrefix(mac, MACPrefix+":") {
			t.Fatalf("allocation %d outside pool prefix: %q", i, mac)
		}
		if _, dup := seen[mac]; dup {
			t.Fatalf("allocation %d returned duplicate MAC %q", i, mac)
		}
		seen[mac] = struct{}{}
		existing[mac] = struct{}{}
	}

	if _, err := AllocateMAC(existing); !errors.Is(err, errdefs.ErrResourceExhausted) {
		t.Fatalf("full pool: got %v, want ErrResourceExhausted", err)
	}
}

func TestAllocateMACStartsAtRecordCount(t *testing.T) {
	existing := map[string]struct{}{
		MACPrefix + ":00": {},
		MACPrefix + ":01": {},
	}
	mac, err := AllocateMAC(existing)
	if err != nil {
		t.Fatal(err)
	}
	if want := MACPrefix + ":02"; mac != want {
		t.Errorf("got %q, want %q", mac, want)
	}
}

func TestAllocateMACProbesPastCollision(t *testing.T) {
	// One record, but the probe start slot is already taken by a foreign
	// value: allocation must walk forward.
	existing := map[string]struct{}{MACPrefix + ":01": {}}
	mac, err := AllocateMAC(existing)
	if err != nil {
		t.Fatal(err)
	}
	if want := MACPrefix + ":02"; mac != want {
		t.Errorf("got %q, want %q", mac, want)
	}
}

func TestAllocateMACIgnoresCase(t *testing.T) {
	// Hand-edited MAC files may hold uppercase hex. With nine lowercase
	// suffixes plus an uppercase :0A the probe starts at slot 0x0a, which
	// is taken regardless of case; allocation must skip past it.
	existing := make(map[string]struct{})
	for i := 1; i < 10; i++ {
		existing[fmt.Sprintf("%s:%02x", MACPrefix, i)] = struct{}{}
	}
	existing[MACPrefix+":0A"] = struct{}{}

	mac, err := AllocateMAC(existing)
	if err != nil {
		t.Fatal(err)
	}
	if strings.EqualFold(mac, MACPrefix+":0a") {
		t.Fatalf("allocated %q, which collides with existing %s:0A", mac, MACPrefix)
	}
	if want := MACPrefix + ":0b"; mac != want {
		t.Errorf("got %q, want %q", mac, want)
	}
}

func TestAllocateMACReservedSuffix(t *testing.T) {
	// 0xff is reserved: with 254 records the probe starts at slot 254 and
	// must wrap to lower slots, never allocating :ff.
	existing := make(map[string]struct{})
	for i := 1; i < MACPoolSize; i++ {
		existing[fmt.Sprintf("%s:%02x", MACPrefix, i)] = struct{}{}
	}
	mac, err := AllocateMAC(existing)
	if err != nil {
		t.Fatal(err)
	}
	if want := MACPrefix + ":00"; mac != want {
		t.Errorf("got %q, want %q", mac, want)
	}
}

// Unit convention is decimal SI and is pinned here: M = 10^6, G = 10^9.
func TestParseDiskSize(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr error
	}{
		{"1M", 1_000_000, nil},
		{"1G", 1_000_000_000, nil},
		{"10G", 10_000_000_000, nil},
		{"50G", 50_000_000_000, nil},
		{"50001M", 0, errdefs.ErrLimitExceeded},
		{"51G", 0, errdefs.ErrLimitExceeded},
		{"", 0, errdefs.ErrInvalidArgument},
		{"0G", 0, errdefs.ErrInvalidArgument},
		{"10K", 0, errdefs.ErrInvalidArgument},
		{"ten gigs", 0, errdefs.ErrInvalidArgument},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := ParseDiskSize(c.in)
			if c.wantErr != nil {
				if !errors.Is(err, c.wantErr) {
					t.Fatalf("ParseDiskSize(%q) error = %v, want %v", c.in, err, c.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDiskSize(%q) failed: %v", c.in, err)
			}
			if got != c.want {
				t.Errorf("ParseDiskSize(%q) = %d, want %d", c.in, got, c.want)
			}
		})
	}
}
