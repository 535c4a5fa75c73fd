package manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nivram913/vmmgr/errdefs"
	"github.com/nivram913/vmmgr/types"
)

func TestRunUsesStoredConfig(t *testing.T) {
	m, fake, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := m.Create(ctx, "vm1", "10G", types.CreateOptions{RAM: "2G", Network: types.NetworkNone}); err != nil {
		t.Fatal(err)
	}
	if err := m.Run(ctx, "vm1", types.RunOptions{}); err != nil {
		t.Fatal(err)
	}

	if len(fake.runs) != 1 {
		t.Fatalf("%d run specs, want 1", len(fake.runs))
	}
	spec := fake.runs[0]
	if spec.Memory != "2G" {
		t.Errorf("memory = %q, want stored 2G", spec.Memory)
	}
	if spec.Network != types.NetworkNone {
		t.Errorf("network = %q, want stored none", spec.Network)
	}
	if spec.CDROM != "" {
		t.Errorf("unexpected boot override: %q", spec.CDROM)
	}
}

func TestRunFlagOverridesStoredRAM(t *testing.T) {
	m, fake, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := m.Create(ctx, "vm1", "10G", types.CreateOptions{RAM: "2G"}); err != nil {
		t.Fatal(err)
	}
	if err := m.Run(ctx, "vm1", types.RunOptions{RAM: "4G"}); err != nil {
		t.Fatal(err)
	}
	if got := fake.runs[0].Memory; got != "4G" {
		t.Errorf("memory = %q, want 4G", got)
	}
}

func TestRunBootCDROM(t *testing.T) {
	m, fake, _ := newTestManager(t)
	ctx := context.Background()

	iso := filepath.Join(t.TempDir(), "install.iso")
	if err := os.WriteFile(iso, []byte("iso"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Create(ctx, "vm1", "10G", types.CreateOptions{CDROM: iso}); err != nil {
		t.Fatal(err)
	}
	if err := m.Run(ctx, "vm1", types.RunOptions{Boot: types.BootCDROM}); err != nil {
		t.Fatal(err)
	}
	if got := fake.runs[0].CDROM; got != iso {
		t.Errorf("cdrom = %q, want %q", got, iso)
	}

	// A VM without a configured ISO cannot boot from cdrom.
	if _, err := m.Create(ctx, "vm2", "10G", types.CreateOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := m.Run(ctx, "vm2", types.RunOptions{Boot: types.BootCDROM}); !errors.Is(err, errdefs.ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

func TestRunUnknownVM(t *testing.T) {
	m, _, _ := newTestManager(t)
	if err := m.Run(context.Background(), "ghost", types.RunOptions{}); !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestInstallGuards(t *testing.T) {
	m, fake, _ := newTestManager(t)
	ctx := context.Background()

	iso := filepath.Join(t.TempDir(), "install.iso")
	if err := os.WriteFile(iso, []byte("iso"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Create(ctx, "vm1", "10G", types.CreateOptions{}); err != nil {
		t.Fatal(err)
	}

	if err := m.Install(ctx, "vm1", "", iso, "vnc"); !errors.Is(err, errdefs.ErrInvalidArgument) {
		t.Errorf("bad display: got %v, want ErrInvalidArgument", err)
	}
	if err := m.Install(ctx, "vm1", "", "/does/not/exist.iso", types.DisplayNone); !errors.Is(err, errdefs.ErrInvalidArgument) {
		t.Errorf("missing ISO: got %v, want ErrInvalidArgument", err)
	}
	if err := m.Install(ctx, "ghost", "", iso, types.DisplayNone); !errors.Is(err, errdefs.ErrNotFound) {
		t.Errorf("missing VM: got %v, want ErrNotFound", err)
	}

	if err := m.Install(ctx, "vm1", "2G", iso, types.DisplayNone); err != nil {
		t.Fatal(err)
	}
	if len(fake.installs) != 1 {
		t.Fatalf("%d install specs, want 1", len(fake.installs))
	}
	spec := fake.installs[0]
	if spec.CDROM != iso || spec.Memory != "2G" || spec.Display != types.DisplayNone {
		t.Errorf("unexpected install spec: %+v", spec)
	}

	// Install on a running VM is rejected.
	if err := m.Run(ctx, "vm1", types.RunOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := m.Install(ctx, "vm1", "", iso, types.DisplayNone); !errors.Is(err, errdefs.ErrAlreadyRunning) {
		t.Errorf("running VM: got %v, want ErrAlreadyRunning", err)
	}
}

func TestModify(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := m.Create(ctx, "vm1", "10G", types.CreateOptions{RAM: "1G"}); err != nil {
		t.Fatal(err)
	}

	if err := m.Modify(ctx, "vm1", types.ModifyOptions{}); !errors.Is(err, errdefs.ErrInvalidArgument) {
		t.Errorf("empty modify: got %v, want ErrInvalidArgument", err)
	}
	if err := m.Modify(ctx, "vm1", types.ModifyOptions{RAM: "bogus"}); !errors.Is(err, errdefs.ErrInvalidArgument) {
		t.Errorf("bad ram: got %v, want ErrInvalidArgument", err)
	}
	if err := m.Modify(ctx, "ghost", types.ModifyOptions{RAM: "2G"}); !errors.Is(err, errdefs.ErrNotFound) {
		t.Errorf("missing VM: got %v, want ErrNotFound", err)
	}

	if err := m.Modify(ctx, "vm1", types.ModifyOptions{RAM: "4G", Network: types.NetworkBridge}); err != nil {
		t.Fatal(err)
	}
	cfg, err := m.Config(ctx, "vm1")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RAM != "4G" || cfg.Network != types.NetworkBridge {
		t.Errorf("config not updated: %+v", cfg)
	}
}

func TestListAndState(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha"} {
		if _, err := m.Create(ctx, name, "10G", types.CreateOptions{}); err != nil {
			t.Fatal(err)
		}
	}

	recs, err := m.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].Name != "alpha" || recs[1].Name != "zeta" {
		t.Fatalf("unexpected listing: %+v", recs)
	}

	if st, err := m.State(ctx, "alpha"); err != nil || st != types.StateStopped {
		t.Errorf("state = %v/%v, want stopped", st, err)
	}
	if err := m.Run(ctx, "alpha", types.RunOptions{}); err != nil {
		t.Fatal(err)
	}
	if st, err := m.State(ctx, "alpha"); err != nil || st != types.StateRunning {
		t.Errorf("state = %v/%v, want running", st, err)
	}
	if st, err := m.State(ctx, "ghost"); err != nil || st != types.StateAbsent {
		t.Errorf("state = %v/%v, want absent", st, err)
	}
}

func TestPruneRemovesOrphansOnly(t *testing.T) {
	m, _, conf := newTestManager(t)
	ctx := context.Background()

	if _, err := m.Create(ctx, "vm1", "10G", types.CreateOptions{}); err != nil {
		t.Fatal(err)
	}
	// Orphan: directory without a MAC file, as left by an interrupted create.
	if err := os.Mkdir(conf.VMDir("halfmade"), 0o750); err != nil {
		t.Fatal(err)
	}
	// Not a VM-shaped name: must be left alone.
	if err := os.Mkdir(filepath.Join(conf.UserHome(), "not a vm"), 0o750); err != nil {
		t.Fatal(err)
	}

	removed, err := m.Prune(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 1 || removed[0] != "halfmade" {
		t.Fatalf("removed = %v, want [halfmade]", removed)
	}
	if _, err := os.Stat(conf.VMDir("vm1")); err != nil {
		t.Fatal("prune touched a valid VM")
	}
	if _, err := os.Stat(filepath.Join(conf.UserHome(), "not a vm")); err != nil {
		t.Fatal("prune touched a foreign directory")
	}
}
