package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nivram913/vmmgr/config"
	"github.com/nivram913/vmmgr/errdefs"
	"github.com/nivram913/vmmgr/types"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	conf := config.DefaultConfig()
	conf.VMsHome = t.TempDir()
	conf.User = "alice"
	if err := os.Mkdir(conf.UserHome(), 0o750); err != nil {
		t.Fatal(err)
	}
	return conf
}

func addVM(t *testing.T, conf *config.Config, name, mac string) {
	t.Helper()
	if err := os.Mkdir(conf.VMDir(name), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(conf.MACFile(name), []byte(mac+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadScansValidEntries(t *testing.T) {
	conf := testConfig(t)
	addVM(t, conf, "vm1", "52:54:00:12:34:00")
	addVM(t, conf, "vm2", "52:54:00:12:34:01")

	r, err := Load(conf)
	if err != nil {
		t.Fatal(err)
	}
	if r.Len() != 2 {
		t.Fatalf("loaded %d records, want 2", r.Len())
	}
	rec, err := r.Get("vm1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.MAC != "52:54:00:12:34:00" {
		t.Errorf("MAC = %q", rec.MAC)
	}
	if rec.DiskPath != conf.DiskPath("vm1") {
		t.Errorf("DiskPath = %q", rec.DiskPath)
	}
}

func TestLoadNormalizesMACCase(t *testing.T) {
	conf := testConfig(t)
	addVM(t, conf, "upper", "52:54:00:12:34:0A")

	r, err := Load(conf)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := r.Get("upper")
	if err != nil {
		t.Fatal(err)
	}
	if rec.MAC != "52:54:00:12:34:0a" {
		t.Errorf("MAC = %q, want lowercase 52:54:00:12:34:0a", rec.MAC)
	}
	if _, ok := r.MACSet()["52:54:00:12:34:0a"]; !ok {
		t.Error("MACSet misses the normalized address")
	}
}

func TestLoadSkipsMalformedEntries(t *testing.T) {
	conf := testConfig(t)
	addVM(t, conf, "good", "52:54:00:12:34:00")

	// No MAC file at all.
	if err := os.Mkdir(conf.VMDir("nomac"), 0o750); err != nil {
		t.Fatal(err)
	}
	// MAC file with garbage content.
	addVM(t, conf, "badmac", "not-a-mac")
	// Plain file at the top level, not a directory.
	if err := os.WriteFile(filepath.Join(conf.UserHome(), "stray.img"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := Load(conf)
	if err != nil {
		t.Fatal(err)
	}
	if r.Len() != 1 {
		t.Fatalf("loaded %d records, want 1", r.Len())
	}
	if _, err := r.Get("nomac"); !errors.Is(err, errdefs.ErrNotFound) {
		t.Errorf("nomac: got %v, want ErrNotFound", err)
	}
	if _, err := r.Get("badmac"); !errors.Is(err, errdefs.ErrNotFound) {
		t.Errorf("badmac: got %v, want ErrNotFound", err)
	}
}

func TestLoadMissingHome(t *testing.T) {
	conf := config.DefaultConfig()
	conf.VMsHome = t.TempDir()
	conf.User = "nobody" // home never created

	if _, err := Load(conf); err == nil {
		t.Fatal("expected error for missing home")
	}
}

func TestIsRunningTracksMonitorPath(t *testing.T) {
	conf := testConfig(t)
	addVM(t, conf, "vm1", "52:54:00:12:34:00")

	r, err := Load(conf)
	if err != nil {
		t.Fatal(err)
	}
	if r.IsRunning("vm1") {
		t.Fatal("running before monitor exists")
	}
	if got := r.State("vm1"); got != types.StateStopped {
		t.Fatalf("state = %q, want stopped", got)
	}

	if err := os.WriteFile(conf.MonitorPath("vm1"), nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if !r.IsRunning("vm1") {
		t.Fatal("not running with monitor present")
	}
	if got := r.State("vm1"); got != types.StateRunning {
		t.Fatalf("state = %q, want running", got)
	}

	// Never cached: removing the monitor flips the answer immediately.
	if err := os.Remove(conf.MonitorPath("vm1")); err != nil {
		t.Fatal(err)
	}
	if r.IsRunning("vm1") {
		t.Fatal("still running after monitor removal")
	}
}

func TestStateAbsent(t *testing.T) {
	conf := testConfig(t)
	r, err := Load(conf)
	if err != nil {
		t.Fatal(err)
	}
	if got := r.State("ghost"); got != types.StateAbsent {
		t.Fatalf("state = %q, want absent", got)
	}
}

func TestMACSetAndAll(t *testing.T) {
	conf := testConfig(t)
	addVM(t, conf, "b", "52:54:00:12:34:01")
	addVM(t, conf, "a", "52:54:00:12:34:00")

	r, err := Load(conf)
	if err != nil {
		t.Fatal(err)
	}
	set := r.MACSet()
	if len(set) != 2 {
		t.Fatalf("MACSet size = %d", len(set))
	}
	all := r.All()
	if len(all) != 2 || all[0].Name != "a" || all[1].Name != "b" {
		t.Fatalf("All not sorted by name: %v", []string{all[0].Name, all[1].Name})
	}
}
