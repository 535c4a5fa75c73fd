package config

import (
	"os"
	"os/user"
	"path/filepath"
	"time"

	coretypes "github.com/projecteru2/core/types"
)

// Config holds global vmmgr configuration.
type Config struct {
	// VMsHome is the shared base directory holding one subdirectory per user.
	VMsHome string `json:"vms_home" mapstructure:"vms_home"`
	// User is the directory name under VMsHome. Defaults to the current user.
	User string `json:"user" mapstructure:"user"`
	// QEMUBinary is the hypervisor executable.
	QEMUBinary string `json:"qemu_binary" mapstructure:"qemu_binary"`
	// QEMUImgBinary is the disk-image tool executable.
	QEMUImgBinary string `json:"qemu_img_binary" mapstructure:"qemu_img_binary"`
	// GracePeriodSeconds is how long stop waits for a guest to power down.
	GracePeriodSeconds int `json:"grace_period_seconds" mapstructure:"grace_period_seconds"`
	// Log configuration, uses eru core's ServerLogConfig.
	Log coretypes.ServerLogConfig `json:"log" mapstructure:"log"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		VMsHome:            "/opt/VMs",
		User:               currentUser(),
		QEMUBinary:         "qemu-system-x86_64",
		QEMUImgBinary:      "qemu-img",
		GracePeriodSeconds: 5,
		Log: coretypes.ServerLogConfig{
			Level:      "info",
			MaxSize:    500,
			MaxAge:     28,
			MaxBackups: 3,
		},
	}
}

// GracePeriod returns the stop grace period as a duration.
func (c *Config) GracePeriod() time.Duration {
	if c.GracePeriodSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.GracePeriodSeconds) * time.Second
}

// UserHome is the per-user VM home directory. It is provisioned by the
// system administrator; vmmgr never creates it.
func (c *Config) UserHome() string { return filepath.Join(c.VMsHome, c.User) }

// HomeLock is the advisory lock file guarding every mutating operation on
// the user's VM home.
func (c *Config) HomeLock() string { return filepath.Join(c.UserHome(), ".vmmgr.lock") }

// VMDir is the backing directory of one VM.
func (c *Config) VMDir(name string) string { return filepath.Join(c.UserHome(), name) }

// DiskPath is the VM's persistent disk image.
func (c *Config) DiskPath(name string) string { return filepath.Join(c.VMDir(name), "disk.img") }

// MACFile holds the VM's MAC address, one line. Its presence and validity
// define record existence.
func (c *Config) MACFile(name string) string { return filepath.Join(c.VMDir(name), "mac_addr") }

// MonitorPath is the hypervisor control socket. Presence means running.
func (c *Config) MonitorPath(name string) string { return filepath.Join(c.VMDir(name), "monitor") }

// ConfigFile is the VM's opaque metadata document.
func (c *Config) ConfigFile(name string) string {
	return filepath.Join(c.VMDir(name), "config.json")
}

// PreservedDiskPath is where delete --preserve-disk moves the disk image.
func (c *Config) PreservedDiskPath(name string) string {
	return filepath.Join(c.UserHome(), name+".img")
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}
