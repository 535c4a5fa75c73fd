package types

// State is the derived lifecycle state of a VM. It is never persisted:
// Absent means the VM directory does not exist, Running means the monitor
// socket exists, Stopped is everything in between.
type State string

const (
	StateAbsent  State = "absent"
	StateStopped State = "stopped"
	StateRunning State = "running"
)

// NetworkMode selects how the guest NIC is wired to the host.
type NetworkMode string

const (
	NetworkNone   NetworkMode = "none"
	NetworkNAT    NetworkMode = "NAT"
	NetworkBridge NetworkMode = "bridge"
)

// Valid reports whether m is one of the supported network modes.
func (m NetworkMode) Valid() bool {
	switch m {
	case NetworkNone, NetworkNAT, NetworkBridge:
		return true
	}
	return false
}

// DisplayMode selects the console mode for interactive install sessions.
type DisplayMode string

const (
	DisplayCurses DisplayMode = "curses"
	DisplayNone   DisplayMode = "none"
)

// Valid reports whether d is one of the supported display modes.
func (d DisplayMode) Valid() bool {
	return d == DisplayCurses || d == DisplayNone
}

// BootDevice selects the boot device override for run.
type BootDevice string

const (
	BootDisk  BootDevice = "disk"
	BootCDROM BootDevice = "cdrom"
)

// Valid reports whether b is one of the supported boot devices.
func (b BootDevice) Valid() bool {
	return b == BootDisk || b == BootCDROM
}

// Record is the authoritative description of one VM. A Record exists iff the
// backing directory exists and contains a readable, valid MAC file.
type Record struct {
	Name        string
	MAC         string
	DiskPath    string
	MonitorPath string
	ConfigPath  string
}

// VMConfig is the per-VM metadata persisted as config.json. The registry
// treats it as opaque: presence or absence never affects record existence.
type VMConfig struct {
	ID      string      `json:"id"`
	RAM     string      `json:"ram"`
	CDROM   string      `json:"cdrom,omitempty"`
	Network NetworkMode `json:"network"`
}

// CreateOptions carries the optional metadata recorded at create time.
type CreateOptions struct {
	RAM     string
	CDROM   string
	Network NetworkMode
}

// RunOptions carries per-invocation overrides for run.
type RunOptions struct {
	RAM  string
	Boot BootDevice
}

// ModifyOptions carries config.json field updates. Empty string means
// "leave unchanged".
type ModifyOptions struct {
	RAM     string
	CDROM   string
	Network NetworkMode
}

// RunSpec is everything the launcher needs to start a daemonized VM.
type RunSpec struct {
	Name        string
	DiskPath    string
	MonitorPath string
	Memory      string // size literal, e.g. "1G"
	MAC         string
	Network     NetworkMode
	// CDROM, when non-empty, attaches the ISO and boots from it.
	CDROM string
}

// InstallSpec is everything the launcher needs for a foreground install
// session booted from removable media.
type InstallSpec struct {
	Name        string
	DiskPath    string
	MonitorPath string
	Memory      string
	MAC         string
	Network     NetworkMode
	CDROM       string
	Display     DisplayMode
}
