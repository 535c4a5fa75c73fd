package qemu

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/projecteru2/core/log"

	"github.com/nivram913/vmmgr/errdefs"
)

const (
	dialTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second

	// powerdownCommand asks the guest to power down cleanly via ACPI.
	// The monitor protocol here is fire-and-forget: no response is read.
	powerdownCommand = "system_powerdown\n"
)

// Powerdown connects to the monitor socket and sends the graceful
// power-down command. A connect failure is a control-channel error; a send
// failure after a successful connect is logged and swallowed, since the
// protocol carries no acknowledgment either way. The connection is closed
// in all cases.
func (q *QEMU) Powerdown(ctx context.Context, monitorPath string) error {
	conn, err := net.DialTimeout("unix", monitorPath, dialTimeout)
	if err != nil {
		return fmt.Errorf("connect monitor %s: %v: %w", monitorPath, err, errdefs.ErrControlChannel)
	}
	defer conn.Close() //nolint:errcheck

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := conn.Write([]byte(powerdownCommand)); err != nil {
		log.WithFunc("qemu.Powerdown").Warnf(ctx, "send power-down via %s: %v", monitorPath, err)
	}
	return nil
}
