//go:build unix

package listener

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// control enables broadcast reception. The port is bound exclusively, so a second
// listener on the same port fails with ErrBindFailed.
func control(_, _ string, c syscall.RawConn) error {
	var serr error
	err := c.Control(func(fd uintptr) {
		serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
	})
	if err != nil {
		return err
	}
	return serr
}
