//go:build !unix && !windows

package listener

import "syscall"

func control(_, _ string, _ syscall.RawConn) error {
	return nil
}
