package player

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/vrsync/vrsync/filesystem"
	"github.com/vrsync/vrsync/log"
	"github.com/vrsync/vrsync/where"
)

// SocketTTL is how long an mpv socket may sit unused before it is considered abandoned.
const SocketTTL = 24 * time.Hour

// CollectGarbage removes IPC sockets left behind by mpv processes that did not exit cleanly.
func CollectGarbage() {
	removed := collectSockets(where.Temp(), time.Now())
	if removed > 0 {
		log.Infof("removed %d stale mpv sockets", removed)
	}
}

func collectSockets(dir string, now time.Time) (removed int) {
	fs := filesystem.API()
	_ = afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		name := filepath.Base(path)
		if !strings.HasPrefix(name, "mpv-") || !strings.HasSuffix(name, ".sock") {
			return nil
		}
		if now.Sub(info.ModTime()) <= SocketTTL || inUse(path) {
			return nil
		}
		if fs.Remove(path) == nil {
			removed++
		}
		return nil
	})
	return removed
}

func inUse(socketPath string) bool {
	conn, err := net.DialTimeout("unix", socketPath, 100*time.Millisecond)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
