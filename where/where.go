// Package where resolves the application's filesystem locations.
package where

import (
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/vrsync/vrsync/constant"
	"github.com/vrsync/vrsync/filesystem"
)

// EnvConfigPath overrides the configuration directory.
const EnvConfigPath = "VRSYNC_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.EnsureDir(path))
	return path
}

// Config resolves the configuration directory, honouring VRSYNC_CONFIG_PATH before the platform default.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base, err := os.UserConfigDir()
	if err != nil {
		base = filepath.Join(".", "config")
	}
	return ensureDir(filepath.Join(base, constant.App))
}

// Logs resolves the directory daily log files are written to.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// History resolves the file holding the last synchronized state.
func History() string {
	return filepath.Join(Config(), "history.json")
}

// Temp resolves a volatile directory for IPC sockets and other transient artifacts.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.App))
}
