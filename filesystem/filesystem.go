// Package filesystem routes every file access of the application through a swappable afero backend,
// so tests can run against memory instead of the user's config directory.
package filesystem

import (
	"os"

	"github.com/spf13/afero"
)

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active backend.
func API() afero.Afero {
	return backend
}

// SetOsFs restores the native operating system backend.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs swaps in a volatile in-memory backend.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}

// EnsureDir creates path and any missing parents.
func EnsureDir(path string) error {
	return backend.MkdirAll(path, os.ModePerm)
}
