package version

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/metafates/gache"
	"github.com/vrsync/vrsync/filesystem"
	"github.com/vrsync/vrsync/util"
	"github.com/vrsync/vrsync/where"
)

// MinimumMPV is the oldest mpv whose JSON-IPC supports every command the player uses.
const MinimumMPV = "0.29.0"

var ErrMPVTooOld = errors.New("mpv is too old")

var mpvVersionPattern = regexp.MustCompile(`mpv v?(?P<version>\d+\.\d+\.\d+)`)

var mpvCacher = gache.New[map[string]string](&gache.Options{
	Path:       filepath.Join(where.Temp(), "mpv-version.json"),
	Lifetime:   time.Hour * 24 * 2,
	FileSystem: &filesystem.GacheFs{},
})

// ParseMPV extracts the version from the first line of `mpv --version`.
func ParseMPV(output string) (string, error) {
	line, _, _ := strings.Cut(output, "\n")
	v, ok := util.ReGroups(mpvVersionPattern, line)["version"]
	if !ok {
		return "", fmt.Errorf("unrecognized mpv version output %q", line)
	}
	return v, nil
}

// MPV returns the version of the mpv executable at binary, caching it per resolved path.
func MPV(binary string) (string, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", err
	}

	cached, expired, err := mpvCacher.Get()
	if err == nil && !expired && cached != nil {
		if v, ok := cached[path]; ok {
			return v, nil
		}
	}

	out, err := exec.Command(path, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("%s --version: %w", path, err)
	}

	v, err := ParseMPV(string(out))
	if err != nil {
		return "", err
	}

	if cached == nil || expired {
		cached = make(map[string]string)
	}
	cached[path] = v
	_ = mpvCacher.Set(cached)

	return v, nil
}

// CheckMPV fails if installed is older than MinimumMPV.
func CheckMPV(installed string) error {
	cmp, err := Compare(installed, MinimumMPV)
	if err != nil {
		return err
	}
	if cmp < 0 {
		return fmt.Errorf("%w: %s < %s", ErrMPVTooOld, installed, MinimumMPV)
	}
	return nil
}
