package player

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ErrRejected is wrapped by every error caused by a locator the engine refuses to load.
var ErrRejected = errors.New("locator rejected")

func reject(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRejected, fmt.Sprintf(format, args...))
}

// ValidateLocator checks that a locator received from the network is safe to hand to a player
// and returns the target to load: file URIs become local paths, network URLs pass through.
func ValidateLocator(locator string) (string, error) {
	l := strings.TrimSpace(locator)
	if l == "" {
		return "", reject("empty locator")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", reject("control characters in %q", l)
	}

	// Prevent flag injection into the player command line.
	if strings.HasPrefix(l, "-") {
		return "", reject("%q looks like a flag", l)
	}

	if !strings.Contains(l, "://") {
		return filepath.Clean(l), nil
	}

	u, err := url.Parse(l)
	if err != nil {
		return "", reject("%v", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		if u.Path == "" {
			return "", reject("file locator %q has no path", l)
		}
		if u.Host != "" && u.Host != "localhost" {
			return "", reject("remote file host %q", u.Host)
		}
		return filepath.Clean(filepath.FromSlash(u.Path)), nil
	case "http", "https", "rtsp", "rtmp":
		if u.Host == "" {
			return "", reject("%s locator %q has no host", u.Scheme, l)
		}
		return l, nil
	default:
		return "", reject("unsupported scheme %q", u.Scheme)
	}
}
