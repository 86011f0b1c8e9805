// Package player drives the media playback engine the synchronizer reconciles against.
// The primary backend is mpv over its JSON-IPC socket; Virtual is an in-process engine
// for headless runs and tests.
package player

import (
	"fmt"

	"github.com/spf13/viper"
	"github.com/vrsync/vrsync/key"
)

// Engine is the playback engine contract used by the reconciler.
type Engine interface {
	// CurrentPositionMs returns the live playback position in milliseconds.
	CurrentPositionMs() (int64, error)

	// SeekTo moves playback to an absolute position in milliseconds.
	SeekTo(ms int64) error

	// LoadResource replaces whatever is playing with locator, starting from the beginning.
	// Locators the engine cannot play are reported with an error wrapping ErrRejected.
	LoadResource(locator string) error

	// Close releases the engine.
	Close() error
}

// Engine names accepted by New.
const (
	EngineMPV     = "mpv"
	EngineVirtual = "virtual"
)

// Available returns the engine names New accepts.
func Available() []string {
	return []string{EngineMPV, EngineVirtual}
}

// New constructs the named engine.
func New(name string) (Engine, error) {
	switch name {
	case EngineMPV:
		return NewMPV(viper.GetString(key.PlayerMPVBinary)), nil
	case EngineVirtual:
		return NewVirtual(nil), nil
	default:
		return nil, fmt.Errorf("unknown player %q, available: %v", name, Available())
	}
}
