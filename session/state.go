package session

import (
	"strings"
	"time"

	"github.com/vrsync/vrsync/message"
	"github.com/vrsync/vrsync/orientation"
)

// State is the synchronized state of one session.
type State struct {
	// Locator of the loaded resource, empty until the first successful reload.
	Locator string

	// Current is the smoothed orientation last fed to the view transform.
	Current orientation.Vec3

	// Target is the orientation the smoother converges towards.
	Target orientation.Vec3
}

// Action is the set of corrections a message caused.
type Action uint8

const (
	ActionReload Action = 1 << iota
	ActionSeek
	ActionRetarget

	NoOp Action = 0
)

// Has reports whether all bits of b are set in a.
func (a Action) Has(b Action) bool {
	return b != 0 && a&b == b
}

func (a Action) String() string {
	if a == NoOp {
		return "noop"
	}

	var parts []string
	for _, bit := range []struct {
		action Action
		name   string
	}{
		{ActionReload, "reload"},
		{ActionSeek, "seek"},
		{ActionRetarget, "retarget"},
	} {
		if a.Has(bit.action) {
			parts = append(parts, bit.name)
		}
	}
	return strings.Join(parts, "+")
}

// Outcome reports what happened to one delivered event.
type Outcome struct {
	// Message that was reconciled. Zero for events that failed to decode.
	Message message.Message

	// Action taken. Partial actions are possible alongside Err.
	Action Action

	// FromMs and ToMs are the engine position before a seek and the seek target.
	FromMs, ToMs int64

	// Raw payload, set for events that failed to decode.
	Raw string

	// Err is a decode, load, position or seek failure.
	Err error

	State State
	At    time.Time
}
