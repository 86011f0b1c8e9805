// Package message implements the control datagram text format:
//
//	<locator> [<positionMs> [<yaw> <pitch> <roll>]]
//
// Tokens are whitespace separated; trailing whitespace and NUL padding are ignored.
package message

import (
	"fmt"

	"github.com/samber/mo"
	"github.com/vrsync/vrsync/orientation"
)

// Message is one decoded control datagram: what to play, where, and facing which way.
type Message struct {
	// Locator identifies the media. It is opaque to the codec.
	Locator string

	// Position is the target playback offset in milliseconds. Absent means no seek is implied.
	Position mo.Option[int64]

	// Orientation is the target view offset. Absent means the orientation is left alone.
	Orientation mo.Option[orientation.Vec3]

	// spelling keeps the decoded tokens so re-encoding reproduces the datagram byte for byte.
	spelling []string
}

// New returns a locator-only message.
func New(locator string) Message {
	return Message{
		Locator:     locator,
		Position:    mo.None[int64](),
		Orientation: mo.None[orientation.Vec3](),
	}
}

// At returns a copy of m with the target position set.
func (m Message) At(ms int64) Message {
	m.Position = mo.Some(ms)
	m.spelling = nil
	return m
}

// Facing returns a copy of m with the target orientation set.
func (m Message) Facing(v orientation.Vec3) Message {
	m.Orientation = mo.Some(v)
	m.spelling = nil
	return m
}

// Equal reports whether m and o carry the same locator, position and orientation.
func (m Message) Equal(o Message) bool {
	if m.Locator != o.Locator {
		return false
	}
	if m.Position.OrEmpty() != o.Position.OrEmpty() || m.Position.IsPresent() != o.Position.IsPresent() {
		return false
	}
	return m.Orientation.OrEmpty() == o.Orientation.OrEmpty() && m.Orientation.IsPresent() == o.Orientation.IsPresent()
}

func (m Message) String() string {
	s := m.Locator
	if pos, ok := m.Position.Get(); ok {
		s += fmt.Sprintf(" @%dms", pos)
	}
	if o, ok := m.Orientation.Get(); ok {
		s += " " + o.String()
	}
	return s
}
