package message

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/mo"
	"github.com/vrsync/vrsync/orientation"
)

var (
	errNegative  = errors.New("negative offset")
	errNotFinite = errors.New("not a finite angle")
	errNotUTF8   = errors.New("not valid UTF-8")
)

// Decode parses a datagram payload. It never performs I/O.
func Decode(raw []byte) (Message, error) {
	text := strings.TrimRightFunc(string(raw), func(r rune) bool {
		return r == 0 || unicode.IsSpace(r)
	})

	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return Message{}, &DecodeError{Kind: ErrEmpty}
	}

	if !utf8.ValidString(tokens[0]) {
		return Message{}, malformed(FieldLocator, tokens[0], errNotUTF8)
	}

	m := New(tokens[0])
	used := 1

	if len(tokens) > 1 {
		pos, err := strconv.ParseInt(tokens[1], 10, 64)
		if err != nil {
			return Message{}, malformed(FieldPosition, tokens[1], err)
		}
		if pos < 0 {
			return Message{}, malformed(FieldPosition, tokens[1], errNegative)
		}
		m.Position = mo.Some(pos)
		used = 2
	}

	if len(tokens) >= 5 {
		var v orientation.Vec3
		for i, field := range []string{FieldYaw, FieldPitch, FieldRoll} {
			token := tokens[2+i]
			f, err := strconv.ParseFloat(token, 32)
			if err != nil {
				return Message{}, malformed(field, token, err)
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return Message{}, malformed(field, token, errNotFinite)
			}
			v[i] = float32(f)
		}
		m.Orientation = mo.Some(v)
		used = 5
	}

	m.spelling = tokens[:used:used]
	return m, nil
}

// Tokens returns the fields Encode joins, in wire order.
func Tokens(m Message) ([]string, error) {
	if m.Locator == "" || strings.IndexFunc(m.Locator, unicode.IsSpace) >= 0 || strings.ContainsRune(m.Locator, 0) {
		return nil, ErrBadLocator
	}

	if m.spelledAsIs() {
		return append([]string(nil), m.spelling...), nil
	}

	tokens := []string{m.Locator}

	pos, hasPos := m.Position.Get()
	o, hasOrientation := m.Orientation.Get()

	if hasOrientation && !hasPos {
		return nil, ErrNonContiguous
	}

	if hasPos {
		if pos < 0 {
			return nil, errNegative
		}
		tokens = append(tokens, strconv.FormatInt(pos, 10))
	}

	if hasOrientation {
		for _, f := range o {
			tokens = append(tokens, strconv.FormatFloat(float64(f), 'f', -1, 32))
		}
	}

	return tokens, nil
}

// spelledAsIs reports whether the decoded spelling still describes m's fields.
func (m Message) spelledAsIs() bool {
	if m.spelling == nil {
		return false
	}
	decoded, err := Decode([]byte(strings.Join(m.spelling, " ")))
	return err == nil && decoded.Equal(m)
}

// Encode renders m in the wire format. Optional fields may only be omitted as a trailing suffix.
func Encode(m Message) ([]byte, error) {
	tokens, err := Tokens(m)
	if err != nil {
		return nil, err
	}
	return []byte(strings.Join(tokens, " ")), nil
}
