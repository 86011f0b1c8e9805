package message

import (
	"errors"
	"strings"
	"testing"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/vrsync/vrsync/orientation"
)

const movie = "file:///storage/movies/360-test1.mp4"

func TestDecode(t *testing.T) {
	Convey("Given a locator-only payload", t, func() {
		m, err := Decode([]byte(movie))

		Convey("It decodes without position or orientation", func() {
			So(err, ShouldBeNil)
			So(m.Locator, ShouldEqual, movie)
			So(m.Position.IsAbsent(), ShouldBeTrue)
			So(m.Orientation.IsAbsent(), ShouldBeTrue)
		})
	})

	Convey("Given a locator and position", t, func() {
		m, err := Decode([]byte(movie + " 15000"))

		Convey("The position is in milliseconds", func() {
			So(err, ShouldBeNil)
			So(m.Position.MustGet(), ShouldEqual, 15000)
			So(m.Orientation.IsAbsent(), ShouldBeTrue)
		})
	})

	Convey("Given a full payload", t, func() {
		m, err := Decode([]byte(movie + " 15000 12.5 -3.0 0.0"))

		Convey("Yaw, pitch and roll are decoded in order", func() {
			So(err, ShouldBeNil)
			So(m.Orientation.MustGet(), ShouldResemble, orientation.Vec3{12.5, -3, 0})
		})
	})

	Convey("Given an incomplete orientation", t, func() {
		m, err := Decode([]byte(movie + " 15000 12.5 -3.0"))

		Convey("No orientation update is implied", func() {
			So(err, ShouldBeNil)
			So(m.Position.MustGet(), ShouldEqual, 15000)
			So(m.Orientation.IsAbsent(), ShouldBeTrue)
		})
	})

	Convey("Given NUL padding and trailing whitespace", t, func() {
		raw := append([]byte(movie+" 100 \r\n"), make([]byte, 64)...)
		m, err := Decode(raw)

		Convey("The padding is trimmed", func() {
			So(err, ShouldBeNil)
			So(m.Locator, ShouldEqual, movie)
			So(m.Position.MustGet(), ShouldEqual, 100)
		})
	})

	Convey("Given payloads without tokens", t, func() {
		for _, raw := range []string{"", "   ", "\x00\x00\x00", "\t\n"} {
			_, err := Decode([]byte(raw))
			So(errors.Is(err, ErrEmpty), ShouldBeTrue)
			So(errors.Is(err, ErrMalformedField), ShouldBeFalse)
		}
	})

	Convey("Given non-numeric fields", t, func() {
		cases := map[string]string{
			movie + " soon":             FieldPosition,
			movie + " -5":               FieldPosition,
			movie + " 1.5":              FieldPosition,
			movie + " 100 left 0 0":     FieldYaw,
			movie + " 100 0 up 0":       FieldPitch,
			movie + " 100 0 0 sideways": FieldRoll,
			movie + " 100 NaN 0 0":      FieldYaw,
			movie + " 100 0 0 +Inf":     FieldRoll,
			"/videos/\xff\xfe.mp4 100":  FieldLocator,
		}

		for raw, field := range cases {
			_, err := Decode([]byte(raw))
			So(errors.Is(err, ErrMalformedField), ShouldBeTrue)

			var de *DecodeError
			So(errors.As(err, &de), ShouldBeTrue)
			So(de.Field, ShouldEqual, field)
		}
	})
}

func TestEncode(t *testing.T) {
	Convey("Given constructed messages", t, func() {
		Convey("Locator only", func() {
			b, err := Encode(New(movie))
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, movie)
		})

		Convey("Locator, position and orientation", func() {
			b, err := Encode(New(movie).At(15000).Facing(orientation.Vec3{12.5, -3, 0}))
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, movie+" 15000 12.5 -3 0")
		})

		Convey("Orientation without position is rejected", func() {
			_, err := Encode(New(movie).Facing(orientation.Vec3{1, 2, 3}))
			So(err, ShouldEqual, ErrNonContiguous)
		})

		Convey("Locators must be a single token", func() {
			_, err := Encode(New("my movie.mp4"))
			So(err, ShouldEqual, ErrBadLocator)

			_, err = Encode(New(""))
			So(err, ShouldEqual, ErrBadLocator)
		})
	})
}

func TestRoundTrip(t *testing.T) {
	Convey("Given valid payloads", t, func() {
		payloads := []string{
			movie,
			movie + " 15000",
			movie + " 15000 12.5 -3.0 0.0",
			"rtsp://10.0.0.2/live 0 -180 90.25 1e-3",
			"/sdcard/a.mp4 007",
		}

		Convey("Decode then Encode reproduces the tokens byte for byte", func() {
			for _, p := range payloads {
				m, err := Decode([]byte(p))
				So(err, ShouldBeNil)

				b, err := Encode(m)
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, p)
			}
		})

		Convey("Only the fields present are restored", func() {
			m, err := Decode([]byte(movie + "   15000 1 2\x00\x00"))
			So(err, ShouldBeNil)

			b, err := Encode(m)
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, movie+" 15000")
		})
	})

	Convey("Given a decoded message whose fields are edited", t, func() {
		m, err := Decode([]byte("file:///a.mp4 15000"))
		So(err, ShouldBeNil)

		Convey("Encode follows the new locator and position", func() {
			m.Locator = "file:///b.mp4"
			m.Position = mo.Some[int64](42)

			b, err := Encode(m)
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, "file:///b.mp4 42")
		})

		Convey("Dropping the position encodes the locator alone", func() {
			m.Position = mo.None[int64]()

			b, err := Encode(m)
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, "file:///a.mp4")
		})
	})

	Convey("Given a decoded message with its original spelling", t, func() {
		m, err := Decode([]byte(movie + " 0015000 12.50 -3.0 0.0"))
		So(err, ShouldBeNil)

		Convey("An edited orientation is encoded from the fields", func() {
			m.Orientation = mo.Some(orientation.Vec3{1, 2, 3})

			b, err := Encode(m)
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, movie+" 15000 1 2 3")
		})
	})

	Convey("Given constructed messages", t, func() {
		msgs := []Message{
			New(movie),
			New(movie).At(0),
			New(movie).At(987654321).Facing(orientation.Vec3{-0.5, 33.25, 359.9}),
		}

		Convey("Encode then Decode is the identity", func() {
			for _, m := range msgs {
				b, err := Encode(m)
				So(err, ShouldBeNil)

				back, err := Decode(b)
				So(err, ShouldBeNil)
				So(back.Equal(m), ShouldBeTrue)
				So(strings.Count(string(b), " "), ShouldBeLessThanOrEqualTo, 4)
			}
		})
	})
}
