package listener

import (
	"context"
	"net"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vrsync/vrsync/message"
	"github.com/vrsync/vrsync/orientation"
)

func TestBroadcaster(t *testing.T) {
	Convey("Given a listener and a broadcaster aimed at it", t, func() {
		c := newCollector()
		l := New(c.handle, WithAddress("127.0.0.1"))
		So(l.Start(0), ShouldBeNil)
		Reset(func() { stopped(l) })

		port := l.Addr().(*net.UDPAddr).Port
		b, err := NewBroadcaster(context.Background(), "127.0.0.1", port)
		So(err, ShouldBeNil)
		Reset(func() { _ = b.Close() })

		So(b.Destination().String(), ShouldEqual, l.Addr().String())

		Convey("A sent message arrives decoded", func() {
			m := message.New(movie).At(15000).Facing(orientation.Vec3{12.5, -3, 0})
			So(b.Send(m), ShouldBeNil)

			ev, ok := c.next(2 * time.Second)
			So(ok, ShouldBeTrue)
			So(ev.OK(), ShouldBeTrue)
			So(ev.Message.Equal(m), ShouldBeTrue)
		})

		Convey("Messages that cannot be encoded are not sent", func() {
			So(b.Send(message.New("")), ShouldNotBeNil)

			_, ok := c.next(100 * time.Millisecond)
			So(ok, ShouldBeFalse)
		})
	})
}
