package cmd

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/vrsync/vrsync/filesystem"
	"github.com/vrsync/vrsync/history"
	"github.com/vrsync/vrsync/key"
	"github.com/vrsync/vrsync/listener"
	"github.com/vrsync/vrsync/message"
	"github.com/vrsync/vrsync/orientation"
	"github.com/vrsync/vrsync/player"
	"github.com/vrsync/vrsync/session"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestRecorder(t *testing.T) {
	Convey("Given a recorder over a virtual engine", t, func() {
		So(history.Clear(), ShouldBeNil)

		engine := player.NewVirtual(nil)
		So(engine.LoadResource("/videos/a.mp4"), ShouldBeNil)
		So(engine.SeekTo(42000), ShouldBeNil)

		rec := newRecorder(engine, time.Hour)
		outcome := session.Outcome{
			Action: session.ActionSeek,
			State:  session.State{Locator: "/videos/a.mp4", Target: orientation.Vec3{1, 2, 3}},
		}

		Convey("The first outcome is saved immediately", func() {
			rec.observe(outcome)

			last, err := history.Get()
			So(err, ShouldBeNil)
			So(last.MustGet().Locator, ShouldEqual, "/videos/a.mp4")
			So(last.MustGet().PositionMs, ShouldBeGreaterThanOrEqualTo, 42000)
			So(last.MustGet().Orientation, ShouldResemble, orientation.Vec3{1, 2, 3})

			Convey("Later outcomes wait for the interval or a flush", func() {
				outcome.State.Target = orientation.Vec3{4, 5, 6}
				rec.observe(outcome)

				last, _ := history.Get()
				So(last.MustGet().Orientation, ShouldResemble, orientation.Vec3{1, 2, 3})

				rec.flush()
				last, _ = history.Get()
				So(last.MustGet().Orientation, ShouldResemble, orientation.Vec3{4, 5, 6})
			})
		})

		Convey("Failed outcomes are not saved", func() {
			outcome.Err = session.ErrLoadFailed
			rec.observe(outcome)
			rec.flush()

			last, _ := history.Get()
			So(last.IsAbsent(), ShouldBeTrue)
		})
	})
}

func TestRunSend(t *testing.T) {
	Convey("runSend delivers every repeat to a listener", t, func() {
		events := make(chan listener.Event, 8)
		l := listener.New(func(ev listener.Event) {
			select {
			case events <- ev:
			default:
			}
		}, listener.WithAddress("127.0.0.1"))
		So(l.Start(0), ShouldBeNil)
		defer stopListener(l)

		m := message.New("/videos/a.mp4").At(1000).Facing(orientation.Vec3{1, 2, 3})
		err := runSend(context.Background(), m, sendOptions{
			addr:     "127.0.0.1",
			port:     l.Addr().(*net.UDPAddr).Port,
			count:    2,
			interval: 20 * time.Millisecond,
			follow:   true,
		})
		So(err, ShouldBeNil)

		for i := 0; i < 2; i++ {
			select {
			case ev := <-events:
				So(ev.OK(), ShouldBeTrue)
				So(ev.Message.Locator, ShouldEqual, "/videos/a.mp4")
				So(ev.Message.Position.MustGet(), ShouldBeGreaterThanOrEqualTo, 1000)
				So(ev.Message.Orientation.MustGet(), ShouldResemble, orientation.Vec3{1, 2, 3})
			case <-time.After(2 * time.Second):
				t.Fatal("datagram not received")
			}
		}
	})
}

func TestSendArgs(t *testing.T) {
	Convey("send accepts a locator with an optional position and orientation", t, func() {
		So(sendCmd.Args(sendCmd, []string{"/a.mp4"}), ShouldBeNil)
		So(sendCmd.Args(sendCmd, []string{"/a.mp4", "1"}), ShouldBeNil)
		So(sendCmd.Args(sendCmd, []string{"/a.mp4", "1", "2", "3", "4"}), ShouldBeNil)
		So(sendCmd.Args(sendCmd, []string{}), ShouldNotBeNil)
		So(sendCmd.Args(sendCmd, []string{"/a.mp4", "1", "2"}), ShouldNotBeNil)
	})
}

func TestSendNegativeAngles(t *testing.T) {
	Convey("Given the example invocation with a negative pitch", t, func() {
		locator := "file:///storage/movies/360-test1.mp4"
		So(sendCmd.ParseFlags([]string{"--count", "2", locator, "15000", "12.5", "-3.0", "0.0"}), ShouldBeNil)
		args := sendCmd.Flags().Args()

		Convey("Every angle stays a positional argument", func() {
			So(args, ShouldResemble, []string{locator, "15000", "12.5", "-3.0", "0.0"})
			So(sendCmd.Args(sendCmd, args), ShouldBeNil)
			So(lo.Must(sendCmd.Flags().GetInt("count")), ShouldEqual, 2)
		})

		Convey("The message carries the negative angle", func() {
			m, err := sendMessage(args)
			So(err, ShouldBeNil)
			So(m.Position.MustGet(), ShouldEqual, 15000)
			So(m.Orientation.MustGet(), ShouldResemble, orientation.Vec3{12.5, -3, 0})
		})
	})
}

func TestCurrentTuning(t *testing.T) {
	Convey("Tuning follows the configuration", t, func() {
		viper.Set(key.SyncDriftToleranceMs, 250)
		viper.Set(key.SyncSmoothingFactor, 0.5)
		defer viper.Set(key.SyncDriftToleranceMs, 100)
		defer viper.Set(key.SyncSmoothingFactor, 0.1)

		So(currentTuning(), ShouldResemble, session.Tuning{DriftToleranceMs: 250, SmoothingFactor: 0.5})
	})
}
