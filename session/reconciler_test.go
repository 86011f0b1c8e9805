package session

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vrsync/vrsync/message"
	"github.com/vrsync/vrsync/orientation"
	"github.com/vrsync/vrsync/player"
)

const movie = "file:///storage/movies/360-test1.mp4"

func TestReconciler(t *testing.T) {
	Convey("Given a reconciler with nothing loaded", t, func() {
		engine := &spyEngine{}
		smoother := orientation.NewSmoother(orientation.DefaultFactor)
		r := NewReconciler(engine, smoother)

		So(r.Tolerance(), ShouldEqual, 100)
		So(r.State().Locator, ShouldBeEmpty)

		Convey("The first message reloads exactly once and ignores its other fields", func() {
			action, err := r.Apply(message.New(movie).At(15000).Facing(orientation.Vec3{12.5, -3, 0}))
			So(err, ShouldBeNil)
			So(action, ShouldEqual, ActionReload)

			loads, seeks := engine.calls()
			So(loads, ShouldResemble, []string{movie})
			So(seeks, ShouldBeEmpty)
			So(r.State().Locator, ShouldEqual, movie)
			So(r.State().Target, ShouldResemble, orientation.Vec3{})

			Convey("The same locator again does not reload", func() {
				action, err := r.Apply(message.New(movie))
				So(err, ShouldBeNil)
				So(action, ShouldEqual, NoOp)

				loads, _ := engine.calls()
				So(loads, ShouldHaveLength, 1)
			})

			Convey("Drift within tolerance does not seek", func() {
				engine.position = 14950
				action, err := r.Apply(message.New(movie).At(15000))
				So(err, ShouldBeNil)
				So(action, ShouldEqual, NoOp)

				_, seeks := engine.calls()
				So(seeks, ShouldBeEmpty)
			})

			Convey("Drift exactly at tolerance does not seek", func() {
				engine.position = 14900
				action, _ := r.Apply(message.New(movie).At(15000))
				So(action, ShouldEqual, NoOp)
			})

			Convey("Drift beyond tolerance seeks to the target", func() {
				engine.position = 14800
				action, err := r.Apply(message.New(movie).At(15000))
				So(err, ShouldBeNil)
				So(action, ShouldEqual, ActionSeek)

				_, seeks := engine.calls()
				So(seeks, ShouldResemble, []int64{15000})
				So(r.fromMs, ShouldEqual, 14800)
				So(r.toMs, ShouldEqual, 15000)
			})

			Convey("Drift ahead of the target also seeks", func() {
				engine.position = 15300
				action, _ := r.Apply(message.New(movie).At(15000))
				So(action, ShouldEqual, ActionSeek)
			})

			Convey("An orientation retargets without moving the current orientation", func() {
				engine.position = 15000
				action, err := r.Apply(message.New(movie).At(15000).Facing(orientation.Vec3{10, 20, 30}))
				So(err, ShouldBeNil)
				So(action, ShouldEqual, ActionRetarget)
				So(r.State().Target, ShouldResemble, orientation.Vec3{10, 20, 30})
				So(r.State().Current, ShouldResemble, orientation.Vec3{})
			})

			Convey("Seek and retarget combine", func() {
				engine.position = 0
				action, _ := r.Apply(message.New(movie).At(15000).Facing(orientation.Vec3{1, 2, 3}))
				So(action, ShouldEqual, ActionSeek|ActionRetarget)
				So(action.String(), ShouldEqual, "seek+retarget")
			})

			Convey("A new locator resets the orientation", func() {
				smoother.SetTarget(orientation.Vec3{5, 5, 5})
				smoother.Step()

				action, err := r.Apply(message.New("/videos/other.mp4").At(3000).Facing(orientation.Vec3{1, 1, 1}))
				So(err, ShouldBeNil)
				So(action, ShouldEqual, ActionReload)
				So(r.State().Current, ShouldResemble, orientation.Vec3{})
				So(r.State().Target, ShouldResemble, orientation.Vec3{})

				_, seeks := engine.calls()
				So(seeks, ShouldBeEmpty)
			})

			Convey("A failed reload keeps the previous locator and is not retried", func() {
				engine.loadErr = errors.New("codec missing")

				action, err := r.Apply(message.New("/videos/broken.mkv"))
				So(action, ShouldEqual, NoOp)
				So(errors.Is(err, ErrLoadFailed), ShouldBeTrue)
				So(r.State().Locator, ShouldEqual, movie)

				loads, _ := engine.calls()
				So(loads, ShouldHaveLength, 2)

				Convey("The next message tries again", func() {
					engine.loadErr = nil
					action, err := r.Apply(message.New("/videos/broken.mkv"))
					So(err, ShouldBeNil)
					So(action, ShouldEqual, ActionReload)
					So(r.State().Locator, ShouldEqual, "/videos/broken.mkv")
				})
			})

			Convey("A position failure still applies the orientation", func() {
				engine.posErr = errors.New("ipc timeout")
				action, err := r.Apply(message.New(movie).At(15000).Facing(orientation.Vec3{1, 2, 3}))
				So(action, ShouldEqual, ActionRetarget)
				So(errors.Is(err, ErrPositionUnavailable), ShouldBeTrue)
			})

			Convey("A seek failure is reported", func() {
				engine.position = 0
				engine.seekErr = errors.New("not seekable")
				action, err := r.Apply(message.New(movie).At(15000))
				So(action, ShouldEqual, NoOp)
				So(errors.Is(err, ErrSeekFailed), ShouldBeTrue)
			})
		})

		Convey("Rejected locators surface the engine's error", func() {
			r := NewReconciler(player.NewVirtual(nil), smoother)
			_, err := r.Apply(message.New("-flag"))
			So(errors.Is(err, ErrLoadFailed), ShouldBeTrue)
			So(errors.Is(err, player.ErrRejected), ShouldBeTrue)
			So(r.State().Locator, ShouldBeEmpty)
		})
	})

	Convey("Given a reconciler with a custom drift tolerance", t, func() {
		engine := &spyEngine{}
		r := NewReconciler(engine, orientation.NewSmoother(orientation.DefaultFactor), WithDriftTolerance(500))
		_, _ = r.Apply(message.New(movie))

		Convey("Drift that the default would correct is tolerated", func() {
			engine.position = 14800
			action, _ := r.Apply(message.New(movie).At(15000))
			So(action, ShouldEqual, NoOp)
		})

		Convey("Drift beyond the custom tolerance seeks", func() {
			engine.position = 14000
			action, _ := r.Apply(message.New(movie).At(15000))
			So(action, ShouldEqual, ActionSeek)
		})

		Convey("A zero tolerance seeks on any drift", func() {
			r := NewReconciler(engine, orientation.NewSmoother(orientation.DefaultFactor), WithDriftTolerance(-5))
			So(r.Tolerance(), ShouldEqual, 0)
			_, _ = r.Apply(message.New(movie))
			engine.position = 14999
			action, _ := r.Apply(message.New(movie).At(15000))
			So(action, ShouldEqual, ActionSeek)
		})
	})
}

func TestAction(t *testing.T) {
	Convey("Action", t, func() {
		So(NoOp.String(), ShouldEqual, "noop")
		So(ActionReload.String(), ShouldEqual, "reload")
		So((ActionReload | ActionSeek | ActionRetarget).String(), ShouldEqual, "reload+seek+retarget")
		So(ActionSeek.Has(ActionSeek), ShouldBeTrue)
		So(ActionSeek.Has(ActionRetarget), ShouldBeFalse)
		So(ActionSeek.Has(NoOp), ShouldBeFalse)
	})
}
