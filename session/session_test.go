package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vrsync/vrsync/listener"
	"github.com/vrsync/vrsync/message"
	"github.com/vrsync/vrsync/orientation"
)

func event(m message.Message) listener.Event {
	return listener.Event{Message: m, ReceivedAt: time.Now()}
}

func TestSession(t *testing.T) {
	Convey("Given a session with a single-slot mailbox", t, func() {
		engine := &spyEngine{}
		s := New(engine, orientation.NewSmoother(orientation.DefaultFactor), nil)

		var outcomes []Outcome
		s.OnOutcome(func(o Outcome) { outcomes = append(outcomes, o) })

		Convey("Deliver does not touch the state until the next frame", func() {
			s.Deliver(event(message.New(movie)))
			So(s.State().Locator, ShouldBeEmpty)

			loads, _ := engine.calls()
			So(loads, ShouldBeEmpty)

			s.Frame()
			So(s.State().Locator, ShouldEqual, movie)
			So(outcomes, ShouldHaveLength, 1)
			So(outcomes[0].Action, ShouldEqual, ActionReload)
			So(outcomes[0].State.Locator, ShouldEqual, movie)
		})

		Convey("The newest undelivered event wins", func() {
			s.Deliver(event(message.New("/videos/a.mp4")))
			s.Deliver(event(message.New("/videos/b.mp4")))
			s.Frame()

			loads, _ := engine.calls()
			So(loads, ShouldResemble, []string{"/videos/b.mp4"})
			So(s.Stats().Dropped, ShouldEqual, 1)
			So(s.Stats().Received, ShouldEqual, 2)
		})

		Convey("Each frame steps the smoother exactly once", func() {
			s.Deliver(event(message.New(movie)))
			s.Frame()
			s.Deliver(event(message.New(movie).At(0).Facing(orientation.Vec3{10, 0, 0})))

			v := s.Frame()
			So(v[orientation.Yaw], ShouldAlmostEqual, 1, 1e-5)
			So(s.SmoothedOrientation(), ShouldResemble, v)

			v = s.Frame()
			So(v[orientation.Yaw], ShouldAlmostEqual, 1.9, 1e-5)
			So(s.Stats().Frames, ShouldEqual, 3)
		})

		Convey("Decode failures are reported and counted", func() {
			s.Deliver(listener.Event{Raw: "movie abc", Err: message.ErrMalformedField})
			s.Frame()

			So(outcomes, ShouldHaveLength, 1)
			So(errors.Is(outcomes[0].Err, message.ErrMalformedField), ShouldBeTrue)
			So(outcomes[0].Raw, ShouldEqual, "movie abc")
			So(s.Stats().Rejected, ShouldEqual, 1)

			loads, _ := engine.calls()
			So(loads, ShouldBeEmpty)
		})

		Convey("Counters follow the actions", func() {
			s.Deliver(event(message.New(movie)))
			s.Frame()
			engine.position = 0
			s.Deliver(event(message.New(movie).At(15000).Facing(orientation.Vec3{1, 2, 3})))
			s.Frame()

			stats := s.Stats()
			So(stats.Reloads, ShouldEqual, 1)
			So(stats.Seeks, ShouldEqual, 1)
			So(stats.Retargets, ShouldEqual, 1)
			So(stats.Failures, ShouldEqual, 0)
			So(outcomes[1].FromMs, ShouldEqual, 0)
			So(outcomes[1].ToMs, ShouldEqual, 15000)
		})

		Convey("Resume reloads and then applies the saved position and orientation", func() {
			engine.position = 0
			err := s.Resume(message.New(movie).At(42000).Facing(orientation.Vec3{4, 5, 6}))
			So(err, ShouldBeNil)

			loads, seeks := engine.calls()
			So(loads, ShouldResemble, []string{movie})
			So(seeks, ShouldResemble, []int64{42000})
			So(s.State().Target, ShouldResemble, orientation.Vec3{4, 5, 6})
		})

		Convey("Resume stops when the reload fails", func() {
			engine.loadErr = errors.New("gone")
			err := s.Resume(message.New(movie).At(42000))
			So(errors.Is(err, ErrLoadFailed), ShouldBeTrue)

			_, seeks := engine.calls()
			So(seeks, ShouldBeEmpty)
		})
	})

	Convey("Given a running session that gets retuned", t, func() {
		engine := &spyEngine{}
		s := New(engine, orientation.NewSmoother(orientation.DefaultFactor), nil)
		s.Deliver(event(message.New(movie)))
		s.Frame()

		s.Retune(Tuning{DriftToleranceMs: 5000, SmoothingFactor: 1})

		Convey("Nothing changes before the next frame", func() {
			So(s.Reconciler().Tolerance(), ShouldEqual, 100)
		})

		Convey("The next frame applies both parameters", func() {
			engine.position = 0
			s.Deliver(event(message.New(movie).At(4000).Facing(orientation.Vec3{10, 20, 30})))
			v := s.Frame()

			_, seeks := engine.calls()
			So(seeks, ShouldBeEmpty)
			So(s.Reconciler().Tolerance(), ShouldEqual, 5000)
			So(v, ShouldResemble, orientation.Vec3{10, 20, 30})
		})
	})

	Convey("Sessions get distinct identifiers", t, func() {
		a := New(&spyEngine{}, orientation.NewSmoother(orientation.DefaultFactor), nil)
		b := New(&spyEngine{}, orientation.NewSmoother(orientation.DefaultFactor), nil)
		So(a.ID(), ShouldNotBeEmpty)
		So(a.ID(), ShouldNotEqual, b.ID())
	})

	Convey("Given a session with a larger queue", t, func() {
		engine := &spyEngine{}
		s := New(engine, orientation.NewSmoother(orientation.DefaultFactor), nil, WithQueueSize(4))

		Convey("Queued events are applied in order within one frame", func() {
			s.Deliver(event(message.New(movie)))
			s.Deliver(event(message.New(movie).At(0).Facing(orientation.Vec3{1, 1, 1})))
			s.Deliver(event(message.New(movie).At(0).Facing(orientation.Vec3{2, 2, 2})))
			s.Frame()

			So(s.State().Locator, ShouldEqual, movie)
			So(s.State().Target, ShouldResemble, orientation.Vec3{2, 2, 2})
			So(s.Stats().Dropped, ShouldEqual, 0)
		})
	})
}

func TestSessionRun(t *testing.T) {
	Convey("Run renders frames until the context ends", t, func() {
		s := New(&spyEngine{}, orientation.NewSmoother(orientation.DefaultFactor), nil)
		s.Deliver(event(message.New(movie)))

		ctx, cancel := context.WithCancel(context.Background())
		frames := make(chan orientation.Vec3, 1)

		done := make(chan error, 1)
		go func() {
			done <- s.Run(ctx, 200, func(v orientation.Vec3) {
				select {
				case frames <- v:
				default:
				}
			})
		}()

		select {
		case <-frames:
		case <-time.After(2 * time.Second):
			t.Fatal("no frame rendered")
		}
		cancel()

		So(<-done, ShouldBeNil)
		So(s.Stats().Frames, ShouldBeGreaterThan, 0)
		So(s.Stats().Reloads, ShouldEqual, 1)
	})
}

func TestSessionConcurrency(t *testing.T) {
	Convey("Orientation is never observed torn under concurrent delivery", t, func() {
		engine := &spyEngine{}
		s := New(engine, orientation.NewSmoother(0.5), nil)
		s.Deliver(event(message.New(movie)))
		s.Frame()

		const messages = 5000
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var wg sync.WaitGroup
		torn := make(chan orientation.Vec3, 1)
		check := func(v orientation.Vec3) {
			if v[0] != v[1] || v[1] != v[2] {
				select {
				case torn <- v:
				default:
				}
			}
		}

		// producer: every triple has equal components
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 1; i <= messages; i++ {
				f := float32(i)
				s.Deliver(event(message.New(movie).At(0).Facing(orientation.Vec3{f, f, f})))
			}
		}()

		// observer reading from a third goroutine
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				check(s.SmoothedOrientation())
			}
		}()

		renderDone := make(chan struct{})
		go func() {
			defer close(renderDone)
			for ctx.Err() == nil {
				check(s.Frame())
				check(s.State().Target)
			}
		}()

		deadline := time.After(5 * time.Second)
		for s.Stats().Received < messages+1 {
			select {
			case <-deadline:
				t.Fatal("producer did not finish")
			default:
				time.Sleep(time.Millisecond)
			}
		}
		time.Sleep(20 * time.Millisecond)
		cancel()
		wg.Wait()
		<-renderDone

		select {
		case v := <-torn:
			t.Fatalf("torn orientation %v", v)
		default:
		}

		So(s.State().Target, ShouldResemble, orientation.Vec3{messages, messages, messages})
		loads, _ := engine.calls()
		So(loads, ShouldHaveLength, 1)
	})
}
