// Package session reconciles remote control messages against the local playback engine
// and feeds the smoothed orientation to the render loop.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/vrsync/vrsync/constant"
	"github.com/vrsync/vrsync/listener"
	"github.com/vrsync/vrsync/log"
	"github.com/vrsync/vrsync/mailbox"
	"github.com/vrsync/vrsync/message"
	"github.com/vrsync/vrsync/orientation"
	"github.com/vrsync/vrsync/player"
)

// Stats are running counters of a session.
type Stats struct {
	Received  uint64
	Rejected  uint64
	Dropped   uint64
	Reloads   uint64
	Seeks     uint64
	Retargets uint64
	Failures  uint64
	Frames    uint64

	// Queued is the number of events waiting for the next frame.
	Queued int
}

// Session hands events from the listener goroutine to the render goroutine.
// Deliver may be called from any goroutine; Frame and Run belong to the render goroutine.
type Session struct {
	id         string
	inbox      *mailbox.Mailbox[listener.Event]
	reconciler *Reconciler
	smoother   *orientation.Smoother
	now        func() time.Time

	observersMu sync.Mutex
	observers   []func(Outcome)

	received, rejected                atomic.Uint64
	reloads, seeks, retargets, failed atomic.Uint64
	frames                            atomic.Uint64

	tuning atomic.Pointer[Tuning]
}

// Tuning holds the reconciliation parameters that may change while a session runs.
type Tuning struct {
	DriftToleranceMs int64
	SmoothingFactor  float32
}

// Option configures a Session.
type Option func(*Session)

// WithQueueSize sets how many undelivered events are kept before the oldest is dropped.
func WithQueueSize(n int) Option {
	return func(s *Session) {
		s.inbox = mailbox.New[listener.Event](n)
	}
}

// WithClock sets the clock used to stamp outcomes.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// New creates a session around engine.
func New(engine player.Engine, smoother *orientation.Smoother, reconcilerOpts []ReconcilerOption, opts ...Option) *Session {
	s := &Session{
		id:         uuid.NewString(),
		inbox:      mailbox.New[listener.Event](1),
		reconciler: NewReconciler(engine, smoother, reconcilerOpts...),
		smoother:   smoother,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the random identifier of this session.
func (s *Session) ID() string {
	return s.id
}

// Retune schedules new parameters. They take effect at the start of the next frame.
// Safe to call from any goroutine.
func (s *Session) Retune(t Tuning) {
	s.tuning.Store(&t)
}

// Deliver queues an event without blocking. It is a listener.Handler.
func (s *Session) Deliver(ev listener.Event) {
	s.received.Add(1)
	if s.inbox.Put(ev) {
		log.Debugf("dropped an undelivered event in favor of %q", ev.Raw)
	}
}

// OnOutcome registers an observer called on the render goroutine for every processed event.
func (s *Session) OnOutcome(fn func(Outcome)) {
	s.observersMu.Lock()
	defer s.observersMu.Unlock()
	s.observers = append(s.observers, fn)
}

// Frame processes every queued event, then advances the smoother exactly once and
// returns the orientation to render.
func (s *Session) Frame() orientation.Vec3 {
	if t := s.tuning.Swap(nil); t != nil {
		s.reconciler.SetDriftTolerance(t.DriftToleranceMs)
		s.smoother.SetFactor(t.SmoothingFactor)
		log.Infof("session %s retuned: tolerance %dms, smoothing %v", s.id, s.reconciler.Tolerance(), s.smoother.Factor())
	}

	for _, ev := range s.inbox.Drain() {
		s.process(ev)
	}

	s.frames.Add(1)
	return s.smoother.Step()
}

// Resume reloads a previously synchronized state: the resource first, then its position
// and orientation as a follow-up message.
func (s *Session) Resume(m message.Message) error {
	if out := s.process(listener.Event{Message: message.New(m.Locator), ReceivedAt: s.now()}); out.Err != nil {
		return out.Err
	}
	return s.process(listener.Event{Message: m, ReceivedAt: s.now()}).Err
}

func (s *Session) process(ev listener.Event) Outcome {
	outcome := Outcome{At: s.now()}

	if !ev.OK() {
		s.rejected.Add(1)
		outcome.Raw = ev.Raw
		outcome.Err = ev.Err
		log.Debugf("discarding %q from %v: %v", ev.Raw, ev.Sender, ev.Err)
	} else {
		if ev.Destination != nil && !ev.Broadcast() {
			log.Debugf("%v addressed %v directly instead of broadcasting", ev.Sender, ev.Destination)
		}

		outcome.Message = ev.Message
		outcome.Action, outcome.Err = s.reconciler.Apply(ev.Message)
		outcome.FromMs, outcome.ToMs = s.reconciler.fromMs, s.reconciler.toMs

		if outcome.Action.Has(ActionReload) {
			s.reloads.Add(1)
		}
		if outcome.Action.Has(ActionSeek) {
			s.seeks.Add(1)
		}
		if outcome.Action.Has(ActionRetarget) {
			s.retargets.Add(1)
		}
		if outcome.Err != nil {
			s.failed.Add(1)
		}
	}

	outcome.State = s.reconciler.State()

	s.observersMu.Lock()
	observers := s.observers
	s.observersMu.Unlock()

	for _, fn := range observers {
		fn(outcome)
	}
	return outcome
}

// SmoothedOrientation returns the last smoothed orientation without stepping.
// Safe to call from any goroutine.
func (s *Session) SmoothedOrientation() orientation.Vec3 {
	return s.smoother.Current()
}

// State returns a snapshot of the session state. Render goroutine only.
func (s *Session) State() State {
	return s.reconciler.State()
}

// Reconciler returns the session's reconciler.
func (s *Session) Reconciler() *Reconciler {
	return s.reconciler
}

// Stats returns the session counters. Safe to call from any goroutine.
func (s *Session) Stats() Stats {
	return Stats{
		Received:  s.received.Load(),
		Rejected:  s.rejected.Load(),
		Dropped:   s.inbox.Dropped(),
		Reloads:   s.reloads.Load(),
		Seeks:     s.seeks.Load(),
		Retargets: s.retargets.Load(),
		Failures:  s.failed.Load(),
		Frames:    s.frames.Load(),
		Queued:    s.inbox.Len(),
	}
}

// Run renders frames at fps until ctx is done. Non-positive rates use the default.
func (s *Session) Run(ctx context.Context, fps int, render func(orientation.Vec3)) error {
	if fps <= 0 {
		fps = constant.FrameRate
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			v := s.Frame()
			if render != nil {
				render(v)
			}
		}
	}
}
