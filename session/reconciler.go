package session

import (
	"errors"
	"fmt"

	"github.com/vrsync/vrsync/constant"
	"github.com/vrsync/vrsync/log"
	"github.com/vrsync/vrsync/message"
	"github.com/vrsync/vrsync/orientation"
	"github.com/vrsync/vrsync/player"
)

var (
	// ErrLoadFailed wraps engine failures during a reload. The previous locator is kept.
	ErrLoadFailed = errors.New("load failed")

	// ErrPositionUnavailable wraps engine failures to report the playback position.
	ErrPositionUnavailable = errors.New("position unavailable")

	// ErrSeekFailed wraps engine failures during a seek.
	ErrSeekFailed = errors.New("seek failed")
)

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithDriftTolerance sets how far, in milliseconds, the engine may drift from a message's
// position before a seek is issued. Negative values are treated as zero.
func WithDriftTolerance(ms int64) ReconcilerOption {
	return func(r *Reconciler) {
		r.tolerance = max(ms, 0)
	}
}

// Reconciler compares incoming messages against the session state and the engine and
// issues the minimal corrections. It is not safe for concurrent use: it belongs to the
// render goroutine.
type Reconciler struct {
	engine    player.Engine
	smoother  *orientation.Smoother
	tolerance int64
	locator   string

	// last seek, for Outcome reporting
	fromMs, toMs int64
}

// NewReconciler creates a reconciler driving engine and smoother.
func NewReconciler(engine player.Engine, smoother *orientation.Smoother, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		engine:    engine,
		smoother:  smoother,
		tolerance: constant.DriftToleranceMs,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tolerance returns the drift tolerance in milliseconds.
func (r *Reconciler) Tolerance() int64 {
	return r.tolerance
}

// SetDriftTolerance changes the drift tolerance for subsequent messages. Negative values are treated as zero.
func (r *Reconciler) SetDriftTolerance(ms int64) {
	r.tolerance = max(ms, 0)
}

// Apply reconciles one message. Decisions are made in a fixed order:
// a locator change reloads and ignores the rest of the message,
// otherwise a position beyond the drift tolerance seeks,
// and an orientation retargets the smoother.
func (r *Reconciler) Apply(m message.Message) (Action, error) {
	r.fromMs, r.toMs = 0, 0

	if m.Locator != r.locator {
		return r.reload(m.Locator)
	}

	var (
		action Action
		errs   []error
	)

	if target, ok := m.Position.Get(); ok {
		seeked, err := r.correct(target)
		if seeked {
			action |= ActionSeek
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	if target, ok := m.Orientation.Get(); ok {
		r.smoother.SetTarget(target)
		action |= ActionRetarget
		log.Debugf("orientation target %s", target)
	}

	return action, errors.Join(errs...)
}

func (r *Reconciler) reload(locator string) (Action, error) {
	if err := r.engine.LoadResource(locator); err != nil {
		log.Warnf("loading %q: %v", locator, err)
		return NoOp, fmt.Errorf("%w: %s: %w", ErrLoadFailed, locator, err)
	}

	log.Infof("loaded %q (was %q)", locator, r.locator)
	r.locator = locator
	r.smoother.Reset(orientation.Vec3{})
	return ActionReload, nil
}

func (r *Reconciler) correct(target int64) (bool, error) {
	current, err := r.engine.CurrentPositionMs()
	if err != nil {
		log.Warnf("reading position: %v", err)
		return false, fmt.Errorf("%w: %w", ErrPositionUnavailable, err)
	}

	drift := target - current
	if drift < 0 {
		drift = -drift
	}
	if drift <= r.tolerance {
		return false, nil
	}

	if err := r.engine.SeekTo(target); err != nil {
		log.Warnf("seeking to %dms: %v", target, err)
		return false, fmt.Errorf("%w: %dms: %w", ErrSeekFailed, target, err)
	}

	log.Infof("seeked %dms -> %dms (drift %dms)", current, target, drift)
	r.fromMs, r.toMs = current, target
	return true, nil
}

// State returns a snapshot of the session state.
func (r *Reconciler) State() State {
	return State{
		Locator: r.locator,
		Current: r.smoother.Current(),
		Target:  r.smoother.Target(),
	}
}
