package player

import (
	"sync"
	"time"
)

// Virtual is an in-process engine: loading a resource starts a playback clock and seeking moves it.
// Nothing is decoded or displayed.
type Virtual struct {
	now func() time.Time

	mu       sync.Mutex
	locator  string
	target   string
	offsetMs int64
	anchor   time.Time
	loads    int
	seeks    int
}

// NewVirtual creates a Virtual engine reading time from now, or the wall clock if nil.
func NewVirtual(now func() time.Time) *Virtual {
	if now == nil {
		now = time.Now
	}
	return &Virtual{now: now}
}

// LoadResource validates locator and restarts the playback clock at zero.
func (v *Virtual) LoadResource(locator string) error {
	target, err := ValidateLocator(locator)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.locator, v.target = locator, target
	v.offsetMs = 0
	v.anchor = v.now()
	v.loads++
	return nil
}

// SeekTo moves the playback clock. Seeking with nothing loaded is a no-op.
func (v *Virtual) SeekTo(ms int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.locator == "" {
		return nil
	}
	if ms < 0 {
		ms = 0
	}
	v.offsetMs = ms
	v.anchor = v.now()
	v.seeks++
	return nil
}

// CurrentPositionMs returns the elapsed playback time, or zero with nothing loaded.
func (v *Virtual) CurrentPositionMs() (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.locator == "" {
		return 0, nil
	}
	return v.offsetMs + v.now().Sub(v.anchor).Milliseconds(), nil
}

// Locator returns the loaded locator as given and the target it resolved to.
func (v *Virtual) Locator() (locator, target string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.locator, v.target
}

// Stats returns how many loads and seeks were performed.
func (v *Virtual) Stats() (loads, seeks int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loads, v.seeks
}

// Close unloads the resource.
func (v *Virtual) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.locator, v.target = "", ""
	return nil
}
