package session

import (
	"sync"

	"github.com/vrsync/vrsync/player"
)

// spyEngine records every call and reports a fixed position.
type spyEngine struct {
	mu       sync.Mutex
	position int64
	posErr   error
	loadErr  error
	seekErr  error
	loads    []string
	seeks    []int64
}

var _ player.Engine = (*spyEngine)(nil)

func (e *spyEngine) CurrentPositionMs() (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position, e.posErr
}

func (e *spyEngine) SeekTo(ms int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.seekErr != nil {
		return e.seekErr
	}
	e.seeks = append(e.seeks, ms)
	e.position = ms
	return nil
}

func (e *spyEngine) LoadResource(locator string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loads = append(e.loads, locator)
	if e.loadErr != nil {
		return e.loadErr
	}
	e.position = 0
	return nil
}

func (e *spyEngine) Close() error { return nil }

func (e *spyEngine) calls() (loads []string, seeks []int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.loads...), append([]int64(nil), e.seeks...)
}
