package listener

import (
	"net"
	"sync"
)

// loop is the state of one receive loop instance. Its socket is never reused.
type loop struct {
	conn net.PacketConn
	done chan struct{}

	// mu is held while delivering so that stop cannot interleave with a delivery.
	mu      sync.Mutex
	running bool
	err     error
}

func newLoop(conn net.PacketConn) *loop {
	return &loop{
		conn:    conn,
		done:    make(chan struct{}),
		running: true,
	}
}

func (lp *loop) isRunning() bool {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return lp.running
}

// stop marks the loop as stopping and reports whether it was running.
func (lp *loop) stop() bool {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	was := lp.running
	lp.running = false
	return was
}

// fail records a receive error unless the loop was already asked to stop.
func (lp *loop) fail(err error) bool {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if !lp.running {
		return false
	}
	lp.running = false
	lp.err = err
	return true
}

func (lp *loop) failure() error {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return lp.err
}

// deliver hands ev to h if the loop is still running and reports whether it is.
func (lp *loop) deliver(h Handler, ev Event) bool {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if !lp.running {
		return false
	}
	if h != nil {
		h(ev)
	}
	return true
}
