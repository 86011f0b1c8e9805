// Package listener receives control datagrams broadcast on the local network and hands each
// decoded message, or the reason it could not be decoded, to a registered handler.
//
// A Listener runs at most one receive loop at a time. Each loop owns a fresh socket; Stop closes
// that socket to unblock the pending receive, and the loop exits instead of receiving again.
// A socket error that was not caused by Stop also ends the loop: listening resumes only when
// Start is called again.
package listener

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vrsync/vrsync/constant"
	"github.com/vrsync/vrsync/log"
	"github.com/vrsync/vrsync/message"
	"golang.org/x/net/ipv4"
)

var (
	ErrBindFailed     = errors.New("bind failed")
	ErrAlreadyRunning = errors.New("listener already running")
)

// Event is one received datagram.
type Event struct {
	Message    message.Message
	Err        error
	Sender     net.Addr
	Raw        string
	ReceivedAt time.Time

	// Destination is the address the datagram was sent to, nil where the platform does not report it.
	Destination net.IP
}

// Broadcast reports whether the datagram was sent to 255.255.255.255 or to an address ending in .255.
// It is false when the destination is unknown.
func (e Event) Broadcast() bool {
	if e.Destination == nil {
		return false
	}
	return e.Destination.Equal(net.IPv4bcast) || (e.Destination.To4() != nil && e.Destination.To4()[3] == 0xff)
}

// OK reports whether the datagram decoded.
func (e Event) OK() bool {
	return e.Err == nil
}

// Handler consumes events on the receive goroutine. It must not block and must not call back into the Listener.
type Handler func(Event)

// Option configures a Listener.
type Option func(*Listener)

// WithAddress sets the local address to bind. Defaults to the IPv4 wildcard.
func WithAddress(host string) Option {
	return func(l *Listener) {
		l.address = host
	}
}

// WithBufferSize sets the receive buffer size in bytes.
func WithBufferSize(n int) Option {
	return func(l *Listener) {
		if n > 0 {
			l.bufferSize = n
		}
	}
}

// Listener owns the broadcast socket and its receive loop.
type Listener struct {
	handler    Handler
	address    string
	bufferSize int

	mu   sync.Mutex
	loop *loop
}

// New creates a stopped Listener delivering to handler.
func New(handler Handler, opts ...Option) *Listener {
	l := &Listener{
		handler:    handler,
		address:    constant.DefaultAddress,
		bufferSize: constant.MaxDatagramSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start binds a fresh socket on port and starts the receive loop. Port 0 picks an ephemeral port.
func (l *Listener) Start(port int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loop != nil && l.loop.isRunning() {
		return ErrAlreadyRunning
	}

	addr := net.JoinHostPort(l.address, strconv.Itoa(port))
	lc := net.ListenConfig{Control: control}

	conn, err := lc.ListenPacket(context.Background(), "udp4", addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBindFailed, addr, err)
	}

	lp := newLoop(conn)
	l.loop = lp
	go l.run(lp)

	log.Infof("listening for control broadcasts on %s", conn.LocalAddr())
	return nil
}

// Stop ends the current loop. It is idempotent and safe to call from any goroutine.
// Once Stop returns no further events are delivered, even for datagrams already received.
func (l *Listener) Stop() {
	l.mu.Lock()
	lp := l.loop
	l.mu.Unlock()

	if lp == nil {
		return
	}

	if lp.stop() {
		log.Infof("stopping listener on %s", lp.conn.LocalAddr())
	}
	_ = lp.conn.Close()
}

// StopAndWait stops the loop and waits for its goroutine to return.
func (l *Listener) StopAndWait(ctx context.Context) error {
	l.Stop()

	select {
	case <-l.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether a loop is receiving.
func (l *Listener) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loop != nil && l.loop.isRunning()
}

// Addr returns the local address of the current socket, or nil if never started.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loop == nil {
		return nil
	}
	return l.loop.conn.LocalAddr()
}

// Done is closed when the current loop has exited. It is already closed if no loop was started.
func (l *Listener) Done() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loop == nil {
		return closed
	}
	return l.loop.done
}

// Err returns the socket error that ended the last loop, or nil if it was stopped or is still running.
func (l *Listener) Err() error {
	l.mu.Lock()
	lp := l.loop
	l.mu.Unlock()

	if lp == nil {
		return nil
	}
	return lp.failure()
}

var closed = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

func (l *Listener) run(lp *loop) {
	defer close(lp.done)
	defer func() { _ = lp.conn.Close() }()

	pc := ipv4.NewPacketConn(lp.conn)
	if err := pc.SetControlMessage(ipv4.FlagDst, true); err != nil {
		log.Debugf("destination addresses unavailable: %v", err)
	}

	buf := make([]byte, l.bufferSize)

	for {
		n, cm, sender, err := pc.ReadFrom(buf)
		if err != nil {
			if lp.fail(err) {
				log.Warnf("no longer listening for control broadcasts: %v", err)
			}
			return
		}

		ev := decode(buf[:n], sender)
		if cm != nil {
			ev.Destination = cm.Dst
		}
		if ev.OK() {
			log.Debugf("received %q from %s", ev.Raw, sender)
		} else {
			log.Debugf("discarding datagram from %s: %v", sender, ev.Err)
		}

		if !lp.deliver(l.handler, ev) {
			return
		}
	}
}

func decode(payload []byte, sender net.Addr) Event {
	m, err := message.Decode(payload)

	ev := Event{
		Message:    m,
		Err:        err,
		Sender:     sender,
		ReceivedAt: time.Now(),
	}
	ev.Raw = strings.TrimRight(string(payload), "\x00 \t\r\n")
	return ev
}
