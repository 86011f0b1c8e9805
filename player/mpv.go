package player

import (
	"crypto/rand"
	"fmt"
	"math"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vrsync/vrsync/log"
	"github.com/vrsync/vrsync/where"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond

	// positionTTL bounds how old an observed time-pos may be before a position read asks mpv directly.
	positionTTL = 500 * time.Millisecond
)

// MPV implements Engine on top of an mpv process controlled over JSON-IPC.
// The process is spawned idle on the first load and reused for later loads.
type MPV struct {
	binary     string
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	events     *EventListener
	mu         sync.Mutex // serializes IPC commands

	observedMs atomic.Int64
	observedAt atomic.Int64 // unix nanoseconds, zero when unknown
}

// NewMPV creates an MPV engine using the given executable. Nothing is started until the first load.
func NewMPV(binary string) *MPV {
	if binary == "" {
		binary = "mpv"
	}
	exited := make(chan struct{})
	close(exited)
	return &MPV{
		binary: binary,
		exited: exited,
	}
}

// LoadResource loads locator, spawning mpv if it is not running yet.
func (m *MPV) LoadResource(locator string) error {
	target, err := ValidateLocator(locator)
	if err != nil {
		return err
	}

	m.invalidate()

	if m.IsRunning() {
		if _, err := m.sendCommand("loadfile", target, "replace"); err != nil {
			return fmt.Errorf("load %s: %w", target, err)
		}
		return nil
	}

	return m.spawn(target)
}

func (m *MPV) spawn(target string) error {
	if m.socketPath == "" {
		randomBytes := make([]byte, 4)
		if _, err := rand.Read(randomBytes); err != nil {
			return fmt.Errorf("generate socket name: %w", err)
		}
		m.socketPath = filepath.Join(where.Temp(), fmt.Sprintf("mpv-%x.sock", randomBytes))
	}

	// Only what the synchronizer needs; the user's mpv.conf decides everything else.
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		"--force-window=yes",
		"--idle=yes",
		"--keep-open=yes",
		"--",
		target,
	}

	m.cmd = exec.Command(m.binary, args...)
	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", m.binary, err)
	}

	exited := make(chan struct{})
	m.exited = exited
	cmd := m.cmd
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	if err := m.waitForSocket(); err != nil {
		select {
		case <-m.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(m.cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.events = NewEventListener(m.socketPath, m.observe)
	if err := m.events.Start(); err != nil {
		// Positions will be read over IPC instead.
		log.Warnf("mpv events unavailable: %v", err)
	}

	return nil
}

func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// observe caches time-pos pushes and forgets them whenever the position jumps.
func (m *MPV) observe(property string, data interface{}) {
	switch property {
	case "time-pos":
		if secs, ok := data.(float64); ok {
			m.observedMs.Store(int64(math.Round(secs * 1000)))
			m.observedAt.Store(time.Now().UnixNano())
		}
	case "seeking", "start-file", "end-file", "file-loaded":
		m.invalidate()
	}
}

func (m *MPV) invalidate() {
	m.observedAt.Store(0)
}

// CurrentPositionMs returns the playback position, from the event stream when fresh.
func (m *MPV) CurrentPositionMs() (int64, error) {
	if m.socketPath == "" {
		return 0, nil
	}

	if at := m.observedAt.Load(); at != 0 && time.Since(time.Unix(0, at)) < positionTTL {
		return m.observedMs.Load(), nil
	}

	data, err := m.sendCommand("get_property", "time-pos")
	if err != nil {
		// Nothing loaded yet.
		if strings.Contains(err.Error(), "property unavailable") {
			return 0, nil
		}
		return 0, err
	}

	secs, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("time-pos: expected float64, got %T", data)
	}
	return int64(math.Round(secs * 1000)), nil
}

// SeekTo moves playback to an absolute position.
func (m *MPV) SeekTo(ms int64) error {
	m.invalidate()
	_, err := m.sendCommand("seek", float64(ms)/1000, "absolute", "exact")
	return err
}

// IsRunning reports whether mpv is responding to IPC commands.
func (m *MPV) IsRunning() bool {
	if m.socketPath == "" {
		return false
	}

	select {
	case <-m.exited:
		return false
	default:
	}

	_, err := m.sendCommand("get_property", "pid")
	return err == nil
}

// Close quits mpv, killing it if it does not exit in time, and removes the socket.
func (m *MPV) Close() error {
	if m.events != nil {
		m.events.Stop()
	}

	if m.socketPath == "" {
		return nil
	}

	select {
	case <-m.exited:
	default:
		_, _ = m.sendCommand("quit")

		select {
		case <-m.exited:
		case <-time.After(3 * time.Second):
			_ = killProcess(m.cmd)
		}
	}

	_ = os.Remove(m.socketPath)
	return nil
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}
