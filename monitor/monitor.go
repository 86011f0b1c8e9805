// Package monitor renders a synchronized session in the terminal. It is the render loop when
// the listener runs in monitor mode: every frame tick drives one session frame.
package monitor

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vrsync/vrsync/constant"
	"github.com/vrsync/vrsync/orientation"
	"github.com/vrsync/vrsync/session"
)

// Options configures the monitor.
type Options struct {
	Session *session.Session

	// FPS is the frame rate. Non-positive values use the default.
	FPS int

	// Address is shown in the status line.
	Address string

	// Listening reports whether the listener is still receiving.
	Listening func() bool

	// Restart starts the listener again after a socket error.
	Restart func() error
}

type tickMsg time.Time

type model struct {
	options *Options
	keymap  *keymap
	helpC   help.Model

	interval    time.Duration
	paused      bool
	orientation orientation.Vec3
	state       session.State
	last        *session.Outcome
	restartErr  error

	width, height int
}

func newModel(options *Options) *model {
	fps := options.FPS
	if fps <= 0 {
		fps = constant.FrameRate
	}

	m := &model{
		options:  options,
		keymap:   newKeymap(),
		helpC:    help.New(),
		interval: time.Second / time.Duration(fps),
	}

	// Outcomes are produced inside Frame, which only runs from Update.
	options.Session.OnOutcome(func(o session.Outcome) {
		m.last = &o
	})

	return m
}

// Run starts the monitor and blocks until the user quits.
func Run(options *Options) error {
	_, err := tea.NewProgram(newModel(options), tea.WithAltScreen()).Run()
	return err
}

func (m *model) Init() tea.Cmd {
	return m.tick()
}

func (m *model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
