package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/vrsync/vrsync/color"
	"github.com/vrsync/vrsync/icon"
	"github.com/vrsync/vrsync/orientation"
	"github.com/vrsync/vrsync/session"
	"github.com/vrsync/vrsync/style"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

const defaultWidth = 80

func (m *model) View() string {
	lines := []string{
		style.Title("vrsync"),
		"",
		m.viewStatus(),
		"",
		style.Bold("Resource"),
		m.viewLocator(),
		"",
		style.Bold("Orientation") + m.pausedTag(),
		m.viewAxes(),
		"",
		style.Bold("Last message"),
		m.viewOutcome(),
		"",
		m.viewStats(),
	}

	return m.renderLines(lines)
}

func (m *model) renderLines(lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	// padding takes two lines and the help one
	if m.height > h+3 {
		l += strings.Repeat("\n", m.height-h-3)
	}
	l += "\n" + m.helpC.View(m.keymap)

	return paddingStyle.Render(l)
}

func (m *model) contentWidth() int {
	if m.width <= 4 {
		return defaultWidth
	}
	return m.width - 4
}

func (m *model) viewStatus() string {
	listening := m.options.Listening == nil || m.options.Listening()

	var status string
	if listening {
		status = style.Fg(color.Green)(icon.Get(icon.Listening) + " listening on " + m.options.Address)
	} else {
		status = style.Fg(color.Red)(icon.Get(icon.Fail) + " not listening, press r to restart")
	}

	if m.restartErr != nil {
		status += "\n" + style.Fg(color.Red)(wrap.String(m.restartErr.Error(), m.contentWidth()))
	}
	return status
}

func (m *model) viewLocator() string {
	if m.state.Locator == "" {
		return style.Faint("nothing loaded")
	}
	return style.Fg(color.Purple)(wrap.String(m.state.Locator, m.contentWidth()))
}

func (m *model) pausedTag() string {
	if !m.paused {
		return ""
	}
	return " " + style.Tag(color.New("230"), color.Yellow)("paused")
}

func (m *model) viewAxes() string {
	axes := []struct {
		name  string
		index int
		c     lipgloss.Color
	}{
		{"yaw", orientation.Yaw, color.Yaw},
		{"pitch", orientation.Pitch, color.Pitch},
		{"roll", orientation.Roll, color.Roll},
	}

	rows := make([]string, len(axes))
	for i, axis := range axes {
		rows[i] = fmt.Sprintf(
			"%s %8.2f %s %s",
			style.Fg(axis.c)(fmt.Sprintf("%-5s", axis.name)),
			m.orientation[axis.index],
			style.Faint("->"),
			style.Faint(fmt.Sprintf("%8.2f", m.state.Target[axis.index])),
		)
	}

	// forward is the negated Z column of the column-major view transform
	view := orientation.Apply(orientation.Identity(), m.orientation)
	rows = append(rows,
		style.Faint(fmt.Sprintf("off target %.2f°", m.orientation.Residual(m.state.Target))),
		style.Faint(fmt.Sprintf("facing (%.2f, %.2f, %.2f)", -view[8], -view[9], -view[10])),
	)
	return strings.Join(rows, "\n")
}

func (m *model) viewOutcome() string {
	if m.last == nil {
		return style.Faint("waiting for a broadcast")
	}

	o := m.last
	age := style.Faint(fmt.Sprintf("(%s ago)", time.Since(o.At).Truncate(time.Second)))

	if o.Err != nil {
		text := fmt.Sprintf("%s %s %s", icon.Get(icon.Fail), o.Err, age)
		return style.Fg(color.Red)(wrap.String(text, m.contentWidth()))
	}

	var parts []string
	if o.Action.Has(session.ActionReload) {
		parts = append(parts, icon.Get(icon.Reload)+" reloaded")
	}
	if o.Action.Has(session.ActionSeek) {
		parts = append(parts, fmt.Sprintf("%s seeked %s -> %s", icon.Get(icon.Seek), ms(o.FromMs), ms(o.ToMs)))
	}
	if o.Action.Has(session.ActionRetarget) {
		parts = append(parts, icon.Get(icon.Orient)+" retargeted")
	}
	if len(parts) == 0 {
		parts = append(parts, icon.Get(icon.Success)+" in sync")
	}

	return wrap.String(strings.Join(parts, ", ")+" "+age, m.contentWidth())
}

func (m *model) viewStats() string {
	s := m.options.Session.Stats()
	return style.Faint(fmt.Sprintf(
		"received %d  queued %d  rejected %d  dropped %d  reloads %d  seeks %d  failures %d  tolerance %s",
		s.Received, s.Queued, s.Rejected, s.Dropped, s.Reloads, s.Seeks, s.Failures,
		ms(m.options.Session.Reconciler().Tolerance()),
	))
}

func ms(v int64) string {
	return (time.Duration(v) * time.Millisecond).String()
}
