package cmd

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/vrsync/vrsync/constant"
	"github.com/vrsync/vrsync/icon"
	"github.com/vrsync/vrsync/log"
	"github.com/vrsync/vrsync/style"
	"github.com/vrsync/vrsync/version"
)

// checkMPV verifies that binary is installed and recent enough for the IPC client.
func checkMPV(binary string) error {
	installed, err := version.MPV(binary)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			printMissingDependencyError(binary)
			return fmt.Errorf("%s not found in PATH", binary)
		}
		// Unusual builds print unusual versions; let the IPC handshake decide.
		log.Warnf("could not determine mpv version: %v", err)
		return nil
	}

	log.Infof("using mpv %s", installed)
	return version.CheckMPV(installed)
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case constant.Darwin:
		installCmd = "brew install mpv"
	case constant.Linux:
		installCmd = "sudo apt install mpv"
	case constant.Windows:
		installCmd = "scoop install mpv"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.ErrorColor).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.ErrorColor).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The player '%s' was not found in your PATH.", dep))

	suggestion := "\n\nRun with --player virtual to synchronize without a video window."
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s%s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd), suggestion)
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
