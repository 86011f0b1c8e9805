// Package color holds the terminal color palette.
package color

import "github.com/charmbracelet/lipgloss"

// New initializes a lipgloss.Color from an ANSI index or hex value.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

// ANSI 8-color palette.
var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")
)

// High-intensity variants.
var (
	HiRed    = New("9")
	HiYellow = New("11")
	HiPurple = New("13")
	HiCyan   = New("14")
)

// Accents used by the monitor for the three orientation axes.
var (
	Orange = New("#ffb703")
	Gray   = New("#808080")
	Yaw    = New("#f38ba8")
	Pitch  = New("#a6e3a1")
	Roll   = New("#89b4fa")
)
