// Package icon renders status symbols in the variant selected by icons.variant.
package icon

import (
	"github.com/spf13/viper"
	"github.com/vrsync/vrsync/key"
)

const (
	emoji = "emoji"
	nerd  = "nerd"
	plain = "plain"
)

// AvailableVariants returns every supported variant name.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain}
}

// Icon identifies a status symbol.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Listening
	Reload
	Seek
	Orient
)

type iconDef struct {
	emoji string
	nerd  string
	plain string
}

var icons = map[Icon]*iconDef{
	Success:   {emoji: "🎉", nerd: "\uf00c", plain: "+"},
	Fail:      {emoji: "💀", nerd: "\uf00d", plain: "x"},
	Progress:  {emoji: "⏳", nerd: "\uf110", plain: "~"},
	Listening: {emoji: "📡", nerd: "\uf1eb", plain: "*"},
	Reload:    {emoji: "🔄", nerd: "\uf021", plain: "R"},
	Seek:      {emoji: "⏩", nerd: "\uf04e", plain: ">"},
	Orient:    {emoji: "🧭", nerd: "\uf14e", plain: "@"},
}

func (d *iconDef) get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	default:
		return ""
	}
}

// Get renders i in the configured variant.
func Get(i Icon) string {
	return icons[i].get()
}
