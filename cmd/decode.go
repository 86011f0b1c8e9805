package cmd

import (
	"encoding/json"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vrsync/vrsync/color"
	"github.com/vrsync/vrsync/icon"
	"github.com/vrsync/vrsync/message"
	"github.com/vrsync/vrsync/orientation"
	"github.com/vrsync/vrsync/player"
	"github.com/vrsync/vrsync/style"
)

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	decodeCmd.Flags().SetInterspersed(false)
}

type decodedMessage struct {
	Locator     string            `json:"locator"`
	Target      string            `json:"target,omitempty"`
	PositionMs  *int64            `json:"position_ms,omitempty"`
	Orientation *orientation.Vec3 `json:"orientation,omitempty"`
	Canonical   string            `json:"canonical"`
	Warning     string            `json:"warning,omitempty"`
}

var decodeCmd = &cobra.Command{
	Use:     "decode [flags] <payload>",
	Short:   "Decode a control message and show its fields",
	Example: `  vrsync decode "file:///storage/movies/360-test1.mp4 15000 12.5 -3.0 0.0"`,
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m, err := message.Decode([]byte(strings.Join(args, " ")))
		handleErr(err)

		out := decodedMessage{
			Locator:   m.Locator,
			Canonical: string(lo.Must(message.Encode(m))),
		}
		if pos, ok := m.Position.Get(); ok {
			out.PositionMs = &pos
		}
		if o, ok := m.Orientation.Get(); ok {
			out.Orientation = &o
		}
		if target, err := player.ValidateLocator(m.Locator); err != nil {
			out.Warning = err.Error()
		} else {
			out.Target = target
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(out))
			return
		}

		label := style.New().Bold(true).Foreground(color.Purple).Render
		cmd.Printf("%s %s\n", label("Locator"), out.Locator)
		if out.Target != "" && out.Target != out.Locator {
			cmd.Printf("%s %s\n", label("Target"), out.Target)
		}
		if out.PositionMs != nil {
			cmd.Printf("%s %dms\n", label("Position"), *out.PositionMs)
		}
		if out.Orientation != nil {
			cmd.Printf("%s %s\n", label("Orientation"), style.Fg(color.Yellow)(out.Orientation.String()))
		}
		if out.Warning != "" {
			cmd.Printf("%s %s\n", style.Fg(color.Red)(icon.Get(icon.Fail)), out.Warning)
		}
	},
}
