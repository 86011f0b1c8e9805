package cmd

import (
	"fmt"
	"time"

	"github.com/muesli/reflow/truncate"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vrsync/vrsync/color"
	"github.com/vrsync/vrsync/history"
	"github.com/vrsync/vrsync/icon"
	"github.com/vrsync/vrsync/style"
	"github.com/vrsync/vrsync/util"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringP("remove", "d", "", "Remove the record saved for a locator")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the synchronized states saved for --resume",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if locator := lo.Must(cmd.Flags().GetString("remove")); locator != "" {
			found, err := history.Lookup(locator)
			handleErr(err)
			if found.IsAbsent() {
				handleErr(fmt.Errorf("no record for %s", locator))
			}
			handleErr(history.Remove(locator))
			cmd.Printf("%s removed %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), locator)
			return
		}

		records, err := history.All()
		handleErr(err)

		if len(records) == 0 {
			cmd.Println(style.Faint("no saved state"))
			return
		}

		width := util.TerminalWidth(80)
		locatorWidth := util.Max(20, width-40)

		cmd.Println(style.Faint(util.Quantify(len(records), "record", "records")))
		for i, r := range records {
			marker := " "
			if i == 0 {
				marker = style.Fg(color.Green)("*")
			}
			cmd.Printf(
				"%s %s %s %s %s\n",
				marker,
				style.Fg(color.Purple)(truncate.StringWithTail(r.Locator, uint(locatorWidth), "…")),
				style.Fg(color.Yellow)((time.Duration(r.PositionMs) * time.Millisecond).String()),
				r.Orientation,
				style.Faint(r.SavedAt.Format(time.DateTime)),
			)
		}
	},
}
