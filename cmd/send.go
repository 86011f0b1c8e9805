package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vrsync/vrsync/color"
	"github.com/vrsync/vrsync/constant"
	"github.com/vrsync/vrsync/icon"
	"github.com/vrsync/vrsync/key"
	"github.com/vrsync/vrsync/listener"
	"github.com/vrsync/vrsync/message"
	"github.com/vrsync/vrsync/style"
	"github.com/vrsync/vrsync/util"
)

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().IntP("port", "p", 0, "Destination port, defaults to listen.port")
	sendCmd.Flags().StringP("addr", "a", constant.DefaultBroadcastAddress, "Destination address")
	sendCmd.Flags().IntP("count", "n", 1, "Number of datagrams to send")
	sendCmd.Flags().DurationP("interval", "i", time.Second, "Delay between datagrams")
	sendCmd.Flags().Bool("follow", false, "Advance the position by the elapsed time on every repeat")

	// angles such as -3.0 are arguments, so flags must come before the locator
	sendCmd.Flags().SetInterspersed(false)
}

var sendCmd = &cobra.Command{
	Use:   "send [flags] <locator> [positionMs [yaw pitch roll]]",
	Short: "Broadcast a control message",
	Long: `Encode a control message and broadcast it the way a host does.
Listeners load the locator, seek to the position and turn towards the orientation.
Flags go before the locator so that negative angles are read as angles.`,
	Example: "  vrsync send file:///storage/movies/360-test1.mp4 15000 12.5 -3.0 0.0\n" +
		"  vrsync send --count 30 --follow /videos/a.mp4 0",
	Args: func(cmd *cobra.Command, args []string) error {
		switch len(args) {
		case 1, 2, 5:
			return nil
		case 0:
			return errors.New("a locator is required")
		default:
			return fmt.Errorf("expected a locator, a position and three angles, got %s", util.Quantify(len(args), "argument", "arguments"))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		m, err := sendMessage(args)
		handleErr(err)

		port := lo.Must(cmd.Flags().GetInt("port"))
		if !cmd.Flags().Changed("port") {
			port = viper.GetInt(key.ListenPort)
		}

		opts := sendOptions{
			addr:     lo.Must(cmd.Flags().GetString("addr")),
			port:     port,
			count:    max(lo.Must(cmd.Flags().GetInt("count")), 1),
			interval: lo.Must(cmd.Flags().GetDuration("interval")),
			follow:   lo.Must(cmd.Flags().GetBool("follow")),
		}
		handleErr(runSend(cmd.Context(), m, opts))
	},
}

func sendMessage(args []string) (message.Message, error) {
	return message.Decode([]byte(strings.Join(args, " ")))
}

type sendOptions struct {
	addr     string
	port     int
	count    int
	interval time.Duration
	follow   bool
}

func runSend(ctx context.Context, m message.Message, opts sendOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	b, err := listener.NewBroadcaster(ctx, opts.addr, opts.port)
	if err != nil {
		return err
	}
	defer util.Ignore(b.Close)

	start := time.Now()
	for i := 0; i < opts.count; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(opts.interval):
			}
		}

		out := m
		if pos, ok := m.Position.Get(); ok && opts.follow && i > 0 {
			out = m.At(pos + time.Since(start).Milliseconds())
		}

		if err := b.Send(out); err != nil {
			return err
		}
		fmt.Printf("%s sent %s to %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Fg(color.Yellow)(out.String()), b.Destination())
	}

	return nil
}
