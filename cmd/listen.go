package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vrsync/vrsync/color"
	"github.com/vrsync/vrsync/config"
	"github.com/vrsync/vrsync/history"
	"github.com/vrsync/vrsync/icon"
	"github.com/vrsync/vrsync/key"
	"github.com/vrsync/vrsync/listener"
	"github.com/vrsync/vrsync/log"
	"github.com/vrsync/vrsync/metrics"
	"github.com/vrsync/vrsync/monitor"
	"github.com/vrsync/vrsync/orientation"
	"github.com/vrsync/vrsync/player"
	"github.com/vrsync/vrsync/session"
	"github.com/vrsync/vrsync/style"
	"github.com/vrsync/vrsync/util"
	"golang.org/x/sync/errgroup"
)

const (
	historyInterval = time.Second
	stopTimeout     = 2 * time.Second
)

func init() {
	rootCmd.AddCommand(listenCmd)

	listenCmd.Flags().IntP("port", "p", 0, "UDP port to listen on")
	lo.Must0(viper.BindPFlag(key.ListenPort, listenCmd.Flags().Lookup("port")))

	listenCmd.Flags().StringP("address", "a", "", "Local address to bind")
	lo.Must0(viper.BindPFlag(key.ListenAddress, listenCmd.Flags().Lookup("address")))

	listenCmd.Flags().StringP("player", "P", "", "Playback engine to drive")
	lo.Must0(listenCmd.RegisterFlagCompletionFunc("player", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return player.Available(), cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(viper.BindPFlag(key.Player, listenCmd.Flags().Lookup("player")))

	listenCmd.Flags().Int("fps", 0, "Render loop frame rate")
	lo.Must0(viper.BindPFlag(key.RenderFPS, listenCmd.Flags().Lookup("fps")))

	listenCmd.Flags().Int64("tolerance", 0, "Playback drift in milliseconds tolerated before seeking")
	lo.Must0(viper.BindPFlag(key.SyncDriftToleranceMs, listenCmd.Flags().Lookup("tolerance")))

	listenCmd.Flags().Float64("smoothing", 0, "Fraction of the remaining orientation covered per frame")
	lo.Must0(viper.BindPFlag(key.SyncSmoothingFactor, listenCmd.Flags().Lookup("smoothing")))

	listenCmd.Flags().String("metrics", "", "Serve Prometheus metrics on this address")
	lo.Must0(viper.BindPFlag(key.MetricsAddress, listenCmd.Flags().Lookup("metrics")))

	listenCmd.Flags().BoolP("resume", "r", false, "Reload the last synchronized state before listening")
	listenCmd.Flags().BoolP("monitor", "m", false, "Show the live session in a terminal monitor")
	listenCmd.Flags().BoolP("quiet", "q", false, "Do not print reconciliation outcomes")
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Follow control broadcasts and keep the local player in sync",
	Long: `Listen for control broadcasts on the local network and reconcile the local player against them.

Each broadcast names a resource and optionally a playback position and a view orientation.
A new resource is loaded, a position drifting beyond the tolerance is corrected with a seek,
and the view orientation glides towards the broadcast one frame by frame.`,
	Example: "  vrsync listen --player mpv --port 11111\n  vrsync listen --monitor --resume",
	Args:    cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return validateListenFlags(cmd)
	},
	Run: func(cmd *cobra.Command, args []string) {
		opts := listenOptions{
			resume:  lo.Must(cmd.Flags().GetBool("resume")),
			monitor: lo.Must(cmd.Flags().GetBool("monitor")),
			quiet:   lo.Must(cmd.Flags().GetBool("quiet")),
		}
		handleErr(runListen(cmd.Context(), opts))
	},
}

type listenOptions struct {
	resume, monitor, quiet bool
}

// validateListenFlags rejects zero values left by flags that were not given.
func validateListenFlags(cmd *cobra.Command) error {
	for k, flag := range map[string]string{
		key.RenderFPS:           "fps",
		key.SyncSmoothingFactor: "smoothing",
	} {
		if cmd.Flags().Changed(flag) && viper.GetFloat64(k) <= 0 {
			return fmt.Errorf("--%s must be positive", flag)
		}
	}
	return nil
}

func runListen(ctx context.Context, opts listenOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	engineName := viper.GetString(key.Player)
	if engineName == player.EngineMPV {
		if err := checkMPV(viper.GetString(key.PlayerMPVBinary)); err != nil {
			return err
		}
	}

	engine, err := player.New(engineName)
	if err != nil {
		return err
	}
	defer util.Ignore(engine.Close)

	sess := session.New(
		engine,
		orientation.NewSmoother(float32(viper.GetFloat64(key.SyncSmoothingFactor))),
		[]session.ReconcilerOption{session.WithDriftTolerance(viper.GetInt64(key.SyncDriftToleranceMs))},
		session.WithQueueSize(viper.GetInt(key.ListenQueueSize)),
	)
	log.Infof("session %s driving %s", sess.ID(), engineName)

	if viper.GetBool(key.SyncLiveReload) {
		watching := config.Watch(
			func() { sess.Retune(currentTuning()) },
			func(err error) { log.Warnf("ignoring config change: %v", err) },
		)
		if watching {
			log.Infof("watching %s for tuning changes", viper.ConfigFileUsed())
		}
	}

	if viper.GetBool(key.HistorySave) {
		rec := newRecorder(engine, historyInterval)
		sess.OnOutcome(rec.observe)
		defer rec.flush()
	}

	if !opts.quiet && !opts.monitor {
		sess.OnOutcome(printOutcome)
	}

	if opts.resume {
		if err := resume(sess); err != nil {
			log.Warnf("resume: %v", err)
			fmt.Fprintf(os.Stderr, "%s could not resume: %v\n", icon.Get(icon.Fail), err)
		}
	}

	l := listener.New(
		sess.Deliver,
		listener.WithAddress(viper.GetString(key.ListenAddress)),
		listener.WithBufferSize(viper.GetInt(key.ListenBufferSize)),
	)

	port := viper.GetInt(key.ListenPort)
	if err := l.Start(port); err != nil {
		return err
	}
	defer stopListener(l)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr := viper.GetString(key.MetricsAddress); addr != "" {
		srv, err := metrics.Listen(addr, metrics.Handler(sess, l.Running))
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}

		served := make(chan error, 1)
		go func() { served <- srv.Serve(ctx) }()
		defer func() {
			stop()
			if err := <-served; err != nil {
				log.Warnf("metrics server: %v", err)
			}
		}()

		if !opts.monitor {
			fmt.Printf("%s metrics on http://%s/metrics\n", icon.Get(icon.Listening), srv.Addr())
		}
	}

	fps := viper.GetInt(key.RenderFPS)

	if opts.monitor {
		return monitor.Run(&monitor.Options{
			Session:   sess,
			FPS:       fps,
			Address:   l.Addr().String(),
			Listening: l.Running,
			Restart: func() error {
				l.Stop()
				return l.Start(port)
			},
		})
	}

	fmt.Printf("%s listening on %s\n", style.Fg(color.Green)(icon.Get(icon.Listening)), l.Addr())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sess.Run(gctx, fps, nil)
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case <-l.Done():
			if err := l.Err(); err != nil {
				return fmt.Errorf("listener stopped: %w", err)
			}
			return nil
		}
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func currentTuning() session.Tuning {
	return session.Tuning{
		DriftToleranceMs: viper.GetInt64(key.SyncDriftToleranceMs),
		SmoothingFactor:  float32(viper.GetFloat64(key.SyncSmoothingFactor)),
	}
}

func stopListener(l *listener.Listener) {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := l.StopAndWait(ctx); err != nil {
		log.Warnf("listener did not stop in time: %v", err)
	}
}

func resume(sess *session.Session) error {
	last, err := history.Get()
	if err != nil {
		return err
	}

	record, ok := last.Get()
	if !ok {
		return errors.New("no saved state")
	}

	fmt.Printf("%s resuming %s\n", icon.Get(icon.Reload), style.Fg(color.Purple)(record.String()))
	return sess.Resume(record.Message())
}

func printOutcome(o session.Outcome) {
	switch {
	case o.Err != nil:
		fmt.Printf("%s %s\n", style.Fg(color.Red)(icon.Get(icon.Fail)), o.Err)
	case o.Action.Has(session.ActionReload):
		fmt.Printf("%s loaded %s\n", icon.Get(icon.Reload), style.Fg(color.Purple)(o.State.Locator))
	case o.Action.Has(session.ActionSeek):
		fmt.Printf(
			"%s seeked %s -> %s\n",
			icon.Get(icon.Seek),
			time.Duration(o.FromMs)*time.Millisecond,
			style.Fg(color.Yellow)((time.Duration(o.ToMs) * time.Millisecond).String()),
		)
	}
}

// recorder saves the synchronized state at most once per interval and once more on exit.
type recorder struct {
	engine   player.Engine
	interval time.Duration

	mu      sync.Mutex
	pending *history.Record
	saved   time.Time
}

func newRecorder(engine player.Engine, interval time.Duration) *recorder {
	return &recorder{engine: engine, interval: interval}
}

func (r *recorder) observe(o session.Outcome) {
	if o.Err != nil || o.State.Locator == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending = &history.Record{
		Locator:     o.State.Locator,
		Orientation: o.State.Target,
	}

	if time.Since(r.saved) >= r.interval {
		r.saveLocked()
	}
}

func (r *recorder) flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveLocked()
}

func (r *recorder) saveLocked() {
	if r.pending == nil {
		return
	}

	record := *r.pending
	if pos, err := r.engine.CurrentPositionMs(); err == nil {
		record.PositionMs = pos
	}
	record.SavedAt = time.Now()

	if err := history.Save(record); err != nil {
		log.Warnf("saving history: %v", err)
		return
	}
	r.pending = nil
	r.saved = record.SavedAt
}
