package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/creachadair/stoplight"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

// envPrefix is prepended to flag names to find their environment variables.
const envPrefix = "STOPLIGHT_"

type runFlags struct {
	id       string
	minCycle time.Duration
	maxCycle time.Duration
	quantum  time.Duration
	seed     uint64
	waiters  int
	rounds   int
	target   stoplight.Phase
}

func newRootCmd(log *logrus.Logger) *cobra.Command {
	var level string
	root := &cobra.Command{
		Use:           "stoplight",
		Short:         "Run a randomized two-phase traffic light",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := applyEnv(cmd.Flags()); err != nil {
				return err
			}
			lvl, err := logrus.ParseLevel(level)
			if err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			log.SetLevel(lvl)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&level, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(newRunCmd(log), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func newRunCmd(log *logrus.Logger) *cobra.Command {
	f := runFlags{target: stoplight.Go}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a light and wait on it from several goroutines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, log, f)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&f.id, "id", "", "light name for logs (default random)")
	fs.DurationVar(&f.minCycle, "min-cycle", stoplight.DefaultMinCycle, "minimum phase duration")
	fs.DurationVar(&f.maxCycle, "max-cycle", stoplight.DefaultMaxCycle, "maximum phase duration")
	fs.DurationVar(&f.quantum, "quantum", stoplight.DefaultQuantum, "toggle loop polling interval")
	fs.Uint64Var(&f.seed, "seed", 0, "random seed for phase durations (0 for random)")
	fs.IntVar(&f.waiters, "waiters", 3, "number of concurrent waiters")
	fs.IntVar(&f.rounds, "rounds", 2, "number of times each waiter passes the light")
	fs.Var(&f.target, "wait-for", "phase the waiters wait for (stop or go)")
	return cmd
}

// applyEnv sets each flag not given on the command line from its environment
// variable, if that is set. For example, --min-cycle reads STOPLIGHT_MIN_CYCLE.
func applyEnv(fs *pflag.FlagSet) error {
	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}
		key := envPrefix + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if v, ok := os.LookupEnv(key); ok {
			if err := fs.Set(f.Name, v); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
	})
	return errors.Join(errs...)
}

func run(ctx context.Context, log *logrus.Logger, f runFlags) error {
	if f.waiters <= 0 || f.rounds <= 0 {
		return fmt.Errorf("waiters and rounds must be positive (got %d, %d)", f.waiters, f.rounds)
	}

	light := stoplight.New(&stoplight.Options{
		ID:       f.id,
		MinCycle: f.minCycle,
		MaxCycle: f.maxCycle,
		Quantum:  f.quantum,
		Seed:     f.seed,
		Logger:   log,
	})
	if err := light.Start(); err != nil {
		return fmt.Errorf("starting light: %w", err)
	}
	defer light.Stop()

	// Report transitions until the waiters are finished.
	dctx, cancel := context.WithCancel(ctx)
	defer cancel()
	displayDone := make(chan struct{})
	go func() {
		defer close(displayDone)
		display(dctx, log.WithField("light", light.ID()), light)
	}()

	g, gctx := errgroup.WithContext(ctx)
	for i := range f.waiters {
		wlog := log.WithFields(logrus.Fields{"light": light.ID(), "waiter": i + 1})
		g.Go(func() error {
			for round := range f.rounds {
				start := time.Now()
				if round > 0 {
					// Each round after the first waits for the light to leave the
					// target phase, so that every round sees a distinct transition.
					if err := light.WaitFor(gctx, f.target.Other()); err != nil {
						return err
					}
				}
				if err := light.WaitFor(gctx, f.target); err != nil {
					return err
				}
				wlog.WithFields(logrus.Fields{
					"round":  round + 1,
					"waited": time.Since(start).Round(time.Millisecond),
				}).Infof("passing on %v", f.target)
			}
			return nil
		})
	}

	err := g.Wait()
	cancel()
	<-displayDone

	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		log.Info("run: interrupted")
		return nil
	}
	if err != nil {
		return fmt.Errorf("waiting for light: %w", err)
	}
	log.WithField("waiters", f.waiters).Info("run: all waiters finished")
	return nil
}

// display logs each transition of light until ctx ends.
func display(ctx context.Context, log logrus.FieldLogger, light *stoplight.Light) {
	for {
		tr, err := light.NextTransition(ctx)
		if err != nil {
			return
		}
		log.WithFields(logrus.Fields{
			"seq":     tr.Seq,
			"elapsed": tr.Elapsed.Round(time.Millisecond),
		}).Infof("light is %v", tr.To)
	}
}
