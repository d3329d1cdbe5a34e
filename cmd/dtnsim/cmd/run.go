package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pkg/browser"
	"github.com/sarchlab/dtnsim/config"
	"github.com/sarchlab/dtnsim/datarecording"
	"github.com/sarchlab/dtnsim/monitoring"
	"github.com/sarchlab/dtnsim/simulation"
	"github.com/sarchlab/dtnsim/timing"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type runOptions struct {
	replicas    int
	openBrowser bool
}

func newRunCmd(o *options) *cobra.Command {
	ro := runOptions{}

	c := &cobra.Command{
		Use:   "run",
		Short: "Run simulations and print their summaries.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := o.settings()
			if err != nil {
				return err
			}

			return runAll(cmd.OutOrStdout(), s, ro)
		},
	}

	addSimFlags(c.Flags())
	c.Flags().IntVar(&ro.replicas, "replicas", 1,
		"independent runs executed in parallel with distinct seeds")
	c.Flags().BoolVar(&ro.openBrowser, "open-browser", false,
		"open the monitor in a web browser")

	return c
}

// replicaSettings derives the settings of run i out of n. Runs get
// consecutive seeds and their own output file.
func replicaSettings(s config.Settings, i, n int) config.Settings {
	if n == 1 {
		return s
	}

	if s.Seed == 0 {
		s.Seed = uint64(i) + 1
	} else {
		s.Seed += uint64(i)
	}

	if s.Output.DB != "" {
		s.Output.DB = fmt.Sprintf("%s_%d",
			strings.TrimSuffix(s.Output.DB, ".sqlite3"), i)
	}

	return s
}

type replica struct {
	sim      *simulation.Simulator
	recorder datarecording.DataRecorder
	err      error
}

func buildReplica(
	s config.Settings,
	metrics *monitoring.Metrics,
) (*replica, error) {
	r := &replica{}
	b := simulation.MakeBuilder().WithSettings(s)

	if s.Output.DB != "" {
		rec, err := datarecording.New(s.Output.DB)
		if err != nil {
			return nil, err
		}

		r.recorder = rec
		b = b.WithDataRecorder(rec)
	}

	if log.IsLevelEnabled(log.TraceLevel) {
		b = b.WithEngineHook(timing.NewEventLogger(log.StandardLogger()))
	}

	sim, err := b.Build()
	if err != nil {
		return nil, err
	}

	if metrics != nil {
		sim.Engine().AcceptHook(metrics.Hook(sim.ID()))
	}

	r.sim = sim

	return r, nil
}

func startMonitor(
	s config.Settings,
	ro runOptions,
) (*monitoring.Monitor, *monitoring.Metrics, error) {
	if s.Monitor.Port == 0 {
		return nil, nil, nil
	}

	metrics, err := monitoring.NewMetrics(nil)
	if err != nil {
		return nil, nil, err
	}

	m := monitoring.NewMonitor().
		WithPortNumber(s.Monitor.Port).
		WithMetrics(metrics)

	url, err := m.StartServer()
	if err != nil {
		return nil, nil, err
	}

	if ro.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			log.WithError(err).Warn("cannot open the browser")
		}
	}

	return m, metrics, nil
}

func runAll(out io.Writer, s config.Settings, ro runOptions) error {
	if ro.replicas < 1 {
		return fmt.Errorf("--replicas: need at least 1, got %d", ro.replicas)
	}

	monitor, metrics, err := startMonitor(s, ro)
	if err != nil {
		return err
	}

	if monitor != nil {
		defer monitor.StopServer()
	}

	replicas := make([]*replica, ro.replicas)
	for i := range replicas {
		replicas[i], err = buildReplica(replicaSettings(s, i, ro.replicas), metrics)
		if err != nil {
			closeRecorders(replicas[:i])
			return err
		}

		if monitor != nil {
			monitor.RegisterSimulation(replicas[i].sim, replicas[i].sim.Engine())
		}
	}

	var bar *monitoring.ProgressBar
	if monitor != nil {
		bar = monitor.CreateProgressBar("runs", uint64(ro.replicas))
		defer monitor.CompleteProgressBar(bar)
	}

	var wg sync.WaitGroup
	for _, r := range replicas {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if bar != nil {
				bar.Start()
			}

			r.err = r.sim.Run()

			if r.recorder != nil {
				if err := r.recorder.Close(); err != nil && r.err == nil {
					r.err = err
				}
			}

			if bar != nil {
				bar.Finish(r.err)
			}
		}()
	}

	wg.Wait()

	return report(out, replicas)
}

func closeRecorders(replicas []*replica) {
	for _, r := range replicas {
		if r.recorder != nil {
			r.recorder.Close()
		}
	}
}

func report(out io.Writer, replicas []*replica) error {
	var errs []error

	for i, r := range replicas {
		if len(replicas) > 1 {
			fmt.Fprintf(out, "run %d (seed %d)\n", i, r.sim.Settings().Seed)
		}

		if r.err != nil {
			errs = append(errs, fmt.Errorf("run %d: %w", i, r.err))
			fmt.Fprintf(out, "failed: %v\n\n", r.err)

			continue
		}

		if err := r.sim.Summary().Print(out); err != nil {
			return err
		}

		fmt.Fprintln(out)
	}

	return errors.Join(errs...)
}
