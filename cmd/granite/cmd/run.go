package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-drift/granite/pkg/artwork"
	"github.com/go-drift/granite/pkg/config"
	"github.com/go-drift/granite/pkg/coverflow"
	"github.com/go-drift/granite/pkg/timeline"
)

// sampleCount is the number of covers generated when the art directory is
// missing.
const sampleCount = 8

// scrollEvery is how often the demo moves to the next album.
var scrollEvery = time.Second

// logOutput receives the structured log of run.
var logOutput io.Writer = os.Stderr

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Play the album browser demo",
		Long: `Play the album browser demo for a fixed time.

The browser fades in, searches the art directory, fades the covers in
and scrolls through them, showing the cover and track listing of each
selected album. Nothing is drawn; repaints are logged at debug
level and counted. Settings come from granite.yaml in the config
directory and can be overridden with flags.

If the art directory does not exist, sample covers are generated in it.

Flags:
  --config DIR       Directory containing granite.yaml (default: .)
  --art-dir DIR      Directory of cover images
  --query TEXT       Only show albums whose name contains TEXT
  --for DURATION     How long to run, e.g. 3s

Examples:
  granite run
  granite run --art-dir ~/Music/covers --query blue --for 10s`,
		Usage: "granite run [--config DIR] [--art-dir DIR] [--query TEXT] [--for DURATION]",
		Run:   runRun,
	})
}

type runOptions struct {
	configDir string
	artDir    string
	query     *string
	runFor    time.Duration
}

func parseRunArgs(args []string) (runOptions, error) {
	opts := runOptions{configDir: "."}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--config", "--art-dir", "--query", "--for":
		default:
			return opts, fmt.Errorf("unknown flag %q", arg)
		}
		if i+1 >= len(args) {
			return opts, fmt.Errorf("%s requires a value", arg)
		}
		value := args[i+1]
		i++
		switch arg {
		case "--config":
			opts.configDir = value
		case "--art-dir":
			opts.artDir = value
		case "--query":
			opts.query = &value
		case "--for":
			d, err := time.ParseDuration(value)
			if err != nil || d <= 0 {
				return opts, fmt.Errorf("--for must be a positive duration (got %q)", value)
			}
			opts.runFor = d
		}
	}
	return opts, nil
}

func runRun(args []string, out io.Writer) error {
	opts, err := parseRunArgs(args)
	if err != nil {
		return err
	}
	cfg, err := config.Resolve(opts.configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.artDir != "" {
		cfg.ArtDir = opts.artDir
	}
	if opts.query != nil {
		cfg.Query = *opts.query
	}
	if opts.runFor > 0 {
		cfg.RunFor = opts.runFor
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logOutput)
	if _, err := os.Stat(cfg.ArtDir); errors.Is(err, fs.ErrNotExist) {
		if _, err := artwork.WriteSamples(cfg.ArtDir, sampleCount); err != nil {
			return err
		}
		logger.Info("generated sample covers", "dir", cfg.ArtDir, "count", sampleCount)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.RunFor)
	defer cancel()

	sched := timeline.New(timeline.Config{
		PulseInterval: cfg.PulseInterval,
		MaxJobs:       cfg.MaxJobs,
		Logger:        logger,
	})
	painter := sched.NewRepaintCoalescer(func() {
		logger.Debug("repaint")
	})
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	var browser *coverflow.Browser
	var setupErr error
	err = sched.Invoke(ctx, func() {
		container := coverflow.NewContainer(sched, painter, logger)
		browser, setupErr = coverflow.NewBrowser(container, artwork.NewDirSource(cfg.ArtDir), coverflow.Options{FadeIn: cfg.FadeIn})
		if setupErr != nil {
			return
		}
		_, setupErr = browser.Load(cfg.Query)
	})
	if err != nil {
		return err
	}
	if setupErr != nil {
		return setupErr
	}
	logger.Info("browser started", "art_dir", cfg.ArtDir, "query", cfg.Query, "run_for", cfg.RunFor)

	tour(ctx, sched, browser, logger)
	sched.Stop()

	fmt.Fprintf(out, "albums: %d\n", len(browser.Albums()))
	fmt.Fprintf(out, "pulses: %d\n", sched.Pulses())
	fmt.Fprintf(out, "repaints: %d\n", painter.Paints())
	if err := browser.Err(); err != nil {
		return err
	}
	return nil
}

// tour scrolls back and forth through the albums and shows the details of
// the selected one, until ctx is done or the scheduler stops.
func tour(ctx context.Context, sched *timeline.Scheduler, browser *coverflow.Browser, logger *slog.Logger) {
	ticker := time.NewTicker(scrollEvery)
	defer ticker.Stop()

	forward := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		err := sched.Invoke(ctx, func() {
			s := browser.Scroller()
			if len(s.Cards()) == 0 {
				return
			}
			if len(s.Cards()) > 1 {
				scroll := s.ScrollToPrevious
				if forward {
					scroll = s.ScrollToNext
				}
				if errors.Is(scroll(), coverflow.ErrOutOfRange) {
					forward = !forward
				}
			}
			if _, err := browser.ShowDetails(s.SelectedIndex()); err != nil {
				logger.Warn("showing details failed", "error", err)
			}
		})
		if err != nil {
			if ctx.Err() == nil {
				logger.Debug("tour stopped", "error", err)
			}
			return
		}
	}
}
