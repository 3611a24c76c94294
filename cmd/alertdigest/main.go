// alert-digest turns Google Alerts feeds into Markdown digests of
// extractive article summaries.
//
// Usage:
//
//	alertdigest run       # one pass over the configured feeds
//	alertdigest watch     # run on a cron schedule
//	alertdigest history   # list summarized articles
//	alertdigest version
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/RobinCoderZhao/alert-digest/internal/alertdigest/config"
	"github.com/RobinCoderZhao/alert-digest/internal/alertdigest/pipeline"
	"github.com/RobinCoderZhao/alert-digest/internal/alertdigest/report"
	"github.com/RobinCoderZhao/alert-digest/internal/alertdigest/scheduler"
	"github.com/RobinCoderZhao/alert-digest/internal/alertdigest/sources"
	"github.com/RobinCoderZhao/alert-digest/internal/alertdigest/store"
	"github.com/RobinCoderZhao/alert-digest/pkg/logging"
	"github.com/RobinCoderZhao/alert-digest/pkg/metrics"
	"github.com/RobinCoderZhao/alert-digest/pkg/notify"
	"github.com/RobinCoderZhao/alert-digest/pkg/scraper"
)

var version = "dev"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "alertdigest",
		Short:         "Summarize Google Alerts feeds into Markdown digests",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "YAML config file (optional)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: text or json")

	rootCmd.AddCommand(runCmd(opts))
	rootCmd.AddCommand(watchCmd(opts))
	rootCmd.AddCommand(historyCmd(opts))
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

// load reads the config file and environment, applies the flags the user
// set, validates and installs the logger.
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("feeds") {
		cfg.Feeds, _ = flags.GetStringSlice("feeds")
	}
	if flags.Changed("sentences") {
		cfg.Sentences, _ = flags.GetInt("sentences")
	}
	if flags.Changed("max-per-feed") {
		cfg.MaxPerFeed, _ = flags.GetInt("max-per-feed")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetInt("timeout")
	}
	if flags.Changed("output") {
		cfg.OutputDir, _ = flags.GetString("output")
	}
	if flags.Changed("language") {
		cfg.Language, _ = flags.GetString("language")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("state-backend") {
		cfg.State.Backend, _ = flags.GetString("state-backend")
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}

	logging.SetupDefault(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("feeds", nil, "feed URLs or file paths (overrides FEEDS)")
	cmd.Flags().Int("sentences", 0, "sentences per summary")
	cmd.Flags().Int("max-per-feed", 0, "entries read per feed")
	cmd.Flags().Int("timeout", 0, "per-request timeout in seconds")
	cmd.Flags().StringP("output", "o", "", "output directory")
	cmd.Flags().String("language", "", "summarization language: french or english")
	cmd.Flags().Int("workers", 0, "articles processed in parallel")
	cmd.Flags().String("state-backend", "", "state backend: json or sqlite")
}

func runCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process new feed items once and write the reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.load(cmd); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := newApp(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\nAlso: %s\nArticles: %d\n", res.Reports.Daily, res.Reports.Latest, len(res.Results))
			return nil
		},
	}
	addRunFlags(cmd)
	return cmd
}

func watchCmd(opts *rootOptions) *cobra.Command {
	var schedule string
	var runOnStart bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the digest on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.load(cmd); err != nil {
				return err
			}
			if cmd.Flags().Changed("schedule") {
				opts.cfg.Watch.Schedule = schedule
			}
			if cmd.Flags().Changed("run-on-start") {
				opts.cfg.Watch.RunOnStart = runOnStart
			}
			if len(opts.cfg.Feeds) == 0 {
				return pipeline.ErrNoFeeds
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := newApp(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			sched := scheduler.NewScheduler(time.Local)
			err = sched.Add(scheduler.Job{
				Name:     "digest",
				Schedule: opts.cfg.Watch.Schedule,
				Fn: func(ctx context.Context) error {
					_, err := app.Run(ctx)
					return err
				},
			})
			if err != nil {
				return err
			}
			if opts.cfg.Watch.RunOnStart {
				// A failed first run is logged; the schedule keeps going.
				_ = sched.RunOnce(ctx)
			}
			sched.Start(ctx)
			return nil
		},
	}
	addRunFlags(cmd)
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron expression (default from config: \"0 7 * * *\")")
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "run once before waiting for the schedule")
	return cmd
}

func historyCmd(opts *rootOptions) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List summarized articles, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.load(cmd); err != nil {
				return err
			}
			ctx := cmd.Context()
			backend, err := store.Open(ctx, opts.cfg.State.Backend, opts.cfg.OutputDir)
			if err != nil {
				return fmt.Errorf("open state: %w", err)
			}
			defer backend.Close()

			state, err := backend.Load(ctx)
			if err != nil {
				return fmt.Errorf("load state: %w", err)
			}
			entries := state.History.Newest()
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			fmt.Fprint(out, report.NewRenderer(opts.cfg.Lang()).Body(entries))
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "output directory")
	cmd.Flags().String("language", "", "report language: french or english")
	cmd.Flags().String("state-backend", "", "state backend: json or sqlite")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n entries (0 = all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of Markdown")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "alertdigest %s\n", version)
		},
	}
}

// app owns the long-lived collaborators of the pipeline.
type app struct {
	pipeline    *pipeline.Pipeline
	backend     store.Backend
	registry    *prometheus.Registry
	metricsFile string
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	backend, err := store.Open(ctx, cfg.State.Backend, cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}

	a := &app{backend: backend, metricsFile: cfg.Metrics.File}
	var recorder metrics.Recorder = metrics.Nop{}
	if cfg.Metrics.File != "" {
		a.registry = prometheus.NewRegistry()
		recorder = metrics.NewCollector(a.registry)
	}

	p, err := pipeline.New(pipeline.Options{
		Feeds:       cfg.Feeds,
		Sentences:   cfg.Sentences,
		MaxPerFeed:  cfg.MaxPerFeed,
		Workers:     cfg.Workers,
		Language:    cfg.Lang(),
		NotifyEmpty: cfg.Notify.SendEmpty,
	}, pipeline.Deps{
		Source:   sources.NewRSSSource(cfg.RequestTimeout()),
		Fetcher:  scraper.NewHTTPFetcher(cfg.FetchOptions()),
		Backend:  backend,
		Reports:  report.NewWriter(cfg.OutputDir, cfg.Lang()),
		Notifier: notify.FromConfig(cfg.Notify),
		Metrics:  recorder,
	})
	if err != nil {
		backend.Close()
		return nil, err
	}
	a.pipeline = p
	return a, nil
}

// Run runs the pipeline once and exports metrics when configured.
func (a *app) Run(ctx context.Context) (*pipeline.RunResult, error) {
	res, err := a.pipeline.Run(ctx)
	if a.registry != nil {
		if werr := metrics.WriteTextfile(a.metricsFile, a.registry); werr != nil {
			slog.Warn("failed to export metrics", "path", a.metricsFile, "error", werr)
		}
	}
	return res, err
}

func (a *app) Close() error {
	return a.backend.Close()
}
