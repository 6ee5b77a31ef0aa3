package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"datapulse/internal/config"
	"datapulse/internal/files"
	"datapulse/internal/infrastructure"
	"datapulse/internal/validation"
)

// Execute runs the root command and returns the process exit code
func Execute() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// app carries the state shared by every subcommand of one invocation
type app struct {
	configPath  string
	logLevel    string
	output      string
	metricsFile string
	trace       bool

	stdout io.Writer
	stderr io.Writer

	cfg       *config.Config
	paths     *config.Paths
	logger    *slog.Logger
	providers *infrastructure.OTelProviders
	metrics   *infrastructure.PipelineMetrics
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "datapulse",
		Short: "Validate, clean and summarize price tables and log archives",
		Long: `datapulse loads daily price tables or zipped JSON-lines logs, repairs and
validates them, and reports the mean and standard deviation of a value column
per group, most variable group first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", "text", "report format: text or json")
	rootCmd.PersistentFlags().StringVar(&a.metricsFile, "metrics-file", "", "write pipeline metrics in Prometheus text format to this file")
	rootCmd.PersistentFlags().BoolVar(&a.trace, "trace", false, "print stage spans to stderr")

	rootCmd.AddCommand(newPricesCmd(a))
	rootCmd.AddCommand(newLogsCmd(a))
	rootCmd.AddCommand(newVersionCmd(a))

	return rootCmd
}

// setup loads the configuration, applies the global flag overrides and starts
// logging and telemetry
func (a *app) setup() error {
	if err := a.checkOutput(); err != nil {
		return err
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = strings.ToLower(a.logLevel)
	}
	if a.trace {
		cfg.Telemetry.TraceExporter = "stdout"
	}
	if a.metricsFile != "" {
		cfg.Telemetry.MetricsEnabled = true
	}
	a.cfg = cfg

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}
	a.paths = paths
	if cfg.Logging.FilePath == config.DefaultLogFile {
		cfg.Logging.FilePath = paths.GetLogPath(config.AppName + ".log")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return err
	}
	a.providers = providers

	metrics, err := infrastructure.NewPipelineMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	a.metrics = metrics
	return nil
}

// checkOutput rejects an unknown --output value
func (a *app) checkOutput() error {
	if a.output != "text" && a.output != "json" {
		return fmt.Errorf("unsupported output format %q (want text or json)", a.output)
	}
	return nil
}

// validate re-checks the configuration after subcommand flag overrides
func (a *app) validate() error {
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// finish writes the metrics file and flushes telemetry. It runs whether or
// not the command succeeded.
func (a *app) finish(ctx context.Context) {
	if a.providers == nil {
		return
	}
	if a.metricsFile != "" {
		if err := a.providers.WriteMetricsFile(a.metricsFile); err != nil {
			infrastructure.WithError(a.logger, err).ErrorContext(ctx, "metrics file not written",
				slog.String("path", a.metricsFile))
		}
	}
	if err := a.providers.Shutdown(context.WithoutCancel(ctx)); err != nil {
		infrastructure.WithError(a.logger, err).WarnContext(ctx, "telemetry shutdown failed")
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		fmt.Fprintf(a.stderr, "closing log file: %v\n", err)
	}
}

// inputs returns the discovery and arguments of a run. Without arguments the
// configured data directory is the input.
func (a *app) inputs(args []string) (*files.Discovery, []string) {
	if len(args) > 0 {
		return files.NewDiscovery(""), args
	}
	return files.NewDiscovery(a.paths.DataDir), []string{"."}
}

// checkInputDirs validates every directory argument before it is expanded.
// pattern names the files expected inside; empty skips the count.
func (a *app) checkInputDirs(v *validation.FileValidator, d *files.Discovery, args []string, pattern string) error {
	for _, arg := range args {
		dir := d.Resolve(arg)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			if err := v.ValidateInputDirectory(dir, pattern); err != nil {
				return err
			}
		}
	}
	return nil
}
