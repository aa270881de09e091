// main package for the podcast-synth command-line client.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/book-expert/logger"

	"github.com/jash90/podcast-generator/internal/assetutil"
	"github.com/jash90/podcast-generator/internal/config"
	"github.com/jash90/podcast-generator/internal/core"
	"github.com/jash90/podcast-generator/internal/pipeline"
	"github.com/jash90/podcast-generator/internal/synth"
)

// Flag names.
const (
	flagScript  = "script"
	flagOutput  = "output"
	flagVerbose = "verbose"
	flagHealth  = "health"
)

// Flag descriptions.
const (
	flagScriptDesc  = "JSON file containing the podcast script to synthesize"
	flagOutputDesc  = "Output file path for the assembled audio"
	flagVerboseDesc = "Enable verbose logging"
	flagHealthDesc  = "Check TTS provider health and exit"
)

// Error and log messages.
const (
	errScriptRequired = "Either --script or --health must be provided"
	errFmtLoadConfig  = "failed to load configuration: %w"
	errFmtInitLogger  = "failed to initialize logger: %w"
	errFmtCreateDirs  = "failed to create directories: %w"
	errFmtHealth      = "health check failed: %w"
	errFmtLoadScript  = "failed to load script: %w"
	errFmtSynthesize  = "failed to synthesize podcast: %w"
	errFmtWriteAsset  = "failed to write asset to %s: %w"

	msgProviderHealthy = "TTS provider is healthy"
	msgFmtGenerated    = "Generated: %s (%s)\n"

	logFmtClientReady  = "Podcast synth client initialized (model: %s)"
	logFmtScriptLoaded = "Loaded script %s: %d segments"
	logFmtAssetWritten = "Wrote %s (%d bytes)"
	logFmtHealthFailed = "Health check failed: %v"

	progressLineFormat = "\r[%5.1f%%] %-40s"
	verboseLineFormat  = "[%5.1f%%] %s\n"
)

// Log file names.
const (
	logFileNameDefault = "podcast-synth.log"
	logFileNameVerbose = "podcast-synth-verbose.log"
)

// healthCheckTimeout bounds the --health probe.
const healthCheckTimeout = 10 * time.Second

const assetFilePermissions = 0o600

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	script  string
	output  string
	verbose bool
	health  bool
}

func main() {
	err := run()
	if err != nil {
		// A logger might not be initialized yet, so use the standard log package.
		log.Fatalf("Error: %v", err)
	}
}

// run is the main application entry point, returning an error on failure.
func run() error {
	flags := parseFlags()

	err := validateArguments(flags)
	if err != nil {
		flag.Usage()

		return err
	}

	cfg, appLog, err := setup(flags.verbose)
	if err != nil {
		return err
	}

	defer func() {
		closeErr := appLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing logger: %v\n", closeErr)
		}
	}()

	client := synth.NewHTTPClient(cfg.SynthOptions(), appLog)
	appLog.Info(logFmtClientReady, client.Model())

	if flags.health {
		return handleHealthCheck(client, appLog)
	}

	return synthesize(client, cfg, appLog, flags)
}

// parseFlags defines and parses command-line flags, returning them in a struct.
func parseFlags() appFlags {
	var flags appFlags

	flag.StringVar(&flags.script, flagScript, "", flagScriptDesc)
	flag.StringVar(&flags.output, flagOutput, "", flagOutputDesc)
	flag.BoolVar(&flags.verbose, flagVerbose, false, flagVerboseDesc)
	flag.BoolVar(&flags.health, flagHealth, false, flagHealthDesc)
	flag.Parse()

	return flags
}

// validateArguments checks the flag combination before any setup work.
func validateArguments(flags appFlags) error {
	if flags.script == "" && !flags.health {
		return errors.New(errScriptRequired)
	}

	return nil
}

// setup loads config through a bootstrap logger, then initializes the real
// logger in the configured directory.
func setup(verbose bool) (*config.Config, *logger.Logger, error) {
	bootstrapLog, err := logger.New(os.TempDir(), logFileNameDefault)
	if err != nil {
		return nil, nil, fmt.Errorf(errFmtInitLogger, err)
	}

	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		return nil, nil, fmt.Errorf(errFmtLoadConfig, err)
	}

	err = cfg.EnsureDirectories()
	if err != nil {
		return nil, nil, fmt.Errorf(errFmtCreateDirs, err)
	}

	logFileName := logFileNameDefault
	if verbose {
		logFileName = logFileNameVerbose
	}

	appLog, err := logger.New(cfg.Paths.BaseLogsDir, logFileName)
	if err != nil {
		return nil, nil, fmt.Errorf(errFmtInitLogger, err)
	}

	return cfg, appLog, nil
}

// handleHealthCheck probes the provider and prints the result.
func handleHealthCheck(client *synth.HTTPClient, appLog *logger.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()

	err := client.HealthCheck(ctx)
	if err != nil {
		appLog.Error(logFmtHealthFailed, err)

		return fmt.Errorf(errFmtHealth, err)
	}

	fmt.Println(msgProviderHealthy)

	return nil
}

// synthesize runs the full pipeline for one script file and writes the
// assembled asset to disk.
func synthesize(
	client *synth.HTTPClient,
	cfg *config.Config,
	appLog *logger.Logger,
	flags appFlags,
) error {
	script, err := pipeline.LoadScript(flags.script)
	if err != nil {
		return fmt.Errorf(errFmtLoadScript, err)
	}

	appLog.Info(logFmtScriptLoaded, flags.script, len(script.Segments))

	session := pipeline.NewSession(client, cfg.PipelineOptions(), appLog)
	session.Subscribe(progressPrinter(flags.verbose))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	asset, err := session.DownloadAndAssemble(ctx, script)

	fmt.Println()

	if err != nil {
		return fmt.Errorf(errFmtSynthesize, err)
	}

	outputPath := flags.output
	if outputPath == "" {
		outputPath = filepath.Join(cfg.Paths.OutputDir, asset.Name)
	}

	err = os.WriteFile(outputPath, asset.Data, assetFilePermissions)
	if err != nil {
		return fmt.Errorf(errFmtWriteAsset, outputPath, err)
	}

	appLog.Info(logFmtAssetWritten, outputPath, len(asset.Data))
	fmt.Printf(
		msgFmtGenerated,
		outputPath,
		assetutil.FormatFileSize(int64(len(asset.Data))),
	)

	manifest := session.Manifest()
	if flags.verbose || !manifest.Clean() {
		fmt.Println(manifest.Render())
	}

	return nil
}

// progressPrinter renders progress snapshots to stdout. The default printer
// redraws one status line; verbose mode prints every transition on its own line.
func progressPrinter(verbose bool) core.ProgressFunc {
	return func(progress core.PipelineProgress) {
		if verbose {
			fmt.Printf(verboseLineFormat, progress.OverallPercent, progress.Operation)

			return
		}

		fmt.Printf(progressLineFormat, progress.OverallPercent, progress.Operation)
	}
}
