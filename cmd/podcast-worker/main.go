// main package for the podcast-worker service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"

	"github.com/jash90/podcast-generator/internal/config"
	"github.com/jash90/podcast-generator/internal/objectstore"
	"github.com/jash90/podcast-generator/internal/pipeline"
	"github.com/jash90/podcast-generator/internal/synth"
	"github.com/jash90/podcast-generator/internal/worker"
)

// Log file names.
const (
	bootstrapLogName = "podcast-worker-bootstrap.log"
	serviceLogName   = "podcast-worker.log"
)

func setupLogger(logPath, fileName string) (*logger.Logger, error) {
	log, err := logger.New(logPath, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

func run() error {
	// 1. Create a temporary logger for the bootstrap process
	bootstrapLog, err := setupLogger(os.TempDir(), bootstrapLogName)
	if err != nil {
		// If bootstrap logger fails, we can only print to stderr
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	bootstrapLog.Info("Bootstrap logger created.")

	// 2. Load configuration using the central configurator
	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	bootstrapLog.Info("Configuration loaded successfully.")

	validationErr := validateConfig(cfg)
	if validationErr != nil {
		bootstrapLog.Error("Invalid configuration: %v", validationErr)

		return validationErr
	}

	err = cfg.EnsureDirectories()
	if err != nil {
		bootstrapLog.Error("Failed to create directories: %v", err)

		return fmt.Errorf("failed to create directories: %w", err)
	}

	// 3. Initialize the final logger based on the loaded configuration
	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir, serviceLogName)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	// 4. Wire the pipeline and serve until interrupted
	return serve(cfg, finalLog)
}

func validateConfig(cfg *config.Config) error {
	err := cfg.ValidateNATS()
	if err != nil {
		return fmt.Errorf("invalid NATS configuration: %w", err)
	}

	err = cfg.ValidateTTS()
	if err != nil {
		return fmt.Errorf("invalid TTS configuration: %w", err)
	}

	return nil
}

func serve(cfg *config.Config, log *logger.Logger) error {
	natsConnection, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	scripts, err := objectstore.New(jetstreamContext, cfg.NATS.ScriptObjectStoreBucket)
	if err != nil {
		return fmt.Errorf("failed to open script bucket: %w", err)
	}

	assets, err := objectstore.New(jetstreamContext, cfg.NATS.AudioObjectStoreBucket)
	if err != nil {
		return fmt.Errorf("failed to open audio bucket: %w", err)
	}

	client := synth.NewHTTPClient(cfg.SynthOptions(), log)
	producer := pipeline.NewProducer(client, cfg.PipelineOptions(), log)

	natsWorker, err := worker.NewNatsWorker(
		natsConnection,
		cfg.NATS.ScriptSubmittedSubject,
		scripts,
		assets,
		producer,
		log,
	)
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	logMessage := "Podcast-Worker successfully initialized. Listening for jobs on subject: %s"
	log.System(logMessage, cfg.NATS.ScriptSubmittedSubject)

	err = natsWorker.Run(ctx)
	if err != nil {
		return fmt.Errorf("worker terminated: %w", err)
	}

	return nil
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
