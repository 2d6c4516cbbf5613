package testgames

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/storyarc/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		if err := logger.SetLevelString("debug"); err != nil {
			return err
		}
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "harness_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the harness tool.
func ShowHelp() {
	os.Stdout.WriteString(`Storyarc Segmentation Harness
=============================

Generates deterministic synthetic play-by-play games, segments them into
narrative blocks on a worker pool, and verifies the resulting drama
ranking.

Usage:
  go run cmd/storyarc-sim/main.go [options]

Options:
  -games int
        Number of synthetic games to generate (default from config)
  -workers int
        Number of concurrent segmentation workers (default from config)
  -queue int
        Capacity of the in-memory game queue (default from config)
  -top int
        Number of top entries in the final drama report (default from config)
  -seed int
        Generator seed; identical seeds replay identical games
  -log string
        Log file for harness output (default: harness_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Configuration may also come from a YAML file named by STORYARC_CONFIG and
from STORYARC_* environment variables; flags win.

Examples:
  # Run with default settings
  go run cmd/storyarc-sim/main.go

  # Run a large deterministic batch
  go run cmd/storyarc-sim/main.go -games 5000 -workers 16 -seed 42

  # Replay a previous run with verbose output
  go run cmd/storyarc-sim/main.go -seed 42 -verbose
`)
}
