package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/storyarc/internal/config"
	"github.com/okian/storyarc/internal/testgames"
)

// Default run timeout.
const (
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("Failed to load config: " + err.Error() + "\n")
		return
	}

	var (
		numGames  = flag.Int("games", cfg.NumGames, "Number of synthetic games to generate")
		workers   = flag.Int("workers", cfg.WorkerCount, "Number of concurrent segmentation workers")
		queueSize = flag.Int("queue", cfg.QueueSize, "Capacity of the in-memory game queue")
		topN      = flag.Int("top", cfg.TopN, "Number of top entries in the final drama report")
		seed      = flag.Int64("seed", cfg.Seed, "Generator seed; identical seeds replay identical games")
		logFile   = flag.String("log", "", "Log file for harness output (default: harness_log_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testgames.ShowHelp()
		return
	}

	if err := testgames.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	runConfig := &testgames.Config{
		NumGames:  *numGames,
		Workers:   *workers,
		QueueSize: *queueSize,
		TopN:      *topN,
		Seed:      *seed,
		LogFile:   *logFile,
		Verbose:   *verbose,
	}

	if err := testgames.Run(ctx, runConfig); err != nil {
		os.Stderr.WriteString("Harness failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
