package testgames

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/storyarc/internal/adapters/mq/queue"
	"github.com/okian/storyarc/internal/adapters/mq/worker"
	"github.com/okian/storyarc/internal/adapters/repository"
	service "github.com/okian/storyarc/internal/app"
	"github.com/okian/storyarc/internal/domain/blocks"
	"github.com/okian/storyarc/internal/domain/game"
	"github.com/okian/storyarc/pkg/logger"
)

// Run executes the complete harness: generate, enqueue, segment on the
// worker pool, then verify the drama ranking.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting storyarc segmentation harness",
		logger.Int("games", config.NumGames),
		logger.Int("workers", config.Workers),
		logger.Int("queueSize", config.QueueSize),
		logger.Int("topN", config.TopN),
		logger.Int("seed", int(config.Seed)),
		logger.Any("verbose", config.Verbose))

	games := GenerateGames(ctx, config, stats)

	store := repository.NewMemStore(ctx)
	q := queue.NewInMemoryQueue(
		queue.WithCapacity(config.QueueSize),
		queue.WithBufferSize(config.QueueSize),
	)
	segmenter := &countingSegmenter{
		inner: service.New(),
		stats: stats,
	}
	pool := worker.NewPool(config.Workers, q, segmenter, store)
	pool.Start(ctx)

	if err := enqueueGames(ctx, q, games, stats); err != nil {
		return fmt.Errorf("game enqueue failed: %w", err)
	}

	// Closing the queue lets the pool drain the backlog before stopping.
	if err := pool.Shutdown(ctx); err != nil {
		return fmt.Errorf("worker pool shutdown failed: %w", err)
	}

	if err := verifyRankings(ctx, config, store, stats); err != nil {
		return fmt.Errorf("ranking verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(ctx, stats)

	if v := stats.GuardrailViolations(); v > 0 {
		return fmt.Errorf("%d games violated output guardrails", v)
	}

	logger.Get().Info(ctx, "harness completed successfully")
	return nil
}

// enqueueGames pushes every game into the queue, retrying briefly when the
// queue is full.
func enqueueGames(ctx context.Context, q queue.Queue, games []game.Game, stats *Stats) error {
	for i := range games {
		for !q.Enqueue(ctx, games[i]) {
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled after %d of %d games: %w",
					stats.GamesEnqueued, len(games), ctx.Err())
			case <-time.After(EnqueueRetryDelay):
			}
		}
		stats.GamesEnqueued++
	}

	logger.Get().Info(ctx, "all games enqueued", logger.Int("count", stats.GamesEnqueued))
	return nil
}

// countingSegmenter wraps the service so the harness can count outcomes
// across worker goroutines.
type countingSegmenter struct {
	inner *service.Service
	stats *Stats
}

func (c *countingSegmenter) Segment(ctx context.Context, g game.Game) (blocks.Output, error) {
	out, err := c.inner.Segment(ctx, g)
	if err != nil {
		c.stats.gamesFailed.Add(1)
		if errors.Is(err, service.ErrGuardrail) {
			c.stats.guardrailViolations.Add(1)
		}
		return out, err
	}
	c.stats.gamesSegmented.Add(1)
	c.stats.blocksProduced.Add(int64(out.BlockCount))
	return out, nil
}

// displayFinalStats prints the final harness statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, gamesPerSecond float64

	segmented := stats.GamesSegmented()
	if stats.GamesEnqueued > 0 {
		successRate = float64(segmented) / float64(stats.GamesEnqueued) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		gamesPerSecond = float64(segmented) / stats.Duration.Seconds()
	}

	var blocksPerGame float64
	if segmented > 0 {
		blocksPerGame = float64(stats.BlocksProduced()) / float64(segmented)
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("gamesGenerated", stats.GamesGenerated),
		logger.Int("gamesEnqueued", stats.GamesEnqueued),
		logger.Int("gamesSegmented", segmented),
		logger.Int("gamesFailed", stats.GamesFailed()),
		logger.Int("guardrailViolations", stats.GuardrailViolations()),
		logger.Int("gamesRanked", stats.GamesRanked),
		logger.Float64("blocksPerGame", blocksPerGame),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("gamesPerSecond", gamesPerSecond))
}
