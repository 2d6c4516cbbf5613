// Package worker defines worker contracts for asynchronous game
// segmentation and drama-ranking updates.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/storyarc/internal/domain/blocks"
	"github.com/okian/storyarc/internal/domain/game"
	"github.com/okian/storyarc/pkg/logger"
	"github.com/okian/storyarc/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Drama-score weights. Lead changes dominate; long runs and rich block
// structure contribute less.
const (
	dramaLeadChangeWeight = 3.0
	dramaBlockWeight      = 1.0
	dramaRunWeight        = 0.5
)

// Segmenter turns one game into narrative blocks.
type Segmenter interface {
	Segment(ctx context.Context, g game.Game) (blocks.Output, error)
}

// Updater records a game's drama score in the ranking store.
type Updater interface {
	UpdateBest(ctx context.Context, gameID string, score float64) (bool, error)
	// Optional extended method for metadata-aware stores
	UpdateBestWithMeta(ctx context.Context, gameID string, score float64, league string, leadChanges, largestRun, blockCount int) (bool, error)
}

// Queue defines how workers receive games.
type Queue interface {
	Dequeue(ctx context.Context) <-chan game.Game
}

// Worker processes games and writes ranking updates using the provided
// interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// DramaScore collapses a segmentation output into a single sortable
// drama value.
func DramaScore(out blocks.Output) float64 {
	return dramaLeadChangeWeight*float64(out.LeadChanges) +
		dramaBlockWeight*float64(out.BlockCount) +
		dramaRunWeight*float64(out.LargestRun)
}

// InMemoryWorker implements Worker for processing games.
type InMemoryWorker struct {
	queue     Queue
	segmenter Segmenter
	updater   Updater
	name      string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, segmenter Segmenter, updater Updater, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		segmenter: segmenter,
		updater:   updater,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	gameChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case g, ok := <-gameChan:
			if !ok {
				return
			}

			if err := w.processGame(ctx, g); err != nil {
				w.logger.Error(ctx, "error processing game", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processGame segments a single game and records its drama score.
func (w *InMemoryWorker) processGame(ctx context.Context, g game.Game) error { //nolint:gocritic // hugeParam: payload is passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerLatency(float64(time.Since(start).Milliseconds()))
	}()

	out, err := w.segmenter.Segment(ctx, g)
	if err != nil {
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "segmentation failed for game",
			logger.String("game_id", g.GameID),
			logger.Error(err),
		)
		return fmt.Errorf("failed to segment game %s: %w", g.GameID, err)
	}
	if out.BlockCount == 0 {
		// empty game; nothing to rank
		return nil
	}

	score := DramaScore(out)

	var updated bool
	if extended, ok := any(w.updater).(interface {
		UpdateBestWithMeta(ctx context.Context, gameID string, score float64, league string, leadChanges, largestRun, blockCount int) (bool, error)
	}); ok {
		updated, err = extended.UpdateBestWithMeta(ctx, g.GameID, score, string(g.League), out.LeadChanges, out.LargestRun, out.BlockCount)
	} else {
		updated, err = w.updater.UpdateBest(ctx, g.GameID, score)
	}
	if err != nil {
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "ranking update failed for game",
			logger.String("game_id", g.GameID),
			logger.Error(err),
		)
		return fmt.Errorf("ranking update failed: %w", err)
	}

	if updated {
		w.logger.Debug(ctx, "drama ranking updated",
			logger.String("game_id", g.GameID),
			logger.Float64("score", score),
		)
	}

	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers   []*InMemoryWorker
	queue     Queue
	segmenter Segmenter
	updater   Updater

	// Shutdown control
	shutdown chan struct{}

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, segmenter Segmenter, updater Updater) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:   make([]*InMemoryWorker, workerCount),
		queue:     queue,
		segmenter: segmenter,
		updater:   updater,
		shutdown:  make(chan struct{}),
		logger:    logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			segmenter,
			updater,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
	metrics.UpdateWorkerActiveCount(len(p.workers))
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	close(p.shutdown)

	for _, worker := range p.workers {
		close(worker.shutdown)
	}
	for _, worker := range p.workers {
		select {
		case <-worker.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
	metrics.UpdateWorkerActiveCount(0)
}

// Shutdown closes the queue, then waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	close(p.shutdown)

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	metrics.UpdateWorkerActiveCount(0)
	return nil
}
