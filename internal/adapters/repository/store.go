// Package repository defines the drama-ranking store interface and its
// in-memory implementation.
package repository

import "context"

// Entry represents one ranked game.
type Entry struct {
	Rank        int
	GameID      string
	Score       float64
	League      string
	LeadChanges int
	LargestRun  int
	Blocks      int
}

// Store provides read/write access to the ranking state.
type Store interface {
	// UpdateBest sets a new drama score for a game if higher than the
	// existing one. Returns true if the store updated the score.
	UpdateBest(ctx context.Context, gameID string, score float64) (bool, error)
	// UpdateBestWithMeta sets a new drama score and stores segmentation
	// metadata when improved.
	UpdateBestWithMeta(ctx context.Context, gameID string, score float64, league string, leadChanges, largestRun, blockCount int) (bool, error)

	// Rank returns the current rank and score for a game.
	// Returns ErrNotFound if the game is unknown.
	Rank(ctx context.Context, gameID string) (Entry, error)

	// TopN returns the top-N entries ordered by score desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of games tracked.
	Count(ctx context.Context) int
}
