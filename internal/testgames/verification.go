package testgames

import (
	"context"
	"fmt"

	"github.com/okian/storyarc/internal/adapters/repository"
	"github.com/okian/storyarc/pkg/logger"
)

// verifyRankings checks the drama ranking the workers produced and reports
// the most dramatic games.
func verifyRankings(ctx context.Context, config *Config, store repository.Store, stats *Stats) error {
	logger.Get().Info(ctx, "verifying drama rankings")

	count := store.Count(ctx)
	stats.GamesRanked = count
	if count == 0 {
		return fmt.Errorf("no games were ranked")
	}

	top, err := store.TopN(ctx, config.TopN)
	if err != nil {
		return fmt.Errorf("failed to fetch top games: %w", err)
	}

	if err := verifyOrdering(top); err != nil {
		return err
	}

	// Every ranked game must resolve to the same entry by direct lookup.
	for _, e := range top {
		ranked, err := store.Rank(ctx, e.GameID)
		if err != nil {
			return fmt.Errorf("ranked game %s not found by lookup: %w", e.GameID, err)
		}
		if ranked.Rank != e.Rank || ranked.Score != e.Score {
			return fmt.Errorf("rank mismatch for %s: list says (%d, %.2f), lookup says (%d, %.2f)",
				e.GameID, e.Rank, e.Score, ranked.Rank, ranked.Score)
		}
	}

	displayTopGames(ctx, top, config.Verbose)
	logger.Get().Info(ctx, "ranking verification completed")
	return nil
}

// verifyOrdering checks the list is sorted by score desc with contiguous
// ranks.
func verifyOrdering(top []repository.Entry) error {
	for i, e := range top {
		if e.Rank != i+1 {
			return fmt.Errorf("ranking not contiguous: entry %d carries rank %d", i, e.Rank)
		}
		if i > 0 && e.Score > top[i-1].Score {
			return fmt.Errorf("ranking not sorted: entry %d outscores entry %d", i, i-1)
		}
	}
	return nil
}

// displayTopGames logs the most dramatic games of the run.
func displayTopGames(ctx context.Context, top []repository.Entry, verbose bool) {
	logger.Get().Info(ctx, "most dramatic games", logger.Int("count", len(top)))
	for _, e := range top {
		fields := []logger.Field{
			logger.Int("rank", e.Rank),
			logger.String("game_id", e.GameID),
			logger.Float64("drama_score", e.Score),
		}
		if verbose {
			fields = append(fields,
				logger.String("league", e.League),
				logger.Int("lead_changes", e.LeadChanges),
				logger.Int("largest_run", e.LargestRun),
				logger.Int("blocks", e.Blocks),
			)
		}
		logger.Get().Info(ctx, "ranked game", fields...)
	}
}
