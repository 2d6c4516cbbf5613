package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/okian/storyarc/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultShardCount = 8
)

// MemStore is a sharded in-memory Store. Writes lock only the owning
// shard; ranked reads snapshot all shards and sort on demand, which fits
// the harness's write-heavy, read-rarely profile.
type MemStore struct {
	shards []*shard
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemStore creates a new in-memory ranking store.
func NewMemStore(_ context.Context, opts ...Option) *MemStore {
	s := &MemStore{}

	cfg := storeConfig{shardCount: defaultShardCount}
	for _, opt := range opts {
		opt(&cfg)
	}

	s.shards = make([]*shard, cfg.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{entries: make(map[string]Entry)}
	}
	return s
}

func (s *MemStore) shardFor(gameID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(gameID))
	return s.shards[int(h.Sum32())%len(s.shards)]
}

// UpdateBest sets a new drama score for a game if higher than the existing
// one.
func (s *MemStore) UpdateBest(ctx context.Context, gameID string, score float64) (bool, error) {
	return s.UpdateBestWithMeta(ctx, gameID, score, "", 0, 0, 0)
}

// UpdateBestWithMeta sets a new drama score and stores segmentation
// metadata when improved.
func (s *MemStore) UpdateBestWithMeta(_ context.Context, gameID string, score float64, league string, leadChanges, largestRun, blockCount int) (bool, error) {
	if gameID == "" {
		return false, fmt.Errorf("%w: empty game id", ErrInvalidEntry)
	}

	sh := s.shardFor(gameID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if existing, ok := sh.entries[gameID]; ok && existing.Score >= score {
		return false, nil
	}
	sh.entries[gameID] = Entry{
		GameID:      gameID,
		Score:       score,
		League:      league,
		LeadChanges: leadChanges,
		LargestRun:  largestRun,
		Blocks:      blockCount,
	}

	metrics.RecordRankingUpdate()
	return true, nil
}

// Rank returns the current rank and score for a game.
func (s *MemStore) Rank(ctx context.Context, gameID string) (Entry, error) {
	sh := s.shardFor(gameID)
	sh.mu.RLock()
	_, ok := sh.entries[gameID]
	sh.mu.RUnlock()
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, gameID)
	}

	// Rank requires a global ordering; walk the sorted snapshot.
	for _, e := range s.sorted(ctx) {
		if e.GameID == gameID {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, gameID)
}

// TopN returns the top-N entries ordered by score desc.
func (s *MemStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}

	all := s.sorted(ctx)
	if n > len(all) {
		n = len(all)
	}
	return all[:n], nil
}

// Count returns the number of games tracked.
func (s *MemStore) Count(_ context.Context) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.entries)
		sh.mu.RUnlock()
	}
	metrics.UpdateGamesTracked(total)
	return total
}

// sorted snapshots every shard and returns the entries ranked by score
// desc, ties broken by game id so the ordering is deterministic.
func (s *MemStore) sorted(_ context.Context) []Entry {
	var all []Entry
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, e := range sh.entries {
			all = append(all, e)
		}
		sh.mu.RUnlock()
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		return all[i].GameID < all[j].GameID
	})
	for i := range all {
		all[i].Rank = i + 1
	}
	return all
}
