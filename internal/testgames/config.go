// Package testgames is the self-contained verification harness: it
// generates deterministic synthetic games, pushes them through the
// segmentation pipeline on a worker pool, and checks the ranked results.
package testgames

import (
	"sync/atomic"
	"time"
)

// Config holds configuration for the harness run.
type Config struct {
	NumGames  int   // Number of synthetic games to generate
	Workers   int   // Number of concurrent segmentation workers
	QueueSize int   // Capacity of the in-memory game queue
	TopN      int   // Number of top entries in the final drama report
	Seed      int64 // Generator seed; identical seeds replay identical games
	LogFile   string
	Verbose   bool
}

// Stats holds harness counters. Segmentation counters are updated from
// worker goroutines and must be read with the accessor methods.
type Stats struct {
	GamesGenerated int
	GamesEnqueued  int
	GamesRanked    int

	gamesSegmented      atomic.Int64
	gamesFailed         atomic.Int64
	guardrailViolations atomic.Int64
	blocksProduced      atomic.Int64

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// GamesSegmented returns the number of successfully segmented games.
func (s *Stats) GamesSegmented() int { return int(s.gamesSegmented.Load()) }

// GamesFailed returns the number of games that failed segmentation.
func (s *Stats) GamesFailed() int { return int(s.gamesFailed.Load()) }

// GuardrailViolations returns the number of outputs that failed
// verification.
func (s *Stats) GuardrailViolations() int { return int(s.guardrailViolations.Load()) }

// BlocksProduced returns the total number of narrative blocks emitted.
func (s *Stats) BlocksProduced() int { return int(s.blocksProduced.Load()) }
