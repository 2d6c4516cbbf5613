// Package service wires the segmentation stages into a single pipeline:
// signal extraction, split-point allocation, block construction, and role
// assignment, with the output guardrails enforced before anything is
// returned downstream.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/storyarc/internal/domain/allocate"
	"github.com/okian/storyarc/internal/domain/blocks"
	"github.com/okian/storyarc/internal/domain/game"
	"github.com/okian/storyarc/internal/domain/guardrails"
	"github.com/okian/storyarc/internal/domain/roles"
	"github.com/okian/storyarc/internal/domain/signals"
	"github.com/okian/storyarc/pkg/logger"
	"github.com/okian/storyarc/pkg/metrics"
)

// Allocation path labels for metrics.
const (
	pathUnweighted = "unweighted"
	pathWeighted   = "weighted"
	pathBlowout    = "blowout"
	pathThreeBlock = "three_block"
)

// ErrGuardrail reports that a segmentation result violated an output
// invariant and was withheld from downstream consumers.
var ErrGuardrail = errors.New("segmentation output failed verification")

// BoxScorer produces a per-block statistical summary from the block's play
// ids. Implementations may consult external stats services; a nil BoxScorer
// leaves the blocks without mini boxes.
type BoxScorer interface {
	MiniBox(ctx context.Context, gameID string, playIDs, prevPlayIDs []int) (any, error)
}

// Service segments play-by-play games into narrative blocks.
type Service struct {
	logger     logger.Logger
	boxScorer  BoxScorer
	signalOpts []signals.Option
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBoxScorer attaches a mini-box producer; each block gets a summary
// computed from its plays.
func WithBoxScorer(b BoxScorer) Option {
	return func(s *Service) {
		s.boxScorer = b
	}
}

// WithSignalOptions overrides signal-extraction thresholds, e.g. the
// minimum scoring-run size.
func WithSignalOptions(opts ...signals.Option) Option {
	return func(s *Service) {
		s.signalOpts = opts
	}
}

// New constructs a new Service.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) log() logger.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logger.Get()
}

// Segment runs the full pipeline on one game. It is deterministic: the
// same game always produces the same output.
//
// A game with no moments yields an empty output and no error. A weighted
// allocation shortfall is logged and counted but does not fail the game;
// the best-effort split set is used. A guardrail violation returns the
// offending output together with a wrapped ErrGuardrail so the caller can
// inspect it, and the output must not be passed downstream.
func (s *Service) Segment(ctx context.Context, g game.Game) (blocks.Output, error) {
	start := time.Now()

	n := len(g.Moments)
	if n == 0 {
		return blocks.Output{}, nil
	}

	sig := signals.Extract(g.League, g.Moments, s.signalOpts...)

	target := allocate.BlockCount(sig, len(g.Plays))
	if target > n {
		target = n
	}

	splits, path := s.allocate(ctx, g, sig, target)

	bs := blocks.Build(g.League, g.Moments, g.Plays, sig, splits)
	bs, err := roles.Assign(g.League, g.Moments, bs, sig)
	if err != nil {
		metrics.RecordSegmentationError()
		return blocks.Output{}, fmt.Errorf("game %s: role assignment: %w", g.GameID, err)
	}

	s.attachMiniBoxes(ctx, g.GameID, bs)

	out := blocks.Output{
		Blocks:       bs,
		BlockCount:   len(bs),
		TotalMoments: n,
		LeadChanges:  sig.LeadChanges,
		LargestRun:   sig.LargestRun,
	}

	if err := guardrails.Check(out); err != nil {
		s.log().Error(ctx, "segmentation output failed verification",
			logger.String("game_id", g.GameID),
			logger.String("path", path),
			logger.Int("blocks", out.BlockCount),
			logger.Int("moments", out.TotalMoments),
			logger.Error(err),
		)
		metrics.RecordGuardrailViolation()
		metrics.RecordSegmentationError()
		return out, fmt.Errorf("game %s: %w: %w", g.GameID, ErrGuardrail, err)
	}

	metrics.RecordGameSegmented(path)
	metrics.RecordBlocksPerGame(out.BlockCount)
	metrics.RecordSegmentationLatency(float64(time.Since(start).Microseconds()) / 1000.0)

	s.log().Debug(ctx, "game segmented",
		logger.String("game_id", g.GameID),
		logger.String("path", path),
		logger.Int("blocks", out.BlockCount),
		logger.Int("lead_changes", out.LeadChanges),
	)

	return out, nil
}

// allocate picks the split strategy for the game and returns the chosen
// splits along with the metrics path label.
func (s *Service) allocate(ctx context.Context, g game.Game, sig signals.Signals, target int) ([]int, string) {
	n := len(g.Moments)

	if sig.Blowout && sig.LeadChanges <= 1 && n >= 3 {
		return allocate.ThreeBlockSplits(g.Moments, sig.DecisiveIndex, sig.GarbageTimeIndex), pathThreeBlock
	}
	if sig.Blowout {
		return allocate.CompressBlowoutBlocks(g.Moments, sig.DecisiveIndex, sig.GarbageTimeIndex), pathBlowout
	}
	if len(g.QuarterWeights) > 0 {
		splits, err := allocate.WeightedSplitPoints(g.League, g.Moments, g.QuarterWeights, target)
		if err != nil {
			// Best-effort splits are still usable; the shortfall is a
			// correctness defect that must be visible in logs and metrics.
			s.log().Error(ctx, "weighted allocation shortfall",
				logger.String("game_id", g.GameID),
				logger.Int("target_blocks", target),
				logger.Int("splits", len(splits)),
				logger.Error(err),
			)
			metrics.RecordAllocationShortfall()
		}
		return splits, pathWeighted
	}
	return allocate.SplitPoints(g.Moments, sig, target), pathUnweighted
}

// attachMiniBoxes fills Block.MiniBox for each block. Failures degrade to a
// block without a summary; segmentation itself is unaffected.
func (s *Service) attachMiniBoxes(ctx context.Context, gameID string, bs []blocks.Block) {
	if s.boxScorer == nil {
		return
	}
	var prev []int
	for i := range bs {
		box, err := s.boxScorer.MiniBox(ctx, gameID, bs[i].PlayIDs, prev)
		if err != nil {
			s.log().Warn(ctx, "mini box generation failed",
				logger.String("game_id", gameID),
				logger.Int("block", bs[i].Index),
				logger.Error(err),
			)
		} else {
			bs[i].MiniBox = box
		}
		prev = bs[i].PlayIDs
	}
}
