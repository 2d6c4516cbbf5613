// Package roles labels each narrative block with exactly one semantic role
// under the global uniqueness and ordering rules: SETUP opens, RESOLUTION
// closes, the strongest swing becomes MOMENTUM_SHIFT, and no role is used
// more than twice.
//
// Assignment is a pure function from an unassigned block list to a new
// fully-assigned list; the role quota lives in an explicit context value
// owned by the call, never in package state.
package roles

import (
	"fmt"

	"github.com/okian/storyarc/internal/domain/blocks"
	"github.com/okian/storyarc/internal/domain/game"
	"github.com/okian/storyarc/internal/domain/signals"
)

// Momentum-detection policy constants.
const (
	// defaultSwingThreshold / defaultDeficitThreshold qualify a block as a
	// momentum-shift candidate in a normal game.
	defaultSwingThreshold   = 8
	defaultDeficitThreshold = 6

	// closeSwingThreshold / closeDeficitThreshold replace them in a close
	// game, where a five-point burst is the story.
	closeSwingThreshold   = 4
	closeDeficitThreshold = 2

	// closeGameMargin is the margin a game must stay inside, at every
	// block boundary, to count as close.
	closeGameMargin = 7

	// lateGameRankBonus prefers swings that land in the closing period.
	lateGameRankBonus = 100

	// maxUsesPerRole is the global per-role quota.
	maxUsesPerRole = 2
)

// ErrRolesExhausted reports that a block could not be assigned any role
// without breaking the per-role quota. It cannot happen under the block
// count ceiling and exists as a guard against allocator regressions.
var ErrRolesExhausted = fmt.Errorf("all candidate roles exhausted")

// assignment tracks per-role usage for one labeling pass.
type assignment struct {
	counts map[blocks.Role]int
}

func newAssignment() *assignment {
	return &assignment{counts: make(map[blocks.Role]int)}
}

// assign labels the block with the first preferred role whose quota is not
// exhausted.
func (a *assignment) assign(b *blocks.Block, preferred ...blocks.Role) error {
	for _, role := range preferred {
		if a.counts[role] >= maxUsesPerRole {
			continue
		}
		b.Role = role
		a.counts[role]++
		return nil
	}
	return fmt.Errorf("%w: block %d", ErrRolesExhausted, b.Index)
}

// Assign returns a copy of bs with every block labeled.
//
// A three-block input is always the blowout arc [SETUP, DECISION_POINT,
// RESOLUTION]. Otherwise SETUP and RESOLUTION bracket the list, the
// highest-ranked momentum candidate becomes MOMENTUM_SHIFT with the
// following block as its RESPONSE, the second-to-last block defaults to
// DECISION_POINT, and the rest fill with RESPONSE.
func Assign(league game.League, moments []game.Moment, bs []blocks.Block, sig signals.Signals) ([]blocks.Block, error) {
	if len(bs) == 0 {
		return nil, nil
	}

	out := make([]blocks.Block, len(bs))
	copy(out, bs)

	if len(out) == 3 {
		out[0].Role = blocks.RoleSetup
		out[1].Role = blocks.RoleDecisionPoint
		out[2].Role = blocks.RoleResolution
		return out, nil
	}

	swingThreshold := defaultSwingThreshold
	deficitThreshold := defaultDeficitThreshold
	if isCloseGame(out) {
		swingThreshold = closeSwingThreshold
		deficitThreshold = closeDeficitThreshold
	}

	a := newAssignment()
	if err := a.assign(&out[0], blocks.RoleSetup); err != nil {
		return nil, err
	}
	if len(out) > 1 {
		if err := a.assign(&out[len(out)-1], blocks.RoleResolution); err != nil {
			return nil, err
		}
	}

	if best := bestMomentumShift(league, moments, out, sig, swingThreshold, deficitThreshold); best > 0 {
		if err := a.assign(&out[best], blocks.RoleMomentumShift); err != nil {
			return nil, err
		}
		if next := best + 1; next < len(out)-1 && out[next].Role == blocks.RoleUnassigned {
			if err := a.assign(&out[next], blocks.RoleResponse); err != nil {
				return nil, err
			}
		}
	}

	if penultimate := len(out) - 2; penultimate >= 1 && out[penultimate].Role == blocks.RoleUnassigned {
		if err := a.assign(&out[penultimate], blocks.RoleDecisionPoint); err != nil {
			return nil, err
		}
	}

	for i := 1; i < len(out)-1; i++ {
		if out[i].Role != blocks.RoleUnassigned {
			continue
		}
		// Defensive fallback chain; under correct block counts RESPONSE
		// alone covers the remainder.
		if err := a.assign(&out[i], blocks.RoleResponse, blocks.RoleMomentumShift, blocks.RoleDecisionPoint); err != nil {
			return out, err
		}
	}

	return out, nil
}

// isCloseGame reports whether every block boundary stays inside the
// close-game margin. Peak in-block margins are not tracked by construction,
// so the boundaries are the whole signal.
func isCloseGame(bs []blocks.Block) bool {
	for _, b := range bs {
		if b.ScoreBefore.Margin() > closeGameMargin || b.ScoreAfter.Margin() > closeGameMargin {
			return false
		}
	}
	return true
}

// bestMomentumShift returns the index of the highest-ranked interior
// momentum candidate, or 0 when no block qualifies. Rank ties resolve to
// the earliest block.
func bestMomentumShift(league game.League, moments []game.Moment, bs []blocks.Block, sig signals.Signals, swingThreshold, deficitThreshold int) int {
	best, bestRank := 0, 0
	for i := 1; i < len(bs)-1; i++ {
		b := bs[i]

		homeDelta := b.ScoreAfter.Home - b.ScoreBefore.Home
		awayDelta := b.ScoreAfter.Away - b.ScoreBefore.Away
		swing := homeDelta - awayDelta
		if swing < 0 {
			swing = -swing
		}

		deficit := deficitOvercome(moments, b, sig)
		hasLeadChange := deficit >= 0

		if swing < swingThreshold && !(hasLeadChange && deficit >= deficitThreshold) {
			continue
		}

		rank := swing
		if deficit > 0 {
			rank += deficit
		}
		if league.LatePeriod(b.PeriodEnd) {
			rank += lateGameRankBonus
		}
		if best == 0 || rank > bestRank {
			best, bestRank = i, rank
		}
	}
	return best
}

// deficitOvercome returns how far behind the team that took the lead inside
// the block was at the block's start, or -1 when the block contains no lead
// change.
func deficitOvercome(moments []game.Moment, b blocks.Block, sig signals.Signals) int {
	for _, idx := range sig.LeadChangeIndices {
		if !b.Contains(idx) || idx >= len(moments) {
			continue
		}
		leader := moments[idx].ScoreAfter.Diff()
		startDiff := b.ScoreBefore.Diff()
		switch {
		case leader > 0 && startDiff < 0:
			return -startDiff
		case leader < 0 && startDiff > 0:
			return startDiff
		default:
			return 0
		}
	}
	return -1
}
