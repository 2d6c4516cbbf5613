package allocate

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/storyarc/internal/domain/game"
)

// Late-game amplification tables. Drama weights arrive raw from the
// analysis collaborator; the engine biases them toward the stretches that
// decide games before any allocation decision is made.
const (
	nbaOpeningFactor = 0.8
	nbaMidLateFactor = 1.4
	nbaLateFactor    = 1.6

	ncaabOpeningFactor = 0.9
	ncaabClosingFactor = 1.5

	nhlOpeningFactor = 0.85
	nhlMiddleFactor  = 1.2
	nhlLateFactor    = 1.5

	overtimeFactor = 1.8
)

// Amplify returns the league's late-game multiplier for a period.
func Amplify(league game.League, period int) float64 {
	if period > league.RegulationPeriods() {
		return overtimeFactor
	}
	switch league {
	case game.LeagueNBA:
		switch period {
		case 1:
			return nbaOpeningFactor
		case 3:
			return nbaMidLateFactor
		case 4:
			return nbaLateFactor
		default:
			return 1.0
		}
	case game.LeagueNCAAB:
		switch period {
		case 1:
			return ncaabOpeningFactor
		case 2:
			return ncaabClosingFactor
		default:
			return 1.0
		}
	case game.LeagueNHL:
		switch period {
		case 1:
			return nhlOpeningFactor
		case 2:
			return nhlMiddleFactor
		case 3:
			return nhlLateFactor
		default:
			return 1.0
		}
	default:
		return 1.0
	}
}

// periodGroup is one period's slice of the moment sequence plus its
// amplified weight and block allocation.
type periodGroup struct {
	ord    int // order of appearance, 0-based
	period int
	label  string
	first  int // first moment index, inclusive
	last   int // last moment index, inclusive
	weight float64
	alloc  int
}

func (g periodGroup) span() int {
	return g.last + 1 - g.first
}

// weightedSplit tracks which period a cut belongs to so trimming can target
// the least dramatic periods.
type weightedSplit struct {
	index    int
	ord      int
	boundary bool
}

// WeightedSplitPoints is the drama-weighted allocation path.
//
// Moments are grouped by period, the league's late-game amplification is
// applied to the supplied weights, and blocks are allocated per period by
// squared-weight share with the rounding deficit distributed back-loaded:
// when two periods tie for one more block, the later period wins. The
// opening period is capped at one block unless it is itself in the top
// quartile of period weights. Every populated period keeps at least one
// block and the peak period gets at least two when the budget allows.
//
// Returns ErrAllocationShortfall (with the best-effort splits, still
// usable) when the backfill step cannot reach targetBlocks-1 cuts.
func WeightedSplitPoints(league game.League, moments []game.Moment, weights game.QuarterWeights, targetBlocks int) ([]int, error) {
	n := len(moments)
	needed := targetBlocks - 1
	if n < 2 || needed < 1 {
		return nil, nil
	}

	groups := groupByPeriod(league, moments, weights)
	if len(groups) == 1 {
		// single-period input degenerates to even spacing
		return evenSplits(n, targetBlocks), nil
	}

	allocateBlocks(groups, targetBlocks)
	splits := placeSplits(groups, n)
	splits = trimSplits(splits, groups, needed)
	splits, satisfied := backfillSplits(splits, groups, n, needed)

	indices := make([]int, 0, len(splits))
	for _, s := range splits {
		indices = append(indices, s.index)
	}
	sort.Ints(indices)

	if !satisfied {
		return indices, fmt.Errorf("%w: produced %d of %d splits", ErrAllocationShortfall, len(indices), needed)
	}
	return indices, nil
}

func groupByPeriod(league game.League, moments []game.Moment, weights game.QuarterWeights) []*periodGroup {
	var groups []*periodGroup
	for i, m := range moments {
		if len(groups) == 0 || groups[len(groups)-1].period != m.Period {
			label := league.PeriodLabel(m.Period)
			groups = append(groups, &periodGroup{
				ord:    len(groups),
				period: m.Period,
				label:  label,
				first:  i,
				last:   i,
				weight: weights[label] * Amplify(league, m.Period),
			})
			continue
		}
		groups[len(groups)-1].last = i
	}

	// All-zero weights would starve the share computation; treat the game
	// as uniformly dramatic so back-loading still decides the ties.
	total := 0.0
	for _, g := range groups {
		total += g.weight
	}
	if total == 0 {
		for _, g := range groups {
			g.weight = 1.0
		}
	}

	return groups
}

// allocateBlocks distributes targetBlocks across the groups in place.
func allocateBlocks(groups []*periodGroup, targetBlocks int) {
	sumSq := 0.0
	for _, g := range groups {
		sumSq += g.weight * g.weight
	}

	allocated := 0
	for _, g := range groups {
		g.alloc = int(math.Floor(g.weight * g.weight / sumSq * float64(targetBlocks)))
		allocated += g.alloc
	}

	// Back-loaded deficit distribution: descending weight, ties broken in
	// favor of the later period.
	order := byWeightDesc(groups)
	for deficit := targetBlocks - allocated; deficit > 0; {
		for _, g := range order {
			if deficit == 0 {
				break
			}
			g.alloc++
			deficit--
		}
	}

	capOpeningPeriod(groups, order)

	// Every populated period narrates at least once.
	for _, g := range groups {
		if g.alloc < 1 {
			g.alloc = 1
		}
	}

	// The single most dramatic period carries at least two blocks when the
	// budget is big enough, stealing from the least dramatic period that
	// can spare one.
	if targetBlocks >= MinBlocks {
		peak := order[0]
		if peak.alloc < 2 {
			for i := len(order) - 1; i >= 0; i-- {
				donor := order[i]
				if donor != peak && donor.alloc > 1 {
					donor.alloc--
					break
				}
			}
			peak.alloc = 2
		}
	}
}

// capOpeningPeriod enforces the one-block ceiling on the opening period
// unless its amplified weight sits in the top quartile of all period
// weights; capped overflow moves to later periods in descending-weight
// order.
func capOpeningPeriod(groups []*periodGroup, order []*periodGroup) {
	opening := groups[0]
	if opening.alloc <= 1 || topQuartile(groups, opening.weight) {
		return
	}

	overflow := opening.alloc - 1
	opening.alloc = 1
	for overflow > 0 {
		moved := false
		for _, g := range order {
			if overflow == 0 {
				break
			}
			if g == opening {
				continue
			}
			g.alloc++
			overflow--
			moved = true
		}
		if !moved {
			break
		}
	}
}

// byWeightDesc orders groups by weight descending, ties broken by later
// period index first (the back-loaded rule).
func byWeightDesc(groups []*periodGroup) []*periodGroup {
	order := make([]*periodGroup, len(groups))
	copy(order, groups)
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].weight != order[j].weight {
			return order[i].weight > order[j].weight
		}
		return order[i].ord > order[j].ord
	})
	return order
}

// topQuartile reports whether w ranks in the top quartile of period
// weights.
func topQuartile(groups []*periodGroup, w float64) bool {
	weights := make([]float64, len(groups))
	for i, g := range groups {
		weights[i] = g.weight
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(weights)))

	cutoff := (len(weights) + 3) / 4 // ceil(len/4)
	return w >= weights[cutoff-1]
}

// placeSplits lays out each period's cuts: its closing boundary (unless it
// is the last period) and any additional intra-period cuts spread evenly,
// rejecting placements closer than minIntraPeriodSpacing to existing cuts.
func placeSplits(groups []*periodGroup, n int) []weightedSplit {
	var splits []weightedSplit

	spaced := func(idx int) bool {
		if idx < 1 || idx >= n {
			return false
		}
		for _, s := range splits {
			d := idx - s.index
			if d < 0 {
				d = -d
			}
			if d < minIntraPeriodSpacing {
				return false
			}
		}
		return true
	}

	for _, g := range groups {
		if g.ord < len(groups)-1 {
			boundary := g.last + 1
			if spaced(boundary) {
				splits = append(splits, weightedSplit{index: boundary, ord: g.ord, boundary: true})
			}
		}
		span := g.span()
		for j := 1; j < g.alloc; j++ {
			pos := g.first + j*span/g.alloc
			if spaced(pos) {
				splits = append(splits, weightedSplit{index: pos, ord: g.ord})
			}
		}
	}

	return splits
}

// trimSplits removes surplus cuts from the lowest-weight, earliest periods
// first, preferring intra-period cuts over period boundaries.
func trimSplits(splits []weightedSplit, groups []*periodGroup, needed int) []weightedSplit {
	if len(splits) <= needed {
		return splits
	}

	victims := make([]*periodGroup, len(groups))
	copy(victims, groups)
	sort.SliceStable(victims, func(i, j int) bool {
		if victims[i].weight != victims[j].weight {
			return victims[i].weight < victims[j].weight
		}
		return victims[i].ord < victims[j].ord
	})

	for _, v := range victims {
		for _, boundaryPass := range []bool{false, true} {
			for i := len(splits) - 1; i >= 0 && len(splits) > needed; i-- {
				if splits[i].ord == v.ord && splits[i].boundary == boundaryPass {
					splits = append(splits[:i], splits[i+1:]...)
				}
			}
		}
		if len(splits) <= needed {
			return splits
		}
	}
	return splits
}

// backfillSplits adds cuts into the highest-weight, latest periods at fixed
// span ratios until the target is met or every placement is exhausted.
func backfillSplits(splits []weightedSplit, groups []*periodGroup, n, needed int) ([]weightedSplit, bool) {
	if len(splits) >= needed {
		return splits, true
	}

	spaced := func(idx int) bool {
		if idx < 1 || idx >= n {
			return false
		}
		for _, s := range splits {
			d := idx - s.index
			if d < 0 {
				d = -d
			}
			if d < minIntraPeriodSpacing {
				return false
			}
		}
		return true
	}

	order := byWeightDesc(groups)
	for _, ratio := range backfillRatios {
		for _, g := range order {
			if len(splits) >= needed {
				return splits, true
			}
			pos := g.first + int(ratio*float64(g.span()))
			if spaced(pos) {
				splits = append(splits, weightedSplit{index: pos, ord: g.ord})
			}
		}
	}

	return splits, len(splits) >= needed
}

func evenSplits(n, targetBlocks int) []int {
	var splits []int
	for i := 1; i < targetBlocks; i++ {
		idx := i * n / targetBlocks
		if idx >= 1 && idx < n && (len(splits) == 0 || splits[len(splits)-1] != idx) {
			splits = append(splits, idx)
		}
	}
	return splits
}
