// Package allocate decides how many narrative blocks a game gets and where,
// in moment-index space, the sequence is cut. It owns the unweighted,
// drama-weighted, and blowout-compression split strategies.
//
// All paths are deterministic: identical input always yields identical
// splits. Tie-breaks are fixed (lowest index first for equal-priority
// candidates, later period first for allocation deficits).
package allocate

import (
	"fmt"
	"sort"

	"github.com/okian/storyarc/internal/domain/game"
	"github.com/okian/storyarc/internal/domain/signals"
)

// Block-count policy constants.
const (
	// MinBlocks and MaxBlocks bound every non-blowout partition.
	MinBlocks = 4
	MaxBlocks = 7

	// BlowoutMaxSplits caps the compression path before the caller applies
	// the three-block override.
	BlowoutMaxSplits = 4

	// leadChangeBumpOne and leadChangeBumpTwo are the lead-change counts at
	// which the block budget grows by one.
	leadChangeBumpOne = 3
	leadChangeBumpTwo = 6

	// longGamePlayCount grants one extra block to unusually long games.
	longGamePlayCount = 400

	// setupZoneDivisor: the first 1/5 of moments must end with a split.
	// resolutionZoneDivisor mirrors it at the tail.
	setupZoneDivisor      = 5
	resolutionZoneDivisor = 5

	// blowoutSetupDivisor sizes the setup window on the compression path.
	blowoutSetupDivisor = 6

	// minIntraPeriodSpacing rejects weighted split placements closer than
	// this many moments to an existing split.
	minIntraPeriodSpacing = 2
)

// backfillRatios are the in-period positions tried, in order, when the
// weighted path comes up short of splits.
var backfillRatios = []float64{0.5, 0.33, 0.67, 0.25, 0.75}

// ErrAllocationShortfall reports that the weighted path could not produce
// enough splits even after backfill. The returned split set is still the
// best effort and remains usable; callers must surface the defect loudly.
var ErrAllocationShortfall = fmt.Errorf("weighted allocation shortfall")

// BlockCount decides the target number of blocks for a game.
//
// Base is MinBlocks. A sustained blowout with at most one lead change pins
// the count to MinBlocks (the separate three-block override is the caller's
// call, keyed on the same flag). Otherwise lead changes and game length bump
// the budget, capped at MaxBlocks.
func BlockCount(sig signals.Signals, totalPlays int) int {
	count := MinBlocks

	if sig.Blowout && sig.LeadChanges <= 1 {
		return MinBlocks
	}

	if sig.LeadChanges >= leadChangeBumpOne {
		count++
	}
	if sig.LeadChanges >= leadChangeBumpTwo {
		count++
	}
	if totalPlays > longGamePlayCount {
		count++
	}

	if count > MaxBlocks {
		count = MaxBlocks
	}
	return count
}

// splitCandidate is a potential cut with a selection priority; lower
// priority values win.
type splitCandidate struct {
	index    int
	priority int
}

// Candidate priorities.
const (
	priorityLeadChange  = 1
	priorityRunBoundary = 2
	priorityPeriodStart = 3
)

// SplitPoints is the unweighted allocation path. Candidates are ranked by
// drama priority (lead changes, then scoring-run boundaries, then period
// boundaries); the setup and resolution zones are each guaranteed a cut,
// remaining cuts are filled from the candidate list under a minimum-spacing
// rule, and evenly spaced splits back the whole thing up.
func SplitPoints(moments []game.Moment, sig signals.Signals, targetBlocks int) []int {
	n := len(moments)
	needed := targetBlocks - 1
	if n < 2 || needed < 1 {
		return nil
	}

	candidates := gatherCandidates(sig)

	// Equal-priority candidates resolve lowest index first: the candidate
	// order, and therefore the output, is fully deterministic.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].priority != candidates[j].priority {
			return candidates[i].priority < candidates[j].priority
		}
		return candidates[i].index < candidates[j].index
	})

	minSpacing := n / (targetBlocks + 1)
	if minSpacing < 1 {
		minSpacing = 1
	}

	chosen := make([]int, 0, needed)

	// Guarantee a cut closing the setup zone and one opening the
	// resolution zone.
	setupEnd := n / setupZoneDivisor
	if setupEnd < 1 {
		setupEnd = 1
	}
	resolutionStart := n - n/resolutionZoneDivisor
	if resolutionStart <= setupEnd {
		resolutionStart = setupEnd + 1
	}

	if idx, ok := bestCandidateInZone(candidates, 1, setupEnd); ok {
		chosen = append(chosen, idx)
	} else {
		chosen = append(chosen, setupEnd)
	}
	if len(chosen) < needed && resolutionStart < n {
		if idx, ok := bestCandidateInZone(candidates, resolutionStart, n-1); ok {
			chosen = appendIfSpaced(chosen, idx, 1)
		} else {
			chosen = appendIfSpaced(chosen, resolutionStart, 1)
		}
	}

	for _, c := range candidates {
		if len(chosen) >= needed {
			break
		}
		if c.index < 1 || c.index >= n {
			continue
		}
		chosen = appendIfSpaced(chosen, c.index, minSpacing)
	}

	// Candidates exhausted: fall back to evenly spaced splits.
	for i := 1; len(chosen) < needed && i <= targetBlocks; i++ {
		even := i * n / targetBlocks
		if even < 1 || even >= n {
			continue
		}
		chosen = appendIfSpaced(chosen, even, 1)
	}

	sort.Ints(chosen)
	return chosen
}

func gatherCandidates(sig signals.Signals) []splitCandidate {
	candidates := make([]splitCandidate, 0,
		len(sig.LeadChangeIndices)+2*len(sig.Runs)+len(sig.PeriodBoundaries))

	for _, idx := range sig.LeadChangeIndices {
		candidates = append(candidates, splitCandidate{index: idx, priority: priorityLeadChange})
	}
	for _, r := range sig.Runs {
		candidates = append(candidates, splitCandidate{index: r.Start, priority: priorityRunBoundary})
		candidates = append(candidates, splitCandidate{index: r.End + 1, priority: priorityRunBoundary})
	}
	for _, idx := range sig.PeriodBoundaries {
		candidates = append(candidates, splitCandidate{index: idx, priority: priorityPeriodStart})
	}

	return candidates
}

// bestCandidateInZone returns the highest-priority candidate with
// lo <= index <= hi. Candidates must already be sorted.
func bestCandidateInZone(candidates []splitCandidate, lo, hi int) (int, bool) {
	for _, c := range candidates {
		if c.index >= lo && c.index <= hi {
			return c.index, true
		}
	}
	return 0, false
}

func appendIfSpaced(chosen []int, idx, minSpacing int) []int {
	for _, existing := range chosen {
		d := idx - existing
		if d < 0 {
			d = -d
		}
		if d < minSpacing {
			return chosen
		}
	}
	return append(chosen, idx)
}

// CompressBlowoutBlocks places splits for a game decided long before the
// final horn: a short setup window, the decisive moment, and the
// garbage-time onset (or a bisection of the remainder when there is none).
// Evenly spaced splits back-fill up to MinBlocks-1 and the total is capped
// at BlowoutMaxSplits.
func CompressBlowoutBlocks(moments []game.Moment, decisiveIndex, garbageIndex int) []int {
	n := len(moments)
	if n < 2 {
		return nil
	}

	setupEnd := n / blowoutSetupDivisor
	if setupEnd < 1 {
		setupEnd = 1
	}
	if decisiveIndex >= 1 && setupEnd > decisiveIndex {
		setupEnd = decisiveIndex
	}

	// Addition order doubles as priority for the final cap.
	splits := []int{setupEnd}
	if decisiveIndex > setupEnd && decisiveIndex < n {
		splits = appendIfSpaced(splits, decisiveIndex, 1)
	}
	last := splits[len(splits)-1]
	if garbageIndex > last && garbageIndex < n {
		splits = appendIfSpaced(splits, garbageIndex, 1)
	} else if mid := (last + n) / 2; mid > last && mid < n {
		splits = appendIfSpaced(splits, mid, 1)
	}

	for i := 1; len(splits) < MinBlocks-1 && i < MinBlocks; i++ {
		even := i * n / MinBlocks
		if even < 1 || even >= n {
			continue
		}
		splits = appendIfSpaced(splits, even, 1)
	}

	if len(splits) > BlowoutMaxSplits {
		splits = splits[:BlowoutMaxSplits]
	}

	sort.Ints(splits)
	return splits
}

// ThreeBlockSplits reduces a severe blowout to the fixed three-block arc:
// setup window, decided stretch, aftermath. The closing cut is the
// garbage-time onset when present, otherwise the decisive moment, otherwise
// a bisection.
func ThreeBlockSplits(moments []game.Moment, decisiveIndex, garbageIndex int) []int {
	n := len(moments)
	if n < 3 {
		return nil
	}

	setupEnd := n / blowoutSetupDivisor
	if setupEnd < 1 {
		setupEnd = 1
	}
	if decisiveIndex >= 1 && setupEnd > decisiveIndex {
		setupEnd = decisiveIndex
	}

	closing := garbageIndex
	if closing <= setupEnd || closing >= n {
		closing = decisiveIndex
	}
	if closing <= setupEnd || closing >= n {
		closing = (setupEnd + n) / 2
	}
	if closing <= setupEnd {
		closing = setupEnd + 1
	}
	if closing >= n {
		// degenerate tail; shrink the setup window instead
		closing = n - 1
		if setupEnd >= closing {
			setupEnd = closing - 1
		}
	}

	return []int{setupEnd, closing}
}
