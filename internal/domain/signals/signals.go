// Package signals extracts drama signals from a game's moment sequence:
// lead changes, scoring runs, period boundaries, blowout onset, and
// garbage-time onset. Every function is a pure, single-pass scan; signals
// are recomputed per invocation and never cached.
package signals

import "github.com/okian/storyarc/internal/domain/game"

// Narrative-policy thresholds. These encode product-level policy and are
// deliberately named constants rather than configuration keys; tests
// override them through options.
const (
	// DefaultMinRunSize is the minimum unanswered points for a stretch to
	// count as a scoring run.
	DefaultMinRunSize = 8

	// DefaultBlowoutMargin is the margin that starts the blowout tracking
	// window.
	DefaultBlowoutMargin = 15

	// DefaultBlowoutSustainPeriods is how many additional periods the
	// margin must hold before a blowout is declared.
	DefaultBlowoutSustainPeriods = 1

	// DefaultGarbageTimeMargin is the margin that, in the second half of
	// regulation, marks garbage time. Tuned independently of the blowout
	// margin.
	DefaultGarbageTimeMargin = 25
)

// Side identifies which team a run belongs to.
type Side int

// Side variants.
const (
	SideHome Side = iota
	SideAway
)

// String returns the side name.
func (s Side) String() string {
	switch s {
	case SideHome:
		return "home"
	case SideAway:
		return "away"
	default:
		return "unknown"
	}
}

// Run is a maximal stretch of unanswered scoring by one side.
// Start and End are inclusive moment indices.
type Run struct {
	Start  int
	End    int
	Points int
	Side   Side
}

// Signals is the derived, ephemeral drama profile of one game.
type Signals struct {
	LeadChangeIndices []int
	LeadChanges       int
	Runs              []Run
	LargestRun        int
	PeriodBoundaries  []int

	Blowout       bool
	DecisiveIndex int // moment index where the blowout margin was first reached; -1 if none
	PeakMargin    int

	GarbageTimeIndex int // -1 if none
}

// Option applies a configuration option to the extractor.
type Option func(*extractor)

// WithMinRunSize overrides the scoring-run threshold.
func WithMinRunSize(n int) Option {
	return func(e *extractor) {
		if n > 0 {
			e.minRunSize = n
		}
	}
}

// WithBlowoutMargin overrides the blowout margin threshold.
func WithBlowoutMargin(margin int) Option {
	return func(e *extractor) {
		if margin > 0 {
			e.blowoutMargin = margin
		}
	}
}

// WithGarbageTimeMargin overrides the garbage-time margin threshold.
func WithGarbageTimeMargin(margin int) Option {
	return func(e *extractor) {
		if margin > 0 {
			e.garbageMargin = margin
		}
	}
}

type extractor struct {
	minRunSize     int
	blowoutMargin  int
	sustainPeriods int
	garbageMargin  int
}

func newExtractor(opts ...Option) *extractor {
	e := &extractor{
		minRunSize:     DefaultMinRunSize,
		blowoutMargin:  DefaultBlowoutMargin,
		sustainPeriods: DefaultBlowoutSustainPeriods,
		garbageMargin:  DefaultGarbageTimeMargin,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract scans the moment sequence once per signal family and returns the
// full drama profile.
func Extract(league game.League, moments []game.Moment, opts ...Option) Signals {
	e := newExtractor(opts...)

	sig := Signals{
		DecisiveIndex:    -1,
		GarbageTimeIndex: -1,
	}
	if len(moments) == 0 {
		return sig
	}

	sig.LeadChangeIndices = FindLeadChangeIndices(moments)
	sig.LeadChanges = len(sig.LeadChangeIndices)
	sig.Runs = FindScoringRuns(moments, e.minRunSize)
	for _, r := range sig.Runs {
		if r.Points > sig.LargestRun {
			sig.LargestRun = r.Points
		}
	}
	sig.PeriodBoundaries = FindPeriodBoundaries(moments)
	sig.Blowout, sig.DecisiveIndex, sig.PeakMargin = detectBlowout(moments, e.blowoutMargin, e.sustainPeriods)
	sig.GarbageTimeIndex = findGarbageTimeStart(league, moments, e.garbageMargin)

	return sig
}

// CountLeadChanges returns the number of lead changes in the sequence.
func CountLeadChanges(moments []game.Moment) int {
	return len(FindLeadChangeIndices(moments))
}

// FindLeadChangeIndices returns the indices of moments after which the
// leading team differs from the previous non-tied leader. Ties never count
// as a change; a change is recorded only between two non-tied leaders of
// opposite sign.
func FindLeadChangeIndices(moments []game.Moment) []int {
	var indices []int
	lastSign := 0
	for i, m := range moments {
		sign := signOf(m.ScoreAfter.Diff())
		if sign == 0 {
			continue
		}
		if lastSign != 0 && sign != lastSign {
			indices = append(indices, i)
		}
		lastSign = sign
	}
	return indices
}

// FindScoringRuns walks per-moment score deltas and emits every maximal
// stretch of unanswered scoring totaling at least minRunSize points.
//
// A moment credits a side only when that side's delta is positive and the
// opponent's delta is zero. A moment where both sides score breaks any open
// run without crediting either side; a scoreless moment leaves the open run
// intact, since nothing was answered.
func FindScoringRuns(moments []game.Moment, minRunSize int) []Run {
	if minRunSize <= 0 {
		minRunSize = DefaultMinRunSize
	}

	var runs []Run
	open := false
	var cur Run

	closeRun := func() {
		if open && cur.Points >= minRunSize {
			runs = append(runs, cur)
		}
		open = false
	}

	for i, m := range moments {
		hd, ad := m.HomeDelta(), m.AwayDelta()
		switch {
		case hd > 0 && ad > 0:
			closeRun()
		case hd == 0 && ad == 0:
			// scoreless moment keeps the run open
		case hd > 0:
			if open && cur.Side == SideHome {
				cur.End = i
				cur.Points += hd
			} else {
				closeRun()
				cur = Run{Start: i, End: i, Points: hd, Side: SideHome}
				open = true
			}
		default:
			if open && cur.Side == SideAway {
				cur.End = i
				cur.Points += ad
			} else {
				closeRun()
				cur = Run{Start: i, End: i, Points: ad, Side: SideAway}
				open = true
			}
		}
	}
	closeRun()

	return runs
}

// FindPeriodBoundaries returns the indices where the period differs from
// the previous moment's period.
func FindPeriodBoundaries(moments []game.Moment) []int {
	var boundaries []int
	for i := 1; i < len(moments); i++ {
		if moments[i].Period != moments[i-1].Period {
			boundaries = append(boundaries, i)
		}
	}
	return boundaries
}

// DetectBlowout reports whether the game became a sustained blowout, the
// moment index at which the margin was first reached (-1 if never), and the
// peak margin observed anywhere in the game.
func DetectBlowout(moments []game.Moment, opts ...Option) (blowout bool, decisiveIndex, peakMargin int) {
	e := newExtractor(opts...)
	return detectBlowout(moments, e.blowoutMargin, e.sustainPeriods)
}

func detectBlowout(moments []game.Moment, margin, sustainPeriods int) (bool, int, int) {
	blowout := false
	decisive := -1
	peak := 0

	tracking := false
	reachedIndex := 0
	reachedPeriod := 0

	for i, m := range moments {
		cur := m.ScoreAfter.Margin()
		if cur > peak {
			peak = cur
		}

		if cur < margin {
			// margin collapsed; the tracking window resets
			if !blowout {
				tracking = false
			}
			continue
		}

		if !tracking {
			tracking = true
			reachedIndex = i
			reachedPeriod = m.Period
		}
		if !blowout && m.Period >= reachedPeriod+sustainPeriods {
			blowout = true
			decisive = reachedIndex
		}
	}

	if !blowout {
		decisive = -1
	}
	return blowout, decisive, peak
}

// FindGarbageTimeStart returns the first index where the margin reaches the
// garbage-time threshold in the second half of regulation, or -1.
func FindGarbageTimeStart(league game.League, moments []game.Moment, opts ...Option) int {
	e := newExtractor(opts...)
	return findGarbageTimeStart(league, moments, e.garbageMargin)
}

func findGarbageTimeStart(league game.League, moments []game.Moment, margin int) int {
	for i, m := range moments {
		if m.ScoreAfter.Margin() >= margin && league.SecondHalfPeriod(m.Period) {
			return i
		}
	}
	return -1
}

func signOf(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
