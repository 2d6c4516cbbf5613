package blocks

import (
	"sort"

	"github.com/okian/storyarc/internal/domain/game"
	"github.com/okian/storyarc/internal/domain/signals"
)

// Key-play ranking policy constants.
const (
	// MaxKeyPlays bounds the key-play selection per block; at least one
	// play is always selected via the final-play fallback.
	MaxKeyPlays = 1 + 2

	leadChangeBonus = 100
	scoringBonus    = 5
	narratedBonus   = 20
	lateGameBonus   = 15
	runEndBonus     = 25

	// deEmphasisMargin halves a play's score once the game is out of
	// reach: padding a 20-point lead is not a story beat.
	deEmphasisMargin = 15
)

// Build brackets the moment sequence with 0 and len(moments) and turns
// consecutive split points into half-open block ranges. Each block carries
// its boundary periods and scores, the ordered union of its moments' play
// ids, and a key-play selection. Roles are left unassigned.
func Build(league game.League, moments []game.Moment, plays []game.PlayEvent, sig signals.Signals, splits []int) []Block {
	n := len(moments)
	if n == 0 {
		return nil
	}

	bounds := make([]int, 0, len(splits)+2)
	bounds = append(bounds, 0)
	for _, s := range splits {
		if s > bounds[len(bounds)-1] && s < n {
			bounds = append(bounds, s)
		}
	}
	bounds = append(bounds, n)

	ranker := newKeyPlayRanker(league, moments, plays, sig)

	out := make([]Block, 0, len(bounds)-1)
	for i := 1; i < len(bounds); i++ {
		start, end := bounds[i-1], bounds[i]
		first, last := moments[start], moments[end-1]

		var playIDs []int
		for _, m := range moments[start:end] {
			playIDs = append(playIDs, m.PlayIDs...)
		}

		b := Block{
			Index:       i - 1,
			Role:        RoleUnassigned,
			MomentStart: start,
			MomentEnd:   end,
			PeriodStart: first.Period,
			PeriodEnd:   last.Period,
			ScoreBefore: first.ScoreBefore,
			ScoreAfter:  last.ScoreAfter,
			PlayIDs:     playIDs,
		}
		b.KeyPlayIDs = ranker.selectKeyPlays(b)
		out = append(out, b)
	}

	return out
}

// keyPlayRanker precomputes per-play facts shared by every block's
// selection: lead-change plays, run-ending plays, narrated plays, and the
// running margin at each play.
type keyPlayRanker struct {
	league   game.League
	events   map[int]game.PlayEvent
	leads    map[int]bool
	runEnds  map[int]bool
	narrated map[int]bool
}

func newKeyPlayRanker(league game.League, moments []game.Moment, plays []game.PlayEvent, sig signals.Signals) *keyPlayRanker {
	r := &keyPlayRanker{
		league:   league,
		events:   make(map[int]game.PlayEvent, len(plays)),
		leads:    make(map[int]bool),
		runEnds:  make(map[int]bool),
		narrated: make(map[int]bool),
	}

	lastSign := 0
	for _, p := range plays {
		r.events[p.ID] = p
		sign := signOf(p.Score.Diff())
		if sign != 0 {
			if lastSign != 0 && sign != lastSign {
				r.leads[p.ID] = true
			}
			lastSign = sign
		}
	}

	for _, m := range moments {
		for _, id := range m.NarratedPlayIDs {
			r.narrated[id] = true
		}
	}

	// The run-ending bonus goes to the last scoring play inside the run's
	// final moment, falling back to the moment's final play when the pbp
	// record does not cover it.
	for _, run := range sig.Runs {
		if run.End >= len(moments) {
			continue
		}
		ids := moments[run.End].PlayIDs
		if len(ids) == 0 {
			continue
		}
		chosen := ids[len(ids)-1]
		for i := len(ids) - 1; i >= 0; i-- {
			if p, ok := r.events[ids[i]]; ok && p.Type.Scoring() {
				chosen = ids[i]
				break
			}
		}
		r.runEnds[chosen] = true
	}

	return r
}

// selectKeyPlays ranks every play in the block's union and returns the top
// 1-3, ties broken by original play order. If nothing scores above zero the
// block's final play stands in, so the selection is never empty.
func (r *keyPlayRanker) selectKeyPlays(b Block) []int {
	if len(b.PlayIDs) == 0 {
		return nil
	}

	type ranked struct {
		id    int
		score int
	}
	scored := make([]ranked, 0, len(b.PlayIDs))
	for _, id := range b.PlayIDs {
		scored = append(scored, ranked{id: id, score: r.score(id)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	var keys []int
	for _, s := range scored {
		if s.score <= 0 || len(keys) == MaxKeyPlays {
			break
		}
		keys = append(keys, s.id)
	}
	if len(keys) == 0 {
		keys = append(keys, b.PlayIDs[len(b.PlayIDs)-1])
	}
	return keys
}

func (r *keyPlayRanker) score(id int) int {
	score := 0
	if r.leads[id] {
		score += leadChangeBonus
	}
	if r.narrated[id] {
		score += narratedBonus
	}
	if r.runEnds[id] {
		score += runEndBonus
	}

	p, known := r.events[id]
	if known {
		if p.Type.Scoring() {
			score += scoringBonus
		}
		if r.league.LatePeriod(p.Period) {
			score += lateGameBonus
		}
		if p.Score.Margin() > deEmphasisMargin {
			score /= 2
		}
	}
	return score
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
