// Package game contains the domain models consumed by the narrative
// segmentation engine: condensed play-by-play moments, raw play events, and
// the league/period vocabulary shared across stages.
//
// All types here are immutable inputs produced by upstream collaborators;
// the engine never mutates them.
package game

// Score is an ordered (home, away) score pair.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Diff returns home minus away.
func (s Score) Diff() int {
	return s.Home - s.Away
}

// Margin returns the absolute score margin.
func (s Score) Margin() int {
	d := s.Diff()
	if d < 0 {
		return -d
	}
	return d
}

// Moment is one condensed unit of play: a contiguous span of play-by-play
// events treated as a single narrative atom.
type Moment struct {
	// Period is 1-based; values beyond the league's regulation count
	// denote overtime.
	Period int `json:"period"`

	// StartClock and EndClock are display strings, opaque to the engine.
	StartClock string `json:"start_clock"`
	EndClock   string `json:"end_clock"`

	ScoreBefore Score `json:"score_before"`
	ScoreAfter  Score `json:"score_after"`

	// PlayIDs are ordered identifiers into the external play-by-play store.
	PlayIDs []int `json:"play_ids"`

	// NarratedPlayIDs is the subset of PlayIDs already flagged as
	// narratively significant upstream.
	NarratedPlayIDs []int `json:"explicitly_narrated_play_ids"`
}

// HomeDelta returns home points scored during the moment.
func (m Moment) HomeDelta() int {
	return m.ScoreAfter.Home - m.ScoreBefore.Home
}

// AwayDelta returns away points scored during the moment.
func (m Moment) AwayDelta() int {
	return m.ScoreAfter.Away - m.ScoreBefore.Away
}

// PlayType classifies a play event. Closed set; switches over PlayType must
// enumerate all variants.
type PlayType string

// Play type variants.
const (
	PlayFieldGoal    PlayType = "field_goal"
	PlayThreePointer PlayType = "three_pointer"
	PlayFreeThrow    PlayType = "free_throw"
	PlayGoal         PlayType = "goal"
	PlayOther        PlayType = "other"
)

// Scoring reports whether the play type denotes scoring.
func (t PlayType) Scoring() bool {
	switch t {
	case PlayFieldGoal, PlayThreePointer, PlayFreeThrow, PlayGoal:
		return true
	case PlayOther:
		return false
	default:
		return false
	}
}

// PlayEvent is a raw play record from the external play-by-play store,
// carried through for key-play scoring only.
type PlayEvent struct {
	ID          int      `json:"id"`
	Period      int      `json:"period"`
	Clock       string   `json:"clock"`
	Type        PlayType `json:"type"`
	Score       Score    `json:"score"` // running score after the play
	Description string   `json:"description"`
}

// QuarterWeights is the sparse per-period drama-intensity map supplied by
// the upstream drama-analysis collaborator, keyed by period label
// ("Q1", "H2", "OT1", ...). The engine treats it as read-only.
type QuarterWeights map[string]float64

// Game bundles one game's segmentation input.
type Game struct {
	GameID  string
	League  League
	Moments []Moment
	Plays   []PlayEvent

	// QuarterWeights selects the drama-weighted allocation path when
	// non-empty; nil or empty falls back to the unweighted path.
	QuarterWeights QuarterWeights
}
