package signals

import (
	"testing"

	"github.com/okian/storyarc/internal/domain/game"
	"github.com/smartystreets/goconvey/convey"
)

type beat struct {
	home, away int
	period     int
}

// momentsFrom builds a moment sequence from per-moment score deltas.
func momentsFrom(beats []beat) []game.Moment {
	var (
		moments []game.Moment
		score   game.Score
	)
	for _, b := range beats {
		before := score
		score.Home += b.home
		score.Away += b.away
		period := b.period
		if period == 0 {
			period = 1
		}
		moments = append(moments, game.Moment{
			Period:      period,
			ScoreBefore: before,
			ScoreAfter:  score,
		})
	}
	return moments
}

func TestFindLeadChangeIndices(t *testing.T) {
	cases := []struct {
		name  string
		beats []beat
		want  []int
	}{
		{
			name: "no changes",
			beats: []beat{
				{home: 2}, {home: 3}, {away: 2},
			},
			want: nil,
		},
		{
			name: "single flip",
			beats: []beat{
				{home: 2}, {away: 5},
			},
			want: []int{1},
		},
		{
			name: "tie does not count",
			beats: []beat{
				{home: 2}, {away: 2}, {home: 2},
			},
			want: nil,
		},
		{
			name: "flip through a tie",
			beats: []beat{
				{home: 2}, {away: 2}, {away: 3},
			},
			want: []int{2},
		},
		{
			name: "multiple flips",
			beats: []beat{
				{home: 3}, {away: 5}, {home: 4}, {away: 3},
			},
			want: []int{1, 2, 3},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			moments := momentsFrom(tc.beats)
			got := FindLeadChangeIndices(moments)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
			if count := CountLeadChanges(moments); count != len(tc.want) {
				t.Fatalf("CountLeadChanges = %d, want %d", count, len(tc.want))
			}
		})
	}
}

func TestFindScoringRuns(t *testing.T) {
	cases := []struct {
		name  string
		beats []beat
		want  []Run
	}{
		{
			name: "run below threshold ignored",
			beats: []beat{
				{home: 3}, {home: 2}, {away: 2},
			},
			want: nil,
		},
		{
			name: "unanswered run credited",
			beats: []beat{
				{home: 3}, {home: 3}, {home: 2}, {away: 2},
			},
			want: []Run{{Start: 0, End: 2, Points: 8, Side: SideHome}},
		},
		{
			name: "scoreless moment keeps the run alive",
			beats: []beat{
				{home: 4}, {}, {home: 4}, {away: 2},
			},
			want: []Run{{Start: 0, End: 2, Points: 8, Side: SideHome}},
		},
		{
			name: "both-score moment breaks the run without credit",
			beats: []beat{
				{home: 4}, {home: 3, away: 2}, {home: 4},
			},
			want: nil,
		},
		{
			name: "away run",
			beats: []beat{
				{away: 3}, {away: 3}, {away: 3},
			},
			want: []Run{{Start: 0, End: 2, Points: 9, Side: SideAway}},
		},
		{
			name: "opponent score ends one run and may start another",
			beats: []beat{
				{home: 4}, {home: 4}, {away: 3}, {away: 3}, {away: 2},
			},
			want: []Run{
				{Start: 0, End: 1, Points: 8, Side: SideHome},
				{Start: 2, End: 4, Points: 8, Side: SideAway},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FindScoringRuns(momentsFrom(tc.beats), DefaultMinRunSize)
			if len(got) != len(tc.want) {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("run %d: got %+v, want %+v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestFindPeriodBoundaries(t *testing.T) {
	moments := momentsFrom([]beat{
		{home: 2, period: 1}, {away: 2, period: 1},
		{home: 2, period: 2}, {away: 2, period: 2},
		{home: 2, period: 3},
	})
	got := FindPeriodBoundaries(moments)
	want := []int{2, 4}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDetectBlowout(t *testing.T) {
	convey.Convey("Given margin trajectories", t, func() {
		convey.Convey("When the margin holds through an extra period", func() {
			var beats []beat
			for i := 0; i < 10; i++ {
				beats = append(beats, beat{home: 2, period: 1})
			}
			for i := 0; i < 10; i++ {
				beats = append(beats, beat{home: 2, period: 2})
			}

			blowout, decisive, peak := DetectBlowout(momentsFrom(beats))

			convey.Convey("Then it is a blowout anchored at the first crossing", func() {
				convey.So(blowout, convey.ShouldBeTrue)
				// margin reaches 16 after the 8th moment (index 7)
				convey.So(decisive, convey.ShouldEqual, 7)
				convey.So(peak, convey.ShouldEqual, 40)
			})
		})

		convey.Convey("When the margin collapses before the next period", func() {
			beats := []beat{
				{home: 16, period: 1},
				{away: 10, period: 1},
				{home: 2, period: 2},
			}

			blowout, decisive, peak := DetectBlowout(momentsFrom(beats))

			convey.Convey("Then the tracking window resets and no blowout is declared", func() {
				convey.So(blowout, convey.ShouldBeFalse)
				convey.So(decisive, convey.ShouldEqual, -1)
				convey.So(peak, convey.ShouldEqual, 16)
			})
		})

		convey.Convey("When the margin is reached only in the final period", func() {
			beats := []beat{
				{home: 2, period: 4},
				{home: 16, period: 4},
			}

			blowout, _, _ := DetectBlowout(momentsFrom(beats))

			convey.Convey("Then there is no later period to sustain it", func() {
				convey.So(blowout, convey.ShouldBeFalse)
			})
		})
	})
}

func TestFindGarbageTimeStart(t *testing.T) {
	convey.Convey("Given a lopsided game", t, func() {
		beats := []beat{
			{home: 30, period: 1}, // margin 30 but first half
			{home: 2, period: 2},
			{home: 2, period: 3},
		}
		moments := momentsFrom(beats)

		convey.Convey("Then NBA garbage time starts in the second half", func() {
			idx := FindGarbageTimeStart(game.LeagueNBA, moments)
			convey.So(idx, convey.ShouldEqual, 2)
		})

		convey.Convey("Then NCAAB counts its second half from period 2", func() {
			idx := FindGarbageTimeStart(game.LeagueNCAAB, moments)
			convey.So(idx, convey.ShouldEqual, 1)
		})

		convey.Convey("And a close game never reaches it", func() {
			tight := momentsFrom([]beat{{home: 4, period: 4}})
			convey.So(FindGarbageTimeStart(game.LeagueNBA, tight), convey.ShouldEqual, -1)
		})
	})
}

func TestExtract(t *testing.T) {
	convey.Convey("Given a full moment sequence", t, func() {
		beats := []beat{
			{home: 4, period: 1}, {home: 4, period: 1}, // 8-0 run
			{away: 5, period: 1},
			{away: 4, period: 2}, // away takes the lead, 9-0 answer
			{home: 2, period: 2}, // home takes it back
		}
		moments := momentsFrom(beats)

		sig := Extract(game.LeagueNBA, moments)

		convey.Convey("Then every signal family is populated", func() {
			convey.So(sig.LeadChanges, convey.ShouldEqual, 2)
			convey.So(sig.LeadChangeIndices, convey.ShouldResemble, []int{3, 4})
			convey.So(len(sig.Runs), convey.ShouldEqual, 2)
			convey.So(sig.LargestRun, convey.ShouldEqual, 9)
			convey.So(sig.PeriodBoundaries, convey.ShouldResemble, []int{3})
			convey.So(sig.Blowout, convey.ShouldBeFalse)
			convey.So(sig.DecisiveIndex, convey.ShouldEqual, -1)
			convey.So(sig.GarbageTimeIndex, convey.ShouldEqual, -1)
			convey.So(sig.PeakMargin, convey.ShouldEqual, 8)
		})
	})

	convey.Convey("Given an empty sequence", t, func() {
		sig := Extract(game.LeagueNBA, nil)

		convey.Convey("Then the profile is empty with sentinel indices", func() {
			convey.So(sig.LeadChanges, convey.ShouldEqual, 0)
			convey.So(sig.DecisiveIndex, convey.ShouldEqual, -1)
			convey.So(sig.GarbageTimeIndex, convey.ShouldEqual, -1)
		})
	})

	convey.Convey("Given option overrides", t, func() {
		beats := []beat{{home: 3}, {home: 3}}
		sig := Extract(game.LeagueNBA, momentsFrom(beats), WithMinRunSize(5))

		convey.Convey("Then the smaller run threshold applies", func() {
			convey.So(len(sig.Runs), convey.ShouldEqual, 1)
			convey.So(sig.LargestRun, convey.ShouldEqual, 6)
		})
	})
}
