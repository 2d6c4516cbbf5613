package testgames

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/okian/storyarc/internal/domain/game"
	"github.com/okian/storyarc/pkg/logger"
)

// Scenario shapes for synthetic games.
const (
	scenarioClose = iota
	scenarioSeesaw
	scenarioBlowout
	scenarioOvertime
	scenarioCount
)

// Generation tuning constants.
const (
	minMomentsPerPeriod    = 12
	momentsPerPeriodJitter = 8
	overtimeMoments        = 5

	nonScoringPlayChance = 6  // 1-in-N moments get a leading non-scoring play
	narratedPlayChance   = 10 // 1-in-N scoring plays arrive pre-narrated
	weightedGameModulus  = 2  // every N-th game carries quarter weights

	trailingScoreBias = 60 // percent chance the trailing team scores (close games)
	blowoutHomeBias   = 85 // percent chance the home team scores (blowouts)

	minQuarterWeight   = 0.1
	quarterWeightRange = 0.4
)

// idNamespace keeps generated game ids stable across runs with the same
// seed.
var idNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

var generatorLeagues = []game.League{game.LeagueNBA, game.LeagueNCAAB, game.LeagueNHL}

// GenerateGames builds the configured number of synthetic games. The same
// seed always yields the same games, ids included.
func GenerateGames(ctx context.Context, config *Config, stats *Stats) []game.Game {
	logger.Get().Info(ctx, "generating synthetic games",
		logger.Int("numGames", config.NumGames),
		logger.Int("seed", int(config.Seed)),
	)

	rng := rand.New(rand.NewSource(config.Seed)) //nolint:gosec // deterministic replay is the point

	games := make([]game.Game, 0, config.NumGames)
	for i := 0; i < config.NumGames; i++ {
		scenario := i % scenarioCount
		league := generatorLeagues[i%len(generatorLeagues)]
		id := uuid.NewSHA1(idNamespace, []byte(fmt.Sprintf("storyarc-game-%d-%d", config.Seed, i))).String()

		g := generateGame(rng, id, league, scenario)
		if i%weightedGameModulus == 0 {
			g.QuarterWeights = generateWeights(rng, league, g.Moments)
		}
		games = append(games, g)
	}

	stats.GamesGenerated = len(games)
	logger.Get().Info(ctx, "generated games successfully", logger.Int("count", len(games)))
	return games
}

// generateGame builds one game according to its scenario shape.
func generateGame(rng *rand.Rand, id string, league game.League, scenario int) game.Game {
	b := &gameBuilder{rng: rng, league: league}

	periods := league.RegulationPeriods()
	perPeriod := minMomentsPerPeriod + rng.Intn(momentsPerPeriodJitter)

	for p := 1; p <= periods; p++ {
		for m := 0; m < perPeriod; m++ {
			lastRegulation := scenario == scenarioOvertime && p == periods && m == perPeriod-1
			if lastRegulation {
				b.addTyingMoment(p)
				continue
			}
			b.addMoment(p, b.pickScoringSide(scenario, m))
		}
	}

	if scenario == scenarioOvertime {
		otWinner := homeSide
		if rng.Intn(2) == 0 {
			otWinner = awaySide
		}
		ot := periods + 1
		for m := 0; m < overtimeMoments; m++ {
			side := otWinner
			if m%2 == 1 {
				side = otherSide(otWinner)
			}
			b.addMoment(ot, side)
		}
		// winner scores last so overtime actually decides the game
		b.addMoment(ot, otWinner)
	}

	return game.Game{GameID: id, League: league, Moments: b.moments, Plays: b.plays}
}

// generateWeights builds a sparse drama-weight map over the periods the
// game actually played.
func generateWeights(rng *rand.Rand, league game.League, moments []game.Moment) game.QuarterWeights {
	weights := make(game.QuarterWeights)
	for _, m := range moments {
		label := league.PeriodLabel(m.Period)
		if _, ok := weights[label]; !ok {
			weights[label] = minQuarterWeight + rng.Float64()*quarterWeightRange
		}
	}
	return weights
}

const (
	homeSide = 0
	awaySide = 1
)

func otherSide(side int) int {
	if side == homeSide {
		return awaySide
	}
	return homeSide
}

// gameBuilder accumulates moments and plays with running scores.
type gameBuilder struct {
	rng    *rand.Rand
	league game.League

	score   game.Score
	nextID  int
	moments []game.Moment
	plays   []game.PlayEvent
}

// pickScoringSide chooses which team scores the next moment.
func (b *gameBuilder) pickScoringSide(scenario, momentInPeriod int) int {
	switch scenario {
	case scenarioSeesaw:
		return momentInPeriod % 2
	case scenarioBlowout:
		if b.rng.Intn(100) < blowoutHomeBias {
			return homeSide
		}
		return awaySide
	default: // close, overtime
		trailing := homeSide
		if b.score.Diff() > 0 {
			trailing = awaySide
		}
		if b.rng.Intn(100) < trailingScoreBias {
			return trailing
		}
		return otherSide(trailing)
	}
}

// addMoment appends one moment in which the given side scores once.
func (b *gameBuilder) addMoment(period, side int) {
	before := b.score
	var playIDs, narrated []int

	if b.rng.Intn(nonScoringPlayChance) == 0 {
		playIDs = append(playIDs, b.addPlay(period, game.PlayOther))
	}

	playType, points := b.scoringPlay()
	if side == homeSide {
		b.score.Home += points
	} else {
		b.score.Away += points
	}
	id := b.addPlay(period, playType)
	playIDs = append(playIDs, id)
	if b.rng.Intn(narratedPlayChance) == 0 {
		narrated = append(narrated, id)
	}

	b.moments = append(b.moments, game.Moment{
		Period:          period,
		ScoreBefore:     before,
		ScoreAfter:      b.score,
		PlayIDs:         playIDs,
		NarratedPlayIDs: narrated,
	})
}

// addTyingMoment appends a moment of free throws (or goals) that levels the
// score so regulation ends tied.
func (b *gameBuilder) addTyingMoment(period int) {
	before := b.score
	var playIDs []int

	for b.score.Diff() != 0 {
		if b.score.Diff() > 0 {
			b.score.Away++
		} else {
			b.score.Home++
		}
		playType := game.PlayFreeThrow
		if b.league == game.LeagueNHL {
			playType = game.PlayGoal
		}
		playIDs = append(playIDs, b.addPlay(period, playType))
	}
	if len(playIDs) == 0 {
		// already tied; keep the moment non-empty
		playIDs = append(playIDs, b.addPlay(period, game.PlayOther))
	}

	b.moments = append(b.moments, game.Moment{
		Period:      period,
		ScoreBefore: before,
		ScoreAfter:  b.score,
		PlayIDs:     playIDs,
	})
}

// scoringPlay picks a scoring play type and its point value for the league.
func (b *gameBuilder) scoringPlay() (game.PlayType, int) {
	if b.league == game.LeagueNHL {
		return game.PlayGoal, 1
	}
	if b.rng.Intn(3) == 0 {
		return game.PlayThreePointer, 3
	}
	return game.PlayFieldGoal, 2
}

// addPlay appends a play carrying the current running score and returns its
// id.
func (b *gameBuilder) addPlay(period int, t game.PlayType) int {
	id := b.nextID
	b.nextID++
	b.plays = append(b.plays, game.PlayEvent{
		ID:     id,
		Period: period,
		Type:   t,
		Score:  b.score,
	})
	return id
}
