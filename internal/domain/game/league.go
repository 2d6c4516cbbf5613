package game

import "strconv"

// League identifies the sport/competition a game belongs to. It is a closed
// set: every switch over League must enumerate all variants so adding a
// league is a compile-time-visible change.
type League string

// Supported leagues.
const (
	LeagueNBA   League = "nba"
	LeagueNCAAB League = "ncaab"
	LeagueNHL   League = "nhl"
)

// RegulationPeriods returns the number of regulation periods for the league.
// Periods beyond this count are overtime.
func (l League) RegulationPeriods() int {
	switch l {
	case LeagueNBA:
		return 4
	case LeagueNCAAB:
		return 2
	case LeagueNHL:
		return 3
	default:
		return 4
	}
}

// PeriodLabel maps a 1-based period number to its display label, e.g. "Q3",
// "H1", "P2", or "OT1" for the first extra period. Labels are the keys of
// the externally supplied quarter-weight map.
func (l League) PeriodLabel(period int) string {
	reg := l.RegulationPeriods()
	if period > reg {
		return "OT" + strconv.Itoa(period-reg)
	}
	switch l {
	case LeagueNBA:
		return "Q" + strconv.Itoa(period)
	case LeagueNCAAB:
		return "H" + strconv.Itoa(period)
	case LeagueNHL:
		return "P" + strconv.Itoa(period)
	default:
		return "Q" + strconv.Itoa(period)
	}
}

// LatePeriod reports whether a period counts as late game for the league:
// the final regulation period or any overtime.
func (l League) LatePeriod(period int) bool {
	return period >= l.RegulationPeriods()
}

// SecondHalfPeriod reports whether a period falls in the second half of
// regulation (or later). Garbage-time detection only arms from here on.
func (l League) SecondHalfPeriod(period int) bool {
	switch l {
	case LeagueNBA:
		return period >= 3
	case LeagueNCAAB:
		return period >= 2
	case LeagueNHL:
		return period >= 3
	default:
		return period >= 3
	}
}

// Valid reports whether the league is one of the supported variants.
func (l League) Valid() bool {
	switch l {
	case LeagueNBA, LeagueNCAAB, LeagueNHL:
		return true
	default:
		return false
	}
}
