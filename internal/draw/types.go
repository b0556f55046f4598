// Package draw generates Swiss-system competition schedules: it pairs a fixed
// roster into rounds under exclusion, no-repeat and home/away constraints and
// persists the result as rounds and matches.
package draw

import (
	"strconv"
	"time"
)

const (
	MatchStatusScheduled = "scheduled"
	RoundStatusPending   = "pending"
)

type Team struct {
	ID          int64   `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Country     string  `json:"country,omitempty" yaml:"country,omitempty"`
	Coefficient float64 `json:"coefficient,omitempty" yaml:"coefficient,omitempty"`
}

// Exclusion is an unordered pair of teams that must never meet.
type Exclusion struct {
	TeamA  int64  `json:"teamA" yaml:"team_a"`
	TeamB  int64  `json:"teamB" yaml:"team_b"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

func (x Exclusion) matches(a, b int64) bool {
	return (x.TeamA == a && x.TeamB == b) || (x.TeamA == b && x.TeamB == a)
}

type Config struct {
	CompetitionID          int64       `json:"competitionId" yaml:"competition_id"`
	NumberOfTeams          int         `json:"number_of_teams" yaml:"number_of_teams"`
	MatchesPerTeam         int         `json:"matches_per_team" yaml:"matches_per_team"`
	SameCountryRestriction bool        `json:"same_country_restriction" yaml:"same_country_restriction"`
	HomeAwayBalance        bool        `json:"home_away_balance" yaml:"home_away_balance"`
	Exclusions             []Exclusion `json:"exclusions" yaml:"exclusions"`
}

// Match is a scheduled fixture before persistence. RoundID holds the round
// number rendered as a string.
type Match struct {
	RoundID    string     `json:"round_id" yaml:"round_id"`
	HomeTeamID int64      `json:"home_team_id" yaml:"home_team_id"`
	AwayTeamID int64      `json:"away_team_id" yaml:"away_team_id"`
	MatchDate  *time.Time `json:"match_date" yaml:"match_date"`
	Status     string     `json:"status" yaml:"status"`
}

func newMatch(round int, homeTeamID, awayTeamID int64) Match {
	return Match{
		RoundID:    strconv.Itoa(round),
		HomeTeamID: homeTeamID,
		AwayTeamID: awayTeamID,
		Status:     MatchStatusScheduled,
	}
}

// Involves reports whether the match is between a and b in either order.
func (m Match) Involves(a, b int64) bool {
	return (m.HomeTeamID == a && m.AwayTeamID == b) || (m.HomeTeamID == b && m.AwayTeamID == a)
}

// Result is the terminal output of one draw run. On failure Matches is empty.
type Result struct {
	Success bool     `json:"success" yaml:"success"`
	Matches []Match  `json:"matches" yaml:"matches"`
	Error   string   `json:"error,omitempty" yaml:"error,omitempty"`
	Log     []string `json:"log" yaml:"log"`
	Events  []Event  `json:"events,omitempty" yaml:"-"`
}
