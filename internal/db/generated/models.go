package dbgen

import (
	"database/sql"
	"time"
)

type Competition struct {
	ID                     int64     `json:"id"`
	Name                   string    `json:"name"`
	NumberOfTeams          int64     `json:"number_of_teams"`
	MatchesPerTeam         int64     `json:"matches_per_team"`
	SameCountryRestriction bool      `json:"same_country_restriction"`
	HomeAwayBalance        bool      `json:"home_away_balance"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

type Team struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Country     string    `json:"country"`
	Coefficient float64   `json:"coefficient"`
	CreatedAt   time.Time `json:"created_at"`
}

type CompetitionTeam struct {
	CompetitionID int64     `json:"competition_id"`
	TeamID        int64     `json:"team_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type DrawExclusion struct {
	ID            int64     `json:"id"`
	CompetitionID int64     `json:"competition_id"`
	TeamAID       int64     `json:"team_a_id"`
	TeamBID       int64     `json:"team_b_id"`
	Reason        string    `json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
}

type Round struct {
	ID            int64     `json:"id"`
	CompetitionID int64     `json:"competition_id"`
	RoundNumber   int64     `json:"round_number"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type Match struct {
	ID            int64        `json:"id"`
	CompetitionID int64        `json:"competition_id"`
	RoundID       int64        `json:"round_id"`
	HomeTeamID    int64        `json:"home_team_id"`
	AwayTeamID    int64        `json:"away_team_id"`
	MatchDate     sql.NullTime `json:"match_date"`
	Status        string       `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
}

type DrawRequest struct {
	ID            int64        `json:"id"`
	CompetitionID int64        `json:"competition_id"`
	Status        string       `json:"status"`
	Error         string       `json:"error"`
	RoundsCreated int64        `json:"rounds_created"`
	RequestedAt   time.Time    `json:"requested_at"`
	CompletedAt   sql.NullTime `json:"completed_at"`
	ClaimedAt     sql.NullTime `json:"claimed_at"`
}

type DrawAuditLog struct {
	ID            int64     `json:"id"`
	RunID         string    `json:"run_id"`
	CompetitionID int64     `json:"competition_id"`
	Success       bool      `json:"success"`
	Error         string    `json:"error"`
	MatchCount    int64     `json:"match_count"`
	Log           string    `json:"log"`
	CreatedAt     time.Time `json:"created_at"`
}
