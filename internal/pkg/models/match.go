package models

import "time"

// Team is one side of a fixture.
type Team struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Crest string `json:"crest,omitempty"`
}

// Match represents a scheduled fixture as served by /api/matches
type Match struct {
	ID          int64     `json:"id"`
	UTCDate     time.Time `json:"utcDate"`
	HomeTeam    Team      `json:"homeTeam"`
	AwayTeam    Team      `json:"awayTeam"`
	Competition string    `json:"competition,omitempty"`
}

// Name returns the "Home vs Away" label used by the predict endpoint.
func (m Match) Name() string {
	return m.HomeTeam.Name + " vs " + m.AwayTeam.Name
}
