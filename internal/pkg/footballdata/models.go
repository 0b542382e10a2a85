package footballdata

import (
	"time"

	"github.com/Vodeneev/matchpredict/internal/pkg/models"
)

// matchesResponse is the body of GET /v4/matches
type matchesResponse struct {
	Matches []apiMatch `json:"matches"`
}

type apiMatch struct {
	ID          int64          `json:"id"`
	UTCDate     time.Time      `json:"utcDate"`
	Status      string         `json:"status"`
	HomeTeam    apiTeam        `json:"homeTeam"`
	AwayTeam    apiTeam        `json:"awayTeam"`
	Competition apiCompetition `json:"competition"`
}

type apiTeam struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	TLA       string `json:"tla"`
	Crest     string `json:"crest"`
}

type apiCompetition struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (t apiTeam) toModel() models.Team {
	return models.Team{
		ID:    t.ID,
		Name:  t.Name,
		Crest: t.Crest,
	}
}

func (m apiMatch) toModel() models.Match {
	return models.Match{
		ID:          m.ID,
		UTCDate:     m.UTCDate,
		HomeTeam:    m.HomeTeam.toModel(),
		AwayTeam:    m.AwayTeam.toModel(),
		Competition: m.Competition.Name,
	}
}

// MockMatches is served when no API key is configured.
func MockMatches() []models.Match {
	return []models.Match{
		{
			ID:       1001,
			UTCDate:  time.Date(2025, 12, 14, 15, 0, 0, 0, time.UTC),
			HomeTeam: models.Team{Name: "Arsenal"},
			AwayTeam: models.Team{Name: "Chelsea"},
		},
		{
			ID:       1002,
			UTCDate:  time.Date(2025, 12, 14, 17, 30, 0, 0, time.UTC),
			HomeTeam: models.Team{Name: "Liverpool"},
			AwayTeam: models.Team{Name: "Man City"},
		},
	}
}
