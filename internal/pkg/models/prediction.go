package models

import "time"

// Prediction is a match outcome estimate. The three values are percentages
// and are not guaranteed to sum to 100.
type Prediction struct {
	HomeWin  float64 `json:"home_win"`
	Draw     float64 `json:"draw"`
	AwayWin  float64 `json:"away_win"`
	Analysis string  `json:"analysis"`
}

// Total returns the sum of the three probabilities.
func (p Prediction) Total() float64 {
	return p.HomeWin + p.Draw + p.AwayWin
}

// TeamStats holds the recent form of a team fed into the predictor.
type TeamStats struct {
	Name        string  `json:"name"`
	Wins        int     `json:"wins"`
	Draws       int     `json:"draws"`
	Losses      int     `json:"losses"`
	AvgScored   float64 `json:"avg_scored"`
	AvgConceded float64 `json:"avg_conceded"`
}

// Played returns the number of matches the stats cover.
func (s TeamStats) Played() int {
	return s.Wins + s.Draws + s.Losses
}

// PredictDetails carries the inputs the prediction was made from.
type PredictDetails struct {
	HomeStats TeamStats `json:"home_stats"`
	AwayStats TeamStats `json:"away_stats"`
}

// PredictResponse is the body of GET /api/predict.
type PredictResponse struct {
	Match      string         `json:"match"`
	Prediction Prediction     `json:"prediction"`
	Details    PredictDetails `json:"details"`
}

// PredictionSource tells where a prediction came from.
type PredictionSource string

const (
	SourceLLM         PredictionSource = "llm"
	SourceStatistical PredictionSource = "statistical"
	SourceFailed      PredictionSource = "failed"
)

// PredictionRecord is one served prediction kept in the history store.
type PredictionRecord struct {
	ID         int64            `json:"id"`
	MatchID    int64            `json:"match_id,omitempty"`
	HomeTeam   string           `json:"home_team"`
	AwayTeam   string           `json:"away_team"`
	Prediction Prediction       `json:"prediction"`
	Source     PredictionSource `json:"source"`
	CreatedAt  time.Time        `json:"created_at"`
}
