package validation

import (
	"fmt"
	"math"

	"github.com/Vodeneev/matchpredict/internal/pkg/models"
)

// Validator checks data before it is served
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateMatch checks that a match can be listed and predicted.
func (v *Validator) ValidateMatch(match *models.Match) error {
	if match == nil {
		return fmt.Errorf("match cannot be nil")
	}

	if match.ID <= 0 {
		return fmt.Errorf("match ID must be positive: %d", match.ID)
	}

	if match.HomeTeam.Name == "" {
		return fmt.Errorf("home team cannot be empty")
	}

	if match.AwayTeam.Name == "" {
		return fmt.Errorf("away team cannot be empty")
	}

	if match.UTCDate.IsZero() {
		return fmt.Errorf("match %d has no kickoff time", match.ID)
	}

	return nil
}

// ValidatePrediction checks that each probability is a finite percentage in [0, 100].
func (v *Validator) ValidatePrediction(p models.Prediction) error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"home_win", p.HomeWin},
		{"draw", p.Draw},
		{"away_win", p.AwayWin},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s is not a number", f.name)
		}
		if f.value < 0 || f.value > 100 {
			return fmt.Errorf("%s out of range: %v", f.name, f.value)
		}
	}
	return nil
}
