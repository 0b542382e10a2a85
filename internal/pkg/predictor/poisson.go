package predictor

import (
	"math"

	"github.com/Vodeneev/matchpredict/internal/pkg/models"
)

const (
	// maxGoals bounds the score matrix (0..maxGoals-1 goals per side)
	maxGoals = 10
	// homeAdvantage scales the home side's expected goals
	homeAdvantage = 1.10
	awayPenalty   = 0.95
)

// poissonResult holds the outcome of the score-matrix estimate
type poissonResult struct {
	HomeExpectedGoals  float64
	AwayExpectedGoals  float64
	HomeWin            float64 // 0..1
	Draw               float64
	AwayWin            float64
	PredictedHomeGoals int
	PredictedAwayGoals int
}

// formFactor maps points per game (0..3) onto 0.85..1.15.
func formFactor(s models.TeamStats) float64 {
	played := s.Played()
	if played == 0 {
		return 1
	}
	ppg := float64(3*s.Wins+s.Draws) / float64(played)
	return 0.85 + 0.30*ppg/3
}

// expectedGoals blends the attacker's scoring rate with the defender's conceding rate.
func expectedGoals(attacker, defender models.TeamStats, isHome bool) float64 {
	lambda := (attacker.AvgScored + defender.AvgConceded) / 2 * formFactor(attacker)
	if isHome {
		lambda *= homeAdvantage
	} else {
		lambda *= awayPenalty
	}
	if lambda < 0.05 {
		lambda = 0.05
	}
	return lambda
}

// poissonPMF returns P(X = k) for X ~ Poisson(lambda).
func poissonPMF(lambda float64, k int) float64 {
	lg, _ := math.Lgamma(float64(k + 1))
	return math.Exp(float64(k)*math.Log(lambda) - lambda - lg)
}

// estimate builds the independent-Poisson score matrix for the two teams and
// sums its lower triangle, diagonal and upper triangle.
func estimate(home, away models.TeamStats) poissonResult {
	res := poissonResult{
		HomeExpectedGoals: expectedGoals(home, away, true),
		AwayExpectedGoals: expectedGoals(away, home, false),
	}

	homeProbs := make([]float64, maxGoals)
	awayProbs := make([]float64, maxGoals)
	for k := 0; k < maxGoals; k++ {
		homeProbs[k] = poissonPMF(res.HomeExpectedGoals, k)
		awayProbs[k] = poissonPMF(res.AwayExpectedGoals, k)
	}

	var total, best float64
	for i := 0; i < maxGoals; i++ {
		for j := 0; j < maxGoals; j++ {
			p := homeProbs[i] * awayProbs[j]
			total += p
			switch {
			case i > j:
				res.HomeWin += p
			case i == j:
				res.Draw += p
			default:
				res.AwayWin += p
			}
			if p > best {
				best = p
				res.PredictedHomeGoals, res.PredictedAwayGoals = i, j
			}
		}
	}

	// Renormalise the truncated matrix
	if total > 0 {
		res.HomeWin /= total
		res.Draw /= total
		res.AwayWin /= total
	}
	return res
}

// wholePercents converts probabilities to integers summing to exactly 100
// (largest remainder).
func wholePercents(probs ...float64) []int {
	out := make([]int, len(probs))
	rem := make([]float64, len(probs))
	sum := 0
	for i, p := range probs {
		v := p * 100
		out[i] = int(math.Floor(v))
		rem[i] = v - float64(out[i])
		sum += out[i]
	}
	for sum < 100 {
		best := 0
		for i := range rem {
			if rem[i] > rem[best] {
				best = i
			}
		}
		out[best]++
		rem[best] = -1
		sum++
	}
	return out
}
