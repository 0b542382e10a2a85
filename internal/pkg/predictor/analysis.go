package predictor

import (
	"fmt"
	"log/slog"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// normalizeAnalysis flattens HTML the model sometimes returns into Markdown
// text so the UI can render it as plain text.
func normalizeAnalysis(s string) string {
	s = strings.TrimSpace(s)
	if !looksLikeHTML(s) {
		return s
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		slog.Warn("Failed to convert analysis HTML to Markdown", "error", err)
		return s
	}
	return strings.TrimSpace(md)
}

func looksLikeHTML(s string) bool {
	i := strings.Index(s, "<")
	return i >= 0 && strings.Contains(s[i:], ">") && strings.Contains(s[i:], "</")
}

// statisticalAnalysis writes the text shown with a Poisson estimate.
func statisticalAnalysis(language, home, away string, res poissonResult) string {
	if isJapanese(language) {
		return fmt.Sprintf(
			"統計モデルによる推定です。期待得点は %s %.1f - %.1f %s、最も可能性の高いスコアは %d-%d です。",
			home, res.HomeExpectedGoals, res.AwayExpectedGoals, away,
			res.PredictedHomeGoals, res.PredictedAwayGoals,
		)
	}
	return fmt.Sprintf(
		"Statistical estimate. Expected goals %s %.1f - %.1f %s; most likely score %d-%d.",
		home, res.HomeExpectedGoals, res.AwayExpectedGoals, away,
		res.PredictedHomeGoals, res.PredictedAwayGoals,
	)
}

func isJapanese(language string) bool {
	l := strings.ToLower(strings.TrimSpace(language))
	return l == "japanese" || l == "ja" || l == "日本語"
}
