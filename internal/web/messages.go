package web

import "strings"

// Messages is the user-facing text of the page in one locale.
type Messages struct {
	Lang          string
	Title         string
	Heading       string
	Back          string
	Home          string
	Draw          string
	Away          string
	Analysis      string
	FetchFailed   string
	NoMatches     string
	Analyzing     string
	PredictFailed string
}

var catalog = map[string]Messages{
	"ja": {
		Lang:          "ja",
		Title:         "AIサッカー勝敗予想",
		Heading:       "今後の試合",
		Back:          "← 試合一覧に戻る",
		Home:          "ホーム勝利",
		Draw:          "引き分け",
		Away:          "アウェイ勝利",
		Analysis:      "AI分析",
		FetchFailed:   "試合データの取得に失敗しました。サーバーが起動しているか確認してください。",
		NoMatches:     "予定されている試合はありません。",
		Analyzing:     "AIが分析中...",
		PredictFailed: "予測の生成に失敗しました。もう一度お試しください。",
	},
	"en": {
		Lang:          "en",
		Title:         "AI Football Predictions",
		Heading:       "Upcoming matches",
		Back:          "← Back to matches",
		Home:          "Home win",
		Draw:          "Draw",
		Away:          "Away win",
		Analysis:      "AI analysis",
		FetchFailed:   "Failed to fetch match data. Please check that the server is running.",
		NoMatches:     "No matches are scheduled.",
		Analyzing:     "AI is analyzing...",
		PredictFailed: "Failed to generate a prediction. Please try again.",
	},
}

// MessagesFor returns the catalog for locale ("ja", "en", "en-GB", ...).
// Unknown locales fall back to Japanese.
func MessagesFor(locale string) Messages {
	lang := strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if m, ok := catalog[lang]; ok {
		return m
	}
	return catalog["ja"]
}
