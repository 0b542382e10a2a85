package predictor

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vodeneev/matchpredict/internal/pkg/config"
	"github.com/Vodeneev/matchpredict/internal/pkg/models"
	"github.com/Vodeneev/matchpredict/internal/pkg/storage"
)

type fakeLLM struct {
	content string
	err     error
	calls   int
	lastReq openai.ChatCompletionRequest
}

func (f *fakeLLM) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.content}},
		},
	}, nil
}

var baseline = models.TeamStats{Wins: 3, Draws: 1, Losses: 1, AvgScored: 1.8, AvgConceded: 0.8}

func newLLMService(llm chatCompleter, cache storage.Cache) *Service {
	s := NewService(&config.PredictionConfig{Model: "gpt-3.5-turbo", Temperature: 0.7, Language: "Japanese"}, cache)
	s.llm = llm
	return s
}

func TestPredict_LLM(t *testing.T) {
	llm := &fakeLLM{content: "Sure!\n```json\n{\"home_win\": 50, \"draw\": 20, \"away_win\": 30, \"analysis\": \"X\"}\n```"}
	s := newLLMService(llm, nil)

	pred, source := s.Predict(context.Background(), "Arsenal", "Chelsea", baseline, baseline)

	assert.Equal(t, models.SourceLLM, source)
	assert.Equal(t, models.Prediction{HomeWin: 50, Draw: 20, AwayWin: 30, Analysis: "X"}, pred)

	require.Len(t, llm.lastReq.Messages, 2)
	assert.Equal(t, "gpt-3.5-turbo", llm.lastReq.Model)
	assert.Contains(t, llm.lastReq.Messages[0].Content, "Japanese")
	assert.Contains(t, llm.lastReq.Messages[1].Content, "Arsenal (Home)")
	assert.Contains(t, llm.lastReq.Messages[1].Content, "Chelsea (Away)")
	assert.Contains(t, llm.lastReq.Messages[1].Content, `"avg_scored":1.8`)
}

func TestPredict_LLMStringPercents(t *testing.T) {
	llm := &fakeLLM{content: `{"home_win": "45%", "draw": "25", "away_win": 30, "analysis": "ok"}`}
	pred, source := newLLMService(llm, nil).Predict(context.Background(), "A", "B", baseline, baseline)

	assert.Equal(t, models.SourceLLM, source)
	assert.Equal(t, 45.0, pred.HomeWin)
	assert.Equal(t, 25.0, pred.Draw)
	assert.Equal(t, 30.0, pred.AwayWin)
}

func TestPredict_LLMFailure(t *testing.T) {
	llm := &fakeLLM{err: errors.New("quota exceeded")}
	cache := storage.NewMemoryCache()
	s := newLLMService(llm, cache)

	pred, source := s.Predict(context.Background(), "A", "B", baseline, baseline)

	assert.Equal(t, models.SourceFailed, source)
	assert.Zero(t, pred.Total())
	assert.True(t, strings.HasPrefix(pred.Analysis, "prediction failed: "))
	assert.Contains(t, pred.Analysis, "quota exceeded")

	// Failures are not cached
	s.Predict(context.Background(), "A", "B", baseline, baseline)
	assert.Equal(t, 2, llm.calls)
}

func TestPredict_LLMGarbage(t *testing.T) {
	llm := &fakeLLM{content: "I cannot predict football."}
	pred, source := newLLMService(llm, nil).Predict(context.Background(), "A", "B", baseline, baseline)

	assert.Equal(t, models.SourceFailed, source)
	assert.Zero(t, pred.Total())
}

func TestPredict_LLMOutOfRange(t *testing.T) {
	llm := &fakeLLM{content: `{"home_win": 0.45, "draw": 120, "away_win": 30, "analysis": "odd"}`}
	pred, source := newLLMService(llm, nil).Predict(context.Background(), "A", "B", baseline, baseline)

	assert.Equal(t, models.SourceFailed, source)
	assert.Contains(t, pred.Analysis, "draw out of range")
}

func TestPredict_Cached(t *testing.T) {
	llm := &fakeLLM{content: `{"home_win": 40, "draw": 30, "away_win": 30, "analysis": "cached"}`}
	s := newLLMService(llm, storage.NewMemoryCache())

	first, _ := s.Predict(context.Background(), "Arsenal", "Chelsea", baseline, baseline)
	second, source := s.Predict(context.Background(), " arsenal", "CHELSEA ", baseline, baseline)

	assert.Equal(t, first, second)
	assert.Equal(t, models.SourceLLM, source)
	assert.Equal(t, 1, llm.calls)
}

func TestPredict_StatisticalWithoutKey(t *testing.T) {
	s := NewService(&config.PredictionConfig{Language: "English"}, nil)
	require.False(t, s.UsesLLM())

	pred, source := s.Predict(context.Background(), "Arsenal", "Chelsea", baseline, baseline)

	assert.Equal(t, models.SourceStatistical, source)
	assert.Equal(t, 100.0, pred.Total())
	assert.Greater(t, pred.HomeWin, pred.AwayWin, "equal form should favour the home side")
	assert.Contains(t, pred.Analysis, "Statistical estimate")
	assert.Contains(t, pred.Analysis, "Arsenal")
}

func TestStatisticalAnalysis_Japanese(t *testing.T) {
	text := statisticalAnalysis("Japanese", "A", "B", poissonResult{HomeExpectedGoals: 1.4, AwayExpectedGoals: 1.1, PredictedHomeGoals: 1, PredictedAwayGoals: 1})
	assert.Contains(t, text, "統計モデル")
	assert.Contains(t, text, "1-1")
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"text before {\"a\":{\"b\":2}} after", `{"a":{"b":2}}`},
		{"no json here", "no json here"},
		{"} backwards {", "} backwards {"},
	}
	for _, tt := range tests {
		if got := extractJSONObject(tt.in); got != tt.want {
			t.Errorf("extractJSONObject(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeAnalysis(t *testing.T) {
	assert.Equal(t, "plain text", normalizeAnalysis("  plain text \n"))
	assert.Equal(t, "3 < 4 and 5 > 2", normalizeAnalysis("3 < 4 and 5 > 2"))

	md := normalizeAnalysis("<p>Home side is <strong>strong</strong></p>")
	assert.NotContains(t, md, "<p>")
	assert.Contains(t, md, "**strong**")
}

func TestEstimate_ProbabilitiesSumToOne(t *testing.T) {
	strong := models.TeamStats{Wins: 5, AvgScored: 2.8, AvgConceded: 0.4}
	weak := models.TeamStats{Losses: 5, AvgScored: 0.4, AvgConceded: 2.6}

	res := estimate(strong, weak)
	assert.InDelta(t, 1.0, res.HomeWin+res.Draw+res.AwayWin, 1e-9)
	assert.Greater(t, res.HomeWin, 0.6)
	assert.Greater(t, res.HomeExpectedGoals, res.AwayExpectedGoals)

	reversed := estimate(weak, strong)
	assert.Greater(t, reversed.AwayWin, reversed.HomeWin)
}

func TestPoissonPMF(t *testing.T) {
	var sum float64
	for k := 0; k < 30; k++ {
		sum += poissonPMF(1.5, k)
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.InDelta(t, math.Exp(-1.5), poissonPMF(1.5, 0), 1e-12)
}

func TestWholePercents(t *testing.T) {
	tests := []struct {
		in   []float64
		want []int
	}{
		{[]float64{0.5, 0.2, 0.3}, []int{50, 20, 30}},
		{[]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, []int{34, 33, 33}},
		{[]float64{0.456, 0.271, 0.273}, []int{46, 27, 27}},
	}
	for _, tt := range tests {
		got := wholePercents(tt.in...)
		assert.Equal(t, tt.want, got, "wholePercents(%v)", tt.in)
		sum := 0
		for _, v := range got {
			sum += v
		}
		assert.Equal(t, 100, sum)
	}
}
