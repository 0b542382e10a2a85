package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Vodeneev/matchpredict/internal/pkg/config"
	"github.com/Vodeneev/matchpredict/internal/pkg/models"
	"github.com/Vodeneev/matchpredict/internal/pkg/performance"
	"github.com/Vodeneev/matchpredict/internal/pkg/storage"
	"github.com/Vodeneev/matchpredict/internal/pkg/validation"
)

// chatCompleter is the part of the OpenAI client the service uses
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Service produces match predictions: from the LLM when a key is configured,
// otherwise from the Poisson estimate.
type Service struct {
	cfg     config.PredictionConfig
	llm     chatCompleter
	cache   storage.Cache
	tracker *performance.Tracker
}

// NewService creates the prediction service. cache may be nil.
func NewService(cfg *config.PredictionConfig, cache storage.Cache) *Service {
	s := &Service{
		cfg:     *cfg,
		cache:   cache,
		tracker: performance.GetTracker(),
	}
	if cfg.OpenAIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.OpenAIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		s.llm = openai.NewClientWithConfig(clientCfg)
	}
	return s
}

// UsesLLM reports whether predictions come from the language model.
func (s *Service) UsesLLM() bool {
	return s.llm != nil
}

// Predict returns the prediction for home vs away and where it came from.
// It never fails: LLM errors produce a zero prediction whose analysis carries
// the error text. Without an OpenAI key the result is a Poisson estimate from
// the team stats with source "statistical", not a fixed placeholder.
func (s *Service) Predict(ctx context.Context, home, away string, homeStats, awayStats models.TeamStats) (models.Prediction, models.PredictionSource) {
	key := "prediction:" + models.PairKey(home, away)

	if s.cache != nil {
		var cached cachedPrediction
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return cached.Prediction, cached.Source
		}
		if !errors.Is(err, storage.ErrCacheMiss) {
			slog.Warn("Prediction cache read failed", "error", err)
		}
	}

	var pred models.Prediction
	var source models.PredictionSource
	if s.llm == nil {
		pred = s.statistical(home, away, homeStats, awayStats)
		source = models.SourceStatistical
	} else {
		var err error
		pred, err = s.predictLLM(ctx, home, away, homeStats, awayStats)
		if err != nil {
			slog.Error("Error predicting match", "home", home, "away", away, "error", err)
			return models.Prediction{
				Analysis: fmt.Sprintf("prediction failed: %v", err),
			}, models.SourceFailed
		}
		source = models.SourceLLM
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, cachedPrediction{Prediction: pred, Source: source}, s.cfg.CacheTTL); err != nil {
			slog.Warn("Prediction cache write failed", "error", err)
		}
	}
	return pred, source
}

type cachedPrediction struct {
	Prediction models.Prediction       `json:"prediction"`
	Source     models.PredictionSource `json:"source"`
}

func (s *Service) statistical(home, away string, homeStats, awayStats models.TeamStats) models.Prediction {
	res := estimate(homeStats, awayStats)
	pct := wholePercents(res.HomeWin, res.Draw, res.AwayWin)
	return models.Prediction{
		HomeWin:  float64(pct[0]),
		Draw:     float64(pct[1]),
		AwayWin:  float64(pct[2]),
		Analysis: statisticalAnalysis(s.cfg.Language, home, away, res),
	}
}

func (s *Service) predictLLM(ctx context.Context, home, away string, homeStats, awayStats models.TeamStats) (pred models.Prediction, err error) {
	done := s.tracker.Track("predictor.llm", home+" vs "+away)
	defer func() { done(err) }()

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	resp, err := s.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(s.cfg.Language)},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(s.cfg.Language, home, away, homeStats, awayStats)},
		},
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return models.Prediction{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.Prediction{}, fmt.Errorf("chat completion returned no choices")
	}

	return parseLLMContent(resp.Choices[0].Message.Content)
}

func systemPrompt(language string) string {
	return fmt.Sprintf("You are a football expert assistant. return only JSON. Analysis must be in %s.", language)
}

func userPrompt(language, home, away string, homeStats, awayStats models.TeamStats) string {
	hs, _ := json.Marshal(homeStats)
	as, _ := json.Marshal(awayStats)
	return fmt.Sprintf(`Predict the outcome of a football match between %s (Home) and %s (Away).

Home Stats (Last 5): %s
Away Stats (Last 5): %s

Return a JSON object with keys: "home_win" (int %%), "draw" (int %%), "away_win" (int %%), "analysis" (string).
"analysis" MUST be written in %s.`, home, away, hs, as, language)
}

// extractJSONObject cuts content from the first '{' to the last '}'.
func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end < start {
		return content
	}
	return content[start : end+1]
}

// llmPrediction accepts percentages as numbers or strings like "45%".
type llmPrediction struct {
	HomeWin  percent `json:"home_win"`
	Draw     percent `json:"draw"`
	AwayWin  percent `json:"away_win"`
	Analysis string  `json:"analysis"`
}

type percent float64

func (p *percent) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*p = percent(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("percent must be a number or string: %s", string(data))
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid percent %q: %w", s, err)
	}
	*p = percent(v)
	return nil
}

func parseLLMContent(content string) (models.Prediction, error) {
	var raw llmPrediction
	if err := json.Unmarshal([]byte(extractJSONObject(content)), &raw); err != nil {
		return models.Prediction{}, fmt.Errorf("failed to decode model output: %w", err)
	}
	pred := models.Prediction{
		HomeWin:  float64(raw.HomeWin),
		Draw:     float64(raw.Draw),
		AwayWin:  float64(raw.AwayWin),
		Analysis: normalizeAnalysis(raw.Analysis),
	}
	if err := validation.NewValidator().ValidatePrediction(pred); err != nil {
		return models.Prediction{}, fmt.Errorf("invalid model output: %w", err)
	}
	return pred, nil
}
