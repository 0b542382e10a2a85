package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vodeneev/matchpredict/internal/pkg/config"
	"github.com/Vodeneev/matchpredict/internal/pkg/models"
)

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	in := []models.Match{{ID: 1, HomeTeam: models.Team{Name: "A"}, AwayTeam: models.Team{Name: "B"}}}
	require.NoError(t, c.Set(ctx, "matches", in, time.Minute))

	var out []models.Match
	require.NoError(t, c.Get(ctx, "matches", &out))
	assert.Equal(t, in, out)

	var missing []models.Match
	err := c.Get(ctx, "other", &missing)
	assert.True(t, errors.Is(err, ErrCacheMiss))
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 12, 14, 15, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	now = now.Add(59 * time.Second)
	var s string
	require.NoError(t, c.Get(ctx, "k", &s))
	assert.Equal(t, "v", s)

	now = now.Add(time.Second)
	assert.ErrorIs(t, c.Get(ctx, "k", &s), ErrCacheMiss)
}

func TestBind(t *testing.T) {
	pg := &SQLPredictionStorage{dialect: postgresDialect}
	assert.Equal(t, "a = $1 AND b = $2", pg.bind("a = ? AND b = ?"))

	lite := &SQLPredictionStorage{dialect: sqliteDialect}
	assert.Equal(t, "a = ? AND b = ?", lite.bind("a = ? AND b = ?"))
}

func TestSQLitePredictionStorage(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLitePredictionStorage(&config.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	defer s.Close()

	base := time.Date(2025, 12, 14, 12, 0, 0, 0, time.UTC)
	first := &models.PredictionRecord{
		MatchID:    1001,
		HomeTeam:   "Arsenal",
		AwayTeam:   "Chelsea",
		Prediction: models.Prediction{HomeWin: 40, Draw: 30, AwayWin: 30, Analysis: "home strong"},
		Source:     models.SourceStatistical,
		CreatedAt:  base,
	}
	second := &models.PredictionRecord{
		MatchID:    1002,
		HomeTeam:   "Liverpool",
		AwayTeam:   "Man City",
		Prediction: models.Prediction{HomeWin: 35.5, Draw: 25, AwayWin: 39.5, Analysis: "close"},
		Source:     models.SourceLLM,
		CreatedAt:  base.Add(time.Hour),
	}
	require.NoError(t, s.SavePrediction(ctx, first))
	require.NoError(t, s.SavePrediction(ctx, second))
	assert.NotZero(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	recent, err := s.RecentPredictions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "Liverpool", recent[0].HomeTeam)
	assert.Equal(t, 39.5, recent[0].Prediction.AwayWin)
	assert.Equal(t, models.SourceLLM, recent[0].Source)
	assert.True(t, recent[1].CreatedAt.Equal(base))

	limited, err := s.RecentPredictions(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	forMatch, err := s.PredictionsForMatch(ctx, 1001)
	require.NoError(t, err)
	require.Len(t, forMatch, 1)
	assert.Equal(t, "home strong", forMatch[0].Prediction.Analysis)
}

func TestNewSQLitePredictionStorage_RequiresPath(t *testing.T) {
	_, err := NewSQLitePredictionStorage(&config.SQLiteConfig{})
	assert.Error(t, err)
}

func TestNewPostgresPredictionStorage_RequiresDSN(t *testing.T) {
	_, err := NewPostgresPredictionStorage(&config.PostgresConfig{})
	assert.Error(t, err)
}

func TestNewRedisClient_RequiresAddr(t *testing.T) {
	_, err := NewRedisClient(&config.RedisConfig{})
	assert.Error(t, err)
}
