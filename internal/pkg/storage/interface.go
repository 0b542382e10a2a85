package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Vodeneev/matchpredict/internal/pkg/models"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores JSON-encodable values with a TTL
type Cache interface {
	// Get decodes the value stored at key into dst. Returns ErrCacheMiss if absent.
	Get(ctx context.Context, key string, dst interface{}) error

	// Set stores value at key for ttl
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Close releases the underlying connection
	Close() error
}

// PredictionStorage keeps the history of served predictions
type PredictionStorage interface {
	// SavePrediction stores rec and fills rec.ID
	SavePrediction(ctx context.Context, rec *models.PredictionRecord) error

	// RecentPredictions returns the newest predictions first, at most limit
	RecentPredictions(ctx context.Context, limit int) ([]models.PredictionRecord, error)

	// PredictionsForMatch returns the predictions served for one match id, newest first
	PredictionsForMatch(ctx context.Context, matchID int64) ([]models.PredictionRecord, error)

	// Close closes the database connection
	Close() error
}
