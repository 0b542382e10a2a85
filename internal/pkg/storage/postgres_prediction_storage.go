package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	_ "github.com/lib/pq"

	"github.com/Vodeneev/matchpredict/internal/pkg/config"
)

var postgresDialect = dialect{
	name: "postgres",
	schema: `
	CREATE TABLE IF NOT EXISTS predictions (
		id BIGSERIAL PRIMARY KEY,
		match_id BIGINT NOT NULL DEFAULT 0,
		home_team VARCHAR(200) NOT NULL,
		away_team VARCHAR(200) NOT NULL,
		home_win DOUBLE PRECISION NOT NULL,
		draw DOUBLE PRECISION NOT NULL,
		away_win DOUBLE PRECISION NOT NULL,
		analysis TEXT NOT NULL DEFAULT '',
		source VARCHAR(32) NOT NULL,
		created_at BIGINT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_predictions_match_id ON predictions(match_id);
	`,
	placeholder: func(n int) string {
		return "$" + strconv.Itoa(n)
	},
}

// NewPostgresPredictionStorage opens PostgreSQL and creates the predictions table
func NewPostgresPredictionStorage(cfg *config.PostgresConfig) (*SQLPredictionStorage, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := newSQLPredictionStorage(ctx, db, postgresDialect)
	if err != nil {
		return nil, err
	}

	slog.Info("PostgreSQL prediction storage initialized")
	return s, nil
}
