package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Vodeneev/matchpredict/internal/pkg/config"
)

var sqliteDialect = dialect{
	name: "sqlite",
	schema: `
	CREATE TABLE IF NOT EXISTS predictions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		match_id INTEGER NOT NULL DEFAULT 0,
		home_team TEXT NOT NULL,
		away_team TEXT NOT NULL,
		home_win REAL NOT NULL,
		draw REAL NOT NULL,
		away_win REAL NOT NULL,
		analysis TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_predictions_match_id ON predictions(match_id);
	`,
	placeholder: func(int) string {
		return "?"
	},
}

// NewSQLitePredictionStorage opens (or creates) the SQLite file at cfg.Path.
// ":memory:" keeps the history for the life of the process.
func NewSQLitePredictionStorage(cfg *config.SQLiteConfig) (*SQLPredictionStorage, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := newSQLPredictionStorage(ctx, db, sqliteDialect)
	if err != nil {
		return nil, err
	}

	slog.Info("SQLite prediction storage initialized", "path", cfg.Path)
	return s, nil
}
