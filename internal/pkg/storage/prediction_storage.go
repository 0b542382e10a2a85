package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Vodeneev/matchpredict/internal/pkg/models"
)

// Ensure SQLPredictionStorage implements PredictionStorage
var _ PredictionStorage = (*SQLPredictionStorage)(nil)

// dialect holds the per-driver differences of the predictions table.
type dialect struct {
	name        string
	schema      string
	placeholder func(n int) string
}

// SQLPredictionStorage stores served predictions in PostgreSQL or SQLite
type SQLPredictionStorage struct {
	db      *sql.DB
	dialect dialect
}

func newSQLPredictionStorage(ctx context.Context, db *sql.DB, d dialect) (*SQLPredictionStorage, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", d.name, err)
	}

	s := &SQLPredictionStorage{db: db, dialect: d}
	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// bind rewrites '?' markers into the dialect's placeholders.
func (s *SQLPredictionStorage) bind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(s.dialect.placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SavePrediction stores rec and sets rec.ID. CreatedAt defaults to now.
func (s *SQLPredictionStorage) SavePrediction(ctx context.Context, rec *models.PredictionRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := s.bind(`
	INSERT INTO predictions (
		match_id, home_team, away_team,
		home_win, draw, away_win, analysis,
		source, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING id
	`)

	err := s.db.QueryRowContext(ctx, query,
		rec.MatchID, rec.HomeTeam, rec.AwayTeam,
		rec.Prediction.HomeWin, rec.Prediction.Draw, rec.Prediction.AwayWin, rec.Prediction.Analysis,
		string(rec.Source), rec.CreatedAt.UnixMilli(),
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}
	return nil
}

// RecentPredictions returns up to limit predictions, newest first
func (s *SQLPredictionStorage) RecentPredictions(ctx context.Context, limit int) ([]models.PredictionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := s.bind(`
	SELECT id, match_id, home_team, away_team, home_win, draw, away_win, analysis, source, created_at
	FROM predictions
	ORDER BY created_at DESC, id DESC
	LIMIT ?
	`)
	return s.query(ctx, query, limit)
}

// PredictionsForMatch returns predictions for matchID, newest first
func (s *SQLPredictionStorage) PredictionsForMatch(ctx context.Context, matchID int64) ([]models.PredictionRecord, error) {
	query := s.bind(`
	SELECT id, match_id, home_team, away_team, home_win, draw, away_win, analysis, source, created_at
	FROM predictions
	WHERE match_id = ?
	ORDER BY created_at DESC, id DESC
	`)
	return s.query(ctx, query, matchID)
}

func (s *SQLPredictionStorage) query(ctx context.Context, query string, args ...interface{}) ([]models.PredictionRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var records []models.PredictionRecord
	for rows.Next() {
		var rec models.PredictionRecord
		var source string
		var createdAt int64
		if err := rows.Scan(
			&rec.ID,
			&rec.MatchID,
			&rec.HomeTeam,
			&rec.AwayTeam,
			&rec.Prediction.HomeWin,
			&rec.Prediction.Draw,
			&rec.Prediction.AwayWin,
			&rec.Prediction.Analysis,
			&source,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning prediction row: %w", err)
		}
		rec.Source = models.PredictionSource(source)
		rec.CreatedAt = time.UnixMilli(createdAt).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating prediction rows: %w", err)
	}
	return records, nil
}

// Close closes the database connection
func (s *SQLPredictionStorage) Close() error {
	return s.db.Close()
}
