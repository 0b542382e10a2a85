package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/Vodeneev/matchpredict/internal/pkg/health"
	"github.com/Vodeneev/matchpredict/internal/pkg/models"
	"github.com/Vodeneev/matchpredict/internal/pkg/storage"
	"github.com/Vodeneev/matchpredict/internal/pkg/validation"
)

// MatchSource provides scheduled matches and team form.
type MatchSource interface {
	ScheduledMatches(ctx context.Context) ([]models.Match, error)
	TeamStats(ctx context.Context, teamName string) models.TeamStats
}

// Predictor produces an outcome estimate for a pairing.
type Predictor interface {
	Predict(ctx context.Context, home, away string, homeStats, awayStats models.TeamStats) (models.Prediction, models.PredictionSource)
}

// Notifier publishes served predictions.
type Notifier interface {
	NotifyPrediction(rec models.PredictionRecord)
}

// Deps are the collaborators of the API. History and Notifier are optional.
type Deps struct {
	Matches   MatchSource
	Predictor Predictor
	History   storage.PredictionStorage
	Notifier  Notifier
}

// Server serves /api/matches, /api/predict and the prediction history.
type Server struct {
	deps      Deps
	sanitizer *validation.Sanitizer
	now       func() time.Time
}

func NewServer(deps Deps) *Server {
	return &Server{
		deps:      deps,
		sanitizer: validation.NewSanitizer(),
		now:       time.Now,
	}
}

// Router builds the HTTP routes of the API. Every response carries
// permissive CORS headers and OPTIONS preflights answer 204.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(cors)
	r.Use(health.TrackRequests("api"))

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/matches", s.handleMatches).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/predict", s.handlePredict).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/predictions", s.handleHistory).Methods(http.MethodGet, http.MethodOptions)
	health.Register(r)
	return r
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Match prediction API is running. Use /api/matches and /api/predict.",
	})
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := s.deps.Matches.ScheduledMatches(r.Context())
	if err != nil {
		// Upstream failures degrade to an empty list
		slog.Error("Failed to load scheduled matches", "error", err)
		matches = nil
	}
	if matches == nil {
		matches = []models.Match{}
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	home := s.sanitizer.SanitizeTeamName(q.Get("home_team"))
	away := s.sanitizer.SanitizeTeamName(q.Get("away_team"))
	if home == "" || away == "" {
		writeError(w, http.StatusUnprocessableEntity, "home_team and away_team are required")
		return
	}

	var matchID int64
	if v := q.Get("match_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "match_id must be an integer")
			return
		}
		matchID = id
	}

	ctx := r.Context()
	homeStats := s.deps.Matches.TeamStats(ctx, home)
	awayStats := s.deps.Matches.TeamStats(ctx, away)

	pred, source := s.deps.Predictor.Predict(ctx, home, away, homeStats, awayStats)
	slog.Info("Prediction served", "home", home, "away", away, "match_id", matchID, "source", source)

	s.record(ctx, models.PredictionRecord{
		MatchID:    matchID,
		HomeTeam:   home,
		AwayTeam:   away,
		Prediction: pred,
		Source:     source,
		CreatedAt:  s.now().UTC(),
	})

	writeJSON(w, http.StatusOK, models.PredictResponse{
		Match:      home + " vs " + away,
		Prediction: pred,
		Details: models.PredictDetails{
			HomeStats: homeStats,
			AwayStats: awayStats,
		},
	})
}

// record stores and publishes a served prediction. Errors are only logged.
func (s *Server) record(ctx context.Context, rec models.PredictionRecord) {
	if s.deps.History != nil {
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		err := s.deps.History.SavePrediction(saveCtx, &rec)
		cancel()
		if err != nil {
			slog.Error("Failed to save prediction", "match", rec.HomeTeam+" vs "+rec.AwayTeam, "error", err)
		}
	}
	if s.deps.Notifier != nil && rec.Source != models.SourceFailed {
		s.deps.Notifier.NotifyPrediction(rec)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		writeError(w, http.StatusServiceUnavailable, "prediction history is not configured")
		return
	}

	q := r.URL.Query()
	var (
		records []models.PredictionRecord
		err     error
	)
	if v := q.Get("match_id"); v != "" {
		id, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			writeError(w, http.StatusUnprocessableEntity, "match_id must be an integer")
			return
		}
		records, err = s.deps.History.PredictionsForMatch(r.Context(), id)
	} else {
		limit := 20
		if v := q.Get("limit"); v != "" {
			if n, perr := strconv.Atoi(v); perr == nil && n > 0 {
				if n > 100 {
					n = 100
				}
				limit = n
			}
		}
		records, err = s.deps.History.RecentPredictions(r.Context(), limit)
	}
	if err != nil {
		slog.Error("Failed to load prediction history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load prediction history")
		return
	}
	if records == nil {
		records = []models.PredictionRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
