// Package httpapi exposes the registry over HTTP: JSON endpoints for
// accounts, achievement submissions, moderation and the leaderboard, plus
// attachment download and a moderation event stream.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"ustazhub.kz/internal/account"
	"ustazhub.kz/internal/achievement"
	"ustazhub.kz/internal/leaderboard"
	"ustazhub.kz/internal/obs"
	"ustazhub.kz/internal/storage"
	"ustazhub.kz/internal/stream"
)

// ReadyProbe reports service readiness, typically a database ping.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux          *http.ServeMux
	accounts     *account.Service
	achievements *achievement.Service
	board        *leaderboard.Aggregator
	files        storage.Store
	stream       *stream.Stream
	readyProbe   ReadyProbe
	version      string
}

// Config wires the services an API serves. Files and Events may be nil when
// the deployment disables attachments or streaming.
type Config struct {
	Accounts     *account.Service
	Achievements *achievement.Service
	Leaderboard  *leaderboard.Aggregator
	Files        storage.Store
	Events       *stream.Stream
	ReadyProbe   ReadyProbe
	Version      string
}

func New(cfg Config) *API {
	a := &API{
		mux:          http.NewServeMux(),
		accounts:     cfg.Accounts,
		achievements: cfg.Achievements,
		board:        cfg.Leaderboard,
		files:        cfg.Files,
		stream:       cfg.Events,
		readyProbe:   cfg.ReadyProbe,
		version:      cfg.Version,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth
	a.mux.HandleFunc("/v1/auth/register", a.handleRegister)
	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/auth/password-reset", a.handlePasswordResetRequest)
	a.mux.HandleFunc("/v1/auth/password-reset/confirm", a.handlePasswordResetConfirm)

	// accounts
	a.mux.HandleFunc("/v1/accounts", a.handleAccountsCollection)
	a.mux.HandleFunc("/v1/accounts/", a.handleAccountResource)

	// achievements
	a.mux.HandleFunc("/v1/achievements", a.handleAchievementsCollection)
	a.mux.HandleFunc("/v1/achievements/", a.handleAchievementResource)

	// leaderboard and aggregate reports
	a.mux.HandleFunc("/v1/leaderboard", a.handleLeaderboard)
	a.mux.HandleFunc("/v1/reports/summary", a.handleReportsSummary)

	// attachments
	a.mux.HandleFunc("/v1/files/", a.handleFileDownload)

	// moderation event stream (SSE)
	a.mux.HandleFunc("/v1/events", a.Stream)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped http.Handler: metrics instrumentation
// outermost, then authentication resolving the session account.
func (a *API) Handler() http.Handler {
	return obs.Instrument(a.withAuth(a.mux))
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "ustazhub-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "ustazhub-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
