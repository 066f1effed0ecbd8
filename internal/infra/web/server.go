package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-file-gate/internal/config"
	"telegram-file-gate/internal/usecase"
)

// Server is the operator-facing HTTP surface: login, stats, health and
// Prometheus metrics. It never touches end-user flows.
type Server struct {
	statsUC   usecase.StatsUseCase
	channelUC usecase.ChannelUseCase
	auth      *AuthManager
	apiKey    string
	log       *zerolog.Logger
	server    *http.Server
}

func NewServer(cfg *config.AdminConfig, statsUC usecase.StatsUseCase, channelUC usecase.ChannelUseCase, dev bool, logger *zerolog.Logger) *Server {
	webLog := logger.With().Str("component", "WebServer").Logger()
	s := &Server{
		statsUC:   statsUC,
		channelUC: channelUC,
		auth:      NewAuthManager(cfg.SessionSecret, !dev, 30*time.Minute),
		apiKey:    cfg.APIKey,
		log:       &webLog,
	}
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.router(),
	}
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/stats", s.handleStats)
			r.Get("/channels", s.handleChannels)
		})
	})
	return r
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("admin server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// authMiddleware accepts either the raw API key or a minted session token.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("admin api key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err == nil {
			next.ServeHTTP(w, r)
			return
		}
		if key := r.Header.Get("X-API-Key"); key != "" &&
			subtle.ConstantTimeCompare([]byte(key), []byte(s.apiKey)) == 1 {
			next.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		APIKey string `json:"api_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if s.apiKey == "" || subtle.ConstantTimeCompare([]byte(body.APIKey), []byte(s.apiKey)) != 1 {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		s.log.Error().Err(err).Msg("mint session token")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsUC.Collect(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("collect stats")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"users":          stats.Users,
		"admins":         stats.Admins,
		"active_premium": stats.ActivePremium,
		"files":          stats.Files,
		"batches":        stats.Batches,
		"links":          stats.Links,
		"tokens_total":   stats.TokensTotal,
		"tokens_used":    stats.TokensUsed,
	})
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	chs, err := s.channelUC.List(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("list channels")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	type chView struct {
		ChannelID  int64  `json:"channel_id"`
		Title      string `json:"title"`
		Username   string `json:"username,omitempty"`
		InviteLink string `json:"invite_link,omitempty"`
		Verifiable bool   `json:"verifiable"`
	}
	out := make([]chView, 0, len(chs))
	for _, ch := range chs {
		out = append(out, chView{
			ChannelID:  ch.ChannelID,
			Title:      ch.Title,
			Username:   ch.Username,
			InviteLink: ch.InviteLink,
			Verifiable: ch.Verifiable,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
