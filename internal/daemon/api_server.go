package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"marquee/internal/api"
	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/services"
	"marquee/internal/tmdb"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon
	recSvc *api.RecommendationService

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, errors.New("api server requires config and daemon")
	}
	bind := strings.TrimSpace(cfg.Server.Bind)
	if bind == "" {
		return nil, errors.New("api server requires a bind address")
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
		recSvc: api.NewRecommendationService(d.reader),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/recommendations/", srv.handleRecommendations)
	mux.HandleFunc("/api/tmdb/details/", srv.handleCatalogDetails)
	mux.HandleFunc("/api/tmdb/trending", srv.handleCatalogTrending)
	mux.HandleFunc("/api/tmdb/top-rated", srv.handleCatalogTopRated)
	mux.HandleFunc("/api/tmdb/genre/", srv.handleCatalogGenre)
	mux.HandleFunc("/api/stats", srv.handleStats)
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/healthz", srv.handleHealth)

	srv.server = &http.Server{
		Handler:           authMiddleware(cfg.Server.APIToken, srv.withRequestID(srv.withRecovery(mux))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}

func (s *apiServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = services.NewRequestID()
		}
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), requestID)))
	})
}

func (s *apiServer) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log().Error("handler panic",
					logging.String("path", r.URL.Path),
					logging.Any("panic", rec))
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// handleRecommendations serves /api/recommendations/{userId}. With ?enrich=1
// each item is joined with catalog metadata before responding.
func (s *apiServer) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rawID := strings.TrimPrefix(r.URL.Path, "/api/recommendations/")
	if rawID == "" || strings.Contains(rawID, "/") {
		s.writeError(w, http.StatusBadRequest, "Invalid userId")
		return
	}

	if enrichParam := r.URL.Query().Get("enrich"); enrichParam == "1" || strings.EqualFold(enrichParam, "true") {
		items, updatedAt, err := s.daemon.EnrichedRecommendations(r.Context(), rawID)
		if err != nil {
			s.writeError(w, services.HTTPStatus(err), services.UserMessage(err))
			return
		}
		s.writeJSON(w, http.StatusOK, struct {
			Items     []api.EnrichedItem `json:"items"`
			UpdatedAt *string            `json:"updated_at"`
		}{Items: items, UpdatedAt: updatedAt})
		return
	}

	resp, err := s.recSvc.ForUser(r.Context(), rawID)
	if err != nil {
		s.writeError(w, services.HTTPStatus(err), services.UserMessage(err))
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleCatalogDetails proxies /api/tmdb/details/{tmdbId} to the catalog,
// passing the upstream document through verbatim.
func (s *apiServer) handleCatalogDetails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rawID := strings.TrimPrefix(r.URL.Path, "/api/tmdb/details/")
	tmdbID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid tmdbId")
		return
	}
	s.proxyCatalog(w, r, func(ctx context.Context) (json.RawMessage, error) {
		return s.daemon.catalog.Fetch(ctx, fmt.Sprintf("/movie/%d", tmdbID), nil)
	})
}

func (s *apiServer) handleCatalogTrending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.proxyCatalog(w, r, s.daemon.catalog.Trending)
}

func (s *apiServer) handleCatalogTopRated(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.proxyCatalog(w, r, s.daemon.catalog.TopRated)
}

func (s *apiServer) handleCatalogGenre(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rawID := strings.TrimPrefix(r.URL.Path, "/api/tmdb/genre/")
	genreID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid genre id")
		return
	}
	s.proxyCatalog(w, r, func(ctx context.Context) (json.RawMessage, error) {
		return s.daemon.catalog.DiscoverByGenre(ctx, genreID)
	})
}

func (s *apiServer) proxyCatalog(w http.ResponseWriter, r *http.Request, fetch func(context.Context) (json.RawMessage, error)) {
	payload, err := fetch(r.Context())
	if err != nil {
		var statusErr *tmdb.StatusError
		if errors.As(err, &statusErr) {
			s.writeError(w, http.StatusInternalServerError, statusErr.Error())
			return
		}
		s.writeError(w, services.HTTPStatus(err), services.UserMessage(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		s.log().Error("failed to write proxy response", logging.Error(err))
	}
}

// handleStats serves the diagnostics snapshot. Failures keep the 200-vs-500
// split visible in the ok field so dashboards can render either branch.
func (s *apiServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	snapshot, err := s.daemon.Stats(r.Context())
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, api.StatsResponse{
			OK:    false,
			Error: services.UserMessage(err),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, api.StatsResponse{
		OK:     true,
		Tables: snapshot.Tables,
		Meta: &api.StatsMeta{
			ServerTime: snapshot.ServerTime.Format(time.RFC3339),
			BaseURL:    snapshot.BaseURL,
		},
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.Status())
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
