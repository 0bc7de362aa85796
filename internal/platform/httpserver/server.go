package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	campaignregistry "ballotpool/contexts/voting-market/campaign-registry"
	registryerrors "ballotpool/contexts/voting-market/campaign-registry/domain/errors"
	registryhttp "ballotpool/contexts/voting-market/campaign-registry/transport/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "ballotpool/internal/platform/httpserver/docs"
)

const serverModule = "internal/platform/httpserver"

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	registry campaignregistry.Module
	gatherer prometheus.Gatherer
	health   func(context.Context) error
}

type Options struct {
	// Gatherer backs GET /metrics; nil serves the default registry.
	Gatherer prometheus.Gatherer
	// Health backs GET /healthz; nil always reports ok.
	Health func(context.Context) error
}

func New(
	registry campaignregistry.Module,
	logger *slog.Logger,
	addr string,
	opts Options,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		registry: registry,
		gatherer: opts.Gatherer,
		health:   opts.Health,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", serverModule,
		"layer", "platform",
		"addr", s.addr,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("http server stopping",
		"event", "http_server_stopping",
		"module", serverModule,
		"layer", "platform",
	)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST /v1/votings", s.handleAddVoting)
	s.mux.HandleFunc("GET /v1/votings", s.handleListVotings)
	s.mux.HandleFunc("GET /v1/votings/{name}", s.handleGetVoting)
	s.mux.HandleFunc("POST /v1/votings/{name}/votes", s.handleVote)
	s.mux.HandleFunc("POST /v1/votings/{name}/finish", s.handleFinish)
	s.mux.HandleFunc("GET /v1/votings/{name}/candidates", s.handleCandidates)
	s.mux.HandleFunc("GET /v1/votings/{name}/results", s.handleResults)
	s.mux.HandleFunc("GET /v1/votings/{name}/transfers", s.handleTransfers)
	s.mux.HandleFunc("POST /v1/commission/withdraw", s.handleWithdrawCommission)
	s.mux.HandleFunc("GET /v1/registry", s.handleRegistry)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.logger.Warn("health check failed",
				"event", "http_health_failed",
				"module", serverModule,
				"layer", "platform",
				"error", err.Error(),
			)
			writeError(w, http.StatusServiceUnavailable, "unhealthy", "dependency check failed")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAddVoting(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req registryhttp.AddVotingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.registry.Handler.AddVotingHandler(r.Context(), userID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListVotings(w http.ResponseWriter, r *http.Request) {
	resp, err := s.registry.Handler.ListVotingsHandler(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetVoting(w http.ResponseWriter, r *http.Request) {
	resp, err := s.registry.Handler.GetVotingHandler(r.Context(), r.PathValue("name"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req registryhttp.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.registry.Handler.VoteHandler(r.Context(), userID, r.PathValue("name"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	resp, err := s.registry.Handler.FinishHandler(r.Context(), userID, r.PathValue("name"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	resp, err := s.registry.Handler.CandidatesHandler(r.Context(), r.PathValue("name"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	resp, err := s.registry.Handler.ResultsHandler(r.Context(), r.PathValue("name"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTransfers(w http.ResponseWriter, r *http.Request) {
	resp, err := s.registry.Handler.TransfersHandler(r.Context(), r.PathValue("name"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWithdrawCommission(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	resp, err := s.registry.Handler.WithdrawCommissionHandler(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegistry(w http.ResponseWriter, r *http.Request) {
	resp, err := s.registry.Handler.RegistryHandler(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return userID, true
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registryerrors.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, registryerrors.ErrInsufficientPayment):
		writeError(w, http.StatusPaymentRequired, "insufficient_payment", err.Error())
	case errors.Is(err, registryerrors.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, registryerrors.ErrCampaignNotFound):
		writeError(w, http.StatusNotFound, "voting_not_found", err.Error())
	case errors.Is(err, registryerrors.ErrDuplicateCampaign):
		writeError(w, http.StatusConflict, "duplicate_voting", err.Error())
	case errors.Is(err, registryerrors.ErrVotingInactive):
		writeError(w, http.StatusConflict, "voting_inactive", err.Error())
	case errors.Is(err, registryerrors.ErrVotingExpired):
		writeError(w, http.StatusConflict, "voting_expired", err.Error())
	case errors.Is(err, registryerrors.ErrVotingNotYetExpired):
		writeError(w, http.StatusConflict, "voting_not_yet_expired", err.Error())
	case errors.Is(err, registryerrors.ErrDuplicateVote):
		writeError(w, http.StatusConflict, "duplicate_vote", err.Error())
	case errors.Is(err, registryerrors.ErrUnknownCandidate):
		writeError(w, http.StatusUnprocessableEntity, "unknown_candidate", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, registryhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
