package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchfeed/internal/domain"
	"github.com/kailas-cloud/matchfeed/internal/domain/feed"
	logpkg "github.com/kailas-cloud/matchfeed/internal/logger"
	healthuc "github.com/kailas-cloud/matchfeed/internal/usecase/health"
)

// maxBodyBytes bounds request bodies; a full quiz fits comfortably.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the internal HTTP API.
type Server struct {
	profiles      Profiles
	feeds         Feeds
	swipes        Swipes
	scorer        Scorer
	rebuilds      RebuildEnqueuer
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// Deps groups the services the server delegates to.
type Deps struct {
	Profiles Profiles
	Feeds    Feeds
	Swipes   Swipes
	Scorer   Scorer
	Rebuilds RebuildEnqueuer
	Health   HealthChecker
}

// NewServer creates an HTTP API server.
func NewServer(d Deps, logger *zap.Logger) *Server {
	s := &Server{
		profiles: d.Profiles,
		feeds:    d.Feeds,
		swipes:   d.Swipes,
		scorer:   d.Scorer,
		rebuilds: d.Rebuilds,
		health:   d.Health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUserNotFound, http.StatusNotFound, ErrorCodeUserNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrUnknownView, http.StatusBadRequest, ErrorCodeUnknownView),
		sentinelHandler(domain.ErrSelfInteraction, http.StatusBadRequest, ErrorCodeSelfInteraction),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrQueueUnavailable, http.StatusServiceUnavailable, ErrorCodeQueueUnavailable),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, ErrorCodeStoreUnavailable),
	}
	return s
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1/users/{id}", func(r chi.Router) {
		r.Put("/", s.UpsertUser)
		r.Get("/", s.GetUser)
		r.Post("/answers", s.SubmitAnswers)
		r.Get("/candidates", s.Candidates)
		r.Get("/feed", s.FeedBatch)
		r.Post("/swipes", s.RecordSwipe)
		r.Get("/compatibility/{other}", s.Compatibility)
		r.Post("/pool/rebuild", s.RebuildPool)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})
}

// UpsertUser handles PUT /v1/users/{id}.
func (s *Server) UpsertUser(w http.ResponseWriter, r *http.Request) {
	var req UpsertUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u := &domain.User{
		ID:         chi.URLParam(r, "id"),
		Name:       req.Name,
		Gender:     req.Gender,
		LookingFor: req.LookingFor,
		Location:   req.Location,
		Interests:  req.Interests,
		DNA:        req.DNA,
		Answers:    req.Answers,
		CreatedAt:  req.CreatedAt,
	}
	created, err := s.profiles.Upsert(r.Context(), u)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, UserResponse{User: u, Created: created})
}

// GetUser handles GET /v1/users/{id}.
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.profiles.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{User: u})
}

// SubmitAnswers handles POST /v1/users/{id}/answers.
func (s *Server) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	var req AnswersRequest
	if !decodeBody(w, r, &req) {
		return
	}

	v, err := s.profiles.SubmitAnswers(r.Context(), chi.URLParam(r, "id"), req.Categories)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AnswersResponse{DNA: v})
}

// Candidates handles GET /v1/users/{id}/candidates.
func (s *Server) Candidates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := feed.ParseView(q.Get("view"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	page, ok := queryInt(w, q.Get("page"), "page")
	if !ok {
		return
	}
	limit, ok := queryInt(w, q.Get("limit"), "limit")
	if !ok {
		return
	}

	p, err := s.feeds.CandidatesPage(r.Context(), chi.URLParam(r, "id"), view, page, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := CandidatesResponse{Page: p}
	if p.Exhausted {
		resp.Message = exhaustedMessage
	}
	if p.Cached {
		w.Header().Set("X-Cache", "hit")
	}
	writeJSON(w, http.StatusOK, resp)
}

// FeedBatch handles GET /v1/users/{id}/feed.
func (s *Server) FeedBatch(w http.ResponseWriter, r *http.Request) {
	n, ok := queryInt(w, r.URL.Query().Get("n"), "n")
	if !ok {
		return
	}

	b, err := s.feeds.FeedBatch(r.Context(), chi.URLParam(r, "id"), n)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// RecordSwipe handles POST /v1/users/{id}/swipes.
func (s *Server) RecordSwipe(w http.ResponseWriter, r *http.Request) {
	var req SwipeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	action, err := domain.ParseAction(req.Action)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	sw := domain.Swipe{OwnerID: chi.URLParam(r, "id"), TargetID: req.TargetID, Action: action}
	if err := s.swipes.Record(r.Context(), sw); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, AcceptedResponse{Status: statusQueued})
}

// Compatibility handles GET /v1/users/{id}/compatibility/{other}.
func (s *Server) Compatibility(w http.ResponseWriter, r *http.Request) {
	owner, other := chi.URLParam(r, "id"), chi.URLParam(r, "other")
	d, err := s.scorer.Explain(r.Context(), owner, other)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CompatibilityResponse{OwnerID: owner, OtherID: other, Detail: d})
}

// RebuildPool handles POST /v1/users/{id}/pool/rebuild.
func (s *Server) RebuildPool(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "id")
	if err := domain.ValidateID(owner); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if _, err := s.profiles.Get(r.Context(), owner); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if err := s.rebuilds.EnqueueRebuild(r.Context(), owner); err != nil {
		s.handleDomainError(w, r, fmt.Errorf("%w: %w", domain.ErrQueueUnavailable, err))
		return
	}
	writeJSON(w, http.StatusAccepted, AcceptedResponse{Status: statusQueued})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// queryInt parses an optional integer query parameter. Empty reads as 0.
func queryInt(w http.ResponseWriter, raw, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "query parameter "+name+" must be an integer")
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message without exposing internals.
// Validation errors keep their detail since it only describes the input.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrUnknownView) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrUserNotFound,
		domain.ErrNotFound,
		domain.ErrSelfInteraction,
		domain.ErrQueueUnavailable,
		domain.ErrStoreUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(),
		s.logger.With(zap.String("request_id", chiMiddleware.GetReqID(r.Context()))))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
