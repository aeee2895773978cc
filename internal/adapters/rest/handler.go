package rest

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ewilliams-labs/moodify/internal/core/ports"
	"github.com/ewilliams-labs/moodify/internal/core/services"
	"github.com/ewilliams-labs/moodify/internal/logging"
)

const (
	defaultMaxRecommendations = 20
	readyTimeout              = 2 * time.Second
)

// Handler manages the HTTP interface for our application.
type Handler struct {
	chat        *services.Chat
	recommender ports.Recommender
	history     ports.HistoryRepository

	corsOrigins        []string
	maxRecommendations int
	ready              Pinger

	router   chi.Router
	validate *validator.Validate
}

// Pinger reports whether a dependency can serve requests.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Option func(*Handler)

// WithReadiness makes GET /ready fail while p is unhealthy.
func WithReadiness(p Pinger) Option {
	return func(h *Handler) { h.ready = p }
}

// WithCORSOrigins sets the allowed browser origins. Defaults to any.
func WithCORSOrigins(origins []string) Option {
	return func(h *Handler) {
		if len(origins) > 0 {
			h.corsOrigins = origins
		}
	}
}

// WithMaxRecommendations caps the count accepted by POST /recommendations.
func WithMaxRecommendations(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxRecommendations = n
		}
	}
}

// NewHandler initializes the HTTP adapter and sets up routes. history may
// be nil, in which case the history endpoints answer 501.
func NewHandler(chat *services.Chat, recommender ports.Recommender, history ports.HistoryRepository, opts ...Option) *Handler {
	h := &Handler{
		chat:               chat,
		recommender:        recommender,
		history:            history,
		corsOrigins:        []string{"*"},
		maxRecommendations: defaultMaxRecommendations,
		validate:           newValidator(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/moods", h.ListMoods)

	r.Post("/sessions", h.StartSession)
	r.Post("/sessions/turn", h.SessionTurn)
	r.Post("/sessions/finish", h.FinishSession)

	r.Post("/recommendations", h.Recommend)

	r.Get("/users/{userID}/history", h.UserHistory)
	r.Get("/users/{userID}/conversations", h.UserConversations)

	h.router = r
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Moodify is live"})
}

// ReadyCheck reports whether the backing store is reachable.
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := h.ready.Ping(ctx); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("readiness check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// newValidator reports field errors by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
