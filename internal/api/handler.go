package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/harshpatel5940/webhookauth/internal/models"
	"github.com/rs/zerolog"
)

// DeliveryReader is the read side of the delivery audit log.
type DeliveryReader interface {
	List(ctx context.Context, limit, offset int) ([]*models.Delivery, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
	CountByOutcome(ctx context.Context) (map[models.Outcome]int, error)
}

type Handler struct {
	store  DeliveryReader
	logger zerolog.Logger
}

func NewHandler(store DeliveryReader, logger zerolog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger.With().Str("component", "api").Logger(),
	}
}

// Router returns a chi router with all API routes
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	// Deliveries
	r.Get("/deliveries", h.ListDeliveries)
	r.Get("/deliveries/{id}", h.GetDelivery)

	// Allowlist
	r.Get("/allowlist", h.GetAllowlist)

	// Stats
	r.Get("/stats", h.GetStats)

	return r
}

// JSON response helpers

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// Pagination helpers

type PaginationParams struct {
	Page    int
	PerPage int
	Offset  int
}

func (h *Handler) getPagination(r *http.Request) PaginationParams {
	page := 1
	perPage := 20

	if p := r.URL.Query().Get("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if pp := r.URL.Query().Get("per_page"); pp != "" {
		if v, err := strconv.Atoi(pp); err == nil && v > 0 && v <= 100 {
			perPage = v
		}
	}

	return PaginationParams{
		Page:    page,
		PerPage: perPage,
		Offset:  (page - 1) * perPage,
	}
}
