package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/harshpatel5940/webhookauth/internal/models"
	"github.com/harshpatel5940/webhookauth/internal/webhook"
	"github.com/jackc/pgx/v5"
)

type DeliveryResponse struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id,omitempty"`
	ClientIP   string    `json:"client_ip"`
	Outcome    string    `json:"outcome"`
	Reason     string    `json:"reason,omitempty"`
	BodySize   int       `json:"body_size"`
	ReceivedAt time.Time `json:"received_at"`
}

type DeliveriesListResponse struct {
	Deliveries []DeliveryResponse `json:"deliveries"`
	Page       int                `json:"page"`
	PerPage    int                `json:"per_page"`
}

type AllowlistResponse struct {
	Networks []string `json:"networks"`
}

func deliveryToResponse(d *models.Delivery) DeliveryResponse {
	return DeliveryResponse{
		ID:         d.ID.String(),
		RequestID:  d.RequestID,
		ClientIP:   d.ClientIP,
		Outcome:    string(d.Outcome),
		Reason:     d.Reason,
		BodySize:   d.BodySize,
		ReceivedAt: d.ReceivedAt,
	}
}

func (h *Handler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pagination := h.getPagination(r)

	deliveries, err := h.store.List(ctx, pagination.PerPage, pagination.Offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list deliveries")
		h.respondError(w, http.StatusInternalServerError, "failed to list deliveries")
		return
	}

	response := DeliveriesListResponse{
		Deliveries: make([]DeliveryResponse, 0, len(deliveries)),
		Page:       pagination.Page,
		PerPage:    pagination.PerPage,
	}
	for _, d := range deliveries {
		response.Deliveries = append(response.Deliveries, deliveryToResponse(d))
	}

	h.respondJSON(w, http.StatusOK, response)
}

func (h *Handler) GetDelivery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid delivery ID")
		return
	}

	delivery, err := h.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.respondError(w, http.StatusNotFound, "delivery not found")
			return
		}
		h.logger.Error().Err(err).Str("id", id.String()).Msg("failed to get delivery")
		h.respondError(w, http.StatusInternalServerError, "failed to get delivery")
		return
	}

	h.respondJSON(w, http.StatusOK, deliveryToResponse(delivery))
}

func (h *Handler) GetAllowlist(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, AllowlistResponse{Networks: webhook.DefaultNetworks()})
}
