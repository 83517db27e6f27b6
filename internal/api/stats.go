package api

import (
	"net/http"
	"time"

	"github.com/harshpatel5940/webhookauth/internal/models"
)

type StatsResponse struct {
	TotalDeliveries     int            `json:"total_deliveries"`
	Accepted            int            `json:"accepted"`
	InvalidClientIP     int            `json:"invalid_client_ip"`
	InvalidSignature    int            `json:"invalid_signature"`
	DeliveriesByOutcome map[string]int `json:"deliveries_by_outcome"`
	GeneratedAt         time.Time      `json:"generated_at"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts, err := h.store.CountByOutcome(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to count deliveries")
		h.respondError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	stats := StatsResponse{
		DeliveriesByOutcome: make(map[string]int, len(counts)),
		GeneratedAt:         time.Now(),
	}
	for outcome, count := range counts {
		stats.DeliveriesByOutcome[string(outcome)] = count
		stats.TotalDeliveries += count
	}
	stats.Accepted = counts[models.OutcomeAccepted]
	stats.InvalidClientIP = counts[models.OutcomeInvalidClientIP]
	stats.InvalidSignature = counts[models.OutcomeInvalidSignature]

	h.respondJSON(w, http.StatusOK, stats)
}
