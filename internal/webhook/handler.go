package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/harshpatel5940/webhookauth/internal/config"
	"github.com/harshpatel5940/webhookauth/internal/logging"
	"github.com/harshpatel5940/webhookauth/internal/metrics"
	"github.com/harshpatel5940/webhookauth/internal/models"
	"github.com/rs/zerolog"
)

// DeliveryRecorder persists the outcome of each webhook attempt.
type DeliveryRecorder interface {
	Create(ctx context.Context, d *models.Delivery) error
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type Handler struct {
	cfg      *config.Config
	auth     *Authenticator
	recorder DeliveryRecorder
	logger   zerolog.Logger
}

// NewHandler builds the webhook endpoint. recorder may be nil when no audit
// store is configured.
func NewHandler(cfg *config.Config, recorder DeliveryRecorder, logger zerolog.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		auth:     New(cfg.WebhookSecretKey),
		recorder: recorder,
		logger:   logger.With().Str("component", "webhook").Logger(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	receiveTime := start

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.cfg.MaxBodySize))
	defer r.Body.Close()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.logger.Warn().Int64("limit", maxErr.Limit).Msg("webhook body too large")
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.logger.Error().Err(err).Msg("failed to read request body")
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	req := FromHTTPRequest(r, body)
	requestID := middleware.GetReqID(r.Context())
	logger := h.logger.With().
		Str("request_id", requestID).
		Str("client_ip", req.ClientIP()).
		Logger()

	authErr := h.auth.AuthenticateRequest(req, h.cfg.CheckClientIP)

	delivery := &models.Delivery{
		RequestID:  requestID,
		ClientIP:   req.ClientIP(),
		Outcome:    outcome(authErr),
		Reason:     Reason(authErr),
		BodySize:   len(body),
		ReceivedAt: receiveTime,
	}
	h.record(r.Context(), delivery, logger)

	if authErr != nil {
		metrics.ObserveAuth("fail", delivery.Reason, time.Since(start))
		logger.Warn().
			Str("code", Code(authErr)).
			Str("reason", delivery.Reason).
			Str("authorization", logging.Redact(req.Headers()[AuthorizationHeader])).
			Int("body_len", len(body)).
			Msg("webhook authentication failed")
		h.respondError(w, authErr)
		return
	}

	metrics.ObserveAuth("ok", "", time.Since(start))
	logger.Info().
		Int("body_len", len(body)).
		Msg("webhook authenticated")

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) record(ctx context.Context, d *models.Delivery, logger zerolog.Logger) {
	if h.recorder == nil {
		return
	}
	if err := h.recorder.Create(ctx, d); err != nil {
		metrics.IncDeliveryRecordError()
		logger.Error().Err(err).Msg("failed to record webhook delivery")
	}
}

func outcome(err error) models.Outcome {
	switch {
	case err == nil:
		return models.OutcomeAccepted
	case errors.Is(err, ErrInvalidClientIP):
		return models.OutcomeInvalidClientIP
	default:
		return models.OutcomeInvalidSignature
	}
}

// respondError replies with a generic message; the detailed error (which may
// quote the client signature or the allowlist) stays in the logs.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := http.StatusUnauthorized
	message := "Invalid signature"
	if errors.Is(err, ErrInvalidClientIP) {
		status = http.StatusForbidden
		message = "Client IP address is not allowed"
	}
	if h.cfg.TroubleshootingURL != "" {
		message += ". See " + h.cfg.TroubleshootingURL
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorBody{Code: Code(err), Message: message},
	}); encErr != nil {
		h.logger.Error().Err(encErr).Msg("failed to encode error response")
	}
}
