package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/harshpatel5940/webhookauth/internal/config"
	"github.com/harshpatel5940/webhookauth/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRecorder struct {
	mu         sync.Mutex
	deliveries []*models.Delivery
	err        error
}

func (m *mockRecorder) Create(_ context.Context, d *models.Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries = append(m.deliveries, d)
	return m.err
}

func testConfig() *config.Config {
	return &config.Config{
		WebhookSecretKey: "secret",
		CheckClientIP:    true,
		MaxBodySize:      config.DefaultMaxBodySize,
	}
}

func newTestHandler(cfg *config.Config, recorder DeliveryRecorder) *Handler {
	return NewHandler(cfg, recorder, zerolog.New(io.Discard))
}

func webhookRequest(remoteAddr, body, authorization string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.RemoteAddr = remoteAddr
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandler_Accepted(t *testing.T) {
	recorder := &mockRecorder{}
	h := newTestHandler(testConfig(), recorder)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, webhookRequest(allowedIP+":40000", "payload", "Signature "+payloadSecretSignature))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	require.Len(t, recorder.deliveries, 1)
	d := recorder.deliveries[0]
	assert.Equal(t, models.OutcomeAccepted, d.Outcome)
	assert.Equal(t, allowedIP, d.ClientIP)
	assert.Empty(t, d.Reason)
	assert.Equal(t, len("payload"), d.BodySize)
	assert.False(t, d.ReceivedAt.IsZero())
}

func TestHandler_InvalidClientIP(t *testing.T) {
	recorder := &mockRecorder{}
	h := newTestHandler(testConfig(), recorder)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, webhookRequest(disallowedIP+":40000", "payload", "Signature "+payloadSecretSignature))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, CodeInvalidClientIP, resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "185.30.")

	require.Len(t, recorder.deliveries, 1)
	assert.Equal(t, models.OutcomeInvalidClientIP, recorder.deliveries[0].Outcome)
	assert.Equal(t, "invalid_client_ip", recorder.deliveries[0].Reason)
}

func TestHandler_ClientIPCheckDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.CheckClientIP = false
	h := newTestHandler(cfg, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, webhookRequest(disallowedIP+":40000", "payload", "Signature "+payloadSecretSignature))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandler_InvalidSignature(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		authorization string
		wantReason    string
	}{
		{"missing header", "payload", "", "header_not_found"},
		{"malformed header", "payload", "Signature nothex", "signature_not_found"},
		{"mismatch", "payload-tampered", "Signature " + payloadSecretSignature, "signature_mismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &mockRecorder{}
			h := newTestHandler(testConfig(), recorder)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, webhookRequest(allowedIP+":40000", tt.body, tt.authorization))

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			raw := rec.Body.String()
			assert.NotContains(t, raw, Sign([]byte(tt.body), "secret"))
			assert.NotContains(t, raw, "secret")

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal([]byte(raw), &resp))
			assert.Equal(t, CodeInvalidSignature, resp.Error.Code)
			assert.Equal(t, "Invalid signature", resp.Error.Message)

			require.Len(t, recorder.deliveries, 1)
			assert.Equal(t, models.OutcomeInvalidSignature, recorder.deliveries[0].Outcome)
			assert.Equal(t, tt.wantReason, recorder.deliveries[0].Reason)
		})
	}
}

func TestHandler_TroubleshootingURLInMessage(t *testing.T) {
	cfg := testConfig()
	cfg.TroubleshootingURL = "https://merchant.example/webhooks#troubleshooting"
	h := newTestHandler(cfg, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, webhookRequest(allowedIP+":40000", "payload", ""))

	resp := decodeError(t, rec)
	assert.Equal(t, "Invalid signature. See https://merchant.example/webhooks#troubleshooting", resp.Error.Message)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	recorder := &mockRecorder{}
	h := newTestHandler(testConfig(), recorder)

	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Empty(t, recorder.deliveries)
}

func TestHandler_BodyTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBodySize = 16
	recorder := &mockRecorder{}
	h := newTestHandler(cfg, recorder)

	body := strings.Repeat("a", 17)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, webhookRequest(allowedIP+":40000", body, FormatAuthorization(Sign([]byte(body), "secret"))))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, recorder.deliveries)
}

func TestHandler_BodyAtLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBodySize = 16
	h := newTestHandler(cfg, nil)

	body := strings.Repeat("a", 16)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, webhookRequest(allowedIP+":40000", body, FormatAuthorization(Sign([]byte(body), "secret"))))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandler_BodyPreservedBitExact(t *testing.T) {
	h := newTestHandler(testConfig(), nil)

	body := "{\"a\": 1,\r\n \"b\":\t\"é\"}\n"
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte(body)))
	req.RemoteAddr = allowedIP + ":40000"
	req.Header.Set("Authorization", FormatAuthorization(Sign([]byte(body), "secret")))
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandler_RecorderFailureDoesNotChangeResponse(t *testing.T) {
	recorder := &mockRecorder{err: errors.New("database unavailable")}
	h := newTestHandler(testConfig(), recorder)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, webhookRequest(allowedIP+":40000", "payload", "Signature "+payloadSecretSignature))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, recorder.deliveries, 1)
}

func TestHandler_FailureLogMasksSecrets(t *testing.T) {
	var logs bytes.Buffer
	cfg := testConfig()
	cfg.WebhookSecretKey = "merchant-key-do-not-log"
	h := NewHandler(cfg, nil, zerolog.New(&logs))

	body := `{"id":"tx-1"}`
	clientSignature := strings.Repeat("a", 40)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, webhookRequest(allowedIP+":40000", body, FormatAuthorization(clientSignature)))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	out := logs.String()
	assert.Contains(t, out, "signature_mismatch")
	assert.NotContains(t, out, clientSignature)
	assert.NotContains(t, out, cfg.WebhookSecretKey)
	assert.NotContains(t, out, Sign([]byte(body), cfg.WebhookSecretKey))
}
