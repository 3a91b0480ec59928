package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/edvin/configurator/internal/catalog"
	"github.com/edvin/configurator/internal/core"
	"github.com/edvin/configurator/internal/pricing"
	"github.com/edvin/configurator/internal/store"
)

// newRequest creates a new HTTP request with an optional JSON body.
func newRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// newRequestRaw creates a new HTTP request with a raw string body.
func newRequestRaw(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withChiURLParam adds a chi URL parameter to the request context.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeErrorResponse parses the JSON error response body into a map.
func decodeErrorResponse(rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}

// issueCodes returns the codes of an issues response body.
func issueCodes(rec *httptest.ResponseRecorder) []string {
	var body struct {
		Issues []core.ValidationIssue `json:"issues"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	codes := make([]string, 0, len(body.Issues))
	for _, is := range body.Issues {
		codes = append(codes, string(is.Code))
	}
	return codes
}

// newTestServices wires real services over an in-memory store and the
// default catalog.
func newTestServices(t *testing.T, balance string) (*core.Services, *pricing.Engine) {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	engine := pricing.NewEngine(cat)
	blobs := store.NewMemoryStore()
	svcs := core.NewServices(
		engine,
		store.NewConfigurationRepository(blobs, "test"),
		store.NewWalletRepository(blobs, "test"),
		decimal.RequireFromString(balance),
		core.RetryPolicy{Attempts: 3, Timeout: 5 * time.Second},
		zerolog.Nop(),
	)
	return svcs, engine
}

// webDraft is template c4-8 ($40) with two static IPs ($8).
func webDraft() map[string]any {
	return map[string]any{
		"name":          "web",
		"resource_kind": "instance",
		"region":        "eu-central",
		"instance":      map[string]any{"template_id": "c4-8"},
		"add_ons":       map[string]any{"static_ip_count": 2},
	}
}
