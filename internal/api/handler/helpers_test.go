package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edvin/configurator/internal/catalog"
	"github.com/edvin/configurator/internal/core"
	"github.com/edvin/configurator/internal/pricing"
	"github.com/edvin/configurator/internal/store"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &core.ValidationError{Issues: []core.ValidationIssue{{Code: core.CodeMissingName}}}, http.StatusUnprocessableEntity},
		{"unknown entry", fmt.Errorf("compute template %q: %w", "x", catalog.ErrUnknownEntry), http.StatusUnprocessableEntity},
		{"slice count", pricing.ErrInvalidSliceCount, http.StatusUnprocessableEntity},
		{"not found", fmt.Errorf("get: %w", core.ErrConfigurationNotFound), http.StatusNotFound},
		{"transition", core.ErrInvalidTransition, http.StatusConflict},
		{"conflict", fmt.Errorf("commit: %w", store.ErrVersionConflict), http.StatusConflict},
		{"deadline", fmt.Errorf("commit: %w", context.DeadlineExceeded), http.StatusServiceUnavailable},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, newRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestWriteServiceError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, newRequest(http.MethodGet, "/", nil), errors.New("password=hunter2"))

	assert.Equal(t, "internal error", decodeErrorResponse(rec)["error"])
}
