package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/edvin/configurator/internal/api/response"
	"github.com/edvin/configurator/internal/catalog"
	"github.com/edvin/configurator/internal/core"
	"github.com/edvin/configurator/internal/pricing"
	"github.com/edvin/configurator/internal/store"
)

// pricingErrors are caller mistakes reported by the engine.
var pricingErrors = []error{
	catalog.ErrUnknownEntry,
	pricing.ErrBillingModeNotAllowed,
	pricing.ErrRuntimeHoursOutOfRange,
	pricing.ErrInvalidSliceCount,
	pricing.ErrGPUSelection,
	pricing.ErrNegativeQuantity,
	pricing.ErrUnknownVariant,
	pricing.ErrMissingSizing,
}

// writeServiceError maps a service error to a status code and body.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		response.WriteIssues(w, http.StatusUnprocessableEntity, err.Error(), ve.Issues)
		return
	}
	for _, target := range pricingErrors {
		if errors.Is(err, target) {
			response.WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}

	switch {
	case errors.Is(err, core.ErrConfigurationNotFound):
		response.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrInvalidTransition), errors.Is(err, store.ErrVersionConflict):
		response.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		response.WriteError(w, http.StatusServiceUnavailable, err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		response.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
