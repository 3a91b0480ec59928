package handler

import (
	"net/http"

	"github.com/edvin/configurator/internal/api/request"
	"github.com/edvin/configurator/internal/api/response"
	"github.com/edvin/configurator/internal/metrics"
	"github.com/edvin/configurator/internal/pricing"
)

type Pricing struct {
	engine *pricing.Engine
}

func NewPricing(engine *pricing.Engine) *Pricing {
	return &Pricing{engine: engine}
}

// Quote godoc
//
//	@Summary	Price a draft
//	@Tags		Pricing
//	@Accept		json
//	@Produce	json
//	@Param		body	body		request.Draft	true	"Draft"
//	@Success	200		{object}	pricing.Quote
//	@Failure	400		{object}	response.ErrorResponse
//	@Failure	422		{object}	response.ErrorResponse
//	@Router		/pricing [post]
func (h *Pricing) Quote(w http.ResponseWriter, r *http.Request) {
	var req request.Draft
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	d := req.ToModel()

	q, err := h.engine.Price(&d)
	if err != nil {
		metrics.QuotesTotal.WithLabelValues(string(d.Kind), string(d.BillingMode), metrics.ResultRejected).Inc()
		writeServiceError(w, r, err)
		return
	}

	metrics.QuotesTotal.WithLabelValues(string(d.Kind), string(d.BillingMode), metrics.ResultOK).Inc()
	response.WriteJSON(w, http.StatusOK, q)
}
