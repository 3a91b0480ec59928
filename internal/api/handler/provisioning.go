package handler

import (
	"net/http"

	"github.com/edvin/configurator/internal/api/request"
	"github.com/edvin/configurator/internal/api/response"
	"github.com/edvin/configurator/internal/core"
)

type Provisioning struct {
	svc *core.ProvisionService
}

func NewProvisioning(svc *core.ProvisionService) *Provisioning {
	return &Provisioning{svc: svc}
}

// Validate godoc
//
//	@Summary		Validate a draft
//	@Description	Always 200 for a well-formed draft; the result lists every issue found.
//	@Tags			Provisioning
//	@Accept			json
//	@Produce		json
//	@Param			body	body		request.Draft	true	"Draft"
//	@Success		200		{object}	core.ValidationResult
//	@Router			/validate [post]
func (h *Provisioning) Validate(w http.ResponseWriter, r *http.Request) {
	var req request.Draft
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	d := req.ToModel()

	res, err := h.svc.Validate(r.Context(), &d)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, res)
}

// Names godoc
//
//	@Summary	Seed one name per unit for a bulk configuration
//	@Tags		Provisioning
//	@Accept		json
//	@Produce	json
//	@Param		body	body		request.Draft	true	"Draft"
//	@Success	200		{object}	map[string][]string
//	@Failure	422		{object}	response.IssuesResponse
//	@Router		/provisioning/names [post]
func (h *Provisioning) Names(w http.ResponseWriter, r *http.Request) {
	var req request.Draft
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	d := req.ToModel()

	res, err := h.svc.Validate(r.Context(), &d)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := res.Err(); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string][]string{"names": h.svc.SeedNames(&d)})
}
