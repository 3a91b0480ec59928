package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/configurator/internal/api/request"
	"github.com/edvin/configurator/internal/api/response"
	"github.com/edvin/configurator/internal/core"
)

type Configuration struct {
	svc *core.ProvisionService
}

func NewConfiguration(svc *core.ProvisionService) *Configuration {
	return &Configuration{svc: svc}
}

// Create godoc
//
//	@Summary		Commit a new configuration
//	@Description	Writes one record per name. Without names, a single unit uses the draft name and bulk drafts use the seeded names.
//	@Tags			Configurations
//	@Accept			json
//	@Produce		json
//	@Param			body	body		request.CreateConfiguration	true	"Draft and names"
//	@Success		201		{object}	response.ListResponse
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		422		{object}	response.IssuesResponse
//	@Router			/configurations [post]
func (h *Configuration) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateConfiguration
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	d := req.Draft.ToModel()
	if d.Quantity <= 1 && len(req.Names) > 0 {
		records, err := h.svc.Commit(r.Context(), core.CommitRequest{Draft: d, Names: req.Names})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		response.WriteList(w, http.StatusCreated, records, len(records))
		return
	}

	session := core.NewNamingSession(h.svc, d, "")
	records, err := session.Submit(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if session.State() == core.NamingStateNaming {
		if len(req.Names) > 0 {
			if err := session.SetNames(req.Names); err != nil {
				writeServiceError(w, r, err)
				return
			}
		}
		if records, err = session.Confirm(r.Context()); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	response.WriteList(w, http.StatusCreated, records, len(records))
}

// Update godoc
//
//	@Summary	Replace a configuration with an edited draft
//	@Tags		Configurations
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string							true	"Configuration ID"
//	@Param		body	body		request.UpdateConfiguration	true	"Draft"
//	@Success	200		{object}	model.ProvisionedConfiguration
//	@Failure	404		{object}	response.ErrorResponse
//	@Failure	422		{object}	response.IssuesResponse
//	@Router		/configurations/{id} [put]
func (h *Configuration) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateConfiguration
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	d := req.Draft.ToModel()
	if req.Name != "" {
		d.Name = req.Name
	}

	records, err := core.NewNamingSession(h.svc, d, id).Submit(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, records[0])
}

// List godoc
//
//	@Summary	List configurations
//	@Tags		Configurations
//	@Produce	json
//	@Param		limit			query		int		false	"Page size"
//	@Param		cursor			query		string	false	"ID of the last item of the previous page"
//	@Param		search			query		string	false	"Name substring"
//	@Param		resource_kind	query		string	false	"Resource kind"
//	@Param		billing_mode	query		string	false	"Billing mode"
//	@Success	200				{object}	response.PaginatedResponse
//	@Failure	400				{object}	response.ErrorResponse
//	@Router		/configurations [get]
func (h *Configuration) List(w http.ResponseWriter, r *http.Request) {
	params, err := request.ParseListParams(r)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.svc.Find(r.Context(), core.ConfigurationFilter{
		Kind:        params.ResourceKind,
		BillingMode: params.BillingMode,
		Search:      params.Search,
		Limit:       params.Limit,
		Cursor:      params.Cursor,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WritePaginated(w, http.StatusOK, page.Items, page.NextCursor, page.HasMore)
}

// Get godoc
//
//	@Summary	Get a configuration
//	@Tags		Configurations
//	@Produce	json
//	@Param		id	path		string	true	"Configuration ID"
//	@Success	200	{object}	model.ProvisionedConfiguration
//	@Failure	404	{object}	response.ErrorResponse
//	@Router		/configurations/{id} [get]
func (h *Configuration) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, cfg)
}
