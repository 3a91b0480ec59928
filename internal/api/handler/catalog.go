package handler

import (
	"net/http"

	"github.com/edvin/configurator/internal/api/response"
	"github.com/edvin/configurator/internal/catalog"
)

type Catalog struct {
	cat *catalog.Catalog
}

func NewCatalog(cat *catalog.Catalog) *Catalog {
	return &Catalog{cat: cat}
}

// Get godoc
//
//	@Summary	Full catalog: regions, templates, GPU options, ready plans and add-on rates
//	@Tags		Catalog
//	@Produce	json
//	@Success	200	{object}	catalog.Catalog
//	@Router		/catalog [get]
func (h *Catalog) Get(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, h.cat)
}
