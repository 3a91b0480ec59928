package request

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/edvin/configurator/internal/model"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ListParams holds paging and filter parameters for the configuration list.
// Cursor is the ID of the last item of the previous page.
type ListParams struct {
	Limit        int
	Cursor       string
	Search       string
	ResourceKind model.ResourceKind
	BillingMode  model.BillingMode
}

// ParseListParams extracts list parameters from the query string. A
// malformed limit falls back to the default; unknown enum values are errors.
func ParseListParams(r *http.Request) (ListParams, error) {
	q := r.URL.Query()
	p := ListParams{
		Limit:        DefaultLimit,
		Cursor:       q.Get("cursor"),
		Search:       q.Get("search"),
		ResourceKind: model.ResourceKind(q.Get("resource_kind")),
		BillingMode:  model.BillingMode(q.Get("billing_mode")),
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			p.Limit = limit
		}
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	if p.ResourceKind != "" && !p.ResourceKind.Valid() {
		return p, fmt.Errorf("unknown resource_kind %q", p.ResourceKind)
	}
	if p.BillingMode != "" && !p.BillingMode.Valid() {
		return p, fmt.Errorf("unknown billing_mode %q", p.BillingMode)
	}
	return p, nil
}
