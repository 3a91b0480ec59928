package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/edvin/configurator/internal/model"
)

// ConfigurationFilter narrows and pages the configuration list. Zero fields
// match everything; a zero Limit returns all remaining matches.
type ConfigurationFilter struct {
	Kind        model.ResourceKind
	BillingMode model.BillingMode
	Search      string
	Limit       int
	// Cursor is the ID of the last record of the previous page.
	Cursor string
}

func (f ConfigurationFilter) matches(c *model.ProvisionedConfiguration) bool {
	if f.Kind != "" && c.Draft.Kind != f.Kind {
		return false
	}
	if f.BillingMode != "" && c.Draft.BillingMode != f.BillingMode {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

type ConfigurationPage struct {
	Items      []model.ProvisionedConfiguration
	NextCursor string
	HasMore    bool
}

// Find returns one page of configurations in commit order.
func (s *ProvisionService) Find(ctx context.Context, f ConfigurationFilter) (*ConfigurationPage, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	start := 0
	if f.Cursor != "" {
		start = -1
		for i := range items {
			if items[i].ID == f.Cursor {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return nil, fmt.Errorf("cursor %s: %w", f.Cursor, ErrConfigurationNotFound)
		}
	}

	page := &ConfigurationPage{Items: []model.ProvisionedConfiguration{}}
	for i := start; i < len(items); i++ {
		if !f.matches(&items[i]) {
			continue
		}
		if f.Limit > 0 && len(page.Items) == f.Limit {
			page.HasMore = true
			page.NextCursor = page.Items[len(page.Items)-1].ID
			break
		}
		page.Items = append(page.Items, items[i])
	}
	return page, nil
}
