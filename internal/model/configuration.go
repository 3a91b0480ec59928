package model

import "time"

// ProvisionedConfiguration is one committed unit. Quantity is always 1 in
// the frozen draft; bulk commits produce one record per name.
type ProvisionedConfiguration struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Draft           Draft     `json:"draft"`
	UnitMonthlyCost Money     `json:"unit_monthly_cost"`
	EffectiveCost   Money     `json:"effective_cost"`
	Currency        Currency  `json:"currency"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
