// Package pricing derives the monthly and billing-mode-adjusted cost of a
// configuration draft from the catalog. Everything here is pure: the same
// draft and catalog always yield the same quote.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/edvin/configurator/internal/catalog"
	"github.com/edvin/configurator/internal/model"
)

var (
	ErrBillingModeNotAllowed  = errors.New("billing mode not allowed for resource kind")
	ErrRuntimeHoursOutOfRange = errors.New("expected monthly runtime hours out of range")
	ErrInvalidSliceCount      = errors.New("gpu slice count not offered")
	ErrGPUSelection           = errors.New("gpu selection must name either a bundle or a slice count")
	ErrNegativeQuantity       = errors.New("quantity must not be negative")
	ErrUnknownVariant         = errors.New("unknown variant")
	ErrMissingSizing          = errors.New("sizing for resource kind is missing")
)

var referenceMonth = decimal.NewFromInt(model.ReferenceMonthHours)

// Component names used on quote line items.
const (
	ComponentCompute        = "compute"
	ComponentGPU            = "gpu"
	ComponentCPU            = "cpu"
	ComponentRAM            = "ram"
	ComponentFlashStorage   = "flash_storage"
	ComponentReadyPlan      = "ready_plan"
	ComponentStaticIP       = "static_ip"
	ComponentObjectStorage  = "object_storage"
	ComponentAdvancedBackup = "advanced_backup"
	ComponentFlashDisk      = "flash_disk"
)

type LineItem struct {
	Component   string      `json:"component"`
	Description string      `json:"description"`
	Quantity    int         `json:"quantity"`
	UnitPrice   model.Money `json:"unit_price"`
	Amount      model.Money `json:"amount"`
}

// Quote is the priced view of a draft. UnitMonthlySubtotal is always the
// full-month figure for one unit; EffectiveCost applies the billing mode.
type Quote struct {
	Kind                model.ResourceKind      `json:"resource_kind"`
	BillingMode         model.BillingMode       `json:"billing_mode"`
	Currency            model.Currency          `json:"currency"`
	LineItems           []LineItem              `json:"line_items"`
	UnitMonthlySubtotal model.Money             `json:"unit_monthly_subtotal"`
	EffectiveCost       model.Money             `json:"effective_cost"`
	HourlyRate          *model.Money            `json:"hourly_rate,omitempty"`
	RuntimeHours        int                     `json:"runtime_hours,omitempty"`
	Term                *model.SubscriptionTerm `json:"subscription_term,omitempty"`
	Quantity            int                     `json:"quantity"`
	GrandTotal          model.Money             `json:"grand_total"`
}

type Engine struct {
	catalog *catalog.Catalog
}

func NewEngine(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c}
}

// Catalog returns the catalog the engine prices against.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Price computes the quote for d. It never substitutes a zero price for an
// unknown catalog reference; those fail with catalog.ErrUnknownEntry.
func (e *Engine) Price(d *model.Draft) (*Quote, error) {
	if !d.BillingMode.Valid() {
		return nil, fmt.Errorf("billing mode %q: %w", d.BillingMode, ErrUnknownVariant)
	}
	if !d.BillingMode.AllowedFor(d.Kind) {
		return nil, fmt.Errorf("%s with %s: %w", d.BillingMode, d.Kind, ErrBillingModeNotAllowed)
	}

	var items []LineItem
	var err error
	switch d.Kind {
	case model.ResourceKindInstance:
		items, err = e.instanceItems(d)
	case model.ResourceKindVirtualDataCenter:
		items, err = e.virtualDataCenterItems(d)
	case model.ResourceKindReadyPlan:
		items, err = e.readyPlanItems(d)
	default:
		err = fmt.Errorf("resource kind %q: %w", d.Kind, ErrUnknownVariant)
	}
	if err != nil {
		return nil, err
	}

	addOns, err := e.addOnItems(&d.AddOns)
	if err != nil {
		return nil, err
	}
	items = append(items, addOns...)

	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Amount)
	}

	q := &Quote{
		Kind:                d.Kind,
		BillingMode:         d.BillingMode,
		Currency:            model.CurrencyUSD,
		LineItems:           items,
		UnitMonthlySubtotal: subtotal,
		Quantity:            d.Quantity,
	}

	switch d.BillingMode {
	case model.BillingModeSubscription:
		term := d.SubscriptionTerm()
		q.Term = &term
		q.EffectiveCost = subtotal
	case model.BillingModePAYGWallet:
		hours := d.ExpectedMonthlyRuntimeHours
		if hours < 1 || hours > model.ReferenceMonthHours {
			return nil, fmt.Errorf("%d hours: %w", hours, ErrRuntimeHoursOutOfRange)
		}
		hourly := subtotal.Div(referenceMonth)
		q.HourlyRate = &hourly
		q.RuntimeHours = hours
		// Multiply before dividing so 730 hours reproduces the subtotal exactly.
		q.EffectiveCost = subtotal.Mul(decimal.NewFromInt(int64(hours))).Div(referenceMonth)
	}

	q.GrandTotal = q.EffectiveCost.Mul(decimal.NewFromInt(int64(d.Quantity)))
	return q, nil
}

func (e *Engine) instanceItems(d *model.Draft) ([]LineItem, error) {
	spec := d.Instance
	if spec == nil {
		return nil, fmt.Errorf("%s: %w", d.Kind, ErrMissingSizing)
	}
	if !spec.Tier.Valid() {
		return nil, fmt.Errorf("tier %q: %w", spec.Tier, ErrUnknownVariant)
	}

	tmpl, err := e.catalog.ComputeTemplate(spec.TemplateID)
	if err != nil {
		return nil, err
	}
	items := []LineItem{{
		Component:   ComponentCompute,
		Description: fmt.Sprintf("%s (%d vCPU, %d GB RAM, %d GB boot disk)", tmpl.ID, tmpl.CPUCores, tmpl.RAMGB, tmpl.BootDiskGB),
		Quantity:    1,
		UnitPrice:   tmpl.MonthlyPrice,
		Amount:      tmpl.MonthlyPrice,
	}}

	// GPU fields only count on the premium tier, whatever the caller sent.
	if !d.GPUEnabled() {
		return items, nil
	}

	gpu := spec.GPU
	switch {
	case gpu.BundleID != "" && gpu.SliceCount != 0:
		return nil, ErrGPUSelection
	case gpu.BundleID != "":
		b, err := e.catalog.GPUBundle(gpu.BundleID)
		if err != nil {
			return nil, err
		}
		items = append(items, LineItem{
			Component:   ComponentGPU,
			Description: b.Label,
			Quantity:    1,
			UnitPrice:   b.MonthlyPrice,
			Amount:      b.MonthlyPrice,
		})
	case gpu.SliceCount != 0:
		unit := e.catalog.GPUSliceUnit
		if !unit.Allows(gpu.SliceCount) {
			return nil, fmt.Errorf("%d slices (allowed %v): %w", gpu.SliceCount, unit.SlicesAllowed, ErrInvalidSliceCount)
		}
		items = append(items, linear(ComponentGPU, "GPU slices", gpu.SliceCount, unit.PricePerSlicePerMonth))
	}
	return items, nil
}

func (e *Engine) virtualDataCenterItems(d *model.Draft) ([]LineItem, error) {
	spec := d.VirtualDataCenter
	if spec == nil {
		return nil, fmt.Errorf("%s: %w", d.Kind, ErrMissingSizing)
	}
	if spec.CPUCores < 0 || spec.RAMGB < 0 || spec.FlashStorageGB < 0 {
		return nil, fmt.Errorf("virtual data center sizing: %w", ErrNegativeQuantity)
	}
	r := e.catalog.Rates
	return nonZero(
		linear(ComponentCPU, "vCPU cores", spec.CPUCores, r.CPUCoreMonthly),
		linear(ComponentRAM, "RAM (GB)", spec.RAMGB, r.RAMGBMonthly),
		linear(ComponentFlashStorage, "Flash storage (GB)", spec.FlashStorageGB, r.FlashGBMonthly),
	), nil
}

func (e *Engine) readyPlanItems(d *model.Draft) ([]LineItem, error) {
	if d.ReadyPlan == nil {
		return nil, fmt.Errorf("%s: %w", d.Kind, ErrMissingSizing)
	}
	p, err := e.catalog.ReadyPlan(d.ReadyPlan.PlanID)
	if err != nil {
		return nil, err
	}
	return []LineItem{{
		Component:   ComponentReadyPlan,
		Description: p.Name,
		Quantity:    1,
		UnitPrice:   p.MonthlyPrice,
		Amount:      p.MonthlyPrice,
	}}, nil
}

func (e *Engine) addOnItems(a *model.AddOns) ([]LineItem, error) {
	if a.StaticIPCount < 0 || a.ObjectStorageGB < 0 || a.AdvancedBackupGB < 0 {
		return nil, fmt.Errorf("add-ons: %w", ErrNegativeQuantity)
	}
	r := e.catalog.Rates
	items := []LineItem{
		linear(ComponentStaticIP, "Static IPs", a.StaticIPCount, r.StaticIPMonthly),
		linear(ComponentObjectStorage, "Object storage (GB)", a.ObjectStorageGB, r.ObjectStorageGBMonthly),
		linear(ComponentAdvancedBackup, "Advanced backup (GB)", a.AdvancedBackupGB, r.AdvancedBackupGBMonthly),
	}

	if fd := a.FlashDisk; fd != nil && fd.Enabled {
		if fd.SizeGB < 0 {
			return nil, fmt.Errorf("flash disk: %w", ErrNegativeQuantity)
		}
		var rate model.Money
		switch fd.Type {
		case model.FlashDiskSSD:
			rate = r.FlashDiskSSDGBMonthly
		case model.FlashDiskNVMe:
			rate = r.FlashDiskNVMeGBMonthly
		default:
			return nil, fmt.Errorf("flash disk type %q: %w", fd.Type, ErrUnknownVariant)
		}
		items = append(items, linear(ComponentFlashDisk, fmt.Sprintf("Flash disk %s (GB)", fd.Type), fd.SizeGB, rate))
	}
	return nonZero(items...), nil
}

func linear(component, description string, qty int, unitPrice model.Money) LineItem {
	return LineItem{
		Component:   component,
		Description: description,
		Quantity:    qty,
		UnitPrice:   unitPrice,
		Amount:      unitPrice.Mul(decimal.NewFromInt(int64(qty))),
	}
}

func nonZero(items ...LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		if it.Quantity != 0 {
			out = append(out, it)
		}
	}
	return out
}
