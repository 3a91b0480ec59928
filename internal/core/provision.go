package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"

	"github.com/edvin/configurator/internal/catalog"
	"github.com/edvin/configurator/internal/metrics"
	"github.com/edvin/configurator/internal/model"
	"github.com/edvin/configurator/internal/platform"
	"github.com/edvin/configurator/internal/pricing"
	"github.com/edvin/configurator/internal/store"
)

// ConfigurationStore persists the configuration list.
// *store.ConfigurationRepository satisfies it.
type ConfigurationStore interface {
	Read(ctx context.Context) ([]model.ProvisionedConfiguration, string, error)
	Write(ctx context.Context, items []model.ProvisionedConfiguration, version string) (string, error)
}

// CommitRequest turns a draft into persisted records. Names holds one name
// per unit for new configurations. EditingID selects the record to replace.
type CommitRequest struct {
	Draft     model.Draft
	Names     []string
	EditingID string
}

func (r CommitRequest) mode() string {
	if r.EditingID != "" {
		return "edit"
	}
	return "new"
}

// ProvisionService validates drafts and commits them into the persisted
// configuration list.
type ProvisionService struct {
	engine  *pricing.Engine
	configs ConfigurationStore
	wallet  *WalletService
	retry   RetryPolicy
	logger  zerolog.Logger
	now     func() time.Time
	newID   func() string
}

func NewProvisionService(engine *pricing.Engine, configs ConfigurationStore, wallet *WalletService, policy RetryPolicy, logger zerolog.Logger) *ProvisionService {
	return &ProvisionService{
		engine:  engine,
		configs: configs,
		wallet:  wallet,
		retry:   policy,
		logger:  logger.With().Str("component", "provision").Logger(),
		now:     time.Now,
		newID:   platform.NewID,
	}
}

// Validate checks every draft invariant and, for pay-as-you-go drafts, the
// wallet balance. Issues are collected, not short-circuited. The error is
// only set when the wallet could not be read.
func (s *ProvisionService) Validate(ctx context.Context, d *model.Draft) (*ValidationResult, error) {
	res := newValidationResult()
	s.checkStructure(d, res)

	// Only price a structurally sound draft; the engine would just repeat
	// the problems already reported.
	if res.Valid {
		q, err := s.engine.Price(d)
		if err != nil {
			addPricingIssue(res, err)
		} else if d.BillingMode == model.BillingModePAYGWallet {
			w, err := s.wallet.Balance(ctx)
			if err != nil {
				return nil, fmt.Errorf("validate draft %q: %w", d.Name, err)
			}
			if q.GrandTotal.GreaterThan(w.Balance) {
				res.add(CodeInsufficientFunds, "billing_mode",
					"projected cost %s %s exceeds wallet balance %s", q.GrandTotal.StringFixed(2), q.Currency, w.Balance.StringFixed(2))
			}
		}
	}

	for _, is := range res.Issues {
		metrics.ValidationIssuesTotal.WithLabelValues(string(is.Code)).Inc()
	}
	return res, nil
}

func (s *ProvisionService) checkStructure(d *model.Draft, res *ValidationResult) {
	cat := s.engine.Catalog()

	if strings.TrimSpace(d.Name) == "" {
		res.add(CodeMissingName, "name", "name is required")
	}
	if d.Quantity < 1 {
		res.add(CodeInvalidQuantity, "quantity", "quantity must be at least 1, got %d", d.Quantity)
	}
	if d.RegionID == "" {
		res.add(CodeUnknownCatalogEntry, "region", "region is required")
	} else if _, err := cat.Region(d.RegionID); err != nil {
		res.add(CodeUnknownCatalogEntry, "region", "unknown region %q", d.RegionID)
	}

	kindOK := d.Kind.Valid()
	if !kindOK {
		res.add(CodeUnknownVariant, "resource_kind", "unknown resource kind %q", d.Kind)
	}
	modeOK := d.BillingMode.Valid()
	if !modeOK {
		res.add(CodeUnknownVariant, "billing_mode", "unknown billing mode %q", d.BillingMode)
	}
	if kindOK && modeOK && !d.BillingMode.AllowedFor(d.Kind) {
		res.add(CodeInvalidKindForBillingMode, "billing_mode", "%s billing is not available for %s", d.BillingMode, d.Kind)
	}

	switch d.Kind {
	case model.ResourceKindInstance:
		s.checkInstance(d, res)
	case model.ResourceKindVirtualDataCenter:
		s.checkVirtualDataCenter(d, res)
	case model.ResourceKindReadyPlan:
		s.checkReadyPlan(d, res)
	}
	if kindOK && hasForeignSizing(d) {
		res.add(CodeInvalidSizing, "resource_kind", "sizing for a different resource kind is set")
	}

	s.checkAddOns(&d.AddOns, res)

	switch d.BillingMode {
	case model.BillingModeSubscription:
		if t := d.Term; t != nil {
			if t.Value < 1 {
				res.add(CodeInvalidTerm, "subscription_term.value", "term must be at least 1, got %d", t.Value)
			}
			if !t.Unit.Valid() {
				res.add(CodeUnknownVariant, "subscription_term.unit", "unknown term unit %q", t.Unit)
			}
		}
	case model.BillingModePAYGWallet:
		h := d.ExpectedMonthlyRuntimeHours
		if h < 1 || h > model.ReferenceMonthHours {
			res.add(CodeInvalidRuntimeHours, "expected_monthly_runtime_hours",
				"expected monthly runtime must be between 1 and %d hours, got %d", model.ReferenceMonthHours, h)
		}
	}
}

// hasForeignSizing reports whether a sizing block other than the one for
// d.Kind is set. Draft.SelectKind clears them.
func hasForeignSizing(d *model.Draft) bool {
	switch d.Kind {
	case model.ResourceKindInstance:
		return d.VirtualDataCenter != nil || d.ReadyPlan != nil
	case model.ResourceKindVirtualDataCenter:
		return d.Instance != nil || d.ReadyPlan != nil
	case model.ResourceKindReadyPlan:
		return d.Instance != nil || d.VirtualDataCenter != nil
	}
	return false
}

func (s *ProvisionService) checkInstance(d *model.Draft, res *ValidationResult) {
	spec := d.Instance
	if spec == nil {
		res.add(CodeInvalidSizing, "instance", "instance sizing is required")
		return
	}
	cat := s.engine.Catalog()
	if spec.TemplateID == "" {
		res.add(CodeUnknownCatalogEntry, "instance.template_id", "compute template is required")
	} else if _, err := cat.ComputeTemplate(spec.TemplateID); err != nil {
		res.add(CodeUnknownCatalogEntry, "instance.template_id", "unknown compute template %q", spec.TemplateID)
	}
	if !spec.Tier.Valid() {
		res.add(CodeUnknownVariant, "instance.tier", "unknown tier %q", spec.Tier)
	}

	gpu := spec.GPU
	if gpu == nil || (gpu.BundleID == "" && gpu.SliceCount == 0) {
		return
	}
	if spec.Tier != model.TierPremium {
		res.add(CodeInvalidGPUSelection, "instance.gpu", "gpu acceleration requires the premium tier")
		return
	}
	switch {
	case gpu.BundleID != "" && gpu.SliceCount != 0:
		res.add(CodeInvalidGPUSelection, "instance.gpu", "choose either a gpu bundle or a slice count, not both")
	case gpu.BundleID != "":
		if _, err := cat.GPUBundle(gpu.BundleID); err != nil {
			res.add(CodeUnknownCatalogEntry, "instance.gpu.bundle_id", "unknown gpu bundle %q", gpu.BundleID)
		}
	default:
		if !cat.GPUSliceUnit.Allows(gpu.SliceCount) {
			res.add(CodeInvalidGPUSelection, "instance.gpu.slice_count",
				"%d gpu slices not offered, allowed %v", gpu.SliceCount, cat.GPUSliceUnit.SlicesAllowed)
		}
	}
}

func (s *ProvisionService) checkVirtualDataCenter(d *model.Draft, res *ValidationResult) {
	spec := d.VirtualDataCenter
	if spec == nil {
		res.add(CodeInvalidSizing, "virtual_data_center", "virtual data center sizing is required")
		return
	}
	if spec.CPUCores < 0 || spec.RAMGB < 0 || spec.FlashStorageGB < 0 {
		res.add(CodeInvalidSizing, "virtual_data_center", "cores, RAM and flash storage must not be negative")
		return
	}
	if spec.CPUCores+spec.RAMGB == 0 {
		res.add(CodeInvalidSizing, "virtual_data_center", "a virtual data center needs CPU cores or RAM")
	}
}

func (s *ProvisionService) checkReadyPlan(d *model.Draft, res *ValidationResult) {
	if d.ReadyPlan == nil || d.ReadyPlan.PlanID == "" {
		res.add(CodeInvalidSizing, "ready_plan.plan_id", "ready plan is required")
		return
	}
	if _, err := s.engine.Catalog().ReadyPlan(d.ReadyPlan.PlanID); err != nil {
		res.add(CodeUnknownCatalogEntry, "ready_plan.plan_id", "unknown ready plan %q", d.ReadyPlan.PlanID)
	}
}

func (s *ProvisionService) checkAddOns(a *model.AddOns, res *ValidationResult) {
	if a.StaticIPCount < 0 {
		res.add(CodeInvalidAddOn, "add_ons.static_ip_count", "static IP count must not be negative")
	}
	if a.ObjectStorageGB < 0 {
		res.add(CodeInvalidAddOn, "add_ons.object_storage_gb", "object storage must not be negative")
	}
	if a.AdvancedBackupGB < 0 {
		res.add(CodeInvalidAddOn, "add_ons.advanced_backup_gb", "advanced backup must not be negative")
	}
	if fd := a.FlashDisk; fd != nil && fd.Enabled {
		if !fd.Type.Valid() {
			res.add(CodeUnknownVariant, "add_ons.flash_disk.type", "unknown flash disk type %q", fd.Type)
		}
		if fd.SizeGB < 1 {
			res.add(CodeInvalidAddOn, "add_ons.flash_disk.size_gb", "flash disk size must be at least 1 GB")
		}
	}
}

// addPricingIssue maps an engine error to an issue. Structural checks catch
// these first; this keeps a pricing failure from ever passing validation.
func addPricingIssue(res *ValidationResult, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnknownEntry):
		res.add(CodeUnknownCatalogEntry, "", "%v", err)
	case errors.Is(err, pricing.ErrBillingModeNotAllowed):
		res.add(CodeInvalidKindForBillingMode, "billing_mode", "%v", err)
	case errors.Is(err, pricing.ErrRuntimeHoursOutOfRange):
		res.add(CodeInvalidRuntimeHours, "expected_monthly_runtime_hours", "%v", err)
	case errors.Is(err, pricing.ErrInvalidSliceCount), errors.Is(err, pricing.ErrGPUSelection):
		res.add(CodeInvalidGPUSelection, "instance.gpu", "%v", err)
	case errors.Is(err, pricing.ErrUnknownVariant):
		res.add(CodeUnknownVariant, "", "%v", err)
	default:
		res.add(CodeInvalidSizing, "", "%v", err)
	}
}

// SeedNames proposes one name per unit: "{name}-1" .. "{name}-{quantity}".
func (s *ProvisionService) SeedNames(d *model.Draft) []string {
	if d.Quantity < 1 {
		return []string{}
	}
	names := make([]string, d.Quantity)
	for i := range names {
		names[i] = fmt.Sprintf("%s-%d", d.Name, i+1)
	}
	return names
}

// Commit validates the draft again and writes the resulting records. New
// configurations produce one record per name; an edit replaces the record
// with EditingID in place. Version conflicts retry the whole attempt.
func (s *ProvisionService) Commit(ctx context.Context, req CommitRequest) ([]model.ProvisionedConfiguration, error) {
	if s.retry.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.retry.Timeout)
		defer cancel()
	}

	draft := req.Draft.Clone()
	names, err := commitNames(&draft, req)
	if err != nil {
		metrics.CommitsTotal.WithLabelValues(req.mode(), metrics.ResultRejected).Inc()
		return nil, err
	}

	records, err := retry.DoWithData(func() ([]model.ProvisionedConfiguration, error) {
		return s.commitOnce(ctx, &draft, names, req.EditingID)
	}, s.retry.options(ctx, s.logger, store.ConfigurationsKey)...)
	if err != nil {
		var ve *ValidationError
		result := metrics.ResultError
		if errors.As(err, &ve) || errors.Is(err, ErrConfigurationNotFound) {
			result = metrics.ResultRejected
		}
		metrics.CommitsTotal.WithLabelValues(req.mode(), result).Inc()
		return nil, fmt.Errorf("commit configuration %q: %w", draft.Name, err)
	}

	metrics.CommitsTotal.WithLabelValues(req.mode(), metrics.ResultOK).Inc()
	if req.EditingID == "" {
		metrics.ProvisionedRecordsTotal.Add(float64(len(records)))
	}
	s.logger.Info().
		Str("mode", req.mode()).
		Str("resource_kind", string(draft.Kind)).
		Str("billing_mode", string(draft.BillingMode)).
		Int("records", len(records)).
		Msg("configuration committed")
	return records, nil
}

// commitNames settles the per-unit names and forces quantity 1 for edits.
func commitNames(d *model.Draft, req CommitRequest) ([]string, error) {
	names := req.Names
	if req.EditingID != "" {
		d.Quantity = 1
		if len(names) == 0 {
			names = []string{d.Name}
		}
		if len(names) != 1 {
			return nil, invalid(CodeInvalidQuantity, "names", "an edit replaces exactly one configuration, got %d names", len(names))
		}
	} else {
		if len(names) == 0 && d.Quantity == 1 {
			names = []string{d.Name}
		}
		if len(names) != d.Quantity {
			return nil, invalid(CodeInvalidQuantity, "names", "%d names given for quantity %d", len(names), d.Quantity)
		}
	}

	res := newValidationResult()
	for i, n := range names {
		if strings.TrimSpace(n) == "" {
			res.add(CodeMissingName, fmt.Sprintf("names[%d]", i), "name is required")
		}
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return append([]string(nil), names...), nil
}

func (s *ProvisionService) commitOnce(ctx context.Context, d *model.Draft, names []string, editingID string) ([]model.ProvisionedConfiguration, error) {
	res, err := s.Validate(ctx, d)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	q, err := s.engine.Price(d)
	if err != nil {
		return nil, err
	}

	items, version, err := s.configs.Read(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	unit := d.Clone()
	unit.Quantity = 1

	var written []model.ProvisionedConfiguration
	if editingID != "" {
		idx := -1
		for i := range items {
			if items[i].ID == editingID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("configuration %s: %w", editingID, ErrConfigurationNotFound)
		}
		rec := s.record(unit, names[0], q, now)
		rec.ID = items[idx].ID
		rec.CreatedAt = items[idx].CreatedAt
		items[idx] = rec
		written = append(written, rec)
	} else {
		for _, name := range names {
			rec := s.record(unit, name, q, now)
			rec.ID = s.newID()
			items = append(items, rec)
			written = append(written, rec)
		}
	}

	if _, err := s.configs.Write(ctx, items, version); err != nil {
		return nil, err
	}
	return written, nil
}

func (s *ProvisionService) record(unit model.Draft, name string, q *pricing.Quote, now time.Time) model.ProvisionedConfiguration {
	frozen := unit.Clone()
	frozen.Name = name
	return model.ProvisionedConfiguration{
		Name:            name,
		Draft:           frozen,
		UnitMonthlyCost: q.UnitMonthlySubtotal,
		EffectiveCost:   q.EffectiveCost,
		Currency:        q.Currency,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (s *ProvisionService) List(ctx context.Context) ([]model.ProvisionedConfiguration, error) {
	items, _, err := s.configs.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("list configurations: %w", err)
	}
	return items, nil
}

func (s *ProvisionService) Get(ctx context.Context, id string) (*model.ProvisionedConfiguration, error) {
	items, _, err := s.configs.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("get configuration %s: %w", id, err)
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("get configuration %s: %w", id, ErrConfigurationNotFound)
}
