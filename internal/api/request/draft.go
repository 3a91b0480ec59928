package request

import (
	"github.com/edvin/configurator/internal/model"
)

// Draft is the wire form of a configuration draft. Structural checks live
// here; business rules are reported by the provisioning validator.
type Draft struct {
	Name                        string             `json:"name" validate:"max=63"`
	ResourceKind                string             `json:"resource_kind" validate:"required,resource_kind"`
	BillingMode                 string             `json:"billing_mode" validate:"omitempty,billing_mode"`
	Quantity                    *int               `json:"quantity" validate:"omitempty,max=100"`
	Region                      string             `json:"region" validate:"max=64"`
	Instance                    *Instance          `json:"instance"`
	VirtualDataCenter           *VirtualDataCenter `json:"virtual_data_center"`
	ReadyPlan                   *ReadyPlan         `json:"ready_plan"`
	AddOns                      *AddOns            `json:"add_ons"`
	SubscriptionTerm            *SubscriptionTerm  `json:"subscription_term"`
	ExpectedMonthlyRuntimeHours int                `json:"expected_monthly_runtime_hours"`
}

type Instance struct {
	TemplateID string        `json:"template_id" validate:"max=64"`
	Tier       string        `json:"tier"`
	GPU        *GPUSelection `json:"gpu"`
}

type GPUSelection struct {
	BundleID   string `json:"bundle_id" validate:"max=64"`
	SliceCount int    `json:"slice_count"`
}

type VirtualDataCenter struct {
	CPUCores       int `json:"cpu_cores"`
	RAMGB          int `json:"ram_gb"`
	FlashStorageGB int `json:"flash_storage_gb"`
}

type ReadyPlan struct {
	PlanID string `json:"plan_id" validate:"max=64"`
}

type AddOns struct {
	StaticIPCount    int        `json:"static_ip_count"`
	ObjectStorageGB  int        `json:"object_storage_gb"`
	AdvancedBackupGB int        `json:"advanced_backup_gb"`
	FlashDisk        *FlashDisk `json:"flash_disk"`
}

type FlashDisk struct {
	Enabled bool   `json:"enabled"`
	Type    string `json:"type"`
	SizeGB  int    `json:"size_gb"`
}

type SubscriptionTerm struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

// ToModel converts the request, filling in the defaults a client may omit:
// subscription billing, quantity 1 and the standard tier.
func (d *Draft) ToModel() model.Draft {
	m := model.Draft{
		Name:                        d.Name,
		Kind:                        model.ResourceKind(d.ResourceKind),
		BillingMode:                 model.BillingMode(d.BillingMode),
		Quantity:                    1,
		RegionID:                    d.Region,
		ExpectedMonthlyRuntimeHours: d.ExpectedMonthlyRuntimeHours,
	}
	if m.BillingMode == "" {
		m.BillingMode = model.BillingModeSubscription
	}
	if d.Quantity != nil {
		m.Quantity = *d.Quantity
	}

	if d.Instance != nil {
		inst := &model.InstanceSpec{
			TemplateID: d.Instance.TemplateID,
			Tier:       model.Tier(d.Instance.Tier),
		}
		if inst.Tier == "" {
			inst.Tier = model.TierStandard
		}
		if g := d.Instance.GPU; g != nil {
			inst.GPU = &model.GPUSelection{BundleID: g.BundleID, SliceCount: g.SliceCount}
		}
		m.Instance = inst
	}
	if v := d.VirtualDataCenter; v != nil {
		m.VirtualDataCenter = &model.VirtualDataCenterSpec{
			CPUCores:       v.CPUCores,
			RAMGB:          v.RAMGB,
			FlashStorageGB: v.FlashStorageGB,
		}
	}
	if p := d.ReadyPlan; p != nil {
		m.ReadyPlan = &model.ReadyPlanSpec{PlanID: p.PlanID}
	}
	if a := d.AddOns; a != nil {
		m.AddOns = model.AddOns{
			StaticIPCount:    a.StaticIPCount,
			ObjectStorageGB:  a.ObjectStorageGB,
			AdvancedBackupGB: a.AdvancedBackupGB,
		}
		if fd := a.FlashDisk; fd != nil {
			m.AddOns.FlashDisk = &model.FlashDisk{
				Enabled: fd.Enabled,
				Type:    model.FlashDiskType(fd.Type),
				SizeGB:  fd.SizeGB,
			}
		}
	}
	if t := d.SubscriptionTerm; t != nil {
		m.Term = &model.SubscriptionTerm{Value: t.Value, Unit: model.TermUnit(t.Unit)}
	}
	return m
}

// CreateConfiguration commits a new draft. Names may be omitted, in which
// case the seeded names are used.
type CreateConfiguration struct {
	Draft *Draft   `json:"draft" validate:"required"`
	Names []string `json:"names" validate:"omitempty,max=100,dive,max=63"`
}

// UpdateConfiguration replaces one configuration. Name overrides the draft name.
type UpdateConfiguration struct {
	Draft *Draft `json:"draft" validate:"required"`
	Name  string `json:"name" validate:"max=63"`
}

type TopUp struct {
	Amount model.Money `json:"amount"`
}
