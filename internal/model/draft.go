package model

// ResourceKind selects which sizing block of a Draft is active.
type ResourceKind string

const (
	ResourceKindInstance          ResourceKind = "instance"
	ResourceKindVirtualDataCenter ResourceKind = "virtual_data_center"
	ResourceKindReadyPlan         ResourceKind = "ready_plan"
)

// ResourceKinds lists every kind. Switches over ResourceKind must cover all of them.
var ResourceKinds = []ResourceKind{
	ResourceKindInstance,
	ResourceKindVirtualDataCenter,
	ResourceKindReadyPlan,
}

func (k ResourceKind) Valid() bool {
	switch k {
	case ResourceKindInstance, ResourceKindVirtualDataCenter, ResourceKindReadyPlan:
		return true
	}
	return false
}

type BillingMode string

const (
	BillingModeSubscription BillingMode = "subscription"
	BillingModePAYGWallet   BillingMode = "payg_wallet"
)

func (m BillingMode) Valid() bool {
	switch m {
	case BillingModeSubscription, BillingModePAYGWallet:
		return true
	}
	return false
}

// AllowedFor reports whether the billing mode may be used with kind.
// Pay-as-you-go is only offered for instances.
func (m BillingMode) AllowedFor(kind ResourceKind) bool {
	if m == BillingModePAYGWallet {
		return kind == ResourceKindInstance
	}
	return true
}

type Tier string

const (
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

func (t Tier) Valid() bool {
	return t == TierStandard || t == TierPremium
}

type FlashDiskType string

const (
	FlashDiskSSD  FlashDiskType = "ssd"
	FlashDiskNVMe FlashDiskType = "nvme"
)

func (t FlashDiskType) Valid() bool {
	return t == FlashDiskSSD || t == FlashDiskNVMe
}

type TermUnit string

const (
	TermUnitMonth TermUnit = "month"
	TermUnitYear  TermUnit = "year"
)

func (u TermUnit) Valid() bool {
	return u == TermUnitMonth || u == TermUnitYear
}

// GPUSelection picks either a fixed bundle or a number of slices.
type GPUSelection struct {
	BundleID   string `json:"bundle_id,omitempty"`
	SliceCount int    `json:"slice_count,omitempty"`
}

type InstanceSpec struct {
	TemplateID string        `json:"template_id"`
	Tier       Tier          `json:"tier"`
	GPU        *GPUSelection `json:"gpu,omitempty"`
}

type VirtualDataCenterSpec struct {
	CPUCores       int `json:"cpu_cores"`
	RAMGB          int `json:"ram_gb"`
	FlashStorageGB int `json:"flash_storage_gb"`
}

type ReadyPlanSpec struct {
	PlanID string `json:"plan_id"`
}

type FlashDisk struct {
	Enabled bool          `json:"enabled"`
	Type    FlashDiskType `json:"type,omitempty"`
	SizeGB  int           `json:"size_gb,omitempty"`
}

// AddOns apply to every resource kind.
type AddOns struct {
	StaticIPCount    int        `json:"static_ip_count"`
	ObjectStorageGB  int        `json:"object_storage_gb"`
	AdvancedBackupGB int        `json:"advanced_backup_gb"`
	FlashDisk        *FlashDisk `json:"flash_disk,omitempty"`
}

type SubscriptionTerm struct {
	Value int      `json:"value"`
	Unit  TermUnit `json:"unit"`
}

// DefaultTerm is used when a subscription draft carries no term.
var DefaultTerm = SubscriptionTerm{Value: 1, Unit: TermUnitMonth}

// Draft is an in-progress resource configuration. Exactly one of Instance,
// VirtualDataCenter and ReadyPlan is expected to be set, matching Kind.
type Draft struct {
	Name                        string                 `json:"name"`
	Kind                        ResourceKind           `json:"resource_kind"`
	BillingMode                 BillingMode            `json:"billing_mode"`
	Quantity                    int                    `json:"quantity"`
	RegionID                    string                 `json:"region"`
	Instance                    *InstanceSpec          `json:"instance,omitempty"`
	VirtualDataCenter           *VirtualDataCenterSpec `json:"virtual_data_center,omitempty"`
	ReadyPlan                   *ReadyPlanSpec         `json:"ready_plan,omitempty"`
	AddOns                      AddOns                 `json:"add_ons"`
	Term                        *SubscriptionTerm      `json:"subscription_term,omitempty"`
	ExpectedMonthlyRuntimeHours int                    `json:"expected_monthly_runtime_hours,omitempty"`
}

// SelectKind switches the draft to kind and drops the sizing of the other
// kinds. Kinds other than instance fall back to subscription billing.
func (d *Draft) SelectKind(kind ResourceKind) {
	d.Kind = kind
	switch kind {
	case ResourceKindInstance:
		d.VirtualDataCenter = nil
		d.ReadyPlan = nil
		if d.Instance == nil {
			d.Instance = &InstanceSpec{Tier: TierStandard}
		}
	case ResourceKindVirtualDataCenter:
		d.Instance = nil
		d.ReadyPlan = nil
		if d.VirtualDataCenter == nil {
			d.VirtualDataCenter = &VirtualDataCenterSpec{}
		}
	case ResourceKindReadyPlan:
		d.Instance = nil
		d.VirtualDataCenter = nil
		if d.ReadyPlan == nil {
			d.ReadyPlan = &ReadyPlanSpec{}
		}
	}
	if !d.BillingMode.AllowedFor(kind) {
		d.BillingMode = BillingModeSubscription
		d.ExpectedMonthlyRuntimeHours = 0
	}
}

// SubscriptionTerm returns the draft's term or DefaultTerm.
func (d *Draft) SubscriptionTerm() SubscriptionTerm {
	if d.Term == nil {
		return DefaultTerm
	}
	return *d.Term
}

// GPUEnabled reports whether GPU fields take effect. They only do on the
// premium tier; anything set on other tiers is ignored.
func (d *Draft) GPUEnabled() bool {
	return d.Kind == ResourceKindInstance &&
		d.Instance != nil &&
		d.Instance.Tier == TierPremium &&
		d.Instance.GPU != nil
}

// Clone returns a deep copy so frozen records never share pointers with
// the draft they came from.
func (d Draft) Clone() Draft {
	c := d
	if d.Instance != nil {
		inst := *d.Instance
		if d.Instance.GPU != nil {
			gpu := *d.Instance.GPU
			inst.GPU = &gpu
		}
		c.Instance = &inst
	}
	if d.VirtualDataCenter != nil {
		vdc := *d.VirtualDataCenter
		c.VirtualDataCenter = &vdc
	}
	if d.ReadyPlan != nil {
		rp := *d.ReadyPlan
		c.ReadyPlan = &rp
	}
	if d.AddOns.FlashDisk != nil {
		fd := *d.AddOns.FlashDisk
		c.AddOns.FlashDisk = &fd
	}
	if d.Term != nil {
		t := *d.Term
		c.Term = &t
	}
	return c
}
