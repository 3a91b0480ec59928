package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/configurator/internal/catalog"
	"github.com/edvin/configurator/internal/model"
)

const testCatalog = `
regions:
  - {id: eu-central, name: Frankfurt}
compute_templates:
  - {id: c4-8, cpu_cores: 4, ram_gb: 8, boot_disk_gb: 80, monthly_price: "40.00"}
  - {id: c8-32, cpu_cores: 8, ram_gb: 32, boot_disk_gb: 160, monthly_price: "120.00"}
gpu_bundles:
  - {id: tesla-t4, label: 1x Tesla T4, monthly_price: "180.00"}
gpu_slice_unit:
  slices_allowed: [1, 2, 4, 8]
  price_per_slice_per_month: "210.00"
ready_plans:
  - {id: starter, name: Starter, monthly_price: "15.00"}
add_on_rates:
  static_ip_monthly: "4.00"
  object_storage_gb_monthly: "0.02"
  advanced_backup_gb_monthly: "0.05"
  flash_disk_ssd_gb_monthly: "0.10"
  flash_disk_nvme_gb_monthly: "0.16"
  cpu_core_monthly: "6.00"
  ram_gb_monthly: "2.50"
  flash_gb_monthly: "0.12"
`

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	c, err := catalog.Parse([]byte(testCatalog))
	require.NoError(t, err)
	return NewEngine(c)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func instanceDraft() *model.Draft {
	return &model.Draft{
		Name:        "web",
		Kind:        model.ResourceKindInstance,
		BillingMode: model.BillingModeSubscription,
		Quantity:    1,
		RegionID:    "eu-central",
		Instance:    &model.InstanceSpec{TemplateID: "c4-8", Tier: model.TierStandard},
	}
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func TestPrice_ConcreteExample(t *testing.T) {
	e := newTestEngine(t)
	d := instanceDraft()
	d.AddOns.StaticIPCount = 2

	q, err := e.Price(d)
	require.NoError(t, err)

	assertMoney(t, "48.00", q.UnitMonthlySubtotal)
	assertMoney(t, "48.00", q.EffectiveCost)
	assertMoney(t, "48.00", q.GrandTotal)
	assert.Equal(t, model.CurrencyUSD, q.Currency)
	require.NotNil(t, q.Term)
	assert.Equal(t, model.DefaultTerm, *q.Term)
	assert.Nil(t, q.HourlyRate)

	require.Len(t, q.LineItems, 2)
	assert.Equal(t, ComponentCompute, q.LineItems[0].Component)
	assert.Equal(t, ComponentStaticIP, q.LineItems[1].Component)
	assert.Equal(t, 2, q.LineItems[1].Quantity)
	assertMoney(t, "8", q.LineItems[1].Amount)
}

func TestPrice_Deterministic(t *testing.T) {
	e := newTestEngine(t)
	d := instanceDraft()
	d.Instance.Tier = model.TierPremium
	d.Instance.GPU = &model.GPUSelection{SliceCount: 2}
	d.AddOns = model.AddOns{
		StaticIPCount:    1,
		ObjectStorageGB:  250,
		AdvancedBackupGB: 40,
		FlashDisk:        &model.FlashDisk{Enabled: true, Type: model.FlashDiskNVMe, SizeGB: 100},
	}

	first, err := e.Price(d)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := e.Price(d)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestPrice_AddOnMonotonicity(t *testing.T) {
	e := newTestEngine(t)

	bump := map[string]func(d *model.Draft){
		"static ips":      func(d *model.Draft) { d.AddOns.StaticIPCount++ },
		"object storage":  func(d *model.Draft) { d.AddOns.ObjectStorageGB += 10 },
		"advanced backup": func(d *model.Draft) { d.AddOns.AdvancedBackupGB += 10 },
		"flash disk":      func(d *model.Draft) { d.AddOns.FlashDisk.SizeGB += 10 },
	}

	for name, fn := range bump {
		t.Run(name, func(t *testing.T) {
			d := instanceDraft()
			d.AddOns.FlashDisk = &model.FlashDisk{Enabled: true, Type: model.FlashDiskSSD, SizeGB: 20}

			before, err := e.Price(d)
			require.NoError(t, err)
			fn(d)
			after, err := e.Price(d)
			require.NoError(t, err)

			assert.True(t, after.UnitMonthlySubtotal.GreaterThan(before.UnitMonthlySubtotal),
				"%s did not increase: %s -> %s", name, before.UnitMonthlySubtotal, after.UnitMonthlySubtotal)
		})
	}
}

func TestPrice_GPUGating(t *testing.T) {
	e := newTestEngine(t)

	selections := []*model.GPUSelection{
		{BundleID: "tesla-t4"},
		{SliceCount: 4},
		{BundleID: "does-not-exist"},
		{SliceCount: 3},
		{BundleID: "tesla-t4", SliceCount: 2},
	}

	base, err := e.Price(instanceDraft())
	require.NoError(t, err)

	for _, gpu := range selections {
		d := instanceDraft()
		d.Instance.Tier = model.TierStandard
		d.Instance.GPU = gpu

		q, err := e.Price(d)
		require.NoError(t, err, "standard tier must ignore gpu %+v", gpu)
		assert.True(t, base.UnitMonthlySubtotal.Equal(q.UnitMonthlySubtotal))
		for _, it := range q.LineItems {
			assert.NotEqual(t, ComponentGPU, it.Component)
		}
	}
}

func TestPrice_GPUPremium(t *testing.T) {
	e := newTestEngine(t)

	t.Run("bundle", func(t *testing.T) {
		d := instanceDraft()
		d.Instance.Tier = model.TierPremium
		d.Instance.GPU = &model.GPUSelection{BundleID: "tesla-t4"}

		q, err := e.Price(d)
		require.NoError(t, err)
		assertMoney(t, "220.00", q.UnitMonthlySubtotal)
	})

	t.Run("slices", func(t *testing.T) {
		d := instanceDraft()
		d.Instance.Tier = model.TierPremium
		d.Instance.GPU = &model.GPUSelection{SliceCount: 4}

		q, err := e.Price(d)
		require.NoError(t, err)
		assertMoney(t, "880.00", q.UnitMonthlySubtotal)
	})

	t.Run("slice count not offered", func(t *testing.T) {
		d := instanceDraft()
		d.Instance.Tier = model.TierPremium
		d.Instance.GPU = &model.GPUSelection{SliceCount: 3}

		_, err := e.Price(d)
		assert.True(t, errors.Is(err, ErrInvalidSliceCount))
	})

	t.Run("both bundle and slices", func(t *testing.T) {
		d := instanceDraft()
		d.Instance.Tier = model.TierPremium
		d.Instance.GPU = &model.GPUSelection{BundleID: "tesla-t4", SliceCount: 2}

		_, err := e.Price(d)
		assert.True(t, errors.Is(err, ErrGPUSelection))
	})

	t.Run("unknown bundle", func(t *testing.T) {
		d := instanceDraft()
		d.Instance.Tier = model.TierPremium
		d.Instance.GPU = &model.GPUSelection{BundleID: "h100-x8"}

		_, err := e.Price(d)
		assert.True(t, errors.Is(err, catalog.ErrUnknownEntry))
	})

	t.Run("empty selection adds nothing", func(t *testing.T) {
		d := instanceDraft()
		d.Instance.Tier = model.TierPremium
		d.Instance.GPU = &model.GPUSelection{}

		q, err := e.Price(d)
		require.NoError(t, err)
		assertMoney(t, "40.00", q.UnitMonthlySubtotal)
	})
}

func TestPrice_PAYGScaling(t *testing.T) {
	e := newTestEngine(t)

	for _, hours := range []int{1, 100, 365, 500, 729, 730} {
		d := instanceDraft()
		d.BillingMode = model.BillingModePAYGWallet
		d.ExpectedMonthlyRuntimeHours = hours
		d.AddOns.StaticIPCount = 3

		q, err := e.Price(d)
		require.NoError(t, err)

		assertMoney(t, "52.00", q.UnitMonthlySubtotal)
		want := q.UnitMonthlySubtotal.Div(decimal.NewFromInt(730)).Mul(decimal.NewFromInt(int64(hours)))
		diff := want.Sub(q.EffectiveCost).Abs()
		assert.True(t, diff.LessThan(dec("0.000000001")), "hours=%d want %s got %s", hours, want, q.EffectiveCost)

		require.NotNil(t, q.HourlyRate)
		assert.Equal(t, hours, q.RuntimeHours)
		assert.Nil(t, q.Term)
	}
}

func TestPrice_PAYGFullMonthEqualsSubtotal(t *testing.T) {
	e := newTestEngine(t)
	d := instanceDraft()
	d.BillingMode = model.BillingModePAYGWallet
	d.ExpectedMonthlyRuntimeHours = 730
	d.AddOns.ObjectStorageGB = 33

	q, err := e.Price(d)
	require.NoError(t, err)
	assert.True(t, q.EffectiveCost.Equal(q.UnitMonthlySubtotal))
}

func TestPrice_PAYGRuntimeOutOfRange(t *testing.T) {
	e := newTestEngine(t)
	for _, hours := range []int{0, -1, 731, 10000} {
		d := instanceDraft()
		d.BillingMode = model.BillingModePAYGWallet
		d.ExpectedMonthlyRuntimeHours = hours

		_, err := e.Price(d)
		assert.True(t, errors.Is(err, ErrRuntimeHoursOutOfRange), "hours=%d", hours)
	}
}

func TestPrice_GrandTotal(t *testing.T) {
	e := newTestEngine(t)
	d := instanceDraft()
	d.Quantity = 3

	q, err := e.Price(d)
	require.NoError(t, err)
	assertMoney(t, "40.00", q.UnitMonthlySubtotal)
	assertMoney(t, "120.00", q.GrandTotal)
	assert.Equal(t, 3, q.Quantity)
}

func TestPrice_VirtualDataCenter(t *testing.T) {
	e := newTestEngine(t)
	d := &model.Draft{
		Kind:              model.ResourceKindVirtualDataCenter,
		BillingMode:       model.BillingModeSubscription,
		Quantity:          1,
		VirtualDataCenter: &model.VirtualDataCenterSpec{CPUCores: 4, RAMGB: 16, FlashStorageGB: 100},
		Term:              &model.SubscriptionTerm{Value: 1, Unit: model.TermUnitYear},
	}

	q, err := e.Price(d)
	require.NoError(t, err)
	// 4*6 + 16*2.5 + 100*0.12
	assertMoney(t, "76.00", q.UnitMonthlySubtotal)
	assertMoney(t, "76.00", q.EffectiveCost)
	require.NotNil(t, q.Term)
	assert.Equal(t, model.TermUnitYear, q.Term.Unit)
	require.Len(t, q.LineItems, 3)
	assert.Equal(t, ComponentCPU, q.LineItems[0].Component)
	assert.Equal(t, ComponentRAM, q.LineItems[1].Component)
	assert.Equal(t, ComponentFlashStorage, q.LineItems[2].Component)
}

func TestPrice_VirtualDataCenterNegative(t *testing.T) {
	e := newTestEngine(t)
	d := &model.Draft{
		Kind:              model.ResourceKindVirtualDataCenter,
		BillingMode:       model.BillingModeSubscription,
		VirtualDataCenter: &model.VirtualDataCenterSpec{CPUCores: -1},
	}
	_, err := e.Price(d)
	assert.True(t, errors.Is(err, ErrNegativeQuantity))
}

func TestPrice_ReadyPlan(t *testing.T) {
	e := newTestEngine(t)
	d := &model.Draft{
		Kind:        model.ResourceKindReadyPlan,
		BillingMode: model.BillingModeSubscription,
		Quantity:    2,
		ReadyPlan:   &model.ReadyPlanSpec{PlanID: "starter"},
		AddOns:      model.AddOns{AdvancedBackupGB: 100},
	}

	q, err := e.Price(d)
	require.NoError(t, err)
	assertMoney(t, "20.00", q.UnitMonthlySubtotal)
	assertMoney(t, "40.00", q.GrandTotal)
}

func TestPrice_FlashDisk(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name string
		disk *model.FlashDisk
		want string
	}{
		{"disabled", &model.FlashDisk{Enabled: false, Type: model.FlashDiskNVMe, SizeGB: 100}, "40.00"},
		{"ssd", &model.FlashDisk{Enabled: true, Type: model.FlashDiskSSD, SizeGB: 100}, "50.00"},
		{"nvme", &model.FlashDisk{Enabled: true, Type: model.FlashDiskNVMe, SizeGB: 100}, "56.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := instanceDraft()
			d.AddOns.FlashDisk = tt.disk
			q, err := e.Price(d)
			require.NoError(t, err)
			assertMoney(t, tt.want, q.UnitMonthlySubtotal)
		})
	}

	d := instanceDraft()
	d.AddOns.FlashDisk = &model.FlashDisk{Enabled: true, Type: "optane", SizeGB: 10}
	_, err := e.Price(d)
	assert.True(t, errors.Is(err, ErrUnknownVariant))
}

func TestPrice_Errors(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name   string
		mutate func(d *model.Draft)
		want   error
	}{
		{"unknown template", func(d *model.Draft) { d.Instance.TemplateID = "c99" }, catalog.ErrUnknownEntry},
		{"unknown plan", func(d *model.Draft) {
			d.SelectKind(model.ResourceKindReadyPlan)
			d.ReadyPlan.PlanID = "gold"
		}, catalog.ErrUnknownEntry},
		{"payg on vdc", func(d *model.Draft) {
			d.Kind = model.ResourceKindVirtualDataCenter
			d.Instance = nil
			d.VirtualDataCenter = &model.VirtualDataCenterSpec{CPUCores: 2}
			d.BillingMode = model.BillingModePAYGWallet
			d.ExpectedMonthlyRuntimeHours = 100
		}, ErrBillingModeNotAllowed},
		{"payg on ready plan", func(d *model.Draft) {
			d.Kind = model.ResourceKindReadyPlan
			d.Instance = nil
			d.ReadyPlan = &model.ReadyPlanSpec{PlanID: "starter"}
			d.BillingMode = model.BillingModePAYGWallet
			d.ExpectedMonthlyRuntimeHours = 100
		}, ErrBillingModeNotAllowed},
		{"unknown kind", func(d *model.Draft) { d.Kind = "bare_metal" }, ErrUnknownVariant},
		{"unknown billing mode", func(d *model.Draft) { d.BillingMode = "prepaid" }, ErrUnknownVariant},
		{"unknown tier", func(d *model.Draft) { d.Instance.Tier = "gold" }, ErrUnknownVariant},
		{"missing instance sizing", func(d *model.Draft) { d.Instance = nil }, ErrMissingSizing},
		{"negative static ips", func(d *model.Draft) { d.AddOns.StaticIPCount = -1 }, ErrNegativeQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := instanceDraft()
			tt.mutate(d)
			q, err := e.Price(d)
			assert.Nil(t, q)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
