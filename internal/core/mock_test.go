package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/configurator/internal/catalog"
	"github.com/edvin/configurator/internal/model"
	"github.com/edvin/configurator/internal/pricing"
	"github.com/edvin/configurator/internal/store"
)

// ---------- Mock stores ----------

// mockConfigStore implements ConfigurationStore for testing.
type mockConfigStore struct {
	mock.Mock
}

func (m *mockConfigStore) Read(ctx context.Context) ([]model.ProvisionedConfiguration, string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]model.ProvisionedConfiguration), args.String(1), args.Error(2)
}

func (m *mockConfigStore) Write(ctx context.Context, items []model.ProvisionedConfiguration, version string) (string, error) {
	args := m.Called(ctx, items, version)
	return args.String(0), args.Error(1)
}

// mockWalletStore implements WalletStore for testing.
type mockWalletStore struct {
	mock.Mock
}

func (m *mockWalletStore) Read(ctx context.Context) (*model.Wallet, string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*model.Wallet), args.String(1), args.Error(2)
}

func (m *mockWalletStore) Write(ctx context.Context, w *model.Wallet, version string) (string, error) {
	args := m.Called(ctx, w, version)
	return args.String(0), args.Error(1)
}

// ---------- Fixtures ----------

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// testPolicy retries without sleeping.
var testPolicy = RetryPolicy{Attempts: 3, Timeout: 5 * time.Second}

func newTestEngine(t *testing.T) *pricing.Engine {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return pricing.NewEngine(cat)
}

func dec(s string) model.Money {
	return decimal.RequireFromString(s)
}

// newMemoryServices wires the services over one in-memory blob store.
func newMemoryServices(t *testing.T, balance string) (*Services, *store.MemoryStore) {
	t.Helper()
	blobs := store.NewMemoryStore()
	svcs := NewServices(
		newTestEngine(t),
		store.NewConfigurationRepository(blobs, "test"),
		store.NewWalletRepository(blobs, "test"),
		dec(balance),
		testPolicy,
		zerolog.Nop(),
	)
	fixClock(svcs)
	return svcs, blobs
}

func fixClock(svcs *Services) {
	svcs.Wallet.now = func() time.Time { return testNow }
	svcs.Provision.now = func() time.Time { return testNow }
	n := 0
	svcs.Provision.newID = func() string {
		n++
		return fmt.Sprintf("cfg-%d", n)
	}
}

// instanceDraft is template c4-8 ($40) with two static IPs ($8): 48.00 a month.
func instanceDraft() model.Draft {
	return model.Draft{
		Name:        "web",
		Kind:        model.ResourceKindInstance,
		BillingMode: model.BillingModeSubscription,
		Quantity:    1,
		RegionID:    "eu-central",
		Instance:    &model.InstanceSpec{TemplateID: "c4-8", Tier: model.TierStandard},
		AddOns:      model.AddOns{StaticIPCount: 2},
	}
}

// paygDraft is template c2-4 ($20) billed for 730 hours: 20.00.
func paygDraft() model.Draft {
	return model.Draft{
		Name:                        "batch",
		Kind:                        model.ResourceKindInstance,
		BillingMode:                 model.BillingModePAYGWallet,
		Quantity:                    1,
		RegionID:                    "eu-central",
		Instance:                    &model.InstanceSpec{TemplateID: "c2-4", Tier: model.TierStandard},
		ExpectedMonthlyRuntimeHours: model.ReferenceMonthHours,
	}
}
