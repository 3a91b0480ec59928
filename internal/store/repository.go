package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/edvin/configurator/internal/model"
)

// SchemaVersion is the envelope version written by this code. Older
// envelopes are read as-is; newer ones are refused.
const SchemaVersion = 1

type configurationEnvelope struct {
	SchemaVersion int                              `json:"schema_version"`
	Items         []model.ProvisionedConfiguration `json:"items"`
}

type walletEnvelope struct {
	SchemaVersion int            `json:"schema_version"`
	Balance       model.Money    `json:"balance"`
	Currency      model.Currency `json:"currency"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// ConfigurationRepository reads and writes the whole persisted configuration
// list as one blob.
type ConfigurationRepository struct {
	blobs BlobStore
	key   string
}

func NewConfigurationRepository(blobs BlobStore, prefix string) *ConfigurationRepository {
	return &ConfigurationRepository{blobs: blobs, key: Key(prefix, ConfigurationsKey)}
}

// Read returns the list and the version it was read at. A missing blob is an
// empty list at the empty version.
func (r *ConfigurationRepository) Read(ctx context.Context) ([]model.ProvisionedConfiguration, string, error) {
	blob, err := r.blobs.Get(ctx, r.key)
	if errors.Is(err, ErrNotFound) {
		return []model.ProvisionedConfiguration{}, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("read configurations: %w", err)
	}

	var env configurationEnvelope
	if err := json.Unmarshal(blob.Data, &env); err != nil {
		return nil, "", fmt.Errorf("decode configurations: %w", err)
	}
	if env.SchemaVersion > SchemaVersion {
		return nil, "", fmt.Errorf("configurations schema %d: %w", env.SchemaVersion, ErrUnsupportedSchema)
	}
	if env.Items == nil {
		env.Items = []model.ProvisionedConfiguration{}
	}
	return env.Items, blob.Version, nil
}

// Write replaces the list. version must be the value returned by Read.
func (r *ConfigurationRepository) Write(ctx context.Context, items []model.ProvisionedConfiguration, version string) (string, error) {
	data, err := json.Marshal(configurationEnvelope{SchemaVersion: SchemaVersion, Items: items})
	if err != nil {
		return "", fmt.Errorf("encode configurations: %w", err)
	}
	next, err := r.blobs.Put(ctx, r.key, data, version)
	if err != nil {
		return "", fmt.Errorf("write configurations: %w", err)
	}
	return next, nil
}

func (r *ConfigurationRepository) Ping(ctx context.Context) error {
	return r.blobs.Ping(ctx)
}

// WalletRepository persists the single wallet balance.
type WalletRepository struct {
	blobs BlobStore
	key   string
}

func NewWalletRepository(blobs BlobStore, prefix string) *WalletRepository {
	return &WalletRepository{blobs: blobs, key: Key(prefix, WalletKey)}
}

// Read returns the wallet and its version, or ErrNotFound if no wallet has
// been created yet.
func (r *WalletRepository) Read(ctx context.Context) (*model.Wallet, string, error) {
	blob, err := r.blobs.Get(ctx, r.key)
	if err != nil {
		return nil, "", fmt.Errorf("read wallet: %w", err)
	}

	var env walletEnvelope
	if err := json.Unmarshal(blob.Data, &env); err != nil {
		return nil, "", fmt.Errorf("decode wallet: %w", err)
	}
	if env.SchemaVersion > SchemaVersion {
		return nil, "", fmt.Errorf("wallet schema %d: %w", env.SchemaVersion, ErrUnsupportedSchema)
	}
	return &model.Wallet{
		Balance:   env.Balance,
		Currency:  env.Currency,
		UpdatedAt: env.UpdatedAt,
	}, blob.Version, nil
}

func (r *WalletRepository) Write(ctx context.Context, w *model.Wallet, version string) (string, error) {
	data, err := json.Marshal(walletEnvelope{
		SchemaVersion: SchemaVersion,
		Balance:       w.Balance,
		Currency:      w.Currency,
		UpdatedAt:     w.UpdatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("encode wallet: %w", err)
	}
	next, err := r.blobs.Put(ctx, r.key, data, version)
	if err != nil {
		return "", fmt.Errorf("write wallet: %w", err)
	}
	return next, nil
}
