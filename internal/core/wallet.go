package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"

	"github.com/edvin/configurator/internal/metrics"
	"github.com/edvin/configurator/internal/model"
	"github.com/edvin/configurator/internal/store"
)

// WalletStore persists the wallet. *store.WalletRepository satisfies it.
type WalletStore interface {
	Read(ctx context.Context) (*model.Wallet, string, error)
	Write(ctx context.Context, w *model.Wallet, version string) (string, error)
}

// RetryPolicy bounds read-modify-write loops on persisted blobs.
type RetryPolicy struct {
	Attempts uint
	Delay    time.Duration
	Timeout  time.Duration
}

// DefaultRetryPolicy matches the COMMIT_ATTEMPTS / COMMIT_TIMEOUT defaults.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Delay: 20 * time.Millisecond, Timeout: 10 * time.Second}

func (p RetryPolicy) options(ctx context.Context, logger zerolog.Logger, blob string) []retry.Option {
	attempts := p.Attempts
	if attempts == 0 {
		attempts = 1
	}
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(p.Delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, store.ErrVersionConflict)
		}),
		retry.OnRetry(func(n uint, err error) {
			metrics.VersionConflictsTotal.WithLabelValues(blob).Inc()
			logger.Debug().Uint("attempt", n+1).Err(err).Msg("version conflict, retrying")
		}),
	}
}

// WalletService owns the single PAYG wallet. Balances only go up; nothing
// here debits the wallet.
type WalletService struct {
	repo           WalletStore
	defaultBalance model.Money
	retry          RetryPolicy
	logger         zerolog.Logger
	now            func() time.Time
}

func NewWalletService(repo WalletStore, defaultBalance model.Money, policy RetryPolicy, logger zerolog.Logger) *WalletService {
	return &WalletService{
		repo:           repo,
		defaultBalance: defaultBalance,
		retry:          policy,
		logger:         logger.With().Str("component", "wallet").Logger(),
		now:            time.Now,
	}
}

// Balance returns the wallet, creating it with the default balance on first use.
func (s *WalletService) Balance(ctx context.Context) (*model.Wallet, error) {
	w, err := retry.DoWithData(func() (*model.Wallet, error) {
		w, version, err := s.load(ctx)
		if err != nil {
			return nil, err
		}
		if version != "" {
			return w, nil
		}
		if _, err := s.repo.Write(ctx, w, ""); err != nil {
			return nil, err
		}
		s.logger.Info().Str("balance", w.Balance.StringFixed(2)).Msg("wallet created")
		return w, nil
	}, s.retry.options(ctx, s.logger, store.WalletKey)...)
	if err != nil {
		return nil, fmt.Errorf("get wallet balance: %w", err)
	}
	metrics.WalletBalance.Set(w.Balance.InexactFloat64())
	return w, nil
}

// TopUp adds amount to the balance. amount must be positive.
func (s *WalletService) TopUp(ctx context.Context, amount model.Money) (*model.Wallet, error) {
	if !amount.IsPositive() {
		metrics.TopUpsTotal.WithLabelValues(metrics.ResultRejected).Inc()
		return nil, invalid(CodeInvalidAmount, "amount", "top-up amount must be positive, got %s", amount.String())
	}

	w, err := retry.DoWithData(func() (*model.Wallet, error) {
		w, version, err := s.load(ctx)
		if err != nil {
			return nil, err
		}
		w.Balance = w.Balance.Add(amount)
		w.UpdatedAt = s.now().UTC()
		if _, err := s.repo.Write(ctx, w, version); err != nil {
			return nil, err
		}
		return w, nil
	}, s.retry.options(ctx, s.logger, store.WalletKey)...)
	if err != nil {
		metrics.TopUpsTotal.WithLabelValues(metrics.ResultError).Inc()
		return nil, fmt.Errorf("top up wallet: %w", err)
	}

	metrics.TopUpsTotal.WithLabelValues(metrics.ResultOK).Inc()
	metrics.WalletBalance.Set(w.Balance.InexactFloat64())
	s.logger.Info().
		Str("amount", amount.StringFixed(2)).
		Str("balance", w.Balance.StringFixed(2)).
		Msg("wallet topped up")
	return w, nil
}

// load reads the wallet or returns a fresh default one at the empty version.
func (s *WalletService) load(ctx context.Context) (*model.Wallet, string, error) {
	w, version, err := s.repo.Read(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return &model.Wallet{
			Balance:   s.defaultBalance,
			Currency:  model.CurrencyUSD,
			UpdatedAt: s.now().UTC(),
		}, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return w, version, nil
}
