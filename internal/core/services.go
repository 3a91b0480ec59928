package core

import (
	"github.com/rs/zerolog"

	"github.com/edvin/configurator/internal/model"
	"github.com/edvin/configurator/internal/pricing"
)

type Services struct {
	Wallet    *WalletService
	Provision *ProvisionService
}

func NewServices(engine *pricing.Engine, configs ConfigurationStore, wallets WalletStore, defaultBalance model.Money, policy RetryPolicy, logger zerolog.Logger) *Services {
	wallet := NewWalletService(wallets, defaultBalance, policy, logger)
	return &Services{
		Wallet:    wallet,
		Provision: NewProvisionService(engine, configs, wallet, policy, logger),
	}
}
