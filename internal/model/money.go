package model

import "github.com/shopspring/decimal"

// Money is a USD amount. All catalog prices and quotes use it.
type Money = decimal.Decimal

// Currency is an ISO 4217 currency code.
type Currency string

// CurrencyUSD is the only currency the configurator prices in.
const CurrencyUSD Currency = "USD"

// ReferenceMonthHours is the fixed month length used to derive hourly rates.
const ReferenceMonthHours = 730
