package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "configurator_quotes_total",
			Help: "Total number of priced drafts",
		},
		[]string{"resource_kind", "billing_mode", "result"},
	)

	ValidationIssuesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "configurator_validation_issues_total",
			Help: "Total number of validation issues reported, by code",
		},
		[]string{"code"},
	)

	CommitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "configurator_commits_total",
			Help: "Total number of configuration commits",
		},
		[]string{"mode", "result"},
	)

	ProvisionedRecordsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "configurator_provisioned_records_total",
			Help: "Total number of configuration records written by new commits",
		},
	)

	VersionConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "configurator_version_conflicts_total",
			Help: "Optimistic concurrency conflicts seen on persisted blobs",
		},
		[]string{"blob"},
	)

	TopUpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "configurator_wallet_top_ups_total",
			Help: "Total number of wallet top-ups",
		},
		[]string{"result"},
	)

	WalletBalance = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "configurator_wallet_balance",
			Help: "Last observed wallet balance in the wallet currency",
		},
	)
)

// Result label values.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)
