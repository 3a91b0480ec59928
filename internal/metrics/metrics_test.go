package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_Routes(t *testing.T) {
	srv := NewServer(":0")
	assert.Equal(t, ":0", srv.Addr)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())

	QuotesTotal.WithLabelValues("instance", "subscription", ResultOK).Inc()
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "configurator_quotes_total")
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(TopUpsTotal.WithLabelValues(ResultOK))
	TopUpsTotal.WithLabelValues(ResultOK).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(TopUpsTotal.WithLabelValues(ResultOK)))

	WalletBalance.Set(42.5)
	assert.Equal(t, 42.5, testutil.ToFloat64(WalletBalance))
}

func TestRegisterPgxPoolMetrics(t *testing.T) {
	// pgxpool connects lazily, so an unreachable address is fine here.
	pool, err := pgxpool.New(context.Background(), "postgres://nobody@127.0.0.1:1/none")
	require.NoError(t, err)
	defer pool.Close()

	reg := prometheus.NewRegistry()
	RegisterPgxPoolMetrics(reg, pool)

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = testutil.GatherAndCount(reg, "configurator_pgxpool_idle_conns")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
