package metrics_test

import (
	"testing"

	"github.com/jrsteele09/go-auth-client/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	m.Login(metrics.ResultSuccess)
	m.Renewal(metrics.ResultSuccess)
	m.Renewal(metrics.ResultSuccess)
	m.Renewal(metrics.ResultStale)
	m.LoggedIn()

	count, err := testutil.GatherAndCount(reg, "authclient_renewals_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	m.LoggedOut()
	count, err = testutil.GatherAndCount(reg, "authclient_logouts_total", "authclient_logged_in", "authclient_logins_total")
	require.NoError(t, err)
	require.Equal(t, 3, count)

	t.Run("double registration fails", func(t *testing.T) {
		_, err := metrics.New(reg)
		require.Error(t, err)
	})

	t.Run("nil is a no-op", func(t *testing.T) {
		var m *metrics.Metrics
		m.Login(metrics.ResultFailure)
		m.Renewal(metrics.ResultFailure)
		m.LoggedIn()
		m.LoggedOut()
	})
}
