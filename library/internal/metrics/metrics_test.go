package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestLedger(t *testing.T) {
	m := NewLedger(prometheus.NewRegistry())

	m.Borrowed()
	m.Borrowed()
	m.Returned(10000)
	m.Returned(0)
	m.MarkedOverdue(3)
	m.MarkedOverdue(0)
	m.Rejected("unavailable")

	require.Equal(t, 2.0, testutil.ToFloat64(m.borrows))
	require.Equal(t, 2.0, testutil.ToFloat64(m.returns))
	require.Equal(t, 10000.0, testutil.ToFloat64(m.fines))
	require.Equal(t, 3.0, testutil.ToFloat64(m.overdue))
	require.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("unavailable")))
}

func TestLedger_Nil(t *testing.T) {
	var m *Ledger
	require.NotPanics(t, func() {
		m.Borrowed()
		m.Returned(5000)
		m.MarkedOverdue(1)
		m.Rejected("conflict")
	})
}
