package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "perpustakaan"
	subsystem = "ledger"
)

// Ledger counts borrowing activity. A nil *Ledger is valid and records nothing.
type Ledger struct {
	borrows  prometheus.Counter
	returns  prometheus.Counter
	overdue  prometheus.Counter
	fines    prometheus.Counter
	rejected *prometheus.CounterVec
}

func NewLedger(reg prometheus.Registerer) *Ledger {
	f := promauto.With(reg)
	return &Ledger{
		borrows: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "borrows_total",
			Help: "Books lent out.",
		}),
		returns: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "returns_total",
			Help: "Books handed back.",
		}),
		overdue: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "overdue_marked_total",
			Help: "Borrow records moved to overdue by the sweeper.",
		}),
		fines: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "fines_collected_total",
			Help: "Sum of fines fixed at return time.",
		}),
		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "borrow_rejected_total",
			Help: "Borrow attempts refused, by reason.",
		}, []string{"reason"}),
	}
}

func (m *Ledger) Borrowed() {
	if m == nil {
		return
	}
	m.borrows.Inc()
}

func (m *Ledger) Rejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

func (m *Ledger) Returned(fine int64) {
	if m == nil {
		return
	}
	m.returns.Inc()
	m.fines.Add(float64(fine))
}

func (m *Ledger) MarkedOverdue(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.overdue.Add(float64(n))
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
