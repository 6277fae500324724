package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "quotebook"

// Pick results recorded by QuoteStore.PickRandom.
const (
	PickResultHit   = "hit"
	PickResultEmpty = "empty"
)

// Import results recorded by Importer.Import.
const (
	ImportResultOK    = "ok"
	ImportResultError = "error"
)

// Metrics holds the domain instruments for the quote collection.
type Metrics struct {
	added         prometheus.Counter
	removed       prometheus.Counter
	picks         *prometheus.CounterVec
	corruptResets prometheus.Counter
	stored        prometheus.Gauge
	imports       *prometheus.CounterVec
}

// NewMetrics registers the quote metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		added: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "quotes_added_total",
			Help:      "Quotes appended to the collection.",
		}),
		removed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "quotes_removed_total",
			Help:      "Quotes removed from the collection.",
		}),
		picks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "random_picks_total",
			Help:      "Random quote selections by outcome.",
		}, []string{"result"}),
		corruptResets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "corrupt_state_resets_total",
			Help:      "Times unreadable persisted state was replaced by the seed.",
		}),
		stored: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "quotes_stored",
			Help:      "Quotes currently in the collection.",
		}),
		imports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "imports_total",
			Help:      "Remote quote imports by outcome.",
		}, []string{"result"}),
	}
}
