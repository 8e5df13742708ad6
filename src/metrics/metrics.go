package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "assetmanager"

// Ingestion holds the collectors of the market data pipeline. Every
// vector is labelled by source.
type Ingestion struct {
	CyclesTotal       *prometheus.CounterVec
	ObservationsTotal *prometheus.CounterVec
	FetchErrorsTotal  *prometheus.CounterVec
	CycleDuration     *prometheus.HistogramVec
	LastSuccess       *prometheus.GaugeVec
	StreamDropped     prometheus.Counter
}

func NewIngestion() *Ingestion {
	return &Ingestion{
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "cycles_total",
			Help:      "Ingestion cycles by outcome",
		}, []string{"source", "outcome"}),
		ObservationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "observations_total",
			Help:      "Observations written to the cache and store",
		}, []string{"source"}),
		FetchErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "fetch_errors_total",
			Help:      "Symbols that could not be fetched",
		}, []string{"source"}),
		CycleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of one ingestion cycle",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		LastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last cycle that stored data",
		}, []string{"source"}),
		StreamDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "stream_dropped_total",
			Help:      "Streamed observations dropped because the buffer was full",
		}),
	}
}

// Register adds all collectors to reg.
func (m *Ingestion) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.CyclesTotal,
		m.ObservationsTotal,
		m.FetchErrorsTotal,
		m.CycleDuration,
		m.LastSuccess,
		m.StreamDropped,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Handler exposes the collectors of gatherer in the text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
