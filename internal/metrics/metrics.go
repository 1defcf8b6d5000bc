// Package metrics exposes Prometheus metrics for shortage analysis runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/analysis"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/models"
)

// Registry is the custom registry; nothing is registered on the global default.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var AnalysisDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "hospital_network",
	Name:      "analysis_duration_seconds",
	Help:      "Time taken to analyze the whole hospital network",
	Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
})

// AnalysisRunsTotal counts runs by outcome ("ok", "config_error", "error").
var AnalysisRunsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "hospital_network",
	Name:      "analysis_runs_total",
	Help:      "Analysis runs by outcome",
}, []string{"outcome"})

var Shortages = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "hospital_network",
	Name:      "shortages",
	Help:      "Shortages found by the last analysis run",
}, []string{"severity", "category"})

var TransferRecommendations = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "hospital_network",
	Name:      "transfer_recommendations",
	Help:      "Transfer recommendations produced by the last analysis run",
})

var SupplierRecommendations = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "hospital_network",
	Name:      "supplier_recommendations",
	Help:      "Supplier options produced by the last analysis run",
})

var UnmitigatedShortages = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "hospital_network",
	Name:      "unmitigated_shortages",
	Help:      "Critical equipment shortages with no transfer and no supplier",
})

var StreamSubscribers = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "hospital_network",
	Name:      "stream_subscribers",
	Help:      "Connected shortage alert stream subscribers",
})

var StreamDroppedAlerts = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "hospital_network",
	Name:      "stream_dropped_alerts_total",
	Help:      "Alerts skipped because a subscriber's buffer was full",
})

// ObserveResult replaces the last-run gauges with the figures from res.
func ObserveResult(res *analysis.Result, elapsed time.Duration) {
	AnalysisDurationSeconds.Observe(elapsed.Seconds())
	AnalysisRunsTotal.WithLabelValues("ok").Inc()

	Shortages.Reset()
	for _, sev := range []models.Severity{models.SeverityWarning, models.SeverityCritical} {
		for _, cat := range []models.Category{models.CategoryEquipment, models.CategorySupplies} {
			Shortages.WithLabelValues(string(sev), string(cat)).Set(0)
		}
	}
	for _, s := range res.CriticalShortages {
		Shortages.WithLabelValues(string(s.Severity), string(s.Category)).Inc()
	}

	TransferRecommendations.Set(float64(len(res.TransferRecommendations)))
	SupplierRecommendations.Set(float64(len(res.SupplierRecommendations)))
	UnmitigatedShortages.Set(float64(len(res.Unmitigated())))
}

func ObserveFailure(outcome string) {
	AnalysisRunsTotal.WithLabelValues(outcome).Inc()
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
