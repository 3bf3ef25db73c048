// Package metrics republishes audit log aggregates as Prometheus gauges
// and tracks process-lifetime prediction counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/oremus-labs/ol-housing-predictor/internal/store"
)

var (
	totalRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "total_requests",
		Help: "Requests in the most recently queried stats window",
	})
	success200 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "success_200",
		Help: "Successful predictions in the most recently queried stats window",
	})
	badRequest400 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bad_request_400",
		Help: "Malformed requests in the most recently queried stats window",
	})
	validationErrors422 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "validation_errors_422",
		Help: "Validation failures in the most recently queried stats window",
	})
	internalErrors500 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "internal_errors_500",
		Help: "Inference failures in the most recently queried stats window",
	})
	avgPredictedPrice = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "avg_predicted_price",
		Help: "Average predicted price (USD) among successes in the most recently queried stats window",
	})
	modelVersionUsage = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "model_version_usage",
		Help: "Requests per model version in the most recently queried stats window",
	}, []string{"version"})

	predictionRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prediction_requests_total",
		Help: "Prediction attempts since process start, regardless of outcome",
	})
	auditAppendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_append_failures_total",
		Help: "Audit log writes that failed after the response outcome was decided",
	})
)

// Publish overwrites the window gauges from a freshly computed snapshot.
// Gauges are point-in-time, last-writer-wins. A window with no successes
// leaves avg_predicted_price at its prior value rather than reporting a
// misleading zero average.
func Publish(stats *store.Stats) {
	if stats == nil {
		return
	}
	totalRequests.Set(float64(stats.TotalRequests))
	success200.Set(float64(stats.Success200))
	badRequest400.Set(float64(stats.BadRequest400))
	validationErrors422.Set(float64(stats.ValidationErrors422))
	internalErrors500.Set(float64(stats.InternalErrors500))
	if stats.AvgPredictedPrice != nil {
		avgPredictedPrice.Set(*stats.AvgPredictedPrice)
	}
	modelVersionUsage.Reset()
	for version, count := range stats.ModelVersionUsage {
		modelVersionUsage.WithLabelValues(version).Set(float64(count))
	}
}

// IncPredictionAttempts bumps the monotonic attempt counter. Called at
// request entry, before validation.
func IncPredictionAttempts() {
	predictionRequests.Inc()
}

// IncAuditAppendFailure records a storage failure surfaced through the
// operational channel instead of the response body.
func IncAuditAppendFailure() {
	auditAppendFailures.Inc()
}
