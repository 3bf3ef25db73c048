package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/oremus-labs/ol-housing-predictor/internal/store"
)

// The gauges are process-wide, so these tests run sequentially and assert
// deltas rather than absolute counter values.

func TestPublishOverwritesWindowGauges(t *testing.T) {
	avg := 250000.00
	Publish(&store.Stats{
		TotalRequests:       5,
		Success200:          3,
		BadRequest400:       1,
		ValidationErrors422: 1,
		InternalErrors500:   0,
		AvgPredictedPrice:   &avg,
		ModelVersionUsage:   map[string]int64{"v1": 2, "v2": 1},
	})

	if got := testutil.ToFloat64(totalRequests); got != 5 {
		t.Errorf("total_requests = %v, want 5", got)
	}
	if got := testutil.ToFloat64(success200); got != 3 {
		t.Errorf("success_200 = %v, want 3", got)
	}
	if got := testutil.ToFloat64(badRequest400); got != 1 {
		t.Errorf("bad_request_400 = %v, want 1", got)
	}
	if got := testutil.ToFloat64(validationErrors422); got != 1 {
		t.Errorf("validation_errors_422 = %v, want 1", got)
	}
	if got := testutil.ToFloat64(avgPredictedPrice); got != 250000.00 {
		t.Errorf("avg_predicted_price = %v, want 250000.00", got)
	}
	if got := testutil.ToFloat64(modelVersionUsage.WithLabelValues("v1")); got != 2 {
		t.Errorf("model_version_usage{v1} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(modelVersionUsage.WithLabelValues("v2")); got != 1 {
		t.Errorf("model_version_usage{v2} = %v, want 1", got)
	}
}

func TestPublishNilAverageKeepsPriorValue(t *testing.T) {
	avg := 310000.50
	Publish(&store.Stats{
		Success200:        1,
		AvgPredictedPrice: &avg,
		ModelVersionUsage: map[string]int64{"v1": 1},
	})

	// A window with no successes must not zero the average gauge.
	Publish(&store.Stats{
		TotalRequests:       2,
		ValidationErrors422: 2,
		AvgPredictedPrice:   nil,
		ModelVersionUsage:   map[string]int64{"v3": 2},
	})

	if got := testutil.ToFloat64(avgPredictedPrice); got != 310000.50 {
		t.Errorf("avg_predicted_price = %v, want prior value 310000.50", got)
	}
}

func TestPublishResetsVersionUsage(t *testing.T) {
	Publish(&store.Stats{
		ModelVersionUsage: map[string]int64{"v1": 2, "v2": 1},
	})
	Publish(&store.Stats{
		ModelVersionUsage: map[string]int64{"v3": 4},
	})

	if got := testutil.CollectAndCount(modelVersionUsage); got != 1 {
		t.Errorf("model_version_usage carries %d series, want only the latest window's 1", got)
	}
	if got := testutil.ToFloat64(modelVersionUsage.WithLabelValues("v3")); got != 4 {
		t.Errorf("model_version_usage{v3} = %v, want 4", got)
	}
}

func TestPublishNilSnapshotIsNoop(t *testing.T) {
	Publish(&store.Stats{TotalRequests: 7})
	Publish(nil)

	if got := testutil.ToFloat64(totalRequests); got != 7 {
		t.Errorf("total_requests = %v, want 7 after nil publish", got)
	}
}

func TestAttemptCounter(t *testing.T) {
	before := testutil.ToFloat64(predictionRequests)
	IncPredictionAttempts()
	IncPredictionAttempts()
	if got := testutil.ToFloat64(predictionRequests); got != before+2 {
		t.Errorf("prediction_requests_total moved %v -> %v, want +2", before, got)
	}
}

func TestAuditFailureCounter(t *testing.T) {
	before := testutil.ToFloat64(auditAppendFailures)
	IncAuditAppendFailure()
	if got := testutil.ToFloat64(auditAppendFailures); got != before+1 {
		t.Errorf("audit_append_failures_total moved %v -> %v, want +1", before, got)
	}
}
