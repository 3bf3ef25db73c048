package store

import (
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "predictions.db"), "sqlite")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func successRecord(ts time.Time, price float64, version string) Record {
	return Record{
		Timestamp:      FormatTime(ts),
		InputJSON:      `{"MedInc": 8.3252}`,
		PredictionJSON: `{"predicted_price": ` + strconv.FormatFloat(price, 'f', -1, 64) + `}`,
		StatusCode:     200,
		ModelType:      "LinearRegression",
		ModelVersion:   version,
	}
}

func TestAppendAssignsTimestamp(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	rec := Record{
		InputJSON:    `{}`,
		StatusCode:   422,
		ErrorMessage: "validation failed",
		ModelType:    "LinearRegression",
		ModelVersion: "v1",
	}
	id, err := s.Append(&rec)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero record id")
	}
	if rec.ID != id {
		t.Errorf("record ID = %d, want %d", rec.ID, id)
	}

	records, err := s.RecentRecords(10)
	if err != nil {
		t.Fatalf("RecentRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Timestamp == "" {
		t.Fatal("timestamp was not assigned on append")
	}
	if _, err := time.Parse(TimestampLayout, records[0].Timestamp); err != nil {
		t.Fatalf("timestamp %q not in canonical layout: %v", records[0].Timestamp, err)
	}
}

func TestQueryStatsCounts(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	now := time.Now().UTC()
	seed := []Record{
		successRecord(now.Add(-time.Hour), 250000.00, "v1"),
		successRecord(now.Add(-30*time.Minute), 310000.50, "v2"),
		{
			Timestamp:    FormatTime(now.Add(-20 * time.Minute)),
			InputJSON:    `{"MedInc": -5}`,
			StatusCode:   422,
			ErrorMessage: "validation failed: MedInc must be greater than 0",
			ModelType:    "LinearRegression",
			ModelVersion: "v1",
		},
		{
			Timestamp:    FormatTime(now.Add(-10 * time.Minute)),
			InputJSON:    `not json`,
			StatusCode:   400,
			ErrorMessage: "malformed JSON body",
			ModelType:    "LinearRegression",
			ModelVersion: "v1",
		},
		{
			Timestamp:    FormatTime(now.Add(-5 * time.Minute)),
			InputJSON:    `{"MedInc": 8.3}`,
			StatusCode:   500,
			ErrorMessage: "inference failed: dimension mismatch",
			ModelType:    "LinearRegression",
			ModelVersion: "v1",
		},
	}
	for i := range seed {
		if _, err := s.Append(&seed[i]); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	stats, err := s.QueryStats("", "")
	if err != nil {
		t.Fatalf("QueryStats: %v", err)
	}
	if stats.TotalRequests != 5 {
		t.Errorf("TotalRequests = %d, want 5", stats.TotalRequests)
	}
	if stats.Success200 != 2 {
		t.Errorf("Success200 = %d, want 2", stats.Success200)
	}
	if stats.BadRequest400 != 1 {
		t.Errorf("BadRequest400 = %d, want 1", stats.BadRequest400)
	}
	if stats.ValidationErrors422 != 1 {
		t.Errorf("ValidationErrors422 = %d, want 1", stats.ValidationErrors422)
	}
	if stats.InternalErrors500 != 1 {
		t.Errorf("InternalErrors500 = %d, want 1", stats.InternalErrors500)
	}
	if stats.AvgPredictedPrice == nil {
		t.Fatal("AvgPredictedPrice is nil despite successes")
	}
	if got := *stats.AvgPredictedPrice; got != 280000.25 {
		t.Errorf("AvgPredictedPrice = %v, want 280000.25", got)
	}
	if got := stats.ModelVersionUsage["v1"]; got != 4 {
		t.Errorf("usage[v1] = %d, want 4", got)
	}
	if got := stats.ModelVersionUsage["v2"]; got != 1 {
		t.Errorf("usage[v2] = %d, want 1", got)
	}
}

func TestQueryStatsAverageNilWithoutSuccesses(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	rec := Record{
		Timestamp:    FormatTime(time.Now().UTC()),
		InputJSON:    `{}`,
		StatusCode:   422,
		ErrorMessage: "validation failed",
		ModelType:    "LinearRegression",
		ModelVersion: "v1",
	}
	if _, err := s.Append(&rec); err != nil {
		t.Fatalf("Append: %v", err)
	}

	stats, err := s.QueryStats("", "")
	if err != nil {
		t.Fatalf("QueryStats: %v", err)
	}
	if stats.AvgPredictedPrice != nil {
		t.Fatalf("AvgPredictedPrice = %v, want nil", *stats.AvgPredictedPrice)
	}
	if stats.TotalRequests != 1 {
		t.Errorf("TotalRequests = %d, want 1", stats.TotalRequests)
	}
}

func TestQueryStatsWindowFiltering(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	now := time.Now().UTC()
	inside := successRecord(now.Add(-time.Hour), 250000.00, "v1")
	outside := successRecord(now.Add(-30*24*time.Hour), 310000.50, "v1")
	for _, rec := range []*Record{&inside, &outside} {
		if _, err := s.Append(rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	stats, err := s.QueryStats(FormatTime(now.Add(-2*time.Hour)), FormatTime(now))
	if err != nil {
		t.Fatalf("QueryStats: %v", err)
	}
	if stats.TotalRequests != 1 {
		t.Errorf("TotalRequests = %d, want 1 inside the window", stats.TotalRequests)
	}

	// The default window reaches back 15 days, which also excludes
	// the month-old record.
	stats, err = s.QueryStats("", "")
	if err != nil {
		t.Fatalf("QueryStats: %v", err)
	}
	if stats.TotalRequests != 1 {
		t.Errorf("default window TotalRequests = %d, want 1", stats.TotalRequests)
	}
}

func TestQueryStatsWindowIsInclusive(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	ts := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	rec := successRecord(ts, 250000.00, "v1")
	if _, err := s.Append(&rec); err != nil {
		t.Fatalf("Append: %v", err)
	}

	stats, err := s.QueryStats(FormatTime(ts), FormatTime(ts))
	if err != nil {
		t.Fatalf("QueryStats: %v", err)
	}
	if stats.TotalRequests != 1 {
		t.Errorf("TotalRequests = %d, want 1 when the record sits on both boundaries", stats.TotalRequests)
	}
}

func TestQueryStatsInvertedWindow(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	now := time.Now().UTC()
	rec := successRecord(now, 250000.00, "v1")
	if _, err := s.Append(&rec); err != nil {
		t.Fatalf("Append: %v", err)
	}

	stats, err := s.QueryStats(FormatTime(now.Add(time.Hour)), FormatTime(now.Add(-time.Hour)))
	if err != nil {
		t.Fatalf("QueryStats: %v", err)
	}
	if stats.TotalRequests != 0 {
		t.Errorf("TotalRequests = %d, want 0 for inverted window", stats.TotalRequests)
	}
	if stats.AvgPredictedPrice != nil {
		t.Error("AvgPredictedPrice should be nil for an empty window")
	}
}

func TestConcurrentAppends(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := successRecord(time.Now().UTC(), 250000.00, "v1")
			_, err := s.Append(&rec)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Append: %v", err)
		}
	}

	stats, err := s.QueryStats("", "")
	if err != nil {
		t.Fatalf("QueryStats: %v", err)
	}
	if stats.TotalRequests != n {
		t.Errorf("TotalRequests = %d, want %d", stats.TotalRequests, n)
	}
}

func TestRecentRecordsOrderAndLimit(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	now := time.Now().UTC()
	var ids []int64
	for i := 0; i < 5; i++ {
		rec := successRecord(now.Add(time.Duration(i)*time.Second), 250000.00, "v1")
		id, err := s.Append(&rec)
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
		ids = append(ids, id)
	}

	records, err := s.RecentRecords(3)
	if err != nil {
		t.Fatalf("RecentRecords: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].ID != ids[4] {
		t.Errorf("newest record id = %d, want %d", records[0].ID, ids[4])
	}
	if records[2].ID != ids[2] {
		t.Errorf("oldest returned id = %d, want %d", records[2].ID, ids[2])
	}
}
