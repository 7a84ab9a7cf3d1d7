package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewOrderMetrics_Isolated(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	if metrics == nil {
		t.Fatal("newOrderMetricsWithRegisterer should not return nil")
	}
	if metrics.placementStarted == nil {
		t.Error("placementStarted counter should not be nil")
	}
	if metrics.placementCompleted == nil {
		t.Error("placementCompleted counter should not be nil")
	}
	if metrics.placementRejected == nil {
		t.Error("placementRejected counter should not be nil")
	}
	if metrics.placementPartial == nil {
		t.Error("placementPartial counter should not be nil")
	}
	if metrics.placementDuration == nil {
		t.Error("placementDuration histogram should not be nil")
	}
	if metrics.insufficientStock == nil {
		t.Error("insufficientStock counter should not be nil")
	}
	if metrics.outboxEvents == nil {
		t.Error("outboxEvents counter should not be nil")
	}
}

func TestNewOrderMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := newOrderMetricsWithRegisterer(reg)
	second := newOrderMetricsWithRegisterer(reg)

	first.RecordPlacementStarted()
	second.RecordPlacementStarted()

	metric := &dto.Metric{}
	if err := first.placementStarted.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected shared counter value 2.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordPlacementCounters(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordPlacementStarted()
	metrics.RecordPlacementCompleted()
	metrics.RecordPlacementRejected()
	metrics.RecordPlacementPartial()
	metrics.RecordInsufficientStock()
	metrics.RecordOutboxEvent()
	metrics.RecordPlacementDuration(150 * time.Millisecond)

	checks := []struct {
		name    string
		counter prometheus.Counter
	}{
		{"placementStarted", metrics.placementStarted},
		{"placementCompleted", metrics.placementCompleted},
		{"placementRejected", metrics.placementRejected},
		{"placementPartial", metrics.placementPartial},
		{"insufficientStock", metrics.insufficientStock},
		{"outboxEvents", metrics.outboxEvents},
	}
	for _, check := range checks {
		metric := &dto.Metric{}
		if err := check.counter.Write(metric); err != nil {
			t.Fatalf("failed to write %s: %v", check.name, err)
		}
		if metric.Counter.GetValue() != 1.0 {
			t.Errorf("expected %s value 1.0, got %f", check.name, metric.Counter.GetValue())
		}
	}
}
