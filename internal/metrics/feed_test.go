package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterFeedMetrics_Idempotent(t *testing.T) {
	RegisterFeedMetrics()
	RegisterFeedMetrics()
	if !feedMetricsRegistered {
		t.Fatal("expected registered flag")
	}
}

func TestFeedBatchesTotal_Labels(t *testing.T) {
	FeedBatchesTotal.WithLabelValues("ok").Inc()
	if v := testutil.ToFloat64(FeedBatchesTotal.WithLabelValues("ok")); v < 1 {
		t.Errorf("expected >= 1, got %v", v)
	}
}
