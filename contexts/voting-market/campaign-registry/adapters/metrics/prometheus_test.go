package metricsadapter

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusCountsVotesAndRejections(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewPrometheus(registry)

	metrics.VoteAccepted(10, 5)
	metrics.VoteAccepted(10, 0)
	metrics.OperationRejected("vote", "duplicate_vote")
	metrics.CommissionWithdrawn(0)

	if got := testutil.ToFloat64(metrics.votesAccepted); got != 2 {
		t.Fatalf("expected 2 accepted votes, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.creditedTotal); got != 20 {
		t.Fatalf("expected 20 credited, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.refundedTotal); got != 5 {
		t.Fatalf("expected 5 refunded, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.rejections.WithLabelValues("vote", "duplicate_vote")); got != 1 {
		t.Fatalf("expected one rejection, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.commissionWithdrawn); got != 0 {
		t.Fatalf("expected no commission, got %v", got)
	}
}
