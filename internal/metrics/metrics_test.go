package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCatalog(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantOutcome string
	}{
		{"success", nil, "ok"},
		{"failure", errors.New("boom"), "error"},
		{"breaker open", fmt.Errorf("search: %w", ErrBreakerOpen), "breaker_open"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := CatalogRequests.WithLabelValues("search", tc.wantOutcome)
			before := testutil.ToFloat64(c)
			RecordCatalog("search", tc.err)
			if got := testutil.ToFloat64(c); got != before+1 {
				t.Fatalf("expected counter to increase by 1, got %v -> %v", before, got)
			}
		})
	}
}

func TestRecordStage_IgnoresZero(t *testing.T) {
	c := ResolvedTracks.WithLabelValues("direct")
	before := testutil.ToFloat64(c)
	RecordStage("direct", 0)
	RecordStage("direct", 3)
	if got := testutil.ToFloat64(c); got != before+3 {
		t.Fatalf("expected +3, got %v -> %v", before, got)
	}
}

func TestRecordResolve_Shortfall(t *testing.T) {
	before := testutil.ToFloat64(ResolveShortfall)
	RecordResolve(10*time.Millisecond, 6, 6)
	RecordResolve(10*time.Millisecond, 2, 6)
	if got := testutil.ToFloat64(ResolveShortfall); got != before+1 {
		t.Fatalf("expected one shortfall, got %v -> %v", before, got)
	}
}
