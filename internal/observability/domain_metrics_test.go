package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveModelCallCountsOutcome(t *testing.T) {
	before := testutil.ToFloat64(modelCallsTotal.WithLabelValues("stub", "translate", OutcomeError))
	ObserveModelCall("stub", "translate", errors.New("boom"), 10*time.Millisecond)
	after := testutil.ToFloat64(modelCallsTotal.WithLabelValues("stub", "translate", OutcomeError))
	if after-before != 1 {
		t.Fatalf("error calls delta = %v", after-before)
	}
}

func TestObserveLoaderFileDefaultsFormat(t *testing.T) {
	before := testutil.ToFloat64(loaderFilesTotal.WithLabelValues("unknown", OutcomeSkipped))
	ObserveLoaderFile("", OutcomeSkipped, 0)
	after := testutil.ToFloat64(loaderFilesTotal.WithLabelValues("unknown", OutcomeSkipped))
	if after-before != 1 {
		t.Fatalf("skipped files delta = %v", after-before)
	}
}
