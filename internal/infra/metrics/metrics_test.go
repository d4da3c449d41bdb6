//go:build !integration

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMustRegister_Idempotent(t *testing.T) {
	MustRegister()
	MustRegister()

	if err := prometheus.Register(allowedDay); err == nil {
		t.Fatal("expected allowedDay to be registered already")
	}
}

func TestCalendarHelpers(t *testing.T) {
	SetAllowedDay(3)
	if got := testutil.ToFloat64(allowedDay); got != 3 {
		t.Fatalf("allowed day gauge = %v", got)
	}

	before := testutil.ToFloat64(opensTotal.WithLabelValues("accepted"))
	IncOpen(" Accepted ")
	if got := testutil.ToFloat64(opensTotal.WithLabelValues("accepted")); got != before+1 {
		t.Fatalf("opens counter = %v, want %v", got, before+1)
	}

	SetCards("future", 5)
	if got := testutil.ToFloat64(cardsByState.WithLabelValues("future")); got != 5 {
		t.Fatalf("cards gauge = %v", got)
	}
}
