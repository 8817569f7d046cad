package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func TestCountersExposed(t *testing.T) {
	before := testutil.ToFloat64(TransitionsTotal.WithLabelValues("low"))
	TransitionsTotal.WithLabelValues("low").Inc()
	if got := testutil.ToFloat64(TransitionsTotal.WithLabelValues("low")); got != before+1 {
		t.Fatalf("expected counter to increase by 1, got %v -> %v", before, got)
	}

	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "clipstitch_transitions_total") {
		t.Fatalf("metrics output missing clipstitch_transitions_total")
	}
}

func TestServerHealthz(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := StartServer(ctx, "127.0.0.1:0", zerolog.Nop())

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthz response %d %q", rec.Code, rec.Body.String())
	}
}
