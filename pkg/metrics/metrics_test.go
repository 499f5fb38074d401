package metrics_test

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Sternrassler/tabquery-client/pkg/cache"
	"github.com/Sternrassler/tabquery-client/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func TestRegistry(t *testing.T) {
	if metrics.Registry == nil {
		t.Error("Registry should not be nil")
	}

	if metrics.Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
}

func TestHandlerExposesClientMetrics(t *testing.T) {
	// A vector is only reported once it has a child
	store := cache.NewMemory(0)
	store.Get(context.Background(), cache.NewCallKey("price_daily", nil))

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "tabquery_cache_misses_total") {
		t.Error("metrics output does not contain tabquery_cache_misses_total")
	}
}

func TestNamesArePrefixed(t *testing.T) {
	for _, name := range metrics.Names {
		if !strings.HasPrefix(name, "tabquery_") {
			t.Errorf("metric %q lacks the tabquery_ prefix", name)
		}
	}
}
