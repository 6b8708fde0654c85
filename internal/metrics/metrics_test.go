package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/", "/"},
		{"/metrics", "/metrics"},
		{"/api/resume/health", "/api/resume/health"},
		{"/api/resume/analyze", "/api/resume/analyze"},
		{"/api/resume/analyze/extra", "/unmatched"},
		{"/wp-admin.php", "/unmatched"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.in); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMiddlewareCountsRequests(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/api/resume/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/resume/health", nil), -1)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		resp.Body.Close()
	}

	if got := counterSum(t, m, "resume_http_requests_total"); got != 3 {
		t.Errorf("resume_http_requests_total = %v, want 3", got)
	}
}

func TestObserveAnalysisByOutcome(t *testing.T) {
	m := New()
	m.ObserveAnalysis(OutcomeSuccess, 120*time.Millisecond)
	m.ObserveAnalysis("validation", time.Millisecond)
	m.ObserveAnalysis("validation", time.Millisecond)

	if got := counterSum(t, m, "resume_analysis_requests_total"); got != 3 {
		t.Errorf("resume_analysis_requests_total = %v, want 3", got)
	}
}

// counterSum adds up a counter family across all label combinations.
func counterSum(t *testing.T, m *Metrics, name string) float64 {
	t.Helper()

	families, err := m.registry.Gather()
	if err != nil {
		t.Fatalf("gathering metrics: %v", err)
	}

	var sum float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			sum += metric.GetCounter().GetValue()
		}
	}
	return sum
}
