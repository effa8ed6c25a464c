package prometheus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MrEthical07/sessionauth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeSource struct {
	snapshot sessionauth.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() sessionauth.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                         { return f.dropped }

func sampleSource() fakeSource {
	return fakeSource{
		snapshot: sessionauth.MetricsSnapshot{
			Counters: map[sessionauth.MetricID]uint64{
				sessionauth.MetricLoginSuccess:    7,
				sessionauth.MetricRefreshRaceLost: 1,
			},
			Histograms: map[sessionauth.MetricID][]uint64{
				sessionauth.MetricVerifyLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	}
}

func TestCollectorCounters(t *testing.T) {
	c := NewCollector(sampleSource())

	expected := `
# HELP sessionauth_login_success_total Successful logins.
# TYPE sessionauth_login_success_total counter
sessionauth_login_success_total 7
# HELP sessionauth_refresh_race_lost_total Refreshes that lost a concurrent rotation.
# TYPE sessionauth_refresh_race_lost_total counter
sessionauth_refresh_race_lost_total 1
# HELP sessionauth_audit_dropped_total Audit events dropped because the dispatcher buffer was full.
# TYPE sessionauth_audit_dropped_total counter
sessionauth_audit_dropped_total 2
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"sessionauth_login_success_total", "sessionauth_refresh_race_lost_total", "sessionauth_audit_dropped_total")
	if err != nil {
		t.Fatal(err)
	}
}

func TestCollectorHistogramIsCumulative(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	reg.MustRegister(NewCollector(sampleSource()))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "sessionauth_verify_latency_seconds" {
			continue
		}
		h := mf.GetMetric()[0].GetHistogram()
		if h.GetSampleCount() != 36 {
			t.Fatalf("sample count = %d, want 36", h.GetSampleCount())
		}
		b := h.GetBucket()
		if b[0].GetUpperBound() != 0.005 || b[0].GetCumulativeCount() != 1 {
			t.Fatalf("unexpected first bucket %v", b[0])
		}
		if b[6].GetUpperBound() != 0.5 || b[6].GetCumulativeCount() != 28 {
			t.Fatalf("unexpected last finite bucket %v", b[6])
		}
		return
	}
	t.Fatal("histogram not gathered")
}

func TestCollectorSkipsDisabledHistogram(t *testing.T) {
	m := sessionauth.NewMetrics(sessionauth.MetricsConfig{Enabled: true})
	m.Inc(sessionauth.MetricLoginFailure)
	src := fakeSource{snapshot: m.Snapshot()}

	if got := testutil.CollectAndCount(NewCollector(src), "sessionauth_verify_latency_seconds"); got != 0 {
		t.Fatalf("expected no histogram series, got %d", got)
	}
	if got := testutil.CollectAndCount(NewCollector(src)); got != 12 {
		t.Fatalf("expected 11 counters plus audit dropped, got %d", got)
	}
}

func TestHandlerServesExposition(t *testing.T) {
	h, err := Handler(sampleSource())
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), "sessionauth_login_success_total 7") {
		t.Fatalf("missing counter in:\n%s", body)
	}
	if !strings.Contains(string(body), `sessionauth_verify_latency_seconds_bucket{le="+Inf"} 36`) {
		t.Fatalf("missing +Inf bucket in:\n%s", body)
	}
}
