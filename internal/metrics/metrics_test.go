package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func scrape(t *testing.T, p *Provider) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	p.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rr.Code)
	}
	return rr.Body.String()
}

func TestProvider_RuntimeCollectors_AndBuildInfo(t *testing.T) {
	p := Init(Config{Runtime: true, Build: BuildInfo{Version: "test", Revision: "r", Branch: "b", BuildDate: "now"}})

	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_gauge", Help: "smoke"})
	p.Register(g)
	g.Set(42)

	if n := testutil.CollectAndCount(g); n == 0 {
		t.Fatalf("expected at least 1 sample from test_gauge, got %d", n)
	}

	body := scrape(t, p)
	if !strings.Contains(body, "go_goroutines") {
		t.Fatalf("expected go_goroutines in payload; got:\n%s", body)
	}
	if !strings.Contains(body, `app_build_info{branch="b",build_date="now",revision="r",version="test"} 1`) {
		t.Fatalf("expected app_build_info in payload; got:\n%s", body)
	}
}

func TestProvider_WithoutRuntimeCollectors(t *testing.T) {
	body := scrape(t, Init(Config{}))
	if strings.Contains(body, "go_goroutines") {
		t.Fatal("runtime collectors registered although disabled")
	}
	if !strings.Contains(body, `version="dev"`) {
		t.Fatalf("expected default version label; got:\n%s", body)
	}
}

func TestProvider_Push(t *testing.T) {
	var (
		mu   sync.Mutex
		path string
		body string
	)
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		path, body = r.URL.Path, string(b)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer gw.Close()

	p := Init(Config{Build: BuildInfo{Version: "test"}})
	if err := p.Push(context.Background(), gw.URL, "awic_downloader"); err != nil {
		t.Fatalf("Push: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if path != "/metrics/job/awic_downloader" {
		t.Fatalf("path=%q", path)
	}
	if body == "" {
		t.Fatal("empty push body")
	}
}

func TestProvider_PushFailure(t *testing.T) {
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer gw.Close()

	if err := Init(Config{}).Push(context.Background(), gw.URL, "job"); err == nil {
		t.Fatal("expected push error on 500")
	}
}
