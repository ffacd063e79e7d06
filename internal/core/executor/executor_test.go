package executor

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/mohammed-shakir/awic-downloader/internal/core/apperr"
	"github.com/mohammed-shakir/awic-downloader/internal/core/awicapi"
	"github.com/mohammed-shakir/awic-downloader/internal/core/model"
)

type upstreamRecorder struct {
	mu     sync.Mutex
	paths  []string
	query  url.Values
	header http.Header

	status int
	body   string
}

func (u *upstreamRecorder) handler(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.paths = append(u.paths, r.URL.Path)
	u.query = r.URL.Query()
	u.header = r.Header.Clone()
	status, body := u.status, u.body
	u.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (u *upstreamRecorder) snapshot() ([]string, url.Values, http.Header) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.paths...), u.query, u.header
}

func newExec(t *testing.T, up *upstreamRecorder, opts ...Option) *Executor {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(up.handler))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	exec, err := New(logger, srv.Client(), srv.URL+"/awic/", opts...)
	if err != nil {
		t.Fatalf("executor.New: %v", err)
	}
	return exec
}

func testQuery() model.Query {
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 25, 0, 0, 0, 0, time.UTC)
	return model.Query{
		StartDate:      start,
		CompletionDate: end,
		Geometry:       model.GeometrySource{SRID: model.SRIDWGS84, WKT: "POINT(22.457940 49.367854)"},
	}
}

func TestFetchAWIC_SendsQuery(t *testing.T) {
	up := &upstreamRecorder{body: `[{"j":[1,"20250116",101500,10,0,90,0,0,0,1,0,100,2]}]`}
	exec := newExec(t, up)

	q := testQuery()
	p, err := exec.FetchAWIC(context.Background(), q)
	if err != nil {
		t.Fatalf("FetchAWIC: %v", err)
	}
	if string(p.Body) != up.body {
		t.Fatalf("body=%q", p.Body)
	}

	paths, got, hdr := up.snapshot()
	if len(paths) != 1 || paths[0] != "/awic/get_awic" {
		t.Fatalf("paths=%v want [/awic/get_awic]", paths)
	}
	want := awicapi.BuildAWICParams(q)
	if got.Encode() != want.Encode() {
		t.Fatalf("mismatched query.\n got: %s\nwant: %s", got.Encode(), want.Encode())
	}
	if hdr.Get("Accept") != "application/json" {
		t.Fatalf("Accept=%q", hdr.Get("Accept"))
	}
}

func TestFetchGeometries_Path(t *testing.T) {
	up := &upstreamRecorder{body: `[]`}
	exec := newExec(t, up)

	if _, err := exec.FetchGeometries(context.Background(), testQuery()); err != nil {
		t.Fatalf("FetchGeometries: %v", err)
	}
	paths, q, _ := up.snapshot()
	if paths[0] != "/awic/get_geometries" {
		t.Fatalf("path=%q", paths[0])
	}
	if q.Get("output_srid") != "wgs84" {
		t.Fatalf("output_srid=%q", q.Get("output_srid"))
	}
}

func TestFetch_StatusErrorsAreResponseErrors(t *testing.T) {
	for _, status := range []int{http.StatusRequestURITooLong, http.StatusInternalServerError, http.StatusNotFound} {
		up := &upstreamRecorder{status: status, body: "nope"}
		exec := newExec(t, up)
		_, err := exec.FetchAWIC(context.Background(), testQuery())
		if !apperr.IsResponse(err) {
			t.Fatalf("status %d: err=%v want ResponseError", status, err)
		}
	}
}

func TestFetch_APIErrorEnvelope(t *testing.T) {
	up := &upstreamRecorder{body: `{"code":"0100E","message":"too many geometries"}`}
	exec := newExec(t, up)
	_, err := exec.FetchGeometries(context.Background(), testQuery())
	if !apperr.IsResponse(err) {
		t.Fatalf("err=%v want ResponseError", err)
	}
}

func TestFetch_TransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL + "/awic/"
	srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	exec, err := New(logger, &http.Client{Timeout: time.Second}, base)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = exec.FetchAWIC(context.Background(), testQuery())
	if !apperr.IsNetwork(err) {
		t.Fatalf("err=%v want NetworkError", err)
	}
}

type mapCache struct {
	mu sync.Mutex
	m  map[string][]byte
}

func (c *mapCache) Get(k string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.m[k]
	return b, ok
}

func (c *mapCache) Add(k string, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[k] = b
}

func TestFetch_CacheServesRepeatedQuery(t *testing.T) {
	up := &upstreamRecorder{body: `[]`}
	cache := &mapCache{m: map[string][]byte{}}
	exec := newExec(t, up, WithCache(cache))

	for range 3 {
		p, err := exec.FetchAWIC(context.Background(), testQuery())
		if err != nil {
			t.Fatalf("FetchAWIC: %v", err)
		}
		if string(p.Body) != `[]` {
			t.Fatalf("body=%q", p.Body)
		}
	}
	paths, _, _ := up.snapshot()
	if len(paths) != 1 {
		t.Fatalf("upstream calls=%d want 1", len(paths))
	}
}

func TestFetch_ErrorsAreNotCached(t *testing.T) {
	up := &upstreamRecorder{status: http.StatusBadGateway}
	cache := &mapCache{m: map[string][]byte{}}
	exec := newExec(t, up, WithCache(cache))

	_, _ = exec.FetchAWIC(context.Background(), testQuery())
	if len(cache.m) != 0 {
		t.Fatalf("cache has %d entries after failure", len(cache.m))
	}
}

func TestNew_RejectsRelativeBase(t *testing.T) {
	if _, err := New(slog.Default(), nil, "/awic/"); err == nil {
		t.Fatal("expected error for relative base url")
	}
}

func TestDecodeItems(t *testing.T) {
	items, err := DecodeItems(Payload{Body: []byte(`[{"j":[1,2]},{"x":1},{"j":[3]}]`)})
	if err != nil {
		t.Fatalf("DecodeItems: %v", err)
	}
	if len(items) != 3 || len(items[0]) != 2 || items[1] != nil || len(items[2]) != 1 {
		t.Fatalf("items=%v", items)
	}

	if _, err := DecodeItems(Payload{Body: []byte(`<html>`)}); err == nil {
		t.Fatal("expected error for non-json body")
	}
}
