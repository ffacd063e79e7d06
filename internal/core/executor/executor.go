// Package executor issues requests against the AWIC service and classifies
// their failures.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mohammed-shakir/awic-downloader/internal/cache/keys"
	"github.com/mohammed-shakir/awic-downloader/internal/core/apperr"
	"github.com/mohammed-shakir/awic-downloader/internal/core/awicapi"
	"github.com/mohammed-shakir/awic-downloader/internal/core/model"
	"github.com/mohammed-shakir/awic-downloader/internal/core/observability"
)

type Interface interface {
	FetchGeometries(ctx context.Context, q model.Query) (Payload, error)
	FetchAWIC(ctx context.Context, q model.Query) (Payload, error)
}

// Cache stores upstream bodies by query key.
type Cache interface {
	Get(key string) ([]byte, bool)
	Add(key string, body []byte)
}

// Payload is an upstream body together with the URL that produced it.
type Payload struct {
	URL         string
	Body        []byte
	ContentType string
	Cached      bool
}

type Executor struct {
	logger   *slog.Logger
	client   *http.Client
	baseURL  *url.URL
	cache    Cache
	startNow func() time.Time // for tests
}

type Option func(*Executor)

func WithCache(c Cache) Option {
	return func(e *Executor) { e.cache = c }
}

func New(logger *slog.Logger, client *http.Client, base string, opts ...Option) (*Executor, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", base)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e := &Executor{
		logger:   logger,
		client:   client,
		baseURL:  u,
		startNow: time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

func (e *Executor) FetchGeometries(ctx context.Context, q model.Query) (Payload, error) {
	return e.fetch(ctx, awicapi.ProcGeometries, awicapi.BuildGeometriesParams(q))
}

func (e *Executor) FetchAWIC(ctx context.Context, q model.Query) (Payload, error) {
	return e.fetch(ctx, awicapi.ProcAWIC, awicapi.BuildAWICParams(q))
}

func (e *Executor) fetch(ctx context.Context, proc string, params url.Values) (Payload, error) {
	target := awicapi.RequestURL(e.baseURL.String(), proc, params)
	key := keys.Key(proc, params)

	if e.cache != nil {
		if b, ok := e.cache.Get(key); ok {
			e.logger.Debug("upstream cache hit", "proc", proc)
			observability.IncUpstream(proc, "cache_hit")
			return Payload{URL: target, Body: b, ContentType: "application/json", Cached: true}, nil
		}
	}

	e.logger.Info("executing request", "proc", proc, "url", target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Payload{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := e.startNow()
	resp, err := e.client.Do(req)
	if err != nil {
		observability.IncUpstream(proc, "network_error")
		return Payload{}, apperr.Network(target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	dur := time.Since(start)
	observability.ObserveUpstreamLatency(proc, dur.Seconds())
	e.logger.Debug("request done", "proc", proc, "status", resp.StatusCode, "duration", dur.String())

	if resp.StatusCode == http.StatusRequestURITooLong {
		observability.IncUpstream(proc, "status_error")
		return Payload{}, apperr.Response(target, resp.StatusCode, "Request-URI Too Large", nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		observability.IncUpstream(proc, "status_error")
		return Payload{}, apperr.Response(target, resp.StatusCode,
			"unexpected status: "+strings.TrimSpace(string(b)), nil)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.IncUpstream(proc, "network_error")
		return Payload{}, apperr.Network(target, fmt.Errorf("read body: %w", err))
	}
	if err := checkAPIError(b); err != nil {
		observability.IncUpstream(proc, "api_error")
		return Payload{}, apperr.Response(target, resp.StatusCode, err.Error(), nil)
	}

	observability.IncUpstream(proc, "ok")
	if e.cache != nil {
		e.cache.Add(key, b)
	}
	return Payload{URL: target, Body: b, ContentType: resp.Header.Get("Content-Type")}, nil
}

// checkAPIError detects the {"code": "...", "message": "..."} envelope the
// service returns with a 200 status, e.g. 0100E for an oversized query.
func checkAPIError(body []byte) error {
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") {
		return nil
	}
	var env struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &env); err != nil || env.Code == "" {
		return nil
	}
	return fmt.Errorf("API returned error %s: %s", env.Code, env.Message)
}
