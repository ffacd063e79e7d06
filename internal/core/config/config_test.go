package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"AWIC_BASE_URL", "AWIC_CLOUD_COVERAGE_MAX", "AWIC_HTTP_TIMEOUT", "H3_RES", "KAFKA_BROKERS"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	if cfg.BaseURL != DefaultBaseURL {
		t.Fatalf("BaseURL=%q want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.CloudCoverageMax != 100 {
		t.Fatalf("CloudCoverageMax=%d want 100", cfg.CloudCoverageMax)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("HTTPTimeout=%v want 30s", cfg.HTTPTimeout)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("AWIC_BASE_URL", "http://localhost:9999/awic/")
	t.Setenv("AWIC_CLOUD_COVERAGE_MAX", "40")
	t.Setenv("AWIC_HTTP_TIMEOUT", "5s")
	t.Setenv("H3_RES", "42")
	t.Setenv("EVENTS_ENABLED", "yes")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,,")

	cfg := FromEnv()
	if cfg.BaseURL != "http://localhost:9999/awic/" {
		t.Fatalf("BaseURL=%q", cfg.BaseURL)
	}
	if cfg.CloudCoverageMax != 40 {
		t.Fatalf("CloudCoverageMax=%d want 40", cfg.CloudCoverageMax)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Fatalf("HTTPTimeout=%v want 5s", cfg.HTTPTimeout)
	}
	if cfg.H3Res != 15 {
		t.Fatalf("H3Res=%d want clamp to 15", cfg.H3Res)
	}
	if !cfg.Events.Enabled {
		t.Fatal("expected events enabled")
	}
	got := cfg.Events.BrokerList()
	if len(got) != 2 || got[0] != "a:9092" || got[1] != "b:9092" {
		t.Fatalf("BrokerList=%v", got)
	}
}

func TestFromEnv_CloudCoverageOutOfRangeFallsBack(t *testing.T) {
	t.Setenv("AWIC_CLOUD_COVERAGE_MAX", "150")
	if got := FromEnv().CloudCoverageMax; got != 100 {
		t.Fatalf("CloudCoverageMax=%d want 100", got)
	}
}

func TestFromEnv_Metrics(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("METRICS_PUSH_URL", "http://pushgateway:9091")
	cfg := FromEnv()
	if cfg.Metrics.Enabled {
		t.Fatal("expected metrics disabled")
	}
	if cfg.Metrics.PushURL != "http://pushgateway:9091" || cfg.Metrics.Job != "awic_downloader" {
		t.Fatalf("unexpected metrics config %+v", cfg.Metrics)
	}
}
