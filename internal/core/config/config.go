package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const DefaultBaseURL = "https://wsi.land.copernicus.eu/awic/"

type EventsCfg struct {
	Enabled bool
	Brokers string
	Topic   string
}

type MetricsCfg struct {
	// Enabled mounts Path on the server router.
	Enabled bool
	Path    string
	// PushURL is the Pushgateway the CLI pushes to after each run.
	PushURL string
	Job     string
}

type Config struct {
	BaseURL          string
	CloudCoverageMax int
	HTTPTimeout      time.Duration
	LogLevel         string
	LogConsole       bool
	Addr             string
	H3Res            int
	CacheSize        int
	CacheTTL         time.Duration
	Events           EventsCfg
	Metrics          MetricsCfg
}

// Default returns the configuration used when no environment overrides apply.
func Default() Config {
	return Config{
		BaseURL:          DefaultBaseURL,
		CloudCoverageMax: 100,
		HTTPTimeout:      30 * time.Second,
		LogLevel:         "info",
		Addr:             ":8090",
		H3Res:            6,
		CacheSize:        256,
		CacheTTL:         10 * time.Minute,
		Events: EventsCfg{
			Brokers: "localhost:9092",
			Topic:   "awic-downloads",
		},
		Metrics: MetricsCfg{
			Enabled: true,
			Path:    "/metrics",
			Job:     "awic_downloader",
		},
	}
}

func FromEnv() Config {
	def := Default()

	res := getint("H3_RES", def.H3Res)
	if res < 0 {
		res = 0
	}
	if res > 15 {
		res = 15
	}

	ccm := getint("AWIC_CLOUD_COVERAGE_MAX", def.CloudCoverageMax)
	if ccm < 0 || ccm > 100 {
		ccm = def.CloudCoverageMax
	}

	return Config{
		BaseURL:          getenv("AWIC_BASE_URL", def.BaseURL),
		CloudCoverageMax: ccm,
		HTTPTimeout:      getduration("AWIC_HTTP_TIMEOUT", def.HTTPTimeout),
		LogLevel:         getenv("LOG_LEVEL", def.LogLevel),
		LogConsole:       getbool("LOG_CONSOLE", false),
		Addr:             getenv("ADDR", def.Addr),
		H3Res:            res,
		CacheSize:        getint("CACHE_SIZE", def.CacheSize),
		CacheTTL:         getduration("CACHE_TTL", def.CacheTTL),
		Events: EventsCfg{
			Enabled: getbool("EVENTS_ENABLED", false),
			Brokers: getenv("KAFKA_BROKERS", def.Events.Brokers),
			Topic:   getenv("KAFKA_TOPIC", def.Events.Topic),
		},
		Metrics: MetricsCfg{
			Enabled: getbool("METRICS_ENABLED", def.Metrics.Enabled),
			Path:    getenv("METRICS_PATH", def.Metrics.Path),
			PushURL: getenv("METRICS_PUSH_URL", ""),
			Job:     getenv("METRICS_JOB", def.Metrics.Job),
		},
	}
}

// BrokerList splits the comma separated broker list.
func (e EventsCfg) BrokerList() []string {
	var out []string
	for b := range strings.SplitSeq(e.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
