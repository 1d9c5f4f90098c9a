package metrics

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_RegistersAndCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementEventsIngested("log")
	m.IncrementEventsIngested("log")
	m.IncrementSinkErrors("kafka")
	m.IncrementHTTPRequests("/px.gif", "GET", "200")
	m.IncrementBotMatches("openai-gptbot")
	m.IncrementBeaconsDispatched("triggered")
	m.ObserveHTTPDuration("/px.gif", "GET", 5*time.Millisecond)

	if got := testutil.ToFloat64(m.EventsIngested.WithLabelValues("log")); got != 2 {
		t.Errorf("events ingested = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.BotMatches.WithLabelValues("openai-gptbot")); got != 1 {
		t.Errorf("bot matches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.BeaconsDispatched.WithLabelValues("triggered")); got != 1 {
		t.Errorf("beacons dispatched = %v, want 1", got)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		os.Unsetenv("METRICS_ENABLED")
		os.Unsetenv("METRICS_ADDR")
		cfg := LoadConfig()
		if cfg.Enabled {
			t.Error("metrics should be disabled by default")
		}
		if cfg.Addr != "127.0.0.1:9090" {
			t.Errorf("Addr = %q", cfg.Addr)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		os.Setenv("METRICS_ENABLED", "true")
		os.Setenv("METRICS_ADDR", ":9999")
		defer os.Unsetenv("METRICS_ENABLED")
		defer os.Unsetenv("METRICS_ADDR")
		cfg := LoadConfig()
		if !cfg.Enabled || cfg.Addr != ":9999" {
			t.Errorf("cfg = %+v", cfg)
		}
	})
}

func TestServer_DisabledLifecycle(t *testing.T) {
	s := NewServer(Config{Enabled: false})
	if err := s.Start(context.Background()); err != nil {
		t.Errorf("Start: %v", err)
	}
	if err := s.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}
