package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bildit-platform/aipixel/internal/dispatch"
	"github.com/bildit-platform/aipixel/internal/event"
	httpx "github.com/bildit-platform/aipixel/internal/http"
	"github.com/bildit-platform/aipixel/internal/metrics"
	"github.com/bildit-platform/aipixel/internal/sink"
	"github.com/bildit-platform/aipixel/pkg/config"
)

// buildSinks maps the configured output names to sink instances. Unknown
// names are logged and skipped so a typo never takes the server down.
func buildSinks(outputs []string) []sink.Sink {
	var sinks []sink.Sink
	for _, name := range outputs {
		switch name {
		case "log":
			sinks = append(sinks, sink.NewLogSink())
		case "kafka":
			sinks = append(sinks, sink.NewKafkaSinkFromEnv())
		case "postgres", "pg":
			sinks = append(sinks, sink.NewPGSinkFromEnv())
		default:
			log.Printf("unknown output %q, skipping", name)
		}
	}
	if len(sinks) == 0 {
		sinks = append(sinks, sink.NewLogSink())
	}
	return sinks
}

func main() {
	testMode := flag.Bool("test-events", false, "emit synthetic crawler events to the configured sinks and exit")
	flag.Parse()

	cfg := config.Load()
	m := metrics.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sinks := buildSinks(cfg.Outputs)
	var started []sink.Sink
	for _, s := range sinks {
		if err := s.Start(ctx); err != nil {
			log.Printf("sink %s failed to start: %v", s.Name(), err)
			continue
		}
		log.Printf("sink %s started", s.Name())
		started = append(started, s)
	}
	if len(started) == 0 {
		log.Fatalf("no sinks started (outputs=%v)", cfg.Outputs)
	}

	emit := func(ev event.Event) {
		for _, s := range started {
			if err := s.Enqueue(ev); err != nil {
				log.Printf("sink %s enqueue failed: %v", s.Name(), err)
				m.IncrementSinkErrors(s.Name())
				continue
			}
			m.IncrementEventsIngested(s.Name())
		}
	}

	closeSinks := func() {
		for _, s := range started {
			if err := s.Close(); err != nil {
				log.Printf("sink %s close failed: %v", s.Name(), err)
			}
		}
	}

	if *testMode {
		runTestMode(emit)
		closeSinks()
		return
	}

	metricsSrv := metrics.NewServer(metrics.LoadConfig())
	_ = metricsSrv.Start(ctx)

	env := httpx.Env{
		Cfg:        cfg,
		Emit:       emit,
		Metrics:    m,
		Dispatcher: dispatch.New(dispatch.DefaultClient, cfg),
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           httpx.NewMux(env),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("aipixel listening on %s", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	closeSinks()
}
