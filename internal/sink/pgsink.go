package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/bildit-platform/aipixel/internal/event"
)

// PGConfig holds Postgres sink configuration
type PGConfig struct {
	DSN       string
	Table     string
	BatchSize int
	FlushMS   int
}

// PGSink batches crawler-visit events into a JSONB table.
type PGSink struct {
	config PGConfig
	db     *sql.DB

	mu    sync.Mutex
	batch []event.Event

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPGSinkFromEnv creates a PGSink from environment variables
func NewPGSinkFromEnv() *PGSink {
	return &PGSink{
		config: PGConfig{
			DSN:       os.Getenv("PG_DSN"),
			Table:     getEnvOr("PG_TABLE", "events_json"),
			BatchSize: getIntEnv("PG_BATCH_SIZE", 500),
			FlushMS:   getIntEnv("PG_FLUSH_MS", 500),
		},
	}
}

// NewPGSink creates a PGSink with an explicit DSN and default tuning
func NewPGSink(dsn string) *PGSink {
	return &PGSink{
		config: PGConfig{
			DSN:       dsn,
			Table:     "events_json",
			BatchSize: 500,
			FlushMS:   500,
		},
	}
}

var tableNameRE = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]{0,62}$`)

// validateTableName guards the identifier we splice into DDL/DML.
func validateTableName(name string) error {
	if !tableNameRE.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

func (s *PGSink) Start(ctx context.Context) error {
	if err := validateTableName(s.config.Table); err != nil {
		return err
	}

	db, err := sql.Open("postgres", s.config.DSN)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}
	s.db = db

	if err := s.ensureSchema(); err != nil {
		db.Close()
		return err
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.flushLoop()
	return nil
}

func (s *PGSink) ensureSchema() error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			ts TIMESTAMPTZ NOT NULL DEFAULT now(),
			payload JSONB NOT NULL
		)`, s.config.Table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_ts ON %s (ts)`, s.config.Table, s.config.Table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_gin ON %s USING GIN (payload)`, s.config.Table, s.config.Table),
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

func (s *PGSink) Enqueue(e event.Event) error {
	s.mu.Lock()
	s.batch = append(s.batch, e)
	full := len(s.batch) >= s.config.BatchSize
	s.mu.Unlock()

	if full {
		return s.Flush()
	}
	return nil
}

// Flush writes the pending batch in one multi-row insert.
func (s *PGSink) Flush() error {
	s.mu.Lock()
	if len(s.batch) == 0 {
		s.mu.Unlock()
		return nil
	}
	batch := s.batch
	s.batch = nil
	s.mu.Unlock()

	if s.db == nil {
		return fmt.Errorf("pg sink not started")
	}

	placeholders := make([]string, len(batch))
	args := make([]any, len(batch))
	for i, e := range batch {
		b, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to serialize event: %w", err)
		}
		placeholders[i] = "($" + strconv.Itoa(i+1) + ")"
		args[i] = string(b)
	}

	query := fmt.Sprintf("INSERT INTO %s (payload) VALUES %s",
		s.config.Table, strings.Join(placeholders, ", "))
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}
	return nil
}

func (s *PGSink) flushLoop() {
	defer close(s.done)
	ticker := time.NewTicker(time.Duration(s.config.FlushMS) * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if err := s.Flush(); err != nil {
				fmt.Fprintf(os.Stderr, "pg flush failed: %v\n", err)
			}
		}
	}
}

func (s *PGSink) Close() error {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	if s.db == nil {
		return nil
	}
	err := s.Flush()
	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	return err
}

func (s *PGSink) Name() string { return "postgres" }

func getIntEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
