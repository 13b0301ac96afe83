package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/exaring/otelpgx"
	pgxuuid "github.com/jackc/pgx-gofrs-uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpapenbr/tyre-strategy/log"
)

type PoolConfigOption func(cfg *pgxpool.Config)

func WithTracer(tracer pgx.QueryTracer) PoolConfigOption {
	return func(cfg *pgxpool.Config) {
		cfg.ConnConfig.Tracer = tracer
	}
}

func WithMaxConns(n int32) PoolConfigOption {
	return func(cfg *pgxpool.Config) {
		if n > 0 {
			cfg.MaxConns = n
		}
	}
}

// InitWithURL creates a connection pool and checks the connection.
func InitWithURL(ctx context.Context, url string, opts ...PoolConfigOption) (
	*pgxpool.Pool, error,
) {
	dbConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	dbConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxuuid.Register(conn.TypeMap())
		return nil
	}
	for _, opt := range opts {
		opt(dbConfig)
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create the database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to get a valid database connection: %w", err)
	}
	return pool, nil
}

// NewOtlpTracer creates spans for each query
func NewOtlpTracer() pgx.QueryTracer {
	return otelpgx.NewTracer(otelpgx.WithIncludeQueryParameters())
}

// NewSQLTracer logs executed statements and their duration to logger
func NewSQLTracer(logger *log.Logger, level log.Level) pgx.QueryTracer {
	return &sqlTracer{log: logger, level: level}
}

type sqlTracer struct {
	log   *log.Logger
	level log.Level
}

type traceStartKey struct{}

type traceStart struct {
	sql   string
	start time.Time
}

//nolint:whitespace // can't make the linters happy
func (t *sqlTracer) TraceQueryStart(
	ctx context.Context,
	_ *pgx.Conn,
	data pgx.TraceQueryStartData,
) context.Context {
	t.log.Log(t.level, "Executing",
		log.String("sql", data.SQL),
		log.Int("args", len(data.Args)))
	return context.WithValue(ctx, traceStartKey{},
		traceStart{sql: data.SQL, start: time.Now()})
}

//nolint:whitespace // can't make the linters happy
func (t *sqlTracer) TraceQueryEnd(
	ctx context.Context,
	_ *pgx.Conn,
	data pgx.TraceQueryEndData,
) {
	s, ok := ctx.Value(traceStartKey{}).(traceStart)
	if !ok {
		return
	}
	fields := []log.Field{
		log.String("sql", s.sql),
		log.Duration("duration", time.Since(s.start)),
		log.Int64("rows", data.CommandTag.RowsAffected()),
	}
	if data.Err != nil {
		t.log.Warn("Query failed", append(fields, log.ErrorField(data.Err))...)
		return
	}
	t.log.Log(t.level, "Executed", fields...)
}
