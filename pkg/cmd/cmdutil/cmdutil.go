// Package cmdutil holds the setup shared by the tsa commands.
package cmdutil

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgx-contrib/pgxtrace"
	"github.com/spf13/viper"

	"github.com/mpapenbr/tyre-strategy/log"
	"github.com/mpapenbr/tyre-strategy/pkg/config"
	"github.com/mpapenbr/tyre-strategy/pkg/db/postgres"
	"github.com/mpapenbr/tyre-strategy/pkg/provider"
	"github.com/mpapenbr/tyre-strategy/pkg/utils"
)

const (
	SourceFile = "file"
	SourceDB   = "db"
	SourceAuto = "auto" // db first, then files
)

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// NewLogger creates the application logger from the log flags.
// Format "json" creates a json logger, anything else a console logger.
func NewLogger(level string) (*log.Logger, error) {
	opts := []log.Option{log.WithCaller(true), log.AddCallerSkip(1)}
	if config.LogFilter != "" {
		filter, err := log.WithFilter(config.LogFilter)
		if err != nil {
			return nil, fmt.Errorf("invalid log filter %q: %w", config.LogFilter, err)
		}
		opts = append(opts, filter)
	}
	if config.LogFormat == "json" {
		return log.New(os.Stderr, parseLogLevel(level, log.InfoLevel), opts...), nil
	}
	return log.DevLogger(os.Stderr, parseLogLevel(level, log.DebugLevel), opts...), nil
}

func waitTimeout() time.Duration {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		return 60 * time.Second
	}
	return timeout
}

// WaitForDB waits until the database accepts tcp connections
func WaitForDB(ctx context.Context) error {
	if addr := utils.ExtractFromDBURL(config.DB); addr != "" {
		return utils.WaitForTCP(ctx, addr, waitTimeout())
	}
	return nil
}

// ConnectDB waits for the database and creates a pool. Queries are logged
// by a sql logger, with telemetry enabled they are traced as well.
func ConnectDB(ctx context.Context, withOtel bool) (*pgxpool.Pool, error) {
	if err := WaitForDB(ctx); err != nil {
		return nil, err
	}
	sqlLogger, err := NewLogger(config.SQLLogLevel)
	if err != nil {
		return nil, err
	}
	tracer := pgxtrace.CompositeQueryTracer{
		postgres.NewSQLTracer(sqlLogger.Named("sql"), log.DebugLevel),
	}
	if withOtel {
		tracer = append(tracer, postgres.NewOtlpTracer())
	}
	return postgres.InitWithURL(ctx, config.DB, postgres.WithTracer(tracer))
}

// NewProvider creates the session provider selected by --source.
// The returned pool is nil unless the database is used.
func NewProvider(ctx context.Context, withOtel bool) (
	provider.SessionDataProvider, *pgxpool.Pool, error,
) {
	jsonOpts, err := JSONOptions()
	if err != nil {
		return nil, nil, err
	}
	files := provider.NewFileProvider(config.DataDir, provider.WithJSONOptions(jsonOpts))

	var (
		p    provider.SessionDataProvider
		pool *pgxpool.Pool
	)
	switch config.Source {
	case SourceFile:
		p = files
	case SourceDB, SourceAuto:
		if pool, err = ConnectDB(ctx, withOtel); err != nil {
			return nil, nil, err
		}
		p = provider.NewDBProvider(pool)
		if config.Source == SourceAuto {
			p = provider.Chain{p, files}
		}
	default:
		return nil, nil, fmt.Errorf("unknown source %q (file, db, auto)", config.Source)
	}

	expiration, err := time.ParseDuration(config.CacheExpiration)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid cache expiration: %w", err)
	}
	if expiration > 0 {
		p = provider.NewCachedProvider(p, expiration)
	}
	return p, pool, nil
}

func JSONOptions() (provider.JSONOptions, error) {
	scale, err := provider.DurationScale(config.JSONDurationUnit)
	if err != nil {
		return provider.JSONOptions{}, err
	}
	return provider.JSONOptions{Path: config.JSONPath, NumericScale: scale}, nil
}

// LoadHeuristics reads the heuristics section of the config file
func LoadHeuristics() (*config.Heuristics, error) {
	return config.LoadHeuristics(viper.GetViper())
}
