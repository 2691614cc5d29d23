package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/ykhoma/weather-ingest/internal/config"
	"github.com/ykhoma/weather-ingest/internal/weather/types"
)

// PostgresSink is the direct-insert variant: one parameterized INSERT into
// weather_metrics inside one transaction. The connection is opened inside
// Store and released on every exit path, so repeated runs share nothing.
type PostgresSink struct {
	dsn    string
	logger *zap.Logger
}

func NewPostgresSink(cfg *config.Config, logger *zap.Logger) *PostgresSink {
	return &PostgresSink{dsn: cfg.DatabaseURL, logger: logger}
}

const insertMetricSQL = `
        INSERT INTO weather_metrics (weather, description, temperature, humidity, observed_at)
        VALUES ($1, $2, $3, $4, $5);
    `

func (s *PostgresSink) Store(ctx context.Context, rec types.WeatherRecord) error {
	db, err := openDB(ctx, s.dsn)
	if err != nil {
		s.logger.Error("failed to connect to database", zap.Error(err))
		return fmt.Errorf("postgres: open: %w", err)
	}
	defer db.Close()

	return s.insert(ctx, db, rec)
}

func (s *PostgresSink) insert(ctx context.Context, db *sqlx.DB, rec types.WeatherRecord) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return fmt.Errorf("postgres: begin: %w", err)
	}

	if _, err := tx.ExecContext(ctx, insertMetricSQL,
		rec.Condition, rec.Description, rec.Temperature, rec.Humidity, rec.ObservedAt,
	); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed", zap.Error(rbErr))
		}

		// Surface the Postgres SQLSTATE when the server rejected the row.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			s.logger.Error("failed to insert weather record",
				zap.String("sqlstate", pgErr.Code),
				zap.Error(err),
			)
		} else {
			s.logger.Error("failed to insert weather record", zap.Error(err))
		}
		return fmt.Errorf("postgres: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit weather record", zap.Error(err))
		return fmt.Errorf("postgres: commit: %w", err)
	}

	s.logger.Info("weather record stored",
		zap.String("weather", rec.Condition),
		zap.String("observed_at", rec.ObservedAt),
	)
	return nil
}

func openDB(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", dsn) // ← driver name is "pgx"
	if err != nil {
		return nil, err
	}
	db.SetConnMaxLifetime(time.Minute * 5)
	db.SetMaxIdleConns(5)
	db.SetMaxOpenConns(10)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
