package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InitPostgres opens the connection pool and creates the device table.
func InitPostgres(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = time.Minute * 30
	config.HealthCheckPeriod = time.Minute * 5

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := createTables(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pool, nil
}

// schemaStatements creates the user_devices table read by
// registry.PostgresStore. Several rows may share a token as long as their
// platforms differ, so there is no unique constraint on the token.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS user_devices (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id VARCHAR(255) NOT NULL,
		notification_token TEXT NOT NULL,
		platform VARCHAR(20) NOT NULL,
		language VARCHAR(35),
		time_zone VARCHAR(64),
		os_version VARCHAR(64),
		app_version VARCHAR(64),
		app_build VARCHAR(64),
		last_update TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_user_devices_user_id ON user_devices(user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_user_devices_token ON user_devices(notification_token);`,
}

func createTables(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
