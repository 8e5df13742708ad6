package database

import (
	"context"
	"fmt"

	"assetmanager/src/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DSN builds the connection string from the SQL settings unless one is
// configured explicitly.
func DSN(cfg *config.Config) string {
	dsn := cfg.Databases.SQL.ConnectionString
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.Databases.SQL.Host,
			cfg.Databases.SQL.Username,
			cfg.Databases.SQL.Password,
			cfg.Databases.SQL.Database,
			cfg.Databases.SQL.Port)
	}
	return dsn
}

func SetupDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, err
	}

	config.MaxConns = 10
	if cfg.Databases.SQL.MaxConns > 0 {
		config.MaxConns = cfg.Databases.SQL.MaxConns
	}
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}
