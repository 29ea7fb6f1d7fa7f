package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolStats represents database connection pool statistics.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
}

// Health is the result of a store connectivity check.
type Health struct {
	Driver  string     `json:"driver"`
	Healthy bool       `json:"healthy"`
	Error   string     `json:"error,omitempty"`
	Pool    *PoolStats `json:"pool,omitempty"`
}

// GetPoolStats returns connection pool statistics.
func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
	}
}

// CheckPool pings PostgreSQL and reports pool statistics.
func CheckPool(ctx context.Context, pool *pgxpool.Pool) *Health {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	h := &Health{Driver: "postgres", Healthy: true}
	if err := pool.Ping(ctx); err != nil {
		h.Healthy = false
		h.Error = err.Error()
	}
	h.Pool = GetPoolStats(pool)
	return h
}

// CheckSQLite verifies the SQLite handle answers queries.
func CheckSQLite(ctx context.Context, conn *sql.DB) *Health {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	h := &Health{Driver: "sqlite", Healthy: true}
	var one int
	if err := conn.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		h.Healthy = false
		h.Error = err.Error()
	}
	return h
}
