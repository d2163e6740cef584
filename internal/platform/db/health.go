package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Health describes the current state of the database connection pool.
type Health struct {
	Healthy      bool          `json:"healthy"`
	Latency      time.Duration `json:"latency_ns"`
	TotalConns   int32         `json:"total_conns"`
	IdleConns    int32         `json:"idle_conns"`
	AcquireCount int64         `json:"acquire_count"`
	Error        string        `json:"error,omitempty"`
}

// CheckHealth pings the database and reports pool statistics. The ping is
// bounded to two seconds so a wedged database cannot hang the health endpoint.
func CheckHealth(ctx context.Context, pool *pgxpool.Pool) Health {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := pool.Ping(ctx)
	latency := time.Since(start)

	stat := pool.Stat()
	h := Health{
		Healthy:      err == nil,
		Latency:      latency,
		TotalConns:   stat.TotalConns(),
		IdleConns:    stat.IdleConns(),
		AcquireCount: stat.AcquireCount(),
	}
	if err != nil {
		h.Error = err.Error()
	}
	return h
}
