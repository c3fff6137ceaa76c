package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgxpool"
)

func handler(ctx context.Context) (string, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return "no DATABASE_URL", nil
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Sprintf("parse: %v", err), nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Sprintf("pool: %v", err), nil
	}
	defer pool.Close()

	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, _ = pool.Exec(cctx, `DELETE FROM game_events WHERE played_at < now() - INTERVAL '180 days';`)
	_, _ = pool.Exec(cctx, `DELETE FROM report_runs WHERE started_at < now() - INTERVAL '90 days';`)
	// dejamos el snapshot más nuevo aunque sea viejo
	_, _ = pool.Exec(cctx, `
DELETE FROM stats_snapshots
WHERE taken_at < now() - INTERVAL '30 days'
  AND id <> (SELECT max(id) FROM stats_snapshots);`)

	return "ok", nil
}

func main() { lambda.Start(handler) }
