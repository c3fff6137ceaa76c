package storage

import (
	"context"
	"database/sql"
	"time"

	pq "github.com/lib/pq"

	"github.com/trippplecard/mobee-stats/internal/domain"
)

type GameRepo struct{ db *sql.DB }

func NewGameRepo(db *sql.DB) *GameRepo { return &GameRepo{db: db} }

// InsertBatch guarda partidas parseadas; el ts del mensaje de Slack es
// la clave de dedup, así re-procesar el historial no duplica filas.
func (r *GameRepo) InsertBatch(ctx context.Context, games []domain.Game) (int64, error) {
	var inserted int64
	for _, g := range games {
		res, err := r.db.ExecContext(ctx, `
INSERT INTO game_events
  (msg_ts, played_at, score, is_high_score, city, country, platform, user_code, game_number, game_code)
VALUES
  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (msg_ts) DO NOTHING
`, g.MsgTS, g.PlayedAt, g.Score, g.IsHighScore, g.City, g.Country, g.Platform, g.UserCode, g.GameNumber, g.GameCode)
		if err != nil {
			return inserted, err
		}
		n, _ := res.RowsAffected()
		inserted += n
	}
	return inserted, nil
}

func (r *GameRepo) ListSince(ctx context.Context, since time.Time) ([]domain.Game, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT msg_ts, played_at, score, is_high_score, city, country, platform, user_code, game_number, game_code
FROM game_events
WHERE played_at >= $1
ORDER BY played_at
`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGames(rows)
}

// ListByPlatforms filtra por un set de plataformas (para los cortes del
// dashboard).
func (r *GameRepo) ListByPlatforms(ctx context.Context, platforms []string) ([]domain.Game, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT msg_ts, played_at, score, is_high_score, city, country, platform, user_code, game_number, game_code
FROM game_events
WHERE platform = ANY($1)
ORDER BY played_at
`, pq.Array(platforms))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGames(rows)
}

// Prune borra partidas más viejas que la retención.
func (r *GameRepo) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM game_events WHERE played_at < $1
`, time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func scanGames(rows *sql.Rows) ([]domain.Game, error) {
	var out []domain.Game
	for rows.Next() {
		var g domain.Game
		if err := rows.Scan(&g.MsgTS, &g.PlayedAt, &g.Score, &g.IsHighScore,
			&g.City, &g.Country, &g.Platform, &g.UserCode, &g.GameNumber, &g.GameCode); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
