package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/trippplecard/mobee-stats/internal/domain"
)

var ErrNotFound = errors.New("not found")

// ReportRun es el log de cada corrida del reporte.
type ReportRun struct {
	StartedAt     time.Time
	FinishedAt    time.Time
	TotalGames    int
	UniquePlayers int
	AvgScore      float64
	SlackOK       bool
	EmailSent     bool
	PDFUploaded   bool
}

type ReportRepo struct{ db *sql.DB }

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

func (r *ReportRepo) LogRun(ctx context.Context, run ReportRun) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO report_runs
  (started_at, finished_at, total_games, unique_players, avg_score, slack_ok, email_sent, pdf_uploaded)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, run.StartedAt, run.FinishedAt, run.TotalGames, run.UniquePlayers, run.AvgScore,
		run.SlackOK, run.EmailSent, run.PDFUploaded)
	return err
}

// SaveSnapshot guarda el JSON completo de stats (lo que antes era
// mobee_stats.json en disco).
func (r *ReportRepo) SaveSnapshot(ctx context.Context, st *domain.Stats) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO stats_snapshots (taken_at, payload) VALUES (NOW(), $1::jsonb)
`, payload)
	return err
}

func (r *ReportRepo) LatestSnapshot(ctx context.Context) (*domain.Stats, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `
SELECT payload FROM stats_snapshots ORDER BY taken_at DESC LIMIT 1
`).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var st domain.Stats
	if err := json.Unmarshal(payload, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// PruneRuns borra corridas y snapshots viejos.
func (r *ReportRepo) PruneRuns(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := r.db.ExecContext(ctx, `DELETE FROM report_runs WHERE started_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	if _, err := r.db.ExecContext(ctx, `DELETE FROM stats_snapshots WHERE taken_at < $1`, cutoff); err != nil {
		return n, err
	}
	return n, nil
}
