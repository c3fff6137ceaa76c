package service

import (
	"context"
	"time"

	"github.com/trippplecard/mobee-stats/internal/adapters/upstash"
	"github.com/trippplecard/mobee-stats/internal/domain"
	"github.com/trippplecard/mobee-stats/internal/infra/storage"
)

// Lo implementa internal/adapters/slack.Client
type ChatAPI interface {
	FetchHistory(ctx context.Context, channelID string) ([]domain.ChannelMessage, error)
	PostReport(ctx context.Context, channelID string, st *domain.Stats, dashboardURL string) error
	UploadPDF(ctx context.Context, channelID, filename string, pdf []byte, comment string) error
}

// Lo implementa internal/adapters/sendgridmail.Mailer
type Mailer interface {
	SendReport(ctx context.Context, st *domain.Stats, pdf []byte, now time.Time) error
}

// Lo implementa internal/report.Renderer
type PDFRenderer interface {
	Render(st *domain.Stats) ([]byte, error)
}

// Lo implementa internal/infra/storage.GameRepo
type GameStore interface {
	InsertBatch(ctx context.Context, games []domain.Game) (int64, error)
	ListSince(ctx context.Context, since time.Time) ([]domain.Game, error)
	ListByPlatforms(ctx context.Context, platforms []string) ([]domain.Game, error)
}

// Lo implementa internal/infra/storage.ReportRepo
type ReportStore interface {
	LogRun(ctx context.Context, run storage.ReportRun) error
	SaveSnapshot(ctx context.Context, st *domain.Stats) error
	LatestSnapshot(ctx context.Context) (*domain.Stats, error)
}

// Lo implementa internal/adapters/upstash.Client
type RedisAPI interface {
	LRange(ctx context.Context, key string, start, stop int) ([]string, error)
	ZRevRangeWithScores(ctx context.Context, key string, start, stop int) ([]upstash.ZMember, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}
