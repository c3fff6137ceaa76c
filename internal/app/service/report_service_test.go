package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trippplecard/mobee-stats/internal/domain"
	"github.com/trippplecard/mobee-stats/internal/infra/storage"
)

var errNet = errors.New("slack: connection reset")

type fakeChat struct {
	msgs       []domain.ChannelMessage
	fetchErr   error
	posted     int
	postedTo   string
	uploaded   int
	uploadName string
}

func (f *fakeChat) FetchHistory(_ context.Context, _ string) ([]domain.ChannelMessage, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.msgs, nil
}

func (f *fakeChat) PostReport(_ context.Context, channelID string, _ *domain.Stats, _ string) error {
	f.posted++
	f.postedTo = channelID
	return nil
}

func (f *fakeChat) UploadPDF(_ context.Context, _, filename string, _ []byte, _ string) error {
	f.uploaded++
	f.uploadName = filename
	return nil
}

type fakePDF struct{}

func (fakePDF) Render(*domain.Stats) ([]byte, error) { return []byte("%PDF-fake"), nil }

type fakeMailer struct{ sent int }

func (m *fakeMailer) SendReport(context.Context, *domain.Stats, []byte, time.Time) error {
	m.sent++
	return nil
}

type fakeStores struct {
	inserted   int
	runs       []storage.ReportRun
	snaps      int
	snapshot   *domain.Stats
	byPlatform []domain.Game
	since      []domain.Game
	sinceArg   time.Time
}

func (s *fakeStores) InsertBatch(_ context.Context, games []domain.Game) (int64, error) {
	s.inserted += len(games)
	return int64(len(games)), nil
}
func (s *fakeStores) ListSince(_ context.Context, since time.Time) ([]domain.Game, error) {
	s.sinceArg = since
	return s.since, nil
}
func (s *fakeStores) ListByPlatforms(_ context.Context, _ []string) ([]domain.Game, error) {
	return s.byPlatform, nil
}
func (s *fakeStores) LogRun(_ context.Context, run storage.ReportRun) error {
	s.runs = append(s.runs, run)
	return nil
}
func (s *fakeStores) SaveSnapshot(context.Context, *domain.Stats) error {
	s.snaps++
	return nil
}
func (s *fakeStores) LatestSnapshot(context.Context) (*domain.Stats, error) {
	if s.snapshot == nil {
		return nil, storage.ErrNotFound
	}
	return s.snapshot, nil
}

func gameMsgs() []domain.ChannelMessage {
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return []domain.ChannelMessage{
		{TS: "1.0", Text: "Score: 10 | Lima, Peru | Web | aa1 #1", At: at},
		{TS: "2.0", Text: "🏆 HIGH SCORE: 22 | Madrid, Spain | iOS | bb2 #4", At: at},
		{TS: "3.0", Text: "Score: 77 | Lima, Peru | Web | cc3 #1", At: at}, // descartado por maxScore
		{TS: "4.0", Text: "charla del canal", At: at},
	}
}

func reportCfg() ReportConfig {
	return ReportConfig{ChannelID: "C1", ReportChannelID: "C2", MaxScore: 30}
}

func TestRunSinDatos(t *testing.T) {
	chat := &fakeChat{msgs: []domain.ChannelMessage{{TS: "1.0", Text: "hola"}}}
	svc := NewReportService(chat, fakePDF{}, reportCfg())

	_, err := svc.Run(context.Background(), false)
	require.ErrorIs(t, err, ErrNoData)
	assert.Zero(t, chat.posted)
}

func TestRunSoloBloques(t *testing.T) {
	chat := &fakeChat{msgs: gameMsgs()}
	svc := NewReportService(chat, fakePDF{}, reportCfg())

	sum, err := svc.Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.TotalGames)
	assert.Equal(t, 2, sum.UniquePlayers)
	assert.InDelta(t, 16.0, sum.AvgScore, 0.001)
	assert.True(t, sum.SlackOK)

	assert.Equal(t, 1, chat.posted)
	assert.Equal(t, "C2", chat.postedTo) // el reporte va al canal de reportes
	assert.Zero(t, chat.uploaded)
}

func TestRunConPDFYMail(t *testing.T) {
	chat := &fakeChat{msgs: gameMsgs()}
	mailer := &fakeMailer{}
	stores := &fakeStores{}
	svc := NewReportService(chat, fakePDF{}, reportCfg()).
		WithMailer(mailer).
		WithStores(stores, stores)

	sum, err := svc.Run(context.Background(), true)
	require.NoError(t, err)

	assert.True(t, sum.SlackOK)
	assert.True(t, sum.EmailSent)
	assert.Equal(t, 1, chat.uploaded)
	assert.Contains(t, chat.uploadName, "mobee_stats_report_")
	assert.Equal(t, 1, mailer.sent)

	assert.Equal(t, 2, stores.inserted)
	assert.Equal(t, 1, stores.snaps)
	require.Len(t, stores.runs, 1)
	assert.True(t, stores.runs[0].PDFUploaded)
}

func TestStatsEnVivo(t *testing.T) {
	chat := &fakeChat{msgs: gameMsgs()}
	svc := NewReportService(chat, fakePDF{}, reportCfg())

	st, err := svc.Stats(context.Background(), nil, 0)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, 2, st.TotalGames)
}

func TestStatsCaeAlSnapshot(t *testing.T) {
	chat := &fakeChat{fetchErr: errNet}
	stores := &fakeStores{snapshot: &domain.Stats{TotalGames: 7}}
	svc := NewReportService(chat, fakePDF{}, reportCfg()).WithStores(stores, stores)

	st, err := svc.Stats(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, st.TotalGames)

	// sin snapshot guardado el error original se propaga
	stores.snapshot = nil
	_, err = svc.Stats(context.Background(), nil, 0)
	require.ErrorIs(t, err, errNet)
}

func TestStatsFiltradoPorPlataforma(t *testing.T) {
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	stores := &fakeStores{byPlatform: []domain.Game{
		{UserCode: "aa1", Score: 10, Platform: "Web", City: "Lima", Country: "Peru", PlayedAt: at},
	}}
	svc := NewReportService(&fakeChat{}, fakePDF{}, reportCfg()).WithStores(stores, stores)

	st, err := svc.Stats(context.Background(), []string{"Web"}, 0)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, 1, st.TotalGames)
	assert.Equal(t, 1, st.PlatformCounts["Web"])
}

func TestStatsVentanaDeDias(t *testing.T) {
	stores := &fakeStores{}
	svc := NewReportService(&fakeChat{}, fakePDF{}, reportCfg()).WithStores(stores, stores)

	st, err := svc.Stats(context.Background(), nil, 30)
	require.NoError(t, err)
	assert.Nil(t, st) // histórico vacío => null
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, -30), stores.sinceArg, time.Minute)
}

func TestStatsFiltrosSinDB(t *testing.T) {
	svc := NewReportService(&fakeChat{msgs: gameMsgs()}, fakePDF{}, reportCfg())

	_, err := svc.Stats(context.Background(), []string{"Web"}, 0)
	require.ErrorIs(t, err, ErrNeedsDB)
	_, err = svc.Stats(context.Background(), nil, 7)
	require.ErrorIs(t, err, ErrNeedsDB)
}

func TestAnalyzeSinEntrega(t *testing.T) {
	chat := &fakeChat{msgs: gameMsgs()}
	svc := NewReportService(chat, fakePDF{}, reportCfg())

	st, games, err := svc.Analyze(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Len(t, games, 2)
	assert.Equal(t, 1, st.HighScoreGames)
	assert.Zero(t, chat.posted)
}
