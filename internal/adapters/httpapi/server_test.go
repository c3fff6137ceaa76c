package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trippplecard/mobee-stats/internal/adapters/upstash"
	"github.com/trippplecard/mobee-stats/internal/app/service"
	"github.com/trippplecard/mobee-stats/internal/domain"
)

type fakeChat struct {
	msgs   []domain.ChannelMessage
	posted int
}

func (f *fakeChat) FetchHistory(_ context.Context, _ string) ([]domain.ChannelMessage, error) {
	return f.msgs, nil
}
func (f *fakeChat) PostReport(_ context.Context, _ string, _ *domain.Stats, _ string) error {
	f.posted++
	return nil
}
func (f *fakeChat) UploadPDF(_ context.Context, _, _ string, _ []byte, _ string) error {
	return nil
}

type fakePDF struct{}

func (fakePDF) Render(_ *domain.Stats) ([]byte, error) { return []byte("%PDF-1.7"), nil }

func notification(score int, user string) domain.ChannelMessage {
	now := time.Now().UTC()
	return domain.ChannelMessage{
		TS:   fmt.Sprintf("%d.000100", now.Unix()),
		Text: fmt.Sprintf("🎮 Score: %d | Lima, Peru | iPhone Safari | %s #3 | Code: MOBEE-AB12-3", score, user),
		At:   now,
	}
}

func newTestServer(secret string, chat *fakeChat) *Server {
	svc := service.NewReportService(chat, fakePDF{}, service.ReportConfig{
		ChannelID:       "C1",
		ReportChannelID: "C2",
		MaxScore:        30,
	})
	return New(secret, svc, nil)
}

func TestDailyReportSinAuth(t *testing.T) {
	chat := &fakeChat{msgs: []domain.ChannelMessage{notification(12, "a1b2")}}
	srv := newTestServer("", chat)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/daily-report", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	sum := body["stats_summary"].(map[string]any)
	assert.Equal(t, float64(1), sum["total_games"])
	assert.Equal(t, 1, chat.posted)
}

func TestDailyReportBearer(t *testing.T) {
	chat := &fakeChat{msgs: []domain.ChannelMessage{notification(12, "a1b2")}}
	srv := newTestServer("s3cret", chat)

	// sin header => 401
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/daily-report", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unauthorized")
	assert.Equal(t, 0, chat.posted)

	// bearer equivocado => 401
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/daily-report", nil)
	req.Header.Set("Authorization", "Bearer nope")
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// bearer correcto => 200
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/daily-report", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, chat.posted)
}

func TestDailyReportSinDatos(t *testing.T) {
	srv := newTestServer("", &fakeChat{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/daily-report", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "No game data found")
}

func TestStatsCORS(t *testing.T) {
	chat := &fakeChat{msgs: []domain.ChannelMessage{notification(12, "a1b2")}}
	srv := newTestServer("s3cret", chat) // /api/stats no pide bearer

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var st domain.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, 1, st.TotalGames)
	assert.Equal(t, 0, chat.posted) // analiza sin entregar
}

func TestStatsSinDatosDevuelveNull(t *testing.T) {
	srv := newTestServer("", &fakeChat{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null\n", rec.Body.String())
}

func TestStatsFiltrosSinDB(t *testing.T) {
	srv := newTestServer("", &fakeChat{msgs: []domain.ChannelMessage{notification(12, "a1b2")}})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats?platform=Web", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "database")
}

func TestStatsDiasInvalido(t *testing.T) {
	srv := newTestServer("", &fakeChat{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats?days=ayer", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid days parameter")
}

func TestLeaderboardSinRedis(t *testing.T) {
	srv := newTestServer("", &fakeChat{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Redis credentials not configured")
}

type fakeRedis struct{ events []string }

func (f *fakeRedis) LRange(_ context.Context, _ string, _, _ int) ([]string, error) {
	return f.events, nil
}
func (f *fakeRedis) ZRevRangeWithScores(_ context.Context, _ string, _, _ int) ([]upstash.ZMember, error) {
	return nil, nil
}
func (f *fakeRedis) HGetAll(_ context.Context, _ string) (map[string]string, error) {
	return nil, nil
}

func TestLeaderboardVariant(t *testing.T) {
	redis := &fakeRedis{events: []string{
		`{"roomId":"r1","symbolsPerCard":7,"startedAt":1717243200000,"endedAt":1717243260000,"scores":{"p1":12},"avatars":{"p1":"0,0"}}`,
	}}
	svc := service.NewReportService(&fakeChat{}, fakePDF{}, service.ReportConfig{ChannelID: "C1", MaxScore: 30})
	srv := New("", svc, service.NewLeaderboardService(redis))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard?variant=7", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s-maxage=60, stale-while-revalidate=30", rec.Header().Get("Cache-Control"))

	var vs domain.VariantStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vs))
	assert.Equal(t, "7", vs.Variant)
	assert.Equal(t, 1, vs.TotalGames)

	// variante desconocida => 400
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard?variant=9", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
