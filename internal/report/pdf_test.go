package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trippplecard/mobee-stats/internal/app/stats"
	"github.com/trippplecard/mobee-stats/internal/domain"
)

func fixtureStats(t *testing.T) *domain.Stats {
	t.Helper()
	var games []domain.Game
	codes := []string{"aa1", "bb2", "cc3", "dd4"}
	for i := 0; i < 40; i++ {
		games = append(games, domain.Game{
			UserCode: codes[i%len(codes)],
			Score:    i % 25,
			City:     "Lima",
			Country:  "Peru",
			Platform: "Web",
			PlayedAt: time.Date(2025, 6, 1+i%10, 10, 0, 0, 0, time.UTC),
		})
	}
	st := stats.Analyze(games)
	require.NotNil(t, st)
	return st
}

func TestRenderPDF(t *testing.T) {
	pdf, err := NewRenderer().Render(fixtureStats(t))
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestScoreDistChartPNG(t *testing.T) {
	png, err := scoreDistChart(fixtureStats(t))
	require.NoError(t, err)
	// firma PNG
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestDailyChartRellenaDias(t *testing.T) {
	png, err := dailyChart(fixtureStats(t))
	require.NoError(t, err)
	assert.NotEmpty(t, png)
}

func TestDailyChartSinDatos(t *testing.T) {
	_, err := dailyChart(&domain.Stats{})
	assert.Error(t, err)
}
