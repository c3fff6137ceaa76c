package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trippplecard/mobee-stats/internal/adapters/upstash"
)

type fakeRedis struct {
	lists  map[string][]string
	zsets  map[string][]upstash.ZMember
	hashes map[string]map[string]string
}

func (f *fakeRedis) LRange(_ context.Context, key string, _, _ int) ([]string, error) {
	return f.lists[key], nil
}
func (f *fakeRedis) ZRevRangeWithScores(_ context.Context, key string, _, _ int) ([]upstash.ZMember, error) {
	return f.zsets[key], nil
}
func (f *fakeRedis) HGetAll(_ context.Context, key string) (map[string]string, error) {
	return f.hashes[key], nil
}

// dos eventos de nivel 1 y uno de nivel 2; p1 juega en ambos días
func fixtureRedis() *fakeRedis {
	day1 := int64(1717243200000) // 2024-06-01 ms
	day2 := day1 + 86400000
	ev := func(symbols int, started int64, scores string, avatars string) string {
		return fmt.Sprintf(`{"roomId":"r%d","symbolsPerCard":%d,"startedAt":%d,"endedAt":%d,"scores":%s,"avatars":%s,"locations":{"p1":{"city":"Lima"}}}`,
			started, symbols, started, started+60000, scores, avatars)
	}
	return &fakeRedis{
		lists: map[string][]string{
			"mobee8:events:7": {
				ev(7, day1, `{"p1":12,"p2":8}`, `{"p1":"0,0"}`),
				ev(7, day2, `{"p1":15}`, `{"p1":"11,5"}`),
			},
			"mobee8:events:12": {
				ev(12, day2, `{"p3":21}`, `{}`),
			},
		},
		zsets: map[string][]upstash.ZMember{
			"mobee8:highscores:7": {{Member: "p1", Score: 15}, {Member: "p2", Score: 8}},
		},
		hashes: map[string]map[string]string{
			"mobee8:player:p1": {"name": "Zoe", "avatar": "11,5"},
		},
	}
}

func TestLeaderboard(t *testing.T) {
	svc := NewLeaderboardService(fixtureRedis())
	lb, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)

	require.Len(t, lb.RecentGames, 4)
	assert.Equal(t, 1, lb.RecentGames[0].Level)

	// el avatar que queda es el del evento más reciente
	assert.Equal(t, "11,5", lb.PlayerAvatars["p1"])

	assert.Equal(t, 2, lb.Meta.L1Count)
	assert.Equal(t, 1, lb.Meta.L2Count)
	assert.Equal(t, 4, lb.Meta.TotalGames)
	assert.Equal(t, 1, lb.Meta.Players)

	// campos de compat presentes aunque vacíos
	assert.NotNil(t, lb.LegacySummary)
	assert.NotNil(t, lb.Symbols)

	// la ciudad viene del mapa locations por jugador
	assert.Equal(t, "Lima", lb.RecentGames[0].City)
	assert.Equal(t, "", lb.RecentGames[1].City)
}

func TestVariantStats(t *testing.T) {
	svc := NewLeaderboardService(fixtureRedis())
	vs, err := svc.VariantStats(context.Background(), "7")
	require.NoError(t, err)

	assert.Equal(t, "7", vs.Variant)
	assert.Equal(t, 3, vs.TotalGames)
	assert.Equal(t, 2, vs.UniquePlayers)
	assert.Equal(t, 15, vs.MaxScore)
	assert.InDelta(t, 11.7, vs.AvgScore, 0.001) // round a un decimal

	assert.Equal(t, 1, vs.ScoreDistribution["6-10"])
	assert.Equal(t, 2, vs.ScoreDistribution["11-15"])

	require.Len(t, vs.DailyStats, 2)
	assert.Equal(t, "2024-06-01", vs.DailyStats[0].Date)
	assert.Equal(t, 2, vs.DailyStats[0].Games)
	assert.Equal(t, 2, vs.DailyStats[0].UniquePlayers)

	require.Len(t, vs.TopPlayersByScore, 2)
	assert.Equal(t, "p1", vs.TopPlayersByScore[0].PlayerID)
	assert.Equal(t, "Zoe", vs.TopPlayersByScore[0].Name)
	assert.Equal(t, "11,5", vs.TopPlayersByScore[0].AvatarCoords)
	assert.Equal(t, avatarBaseURL+"6-12.png", vs.TopPlayersByScore[0].AvatarURL)
	assert.Empty(t, vs.TopPlayersByScore[1].AvatarURL) // p2 sin hash de jugador

	require.Len(t, vs.TopPlayersByGames, 2)
	assert.Equal(t, "p1", vs.TopPlayersByGames[0].PlayerID)
	assert.Equal(t, 2, vs.TopPlayersByGames[0].Games)
	assert.InDelta(t, 13.5, vs.TopPlayersByGames[0].AvgScore, 0.001)
	assert.Equal(t, "11,5", vs.TopPlayersByGames[0].AvatarCoords)
	assert.Equal(t, avatarBaseURL+"6-12.png", vs.TopPlayersByGames[0].AvatarURL)
}

// la lista de eventos no viene ordenada: un avatar de un evento viejo
// no debe pisar el estado de un evento más nuevo sin avatar
func TestVariantStatsAvatarFueraDeOrden(t *testing.T) {
	newer := int64(1717416000000)
	older := newer - 86400000
	redis := &fakeRedis{
		lists: map[string][]string{
			"mobee8:events:12": {
				fmt.Sprintf(`{"roomId":"r1","symbolsPerCard":12,"startedAt":%d,"endedAt":%d,"scores":{"p9":10},"avatars":{}}`, newer, newer),
				fmt.Sprintf(`{"roomId":"r2","symbolsPerCard":12,"startedAt":%d,"endedAt":%d,"scores":{"p9":8},"avatars":{"p9":"2,2"}}`, older, older),
			},
		},
	}
	svc := NewLeaderboardService(redis)
	vs, err := svc.VariantStats(context.Background(), "12")
	require.NoError(t, err)

	require.Len(t, vs.TopPlayersByGames, 1)
	assert.Empty(t, vs.TopPlayersByGames[0].AvatarCoords)
	assert.Empty(t, vs.TopPlayersByGames[0].AvatarURL)
}

func TestAvatarURL(t *testing.T) {
	assert.Equal(t, avatarBaseURL+"6-12.png", AvatarURL("11,5"))
	assert.Equal(t, avatarBaseURL+"1-1.png", AvatarURL("0,0"))
	assert.Equal(t, "", AvatarURL(""))
	assert.Equal(t, "", AvatarURL("x,y"))
}
