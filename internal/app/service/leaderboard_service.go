package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/trippplecard/mobee-stats/internal/app/stats"
	"github.com/trippplecard/mobee-stats/internal/domain"
)

const (
	maxEvents     = 10000
	avatarBaseURL = "https://mobee-8.trippplecard.games/assets/avatars_320/"
)

type LeaderboardService struct {
	redis RedisAPI
}

func NewLeaderboardService(redis RedisAPI) *LeaderboardService {
	return &LeaderboardService{redis: redis}
}

// Leaderboard aplana los eventos de sala de ambos niveles en partidas
// individuales, con el avatar más reciente por jugador.
func (s *LeaderboardService) Leaderboard(ctx context.Context) (*domain.Leaderboard, error) {
	l1, err := s.redis.LRange(ctx, "mobee8:events:7", 0, -1)
	if err != nil {
		return nil, err
	}
	l2, err := s.redis.LRange(ctx, "mobee8:events:12", 0, -1)
	if err != nil {
		return nil, err
	}

	lb := &domain.Leaderboard{
		PlayerAvatars: map[string]string{},
		LegacySummary: map[string]any{},
		Symbols:       []string{},
	}
	type avTime struct {
		ts     float64
		avatar string
	}
	avatarTimes := map[string]avTime{}

	for _, raw := range append(append([]string{}, l1...), l2...) {
		var ev domain.VariantEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			continue // evento corrupto, seguimos
		}
		level := 2
		if ev.SymbolsPerCard == 7 {
			level = 1
		}
		ts := float64(ev.StartedAt) / 1000

		for _, code := range sortedKeys(ev.Scores) {
			lb.RecentGames = append(lb.RecentGames, domain.LeaderboardGame{
				UserCode:  code,
				Score:     ev.Scores[code],
				Level:     level,
				Timestamp: ts,
				City:      ev.Locations[code].City,
				Room:      ev.RoomID,
			})
			if av, ok := ev.Avatars[code]; ok {
				if prev, seen := avatarTimes[code]; !seen || ts > prev.ts {
					avatarTimes[code] = avTime{ts: ts, avatar: av}
				}
			}
		}
	}
	for code, at := range avatarTimes {
		lb.PlayerAvatars[code] = at.avatar
	}

	lb.Meta = domain.LeaderboardMeta{
		L1Count:    len(l1),
		L2Count:    len(l2),
		TotalGames: len(lb.RecentGames),
		Players:    len(lb.PlayerAvatars),
	}
	return lb, nil
}

// VariantStats agrega una variante (7 o 12 símbolos): totales,
// distribución, serie diaria y tops desde el ZSET de high scores.
func (s *LeaderboardService) VariantStats(ctx context.Context, variant string) (*domain.VariantStats, error) {
	raw, err := s.redis.LRange(ctx, "mobee8:events:"+variant, 0, maxEvents-1)
	if err != nil {
		return nil, err
	}

	vs := &domain.VariantStats{
		Variant:           variant,
		ScoreDistribution: map[string]int{},
	}
	for _, b := range domain.ScoreBuckets {
		vs.ScoreDistribution[b] = 0
	}

	type pstats struct {
		games      int
		totalScore int
		lastAvatar string
		lastSeen   int64
	}
	players := map[string]*pstats{}
	daily := map[string]*domain.DailyStat{}
	dailyPlayers := map[string]map[string]bool{}
	totalScore := 0

	for _, item := range raw {
		var ev domain.VariantEvent
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			continue
		}
		endedAt := ev.EndedAt
		if endedAt == 0 {
			endedAt = ev.StartedAt
		}
		date := msToDate(endedAt)
		if daily[date] == nil {
			daily[date] = &domain.DailyStat{Date: date}
			dailyPlayers[date] = map[string]bool{}
		}

		for code, score := range ev.Scores {
			vs.TotalGames++
			totalScore += score
			if score > vs.MaxScore {
				vs.MaxScore = score
			}
			vs.ScoreDistribution[stats.ScoreBucket(score)]++

			daily[date].Games++
			dailyPlayers[date][code] = true

			p := players[code]
			if p == nil {
				p = &pstats{}
				players[code] = p
			}
			p.games++
			p.totalScore += score
			// las listas no garantizan orden: el timestamp avanza con
			// cada evento más nuevo, traiga avatar o no
			if endedAt > p.lastSeen {
				p.lastSeen = endedAt
				if av, ok := ev.Avatars[code]; ok {
					p.lastAvatar = av
				}
			}
		}
	}

	vs.UniquePlayers = len(players)
	if vs.TotalGames > 0 {
		vs.AvgScore = round1(float64(totalScore) / float64(vs.TotalGames))
	}

	for date, d := range daily {
		d.UniquePlayers = len(dailyPlayers[date])
		vs.DailyStats = append(vs.DailyStats, *d)
	}
	sort.Slice(vs.DailyStats, func(i, j int) bool { return vs.DailyStats[i].Date < vs.DailyStats[j].Date })
	if len(vs.DailyStats) > 60 {
		vs.DailyStats = vs.DailyStats[len(vs.DailyStats)-60:]
	}

	// top 20 by score desde el ZSET, enriquecido con el hash del jugador
	members, err := s.redis.ZRevRangeWithScores(ctx, "mobee8:highscores:"+variant, 0, 19)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		entry := domain.VariantPlayerScore{PlayerID: m.Member, Score: int(m.Score)}
		meta, err := s.redis.HGetAll(ctx, "mobee8:player:"+m.Member)
		if err != nil {
			log.Printf("meta de %s: %v", m.Member, err)
		} else {
			entry.AvatarCoords = meta["avatar"]
			entry.AvatarURL = AvatarURL(entry.AvatarCoords)
			entry.Name = meta["name"]
		}
		vs.TopPlayersByScore = append(vs.TopPlayersByScore, entry)
	}

	// top 15 by games desde los eventos
	for _, code := range sortedPlayerKeys(players) {
		p := players[code]
		vs.TopPlayersByGames = append(vs.TopPlayersByGames, domain.VariantPlayerGames{
			PlayerID:     code,
			Games:        p.games,
			AvgScore:     round1(float64(p.totalScore) / float64(p.games)),
			AvatarCoords: p.lastAvatar,
			AvatarURL:    AvatarURL(p.lastAvatar),
		})
	}
	sort.SliceStable(vs.TopPlayersByGames, func(i, j int) bool {
		return vs.TopPlayersByGames[i].Games > vs.TopPlayersByGames[j].Games
	})
	if len(vs.TopPlayersByGames) > 15 {
		vs.TopPlayersByGames = vs.TopPlayersByGames[:15]
	}
	return vs, nil
}

// AvatarURL convierte coords "col,row" (0-indexed) a la URL del PNG.
// Ejemplo: "11,5" -> ".../6-12.png" (fila+1, columna+1).
func AvatarURL(coords string) string {
	parts := strings.Split(coords, ",")
	if len(parts) != 2 {
		return ""
	}
	col, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	row, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return ""
	}
	return fmt.Sprintf("%s%d-%d.png", avatarBaseURL, row+1, col+1)
}

func msToDate(ms int64) string {
	return time.Unix(ms/1000, 0).UTC().Format("2006-01-02")
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedPlayerKeys[T any](m map[string]*T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
