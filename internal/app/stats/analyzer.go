package stats

import (
	"sort"

	"github.com/trippplecard/mobee-stats/internal/domain"
)

// ScoreBucket clasifica un score en su rango de distribución.
func ScoreBucket(score int) string {
	switch {
	case score <= 5:
		return "0-5"
	case score <= 10:
		return "6-10"
	case score <= 15:
		return "11-15"
	case score <= 20:
		return "16-20"
	default:
		return "20+"
	}
}

// Analyze calcula todos los agregados sobre las partidas. Devuelve nil
// si no hay datos.
func Analyze(games []domain.Game) *domain.Stats {
	if len(games) == 0 {
		return nil
	}

	st := &domain.Stats{
		TotalGames:           len(games),
		CityCounts:           map[string]int{},
		CountryCounts:        map[string]int{},
		PlatformCounts:       map[string]int{},
		PlatformScores:       map[string]domain.PlatformAgg{},
		LocationScores:       map[string]domain.CountryAgg{},
		PlayerCities:         map[string]int{},
		PlayerPlatforms:      map[string]int{},
		PlayerMostCommonCity: map[string]string{},
		PlayerHighScoreInfo:  map[string]domain.HighScoreInfo{},
		ScoreDistribution:    map[string]int{},
	}
	for _, b := range domain.ScoreBuckets {
		st.ScoreDistribution[b] = 0
	}

	scores := make([]int, 0, len(games))
	sum := 0
	st.MinScore = games[0].Score

	playerScores := map[string][]int{}
	playerHigh := map[string]int{}
	playerCities := map[string]map[string]int{} // jugador -> ciudad -> partidas
	playerPlatforms := map[string]map[string]bool{}
	platformScores := map[string][]int{}
	countryScores := map[string][]int{}
	daily := map[string]*domain.DailyStat{}
	dailyPlayers := map[string]map[string]bool{}

	for _, g := range games {
		scores = append(scores, g.Score)
		sum += g.Score
		if g.Score > st.MaxScore {
			st.MaxScore = g.Score
		}
		if g.Score < st.MinScore {
			st.MinScore = g.Score
		}
		if g.IsHighScore {
			st.HighScoreGames++
		}

		st.CityCounts[g.City]++
		st.CountryCounts[g.Country]++
		st.PlatformCounts[g.Platform]++
		st.ScoreDistribution[ScoreBucket(g.Score)]++
		platformScores[g.Platform] = append(platformScores[g.Platform], g.Score)
		countryScores[g.Country] = append(countryScores[g.Country], g.Score)

		playerScores[g.UserCode] = append(playerScores[g.UserCode], g.Score)
		// la primera partida siembra la entrada aunque el score sea 0
		if best, seen := playerHigh[g.UserCode]; !seen || g.Score > best {
			playerHigh[g.UserCode] = g.Score
			st.PlayerHighScoreInfo[g.UserCode] = domain.HighScoreInfo{
				Location: g.City + ", " + g.Country,
				Platform: g.Platform,
				PlayedAt: g.PlayedAt,
			}
		}
		if playerCities[g.UserCode] == nil {
			playerCities[g.UserCode] = map[string]int{}
		}
		playerCities[g.UserCode][g.City]++
		if playerPlatforms[g.UserCode] == nil {
			playerPlatforms[g.UserCode] = map[string]bool{}
		}
		playerPlatforms[g.UserCode][g.Platform] = true

		if !g.PlayedAt.IsZero() {
			date := g.PlayedAt.UTC().Format("2006-01-02")
			if daily[date] == nil {
				daily[date] = &domain.DailyStat{Date: date}
				dailyPlayers[date] = map[string]bool{}
			}
			daily[date].Games++
			dailyPlayers[date][g.UserCode] = true
		}
	}

	st.UniquePlayers = len(playerScores)
	st.AvgScore = float64(sum) / float64(len(scores))
	st.MedianScore = median(scores)

	for p, ss := range platformScores {
		st.PlatformScores[p] = domain.PlatformAgg{Count: len(ss), Avg: avg(ss), Max: maxOf(ss)}
	}
	for c, ss := range countryScores {
		st.LocationScores[c] = domain.CountryAgg{Count: len(ss), Avg: avg(ss)}
	}

	for code, cities := range playerCities {
		st.PlayerCities[code] = len(cities)
		st.PlayerMostCommonCity[code] = topKey(cities)
	}
	for code, plats := range playerPlatforms {
		st.PlayerPlatforms[code] = len(plats)
	}

	for _, ss := range playerScores {
		switch {
		case len(ss) == 1:
			st.Engagement.OneTimePlayers++
		default:
			st.Engagement.ReturningPlayers++
		}
		if len(ss) >= 10 {
			st.Engagement.SuperEngaged++
		}
	}

	for date, d := range daily {
		d.UniquePlayers = len(dailyPlayers[date])
		st.DailyStats = append(st.DailyStats, *d)
	}
	sort.Slice(st.DailyStats, func(i, j int) bool {
		return st.DailyStats[i].Date < st.DailyStats[j].Date
	})

	// top 10 por partidas jugadas (empates por código, para determinismo)
	for code, ss := range playerScores {
		st.TopPlayersByGames = append(st.TopPlayersByGames, domain.PlayerGames{UserCode: code, Scores: ss})
	}
	sort.Slice(st.TopPlayersByGames, func(i, j int) bool {
		a, b := st.TopPlayersByGames[i], st.TopPlayersByGames[j]
		if len(a.Scores) != len(b.Scores) {
			return len(a.Scores) > len(b.Scores)
		}
		return a.UserCode < b.UserCode
	})
	if len(st.TopPlayersByGames) > 10 {
		st.TopPlayersByGames = st.TopPlayersByGames[:10]
	}

	// top 10 por high score
	for code, hs := range playerHigh {
		st.TopPlayersByScore = append(st.TopPlayersByScore, domain.PlayerScore{UserCode: code, Score: hs})
	}
	sort.Slice(st.TopPlayersByScore, func(i, j int) bool {
		a, b := st.TopPlayersByScore[i], st.TopPlayersByScore[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.UserCode < b.UserCode
	})
	if len(st.TopPlayersByScore) > 10 {
		st.TopPlayersByScore = st.TopPlayersByScore[:10]
	}

	return st
}

func avg(ss []int) float64 {
	sum := 0
	for _, s := range ss {
		sum += s
	}
	return float64(sum) / float64(len(ss))
}

func maxOf(ss []int) int {
	m := ss[0]
	for _, s := range ss[1:] {
		if s > m {
			m = s
		}
	}
	return m
}

func median(ss []int) float64 {
	sorted := append([]int(nil), ss...)
	sort.Ints(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}

// topKey: clave con mayor conteo; empates por orden lexicográfico.
func topKey(counts map[string]int) string {
	best := ""
	bestN := -1
	for k, n := range counts {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	return best
}
