package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/trippplecard/mobee-stats/internal/domain"
)

// Format arma el reporte de texto que imprime el CLI.
func Format(st *domain.Stats) string {
	var b strings.Builder
	line := strings.Repeat("=", 60)

	fmt.Fprintf(&b, "\n%s\nMOBEE GAME STATISTICS\n%s\n", line, line)

	fmt.Fprintf(&b, "\n📊 OVERALL STATS\n")
	fmt.Fprintf(&b, "Total Games Played: %d\n", st.TotalGames)
	fmt.Fprintf(&b, "Unique Players: %d\n", st.UniquePlayers)
	fmt.Fprintf(&b, "High Score Games: %d\n", st.HighScoreGames)

	fmt.Fprintf(&b, "\n🎯 SCORE STATS\n")
	fmt.Fprintf(&b, "Average Score: %.2f\n", st.AvgScore)
	fmt.Fprintf(&b, "Median Score: %.2f\n", st.MedianScore)
	fmt.Fprintf(&b, "Highest Score: %d\n", st.MaxScore)
	fmt.Fprintf(&b, "Lowest Score: %d\n", st.MinScore)

	fmt.Fprintf(&b, "\n📈 SCORE DISTRIBUTION\n")
	for _, bucket := range domain.ScoreBuckets {
		count := st.ScoreDistribution[bucket]
		pct := float64(count) / float64(st.TotalGames) * 100
		fmt.Fprintf(&b, "%-8s : %4d games (%5.1f%%)\n", bucket, count, pct)
	}

	fmt.Fprintf(&b, "\n🌍 BY COUNTRY\n")
	for _, kv := range sortedCounts(st.CountryCounts) {
		pct := float64(kv.n) / float64(st.TotalGames) * 100
		fmt.Fprintf(&b, "  %-20s : %4d games (%5.1f%%)\n", kv.k, kv.n, pct)
	}

	fmt.Fprintf(&b, "\n🏆 TOP %d PLAYERS BY GAMES PLAYED\n", len(st.TopPlayersByGames))
	for i, p := range st.TopPlayersByGames {
		fmt.Fprintf(&b, "%2d. %-10s : %4d games (avg: %.2f)\n", i+1, p.UserCode, len(p.Scores), avg(p.Scores))
	}

	fmt.Fprintf(&b, "\n🥇 TOP %d PLAYERS BY HIGH SCORE\n", len(st.TopPlayersByScore))
	for i, p := range st.TopPlayersByScore {
		fmt.Fprintf(&b, "%2d. %-10s : %2d points\n", i+1, p.UserCode, p.Score)
	}

	fmt.Fprintf(&b, "\n👥 PLAYER ENGAGEMENT\n")
	eng := st.Engagement
	up := float64(st.UniquePlayers)
	fmt.Fprintf(&b, "One-time Players    : %3d (%5.1f%%)\n", eng.OneTimePlayers, float64(eng.OneTimePlayers)/up*100)
	fmt.Fprintf(&b, "Returning Players   : %3d (%5.1f%%)\n", eng.ReturningPlayers, float64(eng.ReturningPlayers)/up*100)
	fmt.Fprintf(&b, "Super Engaged (10+) : %3d (%5.1f%%)\n", eng.SuperEngaged, float64(eng.SuperEngaged)/up*100)

	fmt.Fprintf(&b, "\n%s\n", line)
	return b.String()
}

type kvCount struct {
	k string
	n int
}

func sortedCounts(m map[string]int) []kvCount {
	out := make([]kvCount, 0, len(m))
	for k, n := range m {
		out = append(out, kvCount{k, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].k < out[j].k
	})
	return out
}
