// Package report arma el PDF de estadísticas: tablas + charts, una
// sección por bloque del reporte original.
package report

import (
	"bytes"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/trippplecard/mobee-stats/internal/domain"
)

type Renderer struct{}

func NewRenderer() *Renderer { return &Renderer{} }

func (Renderer) Render(st *domain.Stats) ([]byte, error) {
	now := time.Now().UTC()
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// título
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 8, "MOBEE GAME STATISTICS REPORT", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 6, "Generated: "+now.Format("January 2, 2006"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	heading(pdf, "OVERALL STATISTICS")
	kvTable(pdf, [][2]string{
		{"Total Games Played:", fmt.Sprintf("%d", st.TotalGames)},
		{"Unique Players:", fmt.Sprintf("%d", st.UniquePlayers)},
		{"Average Score:", fmt.Sprintf("%.2f", st.AvgScore)},
		{"Median Score:", fmt.Sprintf("%.2f", st.MedianScore)},
		{"Highest Score:", fmt.Sprintf("%d", st.MaxScore)},
		{"Lowest Score:", fmt.Sprintf("%d", st.MinScore)},
		{"High Score Games:", fmt.Sprintf("%d", st.HighScoreGames)},
	})

	heading(pdf, "SCORE DISTRIBUTION")
	rows := make([][]string, 0, len(domain.ScoreBuckets))
	for _, b := range domain.ScoreBuckets {
		count := st.ScoreDistribution[b]
		pct := float64(count) / float64(st.TotalGames) * 100
		rows = append(rows, []string{b, fmt.Sprintf("%d", count), fmt.Sprintf("%.1f%%", pct)})
	}
	grid(pdf, []string{"Range", "Games", "Percentage"}, rows, []float64{30, 30, 30}, nil)

	embedChart(pdf, "score_dist", st, scoreDistChart, 110, 55)

	heading(pdf, "HIGH SCORE LEADERBOARD (TOP 15)")
	rows = rows[:0]
	for i, p := range st.TopPlayersByScore {
		if i >= 15 {
			break
		}
		info := st.PlayerHighScoreInfo[p.UserCode]
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1), p.UserCode, fmt.Sprintf("%d", p.Score),
			clip(info.Platform, 15), clip(info.Location, 25),
		})
	}
	grid(pdf, []string{"Rank", "Player", "Score", "Platform", "Location"},
		rows, []float64{12, 25, 15, 40, 50}, podiumFill)

	if len(st.DailyStats) > 0 {
		heading(pdf, "DAILY STATISTICS (LAST 30 DAYS)")
		daily := st.DailyStats
		if len(daily) > 30 {
			daily = daily[len(daily)-30:]
		}
		rows = rows[:0]
		for _, d := range daily {
			date, _ := time.Parse("2006-01-02", d.Date)
			rows = append(rows, []string{
				date.Format("Monday, January 2, 2006"),
				fmt.Sprintf("%d", d.Games),
				fmt.Sprintf("%d", d.UniquePlayers),
			})
		}
		grid(pdf, []string{"Date", "Games", "Unique Players"}, rows, []float64{65, 20, 30}, nil)
		embedChart(pdf, "daily", st, dailyChart, 140, 60)
	}

	heading(pdf, "TOP 15 PLAYERS BY GAMES PLAYED")
	rows = rows[:0]
	for i, p := range st.TopPlayersByGames {
		if i >= 15 {
			break
		}
		loc := st.PlayerMostCommonCity[p.UserCode]
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1), fmt.Sprintf("%d", len(p.Scores)), p.UserCode, clip(loc, 35),
		})
	}
	grid(pdf, []string{"Rank", "Games", "Name", "City"}, rows, []float64{12, 16, 25, 60}, nil)

	heading(pdf, "TOP PLATFORMS")
	rows = rows[:0]
	for _, p := range sortedPlatforms(st) {
		agg := st.PlatformScores[p]
		rows = append(rows, []string{
			clip(p, 25), fmt.Sprintf("%d", agg.Count), fmt.Sprintf("%.1f", agg.Avg), fmt.Sprintf("%d", agg.Max),
		})
	}
	grid(pdf, []string{"Platform", "Games", "Avg Score", "Max"}, rows, []float64{50, 20, 22, 15}, nil)
	embedChart(pdf, "platforms", st, platformChart, 110, 55)

	heading(pdf, "PLAYER ENGAGEMENT")
	eng := st.Engagement
	up := float64(st.UniquePlayers)
	rows = [][]string{
		{"One-time Players", fmt.Sprintf("%d", eng.OneTimePlayers), fmt.Sprintf("%.1f%%", float64(eng.OneTimePlayers)/up*100)},
		{"Returning Players", fmt.Sprintf("%d", eng.ReturningPlayers), fmt.Sprintf("%.1f%%", float64(eng.ReturningPlayers)/up*100)},
		{"Super Engaged (10+)", fmt.Sprintf("%d", eng.SuperEngaged), fmt.Sprintf("%.1f%%", float64(eng.SuperEngaged)/up*100)},
	}
	grid(pdf, []string{"Category", "Count", "Percentage"}, rows, []float64{50, 25, 33}, nil)

	heading(pdf, "TOP COUNTRIES")
	rows = rows[:0]
	for _, c := range sortedCountries(st) {
		agg := st.LocationScores[c]
		if agg.Count < 5 { // países con pocas partidas no dicen nada
			continue
		}
		rows = append(rows, []string{clip(c, 25), fmt.Sprintf("%d", agg.Count), fmt.Sprintf("%.2f", agg.Avg)})
	}
	if len(rows) > 0 {
		grid(pdf, []string{"Country", "Games", "Avg Score"}, rows, []float64{50, 25, 33}, nil)
	}

	heading(pdf, "TOP CITIES BY GAMES PLAYED")
	rows = rows[:0]
	for i, c := range sortedCities(st) {
		if i >= 10 {
			break
		}
		rows = append(rows, []string{clip(c, 30), fmt.Sprintf("%d", st.CityCounts[c])})
	}
	grid(pdf, []string{"City", "Games"}, rows, []float64{60, 20}, nil)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf render: %w", err)
	}
	return buf.Bytes(), nil
}

func heading(pdf *fpdf.Fpdf, text string) {
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(44, 62, 80)
	pdf.CellFormat(0, 6, text, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func kvTable(pdf *fpdf.Fpdf, pairs [][2]string) {
	pdf.SetFont("Helvetica", "", 10)
	for _, p := range pairs {
		pdf.SetTextColor(52, 73, 94)
		pdf.CellFormat(45, 5, p[0], "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 5, p[1], "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
	}
}

// grid dibuja una tabla con header sombreado; fill decide el fondo por
// fila (podio dorado/plata/bronce en el leaderboard).
func grid(pdf *fpdf.Fpdf, headers []string, rows [][]string, widths []float64, fill func(row int) (int, int, int, bool)) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(236, 240, 241)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 5, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for ri, row := range rows {
		shaded := false
		if fill != nil {
			if r, g, b, ok := fill(ri); ok {
				pdf.SetFillColor(r, g, b)
				shaded = true
			}
		}
		for ci, cell := range row {
			pdf.CellFormat(widths[ci], 5, cell, "1", 0, "C", shaded, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(2)
}

// oro, plata, bronce para las tres primeras filas
func podiumFill(row int) (int, int, int, bool) {
	switch row {
	case 0:
		return 255, 215, 0, true
	case 1:
		return 192, 192, 192, true
	case 2:
		return 205, 127, 50, true
	}
	return 0, 0, 0, false
}

// embedChart renderiza el PNG y lo mete en el flujo; si el chart falla
// seguimos sin él, el PDF vale igual.
func embedChart(pdf *fpdf.Fpdf, name string, st *domain.Stats, gen func(*domain.Stats) ([]byte, error), w, h float64) {
	png, err := gen(st)
	if err != nil {
		log.Printf("chart %s: %v", name, err)
		return
	}
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	pdf.ImageOptions(name, pdf.GetX(), pdf.GetY(), w, h, true, opts, 0, "")
	pdf.Ln(2)
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func sortedPlatforms(st *domain.Stats) []string {
	return sortedByCount(st.PlatformCounts, 10)
}

func sortedCountries(st *domain.Stats) []string {
	keys := make([]string, 0, len(st.LocationScores))
	for k := range st.LocationScores {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := st.LocationScores[keys[i]], st.LocationScores[keys[j]]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return keys[i] < keys[j]
	})
	if len(keys) > 10 {
		keys = keys[:10]
	}
	return keys
}

func sortedCities(st *domain.Stats) []string {
	return sortedByCount(st.CityCounts, 0)
}

func sortedByCount(m map[string]int, limit int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}
