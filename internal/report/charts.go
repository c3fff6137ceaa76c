package report

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/trippplecard/mobee-stats/internal/domain"
)

// barPNG renderiza un bar chart simple a PNG.
func barPNG(title string, values []chart.Value, width, height int) ([]byte, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("chart %q: sin datos", title)
	}
	barWidth := (width - 100) / len(values)
	if barWidth > 40 {
		barWidth = 40
	}
	if barWidth < 2 {
		barWidth = 2
	}
	bc := chart.BarChart{
		Title:    title,
		Width:    width,
		Height:   height,
		BarWidth: barWidth,
		Bars:     values,
	}
	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart %q: %w", title, err)
	}
	return buf.Bytes(), nil
}

func scoreDistChart(st *domain.Stats) ([]byte, error) {
	values := make([]chart.Value, 0, len(domain.ScoreBuckets))
	for _, b := range domain.ScoreBuckets {
		values = append(values, chart.Value{Label: b, Value: float64(st.ScoreDistribution[b])})
	}
	return barPNG("Score Distribution", values, 600, 300)
}

// dailyChart: últimos 30 días, rellenando con cero los días sin juego.
func dailyChart(st *domain.Stats) ([]byte, error) {
	if len(st.DailyStats) == 0 {
		return nil, fmt.Errorf("daily chart: sin datos")
	}
	byDate := map[string]domain.DailyStat{}
	for _, d := range st.DailyStats {
		byDate[d.Date] = d
	}
	last, err := time.Parse("2006-01-02", st.DailyStats[len(st.DailyStats)-1].Date)
	if err != nil {
		return nil, err
	}
	values := make([]chart.Value, 0, 30)
	for i := 29; i >= 0; i-- {
		date := last.AddDate(0, 0, -i).Format("2006-01-02")
		label := ""
		if i%5 == 0 {
			label = date[5:] // MM-DD, mostramos uno de cada cinco
		}
		values = append(values, chart.Value{Label: label, Value: float64(byDate[date].Games)})
	}
	return barPNG("Daily Activity (Last 30 Days)", values, 700, 300)
}

func platformChart(st *domain.Stats) ([]byte, error) {
	type pc struct {
		name  string
		count int
	}
	all := make([]pc, 0, len(st.PlatformCounts))
	for name, count := range st.PlatformCounts {
		all = append(all, pc{name, count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].name < all[j].name
	})
	if len(all) > 10 {
		all = all[:10]
	}
	values := make([]chart.Value, 0, len(all))
	for _, p := range all {
		name := p.name
		if len(name) > 20 {
			name = name[:20]
		}
		values = append(values, chart.Value{Label: name, Value: float64(p.count)})
	}
	return barPNG("Top Platforms by Games Played", values, 600, 300)
}
