package sendgridmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/trippplecard/mobee-stats/internal/domain"
)

type Mailer struct {
	client *sendgrid.Client
	from   string
	to     []string // EMAIL_TO admite varios separados por coma
}

func New(apiKey, from string, to []string) *Mailer {
	return &Mailer{client: sendgrid.NewSendClient(apiKey), from: from, to: to}
}

// SendReport manda el resumen en HTML con el PDF adjunto en base64.
func (m *Mailer) SendReport(ctx context.Context, st *domain.Stats, pdf []byte, now time.Time) error {
	msg := mail.NewV3Mail()
	msg.SetFrom(mail.NewEmail("", m.from))
	msg.Subject = fmt.Sprintf("📊 Mobee Game Stats - %s", now.Format("January 2, 2006"))

	p := mail.NewPersonalization()
	for _, addr := range m.to {
		p.AddTos(mail.NewEmail("", strings.TrimSpace(addr)))
	}
	msg.AddPersonalizations(p)
	msg.AddContent(mail.NewContent("text/html", reportHTML(st, now)))

	att := mail.NewAttachment()
	att.SetContent(base64.StdEncoding.EncodeToString(pdf))
	att.SetType("application/pdf")
	att.SetFilename("mobee_stats_report.pdf")
	att.SetDisposition("attachment")
	msg.AddAttachment(att)

	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, strings.TrimSpace(resp.Body))
	}
	return nil
}

func reportHTML(st *domain.Stats, now time.Time) string {
	var b strings.Builder
	b.WriteString(`<html><head><style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 20px; text-align: center; }
.stats { padding: 20px; }
.stat-box { background: #f4f4f4; padding: 15px; margin: 10px 0; border-radius: 5px; }
.stat-label { font-weight: bold; color: #667eea; }
table { border-collapse: collapse; width: 100%; margin: 10px 0; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
th { background-color: #667eea; color: white; }
</style></head><body>`)

	fmt.Fprintf(&b, `<div class="header"><h1>📊 Mobee Game Statistics</h1><p>Daily Report - %s</p></div>`,
		now.Format("January 2, 2006"))
	b.WriteString(`<div class="stats">`)

	fmt.Fprintf(&b, `<div class="stat-box"><span class="stat-label">Total Games:</span> %d<br>`+
		`<span class="stat-label">Unique Players:</span> %d<br>`+
		`<span class="stat-label">High Score Games:</span> %d</div>`,
		st.TotalGames, st.UniquePlayers, st.HighScoreGames)
	fmt.Fprintf(&b, `<div class="stat-box"><span class="stat-label">Average Score:</span> %.2f<br>`+
		`<span class="stat-label">Median Score:</span> %.2f<br>`+
		`<span class="stat-label">Highest Score:</span> %d</div>`,
		st.AvgScore, st.MedianScore, st.MaxScore)

	b.WriteString(`<h3>🏆 Top 5 Players by Games Played</h3><table><tr><th>Rank</th><th>Player</th><th>Games</th><th>Avg Score</th></tr>`)
	for i, p := range st.TopPlayersByGames {
		if i >= 5 {
			break
		}
		sum := 0
		for _, s := range p.Scores {
			sum += s
		}
		fmt.Fprintf(&b, "<tr><td>%d</td><td>%s</td><td>%d</td><td>%.1f</td></tr>",
			i+1, p.UserCode, len(p.Scores), float64(sum)/float64(len(p.Scores)))
	}
	b.WriteString(`</table>`)

	b.WriteString(`<h3>🥇 Top 5 High Scores</h3><table><tr><th>Rank</th><th>Player</th><th>Score</th></tr>`)
	for i, p := range st.TopPlayersByScore {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "<tr><td>%d</td><td>%s</td><td>%d</td></tr>", i+1, p.UserCode, p.Score)
	}
	b.WriteString(`</table>`)

	b.WriteString(`<p><strong>📄 Full detailed report is attached as a PDF.</strong></p></div></body></html>`)
	return b.String()
}
