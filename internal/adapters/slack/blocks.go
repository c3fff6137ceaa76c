package slack

import (
	"context"
	"fmt"
	"strings"
	"time"

	slackapi "github.com/slack-go/slack"

	"github.com/trippplecard/mobee-stats/internal/domain"
)

var medals = []string{"🥇", "🥈", "🥉", "4️⃣", "5️⃣"}

// PostReport publica el resumen diario como mensaje Block Kit.
func (c *Client) PostReport(ctx context.Context, channelID string, st *domain.Stats, dashboardURL string) error {
	now := time.Now().UTC()
	_, _, err := c.api.PostMessageContext(ctx, channelID,
		slackapi.MsgOptionText(fmt.Sprintf("Daily Mobee Stats - %d games", st.TotalGames), false),
		slackapi.MsgOptionBlocks(reportBlocks(st, dashboardURL, now)...),
		slackapi.MsgOptionDisableLinkUnfurl(),
		slackapi.MsgOptionDisableMediaUnfurl(),
	)
	if err != nil {
		return fmt.Errorf("slack post report: %w", err)
	}
	return nil
}

func reportBlocks(st *domain.Stats, dashboardURL string, now time.Time) []slackapi.Block {
	header := slackapi.NewHeaderBlock(slackapi.NewTextBlockObject(
		slackapi.PlainTextType,
		fmt.Sprintf("📊 Mobee Game Statistics - %s", now.Format("January 2, 2006")),
		true, false,
	))

	summary1 := slackapi.NewSectionBlock(nil, []*slackapi.TextBlockObject{
		mrkdwn("*Total Games:*\n%d", st.TotalGames),
		mrkdwn("*Unique Players:*\n%d", st.UniquePlayers),
		mrkdwn("*High Score Games:*\n%d", st.HighScoreGames),
		mrkdwn("*Avg Score:*\n%.2f", st.AvgScore),
	}, nil)

	summary2 := slackapi.NewSectionBlock(nil, []*slackapi.TextBlockObject{
		mrkdwn("*Median Score:*\n%.2f", st.MedianScore),
		mrkdwn("*Highest Score:*\n%d", st.MaxScore),
		mrkdwn("*New Players:*\n%d", st.Engagement.OneTimePlayers),
		mrkdwn("*Returning:*\n%d", st.Engagement.ReturningPlayers),
	}, nil)

	blocks := []slackapi.Block{
		header,
		slackapi.NewDividerBlock(),
		summary1,
		summary2,
		slackapi.NewDividerBlock(),
		section("*🏆 Top 5 Players by Games Played:*"),
		section(topByGamesText(st)),
		section("*🎯 Top 5 High Scores:*"),
		section(topByScoreText(st)),
	}

	if len(st.DailyStats) > 0 {
		blocks = append(blocks,
			slackapi.NewDividerBlock(),
			section("*📈 Last 7 Days Activity:*"),
			section(recentActivityText(st)),
		)
	}

	footer := fmt.Sprintf("Generated at %s UTC", now.Format("3:04 PM"))
	if dashboardURL != "" {
		footer = fmt.Sprintf("📄 Full dashboard: %s | %s", dashboardURL, footer)
	}
	blocks = append(blocks,
		slackapi.NewDividerBlock(),
		slackapi.NewContextBlock("", mrkdwn("%s", footer)),
	)
	return blocks
}

func topByGamesText(st *domain.Stats) string {
	var b strings.Builder
	for i, p := range st.TopPlayersByGames {
		if i >= len(medals) {
			break
		}
		avg := 0.0
		for _, s := range p.Scores {
			avg += float64(s)
		}
		avg /= float64(len(p.Scores))
		fmt.Fprintf(&b, "%s `%s` - %d games (avg: %.1f)\n", medals[i], p.UserCode, len(p.Scores), avg)
	}
	return b.String()
}

func topByScoreText(st *domain.Stats) string {
	var b strings.Builder
	for i, p := range st.TopPlayersByScore {
		if i >= len(medals) {
			break
		}
		fmt.Fprintf(&b, "%s `%s` - %d points\n", medals[i], p.UserCode, p.Score)
	}
	return b.String()
}

// últimos 7 días, del más reciente al más viejo
func recentActivityText(st *domain.Stats) string {
	var b strings.Builder
	n := 0
	for i := len(st.DailyStats) - 1; i >= 0 && n < 7; i-- {
		d := st.DailyStats[i]
		fmt.Fprintf(&b, "• %s: %d games, %d players\n", d.Date, d.Games, d.UniquePlayers)
		n++
	}
	return b.String()
}

func section(text string) *slackapi.SectionBlock {
	return slackapi.NewSectionBlock(mrkdwn("%s", text), nil, nil)
}

func mrkdwn(format string, args ...any) *slackapi.TextBlockObject {
	return slackapi.NewTextBlockObject(slackapi.MarkdownType, fmt.Sprintf(format, args...), false, false)
}
