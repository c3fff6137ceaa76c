package slack

import (
	"context"
	"fmt"
	"strconv"
	"time"

	slackapi "github.com/slack-go/slack"

	"github.com/trippplecard/mobee-stats/internal/domain"
)

const historyPageSize = 1000 // máximo que permite conversations.history

type Client struct {
	api *slackapi.Client
}

type Option func(*[]slackapi.Option)

// WithAPIURL apunta el cliente a otro host (tests).
func WithAPIURL(u string) Option {
	return func(opts *[]slackapi.Option) {
		*opts = append(*opts, slackapi.OptionAPIURL(u))
	}
}

func New(token string, opts ...Option) *Client {
	var apiOpts []slackapi.Option
	for _, o := range opts {
		o(&apiOpts)
	}
	return &Client{api: slackapi.New(token, apiOpts...)}
}

// FetchHistory baja el historial completo del canal paginando por cursor.
func (c *Client) FetchHistory(ctx context.Context, channelID string) ([]domain.ChannelMessage, error) {
	var out []domain.ChannelMessage
	cursor := ""
	for {
		resp, err := c.api.GetConversationHistoryContext(ctx, &slackapi.GetConversationHistoryParameters{
			ChannelID: channelID,
			Limit:     historyPageSize,
			Cursor:    cursor,
		})
		if err != nil {
			return nil, fmt.Errorf("slack history: %w", err)
		}
		for _, m := range resp.Messages {
			out = append(out, domain.ChannelMessage{
				TS:   m.Timestamp,
				Text: m.Text,
				At:   parseTS(m.Timestamp),
			})
		}
		cursor = resp.ResponseMetaData.NextCursor
		if cursor == "" {
			return out, nil
		}
	}
}

// parseTS: el ts de Slack viene como "1693392000.000100" (epoch.seq).
func parseTS(ts string) time.Time {
	f, err := strconv.ParseFloat(ts, 64)
	if err != nil || f == 0 {
		return time.Time{}
	}
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}
