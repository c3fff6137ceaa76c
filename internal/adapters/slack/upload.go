package slack

import (
	"bytes"
	"context"
	"fmt"

	slackapi "github.com/slack-go/slack"
)

// UploadPDF sube el reporte al canal con el flujo nuevo de archivos
// (files.getUploadURLExternal + completeUploadExternal).
func (c *Client) UploadPDF(ctx context.Context, channelID, filename string, pdf []byte, comment string) error {
	_, err := c.api.UploadFileV2Context(ctx, slackapi.UploadFileV2Parameters{
		Reader:         bytes.NewReader(pdf),
		Filename:       filename,
		FileSize:       len(pdf),
		Title:          filename,
		Channel:        channelID,
		InitialComment: comment,
	})
	if err != nil {
		return fmt.Errorf("slack upload %s: %w", filename, err)
	}
	return nil
}
