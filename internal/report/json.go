package report

import (
	"encoding/json"
	"time"

	"github.com/okatyev/tg-digest/internal/digest"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// The archive schema is a contract for downstream consumers: every field is
// always present, with empty strings for absent data, so its shape never
// varies by code path.

type archive struct {
	GeneratedAt string           `json:"generated_at"`
	Channels    []archiveChannel `json:"channels"`
}

type archiveChannel struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	Visibility string           `json:"visibility"`
	Error      string           `json:"error"`
	Messages   []archiveMessage `json:"messages"`
}

type archiveMessage struct {
	ID          int64  `json:"id"`
	Sender      string `json:"sender"`
	TextSummary string `json:"text_summary"`
	MessageLink string `json:"message_link"`
	Timestamp   string `json:"timestamp"`
	Strategy    string `json:"strategy"`
}

// RenderJSON is a pure projection of the digest into the archive document.
// Rendering the same digest twice produces byte-identical output.
func RenderJSON(d *digest.Digest) ([]byte, error) {
	doc := archive{
		GeneratedAt: d.GeneratedAt.Format(time.RFC3339),
		Channels: lo.Map(d.Channels, func(entry digest.ChannelEntry, _ int) archiveChannel {
			return archiveChannel{
				ID:         entry.Channel.ID,
				Name:       entry.Channel.Name,
				Visibility: string(entry.Channel.Visibility),
				Error:      entry.Err,
				Messages: lo.Map(entry.Items, func(item digest.Item, _ int) archiveMessage {
					return archiveMessage{
						ID:          item.Message.ID,
						Sender:      item.Message.Sender,
						TextSummary: item.Summary.Text,
						MessageLink: item.Message.Link,
						Timestamp:   item.Message.Date.Format(time.RFC3339),
						Strategy:    string(item.Summary.Strategy),
					}
				}),
			}
		}),
	}

	// Keep empty collections as [] rather than null in the archive
	if doc.Channels == nil {
		doc.Channels = []archiveChannel{}
	}
	for i := range doc.Channels {
		if doc.Channels[i].Messages == nil {
			doc.Channels[i].Messages = []archiveMessage{}
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, oops.With("context", "marshaling digest archive").Wrap(err)
	}
	return data, nil
}
