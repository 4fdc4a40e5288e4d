package report

import (
	"fmt"

	"github.com/gorilla/feeds"
	"github.com/okatyev/tg-digest/internal/digest"
	"github.com/samber/oops"
)

// RenderRSS projects the digest into an RSS feed, one item per summarized
// message, so feed readers can consume the digest alongside the HTML report.
func RenderRSS(d *digest.Digest) (string, error) {
	feed := &feeds.Feed{
		Title:       "Telegram Unread Digest",
		Link:        &feeds.Link{Href: "https://t.me"},
		Description: fmt.Sprintf("Summaries of %d unread messages across %d channels", d.MessageCount(), len(d.Channels)),
		Created:     d.GeneratedAt,
		Updated:     d.GeneratedAt,
	}

	for _, entry := range d.Channels {
		for _, item := range entry.Items {
			feed.Items = append(feed.Items, &feeds.Item{
				Title:       fmt.Sprintf("%s: %s", entry.Channel.Name, truncate(item.Summary.Text, 100)),
				Link:        &feeds.Link{Href: item.Message.Link},
				Description: item.Summary.Text,
				Author:      &feeds.Author{Name: item.Message.Sender},
				Created:     item.Message.Date,
				Id:          fmt.Sprintf("%d-%d", entry.Channel.ID, item.Message.ID),
			})
		}
	}

	rss, err := feed.ToRss()
	if err != nil {
		return "", oops.With("context", "converting digest to RSS").Wrap(err)
	}
	return rss, nil
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
