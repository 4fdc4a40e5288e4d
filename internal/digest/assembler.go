package digest

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// Source is the chat-client capability the assembler consumes. Channel and
// message order returned by a Source is preserved end to end.
type Source interface {
	ListChannelsWithUnread(ctx context.Context) ([]Channel, error)
	FetchUnread(ctx context.Context, ch Channel, limit int) ([]Message, error)
}

// MessageSummarizer produces a summary for message text. It is expected to
// absorb its own failures and always return a usable summary.
type MessageSummarizer interface {
	Summarize(ctx context.Context, text string) Summary
}

// Assembler walks channels with unread messages and builds the digest
type Assembler struct {
	source         Source
	summarizer     MessageSummarizer
	channelTimeout time.Duration
}

func NewAssembler(source Source, summarizer MessageSummarizer, channelTimeout time.Duration) *Assembler {
	if channelTimeout <= 0 {
		channelTimeout = 30 * time.Second
	}
	return &Assembler{
		source:         source,
		summarizer:     summarizer,
		channelTimeout: channelTimeout,
	}
}

// Build assembles a self-contained digest. A channel whose fetch fails is
// recorded with an error marker and the walk continues; only a failure to
// enumerate channels at all is returned as an error.
func (a *Assembler) Build(ctx context.Context, limitPerChannel int) (*Digest, error) {
	channels, err := a.source.ListChannelsWithUnread(ctx)
	if err != nil {
		return nil, oops.With("context", "listing channels with unread").Wrap(err)
	}

	d := &Digest{GeneratedAt: time.Now()}
	for _, ch := range channels {
		if ch.UnreadCount <= 0 {
			continue
		}
		slog.Info("Processing channel", "channel", ch.Name, "unread", ch.UnreadCount)
		d.Channels = append(d.Channels, a.buildEntry(ctx, ch, limitPerChannel))
	}

	if failed := d.FailedChannels(); failed > 0 {
		slog.Warn("Some channels failed to load", "failed", failed, "total", len(d.Channels))
	}
	return d, nil
}

func (a *Assembler) buildEntry(ctx context.Context, ch Channel, limit int) ChannelEntry {
	fetchCtx, cancel := context.WithTimeout(ctx, a.channelTimeout)
	defer cancel()

	messages, err := a.source.FetchUnread(fetchCtx, ch, limit)
	if err != nil {
		slog.Error("Failed to fetch unread messages", "channel", ch.Name, "channel_id", ch.ID, "error", err)
		return ChannelEntry{Channel: ch, Err: err.Error()}
	}

	entry := ChannelEntry{Channel: ch, Items: make([]Item, 0, len(messages))}
	for _, msg := range messages {
		entry.Items = append(entry.Items, Item{
			Message: msg,
			Summary: a.summarizer.Summarize(ctx, msg.Text),
		})
	}
	return entry
}
