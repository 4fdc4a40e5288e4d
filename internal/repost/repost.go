package repost

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/okatyev/tg-digest/internal/digest"
	"github.com/samber/oops"
)

// MaxMessageLen is the Telegram sendMessage length cap
const MaxMessageLen = 4096

// Sender delivers one outbound message to a chat
type Sender interface {
	Send(ctx context.Context, chatID string, text string) error
}

// BotSender sends through the Telegram Bot API with HTML formatting
type BotSender struct {
	bot *bot.Bot
}

func NewBotSender(b *bot.Bot) *BotSender {
	return &BotSender{bot: b}
}

func (s *BotSender) Send(ctx context.Context, chatID string, text string) error {
	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{
			IsDisabled: bot.True(),
		},
	})
	if err != nil {
		return oops.With("chat_id", chatID).Wrap(err)
	}
	return nil
}

// Failure records one outbound message that could not be delivered
type Failure struct {
	ChannelID int64
	Err       error
}

// Result aggregates the outcome of a repost run
type Result struct {
	Sent     int
	Failed   int
	Failures []Failure
}

// Reposter sends condensed channel summaries to a destination chat. Texts
// over the platform length cap are split into sequential messages rather
// than truncated, so nothing is lost in the destination channel.
type Reposter struct {
	sender Sender
	chatID string
}

func NewReposter(sender Sender, chatID string) *Reposter {
	return &Reposter{sender: sender, chatID: chatID}
}

// Repost sends one message (or several, after splitting) per channel entry.
// Each send is independent: a failure is recorded and the rest proceed.
func (r *Reposter) Repost(ctx context.Context, d *digest.Digest) Result {
	var result Result

	if d.MessageCount() == 0 && d.FailedChannels() == 0 {
		if err := r.sender.Send(ctx, r.chatID, "📭 No unread channel messages."); err != nil {
			slog.Error("Failed to send empty-digest notice", "error", err)
			result.Failed++
			result.Failures = append(result.Failures, Failure{Err: err})
		} else {
			result.Sent++
		}
		return result
	}

	for _, entry := range d.Channels {
		if entry.Err != "" {
			continue
		}
		text := buildChannelMessage(entry)
		for _, chunk := range splitMessage(text, MaxMessageLen) {
			if err := r.sender.Send(ctx, r.chatID, chunk); err != nil {
				slog.Error("Failed to repost digest chunk", "channel", entry.Channel.Name, "error", err)
				result.Failed++
				result.Failures = append(result.Failures, Failure{ChannelID: entry.Channel.ID, Err: err})
				continue
			}
			result.Sent++
		}
	}

	slog.Info("Repost finished", "sent", result.Sent, "failed", result.Failed)
	return result
}

// buildChannelMessage renders one channel's summaries with HTML formatting
func buildChannelMessage(entry digest.ChannelEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🧾 <b>Unread digest</b>\n")
	fmt.Fprintf(&b, "📌 <b>%s</b>\n", html.EscapeString(entry.Channel.Name))
	for i, item := range entry.Items {
		fmt.Fprintf(&b, "%d) %s\n", i+1, html.EscapeString(item.Summary.Text))
		fmt.Fprintf(&b, "🔗 <a href=\"%s\">original</a>\n", item.Message.Link)
	}
	return strings.TrimRight(b.String(), "\n")
}

// splitMessage cuts text into chunks of at most limit runes, preferring
// newline boundaries so formatting survives the split.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= limit {
			chunks = append(chunks, string(runes))
			break
		}
		cut := limit
		for i := limit - 1; i > limit/2; i-- {
			if runes[i] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
		for len(runes) > 0 && runes[0] == '\n' {
			runes = runes[1:]
		}
	}
	return chunks
}
