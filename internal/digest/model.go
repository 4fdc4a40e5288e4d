package digest

import (
	"fmt"
	"strings"
	"time"
)

// Visibility represents how a Telegram channel is exposed
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Strategy represents which summarization path produced a summary
type Strategy string

const (
	StrategyRemote Strategy = "remote"
	StrategyLocal  Strategy = "local"
)

// Channel is a snapshot of a subscribed channel with unread messages
type Channel struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Username    string     `json:"username"`
	Visibility  Visibility `json:"visibility"`
	UnreadCount int        `json:"unread_count"`
}

// Message is one unread channel message
type Message struct {
	ID        int64     `json:"id"`
	ChannelID int64     `json:"channel_id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	Date      time.Time `json:"date"`
	Link      string    `json:"link"`
}

// Summary is the condensed form of a message
type Summary struct {
	Text     string   `json:"text"`
	Strategy Strategy `json:"strategy"`
}

// Item pairs a message with its summary
type Item struct {
	Message Message `json:"message"`
	Summary Summary `json:"summary"`
}

// ChannelEntry holds one channel's items in fetch order. Err is set when
// ingestion for the channel failed; Items is empty in that case.
type ChannelEntry struct {
	Channel Channel `json:"channel"`
	Items   []Item  `json:"items"`
	Err     string  `json:"error,omitempty"`
}

// Digest is the complete in-memory aggregate for one run. Channel and
// message order matches the order the source produced them.
type Digest struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Channels    []ChannelEntry `json:"channels"`
}

// MessageCount returns the total number of summarized messages
func (d *Digest) MessageCount() int {
	total := 0
	for _, entry := range d.Channels {
		total += len(entry.Items)
	}
	return total
}

// FailedChannels returns how many channels failed ingestion
func (d *Digest) FailedChannels() int {
	failed := 0
	for _, entry := range d.Channels {
		if entry.Err != "" {
			failed++
		}
	}
	return failed
}

// NewMessage builds a message with its link derived from the channel.
// Link construction is pure; no network access is needed.
func NewMessage(ch Channel, id int64, text, sender string, date time.Time) Message {
	return Message{
		ID:        id,
		ChannelID: ch.ID,
		Text:      text,
		Sender:    sender,
		Date:      date,
		Link:      BuildMessageLink(ch, id),
	}
}

// BuildMessageLink returns the t.me URL for a message. Public channels use
// the username form; private channels use the /c/ form with the internal
// numeric id (the Bot API -100 prefix stripped when present).
func BuildMessageLink(ch Channel, messageID int64) string {
	if ch.Visibility == VisibilityPublic && ch.Username != "" {
		return fmt.Sprintf("https://t.me/%s/%d", ch.Username, messageID)
	}
	return fmt.Sprintf("https://t.me/c/%s/%d", internalChannelID(ch.ID), messageID)
}

func internalChannelID(id int64) string {
	if id < 0 {
		id = -id
	}
	s := fmt.Sprintf("%d", id)
	// Channel peers arrive as -100<id> from some APIs; the link wants the
	// bare internal id.
	if strings.HasPrefix(s, "100") && len(s) > 3 {
		return s[3:]
	}
	return s
}
