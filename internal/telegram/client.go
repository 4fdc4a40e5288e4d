package telegram

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gotd/td/session"
	tgclient "github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/okatyev/tg-digest/internal/config"
	"github.com/okatyev/tg-digest/internal/digest"
	"github.com/samber/oops"
)

const dialogPageSize = 100

// Client owns the MTProto user session. The session file is created on
// first login (terminal code prompt) and reused afterwards.
type Client struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Client {
	return &Client{cfg: cfg}
}

// Run connects, authorizes if necessary, and hands a connected source to fn.
// The connection is held open for the duration of fn.
func (c *Client) Run(ctx context.Context, fn func(ctx context.Context, src digest.Source) error) error {
	client := tgclient.NewClient(c.cfg.TGAPIID, c.cfg.TGAPIHash, tgclient.Options{
		SessionStorage: &session.FileStorage{Path: c.cfg.TGSession},
	})

	return client.Run(ctx, func(ctx context.Context) error {
		flow := auth.NewFlow(
			authenticator{phone: c.cfg.TGPhone, password: c.cfg.TG2FAPassword, input: os.Stdin},
			auth.SendCodeOptions{},
		)
		if err := client.Auth().IfNecessary(ctx, flow); err != nil {
			return oops.With("context", "telegram authorization").Wrap(err)
		}
		return fn(ctx, &source{api: client.API(), accessHash: make(map[int64]int64)})
	})
}

// authenticator answers the login flow from config, prompting on the
// terminal for anything not configured (the code always, the 2FA password
// when tg_2fa_password is unset).
type authenticator struct {
	phone    string
	password string
	input    io.Reader
}

func (a authenticator) Phone(_ context.Context) (string, error) {
	if a.phone == "" {
		return a.prompt("Phone number: ")
	}
	return a.phone, nil
}

func (a authenticator) Password(_ context.Context) (string, error) {
	if a.password != "" {
		return a.password, nil
	}
	return a.prompt("2FA password: ")
}

func (a authenticator) Code(_ context.Context, _ *tg.AuthSentCode) (string, error) {
	return a.prompt("Telegram login code: ")
}

func (a authenticator) AcceptTermsOfService(_ context.Context, _ tg.HelpTermsOfService) error {
	return nil
}

func (a authenticator) SignUp(_ context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, oops.Errorf("signing up new accounts is not supported")
}

func (a authenticator) prompt(label string) (string, error) {
	fmt.Print(label)
	line, err := bufio.NewReader(a.input).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// rawAPI is the slice of tg.Client the source needs
type rawAPI interface {
	MessagesGetDialogs(ctx context.Context, request *tg.MessagesGetDialogsRequest) (tg.MessagesDialogsClass, error)
	MessagesGetHistory(ctx context.Context, request *tg.MessagesGetHistoryRequest) (tg.MessagesMessagesClass, error)
}

// source implements digest.Source over the raw MTProto API
type source struct {
	api        rawAPI
	accessHash map[int64]int64
}

// dialogsOffset carries the getDialogs pagination cursor
type dialogsOffset struct {
	date int
	id   int
	peer tg.InputPeerClass
}

func (s *source) ListChannelsWithUnread(ctx context.Context) ([]digest.Channel, error) {
	var channels []digest.Channel
	offset := dialogsOffset{peer: &tg.InputPeerEmpty{}}

	for {
		res, err := s.api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
			OffsetDate: offset.date,
			OffsetID:   offset.id,
			OffsetPeer: offset.peer,
			Limit:      dialogPageSize,
		})
		if err != nil {
			return nil, oops.With("context", "fetching dialogs").Wrap(err)
		}

		switch d := res.(type) {
		case *tg.MessagesDialogs:
			// Complete set, nothing left to page through
			return append(channels, s.channelsWithUnread(d.Dialogs, d.Chats)...), nil
		case *tg.MessagesDialogsSlice:
			channels = append(channels, s.channelsWithUnread(d.Dialogs, d.Chats)...)
			if len(d.Dialogs) < dialogPageSize {
				return channels, nil
			}
			next, ok := nextDialogsOffset(d.Dialogs, d.Messages, d.Chats, d.Users)
			if !ok || (next.date == offset.date && next.id == offset.id) {
				return channels, nil
			}
			offset = next
		default:
			return nil, oops.Errorf("unexpected dialogs response: %T", res)
		}
	}
}

// channelsWithUnread keeps channel dialogs with unread messages, in dialog
// order, and remembers their access hashes for the history fetch.
func (s *source) channelsWithUnread(dialogs []tg.DialogClass, chats []tg.ChatClass) []digest.Channel {
	byID := make(map[int64]*tg.Channel)
	for _, chat := range chats {
		if ch, ok := chat.(*tg.Channel); ok {
			byID[ch.ID] = ch
		}
	}

	var channels []digest.Channel
	for _, dc := range dialogs {
		dialog, ok := dc.(*tg.Dialog)
		if !ok || dialog.UnreadCount <= 0 {
			continue
		}
		peer, ok := dialog.Peer.(*tg.PeerChannel)
		if !ok {
			continue
		}
		ch, ok := byID[peer.ChannelID]
		if !ok {
			continue
		}

		if hash, ok := ch.GetAccessHash(); ok {
			s.accessHash[ch.ID] = hash
		}

		visibility := digest.VisibilityPrivate
		if ch.Username != "" {
			visibility = digest.VisibilityPublic
		}
		channels = append(channels, digest.Channel{
			ID:          ch.ID,
			Name:        ch.Title,
			Username:    ch.Username,
			Visibility:  visibility,
			UnreadCount: dialog.UnreadCount,
		})
	}
	return channels
}

// nextDialogsOffset derives the cursor for the following getDialogs page
// from the last dialog of the current one: its top message's date and id,
// and its peer resolved to an input peer.
func nextDialogsOffset(dialogs []tg.DialogClass, messages []tg.MessageClass, chats []tg.ChatClass, users []tg.UserClass) (dialogsOffset, bool) {
	if len(dialogs) == 0 {
		return dialogsOffset{}, false
	}
	last, ok := dialogs[len(dialogs)-1].(*tg.Dialog)
	if !ok {
		return dialogsOffset{}, false
	}

	peer := inputPeer(last.Peer, chats, users)
	if peer == nil {
		return dialogsOffset{}, false
	}

	date := topMessageDate(messages, last.TopMessage, last.Peer)
	if date == 0 {
		return dialogsOffset{}, false
	}
	return dialogsOffset{date: date, id: last.TopMessage, peer: peer}, true
}

func topMessageDate(messages []tg.MessageClass, id int, peer tg.PeerClass) int {
	for _, m := range messages {
		switch msg := m.(type) {
		case *tg.Message:
			if msg.ID == id && samePeer(msg.PeerID, peer) {
				return msg.Date
			}
		case *tg.MessageService:
			if msg.ID == id && samePeer(msg.PeerID, peer) {
				return msg.Date
			}
		}
	}
	return 0
}

func samePeer(a, b tg.PeerClass) bool {
	switch ap := a.(type) {
	case *tg.PeerChannel:
		bp, ok := b.(*tg.PeerChannel)
		return ok && ap.ChannelID == bp.ChannelID
	case *tg.PeerChat:
		bp, ok := b.(*tg.PeerChat)
		return ok && ap.ChatID == bp.ChatID
	case *tg.PeerUser:
		bp, ok := b.(*tg.PeerUser)
		return ok && ap.UserID == bp.UserID
	}
	return false
}

func inputPeer(peer tg.PeerClass, chats []tg.ChatClass, users []tg.UserClass) tg.InputPeerClass {
	switch p := peer.(type) {
	case *tg.PeerChannel:
		for _, c := range chats {
			if ch, ok := c.(*tg.Channel); ok && ch.ID == p.ChannelID {
				hash, _ := ch.GetAccessHash()
				return &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: hash}
			}
		}
	case *tg.PeerChat:
		return &tg.InputPeerChat{ChatID: p.ChatID}
	case *tg.PeerUser:
		for _, u := range users {
			if usr, ok := u.(*tg.User); ok && usr.ID == p.UserID {
				hash, _ := usr.GetAccessHash()
				return &tg.InputPeerUser{UserID: usr.ID, AccessHash: hash}
			}
		}
	}
	return nil
}

func (s *source) FetchUnread(ctx context.Context, ch digest.Channel, limit int) ([]digest.Message, error) {
	count := ch.UnreadCount
	if limit > 0 && count > limit {
		count = limit
	}

	res, err := s.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: s.accessHash[ch.ID]},
		Limit: count,
	})
	if err != nil {
		return nil, oops.With("channel_id", ch.ID).Wrap(err)
	}

	var raw []tg.MessageClass
	switch h := res.(type) {
	case *tg.MessagesChannelMessages:
		raw = h.Messages
	case *tg.MessagesMessages:
		raw = h.Messages
	case *tg.MessagesMessagesSlice:
		raw = h.Messages
	default:
		return nil, oops.Errorf("unexpected history response: %T", res)
	}

	// History arrives newest first; the digest wants chronological order.
	var messages []digest.Message
	for i := len(raw) - 1; i >= 0; i-- {
		msg, ok := raw[i].(*tg.Message)
		if !ok {
			continue
		}
		messages = append(messages, digest.NewMessage(
			ch,
			int64(msg.ID),
			msg.Message,
			msg.PostAuthor,
			time.Unix(int64(msg.Date), 0),
		))
	}
	return messages, nil
}
