package digest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	channels []Channel
	messages map[int64][]Message
	failIDs  map[int64]bool
}

func (f *fakeSource) ListChannelsWithUnread(_ context.Context) ([]Channel, error) {
	return f.channels, nil
}

func (f *fakeSource) FetchUnread(_ context.Context, ch Channel, _ int) ([]Message, error) {
	if f.failIDs[ch.ID] {
		return nil, fmt.Errorf("flood wait")
	}
	return f.messages[ch.ID], nil
}

type echoSummarizer struct{}

func (echoSummarizer) Summarize(_ context.Context, text string) Summary {
	if text == "" {
		return Summary{Text: "(no text)", Strategy: StrategyLocal}
	}
	return Summary{Text: "sum:" + text, Strategy: StrategyLocal}
}

func newTestChannel(id int64, unread int) Channel {
	return Channel{
		ID:          id,
		Name:        fmt.Sprintf("channel-%d", id),
		Visibility:  VisibilityPrivate,
		UnreadCount: unread,
	}
}

func TestBuildSkipsChannelsWithoutUnread(t *testing.T) {
	src := &fakeSource{
		channels: []Channel{newTestChannel(1, 2), newTestChannel(2, 0)},
		messages: map[int64][]Message{
			1: {NewMessage(newTestChannel(1, 2), 10, "hello", "", time.Now())},
		},
	}

	a := NewAssembler(src, echoSummarizer{}, time.Second)
	d, err := a.Build(context.Background(), 50)
	require.NoError(t, err)

	require.Len(t, d.Channels, 1)
	assert.Equal(t, int64(1), d.Channels[0].Channel.ID)
}

func TestBuildIsolatesFailedChannels(t *testing.T) {
	ch1, ch2, ch3 := newTestChannel(1, 1), newTestChannel(2, 1), newTestChannel(3, 1)
	src := &fakeSource{
		channels: []Channel{ch1, ch2, ch3},
		messages: map[int64][]Message{
			1: {NewMessage(ch1, 10, "first", "", time.Now())},
			3: {NewMessage(ch3, 30, "third", "", time.Now())},
		},
		failIDs: map[int64]bool{2: true},
	}

	a := NewAssembler(src, echoSummarizer{}, time.Second)
	d, err := a.Build(context.Background(), 50)
	require.NoError(t, err)

	require.Len(t, d.Channels, 3)
	assert.Empty(t, d.Channels[0].Err)
	assert.Len(t, d.Channels[0].Items, 1)
	assert.Contains(t, d.Channels[1].Err, "flood wait")
	assert.Empty(t, d.Channels[1].Items)
	assert.Empty(t, d.Channels[2].Err)
	assert.Len(t, d.Channels[2].Items, 1)
	assert.Equal(t, 1, d.FailedChannels())
}

func TestBuildPreservesSourceOrder(t *testing.T) {
	ch := newTestChannel(7, 3)
	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	src := &fakeSource{
		channels: []Channel{ch},
		messages: map[int64][]Message{
			7: {
				NewMessage(ch, 101, "one", "", base),
				NewMessage(ch, 102, "two", "", base.Add(time.Minute)),
				NewMessage(ch, 103, "three", "", base.Add(2*time.Minute)),
			},
		},
	}

	a := NewAssembler(src, echoSummarizer{}, time.Second)
	d, err := a.Build(context.Background(), 50)
	require.NoError(t, err)

	require.Len(t, d.Channels[0].Items, 3)
	for i, wantID := range []int64{101, 102, 103} {
		assert.Equal(t, wantID, d.Channels[0].Items[i].Message.ID)
	}
}

func TestBuildSummarizesEmptyText(t *testing.T) {
	ch := newTestChannel(1, 2)
	src := &fakeSource{
		channels: []Channel{ch},
		messages: map[int64][]Message{
			1: {
				NewMessage(ch, 1, "a real announcement with some substance", "", time.Now()),
				NewMessage(ch, 2, "", "", time.Now()),
			},
		},
	}

	a := NewAssembler(src, echoSummarizer{}, time.Second)
	d, err := a.Build(context.Background(), 50)
	require.NoError(t, err)

	items := d.Channels[0].Items
	require.Len(t, items, 2)
	assert.NotEmpty(t, items[0].Summary.Text)
	assert.Equal(t, "(no text)", items[1].Summary.Text)
	assert.Equal(t, StrategyLocal, items[1].Summary.Strategy)
}
