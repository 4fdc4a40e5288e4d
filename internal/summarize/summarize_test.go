package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/okatyev/tg-digest/internal/digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStrategy struct{}

func (failingStrategy) Summarize(_ context.Context, _ string) (string, error) {
	return "", fmt.Errorf("remote unavailable")
}

type fixedStrategy struct{ out string }

func (f fixedStrategy) Summarize(_ context.Context, _ string) (string, error) {
	return f.out, nil
}

func TestSummarizeEmptyTextReturnsPlaceholder(t *testing.T) {
	s := New(nil, nil)

	for _, text := range []string{"", "   ", "\n\t "} {
		got := s.Summarize(context.Background(), text)
		assert.Equal(t, Placeholder, got.Text)
		assert.Equal(t, digest.StrategyLocal, got.Strategy)
	}
}

func TestSummarizeFallsBackWhenRemoteFails(t *testing.T) {
	s := New(failingStrategy{}, nil)

	got := s.Summarize(context.Background(), "The release ships on Friday and includes the new archive format.")

	assert.NotEmpty(t, got.Text)
	assert.Equal(t, digest.StrategyLocal, got.Strategy)
}

func TestSummarizeUsesRemoteWhenAvailable(t *testing.T) {
	s := New(fixedStrategy{out: "• remote summary"}, nil)

	got := s.Summarize(context.Background(), "some message text worth summarizing")

	assert.Equal(t, "• remote summary", got.Text)
	assert.Equal(t, digest.StrategyRemote, got.Strategy)
}

func TestSummarizeFallsBackOnBlankRemoteAnswer(t *testing.T) {
	var buf strings.Builder
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	s := New(fixedStrategy{out: "   "}, nil)

	got := s.Summarize(context.Background(), "a message the remote model answered with whitespace")

	assert.Equal(t, digest.StrategyLocal, got.Strategy)
	assert.NotEmpty(t, got.Text)
	// A blank answer is logged as such, not as a nil failure
	assert.Contains(t, buf.String(), "empty answer")
	assert.NotContains(t, buf.String(), "error=")
}

func TestLocalSummarizeSelectsSentences(t *testing.T) {
	l := NewLocal()

	text := "The deployment finished without incident. The database migration took twenty minutes in total. Rollback plans were reviewed with the on-call team. A fourth substantial sentence that should not appear in the output anymore."
	got, err := l.Summarize(context.Background(), text)
	require.NoError(t, err)

	lines := strings.Split(got, "\n")
	assert.Len(t, lines, 3)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "• "), "line %q should be a bullet", line)
	}
	assert.NotContains(t, got, "fourth substantial")
}

func TestLocalSummarizeBoundsUnstructuredText(t *testing.T) {
	l := NewLocal()

	long := strings.Repeat("x", 500)
	got, err := l.Summarize(context.Background(), long)
	require.NoError(t, err)

	assert.NotEmpty(t, got)
	assert.LessOrEqual(t, len([]rune(got)), maxSentenceLen+5)
}

func TestLocalSummarizeIsDeterministic(t *testing.T) {
	l := NewLocal()
	text := "First important update about the schedule. Second note covering the budget numbers in detail."

	a, _ := l.Summarize(context.Background(), text)
	b, _ := l.Summarize(context.Background(), text)

	assert.Equal(t, a, b)
}

func TestNormalizeTextCollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", normalizeText("  a\n\nb\t c "))
	assert.Equal(t, "", normalizeText(" \n\t"))
}
