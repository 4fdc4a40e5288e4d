package summarize

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/okatyev/tg-digest/internal/digest"
)

// Placeholder is returned for messages with no usable text (media-only posts)
const Placeholder = "(no text)"

// Strategy turns message text into a short summary or fails
type Strategy interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Summarizer composes an optional remote strategy with a local fallback.
// It never fails: any remote error falls through to the local heuristic.
type Summarizer struct {
	remote Strategy
	local  Strategy
}

// New creates a summarizer. remote may be nil, in which case only the local
// heuristic is used.
func New(remote Strategy, local Strategy) *Summarizer {
	if local == nil {
		local = NewLocal()
	}
	return &Summarizer{remote: remote, local: local}
}

// Summarize produces a summary for text. Empty text yields the fixed
// placeholder tagged local.
func (s *Summarizer) Summarize(ctx context.Context, text string) digest.Summary {
	cleaned := normalizeText(text)
	if cleaned == "" {
		return digest.Summary{Text: Placeholder, Strategy: digest.StrategyLocal}
	}

	if s.remote != nil {
		summary, err := s.remote.Summarize(ctx, cleaned)
		switch {
		case err != nil:
			slog.Warn("Remote summary failed, using local fallback", "error", err)
		case strings.TrimSpace(summary) == "":
			slog.Warn("Remote summary returned an empty answer, using local fallback")
		default:
			return digest.Summary{Text: strings.TrimSpace(summary), Strategy: digest.StrategyRemote}
		}
	}

	summary, _ := s.local.Summarize(ctx, cleaned)
	return digest.Summary{Text: summary, Strategy: digest.StrategyLocal}
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

func normalizeText(text string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(text), " ")
}
