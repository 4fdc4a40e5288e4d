package summarize

import (
	"context"
	"regexp"
	"strings"
)

const (
	maxSentences    = 3
	minSentenceLen  = 15
	maxSentenceLen  = 220
	fallbackExcerpt = 240
)

// Local is a deterministic, offline summarization strategy. It selects up to
// three substantial sentences and renders them as bullets, falling back to a
// bounded excerpt when the text has no sentence structure.
type Local struct{}

func NewLocal() *Local {
	return &Local{}
}

var sentenceSplitRegex = regexp.MustCompile(`[.!?。！？]\s+|\n+`)

// Summarize never fails for the local strategy
func (l *Local) Summarize(_ context.Context, text string) (string, error) {
	var selected []string
	for _, chunk := range sentenceSplitRegex.Split(text, -1) {
		chunk = strings.TrimSpace(strings.Trim(chunk, " -•"))
		if len([]rune(chunk)) > minSentenceLen {
			selected = append(selected, chunk)
		}
		if len(selected) == maxSentences {
			break
		}
	}

	if len(selected) == 0 {
		selected = []string{truncateRunes(strings.TrimSpace(text), fallbackExcerpt)}
	}

	lines := make([]string, 0, len(selected))
	for _, s := range selected {
		lines = append(lines, "• "+truncateRunes(s, maxSentenceLen))
	}
	return strings.Join(lines, "\n"), nil
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
