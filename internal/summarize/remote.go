package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samber/oops"
)

const (
	systemPrompt = "You are a newsletter editor condensing Telegram channel posts."
	userPrompt   = "Summarize the following Telegram message in 2-3 short bullet points. " +
		"Lead with figures, dates, and calls to action. Keep it under 400 characters.\n\nMessage:\n%s"
)

// Remote summarizes text through an OpenAI-compatible chat completions
// endpoint. Any transport, status, or payload problem is returned as an
// error; the caller decides whether to fall back.
type Remote struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewRemote(apiKey, baseURL, model string) *Remote {
	return &Remote{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (r *Remote) Summarize(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: r.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(userPrompt, text)},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", oops.With("context", "marshaling chat request").Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", oops.With("context", "building chat request").Wrap(err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", oops.With("base_url", r.baseURL).Wrap(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", oops.With("context", "reading chat response").Wrap(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", oops.With("status", resp.StatusCode).Errorf("chat completions returned %s", resp.Status)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", oops.With("context", "decoding chat response").Wrap(err)
	}
	if parsed.Error != nil {
		return "", oops.With("type", parsed.Error.Type).Errorf("chat completions error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", oops.Errorf("chat completions returned no choices")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
