// Package llm provides the external translation capability used as a
// last-resort fallback for statements the rule engine cannot rewrite.
//
// The client speaks the OpenAI-compatible chat completions protocol, so
// any endpoint implementing that surface can serve as the translator.
// Responses are treated as opaque and non-deterministic; the caller
// decides whether to trust them.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode"
)

// ErrUnavailable signals that no translation capability is configured.
var ErrUnavailable = errors.New("llm translation unavailable")

// Translator converts one Oracle SQL statement into Spark SQL.
type Translator interface {
	Translate(ctx context.Context, sql, provider string) (string, error)
}

// Options configure the chat completions client.
type Options struct {
	BaseURL   string
	Model     string
	APIKeyEnv string
	Timeout   time.Duration
}

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	hc     *http.Client
	url    string
	apiKey string
	model  string
	logger *slog.Logger
}

var _ Translator = (*Client)(nil)

// NewClient builds the chat completions client. The API key is read from
// the configured environment variable; an empty key wraps ErrUnavailable
// so callers can degrade instead of failing.
func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com/v1"
	}
	if opts.Model == "" {
		opts.Model = "gpt-4o"
	}
	if opts.APIKeyEnv == "" {
		opts.APIKeyEnv = "OPENAI_API_KEY"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	key := os.Getenv(opts.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrUnavailable, opts.APIKeyEnv)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		hc:     &http.Client{Timeout: opts.Timeout},
		url:    strings.TrimRight(opts.BaseURL, "/") + "/chat/completions",
		apiKey: key,
		model:  opts.Model,
		logger: logger,
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Translate sends one statement for conversion and returns the bare SQL
// with any surrounding markdown fence stripped. Temperature is pinned to
// zero for repeatable output.
func (c *Client) Translate(ctx context.Context, sql, provider string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    buildMessages(sql, provider),
		Temperature: 0,
		TopP:        1,
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("requesting translation", slog.String("model", c.model), slog.String("provider", provider))
	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("call chat completions: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("chat completions status %d: %s", resp.StatusCode, strings.TrimSpace(string(slurp)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", errors.New("chat response carried no content")
	}
	return StripFences(parsed.Choices[0].Message.Content), nil
}

// StripFences removes a surrounding markdown code fence and its language
// tag from a model response. Models are told not to fence their output,
// but some do anyway.
func StripFences(content string) string {
	if strings.HasPrefix(content, "```") {
		content = strings.Trim(strings.TrimSpace(content), "`")
		if first, rest, found := strings.Cut(content, "\n"); found && isAlphaWord(strings.TrimSpace(first)) {
			content = rest
		}
	}
	return strings.TrimSpace(content)
}

// isAlphaWord reports whether s is non-empty and all letters, the shape
// of a fence language tag like sql.
func isAlphaWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
