// Package llm talks to an OpenRouter-style chat completion endpoint, falling
// back through an ordered list of candidate models until one answers.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mudler/xlog"
	"github.com/sashabaranov/go-openai"
)

// ErrNoAPIKey is returned when no provider credential is configured. No
// network call is attempted in that case.
var ErrNoAPIKey = errors.New("OPENROUTER_API_KEY is not configured")

// CompletionError means every candidate model was tried and none produced a
// usable reply. Only the last model's failure reason is kept.
type CompletionError struct {
	Reason string
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("all models failed. Last error: %s", e.Reason)
}

// Result is one successful completion: the reply text, the model that served
// it, and the provider's token accounting when present.
type Result struct {
	Content string
	Model   string
	Usage   openai.Usage
}

// DefaultModels is the fallback chain used when none is configured, in
// priority order.
var DefaultModels = []string{
	"meta-llama/llama-3.2-3b-instruct:free",
	"google/gemini-2.0-flash-exp:free",
	"mistralai/mistral-7b-instruct:free",
	"nousresearch/hermes-3-llama-3.1-405b:free",
	"qwen/qwen-2-7b-instruct:free",
}

const (
	defaultAPIURL  = "https://openrouter.ai/api/v1/chat/completions"
	defaultTimeout = 30 * time.Second

	// At most this many history entries (the most recent ones) go out with
	// each request. Older turns stay persisted but are not sent.
	historyWindow = 10

	temperature = 0.7
	maxTokens   = 1000
)

type Config struct {
	APIKey  string
	APIURL  string
	Models  []string
	Referer string // HTTP-Referer header sent to the provider
	Title   string // X-Title header sent to the provider
	Timeout time.Duration
}

type Gateway struct {
	cfg Config
	hc  *http.Client
}

func NewGateway(cfg Config) *Gateway {
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if len(cfg.Models) == 0 {
		cfg.Models = DefaultModels
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Gateway{
		cfg: cfg,
		hc:  &http.Client{Timeout: cfg.Timeout},
	}
}

// Complete sends the system prompt plus the last entries of history to each
// candidate model in order and returns the first well-formed reply. A failed
// model is not retried; its error is recorded and the next candidate is
// tried. When all candidates fail, the returned CompletionError carries the
// last model's failure reason.
func (g *Gateway) Complete(ctx context.Context, systemPrompt string, history []openai.ChatCompletionMessage) (*Result, error) {
	if g.cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	messages = append(messages, history...)

	var lastErr string
	for _, model := range g.cfg.Models {
		result, err := g.attempt(ctx, model, messages)
		if err != nil {
			lastErr = fmt.Sprintf("Model %s failed: %v", model, err)
			xlog.Warn("Completion attempt failed", "model", model, "error", err)
			continue
		}
		return result, nil
	}

	return nil, &CompletionError{Reason: lastErr}
}

func (g *Gateway) attempt(ctx context.Context, model string, messages []openai.ChatCompletionMessage) (*Result, error) {
	payload := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if g.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", g.cfg.Referer)
	}
	if g.cfg.Title != "" {
		req.Header.Set("X-Title", g.cfg.Title)
	}

	resp, err := g.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("(%d): %s", resp.StatusCode, providerErrorMessage(resp.Body))
	}

	var completion openai.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("no choices in response")
	}

	return &Result{
		Content: completion.Choices[0].Message.Content,
		Model:   model,
		Usage:   completion.Usage,
	}, nil
}

// providerErrorMessage pulls the human-readable message out of an error body,
// falling back to the raw body when it is not the usual JSON shape.
func providerErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(r)
	if err != nil || len(raw) == 0 {
		return "empty response body"
	}
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &parsed) == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return string(raw)
}
