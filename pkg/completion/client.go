// Package completion sends transcripts to an OpenAI-compatible chat-completion endpoint.
package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/minhyannv/chat-assistant-go/pkg/chat"
	configpkg "github.com/minhyannv/chat-assistant-go/pkg/config"
	loggerpkg "github.com/minhyannv/chat-assistant-go/pkg/logger"
)

// ErrEmptyChoices is returned when the endpoint answers without any choice.
var ErrEmptyChoices = errors.New("empty completion choices")

// APIError is a non-2xx answer from the completion endpoint.
type APIError struct {
	StatusCode int
	Message    string
	err        error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("completion request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("completion request failed with status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.err }

// Client implements chat.Completer. A fresh API client is built for every
// request and no retries are attempted.
type Client struct {
	creds       configpkg.Credentials
	model       string
	temperature float64
	maxTokens   int64
	httpClient  *http.Client

	logger  loggerpkg.Logger
	verbose bool
}

var _ chat.Completer = (*Client)(nil)

// New builds a completion client from resolved configuration.
func New(cfg configpkg.Config, opts ...Option) (*Client, error) {
	cfg = configpkg.Normalize(cfg)
	if err := cfg.Credentials.Validate(); err != nil {
		return nil, err
	}
	deps := clientDeps{logger: loggerpkg.NopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}
	loggerpkg.Debug(cfg.Verbose, deps.logger, "completion client init", map[string]any{
		"model":       cfg.Model,
		"temperature": cfg.Temperature,
		"max_tokens":  cfg.MaxTokens,
		"base_url":    cfg.Credentials.BaseURL,
		"api_key":     loggerpkg.MaskSecret(cfg.Credentials.APIKey),
	})
	return &Client{
		creds:       cfg.Credentials,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  deps.httpClient,
		logger:      deps.logger,
		verbose:     cfg.Verbose,
	}, nil
}

// Model returns the model identifier sent with each request.
func (c *Client) Model() string { return c.model }

func (c *Client) newAPIClient() openai.Client {
	opts := []option.RequestOption{
		option.WithBaseURL(c.creds.BaseURL),
		option.WithAPIKey(c.creds.APIKey),
		option.WithMaxRetries(0),
	}
	if c.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(c.httpClient))
	}
	return openai.NewClient(opts...)
}

// Params builds the request parameters replaying turns verbatim.
func (c *Client) Params(turns []chat.Turn) (openai.ChatCompletionNewParams, error) {
	messages, err := toMessages(turns)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}
	return openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(c.maxTokens),
	}, nil
}

// Complete sends one completion request and returns the first choice's text.
func (c *Client) Complete(ctx context.Context, turns []chat.Turn) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	params, err := c.Params(turns)
	if err != nil {
		return "", err
	}

	loggerpkg.Debug(c.verbose, c.logger, "sending chat completion request", map[string]any{
		"messages": len(turns),
		"model":    c.model,
	})
	client := c.newAPIClient()
	completion, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", translateError(err)
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyChoices
	}
	loggerpkg.Debug(c.verbose, c.logger, "chat completion received", map[string]any{
		"choices":       len(completion.Choices),
		"finish_reason": completion.Choices[0].FinishReason,
		"bytes":         len(completion.Choices[0].Message.Content),
	})
	return completion.Choices[0].Message.Content, nil
}

func toMessages(turns []chat.Turn) ([]openai.ChatCompletionMessageParamUnion, error) {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for i, turn := range turns {
		switch turn.Role {
		case chat.RoleUser:
			out = append(out, openai.UserMessage(turn.Content))
		case chat.RoleAssistant:
			out = append(out, openai.AssistantMessage(turn.Content))
		default:
			return nil, fmt.Errorf("invalid role %q at message %d", turn.Role, i)
		}
	}
	return out, nil
}

func translateError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &APIError{
			StatusCode: apiErr.StatusCode,
			Message:    strings.TrimSpace(apiErr.Message),
			err:        err,
		}
	}
	return err
}
