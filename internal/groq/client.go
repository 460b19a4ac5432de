// Package groq is a minimal client for OpenAI-compatible chat-completion
// endpoints (Groq by default).
//
// Key Responsibilities:
//   - POST one chat completion and return the first choice's text
//   - Surface upstream failures as *APIError with the HTTP status
//   - Record latency and outcome metrics; no automatic retries
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/VXerys/artconnect-crm-sub001/internal/observability"
)

// Defaults used when Config leaves a field empty.
const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.3-70b-versatile"
)

// Role is a chat message author.
type Role string

// Chat roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a chat conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Config configures a Client.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

// Client sends chat-completion requests.
type Client struct {
	apiKey      string
	endpoint    string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
	logger      *zap.Logger
}

// ErrEmptyChoices is returned when the upstream answered 2xx without choices.
var ErrEmptyChoices = errors.New("completion response contained no choices")

// APIError is a non-2xx response from the completion endpoint.
type APIError struct {
	StatusCode int
	Message    string
	Type       string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("completion request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("completion request failed with status %d: %s", e.StatusCode, e.Message)
}

// IsAuth reports whether the upstream rejected the credentials.
func (e *APIError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsAuthError reports whether err wraps an authentication APIError.
func IsAuthError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsAuth()
}

// NewClient creates a completion client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Client{
		apiKey:      cfg.APIKey,
		endpoint:    strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  cfg.HTTPClient,
		logger:      cfg.Logger,
	}
}

// Model returns the model identifier sent with every request.
func (c *Client) Model() string {
	return c.model
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends messages and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	ctx, span := otel.Tracer("artconnect/groq").Start(ctx, "groq.complete")
	defer span.End()
	span.SetAttributes(attribute.String("ai.model", c.model), attribute.Int("ai.messages", len(messages)))

	start := time.Now()
	content, err := c.complete(ctx, messages)
	elapsed := time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = outcomeOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		c.logger.Warn("completion request failed",
			zap.String("model", c.model),
			zap.String("outcome", outcome),
			zap.Duration("latency", elapsed),
			zap.Error(err),
		)
	} else {
		c.logger.Debug("completion request completed",
			zap.String("model", c.model),
			zap.Duration("latency", elapsed),
			zap.Int("content_length", len(content)),
		)
	}
	observability.RecordCompletion(outcome, elapsed)

	return content, err
}

func (c *Client) complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var upstream errorResponse
		if json.Unmarshal(payload, &upstream) == nil && upstream.Error.Message != "" {
			apiErr.Message = upstream.Error.Message
			apiErr.Type = upstream.Error.Type
		} else {
			apiErr.Message = truncate(strings.TrimSpace(string(payload)), maxErrorMessage)
		}
		return "", apiErr
	}

	var decoded completionResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", ErrEmptyChoices
	}
	return decoded.Choices[0].Message.Content, nil
}

func outcomeOf(err error) string {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.IsAuth():
		return "auth_error"
	case errors.As(err, &apiErr):
		return "upstream_error"
	case errors.Is(err, ErrEmptyChoices):
		return "empty"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "network_error"
	}
}

// maxErrorMessage caps how many bytes of a plain upstream body are kept.
const maxErrorMessage = 512

// truncate shortens s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
