// Package openrouter provides the hardened client for the OpenRouter
// chat-completions API. It is domain-agnostic: it knows how to send one
// completion request, bound it with a deadline, and classify every
// failure into the application error taxonomy. Retry policy belongs to
// callers.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/healthymeal/v2/internal/ports/outbound"
	apperrors "github.com/healthymeal/v2/pkg/errors"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultTimeout = 60 * time.Second

	// maxErrorBodyLen caps how much of an upstream error body we carry
	// into error messages and logs.
	maxErrorBodyLen = 200
)

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the API base URL, primarily for tests
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout overrides the per-request deadline
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client talks to the OpenRouter chat-completions endpoint.
// It holds no mutable state beyond its immutable configuration and is
// safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new OpenRouter client. The API key must be
// non-empty; construction fails otherwise so a misconfigured process
// stops at startup rather than on the first user request.
func NewClient(apiKey string, logger *zap.Logger, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openrouter: API key is required")
	}

	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		timeout: defaultTimeout,
		logger:  logger.Named("openrouter"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return c, nil
}

// errorBody is the error envelope OpenRouter and OpenAI-compatible APIs
// return on failures.
type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// Complete sends one chat-completion request. The call is bound to the
// configured timeout and to the caller's context, whichever expires
// first. When the request asks for structured output, the response
// content is additionally checked to be syntactically valid JSON.
func (c *Client) Complete(ctx context.Context, req outbound.ChatCompletionRequest) (*outbound.ChatCompletionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.NewModelBadRequestError(fmt.Sprintf("failed to encode request: %v", err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewModelBadRequestError(fmt.Sprintf("failed to create request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.logger.Warn("Model service request timed out",
				zap.String("model", req.Model),
				zap.Duration("timeout", c.timeout),
			)
			return nil, apperrors.NewModelUnavailableError(
				fmt.Sprintf("request timeout after %s", c.timeout)).WithCause(err)
		}
		return nil, apperrors.NewModelUnavailableError(
			fmt.Sprintf("network error: %v", err)).WithCause(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewModelUnavailableError(
			fmt.Sprintf("failed to read response: %v", err)).WithCause(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.classifyError(resp.StatusCode, respBody)
	}

	var completion outbound.ChatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, apperrors.NewAIResponseInvalidError(
			fmt.Sprintf("failed to decode response body: %v", err)).WithCause(err)
	}

	if req.ResponseFormat != nil {
		content := completion.Content()
		if content == "" {
			return nil, apperrors.NewAIResponseInvalidError("model response is empty")
		}
		if !json.Valid([]byte(content)) {
			return nil, apperrors.NewAIResponseInvalidError(
				"model response content is not valid JSON")
		}
	}

	c.logger.Debug("Model service call completed",
		zap.String("model", req.Model),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("prompt_tokens", completion.Usage.PromptTokens),
		zap.Int("completion_tokens", completion.Usage.CompletionTokens),
	)

	return &completion, nil
}

// classifyError maps an HTTP failure status to the error taxonomy.
// 401 auth, 429 throttled and 400 malformed are checked before the
// generic upstream-unavailable classification.
func (c *Client) classifyError(status int, body []byte) error {
	message := extractErrorMessage(body)

	c.logger.Warn("Model service returned an error",
		zap.Int("status", status),
		zap.String("message", message),
	)

	switch status {
	case http.StatusUnauthorized:
		if message == "" {
			message = "invalid OpenRouter API key"
		}
		return apperrors.NewModelAuthError(message)
	case http.StatusTooManyRequests:
		if message == "" {
			message = "too many requests"
		}
		return apperrors.NewModelRateLimitError(message)
	case http.StatusBadRequest:
		if message == "" {
			message = "the request payload is invalid"
		}
		return apperrors.NewModelBadRequestError(message)
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		if message == "" {
			message = "the model provider is currently unavailable"
		}
		return apperrors.NewModelUnavailableError(message)
	default:
		return apperrors.NewModelUnavailableError(
			fmt.Sprintf("unexpected status %d: %s", status, message))
	}
}

// extractErrorMessage pulls a human-readable message out of an error
// body on a best-effort basis.
func extractErrorMessage(body []byte) string {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error.Message != "" {
			return truncate(parsed.Error.Message, maxErrorBodyLen)
		}
		if parsed.Message != "" {
			return truncate(parsed.Message, maxErrorBodyLen)
		}
	}
	return truncate(string(body), maxErrorBodyLen)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
