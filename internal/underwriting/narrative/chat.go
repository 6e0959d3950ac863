package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	commonhttp "underwriting-workers/internal/common/http"
)

var (
	ErrChatTimeout = errors.New("NARRATIVE_TIMEOUT")
	ErrChatFailed  = errors.New("NARRATIVE_CHAT_FAILED")
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatOptions struct {
	Temperature float64
	MaxTokens   int
}

// ChatClient is an opaque text-completion collaborator.
type ChatClient interface {
	Complete(ctx context.Context, messages []Message, opts ChatOptions) (string, error)
}

type ClientConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// OpenAIClient talks to any OpenAI-compatible /v1/chat/completions endpoint.
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	maxRetries int
	http       *commonhttp.Client
}

func NewOpenAIClient(cfg ClientConfig) *OpenAIClient {
	return &OpenAIClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		http:       commonhttp.NewClient(cfg.Timeout),
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete retries transport failures, 429 and 5xx with exponential backoff.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message, opts ChatOptions) (string, error) {
	body := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrChatTimeout, ctx.Err())
			}
		}

		var resp chatResponse
		err := c.http.PostJSON(ctx, c.baseURL+"/v1/chat/completions", headers, body, &resp)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("%w: empty choices in response", ErrChatFailed)
			}
			return resp.Choices[0].Message.Content, nil
		}

		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ErrChatTimeout, ctx.Err())
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return "", fmt.Errorf("%w: %v", ErrChatFailed, lastErr)
}

func retryable(err error) bool {
	var statusErr *commonhttp.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	return !errors.Is(err, commonhttp.ErrDecode)
}
