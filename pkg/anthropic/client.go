package anthropic

import (
	"context"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/adaian/adreport-cli/internal/resilience"
)

const (
	defaultModel     = "claude-sonnet-4-5-20250929"
	defaultMaxTokens = 8192
)

// Client performs structured-output generation against the Anthropic API.
// It is the alternate report generator behind the same interface as the
// Gemini client.
type Client interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Option configures the client.
type Option func(*sdkClient)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *sdkClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxTokens overrides the response token budget.
func WithMaxTokens(n int64) Option {
	return func(c *sdkClient) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithLimiter applies a client-side rate limiter ahead of every call.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *sdkClient) {
		c.limiter = l
	}
}

type sdkClient struct {
	client    sdk.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
}

// NewClient creates an Anthropic-backed generator.
func NewClient(apiKey string, opts ...Option) (Client, error) {
	if apiKey == "" {
		return nil, eris.New("anthropic: api key is required")
	}
	c := &sdkClient{
		client:    sdk.NewClient(option.WithAPIKey(apiKey)),
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// GenerateJSON sends the prompt as a single user message and returns the
// concatenated text response. Claude has no JSON response mode, so the
// prompt's RETURN JSON ONLY instruction carries the contract; the caller
// fence-strips and strictly decodes either way.
func (c *sdkClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "anthropic: rate limiter wait")
		}
	}

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", classify(err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", eris.New("anthropic: empty response")
	}
	return b.String(), nil
}

// classify maps Anthropic API failures onto the retry taxonomy. Anthropic
// signals saturation with 529 overloaded_error in addition to 503.
func classify(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429:
			return resilience.NewQuotaError(eris.Wrap(err, "anthropic: rate limited"), apiErr.StatusCode)
		case 500, 502, 503, 529:
			return resilience.NewTransientError(eris.Wrap(err, "anthropic: service overloaded"), apiErr.StatusCode)
		}
		return eris.Wrap(err, "anthropic: create message")
	}

	if strings.Contains(strings.ToLower(err.Error()), "overloaded") {
		return resilience.NewTransientError(eris.Wrap(err, "anthropic: service overloaded"), 529)
	}
	return eris.Wrap(err, "anthropic: create message")
}
