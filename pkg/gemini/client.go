package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/adaian/adreport-cli/internal/resilience"
)

const defaultModel = "gemini-2.5-flash"

// Client performs structured-output generation against the Gemini API.
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

// WithLimiter applies a client-side rate limiter ahead of every call.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *sdkClient) {
		c.limiter = l
	}
}

type sdkClient struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
}

// NewClient creates a Gemini client. The handle is explicit and passed by
// reference into the assembler; there is no package-level singleton.
func NewClient(ctx context.Context, apiKey string, opts ...Option) (Client, error) {
	if apiKey == "" {
		return nil, eris.New("gemini: api key is required")
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}

	c := &sdkClient{client: gc, model: defaultModel}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// GenerateJSON sends one generateContent request in JSON response mode and
// returns the raw response text. Errors come back classified: overload as
// transient, quota exhaustion as quota, everything else wrapped unchanged.
func (c *sdkClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "gemini: rate limiter wait")
		}
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(float32(0.2)),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", classify(err)
	}

	text := result.Text()
	if text == "" {
		return "", eris.New("gemini: empty response")
	}
	return text, nil
}

// classify maps Gemini API failures onto the retry taxonomy. 503/UNAVAILABLE
// and "overloaded" messages are transient and retried; 429/RESOURCE_EXHAUSTED
// is quota and never retried.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429 || apiErr.Status == "RESOURCE_EXHAUSTED":
			return resilience.NewQuotaError(eris.Wrap(err, "gemini: quota exhausted"), apiErr.Code)
		case apiErr.Code == 503 || apiErr.Status == "UNAVAILABLE":
			return resilience.NewTransientError(eris.Wrap(err, "gemini: service unavailable"), apiErr.Code)
		case apiErr.Code >= 500:
			return resilience.NewTransientError(eris.Wrap(err, "gemini: server error"), apiErr.Code)
		}
		return eris.Wrap(err, "gemini: generate content")
	}

	if strings.Contains(strings.ToLower(err.Error()), "overloaded") {
		return resilience.NewTransientError(eris.Wrap(err, "gemini: model overloaded"), 503)
	}
	return eris.Wrap(err, "gemini: generate content")
}
