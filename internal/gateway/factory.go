package gateway

import (
	"context"
	"fmt"
	"strings"
)

type Options struct {
	Provider   string
	APIKey     string
	Model      string
	ImageModel string
	BaseURL    string
}

func New(ctx context.Context, opts Options) (Gateway, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "gemini"
	}

	switch provider {
	case "gemini":
		return NewGeminiGateway(ctx, opts.APIKey, opts.Model, opts.ImageModel)
	case "openai":
		return NewOpenAIGateway(opts.APIKey, opts.Model, opts.ImageModel, opts.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported gateway provider: %s", opts.Provider)
	}
}
