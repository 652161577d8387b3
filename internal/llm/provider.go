package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL is Gemini's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// Client is the minimal interface the analyzer needs to call a chat model.
// It mirrors go-openai's CreateChatCompletion so that any OpenAI-compatible
// backend, or a test stub, can be plugged in.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ModelLister is an optional capability that allows listing available models.
type ModelLister interface {
	ListModels(ctx context.Context) (openai.ModelsList, error)
}

// ErrNotConfigured is returned when no API key or endpoint is available.
var ErrNotConfigured = errors.New("llm not configured")

// OpenAIProvider adapts *openai.Client to the Client/ModelLister interfaces.
type OpenAIProvider struct {
	Inner *openai.Client
}

// NewOpenAIProvider builds a provider for an OpenAI-compatible endpoint.
// An empty baseURL selects DefaultBaseURL.
func NewOpenAIProvider(baseURL, apiKey string) (*OpenAIProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(firstNonEmpty(baseURL, DefaultBaseURL), "/")
	return &OpenAIProvider{Inner: openai.NewClientWithConfig(cfg)}, nil
}

func (p *OpenAIProvider) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return p.Inner.CreateChatCompletion(ctx, request)
}

func (p *OpenAIProvider) ListModels(ctx context.Context) (openai.ModelsList, error) {
	return p.Inner.ListModels(ctx)
}

// StatusCode extracts the HTTP status from a go-openai error, or 0.
func StatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
