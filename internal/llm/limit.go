package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// LimitedClient paces calls through a token bucket.
type LimitedClient struct {
	Inner   Client
	Limiter *rate.Limiter
}

// NewLimitedClient allows rpm requests per minute with bursts of burst.
// rpm <= 0 disables pacing and returns inner unchanged.
func NewLimitedClient(inner Client, rpm, burst int) Client {
	if rpm <= 0 {
		return inner
	}
	if burst < 1 {
		burst = 1
	}
	return &LimitedClient{Inner: inner, Limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)}
}

func (c *LimitedClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	return c.Inner.CreateChatCompletion(ctx, req)
}
