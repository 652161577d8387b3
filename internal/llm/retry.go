package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// ErrRateLimited is returned once all retries on HTTP 429 are spent.
var ErrRateLimited = errors.New("rate limited")

// Retry defaults: two retries, waiting 1s then 2s.
const (
	DefaultRetries   = 2
	DefaultBaseDelay = time.Second
)

// RetryClient retries rate-limited calls with a doubling delay. Other
// errors are returned immediately.
type RetryClient struct {
	Inner Client
	// Retries is the number of attempts after the first. Negative means none.
	Retries int
	// BaseDelay is the wait before the first retry; each later wait doubles.
	BaseDelay time.Duration
	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryClient wraps inner with the default retry policy.
func NewRetryClient(inner Client) *RetryClient {
	return &RetryClient{Inner: inner, Retries: DefaultRetries, BaseDelay: DefaultBaseDelay}
}

func (c *RetryClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	sleep := c.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	delay := c.BaseDelay
	for attempt := 0; ; attempt++ {
		resp, err := c.Inner.CreateChatCompletion(ctx, req)
		if err == nil || StatusCode(err) != http.StatusTooManyRequests {
			return resp, err
		}
		if attempt >= c.Retries {
			return resp, fmt.Errorf("%w after %d attempts: %w", ErrRateLimited, attempt+1, err)
		}
		log.Warn().Int("attempt", attempt+1).Dur("delay", delay).Msg("llm rate limited, backing off")
		if err := sleep(ctx, delay); err != nil {
			return openai.ChatCompletionResponse{}, err
		}
		delay *= 2
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
