package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type scriptedClient struct {
	errs  []error
	calls int
}

func (s *scriptedClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return openai.ChatCompletionResponse{}, s.errs[i]
	}
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "ok"}}}}, nil
}

func tooMany() error { return &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "slow down"} }

func recordSleeps(dst *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*dst = append(*dst, d)
		return nil
	}
}

func TestRetryClient_DoublesDelayOn429(t *testing.T) {
	inner := &scriptedClient{errs: []error{tooMany(), tooMany()}}
	var slept []time.Duration
	c := &RetryClient{Inner: inner, Retries: 2, BaseDelay: 100 * time.Millisecond, Sleep: recordSleeps(&slept)}
	resp, err := c.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Choices[0].Message.Content != "ok" || inner.calls != 3 {
		t.Fatalf("calls=%d resp=%+v", inner.calls, resp)
	}
	if len(slept) != 2 || slept[0] != 100*time.Millisecond || slept[1] != 200*time.Millisecond {
		t.Fatalf("sleeps: %v", slept)
	}
}

func TestRetryClient_GivesUpAfterRetries(t *testing.T) {
	inner := &scriptedClient{errs: []error{tooMany(), tooMany(), tooMany(), tooMany()}}
	var slept []time.Duration
	c := &RetryClient{Inner: inner, Retries: 2, BaseDelay: time.Millisecond, Sleep: recordSleeps(&slept)}
	_, err := c.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}
	if StatusCode(err) != http.StatusTooManyRequests {
		t.Fatalf("underlying error lost: %v", err)
	}
	if inner.calls != 3 || len(slept) != 2 {
		t.Fatalf("calls=%d sleeps=%d", inner.calls, len(slept))
	}
}

func TestRetryClient_OtherErrorsNotRetried(t *testing.T) {
	boom := &openai.APIError{HTTPStatusCode: http.StatusInternalServerError}
	inner := &scriptedClient{errs: []error{boom}}
	var slept []time.Duration
	c := &RetryClient{Inner: inner, Retries: 2, BaseDelay: time.Millisecond, Sleep: recordSleeps(&slept)}
	if _, err := c.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{}); err == nil {
		t.Fatalf("expected error")
	}
	if inner.calls != 1 || len(slept) != 0 {
		t.Fatalf("calls=%d sleeps=%d", inner.calls, len(slept))
	}
}

func TestRetryClient_ContextCancelledDuringBackoff(t *testing.T) {
	inner := &scriptedClient{errs: []error{tooMany()}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &RetryClient{Inner: inner, Retries: 2, BaseDelay: time.Hour}
	if _, err := c.CreateChatCompletion(ctx, openai.ChatCompletionRequest{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestOpenAIProvider_RateLimitedOverHTTP(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"quota","type":"rate_limit"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"RISK SCORE: 3"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider(srv.URL+"/v1", "test-key")
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	var slept []time.Duration
	c := &RetryClient{Inner: p, Retries: 2, BaseDelay: time.Millisecond, Sleep: recordSleeps(&slept)}
	resp, err := c.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{Model: "m"})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if resp.Choices[0].Message.Content != "RISK SCORE: 3" || len(slept) != 1 {
		t.Fatalf("content=%q sleeps=%d", resp.Choices[0].Message.Content, len(slept))
	}
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider("", " "); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("want ErrNotConfigured, got %v", err)
	}
}

func TestNewLimitedClient(t *testing.T) {
	inner := &scriptedClient{}
	if c := NewLimitedClient(inner, 0, 1); c != Client(inner) {
		t.Fatalf("rpm 0 should return inner")
	}
	c := NewLimitedClient(inner, 600, 2)
	for i := 0; i < 2; i++ {
		if _, err := c.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{}); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if inner.calls != 2 {
		t.Fatalf("calls: %d", inner.calls)
	}
}
