// Package fetch downloads a document to analyse from an http(s) URL, such as
// a published terms of service or privacy policy.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/doclens/internal/extract"
)

// DefaultUserAgent identifies doclens to the servers it fetches from.
const DefaultUserAgent = "doclens/1.0 (+https://github.com/hyperifyio/doclens)"

// ErrUnsupportedContent is returned for responses that are not HTML or text.
var ErrUnsupportedContent = errors.New("unsupported content type")

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("unexpected status: %d", e.Code) }

// Client wraps http.Client with per-request timeouts, bounded redirects and
// limited retry on transient errors.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each request.
	PerRequestTimeout time.Duration
	// RedirectMaxHops caps redirect following. Zero means 5.
	RedirectMaxHops int
	// MaxBytes caps the body size. Zero means extract.MaxBytes.
	MaxBytes int64
}

// IsURL reports whether s is an absolute http or https URL.
func IsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	return err == nil && isHTTPScheme(u) && u.Host != ""
}

// Document downloads rawURL and extracts its text.
func (c *Client) Document(ctx context.Context, rawURL string) (extract.Document, error) {
	body, ct, err := c.Get(ctx, rawURL)
	if err != nil {
		return extract.Document{}, err
	}
	ext := ".txt"
	if isHTML(ct) {
		ext = ".html"
	}
	doc := extract.FromBytes(body, ext)
	doc.Name = rawURL
	return doc, nil
}

// Get issues a GET and returns the body and its content type.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		body, ct, err := c.tryOnce(ctx, rawURL)
		if err == nil {
			return body, ct, nil
		}
		lastErr = err
		if !isTransient(err) || i == attempts-1 {
			break
		}
		log.Debug().Err(err).Str("url", rawURL).Int("attempt", i+1).Msg("fetch retry")
		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		case <-time.After(time.Duration(i+1) * 200 * time.Millisecond):
		}
	}
	return nil, "", lastErr
}

func (c *Client) tryOnce(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("new request: %w", err)
	}
	if !isHTTPScheme(req.URL) {
		return nil, "", fmt.Errorf("unsupported URL scheme: %q", req.URL.Scheme)
	}
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,text/markdown;q=0.9")

	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(req.Context(), c.PerRequestTimeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &StatusError{Code: resp.StatusCode}
	}
	ct := resp.Header.Get("Content-Type")
	if !isAllowedContentType(ct) {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedContent, ct)
	}
	limit := c.MaxBytes
	if limit <= 0 {
		limit = extract.MaxBytes
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if int64(len(b)) > limit {
		return nil, "", fmt.Errorf("%s: %w", rawURL, extract.ErrTooLarge)
	}
	return b, ct, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		// Copy so the redirect policy does not leak into the caller's client.
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirect
		return &base
	}
	return &http.Client{CheckRedirect: c.checkRedirect}
}

func (c *Client) checkRedirect(req *http.Request, via []*http.Request) error {
	hops := c.RedirectMaxHops
	if hops <= 0 {
		hops = 5
	}
	if len(via) >= hops {
		return errors.New("too many redirects")
	}
	if !isHTTPScheme(req.URL) {
		return errors.New("redirect to unsupported scheme")
	}
	return nil
}

// isTransient treats 5xx, 429 and timeouts as worth another attempt.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500 || se.Code == http.StatusTooManyRequests
	}
	return false
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func mediaType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mt
}

func isHTML(ct string) bool {
	mt := mediaType(ct)
	return mt == "text/html" || mt == "application/xhtml+xml"
}

func isAllowedContentType(ct string) bool {
	switch mediaType(ct) {
	case "text/html", "application/xhtml+xml", "text/plain", "text/markdown":
		return true
	}
	return false
}
