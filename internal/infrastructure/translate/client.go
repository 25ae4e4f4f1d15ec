package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"BulletinTimeline/internal/config"
	"BulletinTimeline/internal/ports"
)

const (
	defaultTimeout = 15 * time.Second
	breakerTimeout = 30 * time.Second
)

// StatusError reports a non-200 answer from the endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("translate error %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// Client calls the public web translation endpoint, one request per text.
// Rate limiting and server errors are retried with exponential backoff; a
// run of consecutive failures opens a circuit breaker so the remaining
// titles fail fast.
type Client struct {
	endpoint       string
	source         string
	target         string
	http           *http.Client
	maxRetries     int
	initialBackoff time.Duration
	breaker        *gobreaker.CircuitBreaker
}

var _ ports.Translator = (*Client)(nil)

// NewClient builds a client from configuration. A nil httpClient gets a
// default with the configured timeout.
func NewClient(cfg config.TranslationConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}

	c := &Client{
		endpoint:       cfg.Endpoint,
		source:         cfg.SourceLang,
		target:         cfg.TargetLang,
		http:           httpClient,
		maxRetries:     retries,
		initialBackoff: 500 * time.Millisecond,
	}
	if cfg.BreakerThreshold > 0 {
		threshold := uint32(cfg.BreakerThreshold)
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "translate",
			Timeout: breakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
		})
	}
	return c
}

// Translate returns the concatenated translated segments for text.
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	if c.breaker == nil {
		return c.translateWithRetry(ctx, text)
	}
	out, err := c.breaker.Execute(func() (any, error) {
		return c.translateWithRetry(ctx, text)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (c *Client) translateWithRetry(ctx context.Context, text string) (string, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialBackoff
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxRetries)), ctx)

	var result string
	err := backoff.Retry(func() error {
		out, err := c.translateOnce(ctx, text)
		if err != nil {
			if isRetryable(ctx, err) {
				return err
			}
			return backoff.Permanent(err)
		}
		result = out
		return nil
	}, policy)
	if err != nil {
		return "", err
	}
	return result, nil
}

func (c *Client) translateOnce(ctx context.Context, text string) (string, error) {
	reqURL, err := c.buildURL(text)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", "BulletinTimeline/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}

	var body []any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return joinSegments(body), nil
}

// Client timeouts also match DeadlineExceeded, so only the caller's ctx
// rules a retry out.
func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *Client) buildURL(text string) (string, error) {
	parsed, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid translation endpoint %s: %w", c.endpoint, err)
	}
	query := parsed.Query()
	query.Set("client", "gtx")
	query.Set("sl", c.source)
	query.Set("tl", c.target)
	query.Set("dt", "t")
	query.Set("q", text)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// joinSegments reads [[["translated","source",...],...],...] and concatenates
// the first field of every segment in the first element.
func joinSegments(body []any) string {
	if len(body) == 0 {
		return ""
	}
	segments, ok := body[0].([]any)
	if !ok {
		return ""
	}
	var sb strings.Builder
	for _, raw := range segments {
		segment, ok := raw.([]any)
		if !ok || len(segment) == 0 {
			continue
		}
		if s, ok := segment[0].(string); ok {
			sb.WriteString(s)
		}
	}
	return sb.String()
}
