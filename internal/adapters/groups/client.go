// Package groups provides an authenticated client for the group-management REST API
package groups

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	perr "rankbot/internal/platform/errors"
	"rankbot/internal/platform/logger"

	"golang.org/x/time/rate"
)

const (
	baseURLDefault  = "https://groups.roblox.com"
	usersURLDefault = "https://users.roblox.com"
	defaultTimeout  = 10 * time.Second
	defaultUA       = "rankbot"
	defaultRPS      = 5
	defaultBurst    = 5

	cookieName = ".ROBLOSECURITY"
	csrfHeader = "X-Csrf-Token"
)

// Options configures the Client
type Options struct {
	BaseURL   string // groups endpoint host
	UsersURL  string // users endpoint host
	UserAgent string
	Timeout   time.Duration

	// Cookie is the security cookie value used to authenticate every call
	Cookie string

	// Client-side pacing so we stay under the remote rate limits
	// RPS 0 takes the default; negative disables the limiter
	RPS   float64
	Burst int
}

// Client is a minimal group-management REST client with cookie auth,
// CSRF re-issue, and client-side request pacing.
// It classifies failures into platform error codes; it does NOT retry.
// Retry policy belongs to the callers that know the operation's semantics
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	csrf    atomic.Value // string
	log     logger.Logger
	now     func() time.Time
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.UsersURL == "" {
		o.UsersURL = usersURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.RPS == 0 {
		o.RPS = defaultRPS
	}
	var lim *rate.Limiter
	if o.RPS > 0 {
		burst := o.Burst
		if burst <= 0 {
			burst = defaultBurst
		}
		lim = rate.NewLimiter(rate.Limit(o.RPS), burst)
	}
	c := &Client{
		http:    &http.Client{Timeout: o.Timeout},
		opts:    o,
		limiter: lim,
		log:     *logger.Named("groups"),
		now:     time.Now,
	}
	c.csrf.Store("")
	return c
}

// do issues one request with auth headers and pacing, classifying the outcome.
// A CSRF challenge (403 with a token header) is re-issued once transparently;
// everything else surfaces as a coded error for the caller to act on
func (c *Client) do(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	retriedCSRF := false
	for {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, rd)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "groups new request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.opts.Cookie != "" {
			req.AddCookie(&http.Cookie{Name: cookieName, Value: c.opts.Cookie})
		}
		if tok, _ := c.csrf.Load().(string); tok != "" {
			req.Header.Set(csrfHeader, tok)
		}

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			// transport failure or per-call timeout; the caller may retry
			return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "groups do failed")
		}

		c.log.Debug().
			Str("method", method).
			Str("url", url).
			Int("status", resp.StatusCode).
			Dur("latency", lat).
			Msg("groups http response")

		if resp.StatusCode == http.StatusForbidden {
			if tok := resp.Header.Get(csrfHeader); tok != "" && !retriedCSRF {
				// token challenge: stash and re-issue the same call once
				c.csrf.Store(tok)
				_ = drainAndClose(resp.Body)
				retriedCSRF = true
				continue
			}
		}

		return resp, nil
	}
}

// statusErr converts a non-2xx response into a coded *APIError.
// The body is read (bounded) so remote application codes can be extracted
func (c *Client) statusErr(resp *http.Response, op string) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
	body := strings.TrimSpace(string(b))

	e := &APIError{
		Status:     resp.StatusCode,
		Body:       body,
		RemoteCode: parseRemoteCode(b),
		RetryAfter: parseRetryAfter(resp.Header),
	}
	e.Err = perr.Newf(perr.FromHTTPStatus(resp.StatusCode), "groups %s: status %d", op, resp.StatusCode)
	return e
}
