package groups

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"
)

// APIError wraps non-2xx HTTP responses from the group-management service
type APIError struct {
	Status     int
	Body       string
	RemoteCode int           // application-level error code from the response body, 0 if absent
	RetryAfter time.Duration // rate-limit hint, 0 if not provided
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string { return e.Err.Error() }

// Unwrap exposes the coded platform error for perr.CodeOf
func (e *APIError) Unwrap() error { return e.Err }

// HTTPStatus returns the response status
func (e *APIError) HTTPStatus() int { return e.Status }

// RetryAfterOf extracts the rate-limit hint from err; zero when absent
func RetryAfterOf(err error) time.Duration {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.RetryAfter
	}
	return 0
}

// RemoteCodeOf extracts the remote application error code from err; zero when absent
func RemoteCodeOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.RemoteCode
	}
	return 0
}

// remote error bodies look like {"errors":[{"code":26,"message":"..."}]}
func parseRemoteCode(body []byte) int {
	var out struct {
		Errors []struct {
			Code int `json:"code"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return 0
	}
	if len(out.Errors) == 0 {
		return 0
	}
	return out.Errors[0].Code
}

func parseRetryAfter(h http.Header) time.Duration {
	s := h.Get("Retry-After")
	if s == "" {
		return 0
	}
	sec, err := strconv.Atoi(s)
	if err != nil || sec <= 0 {
		return 0
	}
	return time.Duration(sec) * time.Second
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}
