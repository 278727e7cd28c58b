package httputil

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/errors"
)

// maxErrorBody bounds how much of an error response is quoted in the error.
const maxErrorBody = 512

// CheckStatus returns nil for 2xx responses and a coded error otherwise.
// 5xx responses are NETWORK_ERROR wrapped in [RetryableError]; 429 is a
// retryable [errors.RateLimitedError]; 404 is NOT_FOUND; other 4xx
// responses are INVALID_INPUT. The response body is not closed.
func CheckStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	msg := errorBody(resp.Body)

	switch {
	case code == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &RetryableError{Err: &errors.RateLimitedError{RetryAfter: retryAfter, Message: msg}}
	case code >= 500:
		return &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "status %d: %s", code, msg)}
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "status %d: %s", code, msg)
	default:
		return errors.New(errors.ErrCodeInvalidInput, "status %d: %s", code, msg)
	}
}

func errorBody(r io.Reader) string {
	if r == nil {
		return ""
	}
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(data))
}
