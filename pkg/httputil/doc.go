// Package httputil provides HTTP helpers shared by the visualize client and
// server.
//
//   - [Retry]: retry with exponential backoff for transient failures
//   - [CheckStatus]: map a response status to a coded, possibly retryable, error
//
// # Retry
//
// [Retry] re-runs a function while it fails with a [RetryableError]:
//
//	err := httputil.Retry(ctx, 3, 500*time.Millisecond, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckStatus(resp)
//	})
//
// Network errors, 429 responses and 5xx responses are retryable; other
// failures are returned immediately.
package httputil
