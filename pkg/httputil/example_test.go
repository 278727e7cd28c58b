package httputil_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/httputil"
)

func ExampleRetry() {
	attempts := 0
	err := httputil.Retry(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		if attempts < 2 {
			return &httputil.RetryableError{Err: errors.New("connection reset")}
		}
		return nil
	})
	fmt.Println("attempts:", attempts)
	fmt.Println("error:", err)
	// Output:
	// attempts: 2
	// error: <nil>
}
