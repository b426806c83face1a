package errors_test

import (
	"fmt"

	"github.com/agentstation/ordsync/pkg/errors"
)

// Example demonstrates basic error creation and checking.
func Example() {
	err := errors.NewInvalidCursorError("15-13-2019", "month out of range")

	if errors.IsInvalidCursor(err) {
		fmt.Println("Cursor rejected before any request")
	}

	// Output: Cursor rejected before any request
}

// Example_transportError demonstrates classifying a failed fetch.
func Example_transportError() {
	err := errors.NewStatusError("resolve", "https://example.test/organisations/X1", 503, "503 Service Unavailable")

	switch {
	case errors.IsRateLimited(err):
		fmt.Println("Slow down")
	case errors.IsTransport(err):
		fmt.Printf("Fetch failed with status %d\n", err.StatusCode)
	}

	// Output: Fetch failed with status 503
}
