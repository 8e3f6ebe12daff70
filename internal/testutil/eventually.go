package testutil

import (
	"testing"
	"time"
)

// Eventually polls cond every interval and fails the test when it is still
// false after timeout.
func Eventually(t testing.TB, timeout, interval time.Duration, cond func() bool, format string, args ...any) {
	t.Helper()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for !cond() {
		select {
		case <-deadline.C:
			if format == "" {
				format = "condition not met within %s"
				args = []any{timeout}
			}
			t.Fatalf(format, args...)
		case <-ticker.C:
		}
	}
}
