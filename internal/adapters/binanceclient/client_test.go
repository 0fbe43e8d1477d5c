package binanceclient

import (
	"testing"
	"time"
)

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		name     string
		base     time.Duration
		attempt  int
		expected time.Duration
	}{
		{
			name:     "first retry waits base plus ten percent",
			base:     5 * time.Second,
			attempt:  1,
			expected: 5500 * time.Millisecond,
		},
		{
			name:     "second retry doubles the base",
			base:     5 * time.Second,
			attempt:  2,
			expected: 11 * time.Second,
		},
		{
			name:     "third retry doubles again",
			base:     5 * time.Second,
			attempt:  3,
			expected: 22 * time.Second,
		},
		{
			name:     "sub-second base",
			base:     time.Second,
			attempt:  1,
			expected: 1100 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := backoffDelay(tt.base, tt.attempt)
			if got != tt.expected {
				t.Errorf("Expected delay %v, got %v", tt.expected, got)
			}
		})
	}
}

// Early retries must stay on a human timescale: a connection drop should
// never park the reconnect loop for hours.
func TestBackoffDelay_StaysShortForEarlyAttempts(t *testing.T) {
	for attempt := 1; attempt <= 5; attempt++ {
		if got := backoffDelay(5*time.Second, attempt); got > 2*time.Minute {
			t.Errorf("Attempt %d waits %v, want under two minutes", attempt, got)
		}
	}
}
