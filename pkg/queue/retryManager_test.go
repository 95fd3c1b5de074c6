package queue

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShouldRetry(t *testing.T) {
	rm := NewRetryManager(3, time.Second)

	tests := []struct {
		name      string
		attempts  int
		err       error
		wantRetry bool
	}{
		{
			name:      "transient error is retried",
			attempts:  1,
			err:       errors.New("connection refused"),
			wantRetry: true,
		},
		{
			name:      "attempts exhausted",
			attempts:  3,
			err:       errors.New("connection refused"),
			wantRetry: false,
		},
		{
			name:      "not found is final",
			attempts:  1,
			err:       errors.New("booking not found"),
			wantRetry: false,
		},
		{
			name:      "already finalized is final",
			attempts:  1,
			err:       errors.New("booking is not active"),
			wantRetry: false,
		},
		{
			name:      "validation failure is final",
			attempts:  1,
			err:       errors.New("invalid task data: missing booking_id"),
			wantRetry: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{Attempts: tt.attempts, MaxRetries: 3}
			retry, delay := rm.ShouldRetry(task, tt.err)
			assert.Equal(t, tt.wantRetry, retry)
			if retry {
				assert.Greater(t, delay, time.Duration(0))
			}
		})
	}
}

func TestCalculateBackoffIsCapped(t *testing.T) {
	rm := NewRetryManager(10, time.Second)

	for attempt := 1; attempt <= 10; attempt++ {
		delay := rm.calculateBackoff(attempt)
		assert.LessOrEqual(t, delay, 16*time.Second)
		assert.Greater(t, delay, time.Duration(0))
	}
}

func TestTaskIntData(t *testing.T) {
	task := &Task{Data: map[string]interface{}{
		"booking_id": float64(42), // JSON numbers decode as float64
		"note":       "text",
	}}

	id, ok := task.IntData("booking_id")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = task.IntData("note")
	assert.False(t, ok)

	_, ok = task.IntData("missing")
	assert.False(t, ok)
}
