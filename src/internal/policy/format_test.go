package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatCreatedAt(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		age  time.Duration
		want string
	}{
		{0, "Just now"},
		{59 * time.Second, "Just now"},
		{time.Minute, "1 minute ago"},
		{30 * time.Minute, "30 minutes ago"},
		{time.Hour, "1 hour ago"},
		{23 * time.Hour, "23 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{72 * time.Hour, "3 days ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCreatedAt(now.Add(-tt.age), now), tt.age.String())
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "3:30", FormatDuration(210))
	assert.Equal(t, "0:05", FormatDuration(5))
	assert.Equal(t, "0:00", FormatDuration(-3))
	assert.Equal(t, "61:01", FormatDuration(3661))
}
