package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimeAgo(t *testing.T) {
	now := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{"seconds round to just now", 30 * time.Second, "just now"},
		{"two minutes", 2 * time.Minute, "2 minutes ago"},
		{"just under an hour", 59 * time.Minute, "59 minutes ago"},
		{"one hour", time.Hour, "1 hours ago"},
		{"just under a day", 23*time.Hour + 30*time.Minute, "23 hours ago"},
		{"one day", 24 * time.Hour, "1 days ago"},
		{"a week", 7 * 24 * time.Hour, "7 days ago"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, formatTimeAgoAt(now.Add(-c.ago), now))
		})
	}
}
