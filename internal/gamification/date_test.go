package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPreviousDay(t *testing.T) {
	cases := map[string]string{
		"2026-01-11": "2026-01-10",
		"2026-01-01": "2025-12-31",
		"2024-03-01": "2024-02-29",
	}
	for in, want := range cases {
		got, ok := PreviousDay(in)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := PreviousDay("yesterday")
	assert.False(t, ok)
}

func TestDateIn_UsesLocation(t *testing.T) {
	now := time.Date(2026, 1, 11, 2, 0, 0, 0, time.UTC)
	lima := time.FixedZone("PET", -5*60*60)

	assert.Equal(t, "2026-01-11", DateIn(now, nil))
	assert.Equal(t, "2026-01-10", DateIn(now, lima))
}
