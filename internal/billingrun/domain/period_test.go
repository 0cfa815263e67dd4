package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePeriod(t *testing.T) {
	start, end, err := ParsePeriod("2025-09")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestParsePeriod_DecemberRollsToNextYear(t *testing.T) {
	start, end, err := ParsePeriod("2025-12")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestParsePeriod_Invalid(t *testing.T) {
	for _, period := range []string{"", "2025", "2025-13", "2025-9", "sep-2025", "2025-09-01"} {
		_, _, err := ParsePeriod(period)
		assert.ErrorIs(t, err, ErrInvalidPeriod, "period %q", period)
	}
}

func TestParsePeriod_TrimsWhitespace(t *testing.T) {
	start, _, err := ParsePeriod(" 2025-02 ")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), start)
}
