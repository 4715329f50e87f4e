package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchOriginPattern(t *testing.T) {
	assert.True(t, matchOriginPattern("kaarshe.com", "kaarshe.com"))
	assert.True(t, matchOriginPattern("*.kaarshe.com", "www.kaarshe.com"))
	assert.False(t, matchOriginPattern("*.kaarshe.com", "kaarshe.org"))
	assert.True(t, matchOriginPattern("localhost:*", "localhost:3000"))
	assert.Equal(t, "www.kaarshe.com", extractOriginHost("https://www.kaarshe.com"))
}

func TestParseTimezoneLocation(t *testing.T) {
	loc, err := parseTimezoneLocation("+03:00")
	require.NoError(t, err)
	_, offset := time.Date(2026, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 3*3600, offset)

	_, err = parseTimezoneLocation("not/a-zone")
	assert.Error(t, err)
}

func TestHumanizeDuration(t *testing.T) {
	assert.Equal(t, "15m0s", humanizeDuration(15*time.Minute+20*time.Second))
	assert.Equal(t, "24h0m0s", humanizeDuration(25*time.Hour))
}
