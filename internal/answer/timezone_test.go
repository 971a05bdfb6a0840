package answer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocationForFallsBackToUTC(t *testing.T) {
	loc := LocationFor("Not/AZone")
	assert.Equal(t, time.UTC, loc)
}

func TestLocationForEmptyUsesDefault(t *testing.T) {
	loc := LocationFor("")
	assert.Equal(t, DefaultTimezone, loc.String())
}

func TestLocalDateCrossesDayBoundary(t *testing.T) {
	// 02:00 UTC on the 15th is still the 14th in Bogota (UTC-5).
	utc := time.Date(2026, 8, 15, 2, 0, 0, 0, time.UTC)
	loc := LocationFor("America/Bogota")
	assert.Equal(t, "2026-08-14", LocalDate(utc, loc))
}

func TestFormatLocal(t *testing.T) {
	utc := time.Date(2026, 8, 15, 20, 30, 0, 0, time.UTC)
	loc := LocationFor("America/Bogota")
	assert.Equal(t, "15/08/2026 15:30", FormatLocal(utc, loc))
}
