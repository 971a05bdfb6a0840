package answer

import (
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultTimezone = "America/Bogota"

// LocationFor resolves an IANA zone name, falling back to the default and
// then UTC. Stored timestamps are always UTC; conversion happens only at
// the display boundary.
func LocationFor(name string) *time.Location {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn().Str("timezone", name).Err(err).Msg("unknown timezone, falling back to UTC")
		return time.UTC
	}
	return loc
}

// LocalDate formats the calendar date of t in loc as YYYY-MM-DD.
func LocalDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// FormatLocal renders a stored UTC timestamp in the caller's zone.
func FormatLocal(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02/01/2006 15:04")
}
