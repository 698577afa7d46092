package timezone

import (
	"errors"
	"lodge/config"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	appLocation *time.Location

	// ErrInvalidDate is returned when a value is neither a calendar date nor an RFC3339 timestamp.
	ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD or RFC3339")
)

const calendarLayout = "2006-01-02"

func init() {
	cfg := config.Get()

	if cfg.App.Timezone == "" {
		log.Warn().Msg("No timezone configured, using UTC as default")
		cfg.App.Timezone = "UTC"
	}

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Error().
			Err(err).
			Str("timezone", cfg.App.Timezone).
			Msg("Failed to load timezone, falling back to UTC. Please use standard timezone names like 'Asia/Jakarta', 'UTC', 'America/New_York'")
		appLocation = time.UTC
		return
	}

	appLocation = loc
	log.Info().
		Str("timezone", cfg.App.Timezone).
		Str("location", loc.String()).
		Msg("Application timezone initialized")
}

// Now returns the current time in the application timezone
func Now() time.Time {
	if appLocation == nil {
		log.Warn().Msg("Timezone not initialized, using UTC")
		return time.Now().UTC()
	}
	return time.Now().In(appLocation)
}

// Format formats a time in the application timezone
func Format(t time.Time, layout string) string {
	if appLocation == nil {
		return t.UTC().Format(layout)
	}

	return t.In(appLocation).Format(layout)
}

// StartOfDay drops the time of day, keeping the calendar date as seen in t's own
// location. The result is midnight UTC so dates compare and persist uniformly.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts either a calendar date or an RFC3339 timestamp and returns the
// calendar date it names.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	if t, err := time.Parse(calendarLayout, value); err == nil {
		return t, nil
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return StartOfDay(t), nil
	}

	return time.Time{}, ErrInvalidDate
}
