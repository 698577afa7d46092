// Package timezone provides the application clock and calendar-date helpers.
//
// Usage Examples:
//
//  1. Current time in the app timezone:
//     now := timezone.Now()
//
//  2. Reading a check-in date from a request:
//     day, err := timezone.ParseDate("2026-10-16")
//     day, err = timezone.ParseDate("2026-10-16T18:00:00+07:00") // time of day dropped
//
//  3. Formatting times in app timezone:
//     formatted := timezone.Format(time.Now(), "2006-01-02 15:04:05")
//
// Calendar dates are always represented as midnight UTC so that day arithmetic
// (AddDate) and comparisons never cross a DST boundary.
//
// The timezone is configured via the APP_TIMEZONE environment variable
// and is automatically initialized when the package is imported.
package timezone
