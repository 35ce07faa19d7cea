// Package jobs hosts the background job handlers and the Asynq worker glue.
//
// Scheduled tasks carry an optional target date in their payload; an empty
// value is resolved against the business timezone (Asia/Tokyo) when the task
// runs, so cron registrations can enqueue the same static payload every day.
package jobs

import (
	"time"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// DateLayout is the wire format for day-level task payloads.
	DateLayout = "2006/01/02"
	// MonthLayout is the wire format for month-level task payloads.
	MonthLayout = "2006/01"
)

// businessZone is the timezone scheduled dates are resolved in.
var businessZone = mustLoadZone()

func mustLoadZone() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}

// resolveDate parses a payload date, falling back to the current business-zone
// day shifted by offsetDays when the payload is empty.
func resolveDate(raw string, offsetDays int, clock func() time.Time) (time.Time, error) {
	if raw != "" {
		return time.Parse(DateLayout, raw)
	}
	now := clock().In(businessZone)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, businessZone)
	return day.AddDate(0, 0, offsetDays), nil
}

// resolveMonth parses a payload month, falling back to the current
// business-zone month when the payload is empty.
func resolveMonth(raw string, clock func() time.Time) (time.Time, error) {
	if raw != "" {
		return time.Parse(MonthLayout, raw)
	}
	now := clock().In(businessZone)
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, businessZone), nil
}
