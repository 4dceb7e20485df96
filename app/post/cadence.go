package post

import (
	"time"

	"github.com/dkovalev/autoinstapost/app/database"
)

// NextRun computes the next eligible run time strictly after now, evaluated
// in loc. Returns nil when the schedule is disabled or can never fire
// (weekdays cadence with an empty set). A run scheduled exactly at now counts
// as already passed, so the boundary tick never fires twice.
func NextRun(cfg database.ScheduleConfig, now time.Time, lastRunAt *time.Time, loc *time.Location) *time.Time {
	if !cfg.Enabled {
		return nil
	}

	now = now.In(loc)

	switch cfg.Cadence {
	case database.CadenceDaily:
		return nextDaily(cfg, now, loc)
	case database.CadenceEveryNDays:
		return nextEveryNDays(cfg, now, lastRunAt, loc)
	case database.CadenceWeekdays:
		return nextWeekdays(cfg, now, loc)
	}

	return nil
}

func nextDaily(cfg database.ScheduleConfig, now time.Time, loc *time.Location) *time.Time {
	candidate := atTime(now, cfg.Hour, cfg.Minute, loc)
	if !candidate.After(now) {
		candidate = atTime(now.AddDate(0, 0, 1), cfg.Hour, cfg.Minute, loc)
	}
	return &candidate
}

func nextEveryNDays(cfg database.ScheduleConfig, now time.Time, lastRunAt *time.Time, loc *time.Location) *time.Time {
	n := cfg.EveryNDays
	if n < 1 {
		return nil
	}

	// Offsets are measured in whole calendar days from the anchor date.
	// Never-run schedules anchor at the epoch so day 0 is always eligible.
	anchor := 0
	if lastRunAt != nil {
		anchor = epochDay(lastRunAt.In(loc))
	}

	day := now
	for i := 0; i <= n; i++ {
		offset := epochDay(day) - anchor
		if offset%n == 0 && offset >= 0 {
			candidate := atTime(day, cfg.Hour, cfg.Minute, loc)
			if candidate.After(now) {
				return &candidate
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	// lastRunAt lies in the future; first eligible day is anchor + n.
	if lastRunAt == nil {
		return nil
	}
	candidate := atTime(lastRunAt.In(loc).AddDate(0, 0, n), cfg.Hour, cfg.Minute, loc)
	return &candidate
}

func nextWeekdays(cfg database.ScheduleConfig, now time.Time, loc *time.Location) *time.Time {
	if len(cfg.Weekdays) == 0 {
		return nil
	}

	allowed := make(map[int]bool, len(cfg.Weekdays))
	for _, wd := range cfg.Weekdays {
		allowed[wd] = true
	}

	day := now
	for i := 0; i <= 7; i++ {
		if allowed[weekdayIndex(day)] {
			candidate := atTime(day, cfg.Hour, cfg.Minute, loc)
			if candidate.After(now) {
				return &candidate
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	return nil
}

func atTime(day time.Time, hour, minute int, loc *time.Location) time.Time {
	day = day.In(loc)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
}

// epochDay counts whole calendar days since 1970-01-01 for the date of t.
// The date is re-anchored in UTC so DST shifts cannot skew the count.
func epochDay(t time.Time) int {
	return int(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// weekdayIndex maps a date to the UI's weekday numbering, 0=Monday .. 6=Sunday.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
