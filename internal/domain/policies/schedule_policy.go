package policies

import (
	"time"

	valueobjects "payrecon/internal/domain/value_objects"
)

// NextRun computes the next execution instant for a recurring schedule,
// always strictly after now. The candidate starts at today's configured
// hour and minute; a candidate that is not strictly in the future rolls to
// the next day before the frequency adjustment, so an exact now match
// yields the next cycle. Assumes a validated ScheduleConfig.
func NextRun(config valueobjects.ScheduleConfig, now time.Time) time.Time {
	candidate := time.Date(
		now.Year(), now.Month(), now.Day(),
		config.Hour, config.Minute, 0, 0,
		now.Location(),
	)

	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}

	switch config.Frequency {
	case valueobjects.FrequencyWeekly:
		daysAhead := (int(config.Weekday()) - int(candidate.Weekday()) + 7) % 7
		candidate = candidate.AddDate(0, 0, daysAhead)
	case valueobjects.FrequencyMonthly:
		year, month := candidate.Year(), candidate.Month()
		if config.DayOfMonth < candidate.Day() {
			month++
		}
		day := config.DayOfMonth
		if last := lastDayOfMonth(year, month); day > last {
			day = last
		}
		candidate = time.Date(year, month, day, config.Hour, config.Minute, 0, 0, now.Location())
	}

	return candidate
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
