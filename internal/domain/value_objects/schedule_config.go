package valueobjects

import (
	"time"

	apperrors "payrecon/internal/shared_kernel/errors"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func ParseFrequency(raw string) (Frequency, *apperrors.AppError) {
	switch raw {
	case string(FrequencyDaily):
		return FrequencyDaily, nil
	case string(FrequencyWeekly):
		return FrequencyWeekly, nil
	case string(FrequencyMonthly):
		return FrequencyMonthly, nil
	default:
		return "", apperrors.NewValidation(
			"schedule_frequency_invalid",
			"schedule frequency must be daily, weekly or monthly",
			map[string]any{"frequency": raw},
		)
	}
}

func (f Frequency) String() string {
	return string(f)
}

// ScheduleConfig describes when a recurring reconciliation job fires.
// DayOfWeek is meaningful only for weekly schedules (0 = Sunday, matching
// time.Weekday), DayOfMonth only for monthly ones.
type ScheduleConfig struct {
	Frequency  Frequency
	DayOfWeek  int
	DayOfMonth int
	Hour       int
	Minute     int
}

type NewScheduleConfigInput struct {
	Frequency  string
	DayOfWeek  *int
	DayOfMonth *int
	Hour       int
	Minute     int
}

func NewScheduleConfig(input NewScheduleConfigInput) (ScheduleConfig, *apperrors.AppError) {
	frequency, appErr := ParseFrequency(input.Frequency)
	if appErr != nil {
		return ScheduleConfig{}, appErr
	}

	if input.Hour < 0 || input.Hour > 23 {
		return ScheduleConfig{}, apperrors.NewValidation(
			"schedule_hour_invalid",
			"schedule hour must be between 0 and 23",
			map[string]any{"hour": input.Hour},
		)
	}
	if input.Minute < 0 || input.Minute > 59 {
		return ScheduleConfig{}, apperrors.NewValidation(
			"schedule_minute_invalid",
			"schedule minute must be between 0 and 59",
			map[string]any{"minute": input.Minute},
		)
	}

	config := ScheduleConfig{
		Frequency: frequency,
		Hour:      input.Hour,
		Minute:    input.Minute,
	}

	switch frequency {
	case FrequencyWeekly:
		if input.DayOfWeek == nil {
			return ScheduleConfig{}, apperrors.NewValidation(
				"schedule_day_of_week_required",
				"weekly schedules require a day of week",
				nil,
			)
		}
		if *input.DayOfWeek < 0 || *input.DayOfWeek > 6 {
			return ScheduleConfig{}, apperrors.NewValidation(
				"schedule_day_of_week_invalid",
				"schedule day of week must be between 0 and 6",
				map[string]any{"day_of_week": *input.DayOfWeek},
			)
		}
		config.DayOfWeek = *input.DayOfWeek
	case FrequencyMonthly:
		if input.DayOfMonth == nil {
			return ScheduleConfig{}, apperrors.NewValidation(
				"schedule_day_of_month_required",
				"monthly schedules require a day of month",
				nil,
			)
		}
		if *input.DayOfMonth < 1 || *input.DayOfMonth > 31 {
			return ScheduleConfig{}, apperrors.NewValidation(
				"schedule_day_of_month_invalid",
				"schedule day of month must be between 1 and 31",
				map[string]any{"day_of_month": *input.DayOfMonth},
			)
		}
		config.DayOfMonth = *input.DayOfMonth
	}

	return config, nil
}

func (c ScheduleConfig) Weekday() time.Weekday {
	return time.Weekday(c.DayOfWeek)
}
