package dto

import "time"

type SaveScheduleCommand struct {
	Now        time.Time
	ScheduleID string
	Channel    string
	Frequency  string
	DayOfWeek  *int
	DayOfMonth *int
	Hour       int
	Minute     int
	Enabled    bool
	ApplyMode  string
	BatchSize  int
}

type ScheduleView struct {
	ID         string    `json:"id"`
	Channel    string    `json:"channel"`
	Frequency  string    `json:"frequency"`
	DayOfWeek  *int      `json:"day_of_week,omitempty"`
	DayOfMonth *int      `json:"day_of_month,omitempty"`
	Hour       int       `json:"hour"`
	Minute     int       `json:"minute"`
	Enabled    bool      `json:"enabled"`
	ApplyMode  string    `json:"apply_mode"`
	BatchSize  int       `json:"batch_size"`
	NextRunAt  time.Time `json:"next_run_at"`
}

type ListSchedulesQuery struct {
	Channel string
}

type ListSchedulesOutput struct {
	Schedules []ScheduleView
}

type DeleteScheduleCommand struct {
	ScheduleID string
}

type TriggerDueSchedulesCommand struct {
	Now           time.Time
	Limit         int
	WorkerID      string
	LeaseDuration time.Duration
}

type TriggerDueSchedulesOutput struct {
	Claimed   int
	Triggered int
	Succeeded int
	Failed    int
}

// DueSchedule is a claimed schedule row handed to the run use case.
type DueSchedule struct {
	ID         string
	Channel    string
	Frequency  string
	DayOfWeek  *int
	DayOfMonth *int
	Hour       int
	Minute     int
	ApplyMode  string
	BatchSize  int
	NextRunAt  time.Time
}
