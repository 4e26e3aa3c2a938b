package use_cases

import (
	"context"
	"strings"

	"payrecon/internal/application/dto"
	portsin "payrecon/internal/application/ports/in"
	portsout "payrecon/internal/application/ports/out"
	"payrecon/internal/domain/policies"
	valueobjects "payrecon/internal/domain/value_objects"
	apperrors "payrecon/internal/shared_kernel/errors"

	"github.com/google/uuid"
)

type saveScheduleUseCase struct {
	schedules portsout.ScheduleRepository
	clock     Clock
}

func NewSaveScheduleUseCase(schedules portsout.ScheduleRepository, clock Clock) portsin.SaveScheduleUseCase {
	return &saveScheduleUseCase{schedules: schedules, clock: clock}
}

func (u *saveScheduleUseCase) Execute(
	ctx context.Context,
	command dto.SaveScheduleCommand,
) (dto.ScheduleView, *apperrors.AppError) {
	if u.schedules == nil {
		return dto.ScheduleView{}, apperrors.NewInternal(
			"schedule_repository_missing",
			"schedule repository is required",
			nil,
		)
	}

	channel := strings.TrimSpace(command.Channel)
	if channel == "" {
		return dto.ScheduleView{}, apperrors.NewValidation(
			"schedule_channel_missing",
			"payment channel is required",
			nil,
		)
	}

	config, appErr := valueobjects.NewScheduleConfig(valueobjects.NewScheduleConfigInput{
		Frequency:  strings.TrimSpace(command.Frequency),
		DayOfWeek:  command.DayOfWeek,
		DayOfMonth: command.DayOfMonth,
		Hour:       command.Hour,
		Minute:     command.Minute,
	})
	if appErr != nil {
		return dto.ScheduleView{}, appErr
	}

	applyMode, appErr := valueobjects.ParseApplyMode(strings.TrimSpace(command.ApplyMode))
	if appErr != nil {
		return dto.ScheduleView{}, appErr
	}
	if applyMode == valueobjects.ApplyModeBatched && command.BatchSize <= 0 {
		return dto.ScheduleView{}, apperrors.NewValidation(
			"schedule_batch_size_invalid",
			"batched schedules require a batch size greater than zero",
			map[string]any{"batch_size": command.BatchSize},
		)
	}

	now := command.Now.UTC()
	if command.Now.IsZero() {
		now = u.clock.NowUTC()
	}

	scheduleID := strings.TrimSpace(command.ScheduleID)
	if scheduleID == "" {
		scheduleID = uuid.New().String()
	}

	view := dto.ScheduleView{
		ID:        scheduleID,
		Channel:   channel,
		Frequency: config.Frequency.String(),
		Hour:      config.Hour,
		Minute:    config.Minute,
		Enabled:   command.Enabled,
		ApplyMode: applyMode.String(),
		BatchSize: command.BatchSize,
		NextRunAt: policies.NextRun(config, now),
	}
	switch config.Frequency {
	case valueobjects.FrequencyWeekly:
		dayOfWeek := config.DayOfWeek
		view.DayOfWeek = &dayOfWeek
	case valueobjects.FrequencyMonthly:
		dayOfMonth := config.DayOfMonth
		view.DayOfMonth = &dayOfMonth
	}

	if appErr := u.schedules.Save(ctx, view); appErr != nil {
		return dto.ScheduleView{}, appErr
	}

	return view, nil
}
