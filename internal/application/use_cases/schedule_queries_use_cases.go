package use_cases

import (
	"context"
	"strings"

	"payrecon/internal/application/dto"
	portsin "payrecon/internal/application/ports/in"
	portsout "payrecon/internal/application/ports/out"
	apperrors "payrecon/internal/shared_kernel/errors"
)

type listSchedulesUseCase struct {
	schedules portsout.ScheduleRepository
}

func NewListSchedulesUseCase(schedules portsout.ScheduleRepository) portsin.ListSchedulesUseCase {
	return &listSchedulesUseCase{schedules: schedules}
}

func (u *listSchedulesUseCase) Execute(
	ctx context.Context,
	query dto.ListSchedulesQuery,
) (dto.ListSchedulesOutput, *apperrors.AppError) {
	schedules, appErr := u.schedules.List(ctx, strings.TrimSpace(query.Channel))
	if appErr != nil {
		return dto.ListSchedulesOutput{}, appErr
	}

	return dto.ListSchedulesOutput{Schedules: schedules}, nil
}

type deleteScheduleUseCase struct {
	schedules portsout.ScheduleRepository
}

func NewDeleteScheduleUseCase(schedules portsout.ScheduleRepository) portsin.DeleteScheduleUseCase {
	return &deleteScheduleUseCase{schedules: schedules}
}

func (u *deleteScheduleUseCase) Execute(ctx context.Context, command dto.DeleteScheduleCommand) *apperrors.AppError {
	scheduleID := strings.TrimSpace(command.ScheduleID)
	if scheduleID == "" {
		return apperrors.NewValidation(
			"schedule_id_missing",
			"schedule id is required",
			nil,
		)
	}

	return u.schedules.Delete(ctx, scheduleID)
}
