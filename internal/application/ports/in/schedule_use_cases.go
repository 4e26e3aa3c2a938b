package in

import (
	"context"

	"payrecon/internal/application/dto"
	apperrors "payrecon/internal/shared_kernel/errors"
)

type SaveScheduleUseCase interface {
	Execute(ctx context.Context, command dto.SaveScheduleCommand) (dto.ScheduleView, *apperrors.AppError)
}

type ListSchedulesUseCase interface {
	Execute(ctx context.Context, query dto.ListSchedulesQuery) (dto.ListSchedulesOutput, *apperrors.AppError)
}

type DeleteScheduleUseCase interface {
	Execute(ctx context.Context, command dto.DeleteScheduleCommand) *apperrors.AppError
}

type TriggerDueSchedulesUseCase interface {
	Execute(ctx context.Context, command dto.TriggerDueSchedulesCommand) (dto.TriggerDueSchedulesOutput, *apperrors.AppError)
}
