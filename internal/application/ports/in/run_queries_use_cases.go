package in

import (
	"context"

	"payrecon/internal/application/dto"
	apperrors "payrecon/internal/shared_kernel/errors"
)

type GetRunUseCase interface {
	Execute(ctx context.Context, query dto.GetRunQuery) (dto.ReconciliationRunView, *apperrors.AppError)
}

type ListRunsUseCase interface {
	Execute(ctx context.Context, query dto.ListRunsQuery) (dto.ListRunsOutput, *apperrors.AppError)
}

type CancelRunUseCase interface {
	Execute(ctx context.Context, command dto.CancelRunCommand) (dto.CancelRunOutput, *apperrors.AppError)
}
