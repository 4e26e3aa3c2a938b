package in

import (
	"context"

	"payrecon/internal/application/dto"
	apperrors "payrecon/internal/shared_kernel/errors"
)

type GetHealthUseCase interface {
	Execute(ctx context.Context, command dto.GetHealthCommand) (dto.HealthOutput, *apperrors.AppError)
}
