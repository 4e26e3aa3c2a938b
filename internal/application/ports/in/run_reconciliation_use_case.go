package in

import (
	"context"

	"payrecon/internal/application/dto"
	apperrors "payrecon/internal/shared_kernel/errors"
)

type RunReconciliationUseCase interface {
	Execute(ctx context.Context, command dto.RunReconciliationCommand) (dto.RunReconciliationOutput, *apperrors.AppError)
}
