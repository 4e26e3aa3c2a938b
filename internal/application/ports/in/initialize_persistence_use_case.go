package in

import (
	"context"

	"payrecon/internal/application/dto"
	apperrors "payrecon/internal/shared_kernel/errors"
)

type InitializePersistenceUseCase interface {
	Execute(ctx context.Context, command dto.InitializePersistenceCommand) *apperrors.AppError
}
