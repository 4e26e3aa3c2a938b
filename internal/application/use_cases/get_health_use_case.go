package use_cases

import (
	"context"

	"payrecon/internal/application/dto"
	portsin "payrecon/internal/application/ports/in"
	valueobjects "payrecon/internal/domain/value_objects"
	apperrors "payrecon/internal/shared_kernel/errors"
)

type getHealthUseCase struct{}

func NewGetHealthUseCase() portsin.GetHealthUseCase {
	return &getHealthUseCase{}
}

func (u *getHealthUseCase) Execute(_ context.Context, _ dto.GetHealthCommand) (dto.HealthOutput, *apperrors.AppError) {
	status := valueobjects.NewHealthyStatus()

	return dto.HealthOutput{
		Status: status.String(),
	}, nil
}
