package out

import (
	"context"

	"payrecon/internal/application/dto"
	apperrors "payrecon/internal/shared_kernel/errors"
)

type ReconciliationRunRepository interface {
	InsertRun(ctx context.Context, run dto.ReconciliationRunView) *apperrors.AppError
	UpdateProgress(ctx context.Context, update dto.RunProgressUpdate) *apperrors.AppError
	FinishRun(ctx context.Context, command dto.FinishRunCommand) *apperrors.AppError
	GetRun(ctx context.Context, runID string) (dto.ReconciliationRunView, *apperrors.AppError)
	ListRuns(ctx context.Context, query dto.ListRunsQuery) ([]dto.ReconciliationRunView, *apperrors.AppError)
}
