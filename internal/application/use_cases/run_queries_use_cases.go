package use_cases

import (
	"context"
	"strings"

	"payrecon/internal/application/dto"
	portsin "payrecon/internal/application/ports/in"
	portsout "payrecon/internal/application/ports/out"
	valueobjects "payrecon/internal/domain/value_objects"
	apperrors "payrecon/internal/shared_kernel/errors"
)

type getRunUseCase struct {
	runs portsout.ReconciliationRunRepository
}

func NewGetRunUseCase(runs portsout.ReconciliationRunRepository) portsin.GetRunUseCase {
	return &getRunUseCase{runs: runs}
}

func (u *getRunUseCase) Execute(
	ctx context.Context,
	query dto.GetRunQuery,
) (dto.ReconciliationRunView, *apperrors.AppError) {
	runID := strings.TrimSpace(query.RunID)
	if runID == "" {
		return dto.ReconciliationRunView{}, apperrors.NewValidation(
			"run_id_missing",
			"run id is required",
			nil,
		)
	}

	return u.runs.GetRun(ctx, runID)
}

type listRunsUseCase struct {
	runs portsout.ReconciliationRunRepository
}

func NewListRunsUseCase(runs portsout.ReconciliationRunRepository) portsin.ListRunsUseCase {
	return &listRunsUseCase{runs: runs}
}

const defaultListRunsLimit = 50

func (u *listRunsUseCase) Execute(
	ctx context.Context,
	query dto.ListRunsQuery,
) (dto.ListRunsOutput, *apperrors.AppError) {
	if query.Limit <= 0 {
		query.Limit = defaultListRunsLimit
	}
	query.Channel = strings.TrimSpace(query.Channel)

	runs, appErr := u.runs.ListRuns(ctx, query)
	if appErr != nil {
		return dto.ListRunsOutput{}, appErr
	}

	return dto.ListRunsOutput{Runs: runs}, nil
}

type cancelRunUseCase struct {
	runs     portsout.ReconciliationRunRepository
	registry *RunRegistry
}

func NewCancelRunUseCase(runs portsout.ReconciliationRunRepository, registry *RunRegistry) portsin.CancelRunUseCase {
	return &cancelRunUseCase{runs: runs, registry: registry}
}

func (u *cancelRunUseCase) Execute(
	ctx context.Context,
	command dto.CancelRunCommand,
) (dto.CancelRunOutput, *apperrors.AppError) {
	runID := strings.TrimSpace(command.RunID)
	if runID == "" {
		return dto.CancelRunOutput{}, apperrors.NewValidation(
			"run_id_missing",
			"run id is required",
			nil,
		)
	}

	run, appErr := u.runs.GetRun(ctx, runID)
	if appErr != nil {
		return dto.CancelRunOutput{}, appErr
	}

	status, appErr := valueobjects.ParseRunStatus(run.Status)
	if appErr != nil {
		return dto.CancelRunOutput{}, appErr
	}
	if status.IsTerminal() {
		return dto.CancelRunOutput{}, apperrors.NewConflict(
			"run_not_cancellable",
			"run already finished",
			map[string]any{"run_id": runID, "status": run.Status},
		)
	}

	if !u.registry.Cancel(runID) {
		return dto.CancelRunOutput{}, apperrors.NewConflict(
			"run_not_cancellable",
			"run has no active batched execution to cancel",
			map[string]any{"run_id": runID},
		)
	}

	return dto.CancelRunOutput{RunID: runID, Cancelled: true}, nil
}
