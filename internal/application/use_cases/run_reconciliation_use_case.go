package use_cases

import (
	"context"
	"log"
	"strings"
	"time"

	"payrecon/internal/application/dto"
	portsin "payrecon/internal/application/ports/in"
	portsout "payrecon/internal/application/ports/out"
	"payrecon/internal/domain/entities"
	"payrecon/internal/domain/policies"
	valueobjects "payrecon/internal/domain/value_objects"
	"payrecon/internal/shared_kernel/batch"
	apperrors "payrecon/internal/shared_kernel/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RunReconciliationOptions struct {
	// InterBatchDelay and BatchTimeout are handed through to the batch
	// runner of batched runs.
	InterBatchDelay time.Duration
	BatchTimeout    time.Duration
}

type runReconciliationUseCase struct {
	ledger   portsout.TransactionLedgerRepository
	remote   portsout.ProcessorLedgerGateway
	runs     portsout.ReconciliationRunRepository
	notifier portsout.RunNotificationGateway
	registry *RunRegistry
	clock    Clock
	options  RunReconciliationOptions
	logger   *log.Logger
}

func NewRunReconciliationUseCase(
	ledger portsout.TransactionLedgerRepository,
	remote portsout.ProcessorLedgerGateway,
	runs portsout.ReconciliationRunRepository,
	notifier portsout.RunNotificationGateway,
	registry *RunRegistry,
	clock Clock,
	options RunReconciliationOptions,
	logger *log.Logger,
) portsin.RunReconciliationUseCase {
	return &runReconciliationUseCase{
		ledger:   ledger,
		remote:   remote,
		runs:     runs,
		notifier: notifier,
		registry: registry,
		clock:    clock,
		options:  options,
		logger:   logger,
	}
}

func (u *runReconciliationUseCase) logf(format string, args ...any) {
	if u.logger != nil {
		u.logger.Printf(format, args...)
	}
}

func (u *runReconciliationUseCase) Execute(
	ctx context.Context,
	command dto.RunReconciliationCommand,
) (dto.RunReconciliationOutput, *apperrors.AppError) {
	if u.ledger == nil || u.remote == nil || u.runs == nil {
		return dto.RunReconciliationOutput{}, apperrors.NewInternal(
			"reconciliation_dependencies_missing",
			"ledger repository, processor gateway and run repository are required",
			nil,
		)
	}

	channel := strings.TrimSpace(command.Channel)
	if channel == "" {
		return dto.RunReconciliationOutput{}, apperrors.NewValidation(
			"reconciliation_channel_missing",
			"payment channel is required",
			nil,
		)
	}
	if !command.WindowEnd.After(command.WindowStart) {
		return dto.RunReconciliationOutput{}, apperrors.NewValidation(
			"reconciliation_window_invalid",
			"window end must be after window start",
			map[string]any{
				"window_start": command.WindowStart,
				"window_end":   command.WindowEnd,
			},
		)
	}
	applyMode, appErr := valueobjects.ParseApplyMode(strings.TrimSpace(command.ApplyMode))
	if appErr != nil {
		return dto.RunReconciliationOutput{}, appErr
	}
	if applyMode == valueobjects.ApplyModeBatched && command.BatchSize <= 0 {
		return dto.RunReconciliationOutput{}, apperrors.NewValidation(
			"reconciliation_batch_size_invalid",
			"batched runs require a batch size greater than zero",
			map[string]any{"batch_size": command.BatchSize},
		)
	}

	now := command.Now.UTC()
	if command.Now.IsZero() {
		now = u.clock.NowUTC()
	}
	runID := strings.TrimSpace(command.RunID)
	if runID == "" {
		runID = uuid.New().String()
	}

	local, appErr := u.ledger.ListByWindow(ctx, channel, command.WindowStart, command.WindowEnd)
	if appErr != nil {
		return dto.RunReconciliationOutput{}, appErr
	}
	remote, appErr := u.remote.FetchTransactions(ctx, channel, command.WindowStart, command.WindowEnd)
	if appErr != nil {
		return dto.RunReconciliationOutput{}, appErr
	}

	diff := policies.DiffTransactions(local, remote)
	correctionIDs := diff.CorrectionIDs()

	totalAmount := decimal.Zero
	remoteByID := make(map[string]entities.TransactionRecord, len(remote))
	for _, record := range remote {
		totalAmount = totalAmount.Add(record.Amount)
		remoteByID[record.TransactionID] = record
	}

	run := dto.ReconciliationRunView{
		ID:              runID,
		Channel:         channel,
		ScheduleID:      strings.TrimSpace(command.ScheduleID),
		Status:          valueobjects.RunStatusRunning.String(),
		ApplyMode:       applyMode.String(),
		WindowStart:     command.WindowStart.UTC(),
		WindowEnd:       command.WindowEnd.UTC(),
		MissingCount:    len(diff.Missing),
		MismatchedCount: len(diff.Mismatched),
		MatchedCount:    len(diff.Matched),
		TotalAmount:     totalAmount,
		TotalItems:      len(correctionIDs),
		StartedAt:       now,
	}
	if appErr := u.runs.InsertRun(ctx, run); appErr != nil {
		return dto.RunReconciliationOutput{}, appErr
	}

	output := dto.RunReconciliationOutput{
		RunID:       runID,
		Missing:     len(diff.Missing),
		Mismatched:  len(diff.Mismatched),
		Matched:     len(diff.Matched),
		TotalAmount: totalAmount,
	}

	corrections := make([]entities.TransactionRecord, 0, len(correctionIDs))
	for _, id := range correctionIDs {
		corrections = append(corrections, remoteByID[id])
	}

	switch applyMode {
	case valueobjects.ApplyModeReportOnly:
		diffView := dto.NewDiffResultView(diff)
		output.Diff = &diffView
		return u.finish(ctx, run, output, valueobjects.RunStatusSucceeded, 0, 0, "")
	case valueobjects.ApplyModeBulk:
		outcomes, applyErr := u.ledger.ApplyCorrections(ctx, corrections)
		if applyErr != nil {
			finished, _ := u.finish(ctx, run, output, valueobjects.RunStatusFailed, len(outcomes), len(outcomes), applyErr.Code)
			return finished, applyErr
		}
		return u.finish(ctx, run, output, valueobjects.RunStatusSucceeded, len(outcomes), len(outcomes), "")
	default:
		return u.executeBatched(ctx, run, output, corrections, command.BatchSize)
	}
}

func (u *runReconciliationUseCase) executeBatched(
	ctx context.Context,
	run dto.ReconciliationRunView,
	output dto.RunReconciliationOutput,
	corrections []entities.TransactionRecord,
	batchSize int,
) (dto.RunReconciliationOutput, *apperrors.AppError) {
	runner := batch.NewRunner[entities.TransactionRecord, dto.CorrectionOutcome](batch.Options{
		InterBatchDelay: u.options.InterBatchDelay,
		BatchTimeout:    u.options.BatchTimeout,
	})
	if u.registry != nil {
		u.registry.Register(run.ID, runner.Cancel)
		defer u.registry.Unregister(run.ID)
	}

	processed := 0
	batchesComplete := 0
	outcomes, runErr := runner.Run(
		ctx,
		corrections,
		batchSize,
		func(chunkCtx context.Context, chunk []entities.TransactionRecord, batchIndex int) ([]dto.CorrectionOutcome, *apperrors.AppError) {
			return u.ledger.ApplyCorrections(chunkCtx, chunk)
		},
		func(progress batch.Progress) {
			processed = progress.ProcessedItems
			batchesComplete = progress.CurrentBatch
			output.TotalBatches = progress.TotalBatches
			// Progress persistence is advisory; a failed write must not
			// abort the run.
			if appErr := u.runs.UpdateProgress(ctx, dto.RunProgressUpdate{
				RunID:                     run.ID,
				ProcessedItems:            progress.ProcessedItems,
				TotalItems:                progress.TotalItems,
				CurrentBatch:              progress.CurrentBatch,
				TotalBatches:              progress.TotalBatches,
				PercentComplete:           progress.PercentComplete,
				EstimatedSecondsRemaining: progress.EstimatedSecondsRemaining,
				UpdatedAt:                 u.clock.NowUTC(),
			}); appErr != nil {
				u.logf("run progress write failed run_id=%s batch=%d code=%s", run.ID, progress.CurrentBatch, appErr.Code)
			}
		},
	)
	output.BatchesComplete = batchesComplete

	if runErr != nil {
		status := valueobjects.RunStatusFailed
		if processed > 0 {
			status = valueobjects.RunStatusPartial
		}
		finished, _ := u.finish(ctx, run, output, status, processed, processed, runErr.Code)
		return finished, runErr
	}

	if runner.Cancelled() || ctx.Err() != nil {
		return u.finish(ctx, run, output, valueobjects.RunStatusCancelled, len(outcomes), processed, "")
	}

	return u.finish(ctx, run, output, valueobjects.RunStatusSucceeded, len(outcomes), processed, "")
}

func (u *runReconciliationUseCase) finish(
	ctx context.Context,
	run dto.ReconciliationRunView,
	output dto.RunReconciliationOutput,
	status valueobjects.RunStatus,
	corrected int,
	processed int,
	errorCode string,
) (dto.RunReconciliationOutput, *apperrors.AppError) {
	finishedAt := u.clock.NowUTC()
	appErr := u.runs.FinishRun(ctx, dto.FinishRunCommand{
		RunID:          run.ID,
		Status:         status.String(),
		CorrectedCount: corrected,
		ProcessedItems: processed,
		ErrorCode:      errorCode,
		FinishedAt:     finishedAt,
	})
	if appErr != nil {
		return dto.RunReconciliationOutput{}, appErr
	}

	output.Status = status.String()
	output.Corrected = corrected
	output.ErrorCode = errorCode

	if u.notifier != nil {
		// Best effort; the run outcome is already durable.
		if appErr := u.notifier.NotifyRunCompleted(ctx, dto.RunCompletedNotification{
			RunID:           run.ID,
			Channel:         run.Channel,
			Status:          status.String(),
			MissingCount:    output.Missing,
			MismatchedCount: output.Mismatched,
			MatchedCount:    output.Matched,
			CorrectedCount:  corrected,
			TotalAmount:     output.TotalAmount,
			FinishedAt:      finishedAt,
		}); appErr != nil {
			u.logf("run completed notification failed run_id=%s code=%s", run.ID, appErr.Code)
		}
	}

	return output, nil
}
