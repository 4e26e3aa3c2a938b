package reconciliationrun

import (
	"context"
	"database/sql"
	"log"
	"strings"

	"payrecon/internal/application/dto"
	portsout "payrecon/internal/application/ports/out"
	valueobjects "payrecon/internal/domain/value_objects"
	apperrors "payrecon/internal/shared_kernel/errors"

	"github.com/shopspring/decimal"
)

type Repository struct {
	db     *sql.DB
	logger *log.Logger
}

var _ portsout.ReconciliationRunRepository = (*Repository)(nil)

func NewRepository(db *sql.DB, logger *log.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

func (r *Repository) InsertRun(ctx context.Context, run dto.ReconciliationRunView) *apperrors.AppError {
	const query = `
INSERT INTO app.reconciliation_runs (
  id,
  channel,
  schedule_id,
  status,
  apply_mode,
  window_start,
  window_end,
  missing_count,
  mismatched_count,
  matched_count,
  corrected_count,
  total_amount,
  processed_items,
  total_items,
  started_at,
  updated_at
) VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, 0, $11, 0, $12, $13, $13)
`

	_, err := r.db.ExecContext(
		ctx,
		query,
		run.ID,
		run.Channel,
		strings.TrimSpace(run.ScheduleID),
		run.Status,
		run.ApplyMode,
		run.WindowStart.UTC(),
		run.WindowEnd.UTC(),
		run.MissingCount,
		run.MismatchedCount,
		run.MatchedCount,
		run.TotalAmount.String(),
		run.TotalItems,
		run.StartedAt.UTC(),
	)
	if err != nil {
		return apperrors.NewInternal(
			"reconciliation_run_insert_failed",
			"failed to insert reconciliation run",
			map[string]any{"error": err.Error(), "run_id": run.ID},
		)
	}

	return nil
}

func (r *Repository) UpdateProgress(ctx context.Context, update dto.RunProgressUpdate) *apperrors.AppError {
	const query = `
UPDATE app.reconciliation_runs
SET
  processed_items = $2,
  total_items = $3,
  current_batch = $4,
  total_batches = $5,
  percent_complete = $6,
  estimated_seconds_remaining = $7,
  updated_at = $8
WHERE id = $1
`

	_, err := r.db.ExecContext(
		ctx,
		query,
		update.RunID,
		update.ProcessedItems,
		update.TotalItems,
		update.CurrentBatch,
		update.TotalBatches,
		update.PercentComplete,
		update.EstimatedSecondsRemaining,
		update.UpdatedAt.UTC(),
	)
	if err != nil {
		return apperrors.NewInternal(
			"reconciliation_run_update_failed",
			"failed to update reconciliation run progress",
			map[string]any{"error": err.Error(), "run_id": update.RunID},
		)
	}

	return nil
}

func (r *Repository) FinishRun(ctx context.Context, command dto.FinishRunCommand) *apperrors.AppError {
	const query = `
UPDATE app.reconciliation_runs
SET
  status = $2,
  corrected_count = $3,
  processed_items = $4,
  error_code = NULLIF($5, ''),
  finished_at = $6,
  updated_at = $6
WHERE id = $1
`

	result, err := r.db.ExecContext(
		ctx,
		query,
		command.RunID,
		command.Status,
		command.CorrectedCount,
		command.ProcessedItems,
		strings.TrimSpace(command.ErrorCode),
		command.FinishedAt.UTC(),
	)
	if err != nil {
		return apperrors.NewInternal(
			"reconciliation_run_update_failed",
			"failed to finish reconciliation run",
			map[string]any{"error": err.Error(), "run_id": command.RunID},
		)
	}

	if affected, affectedErr := result.RowsAffected(); affectedErr == nil && affected == 0 {
		return apperrors.NewNotFound(
			"run_not_found",
			"reconciliation run not found",
			map[string]any{"run_id": command.RunID},
		)
	}

	return nil
}

func (r *Repository) GetRun(ctx context.Context, runID string) (dto.ReconciliationRunView, *apperrors.AppError) {
	const query = runSelectColumns + `
WHERE id = $1
`

	return scanRun(r.db.QueryRowContext(ctx, query, runID))
}

func (r *Repository) ListRuns(
	ctx context.Context,
	query dto.ListRunsQuery,
) ([]dto.ReconciliationRunView, *apperrors.AppError) {
	const listQuery = runSelectColumns + `
WHERE ($1 = '' OR channel = $1)
ORDER BY started_at DESC, id DESC
LIMIT $2
`

	rows, err := r.db.QueryContext(ctx, listQuery, strings.TrimSpace(query.Channel), query.Limit)
	if err != nil {
		return nil, apperrors.NewInternal(
			"reconciliation_run_query_failed",
			"failed to list reconciliation runs",
			map[string]any{"error": err.Error()},
		)
	}
	defer rows.Close()

	runs := make([]dto.ReconciliationRunView, 0, query.Limit)
	for rows.Next() {
		run, appErr := scanRun(rows)
		if appErr != nil {
			return nil, appErr
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternal(
			"reconciliation_run_query_failed",
			"failed while iterating reconciliation runs",
			map[string]any{"error": err.Error()},
		)
	}

	return runs, nil
}

const runSelectColumns = `
SELECT
  id,
  channel,
  schedule_id,
  status,
  apply_mode,
  window_start,
  window_end,
  missing_count,
  mismatched_count,
  matched_count,
  corrected_count,
  total_amount::text,
  processed_items,
  total_items,
  error_code,
  started_at,
  finished_at
FROM app.reconciliation_runs
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(scanner rowScanner) (dto.ReconciliationRunView, *apperrors.AppError) {
	var (
		run        dto.ReconciliationRunView
		scheduleID sql.NullString
		amountText string
		errorCode  sql.NullString
		finishedAt sql.NullTime
	)

	if err := scanner.Scan(
		&run.ID,
		&run.Channel,
		&scheduleID,
		&run.Status,
		&run.ApplyMode,
		&run.WindowStart,
		&run.WindowEnd,
		&run.MissingCount,
		&run.MismatchedCount,
		&run.MatchedCount,
		&run.CorrectedCount,
		&amountText,
		&run.ProcessedItems,
		&run.TotalItems,
		&errorCode,
		&run.StartedAt,
		&finishedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return dto.ReconciliationRunView{}, apperrors.NewNotFound(
				"run_not_found",
				"reconciliation run not found",
				nil,
			)
		}
		return dto.ReconciliationRunView{}, apperrors.NewInternal(
			"reconciliation_run_scan_failed",
			"failed to parse reconciliation run row",
			map[string]any{"error": err.Error()},
		)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(amountText))
	if err != nil {
		return dto.ReconciliationRunView{}, apperrors.NewInternal(
			"reconciliation_run_scan_failed",
			"stored run amount is not a valid decimal",
			map[string]any{"error": err.Error(), "run_id": run.ID},
		)
	}

	if _, appErr := valueobjects.ParseRunStatus(run.Status); appErr != nil {
		return dto.ReconciliationRunView{}, apperrors.NewInternal(
			"reconciliation_run_scan_failed",
			"stored run status is not a known run status",
			map[string]any{"status": run.Status, "run_id": run.ID},
		)
	}

	run.TotalAmount = amount
	run.ScheduleID = scheduleID.String
	run.ErrorCode = errorCode.String
	run.WindowStart = run.WindowStart.UTC()
	run.WindowEnd = run.WindowEnd.UTC()
	run.StartedAt = run.StartedAt.UTC()
	if finishedAt.Valid {
		finished := finishedAt.Time.UTC()
		run.FinishedAt = &finished
	}

	return run, nil
}
