package schedule

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	"payrecon/internal/application/dto"
	portsout "payrecon/internal/application/ports/out"
	apperrors "payrecon/internal/shared_kernel/errors"
)

type Repository struct {
	db     *sql.DB
	logger *log.Logger
}

var _ portsout.ScheduleRepository = (*Repository)(nil)

func NewRepository(db *sql.DB, logger *log.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

func (r *Repository) Save(ctx context.Context, schedule dto.ScheduleView) *apperrors.AppError {
	const query = `
INSERT INTO app.reconciliation_schedules (
  id,
  channel,
  frequency,
  day_of_week,
  day_of_month,
  hour,
  minute,
  enabled,
  apply_mode,
  batch_size,
  next_run_at,
  created_at,
  updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
ON CONFLICT (id) DO UPDATE
SET
  channel = EXCLUDED.channel,
  frequency = EXCLUDED.frequency,
  day_of_week = EXCLUDED.day_of_week,
  day_of_month = EXCLUDED.day_of_month,
  hour = EXCLUDED.hour,
  minute = EXCLUDED.minute,
  enabled = EXCLUDED.enabled,
  apply_mode = EXCLUDED.apply_mode,
  batch_size = EXCLUDED.batch_size,
  next_run_at = EXCLUDED.next_run_at,
  updated_at = now()
`

	_, err := r.db.ExecContext(
		ctx,
		query,
		schedule.ID,
		schedule.Channel,
		schedule.Frequency,
		schedule.DayOfWeek,
		schedule.DayOfMonth,
		schedule.Hour,
		schedule.Minute,
		schedule.Enabled,
		schedule.ApplyMode,
		schedule.BatchSize,
		schedule.NextRunAt.UTC(),
	)
	if err != nil {
		return apperrors.NewInternal(
			"schedule_save_failed",
			"failed to save reconciliation schedule",
			map[string]any{"error": err.Error(), "schedule_id": schedule.ID},
		)
	}

	return nil
}

func (r *Repository) List(ctx context.Context, channel string) ([]dto.ScheduleView, *apperrors.AppError) {
	const query = `
SELECT
  id,
  channel,
  frequency,
  day_of_week,
  day_of_month,
  hour,
  minute,
  enabled,
  apply_mode,
  batch_size,
  next_run_at
FROM app.reconciliation_schedules
WHERE ($1 = '' OR channel = $1)
ORDER BY channel ASC, next_run_at ASC, id ASC
`

	rows, err := r.db.QueryContext(ctx, query, strings.TrimSpace(channel))
	if err != nil {
		return nil, apperrors.NewInternal(
			"schedule_query_failed",
			"failed to list reconciliation schedules",
			map[string]any{"error": err.Error()},
		)
	}
	defer rows.Close()

	schedules := make([]dto.ScheduleView, 0, 16)
	for rows.Next() {
		var (
			schedule   dto.ScheduleView
			dayOfWeek  sql.NullInt64
			dayOfMonth sql.NullInt64
		)

		if err := rows.Scan(
			&schedule.ID,
			&schedule.Channel,
			&schedule.Frequency,
			&dayOfWeek,
			&dayOfMonth,
			&schedule.Hour,
			&schedule.Minute,
			&schedule.Enabled,
			&schedule.ApplyMode,
			&schedule.BatchSize,
			&schedule.NextRunAt,
		); err != nil {
			return nil, apperrors.NewInternal(
				"schedule_query_failed",
				"failed to parse reconciliation schedule row",
				map[string]any{"error": err.Error()},
			)
		}

		if dayOfWeek.Valid {
			value := int(dayOfWeek.Int64)
			schedule.DayOfWeek = &value
		}
		if dayOfMonth.Valid {
			value := int(dayOfMonth.Int64)
			schedule.DayOfMonth = &value
		}
		schedule.NextRunAt = schedule.NextRunAt.UTC()

		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternal(
			"schedule_query_failed",
			"failed while iterating reconciliation schedules",
			map[string]any{"error": err.Error()},
		)
	}

	return schedules, nil
}

func (r *Repository) Delete(ctx context.Context, scheduleID string) *apperrors.AppError {
	const query = `
DELETE FROM app.reconciliation_schedules
WHERE id = $1
`

	result, err := r.db.ExecContext(ctx, query, strings.TrimSpace(scheduleID))
	if err != nil {
		return apperrors.NewInternal(
			"schedule_delete_failed",
			"failed to delete reconciliation schedule",
			map[string]any{"error": err.Error(), "schedule_id": scheduleID},
		)
	}

	if affected, affectedErr := result.RowsAffected(); affectedErr == nil && affected == 0 {
		return apperrors.NewNotFound(
			"schedule_not_found",
			"reconciliation schedule not found",
			map[string]any{"schedule_id": scheduleID},
		)
	}

	return nil
}

func (r *Repository) ClaimDue(
	ctx context.Context,
	now time.Time,
	limit int,
	leaseOwner string,
	leaseUntil time.Time,
) ([]dto.DueSchedule, *apperrors.AppError) {
	const query = `
WITH candidates AS (
  SELECT id
  FROM app.reconciliation_schedules
  WHERE enabled = TRUE
    AND next_run_at <= $1
    AND (lease_until IS NULL OR lease_until <= $1)
  ORDER BY next_run_at ASC, id ASC
  LIMIT $2
  FOR UPDATE SKIP LOCKED
)
UPDATE app.reconciliation_schedules AS s
SET
  lease_owner = $3,
  lease_until = $4,
  updated_at = $1
FROM candidates
WHERE s.id = candidates.id
RETURNING
  s.id,
  s.channel,
  s.frequency,
  s.day_of_week,
  s.day_of_month,
  s.hour,
  s.minute,
  s.apply_mode,
  s.batch_size,
  s.next_run_at
`

	rows, err := r.db.QueryContext(
		ctx,
		query,
		now.UTC(),
		limit,
		strings.TrimSpace(leaseOwner),
		leaseUntil.UTC(),
	)
	if err != nil {
		return nil, apperrors.NewInternal(
			"schedule_claim_failed",
			"failed to claim due reconciliation schedules",
			map[string]any{"error": err.Error()},
		)
	}
	defer rows.Close()

	claimed := make([]dto.DueSchedule, 0, limit)
	for rows.Next() {
		var (
			schedule   dto.DueSchedule
			dayOfWeek  sql.NullInt64
			dayOfMonth sql.NullInt64
		)

		if err := rows.Scan(
			&schedule.ID,
			&schedule.Channel,
			&schedule.Frequency,
			&dayOfWeek,
			&dayOfMonth,
			&schedule.Hour,
			&schedule.Minute,
			&schedule.ApplyMode,
			&schedule.BatchSize,
			&schedule.NextRunAt,
		); err != nil {
			return nil, apperrors.NewInternal(
				"schedule_claim_failed",
				"failed to parse claimed schedule row",
				map[string]any{"error": err.Error()},
			)
		}

		if dayOfWeek.Valid {
			value := int(dayOfWeek.Int64)
			schedule.DayOfWeek = &value
		}
		if dayOfMonth.Valid {
			value := int(dayOfMonth.Int64)
			schedule.DayOfMonth = &value
		}
		schedule.NextRunAt = schedule.NextRunAt.UTC()

		claimed = append(claimed, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternal(
			"schedule_claim_failed",
			"failed while iterating claimed schedules",
			map[string]any{"error": err.Error()},
		)
	}

	if r.logger != nil && len(claimed) > 0 {
		r.logger.Printf("schedules claimed count=%d lease_owner=%s", len(claimed), leaseOwner)
	}

	return claimed, nil
}

func (r *Repository) CompleteRun(ctx context.Context, scheduleID string, nextRunAt time.Time) *apperrors.AppError {
	const query = `
UPDATE app.reconciliation_schedules
SET
  next_run_at = $2,
  lease_owner = NULL,
  lease_until = NULL,
  updated_at = now()
WHERE id = $1
`

	_, err := r.db.ExecContext(ctx, query, strings.TrimSpace(scheduleID), nextRunAt.UTC())
	if err != nil {
		return apperrors.NewInternal(
			"schedule_update_failed",
			"failed to store next schedule run",
			map[string]any{"error": err.Error(), "schedule_id": scheduleID},
		)
	}

	return nil
}
