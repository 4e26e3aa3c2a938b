package out

import (
	"context"
	"time"

	"payrecon/internal/application/dto"
	apperrors "payrecon/internal/shared_kernel/errors"
)

type ScheduleRepository interface {
	Save(ctx context.Context, schedule dto.ScheduleView) *apperrors.AppError
	List(ctx context.Context, channel string) ([]dto.ScheduleView, *apperrors.AppError)
	Delete(ctx context.Context, scheduleID string) *apperrors.AppError
	// ClaimDue leases enabled schedules whose next_run_at has passed. A
	// claimed row is invisible to other workers until its lease expires,
	// so two scheduler instances never run the same channel concurrently.
	ClaimDue(
		ctx context.Context,
		now time.Time,
		limit int,
		leaseOwner string,
		leaseUntil time.Time,
	) ([]dto.DueSchedule, *apperrors.AppError)
	// CompleteRun stores the freshly computed next execution instant and
	// releases the lease.
	CompleteRun(ctx context.Context, scheduleID string, nextRunAt time.Time) *apperrors.AppError
}
