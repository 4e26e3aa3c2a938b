package use_cases

import (
	"context"
	"strings"
	"time"

	"payrecon/internal/application/dto"
	portsin "payrecon/internal/application/ports/in"
	portsout "payrecon/internal/application/ports/out"
	"payrecon/internal/domain/policies"
	valueobjects "payrecon/internal/domain/value_objects"
	apperrors "payrecon/internal/shared_kernel/errors"
)

// reconcileLookback bounds the transaction window of a scheduled run when
// no tighter bound is configured.
const defaultReconcileLookback = 24 * time.Hour

type triggerDueSchedulesUseCase struct {
	schedules portsout.ScheduleRepository
	runner    portsin.RunReconciliationUseCase
	clock     Clock
	lookback  time.Duration
}

func NewTriggerDueSchedulesUseCase(
	schedules portsout.ScheduleRepository,
	runner portsin.RunReconciliationUseCase,
	clock Clock,
	lookback time.Duration,
) portsin.TriggerDueSchedulesUseCase {
	if lookback <= 0 {
		lookback = defaultReconcileLookback
	}
	return &triggerDueSchedulesUseCase{
		schedules: schedules,
		runner:    runner,
		clock:     clock,
		lookback:  lookback,
	}
}

func (u *triggerDueSchedulesUseCase) Execute(
	ctx context.Context,
	command dto.TriggerDueSchedulesCommand,
) (dto.TriggerDueSchedulesOutput, *apperrors.AppError) {
	if u.schedules == nil || u.runner == nil {
		return dto.TriggerDueSchedulesOutput{}, apperrors.NewInternal(
			"schedule_dependencies_missing",
			"schedule repository and run use case are required",
			nil,
		)
	}
	if command.Limit <= 0 {
		return dto.TriggerDueSchedulesOutput{}, apperrors.NewValidation(
			"schedule_claim_limit_invalid",
			"schedule claim limit must be greater than zero",
			map[string]any{"limit": command.Limit},
		)
	}
	workerID := strings.TrimSpace(command.WorkerID)
	if workerID == "" {
		return dto.TriggerDueSchedulesOutput{}, apperrors.NewValidation(
			"schedule_worker_id_invalid",
			"schedule worker id is required",
			nil,
		)
	}
	if command.LeaseDuration <= 0 {
		return dto.TriggerDueSchedulesOutput{}, apperrors.NewValidation(
			"schedule_lease_duration_invalid",
			"schedule lease duration must be greater than zero",
			map[string]any{"lease_duration": command.LeaseDuration.String()},
		)
	}

	now := command.Now.UTC()
	if command.Now.IsZero() {
		now = u.clock.NowUTC()
	}
	leaseUntil := now.Add(command.LeaseDuration)

	due, appErr := u.schedules.ClaimDue(ctx, now, command.Limit, workerID, leaseUntil)
	if appErr != nil {
		return dto.TriggerDueSchedulesOutput{}, appErr
	}

	output := dto.TriggerDueSchedulesOutput{Claimed: len(due)}
	for _, schedule := range due {
		output.Triggered++

		_, runErr := u.runner.Execute(ctx, dto.RunReconciliationCommand{
			Now:         now,
			Channel:     schedule.Channel,
			WindowStart: now.Add(-u.lookback),
			WindowEnd:   now,
			ApplyMode:   schedule.ApplyMode,
			BatchSize:   schedule.BatchSize,
			ScheduleID:  schedule.ID,
		})
		if runErr != nil {
			output.Failed++
		} else {
			output.Succeeded++
		}

		config, configErr := valueobjects.NewScheduleConfig(valueobjects.NewScheduleConfigInput{
			Frequency:  schedule.Frequency,
			DayOfWeek:  schedule.DayOfWeek,
			DayOfMonth: schedule.DayOfMonth,
			Hour:       schedule.Hour,
			Minute:     schedule.Minute,
		})
		if configErr != nil {
			// A stored schedule that no longer validates would re-fire on
			// every sweep; stop and surface it.
			return output, configErr
		}

		if completeErr := u.schedules.CompleteRun(ctx, schedule.ID, policies.NextRun(config, now)); completeErr != nil {
			return output, completeErr
		}
	}

	return output, nil
}
