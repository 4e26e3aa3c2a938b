//go:build !integration

package use_cases

import (
	"context"
	"testing"
	"time"

	"payrecon/internal/application/dto"
	apperrors "payrecon/internal/shared_kernel/errors"
)

type fakeScheduleRepository struct {
	saved     []dto.ScheduleView
	deleted   []string
	due       []dto.DueSchedule
	claims    []time.Time
	completed map[string]time.Time
	claimErr  *apperrors.AppError
}

func (f *fakeScheduleRepository) Save(_ context.Context, schedule dto.ScheduleView) *apperrors.AppError {
	f.saved = append(f.saved, schedule)
	return nil
}

func (f *fakeScheduleRepository) List(_ context.Context, _ string) ([]dto.ScheduleView, *apperrors.AppError) {
	return f.saved, nil
}

func (f *fakeScheduleRepository) Delete(_ context.Context, scheduleID string) *apperrors.AppError {
	f.deleted = append(f.deleted, scheduleID)
	return nil
}

func (f *fakeScheduleRepository) ClaimDue(
	_ context.Context,
	_ time.Time,
	_ int,
	_ string,
	leaseUntil time.Time,
) ([]dto.DueSchedule, *apperrors.AppError) {
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	f.claims = append(f.claims, leaseUntil)
	return f.due, nil
}

func (f *fakeScheduleRepository) CompleteRun(_ context.Context, scheduleID string, nextRunAt time.Time) *apperrors.AppError {
	if f.completed == nil {
		f.completed = make(map[string]time.Time)
	}
	f.completed[scheduleID] = nextRunAt
	return nil
}

type fakeRunner struct {
	commands []dto.RunReconciliationCommand
	err      *apperrors.AppError
}

func (f *fakeRunner) Execute(
	_ context.Context,
	command dto.RunReconciliationCommand,
) (dto.RunReconciliationOutput, *apperrors.AppError) {
	f.commands = append(f.commands, command)
	if f.err != nil {
		return dto.RunReconciliationOutput{}, f.err
	}
	return dto.RunReconciliationOutput{RunID: "run-1", Status: "succeeded"}, nil
}

func TestSaveScheduleRejectsMissingChannel(t *testing.T) {
	useCase := NewSaveScheduleUseCase(&fakeScheduleRepository{}, fixedClock{time.Now().UTC()})

	_, appErr := useCase.Execute(context.Background(), dto.SaveScheduleCommand{
		Frequency: "daily",
		ApplyMode: "report_only",
	})
	if appErr == nil || appErr.Code != "schedule_channel_missing" {
		t.Fatalf("expected schedule_channel_missing, got %+v", appErr)
	}
}

func TestSaveScheduleRejectsBatchedWithoutBatchSize(t *testing.T) {
	useCase := NewSaveScheduleUseCase(&fakeScheduleRepository{}, fixedClock{time.Now().UTC()})

	_, appErr := useCase.Execute(context.Background(), dto.SaveScheduleCommand{
		Channel:   "card-gateway",
		Frequency: "daily",
		Hour:      2,
		ApplyMode: "batched",
	})
	if appErr == nil || appErr.Code != "schedule_batch_size_invalid" {
		t.Fatalf("expected schedule_batch_size_invalid, got %+v", appErr)
	}
}

func TestSaveScheduleComputesNextRun(t *testing.T) {
	schedules := &fakeScheduleRepository{}
	now := time.Date(2026, 3, 3, 6, 0, 0, 0, time.UTC)
	useCase := NewSaveScheduleUseCase(schedules, fixedClock{now})

	dayOfWeek := 1
	view, appErr := useCase.Execute(context.Background(), dto.SaveScheduleCommand{
		Channel:   "card-gateway",
		Frequency: "weekly",
		DayOfWeek: &dayOfWeek,
		Hour:      4,
		Minute:    30,
		Enabled:   true,
		ApplyMode: "bulk",
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}

	if view.ID == "" {
		t.Fatalf("expected a generated schedule id")
	}
	// March 3rd 2026 is a Tuesday; the next Monday 04:30 is March 9th.
	want := time.Date(2026, 3, 9, 4, 30, 0, 0, time.UTC)
	if !view.NextRunAt.Equal(want) {
		t.Fatalf("expected next run %s, got %s", want, view.NextRunAt)
	}
	if view.DayOfWeek == nil || *view.DayOfWeek != 1 || view.DayOfMonth != nil {
		t.Fatalf("unexpected day fields %+v", view)
	}
	if len(schedules.saved) != 1 {
		t.Fatalf("expected schedule to be saved")
	}
}

func TestDeleteScheduleRequiresID(t *testing.T) {
	useCase := NewDeleteScheduleUseCase(&fakeScheduleRepository{})

	appErr := useCase.Execute(context.Background(), dto.DeleteScheduleCommand{ScheduleID: "  "})
	if appErr == nil || appErr.Code != "schedule_id_missing" {
		t.Fatalf("expected schedule_id_missing, got %+v", appErr)
	}
}

func TestTriggerDueSchedulesValidatesCommand(t *testing.T) {
	useCase := NewTriggerDueSchedulesUseCase(&fakeScheduleRepository{}, &fakeRunner{}, fixedClock{time.Now().UTC()}, 0)

	cases := []struct {
		name     string
		command  dto.TriggerDueSchedulesCommand
		wantCode string
	}{
		{
			name:     "zero limit",
			command:  dto.TriggerDueSchedulesCommand{WorkerID: "w1", LeaseDuration: time.Minute},
			wantCode: "schedule_claim_limit_invalid",
		},
		{
			name:     "blank worker",
			command:  dto.TriggerDueSchedulesCommand{Limit: 5, WorkerID: " ", LeaseDuration: time.Minute},
			wantCode: "schedule_worker_id_invalid",
		},
		{
			name:     "zero lease",
			command:  dto.TriggerDueSchedulesCommand{Limit: 5, WorkerID: "w1"},
			wantCode: "schedule_lease_duration_invalid",
		},
	}
	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			_, appErr := useCase.Execute(context.Background(), testCase.command)
			if appErr == nil || appErr.Code != testCase.wantCode {
				t.Fatalf("expected %s, got %+v", testCase.wantCode, appErr)
			}
		})
	}
}

func TestTriggerDueSchedulesRunsAndReschedules(t *testing.T) {
	now := time.Date(2026, 3, 3, 2, 0, 0, 0, time.UTC)
	schedules := &fakeScheduleRepository{due: []dto.DueSchedule{
		{
			ID:        "sched-1",
			Channel:   "card-gateway",
			Frequency: "daily",
			Hour:      2,
			Minute:    0,
			ApplyMode: "bulk",
			NextRunAt: now,
		},
	}}
	runner := &fakeRunner{}
	useCase := NewTriggerDueSchedulesUseCase(schedules, runner, fixedClock{now}, 6*time.Hour)

	output, appErr := useCase.Execute(context.Background(), dto.TriggerDueSchedulesCommand{
		Now:           now,
		Limit:         10,
		WorkerID:      "worker-a",
		LeaseDuration: 5 * time.Minute,
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}

	if output.Claimed != 1 || output.Triggered != 1 || output.Succeeded != 1 || output.Failed != 0 {
		t.Fatalf("unexpected output %+v", output)
	}
	if len(schedules.claims) != 1 || !schedules.claims[0].Equal(now.Add(5*time.Minute)) {
		t.Fatalf("unexpected lease claim %+v", schedules.claims)
	}
	if len(runner.commands) != 1 {
		t.Fatalf("expected one reconciliation run")
	}
	command := runner.commands[0]
	if command.Channel != "card-gateway" || command.ScheduleID != "sched-1" || command.ApplyMode != "bulk" {
		t.Fatalf("unexpected run command %+v", command)
	}
	if !command.WindowStart.Equal(now.Add(-6*time.Hour)) || !command.WindowEnd.Equal(now) {
		t.Fatalf("unexpected run window %+v", command)
	}
	// 02:00 daily fired at exactly 02:00 reschedules for tomorrow.
	wantNext := time.Date(2026, 3, 4, 2, 0, 0, 0, time.UTC)
	if next, ok := schedules.completed["sched-1"]; !ok || !next.Equal(wantNext) {
		t.Fatalf("expected next run %s, got %+v", wantNext, schedules.completed)
	}
}

func TestTriggerDueSchedulesCountsFailedRuns(t *testing.T) {
	now := time.Date(2026, 3, 3, 2, 0, 0, 0, time.UTC)
	schedules := &fakeScheduleRepository{due: []dto.DueSchedule{
		{ID: "sched-1", Channel: "card-gateway", Frequency: "daily", Hour: 2, ApplyMode: "bulk"},
		{ID: "sched-2", Channel: "wire-gateway", Frequency: "daily", Hour: 2, ApplyMode: "bulk"},
	}}
	runner := &fakeRunner{err: apperrors.NewInternal("processor_fetch_failed", "boom", nil)}
	useCase := NewTriggerDueSchedulesUseCase(schedules, runner, fixedClock{now}, 0)

	output, appErr := useCase.Execute(context.Background(), dto.TriggerDueSchedulesCommand{
		Now:           now,
		Limit:         10,
		WorkerID:      "worker-a",
		LeaseDuration: time.Minute,
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}

	if output.Failed != 2 || output.Succeeded != 0 {
		t.Fatalf("unexpected output %+v", output)
	}
	// Failed runs still get rescheduled so they retry on the next slot.
	if len(schedules.completed) != 2 {
		t.Fatalf("expected both schedules rescheduled, got %+v", schedules.completed)
	}
}

func TestCancelRunWithoutActiveRunnerConflicts(t *testing.T) {
	runs := &fakeRunRepository{inserted: []dto.ReconciliationRunView{{ID: "run-1", Status: "running"}}}
	useCase := NewCancelRunUseCase(runs, NewRunRegistry())

	_, appErr := useCase.Execute(context.Background(), dto.CancelRunCommand{RunID: "run-1"})
	if appErr == nil || appErr.Code != "run_not_cancellable" {
		t.Fatalf("expected run_not_cancellable, got %+v", appErr)
	}
}

func TestCancelRunAlreadyFinishedConflicts(t *testing.T) {
	runs := &fakeRunRepository{inserted: []dto.ReconciliationRunView{{ID: "run-1", Status: "succeeded"}}}
	registry := NewRunRegistry()
	cancelled := false
	registry.Register("run-1", func() { cancelled = true })
	useCase := NewCancelRunUseCase(runs, registry)

	_, appErr := useCase.Execute(context.Background(), dto.CancelRunCommand{RunID: "run-1"})
	if appErr == nil || appErr.Code != "run_not_cancellable" {
		t.Fatalf("expected run_not_cancellable, got %+v", appErr)
	}
	if cancelled {
		t.Fatalf("finished run must not reach the registry cancel")
	}
}

func TestCancelRunUnknownRunNotFound(t *testing.T) {
	useCase := NewCancelRunUseCase(&fakeRunRepository{}, NewRunRegistry())

	_, appErr := useCase.Execute(context.Background(), dto.CancelRunCommand{RunID: "missing"})
	if appErr == nil || appErr.Type != apperrors.TypeNotFound {
		t.Fatalf("expected not found, got %+v", appErr)
	}
}
