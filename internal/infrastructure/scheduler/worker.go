package scheduler

import (
	"context"
	"log"
	"time"

	"payrecon/internal/application/dto"
	portsin "payrecon/internal/application/ports/in"
)

// Worker polls for due reconciliation schedules and fires them. Multiple
// instances can run side by side; the claim lease in the repository keeps
// them from double-firing a schedule.
type Worker struct {
	enabled       bool
	pollInterval  time.Duration
	claimLimit    int
	workerID      string
	leaseDuration time.Duration
	useCase       portsin.TriggerDueSchedulesUseCase
	logger        *log.Logger
}

func NewWorker(
	enabled bool,
	pollInterval time.Duration,
	claimLimit int,
	workerID string,
	leaseDuration time.Duration,
	useCase portsin.TriggerDueSchedulesUseCase,
	logger *log.Logger,
) *Worker {
	return &Worker{
		enabled:       enabled,
		pollInterval:  pollInterval,
		claimLimit:    claimLimit,
		workerID:      workerID,
		leaseDuration: leaseDuration,
		useCase:       useCase,
		logger:        logger,
	}
}

func (w *Worker) Enabled() bool {
	return w != nil && w.enabled
}

func (w *Worker) Start(ctx context.Context) {
	if w == nil || !w.enabled || w.useCase == nil {
		return
	}

	w.logf(
		"schedule worker started worker_id=%s poll_interval=%s claim_limit=%d lease_duration=%s",
		w.workerID,
		w.pollInterval,
		w.claimLimit,
		w.leaseDuration,
	)

	w.runCycle(ctx)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logf("schedule worker stopped")
			return
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

func (w *Worker) runCycle(ctx context.Context) {
	startedAt := time.Now().UTC()
	output, appErr := w.useCase.Execute(ctx, dto.TriggerDueSchedulesCommand{
		Now:           startedAt,
		Limit:         w.claimLimit,
		WorkerID:      w.workerID,
		LeaseDuration: w.leaseDuration,
	})
	if appErr != nil {
		w.logf(
			"schedule cycle failed code=%s message=%s details=%v",
			appErr.Code,
			appErr.Message,
			appErr.Details,
		)
		return
	}

	w.logf(
		"schedule cycle completed worker_id=%s claimed=%d triggered=%d succeeded=%d failed=%d latency_ms=%d",
		w.workerID,
		output.Claimed,
		output.Triggered,
		output.Succeeded,
		output.Failed,
		time.Since(startedAt).Milliseconds(),
	)
}

func (w *Worker) logf(format string, args ...any) {
	if w.logger == nil {
		return
	}
	w.logger.Printf(format, args...)
}
