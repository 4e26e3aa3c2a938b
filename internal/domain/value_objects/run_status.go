package valueobjects

import apperrors "payrecon/internal/shared_kernel/errors"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusPartial   RunStatus = "partial"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

func ParseRunStatus(raw string) (RunStatus, *apperrors.AppError) {
	switch raw {
	case string(RunStatusRunning), string(RunStatusSucceeded), string(RunStatusPartial),
		string(RunStatusFailed), string(RunStatusCancelled):
		return RunStatus(raw), nil
	default:
		return "", apperrors.NewInternal(
			"run_status_invalid",
			"reconciliation run status is invalid",
			map[string]any{"status": raw},
		)
	}
}

func (s RunStatus) String() string {
	return string(s)
}

func (s RunStatus) IsTerminal() bool {
	return s != RunStatusRunning
}
