package valueobjects

import apperrors "payrecon/internal/shared_kernel/errors"

// ApplyMode controls what a reconciliation run does with the differences it
// finds: report them, correct them in one pass, or correct them in
// progress-reporting batches.
type ApplyMode string

const (
	ApplyModeReportOnly ApplyMode = "report_only"
	ApplyModeBulk       ApplyMode = "bulk"
	ApplyModeBatched    ApplyMode = "batched"
)

func ParseApplyMode(raw string) (ApplyMode, *apperrors.AppError) {
	switch raw {
	case string(ApplyModeReportOnly):
		return ApplyModeReportOnly, nil
	case string(ApplyModeBulk):
		return ApplyModeBulk, nil
	case string(ApplyModeBatched):
		return ApplyModeBatched, nil
	default:
		return "", apperrors.NewValidation(
			"apply_mode_invalid",
			"apply mode must be report_only, bulk or batched",
			map[string]any{"apply_mode": raw},
		)
	}
}

func (m ApplyMode) String() string {
	return string(m)
}
