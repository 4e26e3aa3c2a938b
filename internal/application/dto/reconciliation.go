package dto

import (
	"time"

	"payrecon/internal/domain/policies"

	"github.com/shopspring/decimal"
)

type RunReconciliationCommand struct {
	Now         time.Time
	Channel     string
	WindowStart time.Time
	WindowEnd   time.Time
	ApplyMode   string
	BatchSize   int
	// ScheduleID links the run to the recurring schedule that triggered it;
	// empty for operator initiated runs.
	ScheduleID string
	RunID      string
}

type RunReconciliationOutput struct {
	RunID           string
	Status          string
	Missing         int
	Mismatched      int
	Matched         int
	Corrected       int
	TotalAmount     decimal.Decimal
	BatchesComplete int
	TotalBatches    int
	ErrorCode       string
	// Diff carries the full discrepancy detail for report_only runs;
	// nil when corrections were applied.
	Diff *DiffResultView
}

// DiffResultView is the wire friendly projection of a diff for the runs API.
type DiffResultView struct {
	Missing    []string            `json:"missing"`
	Mismatched []FieldMismatchView `json:"mismatched"`
	Matched    []string            `json:"matched"`
}

type FieldMismatchView struct {
	TransactionID         string `json:"transaction_id"`
	LocalStatus           string `json:"local_status"`
	LocalSettlementBatch  string `json:"local_settlement_batch,omitempty"`
	RemoteStatus          string `json:"remote_status"`
	RemoteSettlementBatch string `json:"remote_settlement_batch,omitempty"`
}

func NewDiffResultView(result policies.DiffResult) DiffResultView {
	view := DiffResultView{
		Missing:    append([]string{}, result.Missing...),
		Mismatched: make([]FieldMismatchView, 0, len(result.Mismatched)),
		Matched:    append([]string{}, result.Matched...),
	}
	for _, mismatch := range result.Mismatched {
		view.Mismatched = append(view.Mismatched, FieldMismatchView{
			TransactionID:         mismatch.TransactionID,
			LocalStatus:           mismatch.LocalStatus.String(),
			LocalSettlementBatch:  mismatch.LocalSettlementBatch,
			RemoteStatus:          mismatch.RemoteStatus.String(),
			RemoteSettlementBatch: mismatch.RemoteSettlementBatch,
		})
	}

	return view
}

type CorrectionOutcome struct {
	TransactionID string
	// Kind is "inserted" for records missing locally and "updated" for
	// mismatched ones.
	Kind string
}

type RunProgressUpdate struct {
	RunID                     string
	ProcessedItems            int
	TotalItems                int
	CurrentBatch              int
	TotalBatches              int
	PercentComplete           float64
	EstimatedSecondsRemaining *float64
	UpdatedAt                 time.Time
}

type ReconciliationRunView struct {
	ID              string          `json:"id"`
	Channel         string          `json:"channel"`
	ScheduleID      string          `json:"schedule_id,omitempty"`
	Status          string          `json:"status"`
	ApplyMode       string          `json:"apply_mode"`
	WindowStart     time.Time       `json:"window_start"`
	WindowEnd       time.Time       `json:"window_end"`
	MissingCount    int             `json:"missing_count"`
	MismatchedCount int             `json:"mismatched_count"`
	MatchedCount    int             `json:"matched_count"`
	CorrectedCount  int             `json:"corrected_count"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ProcessedItems  int             `json:"processed_items"`
	TotalItems      int             `json:"total_items"`
	ErrorCode       string          `json:"error_code,omitempty"`
	StartedAt       time.Time       `json:"started_at"`
	FinishedAt      *time.Time      `json:"finished_at,omitempty"`
}

type GetRunQuery struct {
	RunID string
}

type ListRunsQuery struct {
	Channel string
	Limit   int
}

type ListRunsOutput struct {
	Runs []ReconciliationRunView
}

type CancelRunCommand struct {
	RunID string
}

type CancelRunOutput struct {
	RunID     string
	Cancelled bool
}
