package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunCompletedNotification is delivered to the configured webhook endpoint
// once a reconciliation run reaches a terminal status.
type RunCompletedNotification struct {
	RunID           string          `json:"run_id"`
	Channel         string          `json:"channel"`
	Status          string          `json:"status"`
	MissingCount    int             `json:"missing_count"`
	MismatchedCount int             `json:"mismatched_count"`
	MatchedCount    int             `json:"matched_count"`
	CorrectedCount  int             `json:"corrected_count"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	FinishedAt      time.Time       `json:"finished_at"`
}

type FinishRunCommand struct {
	RunID          string
	Status         string
	CorrectedCount int
	ProcessedItems int
	ErrorCode      string
	FinishedAt     time.Time
}
