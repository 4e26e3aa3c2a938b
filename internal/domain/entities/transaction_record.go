package entities

import (
	"strings"
	"time"

	valueobjects "payrecon/internal/domain/value_objects"
	apperrors "payrecon/internal/shared_kernel/errors"

	"github.com/shopspring/decimal"
)

// TransactionRecord is the canonical shape of one payment transaction. Both
// the local ledger and the remote processor ledger are normalized into this
// type at their respective boundaries; nothing past a boundary adapter ever
// sees a raw processor payload.
type TransactionRecord struct {
	TransactionID          string
	Channel                string
	Amount                 decimal.Decimal
	Currency               string
	Status                 valueobjects.TransactionStatus
	PaymentMethod          string
	Installments           int
	TransactionDate        time.Time
	ExpectedSettlementDate *time.Time
	SettlementBatchID      *string
}

type NewTransactionRecordInput struct {
	TransactionID          string
	Channel                string
	Amount                 decimal.Decimal
	Currency               string
	Status                 string
	PaymentMethod          string
	Installments           int
	TransactionDate        time.Time
	ExpectedSettlementDate *time.Time
	SettlementBatchID      *string
}

func NewTransactionRecord(input NewTransactionRecordInput) (TransactionRecord, *apperrors.AppError) {
	transactionID := strings.TrimSpace(input.TransactionID)
	if transactionID == "" {
		return TransactionRecord{}, apperrors.NewValidation(
			"transaction_id_missing",
			"transaction id is required",
			nil,
		)
	}

	channel := strings.TrimSpace(input.Channel)
	if channel == "" {
		return TransactionRecord{}, apperrors.NewValidation(
			"payment_channel_missing",
			"payment channel is required",
			map[string]any{"transaction_id": transactionID},
		)
	}

	status, appErr := valueobjects.ParseTransactionStatus(strings.ToLower(strings.TrimSpace(input.Status)))
	if appErr != nil {
		return TransactionRecord{}, appErr
	}

	if input.Installments < 0 {
		return TransactionRecord{}, apperrors.NewValidation(
			"installments_invalid",
			"installment count must be non-negative",
			map[string]any{"transaction_id": transactionID, "installments": input.Installments},
		)
	}

	record := TransactionRecord{
		TransactionID:   transactionID,
		Channel:         channel,
		Amount:          input.Amount,
		Currency:        strings.ToUpper(strings.TrimSpace(input.Currency)),
		Status:          status,
		PaymentMethod:   strings.TrimSpace(input.PaymentMethod),
		Installments:    input.Installments,
		TransactionDate: input.TransactionDate.UTC(),
	}

	if input.ExpectedSettlementDate != nil {
		settlement := input.ExpectedSettlementDate.UTC()
		record.ExpectedSettlementDate = &settlement
	}
	if input.SettlementBatchID != nil {
		batchID := strings.TrimSpace(*input.SettlementBatchID)
		if batchID != "" {
			record.SettlementBatchID = &batchID
		}
	}

	return record, nil
}

// SettlementBatch returns the settlement batch id or the empty string when
// the transaction has not been settled yet.
func (r TransactionRecord) SettlementBatch() string {
	if r.SettlementBatchID == nil {
		return ""
	}

	return *r.SettlementBatchID
}
