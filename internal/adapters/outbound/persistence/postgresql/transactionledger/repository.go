package transactionledger

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	"payrecon/internal/application/dto"
	portsout "payrecon/internal/application/ports/out"
	"payrecon/internal/domain/entities"
	apperrors "payrecon/internal/shared_kernel/errors"

	"github.com/shopspring/decimal"
)

type Repository struct {
	db     *sql.DB
	logger *log.Logger
}

var _ portsout.TransactionLedgerRepository = (*Repository)(nil)

func NewRepository(db *sql.DB, logger *log.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

func (r *Repository) ListByWindow(
	ctx context.Context,
	channel string,
	windowStart time.Time,
	windowEnd time.Time,
) ([]entities.TransactionRecord, *apperrors.AppError) {
	const query = `
SELECT
  transaction_id,
  channel,
  amount::text,
  currency,
  status,
  payment_method,
  installments,
  transaction_date,
  expected_settlement_date,
  settlement_batch_id
FROM app.transaction_records
WHERE channel = $1
  AND transaction_date >= $2
  AND transaction_date < $3
ORDER BY transaction_date ASC, transaction_id ASC
`

	rows, err := r.db.QueryContext(ctx, query, strings.TrimSpace(channel), windowStart.UTC(), windowEnd.UTC())
	if err != nil {
		return nil, apperrors.NewInternal(
			"transaction_ledger_query_failed",
			"failed to list transaction records",
			map[string]any{"error": err.Error(), "channel": channel},
		)
	}
	defer rows.Close()

	records := make([]entities.TransactionRecord, 0, 64)
	for rows.Next() {
		record, appErr := scanTransactionRecord(rows)
		if appErr != nil {
			return nil, appErr
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternal(
			"transaction_ledger_query_failed",
			"failed while iterating transaction records",
			map[string]any{"error": err.Error(), "channel": channel},
		)
	}

	return records, nil
}

func (r *Repository) ApplyCorrections(
	ctx context.Context,
	records []entities.TransactionRecord,
) ([]dto.CorrectionOutcome, *apperrors.AppError) {
	if len(records) == 0 {
		return []dto.CorrectionOutcome{}, nil
	}

	const query = `
INSERT INTO app.transaction_records (
  transaction_id,
  channel,
  amount,
  currency,
  status,
  payment_method,
  installments,
  transaction_date,
  expected_settlement_date,
  settlement_batch_id,
  created_at,
  updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
ON CONFLICT (channel, transaction_id) DO UPDATE
SET
  status = EXCLUDED.status,
  settlement_batch_id = EXCLUDED.settlement_batch_id,
  updated_at = EXCLUDED.updated_at
RETURNING (xmax = 0) AS inserted
`

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, apperrors.NewInternal(
			"transaction_ledger_tx_begin_failed",
			"failed to start correction transaction",
			map[string]any{"error": err.Error()},
		)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	outcomes := make([]dto.CorrectionOutcome, 0, len(records))
	for _, record := range records {
		var inserted bool
		err := tx.QueryRowContext(
			ctx,
			query,
			record.TransactionID,
			record.Channel,
			record.Amount.String(),
			record.Currency,
			record.Status.String(),
			record.PaymentMethod,
			record.Installments,
			record.TransactionDate,
			record.ExpectedSettlementDate,
			record.SettlementBatchID,
			now,
		).Scan(&inserted)
		if err != nil {
			return nil, apperrors.NewInternal(
				"correction_apply_failed",
				"failed to upsert transaction record",
				map[string]any{"error": err.Error(), "transaction_id": record.TransactionID},
			)
		}

		kind := "updated"
		if inserted {
			kind = "inserted"
		}
		outcomes = append(outcomes, dto.CorrectionOutcome{TransactionID: record.TransactionID, Kind: kind})
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewInternal(
			"transaction_ledger_tx_commit_failed",
			"failed to commit correction transaction",
			map[string]any{"error": err.Error()},
		)
	}
	committed = true

	if r.logger != nil {
		r.logger.Printf("ledger corrections applied count=%d", len(outcomes))
	}

	return outcomes, nil
}

func scanTransactionRecord(rows *sql.Rows) (entities.TransactionRecord, *apperrors.AppError) {
	var (
		transactionID          string
		channel                string
		amountText             string
		currency               string
		status                 string
		paymentMethod          sql.NullString
		installments           int
		transactionDate        time.Time
		expectedSettlementDate sql.NullTime
		settlementBatchID      sql.NullString
	)

	if err := rows.Scan(
		&transactionID,
		&channel,
		&amountText,
		&currency,
		&status,
		&paymentMethod,
		&installments,
		&transactionDate,
		&expectedSettlementDate,
		&settlementBatchID,
	); err != nil {
		return entities.TransactionRecord{}, apperrors.NewInternal(
			"transaction_ledger_query_failed",
			"failed to parse transaction record row",
			map[string]any{"error": err.Error()},
		)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(amountText))
	if err != nil {
		return entities.TransactionRecord{}, apperrors.NewInternal(
			"transaction_amount_invalid",
			"stored transaction amount is not a valid decimal",
			map[string]any{"error": err.Error(), "transaction_id": transactionID},
		)
	}

	input := entities.NewTransactionRecordInput{
		TransactionID:   transactionID,
		Channel:         channel,
		Amount:          amount,
		Currency:        currency,
		Status:          status,
		PaymentMethod:   paymentMethod.String,
		Installments:    installments,
		TransactionDate: transactionDate,
	}
	if expectedSettlementDate.Valid {
		settlement := expectedSettlementDate.Time
		input.ExpectedSettlementDate = &settlement
	}
	if settlementBatchID.Valid {
		batchID := settlementBatchID.String
		input.SettlementBatchID = &batchID
	}

	return entities.NewTransactionRecord(input)
}
