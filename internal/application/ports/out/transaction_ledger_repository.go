package out

import (
	"context"
	"time"

	"payrecon/internal/application/dto"
	"payrecon/internal/domain/entities"
	apperrors "payrecon/internal/shared_kernel/errors"
)

// TransactionLedgerRepository owns the locally persisted transaction
// records of one or more payment channels.
type TransactionLedgerRepository interface {
	ListByWindow(
		ctx context.Context,
		channel string,
		windowStart time.Time,
		windowEnd time.Time,
	) ([]entities.TransactionRecord, *apperrors.AppError)
	// ApplyCorrections upserts the authoritative remote copies into the
	// local ledger: records absent locally are inserted, existing ones get
	// their status and settlement batch overwritten. Outcomes come back in
	// input order.
	ApplyCorrections(
		ctx context.Context,
		records []entities.TransactionRecord,
	) ([]dto.CorrectionOutcome, *apperrors.AppError)
}
