package out

import (
	"context"
	"time"

	"payrecon/internal/domain/entities"
	apperrors "payrecon/internal/shared_kernel/errors"
)

// ProcessorLedgerGateway reads the external payment processor's ledger,
// the authoritative source for transaction existence, status and
// settlement linkage.
type ProcessorLedgerGateway interface {
	FetchTransactions(
		ctx context.Context,
		channel string,
		windowStart time.Time,
		windowEnd time.Time,
	) ([]entities.TransactionRecord, *apperrors.AppError)
}
