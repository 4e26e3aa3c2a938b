package valueobjects

import apperrors "payrecon/internal/shared_kernel/errors"

type TransactionStatus string

const (
	TransactionStatusCreated           TransactionStatus = "created"
	TransactionStatusInPayment         TransactionStatus = "in_payment"
	TransactionStatusCompleted         TransactionStatus = "completed"
	TransactionStatusRejected          TransactionStatus = "rejected"
	TransactionStatusExpired           TransactionStatus = "expired"
	TransactionStatusCancelled         TransactionStatus = "cancelled"
	TransactionStatusRefunded          TransactionStatus = "refunded"
	TransactionStatusPending           TransactionStatus = "pending"
	TransactionStatusOverdue           TransactionStatus = "overdue"
	TransactionStatusSignatureInvalid  TransactionStatus = "signature_invalid"
	TransactionStatusSignatureMismatch TransactionStatus = "signature_mismatch"
)

var knownTransactionStatuses = map[TransactionStatus]struct{}{
	TransactionStatusCreated:           {},
	TransactionStatusInPayment:         {},
	TransactionStatusCompleted:         {},
	TransactionStatusRejected:          {},
	TransactionStatusExpired:           {},
	TransactionStatusCancelled:         {},
	TransactionStatusRefunded:          {},
	TransactionStatusPending:           {},
	TransactionStatusOverdue:           {},
	TransactionStatusSignatureInvalid:  {},
	TransactionStatusSignatureMismatch: {},
}

func ParseTransactionStatus(raw string) (TransactionStatus, *apperrors.AppError) {
	status := TransactionStatus(raw)
	if _, known := knownTransactionStatuses[status]; !known {
		return "", apperrors.NewValidation(
			"transaction_status_invalid",
			"transaction status is invalid",
			map[string]any{"status": raw},
		)
	}

	return status, nil
}

func (s TransactionStatus) String() string {
	return string(s)
}

// IsSignatureFailure reports whether the processor rejected the payment
// because its cryptographic signature could not be verified.
func (s TransactionStatus) IsSignatureFailure() bool {
	return s == TransactionStatusSignatureInvalid || s == TransactionStatusSignatureMismatch
}
