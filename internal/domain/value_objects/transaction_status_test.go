package valueobjects

import "testing"

func TestParseTransactionStatusKnownValues(t *testing.T) {
	known := []string{
		"created", "in_payment", "completed", "rejected", "expired",
		"cancelled", "refunded", "pending", "overdue",
		"signature_invalid", "signature_mismatch",
	}
	for _, raw := range known {
		status, appErr := ParseTransactionStatus(raw)
		if appErr != nil {
			t.Fatalf("expected %s to parse, got %+v", raw, appErr)
		}
		if status.String() != raw {
			t.Fatalf("expected %s, got %s", raw, status)
		}
	}
}

func TestParseTransactionStatusRejectsUnknown(t *testing.T) {
	_, appErr := ParseTransactionStatus("settled")
	if appErr == nil || appErr.Code != "transaction_status_invalid" {
		t.Fatalf("expected transaction_status_invalid, got %+v", appErr)
	}
}

func TestIsSignatureFailure(t *testing.T) {
	if !TransactionStatusSignatureInvalid.IsSignatureFailure() {
		t.Fatalf("signature_invalid should count as signature failure")
	}
	if !TransactionStatusSignatureMismatch.IsSignatureFailure() {
		t.Fatalf("signature_mismatch should count as signature failure")
	}
	if TransactionStatusCompleted.IsSignatureFailure() {
		t.Fatalf("completed should not count as signature failure")
	}
}
