package policies

import (
	"testing"
	"time"

	"payrecon/internal/domain/entities"
	valueobjects "payrecon/internal/domain/value_objects"

	"github.com/shopspring/decimal"
)

func diffRecord(t *testing.T, id string, status string, settlementBatch string) entities.TransactionRecord {
	t.Helper()

	var batchID *string
	if settlementBatch != "" {
		batchID = &settlementBatch
	}
	record, appErr := entities.NewTransactionRecord(entities.NewTransactionRecordInput{
		TransactionID:     id,
		Channel:           "card-gateway",
		Amount:            decimal.NewFromInt(1500),
		Currency:          "EUR",
		Status:            status,
		PaymentMethod:     "card",
		Installments:      1,
		TransactionDate:   time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		SettlementBatchID: batchID,
	})
	if appErr != nil {
		t.Fatalf("expected record, got %+v", appErr)
	}
	return record
}

func TestDiffTransactionsClassifiesAllThreeKinds(t *testing.T) {
	local := []entities.TransactionRecord{
		diffRecord(t, "T1", "completed", "SB-9"),
		diffRecord(t, "T2", "pending", ""),
	}
	remote := []entities.TransactionRecord{
		diffRecord(t, "T1", "completed", "SB-9"),
		diffRecord(t, "T2", "completed", "SB-9"),
		diffRecord(t, "T3", "completed", "SB-9"),
	}

	result := DiffTransactions(local, remote)

	if len(result.Missing) != 1 || result.Missing[0] != "T3" {
		t.Fatalf("expected missing=[T3], got %v", result.Missing)
	}
	if len(result.Mismatched) != 1 || result.Mismatched[0].TransactionID != "T2" {
		t.Fatalf("expected mismatched=[T2], got %+v", result.Mismatched)
	}
	if len(result.Matched) != 1 || result.Matched[0] != "T1" {
		t.Fatalf("expected matched=[T1], got %v", result.Matched)
	}
}

func TestDiffTransactionsMismatchCarriesBothSides(t *testing.T) {
	local := []entities.TransactionRecord{diffRecord(t, "T2", "pending", "")}
	remote := []entities.TransactionRecord{diffRecord(t, "T2", "completed", "SB-9")}

	result := DiffTransactions(local, remote)

	if len(result.Mismatched) != 1 {
		t.Fatalf("expected one mismatch, got %+v", result)
	}
	mismatch := result.Mismatched[0]
	if mismatch.LocalStatus != valueobjects.TransactionStatusPending || mismatch.RemoteStatus != valueobjects.TransactionStatusCompleted {
		t.Fatalf("unexpected statuses %+v", mismatch)
	}
	if mismatch.LocalSettlementBatch != "" || mismatch.RemoteSettlementBatch != "SB-9" {
		t.Fatalf("unexpected settlement batches %+v", mismatch)
	}
}

func TestDiffTransactionsSettlementBatchAloneMismatches(t *testing.T) {
	local := []entities.TransactionRecord{diffRecord(t, "T4", "completed", "SB-1")}
	remote := []entities.TransactionRecord{diffRecord(t, "T4", "completed", "SB-2")}

	result := DiffTransactions(local, remote)
	if len(result.Mismatched) != 1 || len(result.Matched) != 0 {
		t.Fatalf("expected settlement batch mismatch, got %+v", result)
	}
}

func TestDiffTransactionsPartitionsRemoteIDsExactlyOnce(t *testing.T) {
	local := []entities.TransactionRecord{
		diffRecord(t, "T1", "completed", "SB-1"),
		diffRecord(t, "T2", "pending", ""),
		diffRecord(t, "T5", "refunded", ""),
	}
	remote := []entities.TransactionRecord{
		diffRecord(t, "T1", "completed", "SB-1"),
		diffRecord(t, "T2", "overdue", ""),
		diffRecord(t, "T3", "created", ""),
		diffRecord(t, "T4", "rejected", ""),
	}

	result := DiffTransactions(local, remote)

	seen := map[string]int{}
	for _, id := range result.Missing {
		seen[id]++
	}
	for _, mismatch := range result.Mismatched {
		seen[mismatch.TransactionID]++
	}
	for _, id := range result.Matched {
		seen[id]++
	}

	if len(seen) != len(remote) {
		t.Fatalf("expected %d partitioned ids, got %d", len(remote), len(seen))
	}
	for id, count := range seen {
		if count != 1 {
			t.Fatalf("id %s classified %d times", id, count)
		}
	}
}

func TestDiffTransactionsLocalOnlyRecordsAreNotReported(t *testing.T) {
	local := []entities.TransactionRecord{diffRecord(t, "T9", "completed", "")}

	result := DiffTransactions(local, nil)
	if len(result.Missing)+len(result.Mismatched)+len(result.Matched) != 0 {
		t.Fatalf("expected empty result for empty remote set, got %+v", result)
	}
}

func TestDiffTransactionsEmptyInputs(t *testing.T) {
	result := DiffTransactions(nil, nil)
	if result.Missing == nil || result.Mismatched == nil || result.Matched == nil {
		t.Fatalf("expected empty slices, got %+v", result)
	}
}

func TestCorrectionIDsMissingFirstInOrder(t *testing.T) {
	local := []entities.TransactionRecord{diffRecord(t, "T2", "pending", "")}
	remote := []entities.TransactionRecord{
		diffRecord(t, "T2", "completed", "SB-9"),
		diffRecord(t, "T3", "completed", "SB-9"),
		diffRecord(t, "T4", "completed", "SB-9"),
	}

	ids := DiffTransactions(local, remote).CorrectionIDs()
	if len(ids) != 3 || ids[0] != "T3" || ids[1] != "T4" || ids[2] != "T2" {
		t.Fatalf("unexpected correction ids %v", ids)
	}
}
