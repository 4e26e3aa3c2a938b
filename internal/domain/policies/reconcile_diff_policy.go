package policies

import (
	"payrecon/internal/domain/entities"
	valueobjects "payrecon/internal/domain/value_objects"
)

// FieldMismatch records the two compared fields of both copies of a
// transaction whose local and remote ledger entries disagree.
type FieldMismatch struct {
	TransactionID         string
	LocalStatus           valueobjects.TransactionStatus
	LocalSettlementBatch  string
	RemoteStatus          valueobjects.TransactionStatus
	RemoteSettlementBatch string
}

type DiffResult struct {
	Missing    []string
	Mismatched []FieldMismatch
	Matched    []string
}

// DiffTransactions partitions the remote ledger against the local one.
// Every remote transaction id lands in exactly one bucket: Missing when no
// local record shares the id, Mismatched when the local copy differs on
// status or settlement batch, Matched otherwise. Local records absent from
// the remote set are not reported: the processor ledger is authoritative
// for existence, and the asymmetry is intentional.
func DiffTransactions(local, remote []entities.TransactionRecord) DiffResult {
	localByID := make(map[string]entities.TransactionRecord, len(local))
	for _, record := range local {
		localByID[record.TransactionID] = record
	}

	result := DiffResult{
		Missing:    []string{},
		Mismatched: []FieldMismatch{},
		Matched:    []string{},
	}

	for _, remoteRecord := range remote {
		localRecord, exists := localByID[remoteRecord.TransactionID]
		if !exists {
			result.Missing = append(result.Missing, remoteRecord.TransactionID)
			continue
		}

		if localRecord.Status != remoteRecord.Status ||
			localRecord.SettlementBatch() != remoteRecord.SettlementBatch() {
			result.Mismatched = append(result.Mismatched, FieldMismatch{
				TransactionID:         remoteRecord.TransactionID,
				LocalStatus:           localRecord.Status,
				LocalSettlementBatch:  localRecord.SettlementBatch(),
				RemoteStatus:          remoteRecord.Status,
				RemoteSettlementBatch: remoteRecord.SettlementBatch(),
			})
			continue
		}

		result.Matched = append(result.Matched, remoteRecord.TransactionID)
	}

	return result
}

// CorrectionIDs lists the transaction ids a run has to touch, missing first,
// preserving remote ledger order within each bucket.
func (r DiffResult) CorrectionIDs() []string {
	ids := make([]string, 0, len(r.Missing)+len(r.Mismatched))
	ids = append(ids, r.Missing...)
	for _, mismatch := range r.Mismatched {
		ids = append(ids, mismatch.TransactionID)
	}

	return ids
}
