//go:build !integration

package reconciliationrun

import (
	"database/sql"
	"testing"
	"time"
)

type stubRunRow struct {
	status string
	amount string
}

func (r stubRunRow) Scan(dest ...any) error {
	*dest[0].(*string) = "run-1"
	*dest[1].(*string) = "card-gateway"
	*dest[2].(*sql.NullString) = sql.NullString{}
	*dest[3].(*string) = r.status
	*dest[4].(*string) = "bulk"
	*dest[5].(*time.Time) = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	*dest[6].(*time.Time) = time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	*dest[7].(*int) = 0
	*dest[8].(*int) = 0
	*dest[9].(*int) = 0
	*dest[10].(*int) = 0
	*dest[11].(*string) = r.amount
	*dest[12].(*int) = 0
	*dest[13].(*int) = 0
	*dest[14].(*sql.NullString) = sql.NullString{}
	*dest[15].(*time.Time) = time.Date(2026, 3, 3, 6, 0, 0, 0, time.UTC)
	*dest[16].(*sql.NullTime) = sql.NullTime{}
	return nil
}

func TestScanRunAcceptsKnownStatus(t *testing.T) {
	run, appErr := scanRun(stubRunRow{status: "running", amount: "100.00"})
	if appErr != nil {
		t.Fatalf("unexpected error: %+v", appErr)
	}
	if run.Status != "running" || run.TotalAmount.String() != "100" {
		t.Fatalf("unexpected run %+v", run)
	}
}

func TestScanRunRejectsUnknownStatus(t *testing.T) {
	_, appErr := scanRun(stubRunRow{status: "archived", amount: "100.00"})
	if appErr == nil || appErr.Code != "reconciliation_run_scan_failed" {
		t.Fatalf("expected reconciliation_run_scan_failed, got %+v", appErr)
	}
	if appErr.Details["status"] != "archived" {
		t.Fatalf("expected offending status in details, got %+v", appErr.Details)
	}
}
