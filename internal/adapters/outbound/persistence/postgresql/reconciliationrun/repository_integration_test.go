//go:build integration

package reconciliationrun

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	postgresqlbootstrap "payrecon/internal/adapters/outbound/persistence/postgresql/bootstrap"
	postgresqlshared "payrecon/internal/adapters/outbound/persistence/postgresql/shared"
	"payrecon/internal/application/dto"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
)

func TestUpdateProgressPersistsFractionalEstimate(t *testing.T) {
	db := newIntegrationDatabase(t)
	repository := NewRepository(db, log.New(io.Discard, "", 0))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startedAt := time.Date(2026, 3, 3, 6, 0, 0, 0, time.UTC)
	run := dto.ReconciliationRunView{
		ID:              "run-progress-1",
		Channel:         "card-gateway",
		Status:          "running",
		ApplyMode:       "batched",
		WindowStart:     startedAt.Add(-24 * time.Hour),
		WindowEnd:       startedAt,
		MissingCount:    2,
		MismatchedCount: 3,
		MatchedCount:    1,
		TotalAmount:     decimal.NewFromInt(600),
		TotalItems:      5,
		StartedAt:       startedAt,
	}
	if appErr := repository.InsertRun(ctx, run); appErr != nil {
		t.Fatalf("expected insert success, got %+v", appErr)
	}

	estimate := 12.5
	appErr := repository.UpdateProgress(ctx, dto.RunProgressUpdate{
		RunID:                     run.ID,
		ProcessedItems:            4,
		TotalItems:                5,
		CurrentBatch:              2,
		TotalBatches:              3,
		PercentComplete:           80,
		EstimatedSecondsRemaining: &estimate,
		UpdatedAt:                 startedAt.Add(10 * time.Second),
	})
	if appErr != nil {
		t.Fatalf("expected progress update success, got %+v", appErr)
	}

	var (
		processed int
		percent   float64
		stored    sql.NullFloat64
	)
	query := `
SELECT processed_items, percent_complete, estimated_seconds_remaining
FROM app.reconciliation_runs
WHERE id = $1
`
	if err := db.QueryRowContext(ctx, query, run.ID).Scan(&processed, &percent, &stored); err != nil {
		t.Fatalf("failed to read progress row: %v", err)
	}
	if processed != 4 || percent != 80 {
		t.Fatalf("expected processed=4 percent=80, got %d %f", processed, percent)
	}
	if !stored.Valid || stored.Float64 != 12.5 {
		t.Fatalf("expected fractional estimate 12.5 persisted, got %+v", stored)
	}

	fetched, appErr := repository.GetRun(ctx, run.ID)
	if appErr != nil {
		t.Fatalf("expected get run success, got %+v", appErr)
	}
	if fetched.ProcessedItems != 4 || fetched.Status != "running" {
		t.Fatalf("expected live progress on fetched run, got %+v", fetched)
	}
}

func newIntegrationDatabase(t *testing.T) *sql.DB {
	t.Helper()

	databaseURL := strings.TrimSpace(os.Getenv("TEST_DATABASE_URL"))
	if databaseURL == "" {
		t.Skip("set TEST_DATABASE_URL to run integration tests")
	}

	resetIntegrationSchema(t, databaseURL)

	logger := log.New(io.Discard, "", 0)
	gateway := postgresqlbootstrap.NewGateway(databaseURL, "integration-target", integrationMigrationsPath(t), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if appErr := gateway.CheckReadiness(ctx); appErr != nil {
		t.Fatalf("expected readiness success, got %+v", appErr)
	}
	if appErr := gateway.RunMigrations(ctx); appErr != nil {
		t.Fatalf("expected migration success, got %+v", appErr)
	}

	db := postgresqlshared.NewDatabasePool(databaseURL, logger)
	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func resetIntegrationSchema(t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		t.Fatalf("failed to open db for schema reset: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, err = db.ExecContext(ctx, `
DROP SCHEMA IF EXISTS app CASCADE;
DROP TABLE IF EXISTS schema_migrations;
`)
	if err != nil {
		t.Fatalf("failed to reset schema: %v", err)
	}
}

func integrationMigrationsPath(t *testing.T) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("failed to resolve current file path")
	}

	return filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", "migrations"))
}
