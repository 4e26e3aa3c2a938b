package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"payrecon/internal/application/dto"
	apperrors "payrecon/internal/shared_kernel/errors"

	"github.com/shopspring/decimal"
)

type stubRunUseCase struct {
	output dto.RunReconciliationOutput
	err    *apperrors.AppError
}

func (s stubRunUseCase) Execute(
	_ context.Context,
	_ dto.RunReconciliationCommand,
) (dto.RunReconciliationOutput, *apperrors.AppError) {
	return s.output, s.err
}

type stubGetRunUseCase struct {
	run dto.ReconciliationRunView
	err *apperrors.AppError
}

func (s stubGetRunUseCase) Execute(
	_ context.Context,
	_ dto.GetRunQuery,
) (dto.ReconciliationRunView, *apperrors.AppError) {
	return s.run, s.err
}

type stubListRunsUseCase struct {
	runs []dto.ReconciliationRunView
}

func (s stubListRunsUseCase) Execute(
	_ context.Context,
	_ dto.ListRunsQuery,
) (dto.ListRunsOutput, *apperrors.AppError) {
	return dto.ListRunsOutput{Runs: s.runs}, nil
}

type stubCancelRunUseCase struct {
	output dto.CancelRunOutput
	err    *apperrors.AppError
}

func (s stubCancelRunUseCase) Execute(
	_ context.Context,
	_ dto.CancelRunCommand,
) (dto.CancelRunOutput, *apperrors.AppError) {
	return s.output, s.err
}

func newRunsController(run stubRunUseCase, get stubGetRunUseCase, cancel stubCancelRunUseCase) *ReconciliationRunsController {
	return NewReconciliationRunsController(
		run,
		get,
		stubListRunsUseCase{},
		cancel,
		log.New(io.Discard, "", 0),
	)
}

func TestReconciliationRunsControllerCreateRunCreated(t *testing.T) {
	controller := newRunsController(stubRunUseCase{output: dto.RunReconciliationOutput{
		RunID:       "run-1",
		Status:      "succeeded",
		Missing:     1,
		Mismatched:  1,
		Matched:     1,
		Corrected:   2,
		TotalAmount: decimal.NewFromInt(600),
	}}, stubGetRunUseCase{}, stubCancelRunUseCase{})

	body := bytes.NewBufferString(`{
		"channel": "card-gateway",
		"window_start": "2026-03-02T00:00:00Z",
		"window_end": "2026-03-03T00:00:00Z",
		"apply_mode": "bulk"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/reconciliation-runs", body)
	rec := httptest.NewRecorder()

	controller.CreateRun(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != "/v1/reconciliation-runs/run-1" {
		t.Fatalf("expected run location header, got %q", got)
	}

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("expected valid JSON body, got error: %v", err)
	}
	if payload["status"] != "succeeded" || payload["run_id"] != "run-1" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestReconciliationRunsControllerCreateRunInvalidJSON(t *testing.T) {
	controller := newRunsController(stubRunUseCase{}, stubGetRunUseCase{}, stubCancelRunUseCase{})

	req := httptest.NewRequest(http.MethodPost, "/v1/reconciliation-runs", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()

	controller.CreateRun(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestReconciliationRunsControllerCreateRunRejectsBadTimestamp(t *testing.T) {
	controller := newRunsController(stubRunUseCase{}, stubGetRunUseCase{}, stubCancelRunUseCase{})

	body := bytes.NewBufferString(`{
		"channel": "card-gateway",
		"window_start": "yesterday",
		"window_end": "2026-03-03T00:00:00Z",
		"apply_mode": "bulk"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/reconciliation-runs", body)
	rec := httptest.NewRecorder()

	controller.CreateRun(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestReconciliationRunsControllerGetRunNotFound(t *testing.T) {
	controller := newRunsController(stubRunUseCase{}, stubGetRunUseCase{
		err: apperrors.NewNotFound("run_not_found", "reconciliation run not found", nil),
	}, stubCancelRunUseCase{})

	req := httptest.NewRequest(http.MethodGet, "/v1/reconciliation-runs/missing", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()

	controller.GetRun(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestReconciliationRunsControllerListRunsRejectsBadLimit(t *testing.T) {
	controller := newRunsController(stubRunUseCase{}, stubGetRunUseCase{}, stubCancelRunUseCase{})

	req := httptest.NewRequest(http.MethodGet, "/v1/reconciliation-runs?limit=abc", nil)
	rec := httptest.NewRecorder()

	controller.ListRuns(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestReconciliationRunsControllerCancelRunAccepted(t *testing.T) {
	controller := newRunsController(stubRunUseCase{}, stubGetRunUseCase{}, stubCancelRunUseCase{
		output: dto.CancelRunOutput{RunID: "run-1", Cancelled: true},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/reconciliation-runs/run-1/cancel", nil)
	req.SetPathValue("id", "run-1")
	rec := httptest.NewRecorder()

	controller.CancelRun(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", rec.Code)
	}
}

func TestReconciliationRunsControllerCancelRunConflict(t *testing.T) {
	controller := newRunsController(stubRunUseCase{}, stubGetRunUseCase{}, stubCancelRunUseCase{
		err: apperrors.NewConflict("run_not_cancellable", "run has no active batched execution to cancel", nil),
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/reconciliation-runs/run-1/cancel", nil)
	req.SetPathValue("id", "run-1")
	rec := httptest.NewRecorder()

	controller.CancelRun(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}
