package controllers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"payrecon/internal/application/dto"
	portsin "payrecon/internal/application/ports/in"
	apperrors "payrecon/internal/shared_kernel/errors"
)

type ReconciliationRunsController struct {
	runUseCase    portsin.RunReconciliationUseCase
	getUseCase    portsin.GetRunUseCase
	listUseCase   portsin.ListRunsUseCase
	cancelUseCase portsin.CancelRunUseCase
	logger        *log.Logger
}

type createRunPayload struct {
	Channel     string `json:"channel"`
	WindowStart string `json:"window_start"`
	WindowEnd   string `json:"window_end"`
	ApplyMode   string `json:"apply_mode"`
	BatchSize   int    `json:"batch_size,omitempty"`
}

func NewReconciliationRunsController(
	runUseCase portsin.RunReconciliationUseCase,
	getUseCase portsin.GetRunUseCase,
	listUseCase portsin.ListRunsUseCase,
	cancelUseCase portsin.CancelRunUseCase,
	logger *log.Logger,
) *ReconciliationRunsController {
	return &ReconciliationRunsController{
		runUseCase:    runUseCase,
		getUseCase:    getUseCase,
		listUseCase:   listUseCase,
		cancelUseCase: cancelUseCase,
		logger:        logger,
	}
}

func (c *ReconciliationRunsController) CreateRun(w http.ResponseWriter, r *http.Request) {
	payload, appErr := parseCreateRunPayload(r.Body)
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	windowStart, appErr := parseRequestTime(payload.WindowStart, "window_start")
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}
	windowEnd, appErr := parseRequestTime(payload.WindowEnd, "window_end")
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	output, appErr := c.runUseCase.Execute(r.Context(), dto.RunReconciliationCommand{
		Channel:     payload.Channel,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		ApplyMode:   payload.ApplyMode,
		BatchSize:   payload.BatchSize,
	})
	if appErr != nil {
		c.logger.Printf("request error path=/v1/reconciliation-runs method=%s code=%s message=%s", r.Method, appErr.Code, appErr.Message)
		writeAppError(w, appErr)
		return
	}

	w.Header().Set("Location", "/v1/reconciliation-runs/"+output.RunID)
	writeJSON(w, http.StatusCreated, runOutputView(output))
}

func (c *ReconciliationRunsController) GetRun(w http.ResponseWriter, r *http.Request) {
	run, appErr := c.getUseCase.Execute(r.Context(), dto.GetRunQuery{RunID: r.PathValue("id")})
	if appErr != nil {
		c.logger.Printf("request error path=/v1/reconciliation-runs/{id} method=%s code=%s message=%s", r.Method, appErr.Code, appErr.Message)
		writeAppError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, run)
}

func (c *ReconciliationRunsController) ListRuns(w http.ResponseWriter, r *http.Request) {
	query := dto.ListRunsQuery{
		Channel: strings.TrimSpace(r.URL.Query().Get("channel")),
	}
	if rawLimit := strings.TrimSpace(r.URL.Query().Get("limit")); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil || limit <= 0 {
			writeAppError(w, apperrors.NewValidation(
				"invalid_request",
				"limit must be a positive integer",
				map[string]any{"limit": rawLimit},
			))
			return
		}
		query.Limit = limit
	}

	output, appErr := c.listUseCase.Execute(r.Context(), query)
	if appErr != nil {
		c.logger.Printf("request error path=/v1/reconciliation-runs method=%s code=%s message=%s", r.Method, appErr.Code, appErr.Message)
		writeAppError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"runs": output.Runs})
}

func (c *ReconciliationRunsController) CancelRun(w http.ResponseWriter, r *http.Request) {
	output, appErr := c.cancelUseCase.Execute(r.Context(), dto.CancelRunCommand{RunID: r.PathValue("id")})
	if appErr != nil {
		c.logger.Printf("request error path=/v1/reconciliation-runs/{id}/cancel method=%s code=%s message=%s", r.Method, appErr.Code, appErr.Message)
		writeAppError(w, appErr)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"run_id":    output.RunID,
		"cancelled": output.Cancelled,
	})
}

func parseCreateRunPayload(body io.Reader) (createRunPayload, *apperrors.AppError) {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	payload := createRunPayload{}
	if err := decoder.Decode(&payload); err != nil {
		return createRunPayload{}, apperrors.NewValidation(
			"invalid_request",
			"request body must be valid JSON",
			map[string]any{"error": err.Error()},
		)
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return createRunPayload{}, apperrors.NewValidation(
			"invalid_request",
			"request body must contain a single JSON object",
			nil,
		)
	}

	return payload, nil
}

func parseRequestTime(raw string, field string) (time.Time, *apperrors.AppError) {
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, apperrors.NewValidation(
			"invalid_request",
			field+" must be a RFC3339 timestamp",
			map[string]any{"field": field, "value": raw},
		)
	}

	return parsed.UTC(), nil
}

func runOutputView(output dto.RunReconciliationOutput) map[string]any {
	view := map[string]any{
		"run_id":       output.RunID,
		"status":       output.Status,
		"missing":      output.Missing,
		"mismatched":   output.Mismatched,
		"matched":      output.Matched,
		"corrected":    output.Corrected,
		"total_amount": output.TotalAmount,
	}
	if output.Diff != nil {
		view["diff"] = output.Diff
	}
	if output.TotalBatches > 0 {
		view["batches_complete"] = output.BatchesComplete
		view["total_batches"] = output.TotalBatches
	}
	if output.ErrorCode != "" {
		view["error_code"] = output.ErrorCode
	}

	return view
}
