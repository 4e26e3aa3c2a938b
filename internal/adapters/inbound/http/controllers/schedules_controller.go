package controllers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"payrecon/internal/application/dto"
	portsin "payrecon/internal/application/ports/in"
	apperrors "payrecon/internal/shared_kernel/errors"
)

type SchedulesController struct {
	saveUseCase   portsin.SaveScheduleUseCase
	listUseCase   portsin.ListSchedulesUseCase
	deleteUseCase portsin.DeleteScheduleUseCase
	logger        *log.Logger
}

type saveSchedulePayload struct {
	Channel    string `json:"channel"`
	Frequency  string `json:"frequency"`
	DayOfWeek  *int   `json:"day_of_week,omitempty"`
	DayOfMonth *int   `json:"day_of_month,omitempty"`
	Hour       int    `json:"hour"`
	Minute     int    `json:"minute"`
	Enabled    bool   `json:"enabled"`
	ApplyMode  string `json:"apply_mode"`
	BatchSize  int    `json:"batch_size,omitempty"`
}

func NewSchedulesController(
	saveUseCase portsin.SaveScheduleUseCase,
	listUseCase portsin.ListSchedulesUseCase,
	deleteUseCase portsin.DeleteScheduleUseCase,
	logger *log.Logger,
) *SchedulesController {
	return &SchedulesController{
		saveUseCase:   saveUseCase,
		listUseCase:   listUseCase,
		deleteUseCase: deleteUseCase,
		logger:        logger,
	}
}

func (c *SchedulesController) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	c.saveSchedule(w, r, "")
}

func (c *SchedulesController) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	c.saveSchedule(w, r, r.PathValue("id"))
}

func (c *SchedulesController) saveSchedule(w http.ResponseWriter, r *http.Request, scheduleID string) {
	payload, appErr := parseSaveSchedulePayload(r.Body)
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	schedule, appErr := c.saveUseCase.Execute(r.Context(), dto.SaveScheduleCommand{
		ScheduleID: scheduleID,
		Channel:    payload.Channel,
		Frequency:  payload.Frequency,
		DayOfWeek:  payload.DayOfWeek,
		DayOfMonth: payload.DayOfMonth,
		Hour:       payload.Hour,
		Minute:     payload.Minute,
		Enabled:    payload.Enabled,
		ApplyMode:  payload.ApplyMode,
		BatchSize:  payload.BatchSize,
	})
	if appErr != nil {
		c.logger.Printf("request error path=/v1/reconciliation-schedules method=%s code=%s message=%s", r.Method, appErr.Code, appErr.Message)
		writeAppError(w, appErr)
		return
	}

	status := http.StatusOK
	if scheduleID == "" {
		status = http.StatusCreated
		w.Header().Set("Location", "/v1/reconciliation-schedules/"+schedule.ID)
	}
	writeJSON(w, status, schedule)
}

func (c *SchedulesController) ListSchedules(w http.ResponseWriter, r *http.Request) {
	output, appErr := c.listUseCase.Execute(r.Context(), dto.ListSchedulesQuery{
		Channel: strings.TrimSpace(r.URL.Query().Get("channel")),
	})
	if appErr != nil {
		c.logger.Printf("request error path=/v1/reconciliation-schedules method=%s code=%s message=%s", r.Method, appErr.Code, appErr.Message)
		writeAppError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"schedules": output.Schedules})
}

func (c *SchedulesController) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	appErr := c.deleteUseCase.Execute(r.Context(), dto.DeleteScheduleCommand{ScheduleID: r.PathValue("id")})
	if appErr != nil {
		c.logger.Printf("request error path=/v1/reconciliation-schedules/{id} method=%s code=%s message=%s", r.Method, appErr.Code, appErr.Message)
		writeAppError(w, appErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseSaveSchedulePayload(body io.Reader) (saveSchedulePayload, *apperrors.AppError) {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	payload := saveSchedulePayload{}
	if err := decoder.Decode(&payload); err != nil {
		return saveSchedulePayload{}, apperrors.NewValidation(
			"invalid_request",
			"request body must be valid JSON",
			map[string]any{"error": err.Error()},
		)
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return saveSchedulePayload{}, apperrors.NewValidation(
			"invalid_request",
			"request body must contain a single JSON object",
			nil,
		)
	}

	return payload, nil
}
