package router

import (
	"net/http"

	"payrecon/internal/adapters/inbound/http/controllers"
)

type Dependencies struct {
	HealthController             *controllers.HealthController
	SwaggerController            *controllers.SwaggerController
	ReconciliationRunsController *controllers.ReconciliationRunsController
	SchedulesController          *controllers.SchedulesController
}

func New(deps Dependencies) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", deps.HealthController.GetHealth)
	mux.HandleFunc("GET /swagger", deps.SwaggerController.RedirectToIndex)
	mux.HandleFunc("GET /swagger/openapi.yaml", deps.SwaggerController.GetOpenAPISpec)
	mux.HandleFunc("GET /swagger/", deps.SwaggerController.ServeUI)
	mux.HandleFunc("POST /v1/reconciliation-runs", deps.ReconciliationRunsController.CreateRun)
	mux.HandleFunc("GET /v1/reconciliation-runs", deps.ReconciliationRunsController.ListRuns)
	mux.HandleFunc("GET /v1/reconciliation-runs/{id}", deps.ReconciliationRunsController.GetRun)
	mux.HandleFunc("POST /v1/reconciliation-runs/{id}/cancel", deps.ReconciliationRunsController.CancelRun)
	mux.HandleFunc("POST /v1/reconciliation-schedules", deps.SchedulesController.CreateSchedule)
	mux.HandleFunc("GET /v1/reconciliation-schedules", deps.SchedulesController.ListSchedules)
	mux.HandleFunc("PUT /v1/reconciliation-schedules/{id}", deps.SchedulesController.UpdateSchedule)
	mux.HandleFunc("DELETE /v1/reconciliation-schedules/{id}", deps.SchedulesController.DeleteSchedule)

	return mux
}
