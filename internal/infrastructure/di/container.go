package di

import (
	"database/sql"
	"log"

	"payrecon/internal/adapters/inbound/http/controllers"
	httpRouter "payrecon/internal/adapters/inbound/http/router"
	"payrecon/internal/adapters/outbound/docs"
	notificationhttp "payrecon/internal/adapters/outbound/notification/http"
	postgresqlbootstrap "payrecon/internal/adapters/outbound/persistence/postgresql/bootstrap"
	postgresqlrun "payrecon/internal/adapters/outbound/persistence/postgresql/reconciliationrun"
	postgresqlschedule "payrecon/internal/adapters/outbound/persistence/postgresql/schedule"
	postgresqlshared "payrecon/internal/adapters/outbound/persistence/postgresql/shared"
	postgresqlledger "payrecon/internal/adapters/outbound/persistence/postgresql/transactionledger"
	processorhttp "payrecon/internal/adapters/outbound/processorledger/http"
	portsin "payrecon/internal/application/ports/in"
	portsout "payrecon/internal/application/ports/out"
	"payrecon/internal/application/use_cases"
	"payrecon/internal/infrastructure/config"
	"payrecon/internal/infrastructure/httpserver"
	"payrecon/internal/infrastructure/scheduler"
)

type Container struct {
	Database                     *sql.DB
	Server                       *httpserver.Server
	InitializePersistenceUseCase portsin.InitializePersistenceUseCase
	TriggerDueSchedulesUseCase   portsin.TriggerDueSchedulesUseCase
	SchedulerWorker              *scheduler.Worker
}

func Build(cfg config.Config, logger *log.Logger) (Container, error) {
	healthUseCase := use_cases.NewGetHealthUseCase()
	openAPIReadModel := docs.NewFileOpenAPISpecReadModel(cfg.OpenAPISpecPath)
	openAPIUseCase := use_cases.NewGetOpenAPISpecUseCase(openAPIReadModel)

	persistenceGateway := postgresqlbootstrap.NewGateway(
		cfg.DatabaseURL,
		cfg.DatabaseTarget,
		cfg.MigrationsPath,
		logger,
	)
	initializePersistenceUseCase := use_cases.NewInitializePersistenceUseCase(persistenceGateway)
	databasePool := postgresqlshared.NewDatabasePool(cfg.DatabaseURL, logger)

	ledgerRepository := postgresqlledger.NewRepository(databasePool, logger)
	runRepository := postgresqlrun.NewRepository(databasePool, logger)
	scheduleRepository := postgresqlschedule.NewRepository(databasePool, logger)

	processorGateway := processorhttp.NewGateway(processorhttp.Config{
		BaseURL:      cfg.ProcessorBaseURL,
		ClientID:     cfg.ProcessorClientID,
		ClientSecret: cfg.ProcessorClientSecret,
		PageSize:     cfg.ProcessorPageSize,
	})

	var notificationGateway portsout.RunNotificationGateway
	if cfg.NotificationEndpointURL != "" {
		notificationGateway = notificationhttp.NewGateway(notificationhttp.Config{
			EndpointURL: cfg.NotificationEndpointURL,
			HMACSecret:  cfg.NotificationHMACSecret,
		})
	}

	clock := use_cases.NewSystemClock()
	runRegistry := use_cases.NewRunRegistry()

	runReconciliationUseCase := use_cases.NewRunReconciliationUseCase(
		ledgerRepository,
		processorGateway,
		runRepository,
		notificationGateway,
		runRegistry,
		clock,
		use_cases.RunReconciliationOptions{
			InterBatchDelay: cfg.InterBatchDelay,
			BatchTimeout:    cfg.BatchTimeout,
		},
		logger,
	)
	getRunUseCase := use_cases.NewGetRunUseCase(runRepository)
	listRunsUseCase := use_cases.NewListRunsUseCase(runRepository)
	cancelRunUseCase := use_cases.NewCancelRunUseCase(runRepository, runRegistry)

	saveScheduleUseCase := use_cases.NewSaveScheduleUseCase(scheduleRepository, clock)
	listSchedulesUseCase := use_cases.NewListSchedulesUseCase(scheduleRepository)
	deleteScheduleUseCase := use_cases.NewDeleteScheduleUseCase(scheduleRepository)
	triggerDueSchedulesUseCase := use_cases.NewTriggerDueSchedulesUseCase(
		scheduleRepository,
		runReconciliationUseCase,
		clock,
		cfg.ReconcileLookback,
	)

	schedulerWorker := scheduler.NewWorker(
		cfg.SchedulerEnabled,
		cfg.SchedulerPollInterval,
		cfg.SchedulerClaimLimit,
		cfg.SchedulerWorkerID,
		cfg.SchedulerLeaseDuration,
		triggerDueSchedulesUseCase,
		logger,
	)

	healthController := controllers.NewHealthController(healthUseCase, logger)
	swaggerController := controllers.NewSwaggerController(openAPIUseCase, logger)
	runsController := controllers.NewReconciliationRunsController(
		runReconciliationUseCase,
		getRunUseCase,
		listRunsUseCase,
		cancelRunUseCase,
		logger,
	)
	schedulesController := controllers.NewSchedulesController(
		saveScheduleUseCase,
		listSchedulesUseCase,
		deleteScheduleUseCase,
		logger,
	)

	router := httpRouter.New(httpRouter.Dependencies{
		HealthController:             healthController,
		SwaggerController:            swaggerController,
		ReconciliationRunsController: runsController,
		SchedulesController:          schedulesController,
	})

	server := httpserver.New(cfg.Address(), router, logger)

	return Container{
		Database:                     databasePool,
		Server:                       server,
		InitializePersistenceUseCase: initializePersistenceUseCase,
		TriggerDueSchedulesUseCase:   triggerDueSchedulesUseCase,
		SchedulerWorker:              schedulerWorker,
	}, nil
}
