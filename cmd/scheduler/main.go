package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"payrecon/internal/application/dto"
	"payrecon/internal/infrastructure/config"
	"payrecon/internal/infrastructure/di"
	"payrecon/internal/infrastructure/scheduler"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags|log.LUTC)
	cfg, cfgErr := config.LoadConfig()
	if cfgErr != nil {
		logger.Printf("startup config error code=%s message=%s metadata=%v", cfgErr.Code, cfgErr.Message, cfgErr.Metadata)
		os.Exit(1)
	}

	container, buildErr := di.Build(cfg, logger)
	if buildErr != nil {
		logger.Printf("dependency wiring error: %v", buildErr)
		os.Exit(1)
	}
	defer func() {
		if container.Database == nil {
			return
		}
		if err := container.Database.Close(); err != nil {
			logger.Printf("database close warning error=%v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Printf("scheduler persistence initialization starting database_target=%s", cfg.DatabaseTarget)
	persistenceErr := container.InitializePersistenceUseCase.Execute(ctx, dto.InitializePersistenceCommand{
		ReadinessTimeout:       cfg.DBReadinessTimeout,
		ReadinessRetryInterval: cfg.DBReadinessRetryInterval,
	})
	if persistenceErr != nil {
		logger.Printf(
			"scheduler persistence initialization failed code=%s message=%s metadata=%v",
			persistenceErr.Code,
			persistenceErr.Message,
			persistenceErr.Details,
		)
		os.Exit(1)
	}
	logger.Printf("scheduler persistence initialization completed database_target=%s", cfg.DatabaseTarget)

	// The standalone runtime always polls, regardless of SCHEDULER_ENABLED.
	worker := scheduler.NewWorker(
		true,
		cfg.SchedulerPollInterval,
		cfg.SchedulerClaimLimit,
		cfg.SchedulerWorkerID,
		cfg.SchedulerLeaseDuration,
		container.TriggerDueSchedulesUseCase,
		logger,
	)

	worker.Start(ctx)
	logger.Printf("scheduler stopped")
}
