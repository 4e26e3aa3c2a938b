package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort                     = "8080"
	defaultOpenAPISpec              = "api/openapi.yaml"
	defaultShutdownTimeout          = 10 * time.Second
	defaultDBReadinessTimeout       = 30 * time.Second
	defaultDBReadinessRetryInterval = 2 * time.Second
	defaultMigrationsPath           = "internal/adapters/outbound/persistence/postgresql/migrations"
	defaultProcessorPageSize        = 500
	defaultSchedulerPollInterval    = 30 * time.Second
	defaultSchedulerClaimLimit      = 10
	defaultSchedulerLeaseDuration   = 5 * time.Minute
	defaultReconcileLookback        = 24 * time.Hour
)

type ConfigError struct {
	Code     string
	Message  string
	Metadata map[string]string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

type Config struct {
	Port                     string
	OpenAPISpecPath          string
	ShutdownTimeout          time.Duration
	DatabaseURL              string
	DatabaseTarget           string
	DBReadinessTimeout       time.Duration
	DBReadinessRetryInterval time.Duration
	MigrationsPath           string

	ProcessorBaseURL      string
	ProcessorClientID     string
	ProcessorClientSecret string
	ProcessorPageSize     int

	NotificationEndpointURL string
	NotificationHMACSecret  string

	SchedulerEnabled       bool
	SchedulerPollInterval  time.Duration
	SchedulerClaimLimit    int
	SchedulerWorkerID      string
	SchedulerLeaseDuration time.Duration
	ReconcileLookback      time.Duration

	InterBatchDelay time.Duration
	BatchTimeout    time.Duration
}

func LoadConfig() (Config, *ConfigError) {
	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		return Config{}, &ConfigError{
			Code:    "CONFIG_DATABASE_URL_REQUIRED",
			Message: "DATABASE_URL is required",
		}
	}

	databaseTarget, parseErr := parseDatabaseTarget(databaseURL)
	if parseErr != nil {
		return Config{}, parseErr
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	openAPISpecPath := os.Getenv("OPENAPI_SPEC_PATH")
	if openAPISpecPath == "" {
		openAPISpecPath = defaultOpenAPISpec
	}

	migrationsPath := strings.TrimSpace(os.Getenv("MIGRATIONS_PATH"))
	if migrationsPath == "" {
		migrationsPath = defaultMigrationsPath
	}

	processorBaseURL := strings.TrimSpace(os.Getenv("PROCESSOR_BASE_URL"))
	if processorBaseURL == "" {
		return Config{}, &ConfigError{
			Code:    "CONFIG_PROCESSOR_BASE_URL_REQUIRED",
			Message: "PROCESSOR_BASE_URL is required",
		}
	}
	processorClientID := strings.TrimSpace(os.Getenv("PROCESSOR_CLIENT_ID"))
	processorClientSecret := strings.TrimSpace(os.Getenv("PROCESSOR_CLIENT_SECRET"))
	if processorClientID == "" || processorClientSecret == "" {
		return Config{}, &ConfigError{
			Code:    "CONFIG_PROCESSOR_CREDENTIALS_REQUIRED",
			Message: "PROCESSOR_CLIENT_ID and PROCESSOR_CLIENT_SECRET are required",
		}
	}

	processorPageSize, cfgErr := parsePositiveIntEnv("PROCESSOR_PAGE_SIZE", defaultProcessorPageSize)
	if cfgErr != nil {
		return Config{}, cfgErr
	}

	notificationEndpointURL := strings.TrimSpace(os.Getenv("NOTIFICATION_ENDPOINT_URL"))
	notificationHMACSecret := strings.TrimSpace(os.Getenv("NOTIFICATION_HMAC_SECRET"))
	if notificationEndpointURL != "" && notificationHMACSecret == "" {
		return Config{}, &ConfigError{
			Code:    "CONFIG_NOTIFICATION_HMAC_SECRET_REQUIRED",
			Message: "NOTIFICATION_HMAC_SECRET is required when NOTIFICATION_ENDPOINT_URL is set",
		}
	}

	schedulerEnabled := false
	rawSchedulerEnabled := strings.TrimSpace(os.Getenv("SCHEDULER_ENABLED"))
	if rawSchedulerEnabled != "" {
		parsedEnabled, err := strconv.ParseBool(rawSchedulerEnabled)
		if err != nil {
			return Config{}, &ConfigError{
				Code:    "CONFIG_SCHEDULER_ENABLED_INVALID",
				Message: "SCHEDULER_ENABLED must be a boolean",
			}
		}
		schedulerEnabled = parsedEnabled
	}

	schedulerPollInterval, cfgErr := parseDurationEnv("SCHEDULER_POLL_INTERVAL", defaultSchedulerPollInterval)
	if cfgErr != nil {
		return Config{}, cfgErr
	}
	schedulerClaimLimit, cfgErr := parsePositiveIntEnv("SCHEDULER_CLAIM_LIMIT", defaultSchedulerClaimLimit)
	if cfgErr != nil {
		return Config{}, cfgErr
	}
	schedulerLeaseDuration, cfgErr := parseDurationEnv("SCHEDULER_LEASE_DURATION", defaultSchedulerLeaseDuration)
	if cfgErr != nil {
		return Config{}, cfgErr
	}
	reconcileLookback, cfgErr := parseDurationEnv("RECONCILE_LOOKBACK", defaultReconcileLookback)
	if cfgErr != nil {
		return Config{}, cfgErr
	}
	interBatchDelay, cfgErr := parseDurationEnv("INTER_BATCH_DELAY", 0)
	if cfgErr != nil {
		return Config{}, cfgErr
	}
	batchTimeout, cfgErr := parseDurationEnv("BATCH_TIMEOUT", 0)
	if cfgErr != nil {
		return Config{}, cfgErr
	}

	schedulerWorkerID := strings.TrimSpace(os.Getenv("SCHEDULER_WORKER_ID"))
	if schedulerWorkerID == "" {
		hostname, err := os.Hostname()
		if err != nil || strings.TrimSpace(hostname) == "" {
			schedulerWorkerID = "payrecon-scheduler"
		} else {
			schedulerWorkerID = hostname
		}
	}

	return Config{
		Port:                     port,
		OpenAPISpecPath:          openAPISpecPath,
		ShutdownTimeout:          defaultShutdownTimeout,
		DatabaseURL:              databaseURL,
		DatabaseTarget:           databaseTarget,
		DBReadinessTimeout:       defaultDBReadinessTimeout,
		DBReadinessRetryInterval: defaultDBReadinessRetryInterval,
		MigrationsPath:           migrationsPath,
		ProcessorBaseURL:         processorBaseURL,
		ProcessorClientID:        processorClientID,
		ProcessorClientSecret:    processorClientSecret,
		ProcessorPageSize:        processorPageSize,
		NotificationEndpointURL:  notificationEndpointURL,
		NotificationHMACSecret:   notificationHMACSecret,
		SchedulerEnabled:         schedulerEnabled,
		SchedulerPollInterval:    schedulerPollInterval,
		SchedulerClaimLimit:      schedulerClaimLimit,
		SchedulerWorkerID:        schedulerWorkerID,
		SchedulerLeaseDuration:   schedulerLeaseDuration,
		ReconcileLookback:        reconcileLookback,
		InterBatchDelay:          interBatchDelay,
		BatchTimeout:             batchTimeout,
	}, nil
}

func (c Config) Address() string {
	return ":" + c.Port
}

func parseDatabaseTarget(databaseURL string) (string, *ConfigError) {
	parsed, err := url.Parse(databaseURL)
	if err != nil {
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_URL_INVALID",
			Message: "DATABASE_URL is invalid",
		}
	}

	switch parsed.Scheme {
	case "postgres", "postgresql":
	default:
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_URL_SCHEME_INVALID",
			Message: "DATABASE_URL must use postgres or postgresql scheme",
		}
	}

	if parsed.Host == "" {
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_URL_HOST_MISSING",
			Message: "DATABASE_URL host is required",
		}
	}

	databaseName := strings.TrimPrefix(parsed.Path, "/")
	if databaseName == "" {
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_NAME_MISSING",
			Message: "DATABASE_URL database name is required",
		}
	}

	return parsed.Host + "/" + databaseName, nil
}

func parseDurationEnv(name string, fallback time.Duration) (time.Duration, *ConfigError) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed < 0 {
		return 0, &ConfigError{
			Code:     "CONFIG_DURATION_INVALID",
			Message:  name + " must be a non-negative Go duration",
			Metadata: map[string]string{"variable": name, "value": raw},
		}
	}

	return parsed, nil
}

func parsePositiveIntEnv(name string, fallback int) (int, *ConfigError) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0, &ConfigError{
			Code:     "CONFIG_INTEGER_INVALID",
			Message:  name + " must be a positive integer",
			Metadata: map[string]string{"variable": name, "value": raw},
		}
	}

	return parsed, nil
}
