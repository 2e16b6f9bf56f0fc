package config

import "time"

// Application constants - hardcoded values for the churn mailing system
const (
	// Application Info
	AppName    = "churnmail"
	AppVersion = "1.2.0"

	// Environment variable namespace
	EnvPrefix = "CHURNMAIL"

	// Mailing output
	OutputFilenamePattern = "Mailing RAF 02.01.2006" // time layout, date of generation
	OutputSheetName       = "Churn Processado"

	// Pipeline defaults
	DefaultRecencyDays = 60

	// Upload limits
	DefaultMaxUploadMB = 25

	// File Paths (relative to working directory)
	DefaultArtifactsDir = "data/artifacts"
	DefaultLogsDir      = "logs"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Timeouts
	DefaultRequestTimeout  = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Retention
	DefaultArtifactTTL = time.Hour
	DefaultSessionTTL  = 4 * time.Hour

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// API Endpoints (internal)
	APIBasePath        = "/api"
	MailingEndpoint    = "/api/mailing"
	CategoriesEndpoint = "/api/categories"
	SessionEndpoint    = "/api/session"
	HealthEndpoint     = "/api/health"
	MetricsEndpoint    = "/metrics"
)
