package config

import "time"

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DefaultAppEnv  = EnvDevelopment
	DefaultBaseURL = "http://localhost:3000"

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "petcare"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort      = "3000"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultSessionTTL      = 24 * time.Hour
	DefaultSessionStore    = SessionStoreMongo
	DefaultSessionBoltPath = "petcare-sessions.db"

	// Only usable outside production; Validate rejects it there.
	DefaultDevSessionSecret = "petcare-development-session-secret"

	DefaultBcryptCost       = 12
	DefaultPasswordResetTTL = 15 * time.Minute

	DefaultCurrencySymbol     = "Rs"
	DefaultPhoneRegion        = "MU"
	DefaultAPIRateLimitWindow = 15 * time.Minute

	DefaultAPIRateLimitRequests = 100

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultSMTPPort = 587
	DefaultMailFrom = "noreply@petcare.local"

	DefaultKafkaAppointmentsTopic = "petcare.appointments"
	DefaultKafkaConsumerGroup     = "petcare-notifier"
)

const (
	SessionStoreMongo  = "mongo"
	SessionStoreMemory = "memory"
	SessionStoreBolt   = "bolt"
)
