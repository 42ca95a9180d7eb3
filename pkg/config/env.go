package config

const (
	EnvAppEnv  = "APP_ENV"
	EnvBaseURL = "BASE_URL"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvSessionSecret       = "SESSION_SECRET"
	EnvSessionTTL          = "SESSION_TTL"
	EnvSessionStore        = "SESSION_STORE"
	EnvSessionBoltPath     = "SESSION_BOLT_PATH"
	EnvSessionCookieSecure = "SESSION_COOKIE_SECURE"

	EnvBcryptCost       = "BCRYPT_COST"
	EnvPasswordResetTTL = "PASSWORD_RESET_TTL"

	EnvCurrencySymbol     = "CURRENCY_SYMBOL"
	EnvDefaultPhoneRegion = "DEFAULT_PHONE_REGION"

	EnvAPIRateLimitRequests = "API_RATE_LIMIT_REQUESTS"
	EnvAPIRateLimitWindow   = "API_RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvSMTPHost     = "SMTP_HOST"
	EnvSMTPPort     = "SMTP_PORT"
	EnvSMTPUsername = "SMTP_USERNAME"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvMailFrom     = "MAIL_FROM"

	EnvKafkaBrokers           = "KAFKA_BROKERS"
	EnvKafkaAppointmentsTopic = "KAFKA_APPOINTMENTS_TOPIC"
	EnvKafkaConsumerGroup     = "KAFKA_CONSUMER_GROUP"
)
