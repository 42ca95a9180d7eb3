package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"petcare/pkg/client"
	"petcare/pkg/logger"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv  string
	BaseURL string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port      string
	LogLevel  string
	LogFormat string

	SessionSecret       string
	SessionTTL          time.Duration
	SessionStore        string
	SessionBoltPath     string
	SessionCookieSecure bool

	BcryptCost       int
	PasswordResetTTL time.Duration

	CurrencySymbol     string
	DefaultPhoneRegion string

	APIRateLimitRequests int
	APIRateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	KafkaBrokers           []string
	KafkaAppointmentsTopic string
	KafkaConsumerGroup     string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	envFileErr := godotenv.Load()

	cfg := &Config{
		AppEnv:  strings.ToLower(getEnvStr(EnvAppEnv, DefaultAppEnv)),
		BaseURL: strings.TrimRight(getEnvStr(EnvBaseURL, DefaultBaseURL), "/"),

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port:      getEnvStr(EnvPort, DefaultPort),
		LogLevel:  getEnvStr(EnvLogLevel, DefaultLogLevel),
		LogFormat: getEnvStr(EnvLogFormat, DefaultLogFormat),

		SessionSecret:       getEnvStr(EnvSessionSecret, ""),
		SessionTTL:          getEnvDuration(EnvSessionTTL, DefaultSessionTTL),
		SessionStore:        strings.ToLower(getEnvStr(EnvSessionStore, DefaultSessionStore)),
		SessionBoltPath:     getEnvStr(EnvSessionBoltPath, DefaultSessionBoltPath),
		SessionCookieSecure: getEnvBool(EnvSessionCookieSecure, false),

		BcryptCost:       getEnvNum(EnvBcryptCost, DefaultBcryptCost),
		PasswordResetTTL: getEnvDuration(EnvPasswordResetTTL, DefaultPasswordResetTTL),

		CurrencySymbol:     getEnvStr(EnvCurrencySymbol, DefaultCurrencySymbol),
		DefaultPhoneRegion: strings.ToUpper(getEnvStr(EnvDefaultPhoneRegion, DefaultPhoneRegion)),

		APIRateLimitRequests: getEnvNum(EnvAPIRateLimitRequests, DefaultAPIRateLimitRequests),
		APIRateLimitWindow:   getEnvDuration(EnvAPIRateLimitWindow, DefaultAPIRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		SMTPHost:     getEnvStr(EnvSMTPHost, ""),
		SMTPPort:     getEnvNum(EnvSMTPPort, DefaultSMTPPort),
		SMTPUsername: getEnvStr(EnvSMTPUsername, ""),
		SMTPPassword: getEnvStr(EnvSMTPPassword, ""),
		MailFrom:     getEnvStr(EnvMailFrom, DefaultMailFrom),

		KafkaBrokers:           getEnvList(EnvKafkaBrokers),
		KafkaAppointmentsTopic: getEnvStr(EnvKafkaAppointmentsTopic, DefaultKafkaAppointmentsTopic),
		KafkaConsumerGroup:     getEnvStr(EnvKafkaConsumerGroup, DefaultKafkaConsumerGroup),

		Client: client.NewClient(),
	}

	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		AddSource: true,
		Service:   serviceName,
	})

	if envFileErr != nil && !errors.Is(envFileErr, fs.ErrNotExist) {
		cfg.Log.Warn("Failed to read .env file", "error", envFileErr)
	}

	if cfg.SessionSecret == "" && cfg.AppEnv != EnvProduction {
		cfg.SessionSecret = DefaultDevSessionSecret
		cfg.Log.Warn("SESSION_SECRET not set, using development secret")
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) IsDevelopment() bool {
	return cfg.AppEnv != EnvProduction
}

func (cfg *Config) KafkaEnabled() bool {
	return len(cfg.KafkaBrokers) > 0
}

func (cfg *Config) Validate() error {
	var errors []string

	if cfg.AppEnv != EnvDevelopment && cfg.AppEnv != EnvProduction {
		errors = append(errors, fmt.Sprintf("AppEnv must be '%s' or '%s', got: %s", EnvDevelopment, EnvProduction, cfg.AppEnv))
	}

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if !regexp.MustCompile(`^https?://`).MatchString(cfg.BaseURL) {
		errors = append(errors, fmt.Sprintf("BaseURL must start with 'http://' or 'https://', got: %s", cfg.BaseURL))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	if cfg.SessionSecret == "" {
		errors = append(errors, "SessionSecret is required in production")
	} else if cfg.AppEnv == EnvProduction && cfg.SessionSecret == DefaultDevSessionSecret {
		errors = append(errors, "SessionSecret must not use the development default in production")
	}

	switch cfg.SessionStore {
	case SessionStoreMongo, SessionStoreMemory:
	case SessionStoreBolt:
		if cfg.SessionBoltPath == "" {
			errors = append(errors, "SessionBoltPath cannot be empty when SessionStore is bolt")
		}
	default:
		errors = append(errors, fmt.Sprintf("SessionStore must be one of mongo, memory, bolt, got: %s", cfg.SessionStore))
	}

	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		errors = append(errors, fmt.Sprintf("BcryptCost must be between 4 and 31, got: %d", cfg.BcryptCost))
	}

	if len(cfg.DefaultPhoneRegion) != 2 {
		errors = append(errors, fmt.Sprintf("DefaultPhoneRegion must be a two-letter region code, got: %s", cfg.DefaultPhoneRegion))
	}

	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.SessionTTL <= 0 {
		errors = append(errors, fmt.Sprintf("SessionTTL must be positive, got: %s", cfg.SessionTTL))
	}
	if cfg.PasswordResetTTL <= 0 {
		errors = append(errors, fmt.Sprintf("PasswordResetTTL must be positive, got: %s", cfg.PasswordResetTTL))
	}
	if cfg.APIRateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("APIRateLimitWindow must be positive, got: %s", cfg.APIRateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.APIRateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("APIRateLimitRequests must be positive, got: %d", cfg.APIRateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.SMTPHost != "" && (cfg.SMTPPort < 1 || cfg.SMTPPort > 65535) {
		errors = append(errors, fmt.Sprintf("SMTPPort must be between 1 and 65535, got: %d", cfg.SMTPPort))
	}
	if cfg.MailFrom == "" {
		errors = append(errors, "MailFrom cannot be empty")
	}

	if cfg.KafkaEnabled() && cfg.KafkaAppointmentsTopic == "" {
		errors = append(errors, "KafkaAppointmentsTopic cannot be empty when KafkaBrokers is set")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"app_env", cfg.AppEnv,
		"base_url", cfg.BaseURL,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"session_store", cfg.SessionStore,
		"session_ttl", cfg.SessionTTL,
		"session_cookie_secure", cfg.SessionCookieSecure,
		"bcrypt_cost", cfg.BcryptCost,
		"password_reset_ttl", cfg.PasswordResetTTL,
		"currency_symbol", cfg.CurrencySymbol,
		"default_phone_region", cfg.DefaultPhoneRegion,
		"api_rate_limit_requests", cfg.APIRateLimitRequests,
		"api_rate_limit_window", cfg.APIRateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"smtp_host", cfg.SMTPHost,
		"smtp_auth_set", cfg.SMTPUsername != "",
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_appointments_topic", cfg.KafkaAppointmentsTopic,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}
