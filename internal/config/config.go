package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Logger       LoggerConfig
	Scoring      ScoringConfig
	Notification NotificationConfig
	Directory    DirectoryConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// ScoringConfig holds scoring gateway connection values.
type ScoringConfig struct {
	BaseURL              string
	AssignTimeoutSeconds int
	SingleTimeoutSeconds int
	BatchTimeoutSeconds  int
}

// NotificationConfig controls assignment notification delivery.
type NotificationConfig struct {
	FromName         string
	FromAddress      string
	ReplyTo          string
	TestMode         bool
	TestRecipient    string
	BatchDelayMillis int
}

// DirectoryConfig controls the seeded engineer directory.
type DirectoryConfig struct {
	EmailDomain string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	batchDelay := getEnvAsInt("NOTIFY_BATCH_DELAY_MILLIS", 500)
	if batchDelay < 0 {
		return nil, fmt.Errorf("invalid NOTIFY_BATCH_DELAY_MILLIS: %d", batchDelay)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "dispatch-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "3000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Scoring: ScoringConfig{
			BaseURL:              getEnv("AI_SERVICE_URL", "http://127.0.0.1:5000"),
			AssignTimeoutSeconds: getEnvAsInt("AI_ASSIGN_TIMEOUT_SECONDS", 30),
			SingleTimeoutSeconds: getEnvAsInt("AI_ASSIGN_SINGLE_TIMEOUT_SECONDS", 60),
			BatchTimeoutSeconds:  getEnvAsInt("AI_BATCH_TIMEOUT_SECONDS", 120),
		},
		Notification: NotificationConfig{
			FromName:         getEnv("NOTIFY_FROM_NAME", "ITOD Services - Database Administrator"),
			FromAddress:      getEnv("NOTIFY_FROM_ADDRESS", "noreply@example.com"),
			ReplyTo:          getEnv("NOTIFY_REPLY_TO", "no-reply@example.com"),
			TestMode:         getEnvAsBool("NOTIFY_TEST_MODE", false),
			TestRecipient:    os.Getenv("NOTIFY_TEST_RECIPIENT"),
			BatchDelayMillis: batchDelay,
		},
		Directory: DirectoryConfig{
			EmailDomain: getEnv("EMPLOYEE_EMAIL_DOMAIN", "example.com"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AssignTimeout returns the single-assignment call timeout used on the
// submission path.
func (s ScoringConfig) AssignTimeout() time.Duration {
	return time.Duration(s.AssignTimeoutSeconds) * time.Second
}

// SingleTimeout returns the timeout for the explicit assign-single action.
func (s ScoringConfig) SingleTimeout() time.Duration {
	return time.Duration(s.SingleTimeoutSeconds) * time.Second
}

// BatchTimeout returns the batch recommendation call timeout.
func (s ScoringConfig) BatchTimeout() time.Duration {
	return time.Duration(s.BatchTimeoutSeconds) * time.Second
}

// BatchDelay returns the pacing delay between consecutive batch sends.
func (n NotificationConfig) BatchDelay() time.Duration {
	return time.Duration(n.BatchDelayMillis) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
