package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Rules        RulesConfig
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

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	EventChannel   string
	ReportCacheTTL time.Duration
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// RulesConfig carries the static business tables injected at startup:
// group-to-priority assignment, priority-keyed SLA targets, the workload
// capacity model and attachment limits. They are configuration, not
// derived business logic.
type RulesConfig struct {
	GroupPriority     map[string]domain.TicketPriority
	SLAHours          map[domain.TicketPriority]float64
	SLADefaultHours   float64
	CapacityPerTicket int
	CapacityNormalMin int
	CapacityOverMin   int
	MaxUploadBytes    int64
	AllowedFileTypes  []string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:       os.Getenv("REDIS_PASSWORD"),
			DB:             redisDB,
			EventChannel:   getEnv("REDIS_EVENT_CHANNEL", "helpdesk.ticket.events"),
			ReportCacheTTL: time.Duration(getEnvAsInt("REPORT_CACHE_TTL_SECONDS", 60)) * time.Second,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
		Rules: DefaultRules(),
	}

	return cfg, nil
}

// DefaultRules returns the built-in business tables. Priorities not listed
// in GroupPriority fall back to P4; priorities missing from SLAHours fall
// back to SLADefaultHours.
func DefaultRules() RulesConfig {
	return RulesConfig{
		GroupPriority: map[string]domain.TicketPriority{
			"Director":   domain.TicketPriorityP1,
			"Manager":    domain.TicketPriorityP2,
			"Supervisor": domain.TicketPriorityP2,
			"HR":         domain.TicketPriorityP3,
			"Employee":   domain.TicketPriorityP3,
			"Intern":     domain.TicketPriorityP4,
		},
		SLAHours: map[domain.TicketPriority]float64{
			domain.TicketPriorityP1: 2,
			domain.TicketPriorityP2: 4,
			domain.TicketPriorityP3: 8,
			domain.TicketPriorityP4: 24,
		},
		SLADefaultHours:   24,
		CapacityPerTicket: 10,
		CapacityNormalMin: 5,
		CapacityOverMin:   10,
		MaxUploadBytes:    10 << 20,
		AllowedFileTypes:  strings.Split(getEnv("ALLOWED_FILE_TYPES", "pdf,png,jpg,jpeg,txt,log,zip"), ","),
	}
}

// PriorityForGroup resolves a requester group to its ticket priority.
func (r RulesConfig) PriorityForGroup(group string) domain.TicketPriority {
	if p, ok := r.GroupPriority[group]; ok {
		return p
	}
	return domain.TicketPriorityP4
}

// SLATarget returns the SLA target in hours for a priority tier.
func (r RulesConfig) SLATarget(p domain.TicketPriority) float64 {
	if h, ok := r.SLAHours[p]; ok {
		return h
	}
	return r.SLADefaultHours
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
