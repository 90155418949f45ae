package config

import (
	"os"
	"strconv"
	"time"
)

type ClaimsServiceConfig struct {
	Port        string
	APIKey      string
	PostgresCfg PostgresConfig
	RabbitMQCfg RabbitMQConfig
	RedisCfg    RedisConfig
	MinioCfg    MinioConfig
	CarrierCfg  CarrierConfig
	SyncCfg     SyncConfig
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RabbitMQConfig struct {
	Username string
	Password string
	Host     string
	Port     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type MinioConfig struct {
	MinioURL       string
	MinioAccessKey string
	MinioSecretKey string
	MinioSecure    string
	PhotoBucket    string
}

// CarrierConfig holds per-carrier endpoints and credentials. Carriers with no
// entry here are registered as manual-process (no filing, no sync).
type CarrierConfig struct {
	RequestTimeout time.Duration

	MeridianBaseURL string
	MeridianAPIKey  string

	PinnacleBaseURL   string
	PinnacleAccountID string
	PinnacleToken     string
}

type SyncConfig struct {
	SweepInterval time.Duration
	SweepWorkers  int
	MaxRetries    int
	RetryBackoff  time.Duration
}

func New() *ClaimsServiceConfig {
	return &ClaimsServiceConfig{
		Port:   getEnvOrDefault("PORT", "8086"),
		APIKey: getEnvOrDefault("API_KEY", ""),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_DB", "claims"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		RabbitMQCfg: RabbitMQConfig{
			Username: getEnvOrDefault("RABBITMQ_USER", "admin"),
			Password: getEnvOrDefault("RABBITMQ_PWD", "admin"),
			Host:     getEnvOrDefault("RABBITMQ_HOST", "localhost"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       0,
		},
		MinioCfg: MinioConfig{
			MinioURL:       getEnvOrDefault("MINIO_ENDPOINT", "http://localhost:9407"),
			MinioAccessKey: getEnvOrDefault("MINIO_ACCESS_KEY", "minio"),
			MinioSecretKey: getEnvOrDefault("MINIO_SECRET_KEY", "minio123"),
			MinioSecure:    getEnvOrDefault("MINIO_SECURE", "false"),
			PhotoBucket:    getEnvOrDefault("MINIO_PHOTO_BUCKET", "damage-photos"),
		},
		CarrierCfg: CarrierConfig{
			RequestTimeout:    getEnvDuration("CARRIER_REQUEST_TIMEOUT", 15*time.Second),
			MeridianBaseURL:   getEnvOrDefault("MERIDIAN_BASE_URL", "https://claims.meridianmutual.example.com"),
			MeridianAPIKey:    getEnvOrDefault("MERIDIAN_API_KEY", ""),
			PinnacleBaseURL:   getEnvOrDefault("PINNACLE_BASE_URL", "https://api.pinnaclepc.example.com"),
			PinnacleAccountID: getEnvOrDefault("PINNACLE_ACCOUNT_ID", ""),
			PinnacleToken:     getEnvOrDefault("PINNACLE_TOKEN", ""),
		},
		SyncCfg: SyncConfig{
			SweepInterval: getEnvDuration("SYNC_SWEEP_INTERVAL", 6*time.Hour),
			SweepWorkers:  getEnvInt("SYNC_SWEEP_WORKERS", 4),
			MaxRetries:    getEnvInt("SYNC_MAX_RETRIES", 3),
			RetryBackoff:  getEnvDuration("SYNC_RETRY_BACKOFF", 5*time.Second),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
