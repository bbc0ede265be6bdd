package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type EnvConfig struct {
	Postgres struct {
		Host     string
		Database string
		Username string
		Password string
		Port     string
	}
	Redis struct {
		Password  string
		Database  int
		RedisHost string
		RedisPort string
	}
	RabbitMQ struct {
		Host     string
		Port     string
		Username string
		Password string
	}
	Minio struct {
		Endpoint     string
		RootUser     string
		RootPassword string
	}
	JWT struct {
		SecretKey string
	}
	CORS struct {
		AllowDomains string
	}
	Query struct {
		CacheEnabled bool
		CacheTTL     time.Duration
	}
	Aggregator struct {
		Interval time.Duration
		Windows  string // comma-separated "<interval>=<retention>" pairs, e.g. "1m=24h,1h=720h"
	}
	Evaluator struct {
		Interval time.Duration
	}
	Anomaly struct {
		Interval        time.Duration
		Lookback        time.Duration
		StddevThreshold float64
		MinDataPoints   int
	}
	Predictor struct {
		Method           string
		ForecastHorizon  time.Duration
		HistoricalWindow time.Duration
	}
	Export struct {
		PollInterval time.Duration
		LocalDir     string
	}
	Grafana struct {
		OTLPEndpoint string
		ServiceName  string
	}
	Environment struct {
		Mode string
	}
	HTTPPort string
}

func LoadEnvConfig() *EnvConfig {
	var config EnvConfig

	// Postgres
	config.Postgres.Host = os.Getenv("PGPOOL_HOST")
	config.Postgres.Database = os.Getenv("PGPOOL_DB")
	config.Postgres.Username = os.Getenv("PGPOOL_USER")
	config.Postgres.Password = os.Getenv("PGPOOL_PASSWORD")
	config.Postgres.Port = os.Getenv("PGPOOL_PORT")
	if config.Postgres.Port == "" {
		config.Postgres.Port = "5432"
	}

	// Redis
	config.Redis.Password = os.Getenv("REDIS_PASSWORD")
	config.Redis.Database, _ = strconv.Atoi(os.Getenv("REDIS_DB"))
	config.Redis.RedisHost = os.Getenv("REDIS_HOST")
	config.Redis.RedisPort = os.Getenv("REDIS_PORT")
	if config.Redis.RedisPort == "" {
		config.Redis.RedisPort = "6379"
	}

	// RabbitMQ
	config.RabbitMQ.Host = os.Getenv("RABBITMQ_HOST")
	if config.RabbitMQ.Host == "" {
		config.RabbitMQ.Host = "localhost"
	}
	config.RabbitMQ.Port = os.Getenv("RABBITMQ_PORT")
	if config.RabbitMQ.Port == "" {
		config.RabbitMQ.Port = "5672"
	}
	config.RabbitMQ.Username = os.Getenv("RABBITMQ_USER")
	if config.RabbitMQ.Username == "" {
		config.RabbitMQ.Username = "guest"
	}
	config.RabbitMQ.Password = os.Getenv("RABBITMQ_PASSWORD")
	if config.RabbitMQ.Password == "" {
		config.RabbitMQ.Password = "guest"
	}

	// MinIO
	config.Minio.Endpoint = os.Getenv("MINIO_ENDPOINT")
	config.Minio.RootUser = os.Getenv("MINIO_ROOT_USER")
	config.Minio.RootPassword = os.Getenv("MINIO_ROOT_PASSWORD")

	// JWT
	config.JWT.SecretKey = os.Getenv("JWT_SECRET_KEY")

	config.CORS.AllowDomains = os.Getenv("ALLOWED_DOMAINS")

	// Query engine
	config.Query.CacheEnabled = envBool("QUERY_CACHE_ENABLED", true)
	config.Query.CacheTTL = envDuration("QUERY_CACHE_TTL", 5*time.Minute)

	// Aggregator
	config.Aggregator.Interval = envDuration("AGGREGATION_INTERVAL", time.Minute)
	config.Aggregator.Windows = os.Getenv("AGGREGATION_WINDOWS")
	if config.Aggregator.Windows == "" {
		config.Aggregator.Windows = "1m=24h,5m=168h,1h=720h,24h=8760h"
	}

	// Alert evaluator
	config.Evaluator.Interval = envDuration("ALERT_EVALUATION_INTERVAL", 30*time.Second)

	// Anomaly detector
	config.Anomaly.Interval = envDuration("ANOMALY_DETECTION_INTERVAL", time.Minute)
	config.Anomaly.Lookback = envDuration("ANOMALY_BASELINE_LOOKBACK", 24*time.Hour)
	config.Anomaly.StddevThreshold = envFloat("ANOMALY_STDDEV_THRESHOLD", 3.0)
	config.Anomaly.MinDataPoints = envInt("ANOMALY_MIN_DATA_POINTS", 20)

	// Predictor
	config.Predictor.Method = os.Getenv("PREDICTION_METHOD")
	if config.Predictor.Method == "" {
		config.Predictor.Method = "linear_regression"
	}
	config.Predictor.ForecastHorizon = envDuration("PREDICTION_HORIZON", 6*time.Hour)
	config.Predictor.HistoricalWindow = envDuration("PREDICTION_HISTORY_WINDOW", 24*time.Hour)

	// BI export
	config.Export.PollInterval = envDuration("EXPORT_POLL_INTERVAL", time.Minute)
	config.Export.LocalDir = os.Getenv("EXPORT_LOCAL_DIR")
	if config.Export.LocalDir == "" {
		config.Export.LocalDir = "/var/lib/gau-observability/exports"
	}

	// Grafana/OpenTelemetry
	otlpEndpoint := os.Getenv("GRAFANA_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4318"
	}
	// Remove protocol for OpenTelemetry client to avoid duplicate protocols
	otlpEndpoint = strings.TrimPrefix(otlpEndpoint, "https://")
	otlpEndpoint = strings.TrimPrefix(otlpEndpoint, "http://")
	config.Grafana.OTLPEndpoint = otlpEndpoint
	config.Grafana.ServiceName = os.Getenv("SERVICE_NAME")
	if config.Grafana.ServiceName == "" {
		config.Grafana.ServiceName = "gau-observability"
	}

	config.Environment.Mode = os.Getenv("DEPLOY_ENV")
	if config.Environment.Mode == "" {
		config.Environment.Mode = "development"
	}

	config.HTTPPort = os.Getenv("HTTP_PORT")
	if config.HTTPPort == "" {
		config.HTTPPort = "8080"
	}

	return &config
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}
