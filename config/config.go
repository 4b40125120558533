package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendS3       = "s3"
	BackendMinio    = "minio"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type (
	Config struct {
		HTTP            HTTP
		Log             Log
		Upload          Upload
		ObjectStore     ObjectStore
		S3              S3
		Minio           Minio
		Index           Index
		PG              PG
		Redis           Redis
		Search          Search
		Kafka           Kafka
		KafkaController KafkaController
		Thumbnail       Thumbnail
		Reconciler      Reconciler
		Metrics         Metrics
		Swagger         Swagger
	}

	HTTP struct {
		Port           string        `env:"HTTP_PORT,required"`
		UsePreforkMode bool          `env:"HTTP_USE_PREFORK_MODE" envDefault:"false"`
		ReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		CORSOrigins    []string      `env:"HTTP_CORS_ORIGINS" envDefault:"*"`
		ProxyHeader    string        `env:"HTTP_PROXY_HEADER"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL,required"`
	}

	Upload struct {
		// единственный лимит на размер загрузки, значения по умолчанию нет
		MaxFileSize int64  `env:"UPLOAD_MAX_FILE_SIZE,required"`
		Source      string `env:"UPLOAD_SOURCE" envDefault:"ios-shortcuts"`
		TimeZone    string `env:"UPLOAD_TIME_ZONE" envDefault:"Asia/Shanghai"`
	}

	ObjectStore struct {
		Backend   string `env:"OBJECT_STORE_BACKEND" envDefault:"s3"`
		PublicURL string `env:"OBJECT_STORE_PUBLIC_URL,required"`
	}

	S3 struct {
		Endpoint       string        `env:"S3_ENDPOINT"`
		AccessKey      string        `env:"S3_ACCESS_KEY"`
		SecretKey      string        `env:"S3_SECRET_KEY"`
		Bucket         string        `env:"S3_BUCKET"`
		Region         string        `env:"S3_REGION" envDefault:"garage"`
		CfgLoadTimeout time.Duration `env:"S3_LOAD_CFG_TIMEOUT" envDefault:"10s"`
	}

	Minio struct {
		Endpoint  string `env:"MINIO_ENDPOINT"`
		AccessKey string `env:"MINIO_ACCESS_KEY"`
		SecretKey string `env:"MINIO_SECRET_KEY"`
		Bucket    string `env:"MINIO_BUCKET"`
		UseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	}

	Index struct {
		Backend string `env:"INDEX_BACKEND" envDefault:"postgres"`
	}

	PG struct {
		PoolMax int    `env:"PG_POOL_MAX" envDefault:"10"`
		URL     string `env:"PG_URL"`
	}

	Redis struct {
		URL      string `env:"REDIS_URL"`
		PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	}

	Search struct {
		Window int `env:"SEARCH_WINDOW" envDefault:"100"`
	}

	Kafka struct {
		Enabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
		Brokers []string `env:"KAFKA_BROKERS"`
		GroupID string   `env:"KAFKA_GROUP_ID" envDefault:"photo-thumbnails"`
		Topic   string   `env:"KAFKA_TOPIC" envDefault:"image-events"`
	}

	KafkaController struct {
		CommitTimeout   time.Duration `env:"KAFKA_CONTROLLER_COMMIT_TIMEOUT" envDefault:"2s"`
		ProcessTimeout  time.Duration `env:"KAFKA_CONTROLLER_PROCESS_TIMEOUT" envDefault:"15s"` // скачивание, рендер и загрузка превью
		Workers         int           `env:"KAFKA_CONTROLLER_WORKERS" envDefault:"0"`           // 0 - по числу CPU
		ShutdownTimeout time.Duration `env:"KAFKA_CONTROLLER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	}

	Thumbnail struct {
		Width  int `env:"THUMBNAIL_WIDTH" envDefault:"320"`
		Height int `env:"THUMBNAIL_HEIGHT" envDefault:"320"`
	}

	Reconciler struct {
		Enabled         bool          `env:"RECONCILER_ENABLED" envDefault:"true"`
		Interval        time.Duration `env:"RECONCILER_INTERVAL" envDefault:"1h"`
		Repair          bool          `env:"RECONCILER_REPAIR" envDefault:"false"`
		GracePeriod     time.Duration `env:"RECONCILER_GRACE_PERIOD" envDefault:"1h"`
		PassTimeout     time.Duration `env:"RECONCILER_PASS_TIMEOUT" envDefault:"5m"`
		ShutdownTimeout time.Duration `env:"RECONCILER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	}

	Metrics struct {
		Enabled bool `env:"METRICS_ENABLED" envDefault:"true"`
	}

	Swagger struct {
		Enabled bool `env:"SWAGGER_ENABLED" envDefault:"false"`
	}
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}

// validate checks the settings the selected backends depend on.
func (c *Config) validate() error {
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILE_SIZE must be positive")
	}

	if _, err := time.LoadLocation(c.Upload.TimeZone); err != nil {
		return fmt.Errorf("UPLOAD_TIME_ZONE: %w", err)
	}

	switch c.ObjectStore.Backend {
	case BackendS3:
		if c.S3.Endpoint == "" || c.S3.Bucket == "" {
			return fmt.Errorf("S3_ENDPOINT and S3_BUCKET are required for the s3 backend")
		}
	case BackendMinio:
		if c.Minio.Endpoint == "" || c.Minio.Bucket == "" {
			return fmt.Errorf("MINIO_ENDPOINT and MINIO_BUCKET are required for the minio backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown OBJECT_STORE_BACKEND %q", c.ObjectStore.Backend)
	}

	switch c.Index.Backend {
	case BackendPostgres:
		if c.PG.URL == "" {
			return fmt.Errorf("PG_URL is required for the postgres backend")
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown INDEX_BACKEND %q", c.Index.Backend)
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}

	return nil
}
