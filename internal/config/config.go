package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name      string `envconfig:"APP_NAME" default:"Forwarder"`
		Port      int    `envconfig:"PORT" default:"8080"`
		LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
		LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
		JWTSecret string `envconfig:"JWT_SECRET"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"forwarder"`
		Migrate  bool   `envconfig:"DB_MIGRATE" default:"true"`

		MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
		MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
		ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Mail struct {
		TenantID        string        `envconfig:"MAIL_TENANT_ID"`
		ClientID        string        `envconfig:"MAIL_CLIENT_ID"`
		ClientSecret    string        `envconfig:"MAIL_CLIENT_SECRET"`
		Mailbox         string        `envconfig:"MAIL_MAILBOX"`
		GraphBaseURL    string        `envconfig:"MAIL_GRAPH_BASE_URL" default:"https://graph.microsoft.com/v1.0"`
		TokenTimeout    time.Duration `envconfig:"MAIL_TOKEN_TIMEOUT" default:"30s"`
		RequestTimeout  time.Duration `envconfig:"MAIL_REQUEST_TIMEOUT" default:"60s"`
		RequestsPerSec  float64       `envconfig:"MAIL_REQUESTS_PER_SECOND" default:"4"`
		ProcessedFolder string        `envconfig:"MAIL_PROCESSED_FOLDER"`
	}

	Storage struct {
		Provider        string        `envconfig:"STORAGE_PROVIDER" default:"local"`
		Disabled        bool          `envconfig:"STORAGE_DISABLED" default:"false"`
		LocalRoot       string        `envconfig:"STORAGE_LOCAL_ROOT" default:"./media"`
		PublicBaseURL   string        `envconfig:"STORAGE_PUBLIC_BASE_URL" default:"/media"`
		Bucket          string        `envconfig:"GCS_BUCKET"`
		CredentialsJSON string        `envconfig:"GCS_CREDENTIALS_JSON"`
		SignerEmail     string        `envconfig:"GCS_SIGNER_EMAIL"`
		SignerKey       string        `envconfig:"GCS_SIGNER_PRIVATE_KEY"`
		SignedURLTTL    time.Duration `envconfig:"STORAGE_SIGNED_URL_TTL" default:"15m"`
		UploadTimeout   time.Duration `envconfig:"STORAGE_UPLOAD_TIMEOUT" default:"2m"`
		ChunkSize       int           `envconfig:"STORAGE_CHUNK_SIZE" default:"6291456"`
	}

	Queue struct {
		BrokerURL        string        `envconfig:"QUEUE_BROKER_URL" default:"redis://localhost:6379/0"`
		Concurrency      int           `envconfig:"QUEUE_CONCURRENCY" default:"2"`
		MaxTasksPerChild int           `envconfig:"QUEUE_MAX_TASKS_PER_CHILD" default:"100"`
		MaxMemoryMB      uint64        `envconfig:"QUEUE_MAX_MEMORY_MB" default:"200"`
		SoftTimeLimit    time.Duration `envconfig:"QUEUE_SOFT_TIME_LIMIT" default:"9m"`
		HardTimeLimit    time.Duration `envconfig:"QUEUE_HARD_TIME_LIMIT" default:"10m"`
		MaxRetries       int           `envconfig:"QUEUE_MAX_RETRIES" default:"3"`
		RetryDelay       time.Duration `envconfig:"QUEUE_RETRY_DELAY" default:"5m"`
	}

	Redis struct {
		URL string `envconfig:"REDIS_URL"`
	}

	Ops struct {
		OperationalYear     int           `envconfig:"OPERATIONAL_YEAR"`
		SimilarityThreshold int           `envconfig:"SIMILARITY_THRESHOLD" default:"85"`
		ProviderConfidence  float64       `envconfig:"PROVIDER_CONFIDENCE_THRESHOLD" default:"0.5"`
		MaxAttachmentBytes  int64         `envconfig:"MAX_ATTACHMENT_BYTES" default:"15728640"`
		CacheTTL            time.Duration `envconfig:"CACHE_TTL" default:"5m"`
		DueAlertDays        int           `envconfig:"DUE_ALERT_DAYS" default:"7"`
		PendingBatchTTL     time.Duration `envconfig:"PENDING_BATCH_TTL" default:"24h"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// OperationalYear returns the configured two-digit year, or the current one
// when none is set.
func (c *Config) OperationalYear(now time.Time) int {
	if c.Ops.OperationalYear > 0 {
		return c.Ops.OperationalYear % 100
	}

	return now.Year() % 100
}

// StorageProvider resolves the effective blob backend. Disabling the external
// store always falls back to the filesystem.
func (c *Config) StorageProvider() string {
	if c.Storage.Disabled {
		return "local"
	}

	return c.Storage.Provider
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Queue.Concurrency < 1 {
		return nil, fmt.Errorf("QUEUE_CONCURRENCY must be at least 1")
	}

	if cfg.Queue.SoftTimeLimit > cfg.Queue.HardTimeLimit {
		return nil, fmt.Errorf("QUEUE_SOFT_TIME_LIMIT must not exceed QUEUE_HARD_TIME_LIMIT")
	}

	return &cfg, nil
}
