package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
)

// Config is read from an optional YAML file (CONFIG_PATH, default
// config.yaml) and overridden by environment variables. Secrets are
// env-only.
type Config struct {
	// Database
	DBHost     string `yaml:"db_host" env:"DB_HOST" env-default:"localhost"`
	DBPort     string `yaml:"db_port" env:"DB_PORT" env-default:"5432"`
	DBUser     string `yaml:"db_user" env:"DB_USER" env-default:"postgres"`
	DBPassword string `yaml:"-" env:"DB_PASSWORD"`
	DBName     string `yaml:"db_name" env:"DB_NAME" env-default:"careerpilot"`
	DBSSLMode  string `yaml:"db_sslmode" env:"DB_SSLMODE" env-default:"disable"`

	// Entity store: postgres, mongo or memory
	StoreBackend string `yaml:"store_backend" env:"STORE_BACKEND" env-default:"postgres"`
	MongoURI     string `yaml:"mongo_uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	MongoDB      string `yaml:"mongo_db" env:"MONGO_DB" env-default:"careerpilot"`

	// JWT
	JWTSecret        string        `yaml:"-" env:"JWT_SECRET"`
	JWTAccessExpiry  time.Duration `yaml:"jwt_access_expiry" env:"JWT_ACCESS_EXPIRY" env-default:"15m"`
	JWTRefreshExpiry time.Duration `yaml:"jwt_refresh_expiry" env:"JWT_REFRESH_EXPIRY" env-default:"168h"`

	// AI providers, tried in this order
	GLMAPIKey      string `yaml:"-" env:"GLM_API_KEY"`
	GLMBaseURL     string `yaml:"glm_base_url" env:"GLM_BASE_URL" env-default:"https://api.z.ai/api/paas/v4"`
	GLMModel       string `yaml:"glm_model" env:"GLM_MODEL" env-default:"glm-5"`
	GLMVisionModel string `yaml:"glm_vision_model" env:"GLM_VISION_MODEL" env-default:"glm-4v-plus"`

	DeepSeekAPIKey  string `yaml:"-" env:"DEEPSEEK_API_KEY"`
	DeepSeekBaseURL string `yaml:"deepseek_base_url" env:"DEEPSEEK_BASE_URL" env-default:"https://api.deepseek.com/v1"`
	DeepSeekModel   string `yaml:"deepseek_model" env:"DEEPSEEK_MODEL" env-default:"deepseek-chat"`

	OpenAIAPIKey  string `yaml:"-" env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `yaml:"openai_base_url" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	OpenAIModel   string `yaml:"openai_model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`

	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `yaml:"anthropic_model" env:"ANTHROPIC_MODEL" env-default:"claude-sonnet-4-5-20250929"`

	AITimeout time.Duration `yaml:"ai_timeout" env:"AI_TIMEOUT" env-default:"60s"`

	// Page view-state; memory when RedisAddr is empty
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string        `yaml:"-" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
	PageStateTTL  time.Duration `yaml:"page_state_ttl" env:"PAGE_STATE_TTL" env-default:"24h"`

	// Entity events; disabled when AMQPURL is empty
	AMQPURL      string `yaml:"-" env:"AMQP_URL"`
	AMQPExchange string `yaml:"amqp_exchange" env:"AMQP_EXCHANGE" env-default:"careerpilot.events"`

	// Resume uploads; in-memory when MinIOEndpoint is empty
	MinIOEndpoint  string `yaml:"minio_endpoint" env:"MINIO_ENDPOINT"`
	MinIOAccessKey string `yaml:"-" env:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `yaml:"-" env:"MINIO_SECRET_KEY"`
	MinIOBucket    string `yaml:"minio_bucket" env:"MINIO_BUCKET" env-default:"careerpilot"`
	MinIOUseSSL    bool   `yaml:"minio_use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
	MinIOPublicURL string `yaml:"minio_public_url" env:"MINIO_PUBLIC_URL"`

	// Observability
	SentryDSN string `yaml:"-" env:"SENTRY_DSN"`
	Env       string `yaml:"env" env:"ENVIRONMENT" env-default:"development"`
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	// Server
	Port        string `yaml:"port" env:"PORT" env-default:"8080"`
	CORSOrigins string `yaml:"cors_origins" env:"CORS_ORIGINS" env-default:"*"`
}

// Load reads CONFIG_PATH (when the file exists) and the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}

	var err error
	if _, statErr := os.Stat(path); statErr == nil {
		err = cleanenv.ReadConfig(path, cfg)
	} else if errors.Is(statErr, os.ErrNotExist) {
		err = cleanenv.ReadEnv(cfg)
	} else {
		err = statErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	// Users, refresh tokens and system logs live in PostgreSQL whatever
	// the entity store backend is.
	if c.DBPassword == "" {
		return errors.New("DB_PASSWORD is required")
	}
	switch c.StoreBackend {
	case BackendPostgres, BackendMongo, BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// Origins splits CORSOrigins for logging.
func (c *Config) Origins() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
