package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Environments recognised by ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	Port        string   `env:"PORT,        default=8080"`
	Env         string   `env:"ENV,         default=development"`
	LogLevel    string   `env:"LOG_LEVEL,   default=info"`
	PublicURL   string   `env:"PUBLIC_URL"`
	CORSOrigins []string `env:"CORS_ORIGINS, default=*"`

	JWT     JWTConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Mail    MailConfig
	Storage StorageConfig
}

type JWTConfig struct {
	Secret           string        `env:"JWT_SECRET, required"`
	ExpiresIn        time.Duration `env:"JWT_EXPIRES_IN, default=24h"`
	Issuer           string        `env:"JWT_ISSUER, default=onboarding-api"`
	CookieExpireDays int           `env:"JWT_COOKIE_EXPIRE_DAYS, default=1"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=onboarding"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type MailConfig struct {
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT, default=587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPSecure   bool   `env:"SMTP_SECURE, default=false"`
	From         string `env:"EMAIL_FROM, default=no-reply@onboarding.local"`
	FromName     string `env:"EMAIL_FROM_NAME, default=Onboarding"`
	TemplateDir  string `env:"MAIL_TEMPLATE_DIR"`
	Workers      int    `env:"MAIL_WORKERS, default=4"`
}

type StorageConfig struct {
	Type         string `env:"STORAGE_TYPE, default=local"`
	LocalPath    string `env:"STORAGE_LOCAL_PATH, default=./uploads"`
	PublicURL    string `env:"STORAGE_PUBLIC_URL"`
	S3Bucket     string `env:"AWS_S3_BUCKET"`
	S3Region     string `env:"AWS_REGION, default=us-east-1"`
	S3Endpoint   string `env:"AWS_S3_ENDPOINT"`
	AWSAccessKey string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey string `env:"AWS_SECRET_ACCESS_KEY"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("ENV must be one of development, production, test; got %q", c.Env)
	}
	if c.Env == EnvProduction && c.Mail.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST is required in production")
	}
	if c.Storage.Type == "s3" && c.Storage.S3Bucket == "" {
		return fmt.Errorf("AWS_S3_BUCKET is required when STORAGE_TYPE=s3")
	}
	return nil
}

func (c *Config) IsProduction() bool  { return c.Env == EnvProduction }
func (c *Config) IsDevelopment() bool { return c.Env == EnvDevelopment }
func (c *Config) IsTest() bool        { return c.Env == EnvTest }

// CookieTTL is the lifetime of the session cookie.
func (c *Config) CookieTTL() time.Duration {
	return time.Duration(c.JWT.CookieExpireDays) * 24 * time.Hour
}
