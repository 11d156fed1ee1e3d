package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenModePlaceholder = "placeholder"
	TokenModeJWT         = "jwt"
)

type Config struct {
	Port      string `env:"PORT,       default=3000"`
	Env       string `env:"ENV,        default=production"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	StaticDir string `env:"STATIC_DIR, default=dist"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS, default=http://localhost:5173,https://yao-todolist.zeabur.app"`

	Auth     AuthConfig
	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type AuthConfig struct {
	TokenMode     string        `env:"AUTH_TOKEN_MODE,     default=placeholder"`
	JWTSecret     string        `env:"JWT_SECRET"`
	TokenTTL      time.Duration `env:"TOKEN_TTL,           default=24h"`
	BcryptCost    int           `env:"BCRYPT_COST,         default=10"`
	UniformErrors bool          `env:"UNIFORM_AUTH_ERRORS, default=false"`
}

// PostgresConfig accepts either a full DATABASE_URL or the discrete DB_*
// variables.
type PostgresConfig struct {
	URL      string `env:"DATABASE_URL"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Host     string `env:"DB_HOST,      default=localhost"`
	Port     int    `env:"DB_PORT,      default=5432"`
	Name     string `env:"DB_NAME,      default=todolist"`
	SSLMode  string `env:"DB_SSLMODE,   default=prefer"`
	MaxConns int32  `env:"DB_MAX_CONNS, default=10"`
	Migrate  bool   `env:"DB_MIGRATE,   default=false"`
}

// MongoConfig configures the audit trail. An empty URI disables it.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB,      default=todolist"`
	Workers  int    `env:"AUDIT_WORKERS, default=4"`
}

// RedisConfig configures the Idempotency-Key replay store. An empty Addr
// disables it.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// DSN returns DATABASE_URL when set, otherwise a URL assembled from the
// DB_* parts.
func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     p.Host + ":" + strconv.Itoa(p.Port),
		Path:     "/" + p.Name,
		RawQuery: url.Values{"sslmode": {p.SSLMode}}.Encode(),
	}
	if p.User != "" {
		u.User = url.UserPassword(p.User, p.Password)
	}
	return u.String()
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// DotEnvFile picks the env file for the given ENV value.
func DotEnvFile(env string) string {
	if env == "development" {
		return ".env.development"
	}
	return ".env.production"
}

// Load reads the dotenv file matching ENV (if present), then the process
// environment, using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load(DotEnvFile(os.Getenv("ENV")))

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Auth.TokenMode {
	case TokenModePlaceholder:
	case TokenModeJWT:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_TOKEN_MODE=%s", TokenModeJWT)
		}
	default:
		return fmt.Errorf("unknown AUTH_TOKEN_MODE %q", c.Auth.TokenMode)
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}
