package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage drivers accepted in STORAGE_DRIVER.
const (
	DriverBolt     = "bolt"
	DriverPostgres = "postgres"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string `env:"APP_NAME" envDefault:"taskboard"`
	Environment string `env:"APP_ENV" envDefault:"development"`

	HTTP       HTTPConfig `envPrefix:"SERVER_"`
	Storage    StorageConfig
	Database   DatabaseConfig
	Redis      RedisConfig `envPrefix:"REDIS_"`
	JWT        JWTConfig   `envPrefix:"JWT_"`
	Security   SecurityConfig
	RateLimit  RateLimitConfig `envPrefix:"RATE_LIMIT_"`
	Context    ContextConfig
	Logger     LoggerConfig `envPrefix:"LOG_"`
	Migrations MigrationsConfig
	Monitor    MonitorConfig
}

type HTTPConfig struct {
	Host         string        `env:"HOST" envDefault:"0.0.0.0"`
	Port         string        `env:"PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"120s"`
	MaxConn      int           `env:"MAX_CONN" envDefault:"0"`
	MaxBodySize  int           `env:"MAX_BODY_SIZE" envDefault:"1048576"`
}

type StorageConfig struct {
	Driver   string `env:"STORAGE_DRIVER" envDefault:"bolt"`
	BoltPath string `env:"BOLTDB_PATH" envDefault:"./data/taskboard.db"`
}

type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            string        `env:"DB_PORT" envDefault:"5432"`
	Name            string        `env:"DB_NAME" envDefault:"taskboard"`
	User            string        `env:"DB_USER" envDefault:"taskboard"`
	Password        string        `env:"DB_PASSWORD"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	MaxConnLifetime time.Duration `env:"DB_CONN_LIFETIME" envDefault:"1h"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
}

// RedisConfig is optional: an empty URL disables the shared rate counter.
type RedisConfig struct {
	URL      string `env:"URL"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type JWTConfig struct {
	Secret string        `env:"SECRET,required,notEmpty"`
	Issuer string        `env:"ISSUER" envDefault:"taskboard"`
	TTL    time.Duration `env:"TTL" envDefault:"720h"`
}

type SecurityConfig struct {
	BcryptCost  int      `env:"BCRYPT_COST" envDefault:"10"`
	CORSOrigins []string `env:"CORS_ORIGIN" envDefault:"http://localhost:5173" envSeparator:","`
}

type RateLimitConfig struct {
	Enabled      bool          `env:"ENABLED" envDefault:"true"`
	Requests     int           `env:"REQUESTS" envDefault:"300"`
	AuthRequests int           `env:"AUTH_REQUESTS" envDefault:"20"`
	Window       time.Duration `env:"WINDOW" envDefault:"15m"`
	TrustProxy   bool          `env:"TRUST_PROXY" envDefault:"false"`
}

type ContextConfig struct {
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

type LoggerConfig struct {
	Level    string `env:"LEVEL" envDefault:"info"`
	Encoding string `env:"ENCODING" envDefault:"json"`
}

type MigrationsConfig struct {
	Enabled bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
	Path    string `env:"MIGRATIONS_PATH" envDefault:"./assets/migrations"`
}

type MonitorConfig struct {
	Interval time.Duration `env:"HEALTH_INTERVAL" envDefault:"30s"`
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults so the service can boot with only JWT_SECRET set.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg.Database)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate rejects settings that would only fail later at runtime.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case DriverBolt:
		if strings.TrimSpace(c.Storage.BoltPath) == "" {
			errs = append(errs, errors.New("BOLTDB_PATH is required for the bolt driver"))
		}
	case DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver))
	}
	if len(c.JWT.Secret) < 16 && c.IsProduction() {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 bytes in production"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func buildPostgresURL(db DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.User, db.Password),
		Host:     db.Host + ":" + db.Port,
		Path:     "/" + db.Name,
		RawQuery: "sslmode=" + url.QueryEscape(db.SSLMode),
	}
	return u.String()
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
