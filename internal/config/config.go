package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Password  PasswordConfig
	Storage   StorageConfig
	Integrity IntegrityConfig
	Log       LogConfig
	Admin     AdminConfig
}

type ServerConfig struct {
	Port        string `envconfig:"SERVER_PORT" default:"8080"`
	SwaggerHost string `envconfig:"SWAGGER_HOST"`
	MaxUploadMB int    `envconfig:"MAX_UPLOAD_MB" default:"50"`
	// CORSOrigins is a comma-separated allow list; empty disables CORS.
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5500,http://127.0.0.1:5500"`
}

// MaxUploadBytes returns the upload ceiling in bytes.
func (s ServerConfig) MaxUploadBytes() int64 {
	if s.MaxUploadMB <= 0 {
		return 50 << 20
	}
	return int64(s.MaxUploadMB) << 20
}

type DBConfig struct {
	Driver          string        `envconfig:"DB_DRIVER" default:"mysql"`
	DSN             string        `envconfig:"DB_DSN" default:"user:password@tcp(localhost:3306)/landrecords?charset=utf8mb4&parseTime=True&loc=Local"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`
	AutoMigrate     bool          `envconfig:"DB_AUTO_MIGRATE" default:"true"`
	Reset           bool          `envconfig:"RESET_DB" default:"false"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type JWTConfig struct {
	Secret     string        `envconfig:"JWT_SECRET" default:"change-me"`
	Issuer     string        `envconfig:"JWT_ISSUER" default:"landrecords"`
	AccessTTL  time.Duration `envconfig:"JWT_ACCESS_TTL" default:"30m"`
	RefreshTTL time.Duration `envconfig:"JWT_REFRESH_TTL" default:"168h"`
}

type PasswordConfig struct {
	BcryptCost int `envconfig:"BCRYPT_COST" default:"12"`
}

type StorageConfig struct {
	UploadDir string `envconfig:"UPLOAD_DIR" default:"uploads"`
}

type IntegrityConfig struct {
	ChunkSize int `envconfig:"DIGEST_CHUNK_SIZE" default:"4096"`
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// AdminConfig seeds the first administrator (see cmd/seed).
type AdminConfig struct {
	Username string `envconfig:"ADMIN_USERNAME"`
	Email    string `envconfig:"ADMIN_EMAIL"`
	Password string `envconfig:"ADMIN_PASSWORD"`
	FullName string `envconfig:"ADMIN_FULL_NAME" default:"Registry Administrator"`
	Aadhaar  string `envconfig:"ADMIN_AADHAAR"`
}

// Load builds Config from environment with sensible defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.DB.Driver = strings.ToLower(strings.TrimSpace(c.DB.Driver))
	switch c.DB.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Integrity.ChunkSize <= 0 {
		c.Integrity.ChunkSize = 4096
	}
	return nil
}
