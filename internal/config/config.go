package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const minSeedPasswordLength = 8

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	MinIO    MinIOConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  string
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
	PrepareStmt     bool
}

type AuthConfig struct {
	SessionTTL        time.Duration
	BcryptCost        int
	SecureCookie      bool
	SeedAdminUsername string
	SeedAdminPassword string
	SeedGenres        bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type RabbitMQConfig struct {
	URL          string
	ContactQueue string
}

type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	UseSSL          bool
	PublicURL       string
}

func Load() *Config {
	env := getEnvOrDefault("GO_ENV", "dev")

	return &Config{
		Server: ServerConfig{
			Port:         getEnvOrDefault("SERVER_PORT", "8010"),
			Environment:  env,
			ReadTimeout:  getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
			CORSOrigins:  getEnvOrDefault("CORS_ALLOW_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getEnvOrDefault("DB_HOST", "localhost"),
			Port:            getEnvOrDefault("DB_PORT", "5432"),
			User:            getEnvOrDefault("DB_USER", "postgres"),
			Password:        getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:          getEnvOrDefault("DB_NAME", "whutmovie"),
			SSLMode:         getEnvOrDefault("DB_SSLMODE", "disable"),
			MaxOpenConns:    getIntOrDefault("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntOrDefault("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationOrDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			QueryTimeout:    getDurationOrDefault("DB_QUERY_TIMEOUT", 10*time.Second),
			PrepareStmt:     getBoolOrDefault("DB_PREPARE_STMT", true),
		},
		Auth: AuthConfig{
			SessionTTL:        getDurationOrDefault("SESSION_TTL", 7*24*time.Hour),
			BcryptCost:        getIntOrDefault("BCRYPT_COST", 12),
			SecureCookie:      getBoolOrDefault("SESSION_COOKIE_SECURE", isProduction(env)),
			SeedAdminUsername: strings.ToLower(strings.TrimSpace(getEnvOrDefault("ADMIN_SEED_USERNAME", "admin"))),
			SeedAdminPassword: os.Getenv("ADMIN_SEED_PASSWORD"),
			SeedGenres:        getBoolOrDefault("SEED_GENRES", false),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getIntOrDefault("REDIS_DB", 0),
			CacheTTL: getDurationOrDefault("PAGE_CACHE_TTL", 5*time.Minute),
		},
		RabbitMQ: RabbitMQConfig{
			URL:          os.Getenv("RABBITMQ_URL"),
			ContactQueue: getEnvOrDefault("RABBITMQ_CONTACT_QUEUE", "whutmovie.contact"),
		},
		MinIO: MinIOConfig{
			Endpoint:        os.Getenv("AWS_ENDPOINT"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			BucketName:      getEnvOrDefault("AWS_BUCKET", "posters"),
			Region:          getEnvOrDefault("AWS_DEFAULT_REGION", "us-east-1"),
			UseSSL:          getBoolOrDefault("AWS_USE_SSL", true),
			PublicURL:       os.Getenv("AWS_URL"),
		},
	}
}

// GetDSN returns the PostgreSQL connection string. DATABASE_URL wins over
// the individual DB_* settings.
func (c *Config) GetDSN() string {
	return c.Database.DSN()
}

func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC connect_timeout=10",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.DBName,
		d.SSLMode,
	)
}

func (c *Config) IsProduction() bool {
	return isProduction(c.Server.Environment)
}

// MinIOEnabled reports whether poster uploads can be served.
func (c *Config) MinIOEnabled() bool {
	return c.MinIO.Endpoint != "" && c.MinIO.AccessKeyID != "" && c.MinIO.SecretAccessKey != ""
}

func (c *Config) Validate() error {
	if c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("DATABASE_URL or DB_HOST is required")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	if c.Auth.SeedAdminPassword != "" {
		if len(c.Auth.SeedAdminPassword) < minSeedPasswordLength {
			return fmt.Errorf("ADMIN_SEED_PASSWORD must be at least %d characters", minSeedPasswordLength)
		}
		if c.Auth.SeedAdminUsername == "" {
			return fmt.Errorf("ADMIN_SEED_USERNAME must not be empty")
		}
	}
	if c.MinIO.Endpoint != "" && (c.MinIO.AccessKeyID == "" || c.MinIO.SecretAccessKey == "") {
		return fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are required when AWS_ENDPOINT is set")
	}
	return nil
}

func isProduction(env string) bool {
	return env == "prod" || env == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
