package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GO_ENV", "")
	t.Setenv("ADMIN_SEED_USERNAME", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("SESSION_COOKIE_SECURE", "")

	cfg := Load()
	assert.Equal(t, "dev", cfg.Server.Environment)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "admin", cfg.Auth.SeedAdminUsername)
	assert.False(t, cfg.Auth.SecureCookie)
	assert.Equal(t, "whutmovie.contact", cfg.RabbitMQ.ContactQueue)
}

func TestProductionDefaultsToSecureCookie(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("SESSION_COOKIE_SECURE", "")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.Auth.SecureCookie)
}

func TestSeedUsernameIsLowercased(t *testing.T) {
	t.Setenv("ADMIN_SEED_USERNAME", "  Curator ")
	assert.Equal(t, "curator", Load().Auth.SeedAdminUsername)
}

func TestDSNPrefersURL(t *testing.T) {
	db := DatabaseConfig{URL: "postgres://u:p@db/whut", Host: "ignored"}
	assert.Equal(t, "postgres://u:p@db/whut", db.DSN())

	db = DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "whut", SSLMode: "disable"}
	assert.Contains(t, db.DSN(), "host=db")
	assert.Contains(t, db.DSN(), "dbname=whut")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Host: "localhost"},
			Auth: AuthConfig{
				SessionTTL:        time.Hour,
				BcryptCost:        12,
				SeedAdminUsername: "admin",
				SeedAdminPassword: "long-enough",
			},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no database", func(c *Config) { c.Database.Host = "" }},
		{"zero ttl", func(c *Config) { c.Auth.SessionTTL = 0 }},
		{"low cost", func(c *Config) { c.Auth.BcryptCost = 2 }},
		{"short seed password", func(c *Config) { c.Auth.SeedAdminPassword = "short" }},
		{"empty seed username", func(c *Config) { c.Auth.SeedAdminUsername = "" }},
		{"minio without keys", func(c *Config) { c.MinIO.Endpoint = "localhost:9000" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
