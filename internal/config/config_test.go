package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Server.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "urls.db", cfg.Database.URL)
	assert.Equal(t, 10, cfg.Database.MaxConnections)
	assert.Equal(t, CacheMemory, cfg.Cache.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.False(t, cfg.Logging.Verbose)
	assert.Equal(t, 8, cfg.Shortener.HashLength)

	assert.NoError(t, cfg.Validate())
}

func TestConfig_ApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"PORT":            "8080",
		"BASE_URL":        "https://sho.rt",
		"DB_DRIVER":       "postgres",
		"DATABASE_URL":    "postgres://fallback",
		"DB_URL":          "postgres://primary",
		"MAX_CONNECTIONS": "25",
		"HASH_LENGTH":     "12",
		"CACHE_DRIVER":    "redis",
		"REDIS_ADDR":      "localhost:6379",
		"REDIS_PASSWORD":  "secret",
		"REDIS_DB":        "2",
		"CACHE_TTL":       "1h30m",
		"LOG_LEVEL":       "debug",
		"LOG_FORMAT":      "json",
		"LOG_FILE":        "/var/log/hashlink.log",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "https://sho.rt", cfg.Server.BaseURL)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://primary", cfg.Database.URL, "DB_URL takes precedence over DATABASE_URL")
	assert.Equal(t, 25, cfg.Database.MaxConnections)
	assert.Equal(t, 12, cfg.Shortener.HashLength)
	assert.Equal(t, CacheRedis, cfg.Cache.Driver)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, "secret", cfg.Cache.RedisPassword)
	assert.Equal(t, 2, cfg.Cache.RedisDB)
	assert.Equal(t, 90*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/var/log/hashlink.log", cfg.Logging.File)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_ApplyEnv_EmptyValuesIgnored(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{"PORT": "", "HASH_LENGTH": ""})))
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, 8, cfg.Shortener.HashLength)
}

func TestConfig_ApplyEnv_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "max connections", env: map[string]string{"MAX_CONNECTIONS": "many"}, wantErr: `invalid MAX_CONNECTIONS: "many"`},
		{name: "hash length", env: map[string]string{"HASH_LENGTH": "8.5"}, wantErr: `invalid HASH_LENGTH: "8.5"`},
		{name: "redis db", env: map[string]string{"REDIS_DB": "x"}, wantErr: `invalid REDIS_DB: "x"`},
		{name: "cache ttl", env: map[string]string{"CACHE_TTL": "forever"}, wantErr: `invalid CACHE_TTL: "forever"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Default().ApplyEnv(envMap(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
  base_url: https://links.example.com
  read_timeout: 5s
database:
  driver: mysql
  url: user:pass@tcp(localhost:3306)/links
shortener:
  hash_length: 10
logging:
  level: warn
  verbose: true
`), 0o644))

	cfg := Default()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "https://links.example.com", cfg.Server.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout, "unset keys keep defaults")
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, "user:pass@tcp(localhost:3306)/links", cfg.Database.URL)
	assert.Equal(t, 10, cfg.Database.MaxConnections)
	assert.Equal(t, 10, cfg.Shortener.HashLength)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.True(t, cfg.Logging.Verbose)
}

func TestConfig_LoadFile_Errors(t *testing.T) {
	err := Default().LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))
	err = Default().LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0o644))

	t.Setenv("PORT", "7070")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "empty port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "server port cannot be empty"},
		{name: "non numeric port", mutate: func(c *Config) { c.Server.Port = "http" }, wantErr: "invalid server port: http"},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = "70000" }, wantErr: "invalid server port: 70000"},
		{name: "empty base url", mutate: func(c *Config) { c.Server.BaseURL = "" }, wantErr: "base URL cannot be empty"},
		{name: "relative base url", mutate: func(c *Config) { c.Server.BaseURL = "localhost:3000" }, wantErr: "base URL must be an absolute URL"},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "oracle" }, wantErr: "unsupported database driver: oracle"},
		{name: "empty database url", mutate: func(c *Config) { c.Database.URL = "" }, wantErr: "database URL cannot be empty"},
		{name: "zero max connections", mutate: func(c *Config) { c.Database.MaxConnections = 0 }, wantErr: "max connections must be positive, got: 0"},
		{name: "zero hash length", mutate: func(c *Config) { c.Shortener.HashLength = 0 }, wantErr: "hash length must be between 1 and 64, got: 0"},
		{name: "hash length too long", mutate: func(c *Config) { c.Shortener.HashLength = 65 }, wantErr: "hash length must be between 1 and 64, got: 65"},
		{name: "unknown cache", mutate: func(c *Config) { c.Cache.Driver = "memcached" }, wantErr: "unsupported cache driver: memcached"},
		{name: "redis without addr", mutate: func(c *Config) { c.Cache.Driver = CacheRedis }, wantErr: "redis address cannot be empty"},
		{name: "negative ttl", mutate: func(c *Config) { c.Cache.TTL = -time.Second }, wantErr: "cache TTL cannot be negative"},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "chatty" }, wantErr: "invalid log level: chatty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Validate_MemoryDriverNeedsNoURL(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = DriverMemory
	cfg.Database.URL = ""
	assert.NoError(t, cfg.Validate())
}
