// Package config handles configuration for the fixture backend: defaults,
// an optional JSON file, GOPHDASH_* environment variables and flags.
package config

import (
	"github.com/dmitrijs2005/gophdash/internal/kv"
)

// Config holds runtime settings for the fixture backend.
//
// The store settings must point at the same storage the client writes its
// tokens to, otherwise no token will validate.
type Config struct {
	HTTPAddr    string `env:"GOPHDASH_HTTP_ADDR"`
	GRPCAddr    string `env:"GOPHDASH_GRPC_ADDR"`
	MetricsPath string `env:"GOPHDASH_METRICS_PATH"`

	StoreBackend  string `env:"GOPHDASH_STORE_BACKEND"`
	StoreDSN      string `env:"GOPHDASH_STORE_DSN"`
	StorePrefix   string `env:"GOPHDASH_STORE_PREFIX"`
	RedisAddr     string `env:"GOPHDASH_REDIS_ADDR"`
	RedisPassword string `env:"GOPHDASH_REDIS_PASSWORD"`
	RedisDB       int    `env:"GOPHDASH_REDIS_DB"`
	S3Bucket      string `env:"GOPHDASH_S3_BUCKET"`
	S3Region      string `env:"GOPHDASH_S3_REGION"`
	S3Endpoint    string `env:"GOPHDASH_S3_ENDPOINT"`
	S3AccessKey   string `env:"GOPHDASH_S3_ACCESS_KEY"`
	S3SecretKey   string `env:"GOPHDASH_S3_SECRET_KEY"`

	// TokenSecret is only used when VerifySignatures is on.
	TokenSecret      string `env:"GOPHDASH_TOKEN_SECRET"`
	VerifySignatures bool   `env:"GOPHDASH_VERIFY_SIGNATURES"`

	LogLevel  string `env:"GOPHDASH_LOG_LEVEL"`
	LogFormat string `env:"GOPHDASH_LOG_FORMAT"`
	SentryDSN string `env:"SENTRY_DSN"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.GRPCAddr = ":50051"
	c.MetricsPath = "/metrics"
	c.StoreBackend = kv.BackendSQLite
	c.StoreDSN = "gophdash.db"
	c.StorePrefix = "gophdash:"
	c.RedisAddr = "127.0.0.1:6379"
	c.S3Region = "us-east-1"
	c.TokenSecret = "secretKey"
	c.LogLevel = "info"
	c.LogFormat = "json"
}

func (c *Config) KV() kv.Config {
	return kv.Config{
		Backend:       c.StoreBackend,
		DSN:           c.StoreDSN,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
		S3Bucket:      c.S3Bucket,
		S3Region:      c.S3Region,
		S3Endpoint:    c.S3Endpoint,
		S3AccessKey:   c.S3AccessKey,
		S3SecretKey:   c.S3SecretKey,
		Prefix:        c.StorePrefix,
	}
}

// LoadConfig builds a Config from defaults, then the JSON file, the
// environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
