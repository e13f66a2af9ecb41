package config

import (
	"time"

	"github.com/dmitrijs2005/gophdash/internal/common"
	"github.com/dmitrijs2005/gophdash/internal/kv"
)

// Config holds runtime settings for the dashboard client.
//
// The store settings select where the session is persisted; APIURL and
// GRPCAddr point at the fixture backend.
type Config struct {
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

	APIURL         string        `env:"GOPHDASH_API_URL"`
	GRPCAddr       string        `env:"GOPHDASH_GRPC_ADDR"`
	RequestTimeout time.Duration `env:"GOPHDASH_REQUEST_TIMEOUT"`

	// TokenFormat is "opaque" or "jwt"; TokenSecret signs jwt tokens and
	// must match the backend's secret.
	TokenFormat string `env:"GOPHDASH_TOKEN_FORMAT"`
	TokenSecret string `env:"GOPHDASH_TOKEN_SECRET"`

	SweepOnStart bool   `env:"GOPHDASH_SWEEP_ON_START"`
	UsersFile    string `env:"GOPHDASH_USERS_FILE"`

	LogLevel  string `env:"GOPHDASH_LOG_LEVEL"`
	LogFormat string `env:"GOPHDASH_LOG_FORMAT"`
	SentryDSN string `env:"SENTRY_DSN"`
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.StoreBackend = kv.BackendSQLite
	c.StoreDSN = "gophdash.db"
	c.StorePrefix = "gophdash:"
	c.RedisAddr = "127.0.0.1:6379"
	c.S3Region = "us-east-1"
	c.APIURL = "http://127.0.0.1:8080"
	c.GRPCAddr = "127.0.0.1:50051"
	c.RequestTimeout = common.RequestTimeout
	c.TokenFormat = "opaque"
	c.TokenSecret = "secretKey"
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// KV returns the storage settings in the form kv.Open expects.
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

// LoadConfig applies defaults, then the JSON file, the environment and the
// command-line flags. Later sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
