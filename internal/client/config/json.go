package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophdash/internal/flagx"
	"github.com/dmitrijs2005/gophdash/internal/timex"
)

// JsonConfig is the on-disk form of Config. Absent fields keep the values
// already in Config.
type JsonConfig struct {
	StoreBackend   *string         `json:"store_backend"`
	StoreDSN       *string         `json:"store_dsn"`
	StorePrefix    *string         `json:"store_prefix"`
	RedisAddr      *string         `json:"redis_addr"`
	RedisPassword  *string         `json:"redis_password"`
	RedisDB        *int            `json:"redis_db"`
	S3Bucket       *string         `json:"s3_bucket"`
	S3Region       *string         `json:"s3_region"`
	S3Endpoint     *string         `json:"s3_endpoint"`
	S3AccessKey    *string         `json:"s3_access_key"`
	S3SecretKey    *string         `json:"s3_secret_key"`
	APIURL         *string         `json:"api_url"`
	GRPCAddr       *string         `json:"grpc_addr"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	TokenFormat    *string         `json:"token_format"`
	TokenSecret    *string         `json:"token_secret"`
	SweepOnStart   *bool           `json:"sweep_on_start"`
	UsersFile      *string         `json:"users_file"`
	LogLevel       *string         `json:"log_level"`
	LogFormat      *string         `json:"log_format"`
	SentryDSN      *string         `json:"sentry_dsn"`
}

// parseJson overlays cfg with the file named by -c/-config. It panics on
// read or decode errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	set(&cfg.StoreBackend, jc.StoreBackend)
	set(&cfg.StoreDSN, jc.StoreDSN)
	set(&cfg.StorePrefix, jc.StorePrefix)
	set(&cfg.RedisAddr, jc.RedisAddr)
	set(&cfg.RedisPassword, jc.RedisPassword)
	set(&cfg.RedisDB, jc.RedisDB)
	set(&cfg.S3Bucket, jc.S3Bucket)
	set(&cfg.S3Region, jc.S3Region)
	set(&cfg.S3Endpoint, jc.S3Endpoint)
	set(&cfg.S3AccessKey, jc.S3AccessKey)
	set(&cfg.S3SecretKey, jc.S3SecretKey)
	set(&cfg.APIURL, jc.APIURL)
	set(&cfg.GRPCAddr, jc.GRPCAddr)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	set(&cfg.TokenFormat, jc.TokenFormat)
	set(&cfg.TokenSecret, jc.TokenSecret)
	set(&cfg.SweepOnStart, jc.SweepOnStart)
	set(&cfg.UsersFile, jc.UsersFile)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFormat, jc.LogFormat)
	set(&cfg.SentryDSN, jc.SentryDSN)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
