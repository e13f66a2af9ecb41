package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophdash/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish absent keys from zero values.
type JsonConfig struct {
	HTTPAddr         *string `json:"http_addr"`
	GRPCAddr         *string `json:"grpc_addr"`
	MetricsPath      *string `json:"metrics_path"`
	StoreBackend     *string `json:"store_backend"`
	StoreDSN         *string `json:"store_dsn"`
	StorePrefix      *string `json:"store_prefix"`
	RedisAddr        *string `json:"redis_addr"`
	RedisPassword    *string `json:"redis_password"`
	RedisDB          *int    `json:"redis_db"`
	S3Bucket         *string `json:"s3_bucket"`
	S3Region         *string `json:"s3_region"`
	S3Endpoint       *string `json:"s3_endpoint"`
	S3AccessKey      *string `json:"s3_access_key"`
	S3SecretKey      *string `json:"s3_secret_key"`
	TokenSecret      *string `json:"token_secret"`
	VerifySignatures *bool   `json:"verify_signatures"`
	LogLevel         *string `json:"log_level"`
	LogFormat        *string `json:"log_format"`
	SentryDSN        *string `json:"sentry_dsn"`
}

// parseJson overlays Config with values loaded from the file named by -c or
// -config. Panics on read or unmarshal errors.
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

	set(&cfg.HTTPAddr, jc.HTTPAddr)
	set(&cfg.GRPCAddr, jc.GRPCAddr)
	set(&cfg.MetricsPath, jc.MetricsPath)
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
	set(&cfg.TokenSecret, jc.TokenSecret)
	set(&cfg.VerifySignatures, jc.VerifySignatures)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFormat, jc.LogFormat)
	set(&cfg.SentryDSN, jc.SentryDSN)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
