package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("GOPHDASH_API_URL", "https://dash.example")
	t.Setenv("GOPHDASH_REQUEST_TIMEOUT", "45s")
	t.Setenv("GOPHDASH_SWEEP_ON_START", "true")
	t.Setenv("GOPHDASH_REDIS_DB", "2")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, "https://dash.example", c.APIURL)
	assert.Equal(t, 45*time.Second, c.RequestTimeout)
	assert.True(t, c.SweepOnStart)
	assert.Equal(t, 2, c.RedisDB)
	assert.Equal(t, "127.0.0.1:50051", c.GRPCAddr, "unset variables keep their values")
}

func TestParseEnv_BadValuePanics(t *testing.T) {
	t.Setenv("GOPHDASH_REDIS_DB", "two")

	var c Config
	require.Panics(t, func() { parseEnv(&c) })
}
