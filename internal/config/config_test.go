package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/forwarder/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Queue.Concurrency)
	assert.Equal(t, 9*time.Minute, cfg.Queue.SoftTimeLimit)
	assert.Equal(t, 10*time.Minute, cfg.Queue.HardTimeLimit)
	assert.Equal(t, 3, cfg.Queue.MaxRetries)
	assert.Equal(t, 5*time.Minute, cfg.Queue.RetryDelay)
	assert.Equal(t, int64(15<<20), cfg.Ops.MaxAttachmentBytes)
	assert.Equal(t, 6<<20, cfg.Storage.ChunkSize)
	assert.Equal(t, 30*time.Second, cfg.Mail.TokenTimeout)
	assert.Equal(t, 60*time.Second, cfg.Mail.RequestTimeout)
	assert.Equal(t, 25, cfg.DB.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.DB.ConnMaxLifetime)
}

func TestLoad_SoftLimitAboveHard(t *testing.T) {
	t.Setenv("QUEUE_SOFT_TIME_LIMIT", "11m")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestConfig_OperationalYear(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	var cfg config.Config
	assert.Equal(t, 25, cfg.OperationalYear(now))

	cfg.Ops.OperationalYear = 2024
	assert.Equal(t, 24, cfg.OperationalYear(now))
}

func TestConfig_StorageProvider(t *testing.T) {
	var cfg config.Config
	cfg.Storage.Provider = "gcs"
	assert.Equal(t, "gcs", cfg.StorageProvider())

	cfg.Storage.Disabled = true
	assert.Equal(t, "local", cfg.StorageProvider())
}
