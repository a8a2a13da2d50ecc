package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedOrigins(t *testing.T) {
	assert.Nil(t, (&Config{CORSOrigins: "*"}).AllowedOrigins())
	assert.Nil(t, (&Config{}).AllowedOrigins())
	assert.Equal(t,
		[]string{"https://app.findautopart.com", "http://localhost:5173"},
		(&Config{CORSOrigins: " https://app.findautopart.com, ,http://localhost:5173"}).AllowedOrigins())
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("RECONCILIACION_CRON", "@every 5m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "s3cr3t", cfg.JWTSecret)
	assert.Equal(t, "@every 5m", cfg.ReconciliacionCron)
	assert.Equal(t, 5, cfg.WorkerPoolSize)
	assert.Equal(t, int64(900), cfg.S3URLTTLSeconds)
}

func TestLoad_AWSOptional(t *testing.T) {
	t.Setenv("S3_BUCKET", "")
	t.Setenv("SNS_TOPIC_ARN", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.S3Bucket)
	assert.Empty(t, cfg.SNSTopicARN)

	t.Setenv("S3_BUCKET", "fap-imagenes")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "fap-imagenes", cfg.S3Bucket)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}
