package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "training_log.db", cfg.Database.Name)
	assert.Equal(t, "/track/click", cfg.Endpoints.Track)
	assert.Equal(t, "/verify", cfg.Endpoints.Verify)
	assert.Equal(t, "/track/training", cfg.Endpoints.TrainingTrack)
	assert.Equal(t, 5, cfg.Notify.TimeoutSeconds)
	assert.False(t, cfg.Server.BehindProxy)
	assert.Equal(t, "none", cfg.Notify.EffectiveDriver())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9443")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("ENDPOINT_TRACK", "/cdn/beacon")
	t.Setenv("WEBHOOK_URL", "https://hooks.example.test/abc")
	t.Setenv("BEHIND_PROXY", "true")
	t.Setenv("TRAINING_URL", "https://learn.example.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9443, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "/cdn/beacon", cfg.Endpoints.Track)
	assert.Equal(t, "https://hooks.example.test/abc", cfg.Notify.WebhookURL)
	assert.True(t, cfg.Server.BehindProxy)
	assert.Equal(t, "https://learn.example.test", cfg.Training.URL)
	assert.Equal(t, "webhook", cfg.Notify.EffectiveDriver())
}

func TestNotify_EffectiveDriver(t *testing.T) {
	assert.Equal(t, "amqp", Notify{Driver: "AMQP", WebhookURL: "https://x"}.EffectiveDriver())
	assert.Equal(t, "none", Notify{}.EffectiveDriver())
}
