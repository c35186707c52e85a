package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epaws/internal/platform/logger"
)

func TestDefault_IsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, 30*24*time.Hour, c.Notifications.Retention)
	assert.Equal(t, "es", c.Notifications.Locale)
}

func TestLoad_FileThenEnv(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("SWEEP_INTERVAL", "5m")

	c, err := Load("testdata/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, ":7070", c.Addr)
	assert.Equal(t, "epaws-test", c.AppName)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "epaws.events", c.Kafka.Topic)
	assert.Equal(t, "en", c.Notifications.Locale)
	assert.Equal(t, 240*time.Hour, c.Notifications.Retention)
	assert.Equal(t, 5*time.Minute, c.Notifications.SweepInterval)
	assert.True(t, c.Events.Async)
	assert.Equal(t, 64, c.Events.Buffer)

	opts := c.LoggerOptions()
	assert.Equal(t, logger.Debug, opts.Level)
	assert.Equal(t, logger.FormatJSON, opts.Format)
}

func TestLoad_BadEnvDuration(t *testing.T) {
	t.Setenv("NOTIFICATION_RETENTION", "thirty days")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOTIFICATION_RETENTION")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/nope.yaml")
	require.Error(t, err)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	c := Default()
	c.Notifications.Retention = 0
	c.Events.Buffer = 0
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retention")
	assert.Contains(t, err.Error(), "buffer")
}

func TestValidate_IntrospectNeedsBothFields(t *testing.T) {
	c := Default()
	c.Auth.IntrospectURL = "https://idp.example/introspect"
	require.ErrorContains(t, c.Validate(), "introspect")

	c.Auth.IntrospectKey = "k"
	require.NoError(t, c.Validate())
}

func TestAsyncEvents_ForcedByKafka(t *testing.T) {
	c := Default()
	assert.False(t, c.AsyncEvents())

	c.Kafka.Brokers = []string{"localhost:9092"}
	assert.True(t, c.AsyncEvents())

	c.Kafka.Brokers = nil
	c.Events.Async = true
	assert.True(t, c.AsyncEvents())
}
