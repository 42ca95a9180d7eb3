package kafka_config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load([]string{"localhost:9092"})
	require.NoError(t, err)

	assert.Equal(t, DefaultProducerMaxAttempts, cfg.ProducerMaxAttempts)
	assert.Equal(t, "snappy", cfg.ProducerCompression)
	assert.Equal(t, int64(-2), cfg.ConsumerStartOffset)
	assert.Equal(t, DefaultConsumerMaxRetries, cfg.ConsumerMaxRetries)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvKafkaProducerCompression, "gzip")
	t.Setenv(EnvKafkaConsumerMaxRetries, "5")

	cfg, err := Load([]string{"localhost:9092"})
	require.NoError(t, err)
	assert.Equal(t, "gzip", cfg.ProducerCompression)
	assert.Equal(t, 5, cfg.ConsumerMaxRetries)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	t.Setenv(EnvKafkaProducerCompression, "brotli")
	t.Setenv(EnvKafkaProducerRequireAcks, "2")

	_, err := Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "At least one Kafka broker is required")
	assert.Contains(t, err.Error(), "ProducerCompression")
	assert.Contains(t, err.Error(), "ProducerRequireAcks")
}
