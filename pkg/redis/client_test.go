package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdfakih/inventory-backend/pkg/config"
)

func TestIdempotencyKeyNamespacing(t *testing.T) {
	t.Parallel()

	c := &Client{}
	assert.Equal(t, "inv:idempotency:meera|POST|/api/v1/orders:abc", c.IdempotencyKey("meera|POST|/api/v1/orders", "abc"))
	assert.Equal(t, "inv:idempotency:k", c.IdempotencyKey("", "k"), "empty scope parts are dropped")
}

func TestOptionsFromConfig(t *testing.T) {
	t.Parallel()

	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 2, PoolSize: 10})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 10, opts.PoolSize)

	opts, err = optionsFromConfig(config.RedisConfig{URL: "redis://:secret@example.com:6380/1"})
	require.NoError(t, err)
	assert.Equal(t, "example.com:6380", opts.Addr)
	assert.Equal(t, 1, opts.DB)
}
