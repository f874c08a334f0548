package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm/internal/contact/store"
	"crm/pkg/platform/sentinel"
)

func TestRedisHealthReportsUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	err := store.NewRedis(client).Health(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}
