package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newTestCache(t *testing.T) Cache {
	t.Helper()
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisCacheWithClient(client)
}

func TestCacheSetGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name string
	}

	assert.NoError(t, c.Set(ctx, "key", payload{Name: "AquaScot"}, time.Minute))

	var got payload
	assert.NoError(t, c.Get(ctx, "key", &got))
	assert.Equal(t, "AquaScot", got.Name)
}

// A miss is not an error; callers treat the zero value as absent.
func TestCacheGetMiss(t *testing.T) {
	c := newTestCache(t)

	var got string
	assert.NoError(t, c.Get(context.Background(), "absent", &got))
	assert.Empty(t, got)
}

func TestCacheDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "key", "value", time.Minute))
	assert.NoError(t, c.Delete(ctx, "key"))

	var got string
	assert.NoError(t, c.Get(ctx, "key", &got))
	assert.Empty(t, got)
}
