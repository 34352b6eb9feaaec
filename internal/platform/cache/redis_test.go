package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLimiter(t *testing.T, max int, window time.Duration) *LoginLimiter {
	t.Helper()

	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	rdb, err := ConnectRedis(context.Background(), addr, "", 0)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	l := NewLoginLimiter(rdb, max, window)
	l.prefix = "test:" + t.Name() + ":"
	t.Cleanup(func() {
		rdb.Del(context.Background(), l.key("a@x.com"))
		rdb.Close()
	})
	return l
}

func TestLoginLimiter_BlocksAfterMaxFailures(t *testing.T) {
	l := testLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "a@x.com")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i)
		require.NoError(t, l.Fail(ctx, "a@x.com"))
	}

	ok, err := l.Allow(ctx, "A@X.com")
	require.NoError(t, err)
	assert.False(t, ok, "account keys are case-insensitive")

	require.NoError(t, l.Reset(ctx, "a@x.com"))
	ok, err = l.Allow(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginLimiter_WindowExpires(t *testing.T) {
	l := testLimiter(t, 1, time.Second)
	ctx := context.Background()

	require.NoError(t, l.Fail(ctx, "a@x.com"))
	ok, err := l.Allow(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Eventually(t, func() bool {
		ok, err := l.Allow(ctx, "a@x.com")
		return err == nil && ok
	}, 5*time.Second, 100*time.Millisecond)
}

func TestLoginLimiter_LaterFailuresKeepWindow(t *testing.T) {
	l := testLimiter(t, 5, time.Minute)
	ctx := context.Background()
	k := l.key("a@x.com")

	require.NoError(t, l.Fail(ctx, "a@x.com"))
	first, err := l.rdb.PTTL(ctx, k).Result()
	require.NoError(t, err)
	assert.Greater(t, first, time.Duration(0))
	assert.LessOrEqual(t, first, time.Minute)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, l.Fail(ctx, "a@x.com"))
	second, err := l.rdb.PTTL(ctx, k).Result()
	require.NoError(t, err)
	assert.Greater(t, second, time.Duration(0))
	assert.Less(t, second, first)

	n, err := l.rdb.Get(ctx, k).Int()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
