package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns a client that has answered a ping.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to Redis: %w", err)
	}
	slog.Info("Successfully connected to Redis", slog.String("addr", addr))
	return rdb, nil
}

// LoginLimiter counts failed logins per account in Redis. The counter lives for
// window from the first failure; once it reaches maxAttempts further logins are
// refused until the key expires or a successful login resets it.
type LoginLimiter struct {
	rdb         *redis.Client
	maxAttempts int
	window      time.Duration
	prefix      string
}

func NewLoginLimiter(rdb *redis.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		rdb:         rdb,
		maxAttempts: maxAttempts,
		window:      window,
		prefix:      "login:fail:",
	}
}

func (l *LoginLimiter) key(account string) string {
	return l.prefix + strings.ToLower(strings.TrimSpace(account))
}

func (l *LoginLimiter) Allow(ctx context.Context, account string) (bool, error) {
	n, err := l.rdb.Get(ctx, l.key(account)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, fmt.Errorf("LoginLimiter.Allow: %w", err)
	}
	return n < l.maxAttempts, nil
}

// failScript bumps the counter and starts the window on the first failure only.
var failScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

func (l *LoginLimiter) Fail(ctx context.Context, account string) error {
	windowMs := l.window.Milliseconds()
	if windowMs < 1 {
		windowMs = 1
	}
	if err := failScript.Run(ctx, l.rdb, []string{l.key(account)}, windowMs).Err(); err != nil {
		return fmt.Errorf("LoginLimiter.Fail: %w", err)
	}
	return nil
}

func (l *LoginLimiter) Reset(ctx context.Context, account string) error {
	if err := l.rdb.Del(ctx, l.key(account)).Err(); err != nil {
		return fmt.Errorf("LoginLimiter.Reset: %w", err)
	}
	return nil
}
