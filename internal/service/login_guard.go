package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginGuard tracks failed logins per username.
type LoginGuard interface {
	Locked(ctx context.Context, username string) (bool, error)
	Fail(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

// NoopGuard never locks anyone out.
type NoopGuard struct{}

func (NoopGuard) Locked(context.Context, string) (bool, error) { return false, nil }
func (NoopGuard) Fail(context.Context, string) error           { return nil }
func (NoopGuard) Reset(context.Context, string) error          { return nil }

// RedisLoginGuard counts failures in redis. The counter expires window after
// the first failure, which also ends the lockout.
type RedisLoginGuard struct {
	rdb         *redis.Client
	maxFailures int
	window      time.Duration
}

func NewRedisLoginGuard(rdb *redis.Client, maxFailures int, window time.Duration) *RedisLoginGuard {
	return &RedisLoginGuard{rdb: rdb, maxFailures: maxFailures, window: window}
}

func loginFailKey(username string) string {
	return "login:fail:" + username
}

func (g *RedisLoginGuard) Locked(ctx context.Context, username string) (bool, error) {
	if g.maxFailures <= 0 {
		return false, nil
	}
	n, err := g.rdb.Get(ctx, loginFailKey(username)).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read login failures: %w", err)
	}
	return n >= g.maxFailures, nil
}

func (g *RedisLoginGuard) Fail(ctx context.Context, username string) error {
	key := loginFailKey(username)
	n, err := g.rdb.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("count login failure: %w", err)
	}
	if n == 1 {
		if err := g.rdb.Expire(ctx, key, g.window).Err(); err != nil {
			return fmt.Errorf("expire login failures: %w", err)
		}
	}
	return nil
}

func (g *RedisLoginGuard) Reset(ctx context.Context, username string) error {
	if err := g.rdb.Del(ctx, loginFailKey(username)).Err(); err != nil {
		return fmt.Errorf("reset login failures: %w", err)
	}
	return nil
}
