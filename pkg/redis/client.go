package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/aarav-aiphi/Backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const keyNamespace = "az"

var errNotInitialized = errors.New("redis client not initialized")

var (
	// INCR and first-hit PEXPIRE run in one round trip so a crash between
	// them cannot leave a counter without a TTL.
	fixedWindowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n`)

	deleteIfEqualsScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)
)

// Client is the shared Redis handle for sessions, rate limits, idempotency
// records, caches, OAuth state and cron locks.
type Client struct {
	rdb redis.Cmdable
	raw *redis.Client
}

// New connects with pooling and timeouts from cfg and verifies the server answers.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"addr": opts.Addr, "db": opts.DB}), "redis connection established")
	}
	return &Client{rdb: raw, raw: raw}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	case cfg.Address != "":
		opts = &redis.Options{Addr: cfg.Address, Password: cfg.Password}
	default:
		return nil, errors.New("redis url or address is required")
	}

	// Explicit URL values win; config fills whatever the URL left unset.
	if opts.DB == 0 {
		opts.DB = cfg.DB
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.rdb == nil {
		return errNotInitialized
	}
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Get returns redis.Nil when key is absent.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	if c.rdb == nil {
		return "", errNotInitialized
	}
	return c.rdb.Get(ctx, key).Result()
}

func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if c.rdb == nil {
		return false, errNotInitialized
	}
	return c.rdb.SetNX(ctx, key, value, ttl).Result()
}

// GetDel reads and removes key atomically.
func (c *Client) GetDel(ctx context.Context, key string) (string, error) {
	if c.rdb == nil {
		return "", errNotInitialized
	}
	return c.rdb.GetDel(ctx, key).Result()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	if c.rdb == nil {
		return errNotInitialized
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// DeleteIfEquals removes key only while it still holds value.
func (c *Client) DeleteIfEquals(ctx context.Context, key, value string) (bool, error) {
	if c.rdb == nil {
		return false, errNotInitialized
	}
	n, err := deleteIfEqualsScript.Run(ctx, c.rdb, []string{key}, value).Int64()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FixedWindowAllow counts one hit against scope and reports whether the
// count is still within limit for the current window.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if c.rdb == nil {
		return false, 0, errNotInitialized
	}
	count, err := fixedWindowScript.Run(ctx, c.rdb, []string{c.RateLimitKey(scope)}, window.Milliseconds()).Int64()
	if err != nil {
		return false, 0, err
	}
	return count <= limit, count, nil
}

func (c *Client) IdempotencyKey(scope, id string) string {
	return buildKey("idempotency", scope, id)
}

func (c *Client) RateLimitKey(scope string) string {
	return buildKey("rate_limit", scope)
}

func (c *Client) AccessSessionKey(accessID string) string {
	return buildKey("session", "access", accessID)
}

func (c *Client) CacheKey(scope, id string) string {
	return buildKey("cache", scope, id)
}

func (c *Client) OAuthStateKey(state string) string {
	return buildKey("oauth_state", state)
}

func (c *Client) LockKey(name string) string {
	return buildKey("lock", name)
}

func (c *Client) Ping(ctx context.Context) error {
	if c.rdb == nil {
		return errNotInitialized
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

func buildKey(parts ...string) string {
	clean := make([]string, 0, len(parts)+1)
	clean = append(clean, keyNamespace)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			clean = append(clean, part)
		}
	}
	return strings.Join(clean, ":")
}
