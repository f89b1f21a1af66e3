package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRedis implements the handful of commands the client issues. Anything
// else panics through the nil embedded interface.
type memoryRedis struct {
	redis.Cmdable
	data    map[string]string
	ttls    map[string]time.Duration
	evalSha int
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryRedis) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *memoryRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (m *memoryRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if _, ok := m.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (m *memoryRedis) GetDel(ctx context.Context, key string) *redis.StringCmd {
	cmd := m.Get(ctx, key)
	delete(m.data, key)
	return cmd
}

func (m *memoryRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			n++
		}
		delete(m.data, key)
	}
	return redis.NewIntResult(n, nil)
}

func (m *memoryRedis) EvalSha(_ context.Context, sha string, keys []string, args ...any) *redis.Cmd {
	m.evalSha++
	switch sha {
	case fixedWindowScript.Hash():
		var n int64
		fmt.Sscan(m.data[keys[0]], &n)
		n++
		m.data[keys[0]] = fmt.Sprint(n)
		if n == 1 {
			m.ttls[keys[0]] = time.Duration(args[0].(int64)) * time.Millisecond
		}
		return redis.NewCmdResult(n, nil)
	case deleteIfEqualsScript.Hash():
		if v, ok := m.data[keys[0]]; ok && v == args[0] {
			delete(m.data, keys[0])
			return redis.NewCmdResult(int64(1), nil)
		}
		return redis.NewCmdResult(int64(0), nil)
	}
	return redis.NewCmdResult(nil, fmt.Errorf("NOSCRIPT unknown script %s", sha))
}

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mem := newMemoryRedis()
	client := &Client{rdb: mem}

	for i, want := range []bool{true, true, false} {
		allowed, count, err := client.FixedWindowAllow(ctx, "login:1.2.3.4", 2, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, allowed, "hit %d", i+1)
		assert.EqualValues(t, i+1, count)
	}
	assert.Equal(t, time.Minute, mem.ttls["az:rate_limit:login:1.2.3.4"])
	assert.Equal(t, 3, mem.evalSha)
}

func TestDeleteIfEquals(t *testing.T) {
	ctx := context.Background()
	mem := newMemoryRedis()
	client := &Client{rdb: mem}
	key := client.LockKey("cron")

	require.NoError(t, client.Set(ctx, key, "holder-a", time.Minute))

	removed, err := client.DeleteIfEquals(ctx, key, "holder-b")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, "holder-a", mem.data[key])

	removed, err = client.DeleteIfEquals(ctx, key, "holder-a")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NotContains(t, mem.data, key)
}

func TestGetDelConsumesValue(t *testing.T) {
	ctx := context.Background()
	client := &Client{rdb: newMemoryRedis()}

	key := client.OAuthStateKey("state-1")
	require.NoError(t, client.Set(ctx, key, "/dashboard", time.Minute))

	got, err := client.GetDel(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", got)

	_, err = client.GetDel(ctx, key)
	assert.ErrorIs(t, err, redis.Nil)
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	cases := map[string]string{
		client.IdempotencyKey("scope", "id"):   "az:idempotency:scope:id",
		client.RateLimitKey("scope"):           "az:rate_limit:scope",
		client.AccessSessionKey("jti"):         "az:session:access:jti",
		client.CacheKey("news", "q=ai&page=1"): "az:cache:news:q=ai&page=1",
		client.OAuthStateKey(" abc "):          "az:oauth_state:abc",
		client.LockKey("cron"):                 "az:lock:cron",
		client.CacheKey("news", ""):            "az:cache:news",
	}
	for got, want := range cases {
		assert.Equal(t, want, got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	assert.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:pw@cache:6380/3", DB: 1, PoolSize: 20})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, 20, opts.PoolSize)

	opts, err = optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 2, DialTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, time.Second, opts.DialTimeout)
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	ctx := context.Background()
	assert.ErrorIs(t, client.Ping(ctx), errNotInitialized)
	_, _, err := client.FixedWindowAllow(ctx, "s", 1, time.Second)
	assert.ErrorIs(t, err, errNotInitialized)
	assert.NoError(t, client.Close())
}
