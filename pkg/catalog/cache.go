package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/bilhallen/filter-engine/pkg/types"
)

type localEntry struct {
	expires time.Time
	result  *types.Result
}

// ResultCache is a redis-backed query result cache with a short in-process
// layer in front of it. A nil redis client leaves only the local layer.
type ResultCache struct {
	Ttl    time.Duration
	client *redis.Client
	clk    clock.Clock
	mu     sync.Mutex
	local  map[string]localEntry
}

func NewResultCache(addr, password string, db int, ttl time.Duration) *ResultCache {
	return &ResultCache{
		Ttl: ttl,
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		clk:   clock.New(),
		local: map[string]localEntry{},
	}
}

func (c *ResultCache) now() time.Time {
	if c.clk == nil {
		return time.Now()
	}
	return c.clk.Now()
}

func (c *ResultCache) Get(ctx context.Context, key string) (*types.Result, bool) {
	c.mu.Lock()
	entry, found := c.local[key]
	if found && c.now().Before(entry.expires) {
		c.mu.Unlock()
		return entry.result, true
	}
	if found {
		delete(c.local, key)
	}
	c.mu.Unlock()

	if c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	result := &types.Result{}
	if err := sonic.Unmarshal(data, result); err != nil {
		return nil, false
	}
	c.store(key, result)
	return result, true
}

// store sweeps expired entries on every insert so the local map stays bounded
// by one TTL worth of distinct keys.
func (c *ResultCache) store(key string, result *types.Result) {
	now := c.now()
	c.mu.Lock()
	for k, entry := range c.local {
		if !now.Before(entry.expires) {
			delete(c.local, k)
		}
	}
	c.local[key] = localEntry{expires: now.Add(c.Ttl), result: result}
	c.mu.Unlock()
}

func (c *ResultCache) Set(ctx context.Context, key string, result *types.Result) {
	c.store(key, result)
	if c.client == nil {
		return
	}
	if data, err := sonic.Marshal(result); err == nil {
		c.client.Set(ctx, key, data, c.Ttl)
	}
}

func (c *ResultCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// QueryCache is the cache contract the decorated store depends on;
// *ResultCache implements it.
type QueryCache interface {
	Get(ctx context.Context, key string) (*types.Result, bool)
	Set(ctx context.Context, key string, result *types.Result)
}

// keyJson sorts map keys so equal predicates always serialize to the same
// cache key.
var keyJson = sonic.ConfigStd

// CachedStore decorates a Store with the result cache. The key includes the
// index generation so listing mutations invalidate everything at once.
type CachedStore struct {
	Inner      Store
	Cache      QueryCache
	Generation func() uint64
}

func (s *CachedStore) Query(ctx context.Context, p *types.Predicate) (*types.Result, error) {
	key, ok := s.cacheKey(p)
	if !ok {
		return s.Inner.Query(ctx, p)
	}
	if result, found := s.Cache.Get(ctx, key); found {
		return result, nil
	}
	result, err := s.Inner.Query(ctx, p)
	if err != nil {
		return nil, err
	}
	s.Cache.Set(ctx, key, result)
	return result, nil
}

func (s *CachedStore) cacheKey(p *types.Predicate) (string, bool) {
	body, err := keyJson.Marshal(p)
	if err != nil {
		return "", false
	}
	gen := uint64(0)
	if s.Generation != nil {
		gen = s.Generation()
	}
	return fmt.Sprintf("result:%d:%s", gen, body), true
}
