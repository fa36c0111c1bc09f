package hierarchy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bilhallen/filter-engine/pkg/types"
)

const notFoundMarker = "!"

// CachedStore decorates another store with a redis cache, including negative
// caching of misses. Redis trouble falls through to the inner store.
type CachedStore struct {
	Inner Store
	Ttl   time.Duration
	rdb   *redis.Client
}

func NewCachedStore(inner Store, addr, password string, db int, ttl time.Duration) *CachedStore {
	return &CachedStore{
		Inner: inner,
		Ttl:   ttl,
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (c *CachedStore) lookup(ctx context.Context, key string, fetch func() (*Node, error)) (*Node, error) {
	data, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		if data == notFoundMarker {
			return nil, types.ErrNotFound
		}
		node := &Node{}
		if json.Unmarshal([]byte(data), node) == nil {
			return node, nil
		}
	}
	node, err := fetch()
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			c.rdb.Set(ctx, key, notFoundMarker, c.Ttl)
		}
		return nil, err
	}
	if encoded, err := json.Marshal(node); err == nil {
		c.rdb.Set(ctx, key, encoded, c.Ttl)
	}
	return node, nil
}

func (c *CachedStore) Node(ctx context.Context, slug string) (*Node, error) {
	return c.lookup(ctx, "hier:slug:"+slug, func() (*Node, error) {
		return c.Inner.Node(ctx, slug)
	})
}

func (c *CachedStore) ById(ctx context.Context, id uint) (*Node, error) {
	return c.lookup(ctx, fmt.Sprintf("hier:id:%d", id), func() (*Node, error) {
		return c.Inner.ById(ctx, id)
	})
}

func (c *CachedStore) ChildrenOf(ctx context.Context, id uint) ([]Child, error) {
	key := fmt.Sprintf("hier:children:%d", id)
	data, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		var children []Child
		if json.Unmarshal([]byte(data), &children) == nil {
			return children, nil
		}
	}
	children, err := c.Inner.ChildrenOf(ctx, id)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(children); err == nil {
		c.rdb.Set(ctx, key, encoded, c.Ttl)
	}
	return children, nil
}

func (c *CachedStore) Close() error {
	return c.rdb.Close()
}
