package hierarchy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"resty.dev/v3"

	"github.com/bilhallen/filter-engine/pkg/types"
)

// RemoteStore pulls the make/model tree from the marketplace CMS API and
// serves lookups from a local snapshot, refreshed when the TTL expires. A
// failed refresh with no snapshot on hand surfaces as
// types.ErrHierarchyUnavailable.
type RemoteStore struct {
	client    *resty.Client
	ttl       time.Duration
	mu        sync.Mutex
	snapshot  *MemoryStore
	fetchedAt time.Time
}

func NewRemoteStore(baseUrl string, ttl time.Duration) *RemoteStore {
	client := resty.New().
		SetBaseURL(baseUrl).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &RemoteStore{client: client, ttl: ttl}
}

func (r *RemoteStore) store(ctx context.Context) (*MemoryStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snapshot != nil && time.Since(r.fetchedAt) < r.ttl {
		return r.snapshot, nil
	}
	var nodes []Node
	resp, err := r.client.R().
		SetContext(ctx).
		SetResult(&nodes).
		Get("/api/taxonomy/tree")
	if err != nil || resp.IsError() {
		if r.snapshot != nil {
			// Stale snapshot beats an outage.
			return r.snapshot, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrHierarchyUnavailable, err)
		}
		return nil, fmt.Errorf("%w: status %d", types.ErrHierarchyUnavailable, resp.StatusCode())
	}
	r.snapshot = NewMemoryStore(nodes...)
	r.fetchedAt = time.Now()
	return r.snapshot, nil
}

func (r *RemoteStore) Node(ctx context.Context, slug string) (*Node, error) {
	s, err := r.store(ctx)
	if err != nil {
		return nil, err
	}
	return s.Node(ctx, slug)
}

func (r *RemoteStore) ById(ctx context.Context, id uint) (*Node, error) {
	s, err := r.store(ctx)
	if err != nil {
		return nil, err
	}
	return s.ById(ctx, id)
}

func (r *RemoteStore) ChildrenOf(ctx context.Context, id uint) ([]Child, error) {
	s, err := r.store(ctx)
	if err != nil {
		return nil, err
	}
	return s.ChildrenOf(ctx, id)
}

func (r *RemoteStore) Close() error {
	return r.client.Close()
}
