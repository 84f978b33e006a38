package endpointrepotest

import (
	"context"
	"sync"

	model "go_capture_proxy/internal/domain/model/endpoint"
	"go_capture_proxy/internal/infra/repo"
	"go_capture_proxy/internal/infra/storage"
)

type RepoEndpointTestSuite struct {
	Repo  repo.EndpointRepositoryIface
	Cache *memoryCache
}

func NewRepoEndpointTestSuite(r repo.EndpointRepositoryIface, cache *memoryCache) *RepoEndpointTestSuite {
	return &RepoEndpointTestSuite{Repo: r, Cache: cache}
}

// memoryCache stands in for redis in the repository suite.
type memoryCache struct {
	mu        sync.Mutex
	endpoints map[string]*model.Endpoint
	index     map[string][]string
	gets      int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{endpoints: map[string]*model.Endpoint{}, index: map[string][]string{}}
}

var _ storage.RedisEndpointCacheIface = (*memoryCache)(nil)

func (c *memoryCache) GetEndpointFromCache(_ context.Context, endpointID string) (*model.Endpoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	ep, ok := c.endpoints[endpointID]
	if !ok {
		return nil, storage.ErrEndpointNotFound
	}
	cp := *ep
	return &cp, nil
}

func (c *memoryCache) SetEndpointToCache(_ context.Context, ep *model.Endpoint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *ep
	c.endpoints[ep.ID] = &cp
	return nil
}

func (c *memoryCache) DeleteEndpointFromCache(_ context.Context, endpointID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.endpoints, endpointID)
	return nil
}

func (c *memoryCache) RemoveFromIndex(_ context.Context, ep *model.Endpoint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := model.BuildMatchIndexKeyFromEndpoint(ep)
	ids := c.index[key][:0]
	for _, id := range c.index[key] {
		if id != ep.ID {
			ids = append(ids, id)
		}
	}
	c.index[key] = ids
	return nil
}

func (c *memoryCache) GetIndexCache(_ context.Context, indexKey string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.index[indexKey]...), nil
}

func (c *memoryCache) SetIndexCache(_ context.Context, indexKey string, ep *model.Endpoint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.index[indexKey] {
		if id == ep.ID {
			return nil
		}
	}
	c.index[indexKey] = append(c.index[indexKey], ep.ID)
	return nil
}

func (c *memoryCache) UpdateIndexCache(ctx context.Context, ep *model.Endpoint) error {
	key := ep.MatchIndex
	if key == "" {
		key = model.BuildMatchIndexKeyFromEndpoint(ep)
	}
	return c.SetIndexCache(ctx, key, ep)
}

// dropIndex forgets every index entry, leaving cached endpoints in place.
func (c *memoryCache) dropIndex() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = map[string][]string{}
}

func (c *memoryCache) has(endpointID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.endpoints[endpointID]
	return ok
}

func (c *memoryCache) indexed(indexKey, endpointID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.index[indexKey] {
		if id == endpointID {
			return true
		}
	}
	return false
}
