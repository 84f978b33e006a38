package storage

import (
	"context"
	"errors"

	model "go_capture_proxy/internal/domain/model/endpoint"
)

var ErrEndpointNotFound = errors.New("endpoint not found")

type EndpointDBStorageIface interface {
	// SaveEndpointToDB inserts or replaces the endpoint with the same id.
	SaveEndpointToDB(ctx context.Context, ep *model.Endpoint) error
	GetEndpointFromDB(ctx context.Context, endpointID string) (*model.Endpoint, error)
	DeleteEndpointFromDB(ctx context.Context, endpointID string) error
	BatchGetEndpoints(ctx context.Context, endpointIDs []string) ([]*model.Endpoint, error)

	// ListEndpoints returns endpoints in creation order.
	ListEndpoints(ctx context.Context, filter *model.EndpointFilter) ([]*model.Endpoint, error)
	ListEndpointsWithPage(ctx context.Context, filter *model.EndpointFilter, page, pageSize int) ([]*model.Endpoint, int64, error)
}

// RedisEndpointCacheIface 定义 Redis 缓存操作接口
type RedisEndpointCacheIface interface {
	GetEndpointFromCache(ctx context.Context, endpointID string) (*model.Endpoint, error)
	SetEndpointToCache(ctx context.Context, ep *model.Endpoint) error
	DeleteEndpointFromCache(ctx context.Context, endpointID string) error

	// index
	RemoveFromIndex(ctx context.Context, ep *model.Endpoint) error
	GetIndexCache(ctx context.Context, indexKey string) ([]string, error)
	SetIndexCache(ctx context.Context, indexKey string, ep *model.Endpoint) error
	UpdateIndexCache(ctx context.Context, ep *model.Endpoint) error
}

// CaptureStateRepositoryIface holds the process-wide capture switch.
// GetCurrent never blocks on I/O; the bool is false when nothing is stored.
type CaptureStateRepositoryIface interface {
	GetCurrent() (model.CaptureState, bool)
	Save(ctx context.Context, state model.CaptureState) error
}
