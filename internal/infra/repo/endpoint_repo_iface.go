package repo

import (
	"context"

	model "go_capture_proxy/internal/domain/model/endpoint"
)

// EndpointRepositoryIface 接口 - 定义数据仓库操作
type EndpointRepositoryIface interface {
	SaveEndpoint(ctx context.Context, ep *model.Endpoint) error
	DeleteEndpoint(ctx context.Context, endpointID string) error
	FindByID(ctx context.Context, endpointID string) (*model.Endpoint, error)
	// FindCandidates returns the active endpoints sharing req's match index.
	FindCandidates(ctx context.Context, req model.Request) ([]*model.Endpoint, error)
	ListEndpointsWithPage(ctx context.Context, filter *model.EndpointFilter, page, pageSize int) ([]*model.Endpoint, int64, error)

	GetIndexEndpoints(ctx context.Context, indexKey string) ([]*model.Endpoint, error)
}
