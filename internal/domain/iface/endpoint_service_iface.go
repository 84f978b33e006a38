package iface

import (
	"context"

	model "go_capture_proxy/internal/domain/model/endpoint"
)

// EndpointService 管理已存储的 endpoint
type EndpointService interface {
	CreateEndpoint(ctx context.Context, ep *model.Endpoint) error
	GetEndpoint(ctx context.Context, endpointID string) (*model.Endpoint, error)
	DeleteEndpoint(ctx context.Context, endpointID string) error
	ListEndpoints(ctx context.Context, filter *model.EndpointFilter, page, pageSize int) ([]*model.Endpoint, int64, error)
}

type MockMatchService interface {
	// MatchEndpoint returns the most specific stored endpoint matching req,
	// or nil when none does.
	MatchEndpoint(ctx context.Context, req model.Request) (*model.Endpoint, error)
}

// ProxyService answers one inbound request. A nil outcome with a nil
// error means neither a mock nor the upstream produced a response.
type ProxyService interface {
	Handle(ctx context.Context, req model.Request) (*model.ProxyOutcome, error)
}
