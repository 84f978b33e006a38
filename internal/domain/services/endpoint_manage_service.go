package services

import (
	"context"
	"errors"
	"fmt"

	"go_capture_proxy/internal/domain/iface"
	model "go_capture_proxy/internal/domain/model/endpoint"
	"go_capture_proxy/internal/infra/repo"

	"github.com/google/uuid"
)

// ErrInvalidEndpoint marks endpoints rejected before they reach storage.
var ErrInvalidEndpoint = errors.New("invalid endpoint")

type EndpointManageService struct {
	endpointRepo repo.EndpointRepositoryIface
}

var _ iface.EndpointService = (*EndpointManageService)(nil)

func NewEndpointManageService(endpointRepo repo.EndpointRepositoryIface) *EndpointManageService {
	return &EndpointManageService{endpointRepo: endpointRepo}
}

// CreateEndpoint 创建 endpoint，未指定 ID 时生成 UUID
func (s *EndpointManageService) CreateEndpoint(ctx context.Context, ep *model.Endpoint) error {
	if err := s.validateEndpoint(ep); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}

	if ep.ID == "" {
		ep.ID = uuid.NewString()
	}
	if ep.Status == "" {
		ep.Status = model.EndpointStatusActive
	}
	if ep.Source == "" {
		ep.Source = model.EndpointSourceManual
	}

	if err := s.endpointRepo.SaveEndpoint(ctx, ep); err != nil {
		return fmt.Errorf("failed to save endpoint to repository: %w", err)
	}
	return nil
}

func (s *EndpointManageService) GetEndpoint(ctx context.Context, endpointID string) (*model.Endpoint, error) {
	return s.endpointRepo.FindByID(ctx, endpointID)
}

func (s *EndpointManageService) DeleteEndpoint(ctx context.Context, endpointID string) error {
	return s.endpointRepo.DeleteEndpoint(ctx, endpointID)
}

func (s *EndpointManageService) ListEndpoints(ctx context.Context, filter *model.EndpointFilter, page, pageSize int) ([]*model.Endpoint, int64, error) {
	return s.endpointRepo.ListEndpointsWithPage(ctx, filter, page, pageSize)
}

func (s *EndpointManageService) validateEndpoint(ep *model.Endpoint) error {
	if ep == nil {
		return errors.New("endpoint is nil")
	}
	if ep.Status != "" && !ep.Status.IsValid() {
		return fmt.Errorf("invalid status %q", ep.Status)
	}
	return ep.ValidateTemplate()
}
