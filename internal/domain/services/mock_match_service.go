package services

import (
	"context"
	"fmt"

	"go_capture_proxy/internal/domain/iface"
	model "go_capture_proxy/internal/domain/model/endpoint"
	"go_capture_proxy/internal/infra/repo"
)

type MockMatchService struct {
	endpointRepo repo.EndpointRepositoryIface
}

var _ iface.MockMatchService = (*MockMatchService)(nil)

func NewMockMatchService(endpointRepo repo.EndpointRepositoryIface) *MockMatchService {
	return &MockMatchService{endpointRepo: endpointRepo}
}

// MatchEndpoint ranks the candidates by specificity and returns the first
// one that matches. Equally specific candidates keep their stored order.
func (s *MockMatchService) MatchEndpoint(ctx context.Context, req model.Request) (*model.Endpoint, error) {
	candidates, err := s.endpointRepo.FindCandidates(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidates from repo: %w", err)
	}

	model.SortEndpoints(candidates)
	for _, ep := range candidates {
		ok, err := ep.Matches(req)
		if err != nil {
			return nil, err
		}
		if ok {
			return ep, nil
		}
	}
	return nil, nil
}
