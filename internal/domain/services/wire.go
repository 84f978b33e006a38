package services

import (
	"go_capture_proxy/internal/domain/iface"
	configs "go_capture_proxy/internal/infra/config"
	"go_capture_proxy/internal/infra/repo"

	"github.com/google/wire"
)

var ServiceSet = wire.NewSet(
	repo.RepoSet,
	configs.NewForwardConfig,
	NewHeaderFilter,
	NewRouteResolver,
	NewForwardingService,
	NewMockMatchService,
	wire.Bind(new(iface.MockMatchService), new(*MockMatchService)),
	NewProxyService,
	wire.Bind(new(iface.ProxyService), new(*ProxyService)),
	NewEndpointManageService,
	wire.Bind(new(iface.EndpointService), new(*EndpointManageService)),
)
