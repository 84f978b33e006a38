//go:build wireinject
// +build wireinject

package main

import (
	"go_capture_proxy/app/http_mock_app"
	"go_capture_proxy/internal/domain/services"

	"github.com/google/wire"
)

func InitializeApp() (*App, error) {
	wire.Build(
		services.ServiceSet,
		http_mock_app.NewProxyHandler,
		http_mock_app.NewEndpointController,
		NewApp,
	)
	return &App{}, nil
}
