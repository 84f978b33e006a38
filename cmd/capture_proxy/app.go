package main

import (
	"go_capture_proxy/app/http_mock_app"
	configs "go_capture_proxy/internal/infra/config"
)

// App bundles what main needs to serve.
type App struct {
	Config     *configs.AppConfig
	Proxy      *http_mock_app.ProxyHandler
	Controller *http_mock_app.EndpointController
}

func NewApp(c *configs.AppConfig, proxy *http_mock_app.ProxyHandler, controller *http_mock_app.EndpointController) *App {
	return &App{Config: c, Proxy: proxy, Controller: controller}
}
