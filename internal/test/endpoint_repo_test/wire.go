//go:build wireinject
// +build wireinject

package endpointrepotest

import (
	configs "go_capture_proxy/internal/infra/config"
	"go_capture_proxy/internal/infra/repo"
	"go_capture_proxy/internal/infra/storage"

	"github.com/google/wire"
)

func InitializeRepoTest(c *configs.AppConfig) (*RepoEndpointTestSuite, error) {
	wire.Build(
		configs.NewEndpointRepoConfig,
		storage.NewDBClient,
		storage.NewDBEndpointStorage,
		newMemoryCache,
		wire.Bind(new(storage.RedisEndpointCacheIface), new(*memoryCache)),
		repo.NewEndpointRepoImpl,
		NewRepoEndpointTestSuite,
	)
	return &RepoEndpointTestSuite{}, nil
}
