package repo

import (
	configs "go_capture_proxy/internal/infra/config"
	"go_capture_proxy/internal/infra/storage"

	"github.com/google/wire"
)

var RepoSet = wire.NewSet(
	configs.NewEndpointRepoConfig,
	storage.StorageSet,
	NewEndpointRepoImpl,
)
