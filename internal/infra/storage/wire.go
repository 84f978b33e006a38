package storage

import (
	configs "go_capture_proxy/internal/infra/config"

	"github.com/google/wire"
)

// StorageSet is a Wire provider set that includes all storage-related providers
var StorageSet = wire.NewSet(
	configs.LoadAppConfig,
	configs.NewApiConfig,
	NewDBClient,
	NewDBEndpointStorage,
	NewRedisClient,
	NewRedisEndpointStorageImpl,
	NewCaptureStateRepo,
)
